package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Cheats + likes
// ---------------------------------------------------------------------------

// stubStore backs both the cheats and likes relations so liked-cheat joins
// behave like the real gateway.
type stubStore struct {
	mu      sync.Mutex
	cheats  map[int64]domain.Cheat
	order   []int64
	likes   []domain.Like
	err     error // returned by every likes call when set
	deletes int
}

func newStubStore(cheats ...domain.Cheat) *stubStore {
	s := &stubStore{cheats: make(map[int64]domain.Cheat)}
	for _, c := range cheats {
		s.cheats[c.ID] = c
		s.order = append(s.order, c.ID)
	}
	return s
}

func seedCheats(n int) []domain.Cheat {
	out := make([]domain.Cheat, 0, n)
	for i := 1; i <= n; i++ {
		cat := "weapons"
		if i%2 == 0 {
			cat = "vehicles"
		}
		out = append(out, domain.Cheat{
			ID:       int64(i),
			Name:     "cheat",
			Code:     "HESOYAM",
			Category: cat,
			Game:     "gta-sa",
			Platform: "pc",
		})
	}
	return out
}

func (s *stubStore) FindByID(_ context.Context, id int64) (*domain.Cheat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cheats[id]
	if !ok {
		return nil, domain.ErrCheatNotFound
	}
	return &c, nil
}

func (s *stubStore) List(_ context.Context, f ports.CheatFilter) ([]domain.Cheat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Cheat
	for _, id := range s.order {
		c := s.cheats[id]
		if f.Game != "" && c.Game != f.Game {
			continue
		}
		if f.Platform != "" && c.Platform != f.Platform {
			continue
		}
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *stubStore) indexOf(userID string, cheatID int64) int {
	for i, l := range s.likes {
		if l.UserID == userID && l.CheatID == cheatID {
			return i
		}
	}
	return -1
}

func (s *stubStore) Exists(_ context.Context, userID string, cheatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	return s.indexOf(userID, cheatID) >= 0, nil
}

func (s *stubStore) CountByUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	var n int64
	for _, l := range s.likes {
		if l.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *stubStore) CountByCheat(_ context.Context, cheatID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	var n int64
	for _, l := range s.likes {
		if l.CheatID == cheatID {
			n++
		}
	}
	return n, nil
}

func (s *stubStore) Insert(_ context.Context, like *domain.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.indexOf(like.UserID, like.CheatID) >= 0 {
		return domain.ErrAlreadyLiked
	}
	s.likes = append(s.likes, *like)
	return nil
}

func (s *stubStore) Delete(_ context.Context, userID string, cheatID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.deletes++
	i := s.indexOf(userID, cheatID)
	if i < 0 {
		return 0, nil
	}
	s.likes = append(s.likes[:i], s.likes[i+1:]...)
	return 1, nil
}

func (s *stubStore) ListLikedCheats(_ context.Context, userID string) ([]domain.Cheat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Cheat
	for _, l := range s.likes {
		if l.UserID == userID {
			out = append(out, s.cheats[l.CheatID])
		}
	}
	return out, nil
}

func (s *stubStore) CountsAtLeast(_ context.Context, min int64) ([]domain.UserLikeCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[string]int64{}
	for _, l := range s.likes {
		counts[l.UserID]++
	}
	var out []domain.UserLikeCount
	for u, n := range counts {
		if n >= min {
			out = append(out, domain.UserLikeCount{UserID: u, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// seedLikes gives userID likes on cheats 1..n.
func (s *stubStore) seedLikes(userID string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 1; i <= n; i++ {
		s.likes = append(s.likes, domain.Like{UserID: userID, CheatID: int64(i), CreatedAt: time.Now()})
	}
}

func (s *stubStore) likeCount(userID string) int {
	n, _ := s.CountByUser(context.Background(), userID)
	return int(n)
}

// ---------------------------------------------------------------------------
// Badges
// ---------------------------------------------------------------------------

type stubBadgeRepo struct {
	mu        sync.Mutex
	badges    []domain.Badge
	owned     []domain.UserBadge
	insertErr error
}

func newStubBadgeRepo(badges ...domain.Badge) *stubBadgeRepo {
	if len(badges) == 0 {
		badges = domain.DefaultBadges(domain.DefaultFreeLikeLimit)
	}
	return &stubBadgeRepo{badges: badges}
}

func (r *stubBadgeRepo) List(_ context.Context) ([]domain.Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Badge(nil), r.badges...), nil
}

func (r *stubBadgeRepo) ListByTrigger(_ context.Context, trigger domain.TriggerType) ([]domain.Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Badge
	for _, b := range r.badges {
		if b.Trigger == trigger {
			out = append(out, b)
		}
	}
	domain.SortByThreshold(out)
	return out, nil
}

func (r *stubBadgeRepo) ListUserBadges(_ context.Context, userID string) ([]domain.UserBadge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.UserBadge
	for _, ub := range r.owned {
		if ub.UserID == userID {
			out = append(out, ub)
		}
	}
	return out, nil
}

func (r *stubBadgeRepo) InsertUserBadge(_ context.Context, ub *domain.UserBadge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	for _, o := range r.owned {
		if o.UserID == ub.UserID && o.BadgeID == ub.BadgeID {
			return domain.ErrBadgeAlreadyUnlocked
		}
	}
	r.owned = append(r.owned, *ub)
	return nil
}

func (r *stubBadgeRepo) EnsureCatalog(_ context.Context, badges []domain.Badge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.badges = append(r.badges, badges...)
	return nil
}

func (r *stubBadgeRepo) ownedIDs(userID string) []int64 {
	ubs, _ := r.ListUserBadges(context.Background(), userID)
	ids := make([]int64, 0, len(ubs))
	for _, ub := range ubs {
		ids = append(ids, ub.BadgeID)
	}
	return ids
}

// ---------------------------------------------------------------------------
// Subscriptions
// ---------------------------------------------------------------------------

type stubSubRepo struct {
	mu      sync.Mutex
	subs    map[string]domain.Subscription
	findErr error
	ensured []string
}

func newStubSubRepo() *stubSubRepo {
	return &stubSubRepo{subs: make(map[string]domain.Subscription)}
}

func (r *stubSubRepo) FindByUser(_ context.Context, userID string) (*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	s, ok := r.subs[userID]
	if !ok {
		return nil, domain.ErrSubscriptionNotFound
	}
	return &s, nil
}

func (r *stubSubRepo) EnsureDefault(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensured = append(r.ensured, userID)
	if _, ok := r.subs[userID]; !ok {
		r.subs[userID] = domain.Subscription{UserID: userID}
	}
	return nil
}

func (r *stubSubRepo) Upsert(_ context.Context, sub *domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.UserID] = *sub
	return nil
}

// ---------------------------------------------------------------------------
// Locking
// ---------------------------------------------------------------------------

type stubLocker struct {
	mu   sync.Mutex
	busy bool
	// contended makes Lock wait for ctx, as a held lock would.
	contended bool
	hold      time.Duration
}

func (l *stubLocker) Lock(ctx context.Context, _ string) (func(), error) {
	if l.busy {
		return nil, domain.ErrBusy
	}
	if l.contended {
		<-ctx.Done()
		return nil, fmt.Errorf("acquire lock: %w", ctx.Err())
	}
	l.mu.Lock()
	return l.mu.Unlock, nil
}

func (l *stubLocker) HoldLimit() time.Duration { return l.hold }

// ---------------------------------------------------------------------------
// Change feed
// ---------------------------------------------------------------------------

type stubFeedSub struct {
	feed *stubFeed
	id   int
}

func (s *stubFeedSub) Unsubscribe() {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()
	delete(s.feed.handlers, s.id)
}

type stubFeedEntry struct {
	relation domain.Relation
	filter   *domain.ChangeFilter
	handler  ports.ChangeHandler
}

// stubFeed delivers events synchronously on the publishing goroutine.
type stubFeed struct {
	mu       sync.Mutex
	next     int
	handlers map[int]stubFeedEntry
	err      error
}

func newStubFeed() *stubFeed {
	return &stubFeed{handlers: make(map[int]stubFeedEntry)}
}

func (f *stubFeed) Subscribe(_ context.Context, relation domain.Relation, filter *domain.ChangeFilter, h ports.ChangeHandler) (ports.ChangeSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.next++
	f.handlers[f.next] = stubFeedEntry{relation: relation, filter: filter, handler: h}
	return &stubFeedSub{feed: f, id: f.next}, nil
}

func (f *stubFeed) publish(evt domain.ChangeEvent) {
	f.mu.Lock()
	var targets []ports.ChangeHandler
	for _, e := range f.handlers {
		if e.relation == evt.Relation && e.filter.Matches(evt) {
			targets = append(targets, e.handler)
		}
	}
	f.mu.Unlock()
	for _, h := range targets {
		h(evt)
	}
}

func (f *stubFeed) active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

func (f *stubFeed) lastFilter() *domain.ChangeFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.handlers[f.next]; ok {
		return e.filter
	}
	return nil
}
