// Package memory is an in-process implementation of the data gateway for
// development and tests. It enforces the same uniqueness rules as the real
// stores and publishes a change event for every mutation.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

// Publisher receives change events after each committed mutation.
type Publisher interface {
	Publish(evt domain.ChangeEvent)
}

type likeRow struct {
	domain.Like
	seq uint64
}

// Store implements every gateway repository over maps guarded by one mutex.
type Store struct {
	mu         sync.RWMutex
	pub        Publisher
	cheats     map[int64]domain.Cheat
	likes      map[string]likeRow
	seq        uint64
	badges     map[int64]domain.Badge
	userBadges map[string]domain.UserBadge
	subs       map[string]domain.Subscription
	users      map[string]domain.User // by email
}

// New returns an empty store. pub may be nil.
func New(pub Publisher) *Store {
	return &Store{
		pub:        pub,
		cheats:     make(map[int64]domain.Cheat),
		likes:      make(map[string]likeRow),
		badges:     make(map[int64]domain.Badge),
		userBadges: make(map[string]domain.UserBadge),
		subs:       make(map[string]domain.Subscription),
		users:      make(map[string]domain.User),
	}
}

func (s *Store) publish(rel domain.Relation, op domain.ChangeOp, userID string, cheatID, badgeID int64) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(domain.ChangeEvent{
		Relation: rel,
		Op:       op,
		UserID:   userID,
		CheatID:  cheatID,
		BadgeID:  badgeID,
		At:       time.Now().UTC(),
	})
}

// ── cheats ────────────────────────────────────────────────────────────────────

// Seed inserts cheats that are not present yet.
func (s *Store) Seed(_ context.Context, cheats []domain.Cheat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cheats {
		if _, ok := s.cheats[c.ID]; !ok {
			s.cheats[c.ID] = c
		}
	}
	return nil
}

func (s *Store) FindByID(_ context.Context, id int64) (*domain.Cheat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cheats[id]
	if !ok {
		return nil, domain.ErrCheatNotFound
	}
	return &c, nil
}

func (s *Store) List(_ context.Context, f ports.CheatFilter) ([]domain.Cheat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Cheat, 0)
	for _, c := range s.cheats {
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
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── likes ─────────────────────────────────────────────────────────────────────

// Likes exposes the likes relation.
func (s *Store) Likes() *Likes { return &Likes{s: s} }

// Likes is the likes relation of a Store.
type Likes struct{ s *Store }

func (l *Likes) Exists(_ context.Context, userID string, cheatID int64) (bool, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	_, ok := l.s.likes[domain.LikeKey(userID, cheatID)]
	return ok, nil
}

func (l *Likes) CountByUser(_ context.Context, userID string) (int64, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	var n int64
	for _, row := range l.s.likes {
		if row.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (l *Likes) CountByCheat(_ context.Context, cheatID int64) (int64, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	var n int64
	for _, row := range l.s.likes {
		if row.CheatID == cheatID {
			n++
		}
	}
	return n, nil
}

func (l *Likes) Insert(_ context.Context, like *domain.Like) error {
	l.s.mu.Lock()
	key := like.Key()
	if _, ok := l.s.likes[key]; ok {
		l.s.mu.Unlock()
		return domain.ErrAlreadyLiked
	}
	if _, ok := l.s.cheats[like.CheatID]; !ok {
		l.s.mu.Unlock()
		return domain.ErrCheatNotFound
	}
	l.s.seq++
	l.s.likes[key] = likeRow{Like: *like, seq: l.s.seq}
	l.s.mu.Unlock()

	l.s.publish(domain.RelationLikes, domain.OpInsert, like.UserID, like.CheatID, 0)
	return nil
}

func (l *Likes) Delete(_ context.Context, userID string, cheatID int64) (int64, error) {
	l.s.mu.Lock()
	key := domain.LikeKey(userID, cheatID)
	if _, ok := l.s.likes[key]; !ok {
		l.s.mu.Unlock()
		return 0, nil
	}
	delete(l.s.likes, key)
	l.s.mu.Unlock()

	l.s.publish(domain.RelationLikes, domain.OpDelete, userID, cheatID, 0)
	return 1, nil
}

func (l *Likes) ListLikedCheats(_ context.Context, userID string) ([]domain.Cheat, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	rows := make([]likeRow, 0)
	for _, row := range l.s.likes {
		if row.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]domain.Cheat, 0, len(rows))
	for _, row := range rows {
		if c, ok := l.s.cheats[row.CheatID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (l *Likes) CountsAtLeast(_ context.Context, min int64) ([]domain.UserLikeCount, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, row := range l.s.likes {
		counts[row.UserID]++
	}
	out := make([]domain.UserLikeCount, 0)
	for user, n := range counts {
		if n >= min {
			out = append(out, domain.UserLikeCount{UserID: user, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// ── badges ────────────────────────────────────────────────────────────────────

// Badges exposes the badges and user_badges relations.
func (s *Store) Badges() *Badges { return &Badges{s: s} }

// Badges is the badge catalog and unlock log of a Store.
type Badges struct{ s *Store }

func (b *Badges) List(_ context.Context) ([]domain.Badge, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	out := make([]domain.Badge, 0, len(b.s.badges))
	for _, badge := range b.s.badges {
		out = append(out, badge)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (b *Badges) ListByTrigger(ctx context.Context, trigger domain.TriggerType) ([]domain.Badge, error) {
	all, _ := b.List(ctx)
	out := make([]domain.Badge, 0)
	for _, badge := range all {
		if badge.Trigger == trigger {
			out = append(out, badge)
		}
	}
	domain.SortByThreshold(out)
	return out, nil
}

func (b *Badges) ListUserBadges(_ context.Context, userID string) ([]domain.UserBadge, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	out := make([]domain.UserBadge, 0)
	for _, ub := range b.s.userBadges {
		if ub.UserID == userID {
			out = append(out, ub)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnlockedAt.Equal(out[j].UnlockedAt) {
			return out[i].BadgeID < out[j].BadgeID
		}
		return out[i].UnlockedAt.Before(out[j].UnlockedAt)
	})
	return out, nil
}

func (b *Badges) InsertUserBadge(_ context.Context, ub *domain.UserBadge) error {
	b.s.mu.Lock()
	key := domain.UserBadgeKey(ub.UserID, ub.BadgeID)
	if _, ok := b.s.userBadges[key]; ok {
		b.s.mu.Unlock()
		return domain.ErrBadgeAlreadyUnlocked
	}
	b.s.userBadges[key] = *ub
	b.s.mu.Unlock()

	b.s.publish(domain.RelationUserBadges, domain.OpInsert, ub.UserID, 0, ub.BadgeID)
	return nil
}

func (b *Badges) EnsureCatalog(_ context.Context, badges []domain.Badge) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	for _, badge := range badges {
		if _, ok := b.s.badges[badge.ID]; !ok {
			b.s.badges[badge.ID] = badge
		}
	}
	return nil
}

// ── subscriptions ─────────────────────────────────────────────────────────────

// Subscriptions exposes the user_subscriptions relation.
func (s *Store) Subscriptions() *Subscriptions { return &Subscriptions{s: s} }

// Subscriptions is the premium entitlement table of a Store.
type Subscriptions struct{ s *Store }

func (r *Subscriptions) FindByUser(_ context.Context, userID string) (*domain.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sub, ok := r.s.subs[userID]
	if !ok {
		return nil, domain.ErrSubscriptionNotFound
	}
	return &sub, nil
}

func (r *Subscriptions) EnsureDefault(_ context.Context, userID string) error {
	r.s.mu.Lock()
	if _, ok := r.s.subs[userID]; ok {
		r.s.mu.Unlock()
		return nil
	}
	r.s.subs[userID] = domain.Subscription{UserID: userID, UpdatedAt: time.Now().UTC()}
	r.s.mu.Unlock()

	r.s.publish(domain.RelationSubscriptions, domain.OpInsert, userID, 0, 0)
	return nil
}

func (r *Subscriptions) Upsert(_ context.Context, sub *domain.Subscription) error {
	r.s.mu.Lock()
	_, existed := r.s.subs[sub.UserID]
	r.s.subs[sub.UserID] = *sub
	r.s.mu.Unlock()

	op := domain.OpInsert
	if existed {
		op = domain.OpUpdate
	}
	r.s.publish(domain.RelationSubscriptions, op, sub.UserID, 0, 0)
	return nil
}

// ── users ─────────────────────────────────────────────────────────────────────

// Users exposes the accounts table.
func (s *Store) Users() *Users { return &Users{s: s} }

// Users is the account table of a Store.
type Users struct{ s *Store }

func (u *Users) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, ok := u.s.users[email]; ok {
		return nil, domain.ErrUserExists
	}
	created := *user
	created.ID = uuid.NewString()
	u.s.users[email] = created
	return &created, nil
}

func (u *Users) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	user, ok := u.s.users[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}
