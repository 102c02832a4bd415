package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

// LikeStatusSnapshot is one reading of a cheat's like counter as seen by a
// viewer.
type LikeStatusSnapshot struct {
	CheatID     int64
	IsLiked     bool
	LikesCount  int64
	Version     uint64
	RefreshedAt time.Time
}

// LikeStatusReader is the read side of the like service.
type LikeStatusReader interface {
	LikeStatus(ctx context.Context, userID string, cheatID int64) (*ports.LikeStatus, error)
}

// LikeStatusView keeps a cheat's like counter current for one viewer. Any
// like or unlike of the cheat, by any user, triggers a re-read. Updates has
// the same latest-wins semantics as FavoritesView.
type LikeStatusView struct {
	likes   LikeStatusReader
	feed    ports.ChangeFeed
	userID  string
	cheatID int64
	logger  zerolog.Logger
	now     func() time.Time

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	sub      ports.ChangeSubscription
	started  bool
	stopped  bool
	issued   uint64
	applied  uint64
	snapshot LikeStatusSnapshot
	updates  chan LikeStatusSnapshot
}

// NewLikeStatusView builds the view of cheatID for userID. An empty userID
// is an anonymous viewer, who still sees the counter move.
func NewLikeStatusView(likes LikeStatusReader, feed ports.ChangeFeed, userID string, cheatID int64, logger zerolog.Logger) *LikeStatusView {
	return &LikeStatusView{
		likes:   likes,
		feed:    feed,
		userID:  userID,
		cheatID: cheatID,
		logger:  logger.With().Int64("cheat_id", cheatID).Str("user_id", userID).Logger(),
		now:     time.Now,
		updates: make(chan LikeStatusSnapshot, 1),
	}
}

// Start subscribes to the cheat's likes and publishes the first reading.
func (v *LikeStatusView) Start(ctx context.Context) error {
	v.mu.Lock()
	if v.started || v.stopped {
		v.mu.Unlock()
		return nil
	}
	v.started = true
	v.ctx, v.cancel = context.WithCancel(ctx)
	vctx := v.ctx
	v.mu.Unlock()

	sub, err := v.feed.Subscribe(vctx, domain.RelationLikes, domain.CheatFilter(v.cheatID), v.onChange)
	if err != nil {
		v.Stop()
		return domain.Remote("subscribe likes", err)
	}

	v.mu.Lock()
	if v.stopped {
		v.mu.Unlock()
		sub.Unsubscribe()
		return nil
	}
	v.sub = sub
	v.mu.Unlock()

	if _, err := v.load(vctx); err != nil {
		v.Stop()
		return err
	}
	return nil
}

// Stop releases the subscription and closes Updates. Safe to call twice.
func (v *LikeStatusView) Stop() {
	v.mu.Lock()
	if v.stopped {
		v.mu.Unlock()
		return
	}
	v.stopped = true
	close(v.updates)
	sub, cancel := v.sub, v.cancel
	v.sub = nil
	v.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (v *LikeStatusView) Updates() <-chan LikeStatusSnapshot {
	return v.updates
}

func (v *LikeStatusView) Snapshot() LikeStatusSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot
}

func (v *LikeStatusView) onChange(evt domain.ChangeEvent) {
	v.mu.Lock()
	ctx, stopped := v.ctx, v.stopped
	v.mu.Unlock()
	if stopped {
		return
	}

	if _, err := v.load(ctx); err != nil && ctx.Err() == nil {
		v.logger.Warn().Err(err).Str("op", string(evt.Op)).Msg("like status refresh failed")
	}
}

func (v *LikeStatusView) load(ctx context.Context) (LikeStatusSnapshot, error) {
	v.mu.Lock()
	v.issued++
	gen := v.issued
	v.mu.Unlock()

	st, err := v.likes.LikeStatus(ctx, v.userID, v.cheatID)
	if err != nil {
		return LikeStatusSnapshot{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stopped || gen <= v.applied {
		return v.snapshot, nil
	}
	v.applied = gen
	v.snapshot = LikeStatusSnapshot{
		CheatID:     v.cheatID,
		IsLiked:     st.IsLiked,
		LikesCount:  st.LikesCount,
		Version:     v.snapshot.Version + 1,
		RefreshedAt: v.now().UTC(),
	}

	select {
	case <-v.updates:
	default:
	}
	v.updates <- v.snapshot

	return v.snapshot, nil
}
