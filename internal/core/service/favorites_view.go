package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

// FavoritesSnapshot is one aggregation of a user's favorites.
type FavoritesSnapshot struct {
	Cheats      []domain.Cheat `json:"cheats"`
	Count       int64          `json:"count"`
	Version     uint64         `json:"version"`
	RefreshedAt time.Time      `json:"refreshed_at"`
}

// FavoritesView keeps a user's favorites aggregation current by re-running
// it on every change to the user's likes. One view serves one session.
//
// Snapshots are published on Updates with latest-wins semantics: a slow
// reader only ever sees the most recent aggregation. A read that finishes
// after a newer one started is discarded.
type FavoritesView struct {
	favorites ports.FavoritesService
	feed      ports.ChangeFeed
	userID    string
	logger    zerolog.Logger
	now       func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	sub      ports.ChangeSubscription
	started  bool
	stopped  bool
	issued   uint64
	applied  uint64
	snapshot FavoritesSnapshot
	updates  chan FavoritesSnapshot
}

func NewFavoritesView(favorites ports.FavoritesService, feed ports.ChangeFeed, userID string, logger zerolog.Logger) *FavoritesView {
	return &FavoritesView{
		favorites: favorites,
		feed:      feed,
		userID:    userID,
		logger:    logger.With().Str("user_id", userID).Logger(),
		now:       time.Now,
		updates:   make(chan FavoritesSnapshot, 1),
	}
}

// Start subscribes to the user's likes and publishes the initial snapshot.
// The subscription is taken before the first read so no change between the
// two is lost. Anonymous views publish an empty snapshot and never subscribe.
func (v *FavoritesView) Start(ctx context.Context) error {
	v.mu.Lock()
	if v.started || v.stopped {
		v.mu.Unlock()
		return nil
	}
	v.started = true
	v.ctx, v.cancel = context.WithCancel(ctx)
	vctx := v.ctx
	v.mu.Unlock()

	if v.userID == "" {
		v.apply(v.nextGeneration(), []domain.Cheat{}, 0)
		return nil
	}

	sub, err := v.feed.Subscribe(vctx, domain.RelationLikes, domain.UserFilter(v.userID), v.onChange)
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

// Stop releases the change subscription and closes Updates. It is safe to
// call more than once and from any goroutine except a change handler.
func (v *FavoritesView) Stop() {
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

// Updates delivers snapshots as they are produced. The channel is closed by Stop.
func (v *FavoritesView) Updates() <-chan FavoritesSnapshot {
	return v.updates
}

// Snapshot returns the most recent aggregation.
func (v *FavoritesView) Snapshot() FavoritesSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot
}

// Refresh re-runs the aggregation on demand. Concurrent calls share one read.
func (v *FavoritesView) Refresh(ctx context.Context) (FavoritesSnapshot, error) {
	res, err, _ := v.group.Do("refresh", func() (interface{}, error) {
		return v.load(ctx)
	})
	if err != nil {
		return FavoritesSnapshot{}, err
	}
	return res.(FavoritesSnapshot), nil
}

// onChange runs on the feed's delivery goroutine, which serialises events
// for this subscription.
func (v *FavoritesView) onChange(evt domain.ChangeEvent) {
	v.mu.Lock()
	ctx, stopped := v.ctx, v.stopped
	v.mu.Unlock()
	if stopped {
		return
	}

	if _, err := v.load(ctx); err != nil && ctx.Err() == nil {
		v.logger.Warn().Err(err).
			Str("op", string(evt.Op)).
			Int64("cheat_id", evt.CheatID).
			Msg("favorites refresh failed")
	}
}

func (v *FavoritesView) nextGeneration() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.issued++
	return v.issued
}

func (v *FavoritesView) load(ctx context.Context) (FavoritesSnapshot, error) {
	gen := v.nextGeneration()

	var (
		cheats []domain.Cheat
		count  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cheats, err = v.favorites.ListLiked(gctx, v.userID)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = v.favorites.Count(gctx, v.userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return FavoritesSnapshot{}, err
	}

	return v.apply(gen, cheats, count), nil
}

// apply installs the result of read gen unless a newer read already landed,
// and returns the snapshot in effect afterwards.
func (v *FavoritesView) apply(gen uint64, cheats []domain.Cheat, count int64) FavoritesSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stopped || gen <= v.applied {
		return v.snapshot
	}
	v.applied = gen
	v.snapshot = FavoritesSnapshot{
		Cheats:      cheats,
		Count:       count,
		Version:     v.snapshot.Version + 1,
		RefreshedAt: v.now().UTC(),
	}

	select {
	case <-v.updates:
	default:
	}
	v.updates <- v.snapshot

	return v.snapshot
}
