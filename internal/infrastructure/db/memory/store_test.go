package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
	"github.com/cheatvault/gta-cheats-api/internal/infrastructure/db/seed"
)

type capture struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (c *capture) Publish(evt domain.ChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
}

func (c *capture) all() []domain.ChangeEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.ChangeEvent(nil), c.events...)
}

func newSeededStore(t *testing.T, pub Publisher) *Store {
	t.Helper()
	s := New(pub)
	require.NoError(t, s.Seed(context.Background(), seed.Cheats()))
	require.NoError(t, s.Badges().EnsureCatalog(context.Background(), domain.DefaultBadges(10)))
	return s
}

func TestStore_Cheats(t *testing.T) {
	s := newSeededStore(t, nil)
	ctx := context.Background()

	c, err := s.FindByID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "AIWPRTON", c.Code)

	_, err = s.FindByID(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrCheatNotFound)

	pc, err := s.List(ctx, ports.CheatFilter{Game: "gta-sa", Platform: "pc"})
	require.NoError(t, err)
	assert.Len(t, pc, 8)
	for i := 1; i < len(pc); i++ {
		assert.Less(t, pc[i-1].ID, pc[i].ID)
	}

	police, err := s.List(ctx, ports.CheatFilter{Game: "gta-sa", Platform: "pc", Category: "police"})
	require.NoError(t, err)
	assert.Len(t, police, 2)
}

func TestStore_LikesUniqueAndOrdered(t *testing.T) {
	pub := &capture{}
	s := newSeededStore(t, pub)
	likes := s.Likes()
	ctx := context.Background()

	require.NoError(t, likes.Insert(ctx, &domain.Like{UserID: "u1", CheatID: 5}))
	require.NoError(t, likes.Insert(ctx, &domain.Like{UserID: "u1", CheatID: 2}))
	require.NoError(t, likes.Insert(ctx, &domain.Like{UserID: "u2", CheatID: 2}))
	assert.ErrorIs(t, likes.Insert(ctx, &domain.Like{UserID: "u1", CheatID: 5}), domain.ErrAlreadyLiked)
	assert.ErrorIs(t, likes.Insert(ctx, &domain.Like{UserID: "u1", CheatID: 999}), domain.ErrCheatNotFound)

	liked, err := likes.ListLikedCheats(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, liked, 2)
	assert.Equal(t, int64(5), liked[0].ID)
	assert.Equal(t, int64(2), liked[1].ID)

	n, err := likes.CountByCheat(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	removed, err := likes.Delete(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	removed, err = likes.Delete(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	events := pub.all()
	require.Len(t, events, 4)
	assert.Equal(t, domain.OpDelete, events[3].Op)
	assert.Equal(t, "u1", events[3].UserID)
	assert.Equal(t, int64(5), events[3].CheatID)
}

func TestStore_CountsAtLeast(t *testing.T) {
	s := newSeededStore(t, nil)
	likes := s.Likes()
	ctx := context.Background()
	for id := int64(1); id <= 3; id++ {
		require.NoError(t, likes.Insert(ctx, &domain.Like{UserID: "heavy", CheatID: id}))
	}
	require.NoError(t, likes.Insert(ctx, &domain.Like{UserID: "light", CheatID: 1}))

	got, err := likes.CountsAtLeast(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.UserLikeCount{{UserID: "heavy", Count: 3}}, got)
}

func TestStore_Badges(t *testing.T) {
	s := newSeededStore(t, nil)
	badges := s.Badges()
	ctx := context.Background()

	all, err := badges.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	tiers, err := badges.ListByTrigger(ctx, domain.TriggerLikeCount)
	require.NoError(t, err)
	require.Len(t, tiers, 3)
	assert.Equal(t, []int64{5, 10, 25}, []int64{tiers[0].ThresholdValue(), tiers[1].ThresholdValue(), tiers[2].ThresholdValue()})

	now := time.Now()
	require.NoError(t, badges.InsertUserBadge(ctx, &domain.UserBadge{UserID: "u1", BadgeID: 3, UnlockedAt: now}))
	require.NoError(t, badges.InsertUserBadge(ctx, &domain.UserBadge{UserID: "u1", BadgeID: 1, UnlockedAt: now.Add(time.Second)}))
	assert.ErrorIs(t, badges.InsertUserBadge(ctx, &domain.UserBadge{UserID: "u1", BadgeID: 3}), domain.ErrBadgeAlreadyUnlocked)

	owned, err := badges.ListUserBadges(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, int64(3), owned[0].BadgeID)

	// A second EnsureCatalog must not overwrite existing rows.
	renamed := domain.DefaultBadges(10)
	renamed[0].Name = "changed"
	require.NoError(t, badges.EnsureCatalog(ctx, renamed))
	all, _ = badges.List(ctx)
	assert.NotEqual(t, "changed", all[0].Name)
}

func TestStore_Subscriptions(t *testing.T) {
	s := newSeededStore(t, nil)
	subs := s.Subscriptions()
	ctx := context.Background()

	_, err := subs.FindByUser(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)

	require.NoError(t, subs.Upsert(ctx, &domain.Subscription{UserID: "u1", IsPremium: true}))
	require.NoError(t, subs.EnsureDefault(ctx, "u1"))

	sub, err := subs.FindByUser(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, sub.IsPremium, "EnsureDefault must not overwrite a grant")
}

func TestStore_Users(t *testing.T) {
	s := New(nil)
	users := s.Users()
	ctx := context.Background()

	created, err := users.Create(ctx, &domain.User{Username: "cj", Email: "cj@grove.st", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = users.Create(ctx, &domain.User{Username: "cj2", Email: "CJ@grove.st"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	found, err := users.FindByEmail(ctx, "cj@grove.st")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = users.FindByEmail(ctx, "ryder@grove.st")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
