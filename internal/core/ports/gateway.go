package ports

import (
	"context"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

// The interfaces in this file are the remote data gateway as seen by the
// core. Implementations return domain sentinel errors for expected outcomes
// and plain errors for transport or storage failures; services wrap the
// latter as domain.RemoteError.

// LikeRepository persists the likes relation.
type LikeRepository interface {
	Exists(ctx context.Context, userID string, cheatID int64) (bool, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	CountByCheat(ctx context.Context, cheatID int64) (int64, error)
	// Insert returns domain.ErrAlreadyLiked when the (user, cheat) pair exists.
	Insert(ctx context.Context, like *domain.Like) error
	// Delete removes the (user, cheat) row if present and reports how many
	// rows were removed. Deleting a missing row is not an error.
	Delete(ctx context.Context, userID string, cheatID int64) (int64, error)
	// ListLikedCheats joins the user's likes to the cheats relation, in
	// storage order.
	ListLikedCheats(ctx context.Context, userID string) ([]domain.Cheat, error)
	// CountsAtLeast lists users holding at least min likes.
	CountsAtLeast(ctx context.Context, min int64) ([]domain.UserLikeCount, error)
}

// BadgeRepository reads the badge catalog and persists unlocks.
type BadgeRepository interface {
	List(ctx context.Context) ([]domain.Badge, error)
	// ListByTrigger returns badges for trigger ordered by ascending
	// threshold, badges without threshold first.
	ListByTrigger(ctx context.Context, trigger domain.TriggerType) ([]domain.Badge, error)
	ListUserBadges(ctx context.Context, userID string) ([]domain.UserBadge, error)
	// InsertUserBadge returns domain.ErrBadgeAlreadyUnlocked when the pair exists.
	InsertUserBadge(ctx context.Context, ub *domain.UserBadge) error
	// EnsureCatalog installs missing badges without touching existing ones.
	EnsureCatalog(ctx context.Context, badges []domain.Badge) error
}

// CheatFilter narrows a cheat listing. Empty fields do not filter.
type CheatFilter struct {
	Game     string
	Platform string
	Category string
}

// CheatRepository reads the cheats relation.
type CheatRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Cheat, error)
	List(ctx context.Context, filter CheatFilter) ([]domain.Cheat, error)
}

// SubscriptionRepository persists premium entitlements.
type SubscriptionRepository interface {
	// FindByUser returns domain.ErrSubscriptionNotFound when the user has no row.
	FindByUser(ctx context.Context, userID string) (*domain.Subscription, error)
	// EnsureDefault creates a non-premium row for the user unless one exists.
	EnsureDefault(ctx context.Context, userID string) error
	Upsert(ctx context.Context, sub *domain.Subscription) error
}
