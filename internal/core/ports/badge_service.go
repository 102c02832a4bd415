package ports

import (
	"context"
	"time"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

// BadgeView is a catalog entry annotated for one user.
type BadgeView struct {
	Badge      domain.Badge
	Unlocked   bool
	UnlockedAt *time.Time
}

// BadgeService evaluates and lists achievements.
type BadgeService interface {
	// CheckAndAward unlocks at most one badge for trigger and returns it, or
	// nil when nothing new qualifies.
	CheckAndAward(ctx context.Context, userID string, trigger domain.TriggerType, value *int64) (*domain.Badge, error)
	UserBadges(ctx context.Context, userID string) ([]domain.Badge, error)
	Catalog(ctx context.Context, userID string) ([]BadgeView, error)
}
