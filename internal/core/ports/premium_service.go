package ports

import (
	"context"
	"time"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

// PremiumService resolves and grants the premium entitlement.
type PremiumService interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
	SetPremium(ctx context.Context, userID string, premium bool, until *time.Time) (*domain.Subscription, error)
}
