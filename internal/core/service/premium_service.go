package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

// PremiumService resolves the premium entitlement of users.
type PremiumService struct {
	repo   ports.SubscriptionRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewPremiumService(repo ports.SubscriptionRepository, logger zerolog.Logger) *PremiumService {
	return &PremiumService{repo: repo, logger: logger, now: time.Now}
}

// IsPremium reports whether userID currently holds an active entitlement.
// A user without a subscription row gets a default non-premium one.
func (s *PremiumService) IsPremium(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	sub, err := s.repo.FindByUser(ctx, userID)
	switch {
	case err == nil:
		return sub.Active(s.now()), nil
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		if err := s.repo.EnsureDefault(ctx, userID); err != nil {
			return false, domain.Remote("create default subscription", err)
		}
		s.logger.Debug().Str("user_id", userID).Msg("default subscription created")
		return false, nil
	default:
		return false, domain.Remote("find subscription", err)
	}
}

// SetPremium grants or revokes the entitlement. A nil until means no expiry.
func (s *PremiumService) SetPremium(ctx context.Context, userID string, premium bool, until *time.Time) (*domain.Subscription, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	sub := &domain.Subscription{
		UserID:    userID,
		IsPremium: premium,
		UpdatedAt: s.now().UTC(),
	}
	if premium && until != nil {
		u := until.UTC()
		sub.PremiumUntil = &u
	}

	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, domain.Remote("upsert subscription", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Bool("premium", premium).
		Msg("subscription updated")

	return sub, nil
}
