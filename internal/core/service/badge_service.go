package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

// BadgeService awards and lists badges. Unlocks are append-only: a badge
// moves from locked to unlocked once and is never revoked.
type BadgeService struct {
	repo   ports.BadgeRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewBadgeService(repo ports.BadgeRepository, logger zerolog.Logger) *BadgeService {
	return &BadgeService{repo: repo, logger: logger, now: time.Now}
}

// CheckAndAward unlocks the lowest-threshold badge of trigger that value
// satisfies and the user does not own yet. At most one badge is unlocked
// per call; a caller that crossed several thresholds at once gets the rest
// on later calls.
func (s *BadgeService) CheckAndAward(ctx context.Context, userID string, trigger domain.TriggerType, value *int64) (*domain.Badge, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !trigger.Valid() {
		return nil, fmt.Errorf("check badges: %w (%s)", domain.ErrInvalidTrigger, trigger)
	}

	badges, err := s.repo.ListByTrigger(ctx, trigger)
	if err != nil {
		return nil, domain.Remote("list badges by trigger", err)
	}
	domain.SortByThreshold(badges)

	owned, err := s.unlocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range badges {
		badge := badges[i]
		if !badge.Qualifies(value) {
			continue
		}
		if _, ok := owned[badge.ID]; ok {
			continue
		}

		err := s.repo.InsertUserBadge(ctx, &domain.UserBadge{
			UserID:     userID,
			BadgeID:    badge.ID,
			UnlockedAt: s.now().UTC(),
		})
		if errors.Is(err, domain.ErrBadgeAlreadyUnlocked) {
			// Unlocked concurrently since we read the owned set.
			continue
		}
		if err != nil {
			return nil, domain.Remote("insert user badge", err)
		}

		s.logger.Info().
			Str("user_id", userID).
			Int64("badge_id", badge.ID).
			Str("trigger", string(trigger)).
			Msg("badge unlocked")
		return &badge, nil
	}

	return nil, nil
}

// UserBadges returns the badges the user unlocked, in unlock order.
func (s *BadgeService) UserBadges(ctx context.Context, userID string) ([]domain.Badge, error) {
	if userID == "" {
		return []domain.Badge{}, nil
	}

	owned, err := s.repo.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, domain.Remote("list user badges", err)
	}
	catalog, err := s.catalogByID(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Badge, 0, len(owned))
	for _, ub := range owned {
		if b, ok := catalog[ub.BadgeID]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

// Catalog returns every badge annotated with the user's unlock state.
// Anonymous callers see the whole catalog locked.
func (s *BadgeService) Catalog(ctx context.Context, userID string) ([]ports.BadgeView, error) {
	badges, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.Remote("list badges", err)
	}

	unlockedAt := map[int64]time.Time{}
	if userID != "" {
		owned, err := s.repo.ListUserBadges(ctx, userID)
		if err != nil {
			return nil, domain.Remote("list user badges", err)
		}
		for _, ub := range owned {
			unlockedAt[ub.BadgeID] = ub.UnlockedAt
		}
	}

	views := make([]ports.BadgeView, 0, len(badges))
	for _, b := range badges {
		view := ports.BadgeView{Badge: b}
		if at, ok := unlockedAt[b.ID]; ok {
			view.Unlocked = true
			view.UnlockedAt = &at
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *BadgeService) unlocked(ctx context.Context, userID string) (map[int64]struct{}, error) {
	owned, err := s.repo.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, domain.Remote("list user badges", err)
	}
	set := make(map[int64]struct{}, len(owned))
	for _, ub := range owned {
		set[ub.BadgeID] = struct{}{}
	}
	return set, nil
}

func (s *BadgeService) catalogByID(ctx context.Context) (map[int64]domain.Badge, error) {
	badges, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.Remote("list badges", err)
	}
	byID := make(map[int64]domain.Badge, len(badges))
	for _, b := range badges {
		byID[b.ID] = b
	}
	return byID, nil
}
