package service

import (
	"context"
	"errors"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

type CheatService struct {
	repo ports.CheatRepository
}

func NewCheatService(repo ports.CheatRepository) *CheatService {
	return &CheatService{repo: repo}
}

// List returns the cheats of a game/platform pair. Categories are computed
// before the category filter so clients can render every tab.
func (s *CheatService) List(ctx context.Context, in ports.ListCheatsInput) (*ports.ListCheatsResult, error) {
	all, err := s.repo.List(ctx, ports.CheatFilter{Game: in.Game, Platform: in.Platform})
	if err != nil {
		return nil, domain.Remote("list cheats", err)
	}

	result := &ports.ListCheatsResult{
		Cheats:     all,
		Categories: domain.Categories(all),
	}
	if in.Category != "" {
		filtered := make([]domain.Cheat, 0, len(all))
		for _, c := range all {
			if c.Category == in.Category {
				filtered = append(filtered, c)
			}
		}
		result.Cheats = filtered
	}
	return result, nil
}

func (s *CheatService) Get(ctx context.Context, id int64) (*domain.Cheat, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCheatNotFound) {
			return nil, err
		}
		return nil, domain.Remote("find cheat", err)
	}
	return c, nil
}
