package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

// FavoritesService aggregates the liked cheats of a user.
type FavoritesService struct {
	likes   ports.LikeRepository
	premium PremiumChecker
	limit   int64
}

func NewFavoritesService(likes ports.LikeRepository, premium PremiumChecker, freeLimit int64) *FavoritesService {
	if freeLimit <= 0 {
		freeLimit = domain.DefaultFreeLikeLimit
	}
	return &FavoritesService{likes: likes, premium: premium, limit: freeLimit}
}

// ListLiked returns the user's liked cheats in storage order. Anonymous
// callers get an empty list.
func (s *FavoritesService) ListLiked(ctx context.Context, userID string) ([]domain.Cheat, error) {
	if userID == "" {
		return []domain.Cheat{}, nil
	}
	cheats, err := s.likes.ListLikedCheats(ctx, userID)
	if err != nil {
		return nil, domain.Remote("list liked cheats", err)
	}
	if cheats == nil {
		cheats = []domain.Cheat{}
	}
	return cheats, nil
}

// Count returns the number of likes held by the user, 0 when anonymous.
func (s *FavoritesService) Count(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, nil
	}
	n, err := s.likes.CountByUser(ctx, userID)
	if err != nil {
		return 0, domain.Remote("count user likes", err)
	}
	return n, nil
}

// Summary combines the favorites list with the quota figures shown beside it.
func (s *FavoritesService) Summary(ctx context.Context, userID string) (*ports.FavoritesSummary, error) {
	summary := &ports.FavoritesSummary{Limit: s.limit}
	if userID == "" {
		summary.Cheats = []domain.Cheat{}
		summary.Categories = []string{}
		return summary, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cheats, err := s.ListLiked(gctx, userID)
		if err != nil {
			return err
		}
		summary.Cheats = cheats
		return nil
	})
	g.Go(func() error {
		n, err := s.Count(gctx, userID)
		if err != nil {
			return err
		}
		summary.Count = n
		return nil
	})
	g.Go(func() error {
		premium, err := s.premium.IsPremium(gctx, userID)
		if err != nil {
			return domain.Remote("premium lookup", err)
		}
		summary.IsPremium = premium
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.Categories = domain.Categories(summary.Cheats)
	return summary, nil
}
