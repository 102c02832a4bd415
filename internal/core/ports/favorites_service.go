package ports

import (
	"context"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

// FavoritesSummary is the aggregated favorites screen for one user.
type FavoritesSummary struct {
	Cheats     []domain.Cheat
	Count      int64
	Limit      int64
	IsPremium  bool
	Categories []string
}

// FavoritesService aggregates the liked cheats of a user. Anonymous callers
// get an empty result rather than an error.
type FavoritesService interface {
	ListLiked(ctx context.Context, userID string) ([]domain.Cheat, error)
	Count(ctx context.Context, userID string) (int64, error)
	Summary(ctx context.Context, userID string) (*FavoritesSummary, error)
}
