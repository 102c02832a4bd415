package ports

import (
	"context"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

// ListCheatsInput carries the query parameters of the cheat listing.
type ListCheatsInput struct {
	Game     string
	Platform string
	Category string
}

// ListCheatsResult is the cheat listing with the categories available for
// the game/platform pair, computed before the category filter is applied.
type ListCheatsResult struct {
	Cheats     []domain.Cheat
	Categories []string
}

// CheatService reads the cheat catalog.
type CheatService interface {
	List(ctx context.Context, in ListCheatsInput) (*ListCheatsResult, error)
	Get(ctx context.Context, id int64) (*domain.Cheat, error)
}
