package ports

import (
	"context"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

// ToggleLikeResult is the state of a cheat after a toggle.
type ToggleLikeResult struct {
	CheatID int64
	IsLiked bool
	// LikesCount is the cheat's popularity across all users.
	LikesCount int64
	// UserLikes is the caller's quota figure after the toggle.
	UserLikes int64
	// NewBadges lists badges unlocked as a side effect of a new like.
	NewBadges []domain.Badge
}

// LikeStatus is the read-only view of a cheat for the current user.
type LikeStatus struct {
	CheatID    int64
	IsLiked    bool
	LikesCount int64
}

// LikeService flips and reads the liked state of cheats.
type LikeService interface {
	ToggleLike(ctx context.Context, userID string, cheatID int64) (*ToggleLikeResult, error)
	LikeStatus(ctx context.Context, userID string, cheatID int64) (*LikeStatus, error)
}
