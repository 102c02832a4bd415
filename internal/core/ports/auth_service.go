package ports

import (
	"context"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password, email string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
