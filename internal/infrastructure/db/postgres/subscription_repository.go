package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

// SubscriptionRepository implements ports.SubscriptionRepository on PostgreSQL.
type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

func (r *SubscriptionRepository) FindByUser(ctx context.Context, userID string) (*domain.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	sub := domain.Subscription{UserID: userID}
	err := r.pool.QueryRow(ctx,
		`SELECT is_premium, premium_until, updated_at FROM user_subscriptions WHERE user_id = $1`,
		userID,
	).Scan(&sub.IsPremium, &sub.PremiumUntil, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) EnsureDefault(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_subscriptions (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	return err
}

func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_subscriptions (user_id, is_premium, premium_until, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			is_premium    = EXCLUDED.is_premium,
			premium_until = EXCLUDED.premium_until,
			updated_at    = EXCLUDED.updated_at`,
		sub.UserID, sub.IsPremium, sub.PremiumUntil, sub.UpdatedAt.UTC(),
	)
	return err
}
