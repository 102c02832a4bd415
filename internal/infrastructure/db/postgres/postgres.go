package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultTimeout = 10 * time.Second

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Config captures the settings for establishing a PostgreSQL pool.
type Config struct {
	URL      string
	MaxConns int32
	Timeout  time.Duration
}

// Connect opens a pgx pool and validates connectivity with a ping.
// A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

// Store groups the repositories sharing one pool.
type Store struct {
	Cheats        *CheatRepository
	Likes         *LikeRepository
	Badges        *BadgeRepository
	Subscriptions *SubscriptionRepository
	Users         *AuthRepository
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Cheats:        NewCheatRepository(pool),
		Likes:         NewLikeRepository(pool),
		Badges:        NewBadgeRepository(pool),
		Subscriptions: NewSubscriptionRepository(pool),
		Users:         NewAuthRepository(pool),
	}
}

var rowValidator = validator.New()

func validateRow(kind string, v interface{}) error {
	if err := rowValidator.Struct(v); err != nil {
		return fmt.Errorf("invalid %s row: %w", kind, err)
	}
	return nil
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
