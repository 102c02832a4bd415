package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cheatvault/gta-cheats-api/internal/api/handler"
	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
	"github.com/cheatvault/gta-cheats-api/internal/infrastructure/db/memory"
	mongostore "github.com/cheatvault/gta-cheats-api/internal/infrastructure/db/mongo"
	pgstore "github.com/cheatvault/gta-cheats-api/internal/infrastructure/db/postgres"
	"github.com/cheatvault/gta-cheats-api/internal/infrastructure/queue"
	"github.com/cheatvault/gta-cheats-api/internal/pkg/config"
	"github.com/cheatvault/gta-cheats-api/pkg/logger"
)

type cheatStore interface {
	ports.CheatRepository
	Seed(ctx context.Context, cheats []domain.Cheat) error
}

// gateway is the data gateway selected by STORE_DRIVER.
type gateway struct {
	cheats        cheatStore
	likes         ports.LikeRepository
	badges        ports.BadgeRepository
	subscriptions ports.SubscriptionRepository
	users         ports.AuthRepository

	check handler.Check
	// feed pushes storage change notifications into the hub until ctx is
	// done. Nil for the memory store, which publishes directly.
	feed  func(ctx context.Context) error
	close func(ctx context.Context)
}

func openGateway(ctx context.Context, cfg *config.Config, hub *queue.Hub, log zerolog.Logger) (*gateway, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		store := mongostore.NewStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		watcher := mongostore.NewChangeWatcher(db, hub, logger.Component("change-stream"))
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

		return &gateway{
			cheats:        store.Cheats,
			likes:         store.Likes,
			badges:        store.Badges,
			subscriptions: store.Subscriptions,
			users:         store.Users,
			check:         func(ctx context.Context) error { return client.Ping(ctx, nil) },
			feed:          watcher.Run,
			close:         func(ctx context.Context) { _ = client.Disconnect(ctx) },
		}, nil

	case config.DriverPostgres:
		pool, err := pgstore.Connect(ctx, pgstore.Config{URL: cfg.Postgres.URL, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, err
		}
		if err := pgstore.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		store := pgstore.NewStore(pool)
		listener := pgstore.NewListener(pool, hub, logger.Component("pg-listener"))
		log.Info().Msg("connected to PostgreSQL")

		return &gateway{
			cheats:        store.Cheats,
			likes:         store.Likes,
			badges:        store.Badges,
			subscriptions: store.Subscriptions,
			users:         store.Users,
			check:         pool.Ping,
			feed:          listener.Run,
			close:         func(context.Context) { pool.Close() },
		}, nil

	case config.DriverMemory:
		store := memory.New(hub)
		log.Warn().Msg("using the in-memory store; data is lost on restart")

		return &gateway{
			cheats:        store,
			likes:         store.Likes(),
			badges:        store.Badges(),
			subscriptions: store.Subscriptions(),
			users:         store.Users(),
			check:         func(context.Context) error { return nil },
			close:         func(context.Context) {},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
