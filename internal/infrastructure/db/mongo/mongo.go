package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Collection names mirror the relation names of the data gateway.
const (
	collectionCheats        = "cheats"
	collectionLikes         = "likes"
	collectionBadges        = "badges"
	collectionUserBadges    = "user_badges"
	collectionSubscriptions = "user_subscriptions"
	collectionUsers         = "users"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// Store groups the repositories of one database.
type Store struct {
	Cheats        *CheatRepository
	Likes         *LikeRepository
	Badges        *BadgeRepository
	Subscriptions *SubscriptionRepository
	Users         *AuthRepository
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		Cheats:        NewCheatRepository(db),
		Likes:         NewLikeRepository(db),
		Badges:        NewBadgeRepository(db),
		Subscriptions: NewSubscriptionRepository(db),
		Users:         NewAuthRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{collectionCheats, s.Cheats.EnsureIndexes},
		{collectionLikes, s.Likes.EnsureIndexes},
		{collectionUserBadges, s.Badges.EnsureIndexes},
		{collectionUsers, s.Users.EnsureIndexes},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", step.name, err)
		}
	}
	return nil
}
