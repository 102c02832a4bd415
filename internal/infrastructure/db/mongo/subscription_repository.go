package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

type subscriptionDoc struct {
	UserID       string     `bson:"_id"`
	IsPremium    bool       `bson:"is_premium"`
	PremiumUntil *time.Time `bson:"premium_until,omitempty"`
	UpdatedAt    time.Time  `bson:"updated_at"`
}

// SubscriptionRepository implements ports.SubscriptionRepository using
// MongoDB. One document per user, keyed by user id.
type SubscriptionRepository struct {
	col *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{col: db.Collection(collectionSubscriptions)}
}

func (r *SubscriptionRepository) FindByUser(ctx context.Context, userID string) (*domain.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d subscriptionDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &domain.Subscription{
		UserID:       d.UserID,
		IsPremium:    d.IsPremium,
		PremiumUntil: d.PremiumUntil,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

// EnsureDefault inserts a non-premium row only when none exists, so a
// concurrent admin grant is never overwritten.
func (r *SubscriptionRepository) EnsureDefault(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$setOnInsert": bson.M{"is_premium": false, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.ReplaceOne(ctx,
		bson.M{"_id": sub.UserID},
		subscriptionDoc{
			UserID:       sub.UserID,
			IsPremium:    sub.IsPremium,
			PremiumUntil: sub.PremiumUntil,
			UpdatedAt:    sub.UpdatedAt.UTC(),
		},
		options.Replace().SetUpsert(true),
	)
	return err
}
