package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

type badgeDoc struct {
	ID           int64  `bson:"_id"`
	Name         string `bson:"name"`
	Description  string `bson:"description"`
	Icon         string `bson:"icon,omitempty"`
	TriggerType  string `bson:"trigger_type"`
	TriggerValue *int64 `bson:"trigger_value,omitempty"`
}

func (d badgeDoc) toDomain() (domain.Badge, error) {
	b := domain.Badge{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Icon:        d.Icon,
		Trigger:     domain.TriggerType(d.TriggerType),
		Threshold:   d.TriggerValue,
	}
	return b, validateRow("badge", b)
}

type userBadgeDoc struct {
	ID         string    `bson:"_id"`
	UserID     string    `bson:"user_id"`
	BadgeID    int64     `bson:"badge_id"`
	UnlockedAt time.Time `bson:"unlocked_at"`
}

// BadgeRepository implements ports.BadgeRepository using MongoDB.
type BadgeRepository struct {
	badges     *mongo.Collection
	userBadges *mongo.Collection
}

func NewBadgeRepository(db *mongo.Database) *BadgeRepository {
	return &BadgeRepository{
		badges:     db.Collection(collectionBadges),
		userBadges: db.Collection(collectionUserBadges),
	}
}

func (r *BadgeRepository) List(ctx context.Context) ([]domain.Badge, error) {
	return r.find(ctx, bson.M{}, bson.D{{Key: "_id", Value: 1}})
}

// ListByTrigger relies on MongoDB ordering missing fields before numbers.
func (r *BadgeRepository) ListByTrigger(ctx context.Context, trigger domain.TriggerType) ([]domain.Badge, error) {
	return r.find(ctx,
		bson.M{"trigger_type": string(trigger)},
		bson.D{{Key: "trigger_value", Value: 1}, {Key: "_id", Value: 1}},
	)
}

func (r *BadgeRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]domain.Badge, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.badges.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []badgeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	badges := make([]domain.Badge, 0, len(docs))
	for _, d := range docs {
		b, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, nil
}

func (r *BadgeRepository) ListUserBadges(ctx context.Context, userID string) ([]domain.UserBadge, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.userBadges.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "unlocked_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []userBadgeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.UserBadge, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.UserBadge{UserID: d.UserID, BadgeID: d.BadgeID, UnlockedAt: d.UnlockedAt})
	}
	return out, nil
}

func (r *BadgeRepository) InsertUserBadge(ctx context.Context, ub *domain.UserBadge) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.userBadges.InsertOne(ctx, userBadgeDoc{
		ID:         domain.UserBadgeKey(ub.UserID, ub.BadgeID),
		UserID:     ub.UserID,
		BadgeID:    ub.BadgeID,
		UnlockedAt: ub.UnlockedAt.UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrBadgeAlreadyUnlocked
	}
	return err
}

// EnsureCatalog upserts badges by id without overwriting edited rows.
func (r *BadgeRepository) EnsureCatalog(ctx context.Context, badges []domain.Badge) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(badges))
	for _, b := range badges {
		fields := bson.M{
			"name":         b.Name,
			"description":  b.Description,
			"icon":         b.Icon,
			"trigger_type": string(b.Trigger),
		}
		if b.Threshold != nil {
			fields["trigger_value"] = *b.Threshold
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": b.ID}).
			SetUpdate(bson.M{"$setOnInsert": fields}).
			SetUpsert(true))
	}
	if len(models) == 0 {
		return nil
	}

	_, err := r.badges.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

// EnsureIndexes creates the index used to list a user's unlocks.
func (r *BadgeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.userBadges.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "unlocked_at", Value: 1}},
	})
	return err
}
