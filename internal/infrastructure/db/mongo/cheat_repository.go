package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

// CheatRepository implements ports.CheatRepository using MongoDB. Cheats
// use their numeric id as _id.
type CheatRepository struct {
	col *mongo.Collection
}

func NewCheatRepository(db *mongo.Database) *CheatRepository {
	return &CheatRepository{col: db.Collection(collectionCheats)}
}

func (r *CheatRepository) FindByID(ctx context.Context, id int64) (*domain.Cheat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Cheat
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCheatNotFound
		}
		return nil, err
	}
	if err := validateRow("cheat", c); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns cheats matching f ordered by id.
func (r *CheatRepository) List(ctx context.Context, f ports.CheatFilter) ([]domain.Cheat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Game != "" {
		filter["game"] = f.Game
	}
	if f.Platform != "" {
		filter["platform"] = f.Platform
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	cheats := make([]domain.Cheat, 0)
	if err := cur.All(ctx, &cheats); err != nil {
		return nil, err
	}
	for _, c := range cheats {
		if err := validateRow("cheat", c); err != nil {
			return nil, err
		}
	}
	return cheats, nil
}

// Seed inserts cheats that are not present yet.
func (r *CheatRepository) Seed(ctx context.Context, cheats []domain.Cheat) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for _, c := range cheats {
		_, err := r.col.UpdateOne(ctx,
			bson.M{"_id": c.ID},
			bson.M{"$setOnInsert": bson.M{
				"name":     c.Name,
				"code":     c.Code,
				"category": c.Category,
				"game":     c.Game,
				"platform": c.Platform,
			}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// EnsureIndexes creates the lookup index used by the codes screen.
func (r *CheatRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "game", Value: 1}, {Key: "platform", Value: 1}, {Key: "category", Value: 1}},
	})
	return err
}
