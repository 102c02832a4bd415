package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

// likeDoc is keyed by "<user>:<cheat>" so the unique pair constraint comes
// from _id and delete notifications carry both halves of the key.
type likeDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	CheatID   int64     `bson:"cheat_id"`
	CreatedAt time.Time `bson:"created_at"`
}

// LikeRepository implements ports.LikeRepository using MongoDB.
type LikeRepository struct {
	col *mongo.Collection
}

func NewLikeRepository(db *mongo.Database) *LikeRepository {
	return &LikeRepository{col: db.Collection(collectionLikes)}
}

func (r *LikeRepository) Exists(ctx context.Context, userID string, cheatID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": domain.LikeKey(userID, cheatID)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *LikeRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"user_id": userID})
}

func (r *LikeRepository) CountByCheat(ctx context.Context, cheatID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"cheat_id": cheatID})
}

func (r *LikeRepository) Insert(ctx context.Context, like *domain.Like) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, likeDoc{
		ID:        like.Key(),
		UserID:    like.UserID,
		CheatID:   like.CheatID,
		CreatedAt: like.CreatedAt.UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrAlreadyLiked
	}
	return err
}

func (r *LikeRepository) Delete(ctx context.Context, userID string, cheatID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": domain.LikeKey(userID, cheatID)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListLikedCheats joins the user's likes to cheats in like creation order.
// Likes pointing at a missing cheat are dropped by the $unwind stage.
func (r *LikeRepository) ListLikedCheats(ctx context.Context, userID string) ([]domain.Cheat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionCheats,
			"localField":   "cheat_id",
			"foreignField": "_id",
			"as":           "cheat",
		}}},
		{{Key: "$unwind", Value: "$cheat"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$cheat"}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
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

func (r *LikeRepository) CountsAtLeast(ctx context.Context, min int64) ([]domain.UserLikeCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$user_id", "count": bson.M{"$sum": 1}}}},
		{{Key: "$match", Value: bson.M{"count": bson.M{"$gte": min}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		UserID string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make([]domain.UserLikeCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.UserLikeCount{UserID: row.UserID, Count: row.Count})
	}
	return out, nil
}

// EnsureIndexes creates the per-user and per-cheat count indexes.
func (r *LikeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "cheat_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
