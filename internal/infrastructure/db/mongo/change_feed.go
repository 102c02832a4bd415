package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

const (
	watchRetryMin = 500 * time.Millisecond
	watchRetryMax = 30 * time.Second
)

// Server error codes after which a resume token can never be used again.
const (
	codeCappedPositionLost      = 136
	codeChangeStreamFatalError  = 280
	codeChangeStreamHistoryLost = 286
)

// Publisher receives decoded change events.
type Publisher interface {
	Publish(evt domain.ChangeEvent)
}

// changeDoc is the subset of a change stream event the watcher reads.
type changeDoc struct {
	OperationType string `bson:"operationType"`
	NS            struct {
		Coll string `bson:"coll"`
	} `bson:"ns"`
	DocumentKey struct {
		ID bson.RawValue `bson:"_id"`
	} `bson:"documentKey"`
}

// ChangeWatcher tails the database change stream and forwards likes, unlocks
// and subscription changes to a Publisher. Change streams need a replica set.
type ChangeWatcher struct {
	db  *mongo.Database
	pub Publisher
	log zerolog.Logger
}

func NewChangeWatcher(db *mongo.Database, pub Publisher, log zerolog.Logger) *ChangeWatcher {
	return &ChangeWatcher{db: db, pub: pub, log: log}
}

// Run watches until ctx is done, reopening the stream with backoff after
// errors and resuming from the last seen token.
func (w *ChangeWatcher) Run(ctx context.Context) error {
	var resume bson.Raw
	backoff := watchRetryMin

	for {
		token, err := w.watch(ctx, resume)
		if token != nil {
			resume = token
		}
		if ctx.Err() != nil {
			return nil
		}

		var gap bool
		if resume, gap = nextResume(resume, err); gap {
			w.log.Error().Err(err).Msg("change stream history lost, restarting from the current oplog position; changes in the gap were not delivered")
		}

		w.log.Warn().Err(err).Dur("retry_in", backoff).Msg("change stream interrupted")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > watchRetryMax {
			backoff = watchRetryMax
		}
	}
}

func (w *ChangeWatcher) watch(ctx context.Context, resume bson.Raw) (bson.Raw, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"ns.coll":       bson.M{"$in": bson.A{collectionLikes, collectionUserBadges, collectionSubscriptions}},
			"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}},
		}}},
	}
	opts := options.ChangeStream()
	if resume != nil {
		opts.SetResumeAfter(resume)
	}

	stream, err := w.db.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("open change stream: %w", err)
	}
	defer stream.Close(context.Background())

	w.log.Info().Msg("change stream opened")

	var last bson.Raw
	for stream.Next(ctx) {
		last = stream.ResumeToken()

		var doc changeDoc
		if err := stream.Decode(&doc); err != nil {
			w.log.Warn().Err(err).Msg("undecodable change event skipped")
			continue
		}
		evt, err := toChangeEvent(doc, time.Now().UTC())
		if err != nil {
			w.log.Warn().Err(err).Str("collection", doc.NS.Coll).Msg("change event skipped")
			continue
		}
		w.pub.Publish(evt)
	}
	if err := stream.Err(); err != nil {
		return last, err
	}
	return last, errors.New("change stream closed")
}

// nextResume decides where the next watch starts. A token the server no
// longer has is dropped, and gap reports that events were skipped.
func nextResume(resume bson.Raw, err error) (next bson.Raw, gap bool) {
	if resume == nil || !historyLost(err) {
		return resume, false
	}
	return nil, true
}

func historyLost(err error) bool {
	var se mongo.ServerError
	if !errors.As(err, &se) {
		return false
	}
	return se.HasErrorCode(codeChangeStreamHistoryLost) ||
		se.HasErrorCode(codeChangeStreamFatalError) ||
		se.HasErrorCode(codeCappedPositionLost)
}

func toChangeEvent(doc changeDoc, at time.Time) (domain.ChangeEvent, error) {
	evt := domain.ChangeEvent{At: at}

	switch doc.OperationType {
	case "insert":
		evt.Op = domain.OpInsert
	case "update", "replace":
		evt.Op = domain.OpUpdate
	case "delete":
		evt.Op = domain.OpDelete
	default:
		return evt, fmt.Errorf("unsupported operation %q", doc.OperationType)
	}

	key, ok := doc.DocumentKey.ID.StringValueOK()
	if !ok {
		return evt, fmt.Errorf("non-string _id in %s", doc.NS.Coll)
	}

	var err error
	switch doc.NS.Coll {
	case collectionLikes:
		evt.Relation = domain.RelationLikes
		evt.UserID, evt.CheatID, err = domain.ParseLikeKey(key)
	case collectionUserBadges:
		evt.Relation = domain.RelationUserBadges
		evt.UserID, evt.BadgeID, err = domain.ParseUserBadgeKey(key)
	case collectionSubscriptions:
		evt.Relation = domain.RelationSubscriptions
		evt.UserID = key
	default:
		err = fmt.Errorf("unexpected collection %q", doc.NS.Coll)
	}
	return evt, err
}
