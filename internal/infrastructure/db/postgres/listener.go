package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

const (
	listenRetryMin = 500 * time.Millisecond
	listenRetryMax = 30 * time.Second
)

// Publisher receives decoded change events.
type Publisher interface {
	Publish(evt domain.ChangeEvent)
}

// notifyPayload is the JSON document built by notify_gateway_change().
type notifyPayload struct {
	Relation string  `json:"relation"`
	Op       string  `json:"op"`
	UserID   *string `json:"user_id"`
	CheatID  *int64  `json:"cheat_id"`
	BadgeID  *int64  `json:"badge_id"`
}

// Listener holds one pool connection in LISTEN mode and forwards every
// notification to a Publisher.
type Listener struct {
	pool *pgxpool.Pool
	pub  Publisher
	log  zerolog.Logger
}

func NewListener(pool *pgxpool.Pool, pub Publisher, log zerolog.Logger) *Listener {
	return &Listener{pool: pool, pub: pub, log: log}
}

// Run listens until ctx is done, reconnecting with backoff after errors.
// Notifications sent while disconnected are lost.
func (l *Listener) Run(ctx context.Context) error {
	backoff := listenRetryMin
	for {
		err := l.listen(ctx, func() { backoff = listenRetryMin })
		if ctx.Err() != nil {
			return nil
		}

		l.log.Warn().Err(err).Dur("retry_in", backoff).Msg("notification listener interrupted")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > listenRetryMax {
			backoff = listenRetryMax
		}
	}
}

func (l *Listener) listen(ctx context.Context, connected func()) error {
	pooled, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	// A connection left in LISTEN mode must not return to the pool.
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	connected()
	l.log.Info().Str("channel", notifyChannel).Msg("listening for gateway changes")

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		evt, err := parseNotification(n.Payload, time.Now().UTC())
		if err != nil {
			l.log.Warn().Err(err).Msg("notification skipped")
			continue
		}
		l.pub.Publish(evt)
	}
}

func parseNotification(payload string, at time.Time) (domain.ChangeEvent, error) {
	var p notifyPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return domain.ChangeEvent{}, fmt.Errorf("decode notification: %w", err)
	}

	evt := domain.ChangeEvent{
		Relation: domain.Relation(p.Relation),
		Op:       domain.ChangeOp(p.Op),
		At:       at,
	}
	switch evt.Op {
	case domain.OpInsert, domain.OpUpdate, domain.OpDelete:
	default:
		return domain.ChangeEvent{}, fmt.Errorf("unsupported operation %q", p.Op)
	}
	switch evt.Relation {
	case domain.RelationLikes, domain.RelationUserBadges, domain.RelationSubscriptions:
	default:
		return domain.ChangeEvent{}, fmt.Errorf("unexpected relation %q", p.Relation)
	}

	if p.UserID != nil {
		evt.UserID = *p.UserID
	}
	if p.CheatID != nil {
		evt.CheatID = *p.CheatID
	}
	if p.BadgeID != nil {
		evt.BadgeID = *p.BadgeID
	}
	return evt, nil
}
