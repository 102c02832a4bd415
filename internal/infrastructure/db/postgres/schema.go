package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// notifyChannel is the LISTEN/NOTIFY channel fed by the change triggers.
const notifyChannel = "gateway_changes"

const migrateTimeout = time.Minute

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS cheats (
		id       BIGINT PRIMARY KEY,
		name     TEXT NOT NULL,
		code     TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		game     TEXT NOT NULL,
		platform TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS cheats_game_platform_idx ON cheats (game, platform, category)`,

	`CREATE TABLE IF NOT EXISTS likes (
		user_id    TEXT        NOT NULL,
		cheat_id   BIGINT      NOT NULL REFERENCES cheats (id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		seq        BIGSERIAL,
		PRIMARY KEY (user_id, cheat_id)
	)`,
	`CREATE INDEX IF NOT EXISTS likes_cheat_idx ON likes (cheat_id)`,

	`CREATE TABLE IF NOT EXISTS badges (
		id            BIGINT PRIMARY KEY,
		name          TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		icon          TEXT NOT NULL DEFAULT '',
		trigger_type  TEXT NOT NULL,
		trigger_value BIGINT
	)`,

	`CREATE TABLE IF NOT EXISTS user_badges (
		user_id     TEXT        NOT NULL,
		badge_id    BIGINT      NOT NULL REFERENCES badges (id),
		unlocked_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, badge_id)
	)`,

	`CREATE TABLE IF NOT EXISTS user_subscriptions (
		user_id       TEXT PRIMARY KEY,
		is_premium    BOOLEAN     NOT NULL DEFAULT false,
		premium_until TIMESTAMPTZ,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,

	`CREATE OR REPLACE FUNCTION notify_gateway_change() RETURNS trigger AS $$
	DECLARE
		r jsonb;
	BEGIN
		IF TG_OP = 'DELETE' THEN
			r := to_jsonb(OLD);
		ELSE
			r := to_jsonb(NEW);
		END IF;
		PERFORM pg_notify('` + notifyChannel + `', json_build_object(
			'relation', TG_TABLE_NAME,
			'op',       TG_OP,
			'user_id',  r->>'user_id',
			'cheat_id', (r->>'cheat_id')::bigint,
			'badge_id', (r->>'badge_id')::bigint
		)::text);
		RETURN NULL;
	END;
	$$ LANGUAGE plpgsql`,
}

// notifiedTables get an AFTER ROW trigger publishing to notifyChannel.
var notifiedTables = []string{"likes", "user_badges", "user_subscriptions"}

// Migrate creates the schema and change triggers. It is safe to run on
// every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, migrateTimeout)
	defer cancel()

	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	for _, table := range notifiedTables {
		trigger := table + "_notify"
		stmts := []string{
			fmt.Sprintf(`DROP TRIGGER IF EXISTS %s ON %s`, trigger, table),
			fmt.Sprintf(`CREATE TRIGGER %s AFTER INSERT OR UPDATE OR DELETE ON %s
				FOR EACH ROW EXECUTE FUNCTION notify_gateway_change()`, trigger, table),
		}
		for _, stmt := range stmts {
			if _, err := pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("trigger %s: %w", trigger, err)
			}
		}
	}
	return nil
}
