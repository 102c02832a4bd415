package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

const badgeColumns = `id, name, description, icon, trigger_type, trigger_value`

// BadgeRepository implements ports.BadgeRepository on PostgreSQL.
type BadgeRepository struct {
	pool *pgxpool.Pool
}

func NewBadgeRepository(pool *pgxpool.Pool) *BadgeRepository {
	return &BadgeRepository{pool: pool}
}

func scanBadge(row pgx.CollectableRow) (domain.Badge, error) {
	var (
		b       domain.Badge
		trigger string
	)
	if err := row.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &trigger, &b.Threshold); err != nil {
		return b, err
	}
	b.Trigger = domain.TriggerType(trigger)
	return b, validateRow("badge", b)
}

func (r *BadgeRepository) List(ctx context.Context) ([]domain.Badge, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+badgeColumns+` FROM badges ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanBadge)
}

func (r *BadgeRepository) ListByTrigger(ctx context.Context, trigger domain.TriggerType) ([]domain.Badge, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+badgeColumns+`
		FROM badges
		WHERE trigger_type = $1
		ORDER BY trigger_value ASC NULLS FIRST, id`, string(trigger))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanBadge)
}

func (r *BadgeRepository) ListUserBadges(ctx context.Context, userID string) ([]domain.UserBadge, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT user_id, badge_id, unlocked_at
		FROM user_badges
		WHERE user_id = $1
		ORDER BY unlocked_at, badge_id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.UserBadge, error) {
		var ub domain.UserBadge
		err := row.Scan(&ub.UserID, &ub.BadgeID, &ub.UnlockedAt)
		return ub, err
	})
}

func (r *BadgeRepository) InsertUserBadge(ctx context.Context, ub *domain.UserBadge) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_badges (user_id, badge_id, unlocked_at) VALUES ($1, $2, $3)`,
		ub.UserID, ub.BadgeID, ub.UnlockedAt.UTC(),
	)
	if hasCode(err, codeUniqueViolation) {
		return domain.ErrBadgeAlreadyUnlocked
	}
	return err
}

func (r *BadgeRepository) EnsureCatalog(ctx context.Context, badges []domain.Badge) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	batch := &pgx.Batch{}
	for _, b := range badges {
		batch.Queue(`INSERT INTO badges (`+badgeColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
			b.ID, b.Name, b.Description, b.Icon, string(b.Trigger), b.Threshold)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}
