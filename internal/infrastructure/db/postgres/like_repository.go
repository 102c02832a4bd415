package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

// LikeRepository implements ports.LikeRepository on PostgreSQL. The primary
// key on (user_id, cheat_id) is the uniqueness guarantee.
type LikeRepository struct {
	pool *pgxpool.Pool
}

func NewLikeRepository(pool *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{pool: pool}
}

func (r *LikeRepository) Exists(ctx context.Context, userID string, cheatID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM likes WHERE user_id = $1 AND cheat_id = $2)`,
		userID, cheatID,
	).Scan(&ok)
	return ok, err
}

func (r *LikeRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, `SELECT count(*) FROM likes WHERE user_id = $1`, userID)
}

func (r *LikeRepository) CountByCheat(ctx context.Context, cheatID int64) (int64, error) {
	return r.count(ctx, `SELECT count(*) FROM likes WHERE cheat_id = $1`, cheatID)
}

func (r *LikeRepository) count(ctx context.Context, query string, arg interface{}) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	err := r.pool.QueryRow(ctx, query, arg).Scan(&n)
	return n, err
}

func (r *LikeRepository) Insert(ctx context.Context, like *domain.Like) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO likes (user_id, cheat_id, created_at) VALUES ($1, $2, $3)`,
		like.UserID, like.CheatID, like.CreatedAt.UTC(),
	)
	switch {
	case hasCode(err, codeUniqueViolation):
		return domain.ErrAlreadyLiked
	case hasCode(err, codeForeignKeyViolation):
		return domain.ErrCheatNotFound
	}
	return err
}

func (r *LikeRepository) Delete(ctx context.Context, userID string, cheatID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM likes WHERE user_id = $1 AND cheat_id = $2`, userID, cheatID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListLikedCheats returns liked cheats in insertion order.
func (r *LikeRepository) ListLikedCheats(ctx context.Context, userID string) ([]domain.Cheat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+cheatColumns+`
		FROM likes l
		JOIN cheats c ON c.id = l.cheat_id
		WHERE l.user_id = $1
		ORDER BY l.seq`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanCheat)
}

func (r *LikeRepository) CountsAtLeast(ctx context.Context, min int64) ([]domain.UserLikeCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT user_id, count(*)
		FROM likes
		GROUP BY user_id
		HAVING count(*) >= $1
		ORDER BY user_id`, min)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.UserLikeCount, error) {
		var uc domain.UserLikeCount
		err := row.Scan(&uc.UserID, &uc.Count)
		return uc, err
	})
}
