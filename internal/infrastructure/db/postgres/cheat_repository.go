package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

const cheatColumns = `c.id, c.name, c.code, c.category, c.game, c.platform`

// CheatRepository implements ports.CheatRepository on PostgreSQL.
type CheatRepository struct {
	pool *pgxpool.Pool
}

func NewCheatRepository(pool *pgxpool.Pool) *CheatRepository {
	return &CheatRepository{pool: pool}
}

func scanCheat(row pgx.CollectableRow) (domain.Cheat, error) {
	var c domain.Cheat
	if err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Category, &c.Game, &c.Platform); err != nil {
		return c, err
	}
	return c, validateRow("cheat", c)
}

func (r *CheatRepository) FindByID(ctx context.Context, id int64) (*domain.Cheat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+cheatColumns+` FROM cheats c WHERE c.id = $1`, id)
	if err != nil {
		return nil, err
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanCheat)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCheatNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CheatRepository) List(ctx context.Context, f ports.CheatFilter) ([]domain.Cheat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		where []string
		args  []interface{}
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("c.%s = $%d", column, len(args)))
	}
	add("game", f.Game)
	add("platform", f.Platform)
	add("category", f.Category)

	query := `SELECT ` + cheatColumns + ` FROM cheats c`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY c.id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanCheat)
}

// Seed inserts cheats that are not present yet.
func (r *CheatRepository) Seed(ctx context.Context, cheats []domain.Cheat) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	batch := &pgx.Batch{}
	for _, c := range cheats {
		batch.Queue(`INSERT INTO cheats (id, name, code, category, game, platform)
			VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Name, c.Code, c.Category, c.Game, c.Platform)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}
