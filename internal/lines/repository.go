package lines

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/plantstock/plantstock/internal/platform/db"
)

// Repository is the data access port for production lines.
type Repository interface {
	List(ctx context.Context) ([]ProductionLine, error)
	Get(ctx context.Context, id int64) (ProductionLine, error)
	SearchByName(ctx context.Context, pattern string) ([]ProductionLine, error)
	Create(ctx context.Context, l ProductionLine) (int64, error)
	Update(ctx context.Context, l ProductionLine) error
	Delete(ctx context.Context, id int64) error
}

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgRepository struct {
	db Querier
}

// NewRepository returns the PostgreSQL implementation.
func NewRepository(q Querier) Repository {
	return &pgRepository{db: q}
}

const selectLines = `SELECT line_id, line_name, COALESCE(description, '') AS description, is_active FROM production_lines`

func (r *pgRepository) List(ctx context.Context) ([]ProductionLine, error) {
	return r.query(ctx, selectLines+` ORDER BY line_id ASC`)
}

func (r *pgRepository) Get(ctx context.Context, id int64) (ProductionLine, error) {
	rows, err := r.db.Query(ctx, selectLines+` WHERE line_id = $1`, id)
	if err != nil {
		return ProductionLine{}, err
	}
	l, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[ProductionLine])
	return l, db.MapError(err)
}

func (r *pgRepository) SearchByName(ctx context.Context, pattern string) ([]ProductionLine, error) {
	return r.query(ctx, selectLines+` WHERE line_name ILIKE $1 ORDER BY line_name ASC`, pattern)
}

func (r *pgRepository) Create(ctx context.Context, l ProductionLine) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO production_lines (line_name, description, is_active) VALUES ($1, $2, $3) RETURNING line_id`,
		l.Name, l.Description, l.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, db.MapError(err)
	}
	return id, nil
}

func (r *pgRepository) Update(ctx context.Context, l ProductionLine) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE production_lines SET line_name = $1, description = $2, is_active = $3 WHERE line_id = $4`,
		l.Name, l.Description, l.IsActive, l.ID,
	)
	if err != nil {
		return db.MapError(err)
	}
	return db.ExpectOne(tag)
}

func (r *pgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM production_lines WHERE line_id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	return db.ExpectOne(tag)
}

func (r *pgRepository) query(ctx context.Context, sql string, args ...any) ([]ProductionLine, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[ProductionLine])
}
