package materials

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/plantstock/plantstock/internal/platform/db"
)

// Repository is the data access port for materials.
type Repository interface {
	List(ctx context.Context) ([]Material, error)
	Get(ctx context.Context, id int64) (Material, error)
	SearchByName(ctx context.Context, pattern string) ([]Material, error)
	Create(ctx context.Context, m Material) (int64, error)
	Update(ctx context.Context, m Material) error
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

const selectMaterials = `SELECT material_id, material_name, COALESCE(description, '') AS description, unit_of_measure FROM materials`

func (r *pgRepository) List(ctx context.Context) ([]Material, error) {
	return r.query(ctx, selectMaterials+` ORDER BY material_id ASC`)
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Material, error) {
	rows, err := r.db.Query(ctx, selectMaterials+` WHERE material_id = $1`, id)
	if err != nil {
		return Material{}, err
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Material])
	return m, db.MapError(err)
}

// SearchByName matches pattern with ILIKE; pattern must already be escaped.
func (r *pgRepository) SearchByName(ctx context.Context, pattern string) ([]Material, error) {
	return r.query(ctx, selectMaterials+` WHERE material_name ILIKE $1 ORDER BY material_name ASC`, pattern)
}

func (r *pgRepository) Create(ctx context.Context, m Material) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO materials (material_name, description, unit_of_measure) VALUES ($1, $2, $3) RETURNING material_id`,
		m.Name, m.Description, m.Unit,
	).Scan(&id)
	if err != nil {
		return 0, db.MapError(err)
	}
	return id, nil
}

func (r *pgRepository) Update(ctx context.Context, m Material) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE materials SET material_name = $1, description = $2, unit_of_measure = $3 WHERE material_id = $4`,
		m.Name, m.Description, m.Unit, m.ID,
	)
	if err != nil {
		return db.MapError(err)
	}
	return db.ExpectOne(tag)
}

func (r *pgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM materials WHERE material_id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	return db.ExpectOne(tag)
}

func (r *pgRepository) query(ctx context.Context, sql string, args ...any) ([]Material, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Material])
}
