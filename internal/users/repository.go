package users

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/plantstock/plantstock/internal/platform/db"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context, includeInactive bool) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	SearchByName(ctx context.Context, pattern string) ([]User, error)
	CreateUser(ctx context.Context, u User, passwordHash string) (int64, error)
	UpdateUser(ctx context.Context, u User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	db Querier
}

// NewRepository constructs a repository.
func NewRepository(q Querier) *Repository {
	return &Repository{db: q}
}

const selectUsers = `SELECT user_id, username, COALESCE(full_name, '') AS full_name, user_role, is_active FROM users`

// ListUsers returns users ordered by id.
func (r *Repository) ListUsers(ctx context.Context, includeInactive bool) ([]User, error) {
	sql := selectUsers
	if !includeInactive {
		sql += ` WHERE is_active = TRUE`
	}
	return r.query(ctx, sql+` ORDER BY user_id ASC`)
}

// GetUser returns one user.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	rows, err := r.db.Query(ctx, selectUsers+` WHERE user_id = $1`, id)
	if err != nil {
		return User{}, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[User])
	return u, db.MapError(err)
}

// SearchByName matches username or full name.
func (r *Repository) SearchByName(ctx context.Context, pattern string) ([]User, error) {
	return r.query(ctx, selectUsers+` WHERE username ILIKE $1 OR full_name ILIKE $1 ORDER BY username ASC`, pattern)
}

// CreateUser inserts u. A taken username maps to shared.ErrDuplicate.
func (r *Repository) CreateUser(ctx context.Context, u User, passwordHash string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, full_name, user_role, is_active) VALUES ($1, $2, $3, $4, $5) RETURNING user_id`,
		u.Username, passwordHash, u.FullName, string(u.Role), u.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, db.MapError(err)
	}
	return id, nil
}

// UpdateUser rewrites the profile fields of u.ID.
func (r *Repository) UpdateUser(ctx context.Context, u User) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET username = $1, full_name = $2, user_role = $3, is_active = $4 WHERE user_id = $5`,
		u.Username, u.FullName, string(u.Role), u.IsActive, u.ID,
	)
	if err != nil {
		return db.MapError(err)
	}
	return db.ExpectOne(tag)
}

// UpdatePassword stores a new hash for id.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE user_id = $2`, passwordHash, id)
	if err != nil {
		return db.MapError(err)
	}
	return db.ExpectOne(tag)
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]User, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[User])
}

var _ RepositoryPort = (*Repository)(nil)
