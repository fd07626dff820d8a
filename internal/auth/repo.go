package auth

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/plantstock/plantstock/internal/platform/db"
	"github.com/plantstock/plantstock/internal/rbac"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// RowQuerier is satisfied by *pgxpool.Pool and pgx.Tx.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db RowQuerier
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(q RowQuerier) *PGRepository {
	return &PGRepository{db: q}
}

// FindByUsername fetches a user by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var (
		user User
		role string
	)
	err := r.db.QueryRow(ctx,
		`SELECT user_id, username, COALESCE(full_name, ''), user_role, password_hash, is_active FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.FullName, &role, &user.PasswordHash, &user.IsActive)
	if err != nil {
		return nil, db.MapError(err)
	}
	user.Role = rbac.Role(role)
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)
