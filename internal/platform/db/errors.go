package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/plantstock/plantstock/internal/shared"
)

const uniqueViolation = "23505"

// MapError translates driver errors into shared sentinels.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return shared.ErrDuplicate
	}
	return err
}

// ExpectOne reports shared.ErrNotFound when a write touched no row.
func ExpectOne(tag pgconn.CommandTag) error {
	if tag.RowsAffected() != 1 {
		return shared.ErrNotFound
	}
	return nil
}
