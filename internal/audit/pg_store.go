package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is satisfied by *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ErrStoreRejected reports a write that did not land exactly one record.
var ErrStoreRejected = errors.New("audit: store rejected record")

// PGStore appends records into the audit_log table.
type PGStore struct {
	db Execer
}

// NewPGStore constructs a PostgreSQL backed store.
func NewPGStore(db Execer) *PGStore {
	return &PGStore{db: db}
}

const insertAuditLog = `INSERT INTO audit_log (user_id, action, success, entity, entity_id, meta, occurred_at, record_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (record_id) DO NOTHING`

// Append inserts rec. Exactly one row must be written, except that a record
// whose RecordID is already stored is accepted as a replay.
func (s *PGStore) Append(ctx context.Context, rec Record) error {
	tag, err := s.db.Exec(ctx, insertAuditLog,
		rec.ActorID,
		rec.Action,
		rec.Success,
		nullableText(rec.Entity),
		rec.EntityID,
		nullableJSON(rec.Meta),
		rec.OccurredAt,
		nullableText(rec.RecordID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 && rec.RecordID != "" {
		return nil
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("%w: %d rows affected", ErrStoreRejected, tag.RowsAffected())
	}
	return nil
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

var _ Store = (*PGStore)(nil)
