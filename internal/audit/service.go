package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Entry is an attempted action and its outcome. ActorID zero means no actor.
type Entry struct {
	ActorID  int64
	Action   Action
	Success  bool
	Entity   string
	EntityID *int64
	Meta     map[string]any
	At       time.Time
}

// Record is an Entry serialized for storage. It doubles as the queue payload.
// RecordID is set by stores that may deliver a record more than once.
type Record struct {
	RecordID   string          `json:"record_id,omitempty"`
	ActorID    int64           `json:"actor_id"`
	Action     string          `json:"action"`
	Success    bool            `json:"success"`
	Entity     string          `json:"entity,omitempty"`
	EntityID   *int64          `json:"entity_id,omitempty"`
	Meta       json.RawMessage `json:"meta,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Store appends records to durable storage, preserving submission order.
type Store interface {
	Append(ctx context.Context, rec Record) error
}

// Journal records attempted actions. LogAction never fails loudly: it
// reports whether the entry was accepted and nothing more.
type Journal interface {
	LogAction(ctx context.Context, entry Entry) bool
}

// WriteObserver receives one callback per LogAction call.
type WriteObserver interface {
	AuditWrite(action string, ok bool)
}

var emptyMeta = json.RawMessage(`{}`)

// Service is the best-effort Journal: a missing actor, an encoding problem or
// a store failure turns into a diagnostic and a false result, never an error
// the caller has to handle.
type Service struct {
	store    Store
	logger   *slog.Logger
	observer WriteObserver
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithObserver attaches write metrics.
func WithObserver(o WriteObserver) Option {
	return func(s *Service) { s.observer = o }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds the journal over store.
func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LogAction appends entry and reports whether the store accepted it.
func (s *Service) LogAction(ctx context.Context, entry Entry) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("audit log panicked", append(entryAttrs(entry), slog.Any("panic", r))...)
			ok = false
		}
		s.observe(entry.Action, ok)
	}()

	if entry.ActorID == 0 {
		s.logger.Warn("audit log without actor", slog.String("action", string(entry.Action)))
		return false
	}
	if !entry.Action.Valid() {
		s.logger.Error("audit log with unknown action", slog.String("action", string(entry.Action)))
		return false
	}
	if s.store == nil {
		s.logger.Error("audit store not configured", entryAttrs(entry)...)
		return false
	}

	rec := Record{
		ActorID:    entry.ActorID,
		Action:     string(entry.Action),
		Success:    entry.Success,
		Entity:     entry.Entity,
		EntityID:   entry.EntityID,
		Meta:       s.encodeMeta(entry),
		OccurredAt: entry.At,
	}
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = s.now().UTC()
	}

	if err := s.store.Append(ctx, rec); err != nil {
		s.logger.Error("audit log append failed", append(entryAttrs(entry), slog.Any("error", err))...)
		return false
	}
	return true
}

func (s *Service) encodeMeta(entry Entry) json.RawMessage {
	if entry.Meta == nil {
		return nil
	}
	raw, err := json.Marshal(entry.Meta)
	if err != nil {
		s.logger.Warn("audit meta not serializable, storing empty object",
			slog.String("action", string(entry.Action)), slog.Any("error", err))
		return emptyMeta
	}
	return raw
}

func (s *Service) observe(action Action, ok bool) {
	if s.observer != nil {
		s.observer.AuditWrite(string(action), ok)
	}
}

func entryAttrs(entry Entry) []any {
	attrs := []any{
		slog.Int64("actor_id", entry.ActorID),
		slog.String("action", string(entry.Action)),
		slog.Bool("success", entry.Success),
	}
	if entry.Entity != "" {
		attrs = append(attrs, slog.String("entity", entry.Entity))
	}
	if entry.EntityID != nil {
		attrs = append(attrs, slog.Int64("entity_id", *entry.EntityID))
	}
	return attrs
}
