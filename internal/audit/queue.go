package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// TaskAppend is the asynq task type carrying one Record.
	TaskAppend = "audit:append"
	// DefaultQueue is the asynq queue audit tasks are routed to.
	DefaultQueue = "audit"
	// DefaultMaxRetry bounds background redelivery of a failed append.
	DefaultMaxRetry = 10
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueStore hands records to a Redis-backed queue; the worker's
// AppendHandler persists them and retries on failure.
type QueueStore struct {
	client   Enqueuer
	queue    string
	maxRetry int
}

// NewQueueStore builds a QueueStore. An empty queue selects DefaultQueue.
func NewQueueStore(client Enqueuer, queue string) *QueueStore {
	if queue == "" {
		queue = DefaultQueue
	}
	return &QueueStore{client: client, queue: queue, maxRetry: DefaultMaxRetry}
}

// Append enqueues rec under a fresh id, used both as the asynq task id and as
// the record id that makes redelivered tasks insert at most once.
func (q *QueueStore) Append(ctx context.Context, rec Record) error {
	rec.RecordID = uuid.NewString()
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("audit: encode task: %w", err)
	}
	task := asynq.NewTask(TaskAppend, payload)
	_, err = q.client.EnqueueContext(ctx, task,
		asynq.Queue(q.queue),
		asynq.MaxRetry(q.maxRetry),
		asynq.TaskID(rec.RecordID),
	)
	if err != nil {
		return fmt.Errorf("audit: enqueue: %w", err)
	}
	return nil
}

// AppendHandler drains audit tasks into a Store.
type AppendHandler struct {
	store  Store
	logger *slog.Logger
}

// NewAppendHandler wires the worker side of QueueStore.
func NewAppendHandler(store Store, logger *slog.Logger) *AppendHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppendHandler{store: store, logger: logger}
}

// Handle processes a single audit:append task. Undecodable payloads are not retried.
func (h *AppendHandler) Handle(ctx context.Context, t *asynq.Task) error {
	var rec Record
	if err := json.Unmarshal(t.Payload(), &rec); err != nil {
		h.logger.Error("audit task payload invalid", slog.Any("error", err))
		return fmt.Errorf("audit: decode task: %v: %w", err, asynq.SkipRetry)
	}
	if err := h.store.Append(ctx, rec); err != nil {
		h.logger.Warn("audit task append failed, will retry",
			slog.String("action", rec.Action), slog.Int64("actor_id", rec.ActorID), slog.Any("error", err))
		return err
	}
	return nil
}

var _ Store = (*QueueStore)(nil)
