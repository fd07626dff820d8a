package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultDuration is how long a notification stays visible unless configured otherwise.
const DefaultDuration = 3 * time.Second

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notifier is the fire-and-forget feedback channel toward the caller.
type Notifier interface {
	Notify(message string, duration time.Duration, kind Kind)
}

// Notification is one captured Notify call.
type Notification struct {
	Message    string `json:"message"`
	Kind       Kind   `json:"kind"`
	DurationMS int64  `json:"duration_ms"`
}

// Recorder captures notifications so an HTTP handler can render them in its response.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(message string, duration time.Duration, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Message: message, Kind: kind, DurationMS: duration.Milliseconds()})
}

// Last returns the most recent notification, or nil.
func (r *Recorder) Last() *Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return nil
	}
	n := r.items[len(r.items)-1]
	return &n
}

// All returns a copy of every captured notification.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// LogNotifier writes notifications to a slog logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(message string, duration time.Duration, kind Kind) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if kind == KindError {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, message, slog.String("kind", string(kind)), slog.Duration("duration", duration))
}

var (
	_ Notifier = (*Recorder)(nil)
	_ Notifier = LogNotifier{}
)
