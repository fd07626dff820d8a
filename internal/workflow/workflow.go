package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/plantstock/plantstock/internal/audit"
	"github.com/plantstock/plantstock/internal/rbac"
	"github.com/plantstock/plantstock/internal/shared"
)

var (
	// ErrValidation marks input rejected before any permission check.
	ErrValidation = errors.New("workflow: validation failed")
	// ErrDenied marks a principal lacking the operation's permission.
	ErrDenied = errors.New("workflow: permission denied")
	// ErrMutation marks a failed or panicking mutation.
	ErrMutation = errors.New("workflow: mutation failed")
)

// Reasons recorded in the meta of failed audit entries.
const (
	ReasonDenied         = "Insufficient permissions"
	ReasonMutationFailed = "Mutation failed"
)

// Outcome is the terminal state of one Run.
type Outcome string

const (
	OutcomeInvalid   Outcome = "invalid"
	OutcomeDenied    Outcome = "denied"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Messages are the user-facing texts of an operation.
type Messages struct {
	Denied    string
	Success   string
	Failure   string
	Duplicate string
	// Unexpected is shown when the mutation panics. Falls back to Failure.
	Unexpected string
}

// Result carries what the mutation produced.
type Result struct {
	EntityID *int64
}

// Operation describes one privileged action.
type Operation struct {
	Permission rbac.Permission
	Action     audit.Action
	Entity     string
	EntityID   *int64
	Meta       map[string]any
	Validate   func() error
	Mutate     func(ctx context.Context) (Result, error)
	Messages   Messages
}

// ValidationError carries the message shown for rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError.
func Invalid(message string) error {
	return &ValidationError{Message: message}
}

// PermissionChecker is satisfied by *rbac.Checker.
type PermissionChecker interface {
	HasPermission(principal rbac.Principal, perm rbac.Permission) bool
}

// OutcomeObserver receives one call per terminal outcome.
type OutcomeObserver interface {
	WorkflowOutcome(permission, outcome string)
}

// Runner executes operations: validate, authorize, mutate, audit, notify.
type Runner struct {
	checker  PermissionChecker
	journal  audit.Journal
	logger   *slog.Logger
	observer OutcomeObserver
	duration time.Duration
}

// RunnerOption customises a Runner.
type RunnerOption func(*Runner)

// WithDuration overrides DefaultDuration.
func WithDuration(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.duration = d
		}
	}
}

// WithOutcomeObserver attaches a metrics sink.
func WithOutcomeObserver(o OutcomeObserver) RunnerOption {
	return func(r *Runner) { r.observer = o }
}

// NewRunner wires the collaborators of every privileged operation.
func NewRunner(checker PermissionChecker, journal audit.Journal, logger *slog.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{checker: checker, journal: journal, logger: logger, duration: DefaultDuration}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes op on behalf of principal. Exactly one notification is emitted per
// call, and every call that passes validation writes exactly one audit entry.
func (r *Runner) Run(ctx context.Context, principal rbac.Principal, notifier Notifier, op Operation) (Outcome, error) {
	if notifier == nil {
		notifier = LogNotifier{Logger: r.logger}
	}

	if op.Validate != nil {
		if err := op.Validate(); err != nil {
			notifier.Notify(validationMessage(err), r.duration, KindError)
			r.observe(op, OutcomeInvalid)
			if !errors.Is(err, ErrValidation) {
				err = fmt.Errorf("%w: %v", ErrValidation, err)
			}
			return OutcomeInvalid, err
		}
	}

	if r.checker == nil || !r.checker.HasPermission(principal, op.Permission) {
		notifier.Notify(op.Messages.Denied, r.duration, KindError)
		r.record(ctx, principal, op, false, op.EntityID, map[string]any{"reason": ReasonDenied})
		r.logger.Info("workflow denied",
			slog.String("permission", string(op.Permission)),
			slog.Int64("actor_id", actorID(principal)))
		r.observe(op, OutcomeDenied)
		return OutcomeDenied, fmt.Errorf("%w: %s", ErrDenied, op.Permission)
	}

	result, err := r.mutate(ctx, op)
	if err != nil {
		notifier.Notify(failureMessage(op.Messages, err), r.duration, KindError)
		r.record(ctx, principal, op, false, op.EntityID, map[string]any{
			"reason": ReasonMutationFailed,
			"error":  err.Error(),
		})
		r.logger.Warn("workflow mutation failed",
			slog.String("permission", string(op.Permission)),
			slog.Int64("actor_id", actorID(principal)),
			slog.Any("error", err))
		r.observe(op, OutcomeFailed)
		if !errors.Is(err, ErrMutation) {
			err = fmt.Errorf("%w: %w", ErrMutation, err)
		}
		return OutcomeFailed, err
	}

	entityID := op.EntityID
	if entityID == nil {
		entityID = result.EntityID
	}
	notifier.Notify(op.Messages.Success, r.duration, KindSuccess)
	r.record(ctx, principal, op, true, entityID, op.Meta)
	r.observe(op, OutcomeSucceeded)
	return OutcomeSucceeded, nil
}

type panicError struct {
	value any
}

func (e *panicError) Error() string { return fmt.Sprintf("mutation panicked: %v", e.value) }

func (r *Runner) mutate(ctx context.Context, op Operation) (result Result, err error) {
	if op.Mutate == nil {
		return Result{}, errors.New("no mutation configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = &panicError{value: rec}
		}
	}()
	return op.Mutate(ctx)
}

func (r *Runner) record(ctx context.Context, principal rbac.Principal, op Operation, success bool, entityID *int64, meta map[string]any) {
	if r.journal == nil {
		return
	}
	// The mutation has already happened; a cancelled request must not drop its record.
	// The write result is diagnostic only.
	r.journal.LogAction(context.WithoutCancel(ctx), audit.Entry{
		ActorID:  actorID(principal),
		Action:   op.Action,
		Success:  success,
		Entity:   op.Entity,
		EntityID: entityID,
		Meta:     meta,
	})
}

func (r *Runner) observe(op Operation, outcome Outcome) {
	if r.observer != nil {
		r.observer.WorkflowOutcome(string(op.Permission), string(outcome))
	}
}

func validationMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}

func failureMessage(m Messages, err error) string {
	var perr *panicError
	switch {
	case errors.As(err, &perr) && m.Unexpected != "":
		return m.Unexpected
	case errors.Is(err, shared.ErrDuplicate) && m.Duplicate != "":
		return m.Duplicate
	default:
		return m.Failure
	}
}

func actorID(p rbac.Principal) int64 {
	if p == nil {
		return 0
	}
	return p.GetID()
}

// PrincipalName returns the username of principal when it exposes one.
func PrincipalName(p rbac.Principal) string {
	if named, ok := p.(interface{ GetUsername() string }); ok {
		return named.GetUsername()
	}
	return ""
}
