package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantstock/plantstock/internal/audit"
	"github.com/plantstock/plantstock/internal/rbac"
	"github.com/plantstock/plantstock/internal/shared"
)

type principal struct {
	id   int64
	role rbac.Role
}

func (p principal) GetID() int64       { return p.id }
func (p principal) GetRole() rbac.Role { return p.role }

type memoryJournal struct {
	entries []audit.Entry
	ok      bool
}

func (j *memoryJournal) LogAction(_ context.Context, e audit.Entry) bool {
	j.entries = append(j.entries, e)
	return j.ok
}

type outcomeCounter map[string]int

func (c outcomeCounter) WorkflowOutcome(permission, outcome string) {
	c[permission+"/"+outcome]++
}

func newRunner(journal audit.Journal, opts ...RunnerOption) *Runner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRunner(rbac.NewChecker(rbac.DefaultCatalog()), journal, logger, opts...)
}

func int64Ptr(v int64) *int64 { return &v }

func createMaterialOp(mutate func(context.Context) (Result, error)) Operation {
	return Operation{
		Permission: rbac.PermMaterialsCreate,
		Action:     audit.ActionMaterialsCreated,
		Entity:     "Material",
		Meta:       map[string]any{"name": "Steel", "unit": "kg", "description": ""},
		Mutate:     mutate,
		Messages: Messages{
			Denied:     "You do not have permission to add materials",
			Success:    "Material saved successfully",
			Failure:    "Error saving material",
			Unexpected: "Unexpected error",
		},
	}
}

func TestRunDeniedWritesOneFailedEntryAndSkipsMutation(t *testing.T) {
	journal := &memoryJournal{ok: true}
	counter := outcomeCounter{}
	runner := newRunner(journal, WithOutcomeObserver(counter))
	rec := &Recorder{}
	called := false

	outcome, err := runner.Run(context.Background(), principal{id: 4, role: rbac.RoleViewer}, rec,
		createMaterialOp(func(context.Context) (Result, error) {
			called = true
			return Result{}, nil
		}))

	assert.Equal(t, OutcomeDenied, outcome)
	assert.ErrorIs(t, err, ErrDenied)
	assert.False(t, called)
	require.Len(t, journal.entries, 1)
	entry := journal.entries[0]
	assert.Equal(t, int64(4), entry.ActorID)
	assert.Equal(t, audit.ActionMaterialsCreated, entry.Action)
	assert.False(t, entry.Success)
	assert.Equal(t, "Material", entry.Entity)
	assert.Equal(t, map[string]any{"reason": ReasonDenied}, entry.Meta)
	require.Len(t, rec.All(), 1)
	assert.Equal(t, Notification{Message: "You do not have permission to add materials", Kind: KindError, DurationMS: 3000}, *rec.Last())
	assert.Equal(t, 1, counter["materials.create/denied"])
}

func TestRunSuccessWritesOneSuccessEntry(t *testing.T) {
	journal := &memoryJournal{ok: true}
	runner := newRunner(journal)
	rec := &Recorder{}

	outcome, err := runner.Run(context.Background(), principal{id: 1, role: rbac.RoleAdmin}, rec,
		createMaterialOp(func(context.Context) (Result, error) {
			return Result{EntityID: int64Ptr(55)}, nil
		}))

	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, outcome)
	require.Len(t, journal.entries, 1)
	entry := journal.entries[0]
	assert.True(t, entry.Success)
	require.NotNil(t, entry.EntityID)
	assert.Equal(t, int64(55), *entry.EntityID)
	assert.Equal(t, "Steel", entry.Meta["name"])
	assert.Equal(t, "kg", entry.Meta["unit"])
	require.Len(t, rec.All(), 1)
	assert.Equal(t, KindSuccess, rec.Last().Kind)
	assert.Equal(t, "Material saved successfully", rec.Last().Message)
}

// ctxStore fails on a done context the way a pgx Exec does.
type ctxStore struct {
	records []audit.Record
}

func (s *ctxStore) Append(ctx context.Context, rec audit.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.records = append(s.records, rec)
	return nil
}

func TestRunAuditsSuccessAfterRequestCancelled(t *testing.T) {
	store := &ctxStore{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := newRunner(audit.NewService(store, logger))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outcome, err := runner.Run(ctx, principal{id: 1, role: rbac.RoleAdmin}, &Recorder{},
		createMaterialOp(func(context.Context) (Result, error) {
			cancel()
			return Result{EntityID: int64Ptr(9)}, nil
		}))

	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, outcome)
	require.Len(t, store.records, 1)
	assert.True(t, store.records[0].Success)
	assert.Equal(t, int64(9), *store.records[0].EntityID)
}

func TestRunKeepsOperationEntityID(t *testing.T) {
	journal := &memoryJournal{ok: true}
	op := createMaterialOp(func(context.Context) (Result, error) { return Result{EntityID: int64Ptr(99)}, nil })
	op.EntityID = int64Ptr(12)

	_, err := newRunner(journal).Run(context.Background(), principal{id: 1, role: rbac.RoleSupervisor}, &Recorder{}, op)

	require.NoError(t, err)
	assert.Equal(t, int64(12), *journal.entries[0].EntityID)
}

func TestRunMutationFailureWritesFailedEntry(t *testing.T) {
	journal := &memoryJournal{ok: true}
	runner := newRunner(journal)
	rec := &Recorder{}
	boom := errors.New("connection refused")

	outcome, err := runner.Run(context.Background(), principal{id: 2, role: rbac.RoleAdmin}, rec,
		createMaterialOp(func(context.Context) (Result, error) { return Result{}, boom }))

	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, ErrMutation)
	assert.ErrorIs(t, err, boom)
	require.Len(t, journal.entries, 1)
	assert.False(t, journal.entries[0].Success)
	assert.Equal(t, ReasonMutationFailed, journal.entries[0].Meta["reason"])
	assert.Equal(t, "connection refused", journal.entries[0].Meta["error"])
	require.Len(t, rec.All(), 1)
	assert.Equal(t, "Error saving material", rec.Last().Message)
	assert.Equal(t, KindError, rec.Last().Kind)
}

func TestRunDuplicateUsesSpecificMessage(t *testing.T) {
	op := createMaterialOp(func(context.Context) (Result, error) {
		return Result{}, fmt.Errorf("insert material: %w", shared.ErrDuplicate)
	})
	op.Messages.Duplicate = "A material with that name already exists"
	rec := &Recorder{}

	_, err := newRunner(&memoryJournal{ok: true}).Run(context.Background(), principal{id: 1, role: rbac.RoleAdmin}, rec, op)

	assert.ErrorIs(t, err, shared.ErrDuplicate)
	assert.Equal(t, "A material with that name already exists", rec.Last().Message)
}

func TestRunRecoversMutationPanic(t *testing.T) {
	journal := &memoryJournal{ok: true}
	rec := &Recorder{}

	var (
		outcome Outcome
		err     error
	)
	require.NotPanics(t, func() {
		outcome, err = newRunner(journal).Run(context.Background(), principal{id: 3, role: rbac.RoleAdmin}, rec,
			createMaterialOp(func(context.Context) (Result, error) { panic("nil map") }))
	})

	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, ErrMutation)
	require.Len(t, journal.entries, 1)
	assert.False(t, journal.entries[0].Success)
	assert.Equal(t, "Unexpected error", rec.Last().Message)
}

func TestRunValidationFailureWritesNoEntry(t *testing.T) {
	journal := &memoryJournal{ok: true}
	rec := &Recorder{}
	called := false
	op := createMaterialOp(func(context.Context) (Result, error) {
		called = true
		return Result{}, nil
	})
	op.Validate = func() error { return Invalid("Please select a valid material to edit") }

	outcome, err := newRunner(journal).Run(context.Background(), principal{id: 1, role: rbac.RoleAdmin}, rec, op)

	assert.Equal(t, OutcomeInvalid, outcome)
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, called)
	assert.Empty(t, journal.entries)
	require.Len(t, rec.All(), 1)
	assert.Equal(t, "Please select a valid material to edit", rec.Last().Message)
}

func TestRunPlainValidationErrorIsWrapped(t *testing.T) {
	op := createMaterialOp(nil)
	op.Validate = func() error { return errors.New("Name is required") }
	rec := &Recorder{}

	_, err := newRunner(&memoryJournal{}).Run(context.Background(), principal{id: 1, role: rbac.RoleAdmin}, rec, op)

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Name is required", rec.Last().Message)
}

func TestRunOutcomeIgnoresJournalResult(t *testing.T) {
	journal := &memoryJournal{ok: false}

	outcome, err := newRunner(journal).Run(context.Background(), principal{id: 1, role: rbac.RoleAdmin}, &Recorder{},
		createMaterialOp(func(context.Context) (Result, error) { return Result{}, nil }))

	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, outcome)
	assert.Len(t, journal.entries, 1)
}

func TestRunNilPrincipalIsDenied(t *testing.T) {
	journal := &memoryJournal{ok: true}

	outcome, _ := newRunner(journal).Run(context.Background(), nil, &Recorder{},
		createMaterialOp(func(context.Context) (Result, error) { return Result{}, nil }))

	assert.Equal(t, OutcomeDenied, outcome)
	require.Len(t, journal.entries, 1)
	assert.Equal(t, int64(0), journal.entries[0].ActorID)
}

func TestRunEveryRoleYieldsOneEntryAndOneNotification(t *testing.T) {
	for _, role := range rbac.Roles() {
		journal := &memoryJournal{ok: true}
		rec := &Recorder{}
		_, _ = newRunner(journal).Run(context.Background(), principal{id: 10, role: role}, rec,
			createMaterialOp(func(context.Context) (Result, error) { return Result{}, nil }))
		assert.Len(t, journal.entries, 1, role)
		assert.Len(t, rec.All(), 1, role)
	}
}

func TestWithDurationOverridesDefault(t *testing.T) {
	rec := &Recorder{}
	runner := newRunner(&memoryJournal{ok: true}, WithDuration(5*time.Second))

	_, _ = runner.Run(context.Background(), principal{id: 1, role: rbac.RoleAdmin}, rec,
		createMaterialOp(func(context.Context) (Result, error) { return Result{}, nil }))

	assert.Equal(t, int64(5000), rec.Last().DurationMS)
}

func TestRecorderLastEmpty(t *testing.T) {
	assert.Nil(t, (&Recorder{}).Last())
}
