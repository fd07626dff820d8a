package lines

import (
	"context"
	"errors"

	"github.com/plantstock/plantstock/internal/audit"
	"github.com/plantstock/plantstock/internal/rbac"
	"github.com/plantstock/plantstock/internal/shared"
	"github.com/plantstock/plantstock/internal/workflow"
)

// Entity labels production line audit entries.
const Entity = "ProductionLine"

var formMessages = map[string]string{
	"Name.required": "Line name is required",
	"Name.max":      "Line name is too long",
	"Description":   "Description is too long",
}

var saveMessages = workflow.Messages{
	Success:    "Production line saved successfully",
	Failure:    "Failed to save production line",
	Duplicate:  "A production line with that name already exists",
	Unexpected: "Error saving production line",
}

// Service runs production line mutations through the workflow.
type Service struct {
	repo   Repository
	runner *workflow.Runner
}

// NewService builds a Service.
func NewService(repo Repository, runner *workflow.Runner) *Service {
	return &Service{repo: repo, runner: runner}
}

// List returns every production line ordered by id.
func (s *Service) List(ctx context.Context) ([]ProductionLine, error) {
	return s.repo.List(ctx)
}

// Get returns one production line.
func (s *Service) Get(ctx context.Context, id int64) (ProductionLine, error) {
	if id <= 0 {
		return ProductionLine{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Search routes a search box value; false means the query was suppressed.
func (s *Service) Search(ctx context.Context, raw string) ([]ProductionLine, bool, error) {
	q := shared.ParseQuery(raw)
	switch q.Kind {
	case shared.QueryAll:
		items, err := s.repo.List(ctx)
		return items, true, err
	case shared.QueryByID:
		l, err := s.repo.Get(ctx, q.ID)
		if errors.Is(err, shared.ErrNotFound) {
			return []ProductionLine{}, true, nil
		}
		if err != nil {
			return nil, true, err
		}
		return []ProductionLine{l}, true, nil
	case shared.QueryByName:
		items, err := s.repo.SearchByName(ctx, q.LikePattern())
		return items, true, err
	default:
		return nil, false, nil
	}
}

// Create adds a production line, active unless the form says otherwise.
func (s *Service) Create(ctx context.Context, principal rbac.Principal, notifier workflow.Notifier, form Form) (ProductionLine, workflow.Outcome, error) {
	line := form.line(0)
	msgs := saveMessages
	msgs.Denied = "You do not have permission to create production lines"
	outcome, err := s.runner.Run(ctx, principal, notifier, workflow.Operation{
		Permission: rbac.PermProductionLinesCreate,
		Action:     audit.ActionProductionLinesCreated,
		Entity:     Entity,
		Meta:       line.meta(),
		Validate:   func() error { return validate(line) },
		Mutate: func(ctx context.Context) (workflow.Result, error) {
			id, err := s.repo.Create(ctx, line)
			if err != nil {
				return workflow.Result{}, err
			}
			line.ID = id
			return workflow.Result{EntityID: &id}, nil
		},
		Messages: msgs,
	})
	return line, outcome, err
}

// Update edits production line id.
func (s *Service) Update(ctx context.Context, principal rbac.Principal, notifier workflow.Notifier, id int64, form Form) (ProductionLine, workflow.Outcome, error) {
	line := form.line(id)
	msgs := saveMessages
	msgs.Denied = "You do not have permission to edit production lines"
	outcome, err := s.runner.Run(ctx, principal, notifier, workflow.Operation{
		Permission: rbac.PermProductionLinesEdit,
		Action:     audit.ActionProductionLinesEdited,
		Entity:     Entity,
		EntityID:   &id,
		Meta:       line.meta(),
		Validate: func() error {
			if id <= 0 {
				return workflow.Invalid("Please select a valid production line to edit")
			}
			return validate(line)
		},
		Mutate: func(ctx context.Context) (workflow.Result, error) {
			return workflow.Result{}, s.repo.Update(ctx, line)
		},
		Messages: msgs,
	})
	return line, outcome, err
}

// Delete removes production line id.
func (s *Service) Delete(ctx context.Context, principal rbac.Principal, notifier workflow.Notifier, id int64) (workflow.Outcome, error) {
	return s.runner.Run(ctx, principal, notifier, workflow.Operation{
		Permission: rbac.PermProductionLinesDelete,
		Action:     audit.ActionProductionLinesDeleted,
		Entity:     Entity,
		EntityID:   &id,
		Meta:       map[string]any{"deleted_by": workflow.PrincipalName(principal)},
		Validate: func() error {
			if id <= 0 {
				return workflow.Invalid("Please select a valid production line to delete")
			}
			return nil
		},
		Mutate: func(ctx context.Context) (workflow.Result, error) {
			return workflow.Result{}, s.repo.Delete(ctx, id)
		},
		Messages: workflow.Messages{
			Denied:     "You do not have permission to delete production lines",
			Success:    "Production line deleted successfully",
			Failure:    "Failed to delete production line",
			Unexpected: "Error deleting production line",
		},
	})
}

func validate(l ProductionLine) error {
	form := Form{Name: l.Name, Description: l.Description}
	if err := shared.ValidateStruct(form, formMessages); err != nil {
		return workflow.Invalid(err.Error())
	}
	return nil
}
