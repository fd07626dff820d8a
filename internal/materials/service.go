package materials

import (
	"context"
	"errors"

	"github.com/plantstock/plantstock/internal/audit"
	"github.com/plantstock/plantstock/internal/rbac"
	"github.com/plantstock/plantstock/internal/shared"
	"github.com/plantstock/plantstock/internal/workflow"
)

// Entity labels material audit entries.
const Entity = "Material"

const failedMessage = "Error saving material"

// Service runs material mutations through the authorized action workflow.
type Service struct {
	repo   Repository
	runner *workflow.Runner
}

// NewService builds a Service.
func NewService(repo Repository, runner *workflow.Runner) *Service {
	return &Service{repo: repo, runner: runner}
}

// List returns every material ordered by id.
func (s *Service) List(ctx context.Context) ([]Material, error) {
	return s.repo.List(ctx)
}

// Get returns one material.
func (s *Service) Get(ctx context.Context, id int64) (Material, error) {
	if id <= 0 {
		return Material{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Search routes a search box value. The boolean is false when the query was
// suppressed and the caller should keep its current results.
func (s *Service) Search(ctx context.Context, raw string) ([]Material, bool, error) {
	q := shared.ParseQuery(raw)
	switch q.Kind {
	case shared.QueryAll:
		items, err := s.repo.List(ctx)
		return items, true, err
	case shared.QueryByID:
		m, err := s.repo.Get(ctx, q.ID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return []Material{}, true, nil
			}
			return nil, true, err
		}
		return []Material{m}, true, nil
	case shared.QueryByName:
		items, err := s.repo.SearchByName(ctx, q.LikePattern())
		return items, true, err
	default:
		return nil, false, nil
	}
}

// Create adds a material.
func (s *Service) Create(ctx context.Context, principal rbac.Principal, notifier workflow.Notifier, form Form) (Material, workflow.Outcome, error) {
	form = form.normalize()
	m := Material{Name: form.Name, Unit: form.Unit, Description: form.Description}
	outcome, err := s.runner.Run(ctx, principal, notifier, workflow.Operation{
		Permission: rbac.PermMaterialsCreate,
		Action:     audit.ActionMaterialsCreated,
		Entity:     Entity,
		Meta:       form.meta(),
		Validate:   func() error { return validateForm(form) },
		Mutate: func(ctx context.Context) (workflow.Result, error) {
			id, err := s.repo.Create(ctx, m)
			if err != nil {
				return workflow.Result{}, err
			}
			m.ID = id
			return workflow.Result{EntityID: &id}, nil
		},
		Messages: workflow.Messages{
			Denied:     "You do not have permission to add materials",
			Success:    "Material saved successfully",
			Failure:    failedMessage,
			Unexpected: "Unexpected error",
		},
	})
	return m, outcome, err
}

// Update edits material id.
func (s *Service) Update(ctx context.Context, principal rbac.Principal, notifier workflow.Notifier, id int64, form Form) (Material, workflow.Outcome, error) {
	form = form.normalize()
	m := Material{ID: id, Name: form.Name, Unit: form.Unit, Description: form.Description}
	outcome, err := s.runner.Run(ctx, principal, notifier, workflow.Operation{
		Permission: rbac.PermMaterialsEdit,
		Action:     audit.ActionMaterialsEdited,
		Entity:     Entity,
		EntityID:   &id,
		Meta:       form.meta(),
		Validate: func() error {
			if err := validateID(id, "Please select a valid material to edit"); err != nil {
				return err
			}
			return validateForm(form)
		},
		Mutate: func(ctx context.Context) (workflow.Result, error) {
			return workflow.Result{}, s.repo.Update(ctx, m)
		},
		Messages: workflow.Messages{
			Denied:     "You do not have permission to edit materials",
			Success:    "Material saved successfully",
			Failure:    failedMessage,
			Unexpected: "Unexpected error",
		},
	})
	return m, outcome, err
}

// Delete removes material id.
func (s *Service) Delete(ctx context.Context, principal rbac.Principal, notifier workflow.Notifier, id int64) (workflow.Outcome, error) {
	return s.runner.Run(ctx, principal, notifier, workflow.Operation{
		Permission: rbac.PermMaterialsDelete,
		Action:     audit.ActionMaterialsDeleted,
		Entity:     Entity,
		EntityID:   &id,
		Meta:       map[string]any{"deleted_by": workflow.PrincipalName(principal)},
		Validate:   func() error { return validateID(id, "Please select a valid material to delete") },
		Mutate: func(ctx context.Context) (workflow.Result, error) {
			return workflow.Result{}, s.repo.Delete(ctx, id)
		},
		Messages: workflow.Messages{
			Denied:     "You do not have permission to delete materials",
			Success:    "Material deleted successfully",
			Failure:    "Error deleting material",
			Unexpected: "Unexpected error",
		},
	})
}
