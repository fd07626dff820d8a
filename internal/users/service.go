package users

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/plantstock/plantstock/internal/audit"
	"github.com/plantstock/plantstock/internal/rbac"
	"github.com/plantstock/plantstock/internal/shared"
	"github.com/plantstock/plantstock/internal/workflow"
)

// Entity labels user audit entries.
const Entity = "User"

// PasswordHasher turns a plaintext password into a storable hash.
type PasswordHasher func(password string) (string, error)

// BcryptHasher hashes with bcrypt at the default cost.
func BcryptHasher(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

var saveMessages = workflow.Messages{
	Success:    "User saved successfully",
	Failure:    "Failed to save user. Username might already exist.",
	Unexpected: "An unexpected error occurred while saving the user.",
}

var profileMessages = map[string]string{
	"Username.required": "Username is required",
	"Username.max":      "Username is too long",
	"FullName.required": "Full name is required",
	"FullName.max":      "Full name is too long",
	"Role.required":     "User role is required",
	"Password.required": "Password is required for new users",
	"Password.min":      "Password must be at least 8 characters",
	"Password.max":      passwordTooLong,
	"ConfirmPassword":   "Passwords do not match",
}

// Service handles user business logic.
type Service struct {
	repo   RepositoryPort
	runner *workflow.Runner
	hash   PasswordHasher
}

// NewService builds Service instance. A nil hasher selects BcryptHasher.
func NewService(repo RepositoryPort, runner *workflow.Runner, hash PasswordHasher) *Service {
	if hash == nil {
		hash = BcryptHasher
	}
	return &Service{repo: repo, runner: runner, hash: hash}
}

// ListUsers returns all users, inactive ones included.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx, true)
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, shared.ErrNotFound
	}
	return s.repo.GetUser(ctx, id)
}

// Search routes a search box value; false means the query was suppressed.
func (s *Service) Search(ctx context.Context, raw string) ([]User, bool, error) {
	q := shared.ParseQuery(raw)
	switch q.Kind {
	case shared.QueryAll:
		items, err := s.ListUsers(ctx)
		return items, true, err
	case shared.QueryByID:
		u, err := s.repo.GetUser(ctx, q.ID)
		if errors.Is(err, shared.ErrNotFound) {
			return []User{}, true, nil
		}
		if err != nil {
			return nil, true, err
		}
		return []User{u}, true, nil
	case shared.QueryByName:
		items, err := s.repo.SearchByName(ctx, q.LikePattern())
		return items, true, err
	default:
		return nil, false, nil
	}
}

// CreateUser adds an account. The password is hashed and never audited.
func (s *Service) CreateUser(ctx context.Context, principal rbac.Principal, notifier workflow.Notifier, form CreateForm) (User, workflow.Outcome, error) {
	form = form.normalize()
	role, roleErr := rbac.ParseRole(form.Role)
	u := User{Username: form.Username, FullName: form.FullName, Role: role, IsActive: activeOrDefault(form.IsActive)}
	msgs := saveMessages
	msgs.Denied = "You do not have permission to create users"
	outcome, err := s.runner.Run(ctx, principal, notifier, workflow.Operation{
		Permission: rbac.PermUsersCreate,
		Action:     audit.ActionUsersCreated,
		Entity:     Entity,
		Meta:       u.meta(),
		Validate: func() error {
			if err := shared.ValidateStruct(form, profileMessages); err != nil {
				return workflow.Invalid(err.Error())
			}
			if form.Password != form.ConfirmPassword {
				return workflow.Invalid("Passwords do not match")
			}
			if msg := passwordLengthMessage(form.Password); msg != "" {
				return workflow.Invalid(msg)
			}
			if roleErr != nil {
				return workflow.Invalid("User role is invalid")
			}
			return nil
		},
		Mutate: func(ctx context.Context) (workflow.Result, error) {
			hash, err := s.hash(form.Password)
			if err != nil {
				return workflow.Result{}, err
			}
			id, err := s.repo.CreateUser(ctx, u, hash)
			if err != nil {
				return workflow.Result{}, err
			}
			u.ID = id
			return workflow.Result{EntityID: &id}, nil
		},
		Messages: msgs,
	})
	return u, outcome, err
}

// UpdateUser edits the profile of account id.
func (s *Service) UpdateUser(ctx context.Context, principal rbac.Principal, notifier workflow.Notifier, id int64, form UpdateForm) (User, workflow.Outcome, error) {
	form = form.normalize()
	role, roleErr := rbac.ParseRole(form.Role)
	u := User{ID: id, Username: form.Username, FullName: form.FullName, Role: role, IsActive: activeOrDefault(form.IsActive)}
	msgs := saveMessages
	msgs.Denied = "You do not have permission to edit users"
	outcome, err := s.runner.Run(ctx, principal, notifier, workflow.Operation{
		Permission: rbac.PermUsersEdit,
		Action:     audit.ActionUsersEdited,
		Entity:     Entity,
		EntityID:   &id,
		Meta:       u.meta(),
		Validate: func() error {
			if id <= 0 {
				return workflow.Invalid("Please select a valid user to edit")
			}
			if err := shared.ValidateStruct(form, profileMessages); err != nil {
				return workflow.Invalid(err.Error())
			}
			if roleErr != nil {
				return workflow.Invalid("User role is invalid")
			}
			return nil
		},
		Mutate: func(ctx context.Context) (workflow.Result, error) {
			return workflow.Result{}, s.repo.UpdateUser(ctx, u)
		},
		Messages: msgs,
	})
	return u, outcome, err
}

// ChangePassword sets a new password for account id.
func (s *Service) ChangePassword(ctx context.Context, principal rbac.Principal, notifier workflow.Notifier, id int64, form PasswordForm) (workflow.Outcome, error) {
	return s.runner.Run(ctx, principal, notifier, workflow.Operation{
		Permission: rbac.PermUsersChangePassword,
		Action:     audit.ActionUsersPasswordChanged,
		Entity:     Entity,
		EntityID:   &id,
		Meta:       map[string]any{"changed_by": workflow.PrincipalName(principal)},
		Validate: func() error {
			switch {
			case id <= 0:
				return workflow.Invalid("Please select a valid user to change password")
			case form.Password == "" || form.ConfirmPassword == "":
				return workflow.Invalid("Password fields cannot be empty")
			case form.Password != form.ConfirmPassword:
				return workflow.Invalid("Passwords do not match")
			}
			if msg := passwordLengthMessage(form.Password); msg != "" {
				return workflow.Invalid(msg)
			}
			return nil
		},
		Mutate: func(ctx context.Context) (workflow.Result, error) {
			hash, err := s.hash(form.Password)
			if err != nil {
				return workflow.Result{}, err
			}
			return workflow.Result{}, s.repo.UpdatePassword(ctx, id, hash)
		},
		Messages: workflow.Messages{
			Denied:     "You do not have permission to change user passwords",
			Success:    "Password changed successfully",
			Failure:    "Failed to change password",
			Unexpected: "An unexpected error occurred while changing the password",
		},
	})
}
