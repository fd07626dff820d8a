package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/plantstock/plantstock/internal/audit"
	"github.com/plantstock/plantstock/internal/rbac"
	"github.com/plantstock/plantstock/internal/shared"
	"github.com/plantstock/plantstock/internal/workflow"
)

type memoryRepo struct {
	users  map[int64]User
	hashes map[int64]string
	nextID int64
}

func newMemoryRepo(seed ...User) *memoryRepo {
	r := &memoryRepo{users: map[int64]User{}, hashes: map[int64]string{}}
	for _, u := range seed {
		r.users[u.ID] = u
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

func (r *memoryRepo) ListUsers(_ context.Context, includeInactive bool) ([]User, error) {
	var out []User
	for _, u := range r.users {
		if includeInactive || u.IsActive {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepo) GetUser(_ context.Context, id int64) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (r *memoryRepo) SearchByName(_ context.Context, pattern string) ([]User, error) {
	needle := strings.ToLower(strings.Trim(pattern, "%"))
	var out []User
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Username), needle) || strings.Contains(strings.ToLower(u.FullName), needle) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memoryRepo) CreateUser(_ context.Context, u User, hash string) (int64, error) {
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return 0, shared.ErrDuplicate
		}
	}
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = u
	r.hashes[u.ID] = hash
	return u.ID, nil
}

func (r *memoryRepo) UpdateUser(_ context.Context, u User) error {
	if _, ok := r.users[u.ID]; !ok {
		return shared.ErrNotFound
	}
	r.users[u.ID] = u
	return nil
}

func (r *memoryRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	if _, ok := r.users[id]; !ok {
		return shared.ErrNotFound
	}
	r.hashes[id] = hash
	return nil
}

type memoryJournal struct {
	entries []audit.Entry
}

func (j *memoryJournal) LogAction(_ context.Context, e audit.Entry) bool {
	j.entries = append(j.entries, e)
	return true
}

type actor struct {
	id   int64
	role rbac.Role
}

func (a actor) GetID() int64        { return a.id }
func (a actor) GetRole() rbac.Role  { return a.role }
func (a actor) GetUsername() string { return "actor" }

var (
	supervisor = actor{id: 1, role: rbac.RoleSupervisor}
	operator   = actor{id: 2, role: rbac.RoleOperator}
)

func plainHasher(p string) (string, error) { return "hashed:" + p, nil }

func newTestService(repo RepositoryPort, hasher PasswordHasher) (*Service, *memoryJournal) {
	journal := &memoryJournal{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, workflow.NewRunner(rbac.NewChecker(rbac.DefaultCatalog()), journal, logger), hasher), journal
}

func validCreateForm() CreateForm {
	return CreateForm{Username: "maria", FullName: "Maria Lopez", Role: "Leader", Password: "s3cretpass", ConfirmPassword: "s3cretpass"}
}

func TestCreateUserNeverAuditsPassword(t *testing.T) {
	repo := newMemoryRepo()
	svc, journal := newTestService(repo, plainHasher)

	u, outcome, err := svc.CreateUser(context.Background(), supervisor, &workflow.Recorder{}, validCreateForm())

	require.NoError(t, err)
	assert.Equal(t, workflow.OutcomeSucceeded, outcome)
	assert.Equal(t, rbac.RoleLeader, u.Role)
	assert.True(t, u.IsActive)
	assert.Equal(t, "hashed:s3cretpass", repo.hashes[u.ID])
	require.Len(t, journal.entries, 1)
	entry := journal.entries[0]
	assert.Equal(t, audit.ActionUsersCreated, entry.Action)
	assert.Equal(t, Entity, entry.Entity)
	for k, v := range entry.Meta {
		assert.NotContains(t, k, "password")
		assert.NotEqual(t, "s3cretpass", v)
	}
}

func TestCreateUserBcrypt(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo, nil)

	u, _, err := svc.CreateUser(context.Background(), supervisor, &workflow.Recorder{}, validCreateForm())
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.hashes[u.ID]), []byte("s3cretpass")))
}

func TestCreateUserValidation(t *testing.T) {
	cases := map[string]struct {
		mutate func(*CreateForm)
		msg    string
	}{
		"username":  {func(f *CreateForm) { f.Username = " " }, "Username is required"},
		"full name": {func(f *CreateForm) { f.FullName = "" }, "Full name is required"},
		"role":      {func(f *CreateForm) { f.Role = "" }, "User role is required"},
		"bad role":  {func(f *CreateForm) { f.Role = "owner" }, "User role is invalid"},
		"password":  {func(f *CreateForm) { f.Password = ""; f.ConfirmPassword = "" }, "Password is required for new users"},
		"short":     {func(f *CreateForm) { f.Password = "short"; f.ConfirmPassword = "short" }, "Password must be at least 8 characters"},
		"mismatch":  {func(f *CreateForm) { f.ConfirmPassword = "different1" }, "Passwords do not match"},
		"long":      {func(f *CreateForm) { f.Password = strings.Repeat("a", 80); f.ConfirmPassword = f.Password }, "Password must be at most 72 bytes"},
		"long utf8": {func(f *CreateForm) { f.Password = strings.Repeat("é", 40); f.ConfirmPassword = f.Password }, "Password must be at most 72 bytes"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc, journal := newTestService(newMemoryRepo(), plainHasher)
			form := validCreateForm()
			tc.mutate(&form)
			rec := &workflow.Recorder{}

			_, outcome, err := svc.CreateUser(context.Background(), supervisor, rec, form)

			assert.ErrorIs(t, err, workflow.ErrValidation)
			assert.Equal(t, workflow.OutcomeInvalid, outcome)
			assert.Equal(t, tc.msg, rec.Last().Message)
			assert.Empty(t, journal.entries)
		})
	}
}

func TestCreateUserOverlongPasswordIsNotAudited(t *testing.T) {
	repo := newMemoryRepo()
	svc, journal := newTestService(repo, nil)
	form := validCreateForm()
	form.Password = strings.Repeat("x", 80)
	form.ConfirmPassword = form.Password
	rec := &workflow.Recorder{}

	_, outcome, err := svc.CreateUser(context.Background(), supervisor, rec, form)

	assert.Equal(t, workflow.OutcomeInvalid, outcome)
	assert.ErrorIs(t, err, workflow.ErrValidation)
	assert.Equal(t, "Password must be at most 72 bytes", rec.Last().Message)
	assert.Empty(t, journal.entries)
	assert.Empty(t, repo.users)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	repo := newMemoryRepo(User{ID: 1, Username: "maria", Role: rbac.RoleViewer, IsActive: true})
	svc, journal := newTestService(repo, plainHasher)
	rec := &workflow.Recorder{}

	_, outcome, err := svc.CreateUser(context.Background(), supervisor, rec, validCreateForm())

	assert.Equal(t, workflow.OutcomeFailed, outcome)
	assert.ErrorIs(t, err, shared.ErrDuplicate)
	assert.Equal(t, "Failed to save user. Username might already exist.", rec.Last().Message)
	require.Len(t, journal.entries, 1)
	assert.False(t, journal.entries[0].Success)
}

func TestCreateUserDeniedForOperator(t *testing.T) {
	repo := newMemoryRepo()
	svc, journal := newTestService(repo, plainHasher)

	_, outcome, err := svc.CreateUser(context.Background(), operator, &workflow.Recorder{}, validCreateForm())

	assert.ErrorIs(t, err, workflow.ErrDenied)
	assert.Equal(t, workflow.OutcomeDenied, outcome)
	assert.Empty(t, repo.users)
	require.Len(t, journal.entries, 1)
	assert.Equal(t, audit.ActionUsersCreated, journal.entries[0].Action)
}

func TestUpdateUserRequiresSelection(t *testing.T) {
	svc, journal := newTestService(newMemoryRepo(), plainHasher)
	rec := &workflow.Recorder{}

	_, outcome, _ := svc.UpdateUser(context.Background(), supervisor, rec, 0, UpdateForm{Username: "a", FullName: "b", Role: "viewer"})

	assert.Equal(t, workflow.OutcomeInvalid, outcome)
	assert.Equal(t, "Please select a valid user to edit", rec.Last().Message)
	assert.Empty(t, journal.entries)
}

func TestUpdateUserDeactivates(t *testing.T) {
	repo := newMemoryRepo(User{ID: 5, Username: "pat", FullName: "Pat", Role: rbac.RoleOperator, IsActive: true})
	svc, journal := newTestService(repo, plainHasher)
	inactive := false

	_, outcome, err := svc.UpdateUser(context.Background(), supervisor, &workflow.Recorder{}, 5,
		UpdateForm{Username: "pat", FullName: "Pat Doe", Role: "operator", IsActive: &inactive})

	require.NoError(t, err)
	assert.Equal(t, workflow.OutcomeSucceeded, outcome)
	assert.False(t, repo.users[5].IsActive)
	assert.Equal(t, "Pat Doe", repo.users[5].FullName)
	assert.Equal(t, audit.ActionUsersEdited, journal.entries[0].Action)
}

func TestChangePasswordValidation(t *testing.T) {
	repo := newMemoryRepo(User{ID: 5, Username: "pat", Role: rbac.RoleOperator, IsActive: true})
	svc, journal := newTestService(repo, plainHasher)

	cases := []struct {
		form PasswordForm
		msg  string
	}{
		{PasswordForm{Password: "", ConfirmPassword: "x"}, "Password fields cannot be empty"},
		{PasswordForm{Password: "abcdefgh", ConfirmPassword: "abcdefgx"}, "Passwords do not match"},
		{PasswordForm{Password: "abc", ConfirmPassword: "abc"}, "Password must be at least 8 characters"},
		{PasswordForm{Password: "ééééééé", ConfirmPassword: "ééééééé"}, "Password must be at least 8 characters"},
		{PasswordForm{Password: strings.Repeat("x", 80), ConfirmPassword: strings.Repeat("x", 80)}, "Password must be at most 72 bytes"},
		{PasswordForm{Password: strings.Repeat("é", 40), ConfirmPassword: strings.Repeat("é", 40)}, "Password must be at most 72 bytes"},
	}
	for _, tc := range cases {
		rec := &workflow.Recorder{}
		outcome, err := svc.ChangePassword(context.Background(), supervisor, rec, 5, tc.form)
		assert.Equal(t, workflow.OutcomeInvalid, outcome)
		assert.ErrorIs(t, err, workflow.ErrValidation)
		assert.Equal(t, tc.msg, rec.Last().Message)
	}
	assert.Empty(t, journal.entries)
	assert.Empty(t, repo.hashes)
}

func TestChangePassword(t *testing.T) {
	repo := newMemoryRepo(User{ID: 5, Username: "pat", Role: rbac.RoleOperator, IsActive: true})
	svc, journal := newTestService(repo, plainHasher)
	rec := &workflow.Recorder{}

	outcome, err := svc.ChangePassword(context.Background(), supervisor, rec, 5, PasswordForm{Password: "newpass99", ConfirmPassword: "newpass99"})

	require.NoError(t, err)
	assert.Equal(t, workflow.OutcomeSucceeded, outcome)
	assert.Equal(t, "hashed:newpass99", repo.hashes[5])
	require.Len(t, journal.entries, 1)
	assert.Equal(t, audit.ActionUsersPasswordChanged, journal.entries[0].Action)
	assert.Equal(t, int64(5), *journal.entries[0].EntityID)
	assert.Equal(t, "Password changed successfully", rec.Last().Message)
}

func TestChangePasswordCountsCharacters(t *testing.T) {
	repo := newMemoryRepo(User{ID: 5, Username: "pat", Role: rbac.RoleOperator, IsActive: true})
	svc, _ := newTestService(repo, nil)
	pass := "ñandúñandú"

	outcome, err := svc.ChangePassword(context.Background(), supervisor, &workflow.Recorder{}, 5, PasswordForm{Password: pass, ConfirmPassword: pass})

	require.NoError(t, err)
	assert.Equal(t, workflow.OutcomeSucceeded, outcome)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.hashes[5]), []byte(pass)))
}

func TestChangePasswordHasherFailure(t *testing.T) {
	repo := newMemoryRepo(User{ID: 5, Username: "pat", Role: rbac.RoleOperator, IsActive: true})
	svc, journal := newTestService(repo, func(string) (string, error) { return "", errors.New("entropy exhausted") })
	rec := &workflow.Recorder{}

	outcome, err := svc.ChangePassword(context.Background(), supervisor, rec, 5, PasswordForm{Password: "newpass99", ConfirmPassword: "newpass99"})

	assert.Equal(t, workflow.OutcomeFailed, outcome)
	assert.ErrorIs(t, err, workflow.ErrMutation)
	assert.Equal(t, "Failed to change password", rec.Last().Message)
	require.Len(t, journal.entries, 1)
	assert.False(t, journal.entries[0].Success)
}

func TestChangePasswordDenied(t *testing.T) {
	repo := newMemoryRepo(User{ID: 5, Username: "pat", Role: rbac.RoleOperator, IsActive: true})
	svc, journal := newTestService(repo, plainHasher)
	rec := &workflow.Recorder{}

	outcome, _ := svc.ChangePassword(context.Background(), operator, rec, 5, PasswordForm{Password: "newpass99", ConfirmPassword: "newpass99"})

	assert.Equal(t, workflow.OutcomeDenied, outcome)
	assert.Empty(t, repo.hashes)
	assert.Equal(t, "You do not have permission to change user passwords", rec.Last().Message)
	require.Len(t, journal.entries, 1)
	assert.Equal(t, map[string]any{"reason": "Insufficient permissions"}, journal.entries[0].Meta)
}

func TestListUsersIncludesInactive(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo(
		User{ID: 1, Username: "a", IsActive: true},
		User{ID: 2, Username: "b", IsActive: false},
	), plainHasher)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestHandlerChangePassword(t *testing.T) {
	repo := newMemoryRepo(User{ID: 5, Username: "pat", Role: rbac.RoleOperator, IsActive: true})
	svc, _ := newTestService(repo, plainHasher)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Route("/users", NewHandler(logger, svc, rbac.Middleware{Checker: rbac.NewChecker(rbac.DefaultCatalog())}).MountRoutes)

	req := httptest.NewRequest(http.MethodPut, "/users/5/password", strings.NewReader(`{"password":"abc","confirm_password":"abd"}`))
	req = req.WithContext(rbac.ContextWithPrincipal(req.Context(), supervisor))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Passwords do not match")

	req = httptest.NewRequest(http.MethodPut, "/users/5/password", strings.NewReader(`{"password":"abcdefgh","extra":1}`))
	req = req.WithContext(rbac.ContextWithPrincipal(req.Context(), supervisor))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"notification":{"message":"Invalid request body","kind":"error","duration_ms":3000}}`, rr.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/users/5", nil)
	req = req.WithContext(rbac.ContextWithPrincipal(req.Context(), operator))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
