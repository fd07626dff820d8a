package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plantstock/plantstock/internal/platform/httpx"
	"github.com/plantstock/plantstock/internal/rbac"
	"github.com/plantstock/plantstock/internal/workflow"
)

// Handler manages user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermUsersView))
		r.Get("/", h.listUsers)
		r.Get("/{id}", h.showUser)
	})
	r.Post("/", h.createUser)
	r.Put("/{id}", h.updateUser)
	r.Put("/{id}/password", h.changePassword)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, ran, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "Error loading users")
		return
	}
	if users == nil {
		users = []User{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": users, "suppressed": !ran})
}

func (h *Handler) showUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), httpx.IDParam(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var form CreateForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		h.service.runner.RejectRequest(w, err)
		return
	}
	rec := &workflow.Recorder{}
	user, outcome, err := h.service.CreateUser(r.Context(), rbac.PrincipalFromContext(r.Context()), rec, form)
	respond(w, rec, outcome, err, true, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var form UpdateForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		h.service.runner.RejectRequest(w, err)
		return
	}
	rec := &workflow.Recorder{}
	user, outcome, err := h.service.UpdateUser(r.Context(), rbac.PrincipalFromContext(r.Context()), rec, httpx.IDParam(r), form)
	respond(w, rec, outcome, err, false, user)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var form PasswordForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		h.service.runner.RejectRequest(w, err)
		return
	}
	rec := &workflow.Recorder{}
	outcome, err := h.service.ChangePassword(r.Context(), rbac.PrincipalFromContext(r.Context()), rec, httpx.IDParam(r), form)
	respond(w, rec, outcome, err, false, nil)
}

func respond(w http.ResponseWriter, rec *workflow.Recorder, outcome workflow.Outcome, err error, created bool, data any) {
	if outcome != workflow.OutcomeSucceeded {
		data = nil
	}
	workflow.Respond(w, workflow.HTTPStatus(outcome, err, created), rec, data)
}
