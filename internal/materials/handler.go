package materials

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plantstock/plantstock/internal/platform/httpx"
	"github.com/plantstock/plantstock/internal/rbac"
	"github.com/plantstock/plantstock/internal/workflow"
)

// Handler serves the /materials endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers material routes. Mutations are authorized by the workflow
// so that denials reach the audit journal.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermMaterialsView))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type listResponse struct {
	Items      []Material `json:"items"`
	Suppressed bool       `json:"suppressed,omitempty"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, ran, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("search materials", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "Unexpected error during search")
		return
	}
	if items == nil {
		items = []Material{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: items, Suppressed: !ran})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Get(r.Context(), httpx.IDParam(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form Form
	if err := httpx.DecodeJSON(r, &form); err != nil {
		h.service.runner.RejectRequest(w, err)
		return
	}
	rec := &workflow.Recorder{}
	m, outcome, err := h.service.Create(r.Context(), rbac.PrincipalFromContext(r.Context()), rec, form)
	h.respond(w, rec, outcome, err, true, m)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var form Form
	if err := httpx.DecodeJSON(r, &form); err != nil {
		h.service.runner.RejectRequest(w, err)
		return
	}
	rec := &workflow.Recorder{}
	m, outcome, err := h.service.Update(r.Context(), rbac.PrincipalFromContext(r.Context()), rec, httpx.IDParam(r), form)
	h.respond(w, rec, outcome, err, false, m)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	rec := &workflow.Recorder{}
	outcome, err := h.service.Delete(r.Context(), rbac.PrincipalFromContext(r.Context()), rec, httpx.IDParam(r))
	h.respond(w, rec, outcome, err, false, nil)
}

func (h *Handler) respond(w http.ResponseWriter, rec *workflow.Recorder, outcome workflow.Outcome, err error, created bool, data any) {
	if outcome != workflow.OutcomeSucceeded {
		data = nil
	}
	workflow.Respond(w, workflow.HTTPStatus(outcome, err, created), rec, data)
}
