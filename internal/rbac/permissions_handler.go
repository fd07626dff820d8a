package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plantstock/plantstock/internal/platform/httpx"
)

// PermissionsHandler exposes the active grant table.
type PermissionsHandler struct {
	checker *Checker
	rbac    Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(checker *Checker, rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{checker: checker, rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(PermUsersView))
		r.Get("/", h.listPermissions)
	})
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"roles":  Roles(),
		"grants": h.checker.Catalog().Grants(),
	})
}
