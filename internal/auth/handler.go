package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plantstock/plantstock/internal/platform/httpx"
	"github.com/plantstock/plantstock/internal/rbac"
)

// Realm is announced in WWW-Authenticate challenges.
const Realm = "plantstock"

// Handler wires HTTP authentication for the API.
type Handler struct {
	logger  *slog.Logger
	service *Service
	checker *rbac.Checker
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, checker *rbac.Checker) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, checker: checker}
}

// BasicAuth authenticates every request with HTTP Basic credentials and stores
// the resulting principal in the request context.
func (h *Handler) BasicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			challenge(w)
			return
		}
		user, err := h.service.Authenticate(r.Context(), username, password)
		if err != nil {
			h.logger.Info("authentication failed", slog.String("username", username), slog.String("remote", r.RemoteAddr))
			challenge(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(rbac.ContextWithPrincipal(r.Context(), user)))
	})
}

// MountRoutes registers the /me routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.me)
}

type meResponse struct {
	User        *User             `json:"user"`
	Permissions []rbac.Permission `json:"permissions"`
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := rbac.PrincipalFromContext(r.Context()).(*User)
	if !ok || user == nil {
		challenge(w)
		return
	}
	httpx.JSON(w, http.StatusOK, meResponse{User: user, Permissions: h.permissionsOf(user)})
}

func (h *Handler) permissionsOf(user *User) []rbac.Permission {
	perms := []rbac.Permission{}
	for _, perm := range rbac.Permissions() {
		if h.checker.HasPermission(user, perm) {
			perms = append(perms, perm)
		}
	}
	return perms
}

func challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+Realm+`", charset="UTF-8"`)
	httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
}
