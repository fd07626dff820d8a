package rbac

import (
	"log/slog"
	"net/http"
)

// Middleware wires RBAC authorization helpers for read-only HTTP handlers.
// Mutations are authorized inside the workflow so that denials are audited.
type Middleware struct {
	Checker *Checker
	Logger  *slog.Logger
}

// RequireAny ensures the current principal holds at least one of perms.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return m.require(perms, false)
}

// RequireAll ensures the current principal holds every one of perms.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	return m.require(perms, true)
}

func (m Middleware) require(perms []Permission, all bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			granted := hasAnyPermission(m.Checker, principal, perms)
			if all {
				granted = hasAllPermissions(m.Checker, principal, perms)
			}
			if granted {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Info("rbac denied read access",
					slog.Int64("user_id", principal.GetID()),
					slog.String("role", string(principal.GetRole())),
					slog.String("path", r.URL.Path))
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

func hasAnyPermission(checker *Checker, principal Principal, required []Permission) bool {
	for _, perm := range required {
		if checker.HasPermission(principal, perm) {
			return true
		}
	}
	return false
}

func hasAllPermissions(checker *Checker, principal Principal, required []Permission) bool {
	for _, perm := range required {
		if !checker.HasPermission(principal, perm) {
			return false
		}
	}
	return true
}
