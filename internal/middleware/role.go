package middleware

import (
	"net/http"

	"github.com/slatepad/slatepad/internal/auth"
	"github.com/slatepad/slatepad/internal/model"
)

// RequireRole returns middleware that enforces a role requirement.
// Must be applied after Auth middleware. If multiple roles are
// provided, having ANY of them is sufficient.
func RequireRole(required ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := auth.CallerFromContext(r.Context())
			if caller == nil {
				writeError(w, http.StatusUnauthorized, "MISSING_TOKEN", "Authentication token required")
				return
			}

			for _, req := range required {
				if caller.Role == req {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeError(w, http.StatusForbidden, "FORBIDDEN", "Admin role required")
		})
	}
}

// RequireAdmin is a convenience middleware for the admin role.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)
}
