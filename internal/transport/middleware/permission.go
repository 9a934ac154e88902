package middleware

import (
	"log/slog"
	"net/http"

	"github.com/salesloop/crm-backend/internal"
	"github.com/salesloop/crm-backend/internal/authz"
)

// RequireSystemPermission guards a route subtree behind one of the caller's
// role-level administrative grants. The decider fails closed, so a missing
// user, role, or grant all end in 403.
func RequireSystemPermission(decider authz.Decider, permission authz.RolePermission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, ok := internal.TenantFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			allowed, err := decider.HasSystemPermission(r.Context(), tc.UserID, permission)
			if err != nil {
				slog.Error("system permission check failed",
					"user_id", tc.UserID,
					"permission", permission,
					"error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			if !allowed {
				slog.Warn("access denied: missing system permission",
					"tenant_id", tc.TenantID,
					"user_id", tc.UserID,
					"permission", permission)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
