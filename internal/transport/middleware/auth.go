package middleware

import (
	"net/http"

	"github.com/salesloop/crm-backend/internal"
	"github.com/salesloop/crm-backend/pkg/logger"
)

// TenantLogContext copies the authenticated tenant and user onto the
// request-scoped logger. Must run after the auth middleware.
func TenantLogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc, ok := internal.TenantFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "tenant_id", tc.TenantID, "user_id", tc.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
