package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextTenantKey ctxKey = "tenantContext"

// TenantContext is the request-scoped authorization context. It is created by
// the auth middleware once the token is validated and destroyed with the
// request. The context is always authoritative for "who is asking"; a
// resource's own tenant id only says "what is being asked about".
type TenantContext struct {
	TenantID string
	UserID   int64
	UserRole string
}

func ContextWithTenant(ctx context.Context, tc *TenantContext) context.Context {
	return context.WithValue(ctx, ContextTenantKey, tc)
}

func TenantFromContext(ctx context.Context) (*TenantContext, bool) {
	if ctx == nil {
		return nil, false
	}
	tc, ok := ctx.Value(ContextTenantKey).(*TenantContext)
	return tc, ok
}

// RequireTenantID returns the current tenant id or ErrTenantContextMissing.
// Callers must not proceed without it; an empty tenant id is never a valid
// default.
func RequireTenantID(ctx context.Context) (string, error) {
	tc, ok := TenantFromContext(ctx)
	if !ok || tc == nil || tc.TenantID == "" {
		return "", ErrTenantContextMissing
	}
	return tc.TenantID, nil
}

// ValidateResourceOwnership is the single choke point against cross-tenant
// leakage. Every service that fetched a record by primary key calls this
// before returning or mutating it. A nil/empty resource tenant id (system
// template rows) passes.
func ValidateResourceOwnership(ctx context.Context, resourceTenantID string) error {
	tenantID, err := RequireTenantID(ctx)
	if err != nil {
		return err
	}
	if resourceTenantID != "" && resourceTenantID != tenantID {
		return ErrAccessDenied
	}
	return nil
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
