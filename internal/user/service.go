package user

import (
	"context"
	"log/slog"

	"github.com/salesloop/crm-backend/internal"
	"github.com/salesloop/crm-backend/internal/authz"
)

type Service struct {
	repo        Repository
	decider     authz.Decider
	invalidator authz.Invalidator
	logger      *slog.Logger
}

func NewService(repo Repository, decider authz.Decider, invalidator authz.Invalidator, logger *slog.Logger) *Service {
	if invalidator == nil {
		invalidator = authz.NoopInvalidator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		decider:     decider,
		invalidator: invalidator,
		logger:      logger,
	}
}

// GetByID resolves a user within the caller's tenant. Soft-deleted users are
// reported as not found.
func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.FindUserByID(ctx, tenantID, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if u == nil || u.IsDeleted {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(u), nil
}

// List returns the tenant's directory page. Reading the directory is open to
// any authenticated user of the tenant.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.repo.ListUsers(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, nil
}

// Subordinates returns the transitive reports below managerID, resolved to
// directory entries in the engine's deterministic order.
func (s *Service) Subordinates(ctx context.Context, managerID int64) ([]*User, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := s.decider.AllSubordinates(ctx, managerID)
	if err != nil {
		return nil, err
	}

	users := make([]*User, 0, len(ids))
	for _, id := range ids {
		u, err := s.repo.FindUserByID(ctx, tenantID, id)
		if err != nil {
			return nil, internal.NewInternalError("failed to resolve subordinate", err)
		}
		if u == nil || u.IsDeleted {
			continue
		}
		users = append(users, FromDataModel(u))
	}
	return users, nil
}

// ReassignManager moves a user under a new manager, or to the top of the
// hierarchy when newManagerID is nil. The new link is not checked for cycles:
// the hierarchy walks tolerate them, and rejecting here would make manager
// swaps order-dependent. Cached subordinate sets for the tenant are dropped.
func (s *Service) ReassignManager(ctx context.Context, actorID, userID int64, newManagerID *int64) error {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return err
	}

	allowed, err := s.decider.HasSystemPermission(ctx, actorID, authz.PermManageUsers)
	if err != nil {
		return err
	}
	if !allowed {
		return internal.ErrAccessDenied
	}

	target, err := s.repo.FindUserByID(ctx, tenantID, userID)
	if err != nil {
		return internal.NewInternalError("failed to get user", err)
	}
	if target == nil || target.IsDeleted {
		return internal.ErrUserNotFound
	}

	if newManagerID != nil {
		if *newManagerID == userID {
			return internal.NewValidationError("user cannot be their own manager", internal.ErrCodeValidationFailed)
		}
		manager, err := s.repo.FindUserByID(ctx, tenantID, *newManagerID)
		if err != nil {
			return internal.NewInternalError("failed to get manager", err)
		}
		if manager == nil || manager.IsDeleted {
			return internal.ErrUserNotFound
		}
	}

	if err := s.repo.UpdateManager(ctx, tenantID, userID, newManagerID); err != nil {
		return internal.NewInternalError("failed to reassign manager", err)
	}

	s.invalidator.InvalidateTenant(tenantID)
	s.logger.Info("manager reassigned",
		"tenant_id", tenantID,
		"user_id", userID,
		"actor_id", actorID)
	return nil
}
