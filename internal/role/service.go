package role

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/salesloop/crm-backend/internal"
	"github.com/salesloop/crm-backend/internal/authz"
	"github.com/salesloop/crm-backend/internal/core/common/validation"
	roleDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/role"
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

func (s *Service) requireManageRoles(ctx context.Context, actorID int64) error {
	allowed, err := s.decider.HasSystemPermission(ctx, actorID, authz.PermManageRoles)
	if err != nil {
		return err
	}
	if !allowed {
		return internal.ErrAccessDenied
	}
	return nil
}

// Create inserts a new role under the optional parent. The level is derived
// from the parent, never taken from the request, and the parent's child
// back-links are updated in the same call.
func (s *Service) Create(ctx context.Context, actorID int64, req CreateRoleRequest) (*Role, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireManageRoles(ctx, actorID); err != nil {
		return nil, err
	}
	if err := validation.ValidateRoleName(req.Name); err != nil {
		return nil, err
	}

	perms := req.Permissions
	if perms.DataVisibility == "" {
		perms.DataVisibility = roleDatamodel.VisibilityOwn
	}
	if !perms.DataVisibility.Valid() {
		return nil, internal.NewValidationError("unknown data visibility scope", internal.ErrCodeValidationFailed)
	}

	newRole := &roleDatamodel.Role{
		RoleID:      uuid.NewString(),
		TenantID:    &tenantID,
		Name:        req.Name,
		Description: req.Description,
		ModulePerms: req.ModulePerms,
		Permissions: perms,
		IsActive:    true,
	}

	var parent *roleDatamodel.Role
	if req.ParentRoleID != nil && *req.ParentRoleID != "" {
		parent, err = s.repo.FindRoleByRoleID(ctx, tenantID, *req.ParentRoleID)
		if err != nil {
			return nil, internal.NewInternalError("failed to get parent role", err)
		}
		if parent == nil || parent.IsDeleted {
			return nil, internal.ErrParentRoleNotFound
		}
		newRole.ParentRoleID = &parent.RoleID
		newRole.ParentRoleName = parent.Name
		newRole.Level = parent.Level + 1
	}

	if err := s.repo.CreateRole(ctx, newRole); err != nil {
		return nil, internal.NewInternalError("failed to create role", err)
	}

	if parent != nil {
		parent.ChildRoleIDs = append(parent.ChildRoleIDs, newRole.RoleID)
		if err := s.repo.SaveRole(ctx, parent); err != nil {
			return nil, internal.NewInternalError("failed to link parent role", err)
		}
	}

	s.invalidator.InvalidateTenant(tenantID)
	s.logger.Info("role created", "tenant_id", tenantID, "role_id", newRole.RoleID, "actor_id", actorID)
	return FromDataModel(newRole), nil
}

func (s *Service) GetByRoleID(ctx context.Context, roleID string) (*Role, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}

	r, err := s.repo.FindRoleByRoleID(ctx, tenantID, roleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get role", err)
	}
	if r == nil || r.IsDeleted {
		return nil, internal.ErrRoleNotFound
	}
	return FromDataModel(r), nil
}

func (s *Service) List(ctx context.Context) ([]*Role, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListRoles(ctx, tenantID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list roles", err)
	}

	roles := make([]*Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, FromDataModel(row))
	}
	return roles, nil
}

// Update applies the requested changes. System roles are immutable. A
// reparent recomputes the moved role's level and walks its subtree with a
// worklist so every descendant's level stays parent+1.
func (s *Service) Update(ctx context.Context, actorID int64, roleID string, req UpdateRoleRequest) (*Role, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireManageRoles(ctx, actorID); err != nil {
		return nil, err
	}

	r, err := s.repo.FindRoleByRoleID(ctx, tenantID, roleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get role", err)
	}
	if r == nil || r.IsDeleted {
		return nil, internal.ErrRoleNotFound
	}
	if r.IsSystemRole {
		return nil, internal.ErrSystemRoleImmutable
	}

	if req.Name != nil {
		if err := validation.ValidateRoleName(*req.Name); err != nil {
			return nil, err
		}
		r.Name = *req.Name
	}
	if req.Description != nil {
		r.Description = *req.Description
	}
	if req.ModulePerms != nil {
		r.ModulePerms = req.ModulePerms
	}
	if req.Permissions != nil {
		if !req.Permissions.DataVisibility.Valid() {
			return nil, internal.NewValidationError("unknown data visibility scope", internal.ErrCodeValidationFailed)
		}
		r.Permissions = *req.Permissions
	}
	if req.IsActive != nil {
		r.IsActive = *req.IsActive
	}

	if req.ReparentTo != nil {
		if err := s.reparent(ctx, tenantID, r, *req.ReparentTo); err != nil {
			return nil, err
		}
	}

	if err := s.repo.SaveRole(ctx, r); err != nil {
		return nil, internal.NewInternalError("failed to update role", err)
	}

	if req.ReparentTo != nil {
		if err := s.relevelSubtree(ctx, tenantID, r); err != nil {
			return nil, err
		}
	}

	s.invalidator.InvalidateTenant(tenantID)
	s.logger.Info("role updated", "tenant_id", tenantID, "role_id", roleID, "actor_id", actorID)
	return FromDataModel(r), nil
}

func (s *Service) reparent(ctx context.Context, tenantID string, r *roleDatamodel.Role, newParentID string) error {
	if newParentID == r.RoleID {
		return internal.NewValidationError("role cannot be its own parent", internal.ErrCodeValidationFailed)
	}

	// Validate the new parent before touching any links so a rejected
	// reparent leaves the tree untouched.
	var parent *roleDatamodel.Role
	if newParentID != "" {
		var err error
		parent, err = s.repo.FindRoleByRoleID(ctx, tenantID, newParentID)
		if err != nil {
			return internal.NewInternalError("failed to get parent role", err)
		}
		if parent == nil || parent.IsDeleted {
			return internal.ErrParentRoleNotFound
		}
		if err := s.ensureNotDescendant(ctx, tenantID, r.RoleID, parent); err != nil {
			return err
		}
	}

	if r.ParentRoleID != nil {
		oldParent, err := s.repo.FindRoleByRoleID(ctx, tenantID, *r.ParentRoleID)
		if err != nil {
			return internal.NewInternalError("failed to get parent role", err)
		}
		if oldParent != nil {
			oldParent.ChildRoleIDs = removeID(oldParent.ChildRoleIDs, r.RoleID)
			if err := s.repo.SaveRole(ctx, oldParent); err != nil {
				return internal.NewInternalError("failed to unlink parent role", err)
			}
		}
	}

	if parent == nil {
		r.ParentRoleID = nil
		r.ParentRoleName = ""
		r.Level = 0
		return nil
	}

	parent.ChildRoleIDs = append(parent.ChildRoleIDs, r.RoleID)
	if err := s.repo.SaveRole(ctx, parent); err != nil {
		return internal.NewInternalError("failed to link parent role", err)
	}

	r.ParentRoleID = &parent.RoleID
	r.ParentRoleName = parent.Name
	r.Level = parent.Level + 1
	return nil
}

// ensureNotDescendant refuses a reparent that would close a cycle: the
// proposed parent must not sit anywhere below the moved role. Walks the
// parent links upward from the proposed parent with a visited set so an
// already-corrupted chain still terminates.
func (s *Service) ensureNotDescendant(ctx context.Context, tenantID, movedID string, parent *roleDatamodel.Role) error {
	visited := make(map[string]struct{})
	current := parent
	for current != nil {
		if current.RoleID == movedID {
			return internal.NewValidationError("role cannot be moved under its own descendant", internal.ErrCodeValidationFailed)
		}
		if _, seen := visited[current.RoleID]; seen {
			return nil
		}
		visited[current.RoleID] = struct{}{}

		if current.ParentRoleID == nil || *current.ParentRoleID == "" {
			return nil
		}
		next, err := s.repo.FindRoleByRoleID(ctx, tenantID, *current.ParentRoleID)
		if err != nil {
			return internal.NewInternalError("failed to get parent role", err)
		}
		current = next
	}
	return nil
}

// relevelSubtree walks the moved role's descendants breadth-first and rewrites
// their levels. A visited set terminates the walk if the child links are
// corrupted into a cycle.
func (s *Service) relevelSubtree(ctx context.Context, tenantID string, root *roleDatamodel.Role) error {
	visited := map[string]struct{}{root.RoleID: {}}
	queue := []*roleDatamodel.Role{root}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, childID := range current.ChildRoleIDs {
			if _, seen := visited[childID]; seen {
				continue
			}
			visited[childID] = struct{}{}

			child, err := s.repo.FindRoleByRoleID(ctx, tenantID, childID)
			if err != nil {
				return internal.NewInternalError("failed to get child role", err)
			}
			if child == nil {
				continue
			}

			child.Level = current.Level + 1
			child.ParentRoleName = current.Name
			if err := s.repo.SaveRole(ctx, child); err != nil {
				return internal.NewInternalError("failed to update child role", err)
			}
			queue = append(queue, child)
		}
	}
	return nil
}

// SoftDelete marks the role deleted. Roles with children are refused so the
// hierarchy never dangles; callers must reparent or delete children first.
func (s *Service) SoftDelete(ctx context.Context, actorID int64, roleID string) error {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return err
	}
	if err := s.requireManageRoles(ctx, actorID); err != nil {
		return err
	}

	r, err := s.repo.FindRoleByRoleID(ctx, tenantID, roleID)
	if err != nil {
		return internal.NewInternalError("failed to get role", err)
	}
	if r == nil || r.IsDeleted {
		return internal.ErrRoleNotFound
	}
	if r.IsSystemRole {
		return internal.ErrSystemRoleImmutable
	}
	if r.HasChildren() {
		return internal.ErrRoleHasChildren
	}

	if r.ParentRoleID != nil {
		parent, err := s.repo.FindRoleByRoleID(ctx, tenantID, *r.ParentRoleID)
		if err != nil {
			return internal.NewInternalError("failed to get parent role", err)
		}
		if parent != nil {
			parent.ChildRoleIDs = removeID(parent.ChildRoleIDs, r.RoleID)
			if err := s.repo.SaveRole(ctx, parent); err != nil {
				return internal.NewInternalError("failed to unlink parent role", err)
			}
		}
	}

	r.IsDeleted = true
	r.IsActive = false
	if err := s.repo.SaveRole(ctx, r); err != nil {
		return internal.NewInternalError("failed to delete role", err)
	}

	s.invalidator.InvalidateTenant(tenantID)
	s.logger.Info("role deleted", "tenant_id", tenantID, "role_id", roleID, "actor_id", actorID)
	return nil
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
