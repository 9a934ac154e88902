package role

import (
	"context"
	"time"

	roleDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/role"
)

// Role is the hierarchy node exposed over the API.
type Role struct {
	RoleID         string                       `json:"role_id"`
	Name           string                       `json:"name"`
	Description    string                       `json:"description,omitempty"`
	IsSystemRole   bool                         `json:"is_system_role"`
	ParentRoleID   *string                      `json:"parent_role_id,omitempty"`
	ParentRoleName string                       `json:"parent_role_name,omitempty"`
	Level          int                          `json:"level"`
	ChildRoleIDs   []string                     `json:"child_role_ids,omitempty"`
	ModulePerms    map[string]bool              `json:"module_permissions,omitempty"`
	Permissions    roleDatamodel.RolePermissions `json:"permissions"`
	IsActive       bool                         `json:"is_active"`
	CreatedAt      time.Time                    `json:"created_at"`
	UpdatedAt      time.Time                    `json:"updated_at"`
}

// Repository is the persistence surface for role management. FindRoleByRoleID
// shares its shape with the decision engine's role lookup: (nil, nil) when no
// row matches.
type Repository interface {
	FindRoleByRoleID(ctx context.Context, tenantID, roleID string) (*roleDatamodel.Role, error)
	ListRoles(ctx context.Context, tenantID string) ([]*roleDatamodel.Role, error)
	CreateRole(ctx context.Context, r *roleDatamodel.Role) error
	SaveRole(ctx context.Context, r *roleDatamodel.Role) error
}

func FromDataModel(r *roleDatamodel.Role) *Role {
	if r == nil {
		return nil
	}
	return &Role{
		RoleID:         r.RoleID,
		Name:           r.Name,
		Description:    r.Description,
		IsSystemRole:   r.IsSystemRole,
		ParentRoleID:   r.ParentRoleID,
		ParentRoleName: r.ParentRoleName,
		Level:          r.Level,
		ChildRoleIDs:   r.ChildRoleIDs,
		ModulePerms:    r.ModulePerms,
		Permissions:    r.Permissions,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
