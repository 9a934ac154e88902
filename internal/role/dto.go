package role

import (
	roleDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/role"
)

type CreateRoleRequest struct {
	Name         string                        `json:"name"`
	Description  string                        `json:"description"`
	ParentRoleID *string                       `json:"parent_role_id"`
	ModulePerms  map[string]bool               `json:"module_permissions"`
	Permissions  roleDatamodel.RolePermissions `json:"permissions"`
}

// UpdateRoleRequest uses pointers so absent fields are left untouched.
// ReparentTo moves the role under a new parent; an empty string detaches it
// to the top level.
type UpdateRoleRequest struct {
	Name        *string                        `json:"name"`
	Description *string                        `json:"description"`
	ModulePerms map[string]bool                `json:"module_permissions"`
	Permissions *roleDatamodel.RolePermissions `json:"permissions"`
	ReparentTo  *string                        `json:"reparent_to"`
	IsActive    *bool                          `json:"is_active"`
}

type ListResponse struct {
	Roles []*Role `json:"roles"`
}
