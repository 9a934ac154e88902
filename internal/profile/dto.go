package profile

import (
	profileDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/profile"
)

type CreateProfileRequest struct {
	Name              string                              `json:"name"`
	Description       string                              `json:"description"`
	ObjectPermissions []profileDatamodel.ObjectPermission `json:"object_permissions"`
	FieldPermissions  []profileDatamodel.FieldPermission  `json:"field_permissions"`
	SystemPerms       profileDatamodel.SystemPermissions  `json:"system_permissions"`
}

// UpdateProfileRequest uses pointers so absent fields are left untouched.
type UpdateProfileRequest struct {
	Name              *string                              `json:"name"`
	Description       *string                              `json:"description"`
	ObjectPermissions *[]profileDatamodel.ObjectPermission `json:"object_permissions"`
	FieldPermissions  *[]profileDatamodel.FieldPermission  `json:"field_permissions"`
	SystemPerms       *profileDatamodel.SystemPermissions  `json:"system_permissions"`
	IsActive          *bool                                `json:"is_active"`
}

type ListResponse struct {
	Profiles []*Profile `json:"profiles"`
}
