package profile

import (
	"context"
	"time"

	profileDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/profile"
)

// Profile is the permission bundle exposed over the API.
type Profile struct {
	ProfileID         string                               `json:"profile_id"`
	Name              string                               `json:"name"`
	Description       string                               `json:"description,omitempty"`
	IsSystemProfile   bool                                 `json:"is_system_profile"`
	ObjectPermissions []profileDatamodel.ObjectPermission  `json:"object_permissions"`
	FieldPermissions  []profileDatamodel.FieldPermission   `json:"field_permissions,omitempty"`
	SystemPerms       profileDatamodel.SystemPermissions   `json:"system_permissions"`
	IsActive          bool                                 `json:"is_active"`
	CreatedAt         time.Time                            `json:"created_at"`
	UpdatedAt         time.Time                            `json:"updated_at"`
}

// Repository is the persistence surface for profile management.
// FindProfileByProfileID shares its shape with the decision engine's profile
// lookup: (nil, nil) when no row matches.
type Repository interface {
	FindProfileByProfileID(ctx context.Context, tenantID, profileID string) (*profileDatamodel.Profile, error)
	ListProfiles(ctx context.Context, tenantID string) ([]*profileDatamodel.Profile, error)
	CreateProfile(ctx context.Context, p *profileDatamodel.Profile) error
	SaveProfile(ctx context.Context, p *profileDatamodel.Profile) error
}

func FromDataModel(p *profileDatamodel.Profile) *Profile {
	if p == nil {
		return nil
	}
	return &Profile{
		ProfileID:         p.ProfileID,
		Name:              p.Name,
		Description:       p.Description,
		IsSystemProfile:   p.IsSystemProfile,
		ObjectPermissions: p.ObjectPermissions,
		FieldPermissions:  p.FieldPermissions,
		SystemPerms:       p.SystemPerms,
		IsActive:          p.IsActive,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
