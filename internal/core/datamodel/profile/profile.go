package profile

import (
	"strings"
	"time"
)

// ObjectPermission is a CRUD-style allow-list entry scoped to one entity
// type. An object with no entry denies every action.
type ObjectPermission struct {
	ObjectName   string `json:"object_name"`
	CanCreate    bool   `json:"can_create"`
	CanRead      bool   `json:"can_read"`
	CanEdit      bool   `json:"can_edit"`
	CanDelete    bool   `json:"can_delete"`
	CanViewAll   bool   `json:"can_view_all"`
	CanModifyAll bool   `json:"can_modify_all"`
}

// FieldPermission is a deny-list entry layered on top of an already-granted
// object permission. A field with no entry allows both read and edit.
type FieldPermission struct {
	ObjectName  string `json:"object_name"`
	FieldName   string `json:"field_name"`
	CanRead     bool   `json:"can_read"`
	CanEdit     bool   `json:"can_edit"`
	IsHidden    bool   `json:"is_hidden"`
	IsEncrypted bool   `json:"is_encrypted"`
}

// SystemPermissions are profile-level platform grants, orthogonal to the
// role's administrative permissions.
type SystemPermissions struct {
	CanAccessAPI        bool `json:"can_access_api"`
	APIRateLimit        int  `json:"api_rate_limit"`
	CanAccessMobileApp  bool `json:"can_access_mobile_app"`
	CanAccessReports    bool `json:"can_access_reports"`
	CanAccessDashboards bool `json:"can_access_dashboards"`
	CanBulkUpdate       bool `json:"can_bulk_update"`
	CanBulkDelete       bool `json:"can_bulk_delete"`
	CanMassEmail        bool `json:"can_mass_email"`
	CanBypassValidation bool `json:"can_bypass_validation"`
	CanRunAutomation    bool `json:"can_run_automation"`
}

// Profile bundles a user's object- and field-level permissions independently
// of their Role. System template rows carry a nil TenantID.
type Profile struct {
	ID                int64              `gorm:"primaryKey"`
	ProfileID         string             `gorm:"column:profile_id;uniqueIndex;not null"`
	TenantID          *string            `gorm:"column:tenant_id;index"`
	Name              string             `gorm:"column:name;not null"`
	Description       string             `gorm:"column:description"`
	IsSystemProfile   bool               `gorm:"column:is_system_profile;default:false"`
	ObjectPermissions []ObjectPermission `gorm:"column:object_permissions;serializer:json"`
	FieldPermissions  []FieldPermission  `gorm:"column:field_permissions;serializer:json"`
	SystemPerms       SystemPermissions  `gorm:"column:system_permissions;serializer:json"`
	IsActive          bool               `gorm:"column:is_active;default:true"`
	IsDeleted         bool               `gorm:"column:is_deleted;default:false"`
	CreatedAt         time.Time          `gorm:"column:created_at;default:now()"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;default:now()"`
}

func (Profile) TableName() string {
	return "profiles"
}

// ObjectPermissionFor scans the allow-list for an entry matching objectName.
// Matching is case-insensitive because entries are stored in whatever case
// the admin typed; the nil return is the fail-closed default.
func (p *Profile) ObjectPermissionFor(objectName string) *ObjectPermission {
	for i := range p.ObjectPermissions {
		if strings.EqualFold(p.ObjectPermissions[i].ObjectName, objectName) {
			return &p.ObjectPermissions[i]
		}
	}
	return nil
}

// FieldPermissionFor scans the deny-list for an entry matching the object and
// field pair. A nil return means the field is unrestricted.
func (p *Profile) FieldPermissionFor(objectName, fieldName string) *FieldPermission {
	for i := range p.FieldPermissions {
		if strings.EqualFold(p.FieldPermissions[i].ObjectName, objectName) &&
			strings.EqualFold(p.FieldPermissions[i].FieldName, fieldName) {
			return &p.FieldPermissions[i]
		}
	}
	return nil
}
