package role

import "time"

// DataVisibility is the record-visibility scope granted by a role. It governs
// which records the role's holder may view beyond their own.
type DataVisibility string

const (
	VisibilityOwn          DataVisibility = "OWN"
	VisibilitySubordinates DataVisibility = "SUBORDINATES"
	VisibilityAllUsers     DataVisibility = "ALL_USERS"
	VisibilityAll          DataVisibility = "ALL"
)

// Valid reports whether v is one of the four known scopes.
func (v DataVisibility) Valid() bool {
	switch v {
	case VisibilityOwn, VisibilitySubordinates, VisibilityAllUsers, VisibilityAll:
		return true
	}
	return false
}

// RolePermissions are the coarse administrative grants carried by a role,
// stored as a JSON column.
type RolePermissions struct {
	DataVisibility    DataVisibility `json:"data_visibility"`
	CanManageUsers    bool           `json:"can_manage_users"`
	CanManageRoles    bool           `json:"can_manage_roles"`
	CanManageProfiles bool           `json:"can_manage_profiles"`
	CanViewSetup      bool           `json:"can_view_setup"`
	CanManageSharing  bool           `json:"can_manage_sharing"`
	CanViewAllData    bool           `json:"can_view_all_data"`
	CanModifyAllData  bool           `json:"can_modify_all_data"`
	CanViewAuditLog   bool           `json:"can_view_audit_log"`
	CanExportData     bool           `json:"can_export_data"`
	CanImportData     bool           `json:"can_import_data"`
	CustomPermissions []string       `json:"custom_permissions,omitempty"`
}

// Flag returns the named boolean grant. The second return is false for names
// outside the closed set, which callers must treat as deny.
func (p RolePermissions) Flag(name string) (value bool, known bool) {
	switch name {
	case "canManageUsers":
		return p.CanManageUsers, true
	case "canManageRoles":
		return p.CanManageRoles, true
	case "canManageProfiles":
		return p.CanManageProfiles, true
	case "canViewSetup":
		return p.CanViewSetup, true
	case "canManageSharing":
		return p.CanManageSharing, true
	case "canViewAllData":
		return p.CanViewAllData, true
	case "canModifyAllData":
		return p.CanModifyAllData, true
	case "canViewAuditLog":
		return p.CanViewAuditLog, true
	case "canExportData":
		return p.CanExportData, true
	case "canImportData":
		return p.CanImportData, true
	}
	return false, false
}

// Role is one node of a tenant's permission hierarchy. System template rows
// carry a nil TenantID and are only cloned at tenant onboarding, never
// evaluated directly.
type Role struct {
	ID             int64           `gorm:"primaryKey"`
	RoleID         string          `gorm:"column:role_id;uniqueIndex;not null"`
	TenantID       *string         `gorm:"column:tenant_id;index"`
	Name           string          `gorm:"column:name;not null"`
	Description    string          `gorm:"column:description"`
	IsSystemRole   bool            `gorm:"column:is_system_role;default:false"`
	ParentRoleID   *string         `gorm:"column:parent_role_id;index"`
	ParentRoleName string          `gorm:"column:parent_role_name"`
	Level          int             `gorm:"column:level;default:0"`
	ChildRoleIDs   []string        `gorm:"column:child_role_ids;serializer:json"`
	ModulePerms    map[string]bool `gorm:"column:module_permissions;serializer:json"`
	Permissions    RolePermissions `gorm:"column:permissions;serializer:json"`
	IsActive       bool            `gorm:"column:is_active;default:true"`
	IsDeleted      bool            `gorm:"column:is_deleted;default:false"`
	CreatedAt      time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;default:now()"`
}

func (Role) TableName() string {
	return "roles"
}

// HasChildren reports whether any child back-links remain; deletion is
// refused while this holds.
func (r *Role) HasChildren() bool {
	return len(r.ChildRoleIDs) > 0
}
