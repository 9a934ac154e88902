package authz

import (
	"context"
	"strings"

	"github.com/salesloop/crm-backend/internal"
	profileDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/profile"
	roleDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/role"
	userDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/user"
)

// ObjectType is the closed set of entity types decisions are made about.
// Free-form object names from DTOs are resolved once at the boundary via
// ParseObjectType so the engine never compares strings case-insensitively.
type ObjectType string

const (
	ObjectLead        ObjectType = "LEAD"
	ObjectContact     ObjectType = "CONTACT"
	ObjectAccount     ObjectType = "ACCOUNT"
	ObjectOpportunity ObjectType = "OPPORTUNITY"
	ObjectProduct     ObjectType = "PRODUCT"
	ObjectActivity    ObjectType = "ACTIVITY"
	ObjectProposal    ObjectType = "PROPOSAL"
)

func (o ObjectType) String() string { return string(o) }

// ParseObjectType resolves a free-form object name into the closed set.
func ParseObjectType(name string) (ObjectType, error) {
	switch ObjectType(strings.ToUpper(strings.TrimSpace(name))) {
	case ObjectLead:
		return ObjectLead, nil
	case ObjectContact:
		return ObjectContact, nil
	case ObjectAccount:
		return ObjectAccount, nil
	case ObjectOpportunity:
		return ObjectOpportunity, nil
	case ObjectProduct:
		return ObjectProduct, nil
	case ObjectActivity:
		return ObjectActivity, nil
	case ObjectProposal:
		return ObjectProposal, nil
	}
	return "", internal.NewValidationError("unknown object type: "+name, internal.ErrCodeInvalidObject)
}

// Action is the closed set of object-level actions.
type Action string

const (
	ActionCreate    Action = "CREATE"
	ActionRead      Action = "READ"
	ActionEdit      Action = "EDIT"
	ActionDelete    Action = "DELETE"
	ActionViewAll   Action = "VIEWALL"
	ActionModifyAll Action = "MODIFYALL"
)

func (a Action) String() string { return string(a) }

// ParseAction resolves a free-form action name; UPDATE is accepted as an
// alias for EDIT.
func ParseAction(name string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "CREATE":
		return ActionCreate, nil
	case "READ":
		return ActionRead, nil
	case "EDIT", "UPDATE":
		return ActionEdit, nil
	case "DELETE":
		return ActionDelete, nil
	case "VIEWALL", "VIEW_ALL":
		return ActionViewAll, nil
	case "MODIFYALL", "MODIFY_ALL":
		return ActionModifyAll, nil
	}
	return "", internal.NewValidationError("unknown action: "+name, internal.ErrCodeInvalidAction)
}

// FieldAction is the subset of actions field permissions distinguish.
type FieldAction string

const (
	FieldRead FieldAction = "READ"
	FieldEdit FieldAction = "EDIT"
)

// RolePermission names a coarse administrative grant on a role. Values match
// the JSON keys stored in the role's permissions column.
type RolePermission string

const (
	PermManageUsers    RolePermission = "canManageUsers"
	PermManageRoles    RolePermission = "canManageRoles"
	PermManageProfiles RolePermission = "canManageProfiles"
	PermViewSetup      RolePermission = "canViewSetup"
	PermManageSharing  RolePermission = "canManageSharing"
	PermViewAllData    RolePermission = "canViewAllData"
	PermModifyAllData  RolePermission = "canModifyAllData"
	PermViewAuditLog   RolePermission = "canViewAuditLog"
	PermExportData     RolePermission = "canExportData"
	PermImportData     RolePermission = "canImportData"
)

// UserDirectory resolves authorization-relevant user state. Implementations
// return (nil, nil) when no row matches: the engine treats absence as deny,
// never as an error.
type UserDirectory interface {
	FindUserByID(ctx context.Context, tenantID string, userID int64) (*userDatamodel.User, error)
	FindUsersByManagerID(ctx context.Context, tenantID string, managerID int64) ([]*userDatamodel.User, error)
}

// RoleStore resolves roles by business key within a tenant. (nil, nil) on no
// match.
type RoleStore interface {
	FindRoleByRoleID(ctx context.Context, tenantID, roleID string) (*roleDatamodel.Role, error)
}

// ProfileStore resolves profiles by business key within a tenant. (nil, nil)
// on no match.
type ProfileStore interface {
	FindProfileByProfileID(ctx context.Context, tenantID, profileID string) (*profileDatamodel.Profile, error)
}

// Decider is the decision surface exposed to entity services. Engine computes
// decisions; CachedEngine memoizes them without changing any result.
type Decider interface {
	HasPermission(ctx context.Context, userID int64, object ObjectType, action Action) (bool, error)
	CanViewRecord(ctx context.Context, userID, recordOwnerID int64, object ObjectType) (bool, error)
	HasFieldPermission(ctx context.Context, userID int64, object ObjectType, fieldName string, action FieldAction) (bool, error)
	HasSystemPermission(ctx context.Context, userID int64, permission RolePermission) (bool, error)
	IsSubordinate(ctx context.Context, managerID, targetID int64) (bool, error)
	AllSubordinates(ctx context.Context, managerID int64) ([]int64, error)
}

// Invalidator is implemented by the decision cache; mutating services call it
// whenever a role, profile, or manager relationship changes.
type Invalidator interface {
	InvalidateTenant(tenantID string)
}

// NoopInvalidator satisfies Invalidator when the cache is disabled.
type NoopInvalidator struct{}

func (NoopInvalidator) InvalidateTenant(string) {}
