package authz

import (
	"context"
	"log/slog"

	"github.com/salesloop/crm-backend/internal"
	profileDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/profile"
	roleDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/role"
	userDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/user"
)

// Engine composes Role, Profile, ownership, and tenant context into
// allow/deny answers. All methods are stateless reads over a consistent
// snapshot of directory state; they never mutate anything and are safe to
// call concurrently.
type Engine struct {
	users    UserDirectory
	roles    RoleStore
	profiles ProfileStore
	logger   *slog.Logger
}

func NewEngine(users UserDirectory, roles RoleStore, profiles ProfileStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		users:    users,
		roles:    roles,
		profiles: profiles,
		logger:   logger,
	}
}

// resolveUser fetches the user within the context's tenant. A missing or
// unusable user resolves to nil, which every decision path treats as deny.
func (e *Engine) resolveUser(ctx context.Context, userID int64) (*userDatamodel.User, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	u, err := e.users.FindUserByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsUsable() {
		return nil, nil
	}
	return u, nil
}

// resolveProfile fetches the user's profile; nil when the user has none
// assigned or the row is missing, inactive, or soft-deleted.
func (e *Engine) resolveProfile(ctx context.Context, u *userDatamodel.User) (*profileDatamodel.Profile, error) {
	if u.ProfileID == nil || *u.ProfileID == "" {
		return nil, nil
	}
	p, err := e.profiles.FindProfileByProfileID(ctx, u.TenantID, *u.ProfileID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.IsDeleted || !p.IsActive {
		return nil, nil
	}
	return p, nil
}

// resolveRole fetches the user's role under the same deny-on-absence rules.
func (e *Engine) resolveRole(ctx context.Context, u *userDatamodel.User) (*roleDatamodel.Role, error) {
	if u.RoleID == nil || *u.RoleID == "" {
		return nil, nil
	}
	r, err := e.roles.FindRoleByRoleID(ctx, u.TenantID, *u.RoleID)
	if err != nil {
		return nil, err
	}
	if r == nil || r.IsDeleted || !r.IsActive {
		return nil, nil
	}
	return r, nil
}

// HasPermission answers whether the user's profile grants the object-level
// action. Object permissions are an allow-list: an object with no entry
// denies every action.
func (e *Engine) HasPermission(ctx context.Context, userID int64, object ObjectType, action Action) (bool, error) {
	u, err := e.resolveUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, nil
	}

	p, err := e.resolveProfile(ctx, u)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, nil
	}

	op := p.ObjectPermissionFor(object.String())
	if op == nil {
		return false, nil
	}

	switch action {
	case ActionCreate:
		return op.CanCreate, nil
	case ActionRead:
		return op.CanRead, nil
	case ActionEdit:
		return op.CanEdit, nil
	case ActionDelete:
		return op.CanDelete, nil
	case ActionViewAll:
		return op.CanViewAll, nil
	case ActionModifyAll:
		return op.CanModifyAll, nil
	}
	return false, nil
}

// CanViewRecord answers record-level visibility. Evaluation order is fixed:
// self-ownership wins unconditionally, then the profile's CanViewAll
// short-circuits, then the role's data-visibility scope decides.
func (e *Engine) CanViewRecord(ctx context.Context, userID, recordOwnerID int64, object ObjectType) (bool, error) {
	if userID == recordOwnerID {
		if _, err := internal.RequireTenantID(ctx); err != nil {
			return false, err
		}
		return true, nil
	}

	u, err := e.resolveUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, nil
	}

	p, err := e.resolveProfile(ctx, u)
	if err != nil {
		return false, err
	}
	if p != nil {
		if op := p.ObjectPermissionFor(object.String()); op != nil && op.CanViewAll {
			return true, nil
		}
	}

	r, err := e.resolveRole(ctx, u)
	if err != nil {
		return false, err
	}
	if r == nil {
		// missing role defaults to OWN scope, already excluded above
		return false, nil
	}

	switch r.Permissions.DataVisibility {
	case roleDatamodel.VisibilityAll, roleDatamodel.VisibilityAllUsers:
		return true, nil
	case roleDatamodel.VisibilitySubordinates:
		return e.IsSubordinate(ctx, userID, recordOwnerID)
	default:
		return false, nil
	}
}

// HasFieldPermission answers field-level access. Field permissions are a
// deny-list on top of an already-granted object permission: no entry means
// allow, and a hidden field denies both actions regardless of its flags.
func (e *Engine) HasFieldPermission(ctx context.Context, userID int64, object ObjectType, fieldName string, action FieldAction) (bool, error) {
	u, err := e.resolveUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, nil
	}

	p, err := e.resolveProfile(ctx, u)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, nil
	}

	fp := p.FieldPermissionFor(object.String(), fieldName)
	if fp == nil {
		return true, nil
	}
	if fp.IsHidden {
		return false, nil
	}
	if action == FieldEdit {
		return fp.CanEdit, nil
	}
	return fp.CanRead, nil
}

// HasSystemPermission answers the named coarse grant from the user's role.
// Unknown permission names, missing users, and missing roles all deny.
func (e *Engine) HasSystemPermission(ctx context.Context, userID int64, permission RolePermission) (bool, error) {
	u, err := e.resolveUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, nil
	}

	r, err := e.resolveRole(ctx, u)
	if err != nil {
		return false, err
	}
	if r == nil {
		return false, nil
	}

	value, known := r.Permissions.Flag(string(permission))
	if !known {
		e.logger.Warn("unknown role permission requested", "permission", string(permission), "user_id", userID)
		return false, nil
	}
	return value, nil
}
