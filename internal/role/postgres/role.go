package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/salesloop/crm-backend/internal/authz"
	roleDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/role"
	"github.com/salesloop/crm-backend/internal/role"
)

// RoleRepository implements role.Repository and authz.RoleStore.
type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

var (
	_ role.Repository = (*RoleRepository)(nil)
	_ authz.RoleStore = (*RoleRepository)(nil)
)

func (r *RoleRepository) FindRoleByRoleID(ctx context.Context, tenantID, roleID string) (*roleDatamodel.Role, error) {
	var found roleDatamodel.Role
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND role_id = ?", tenantID, roleID).
		First(&found).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *RoleRepository) ListRoles(ctx context.Context, tenantID string) ([]*roleDatamodel.Role, error) {
	var roles []*roleDatamodel.Role
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_deleted = false", tenantID).
		Order("level ASC, name ASC").
		Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) CreateRole(ctx context.Context, newRole *roleDatamodel.Role) error {
	return r.db.WithContext(ctx).Create(newRole).Error
}

func (r *RoleRepository) SaveRole(ctx context.Context, updated *roleDatamodel.Role) error {
	updated.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(updated).Error
}
