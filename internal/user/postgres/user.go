package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/salesloop/crm-backend/internal/authz"
	userDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/user"
	"github.com/salesloop/crm-backend/internal/user"
)

// UserRepository implements user.Repository and, through the shared lookup
// methods, authz.UserDirectory.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

var (
	_ user.Repository    = (*UserRepository)(nil)
	_ authz.UserDirectory = (*UserRepository)(nil)
)

// FindUserByID returns (nil, nil) when no row matches. Soft-deleted rows are
// returned as-is; callers decide whether a deleted user counts.
func (r *UserRepository) FindUserByID(ctx context.Context, tenantID string, userID int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, userID).
		First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// FindUsersByManagerID returns the direct reports of managerID. Soft-deleted
// users are excluded so they drop out of subordinate visibility.
func (r *UserRepository) FindUsersByManagerID(ctx context.Context, tenantID string, managerID int64) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND manager_id = ? AND is_deleted = false", tenantID, managerID).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) ListUsers(ctx context.Context, tenantID string, limit, offset int) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_deleted = false", tenantID).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateManager(ctx context.Context, tenantID string, userID int64, managerID *int64) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("tenant_id = ? AND id = ?", tenantID, userID).
		Updates(map[string]interface{}{
			"manager_id": managerID,
			"updated_at": time.Now(),
		}).Error
}
