package postgres

import (
	"gorm.io/gorm"

	"github.com/salesloop/crm-backend/internal/auth"
	userDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ auth.RepositoryAPI = (*Repository)(nil)

// GetUserByEmail looks up the login row across tenants; email is globally
// unique. (nil, nil) when no row matches.
func (r *Repository) GetUserByEmail(email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Where("email = ? AND is_deleted = false", email).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetUserByID(tenantID string, userID int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Where("tenant_id = ? AND id = ? AND is_deleted = false", tenantID, userID).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
