package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/salesloop/crm-backend/internal/authz"
	profileDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/profile"
	"github.com/salesloop/crm-backend/internal/profile"
)

// ProfileRepository implements profile.Repository and authz.ProfileStore.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

var (
	_ profile.Repository = (*ProfileRepository)(nil)
	_ authz.ProfileStore = (*ProfileRepository)(nil)
)

func (r *ProfileRepository) FindProfileByProfileID(ctx context.Context, tenantID, profileID string) (*profileDatamodel.Profile, error) {
	var found profileDatamodel.Profile
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND profile_id = ?", tenantID, profileID).
		First(&found).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *ProfileRepository) ListProfiles(ctx context.Context, tenantID string) ([]*profileDatamodel.Profile, error) {
	var profiles []*profileDatamodel.Profile
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_deleted = false", tenantID).
		Order("name ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepository) CreateProfile(ctx context.Context, p *profileDatamodel.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProfileRepository) SaveProfile(ctx context.Context, p *profileDatamodel.Profile) error {
	p.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(p).Error
}
