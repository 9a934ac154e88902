package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	leadDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/lead"
	"github.com/salesloop/crm-backend/internal/lead"
)

// LeadRepository implements lead.Repository using GORM.
type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) lead.Repository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) FindLeadByLeadID(ctx context.Context, tenantID, leadID string) (*leadDatamodel.Lead, error) {
	var l leadDatamodel.Lead
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND lead_id = ?", tenantID, leadID).
		First(&l).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepository) ListLeads(ctx context.Context, tenantID string, limit, offset int) ([]*leadDatamodel.Lead, error) {
	var leads []*leadDatamodel.Lead
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_deleted = false", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&leads).Error
	return leads, err
}

func (r *LeadRepository) CreateLead(ctx context.Context, l *leadDatamodel.Lead) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LeadRepository) SaveLead(ctx context.Context, l *leadDatamodel.Lead) error {
	l.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(l).Error
}
