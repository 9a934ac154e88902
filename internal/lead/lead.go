package lead

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	leadDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/lead"
)

// Lead is the API view of a lead. Maskable fields are pointers: a nil means
// the caller's profile denies reading that field, not that the value is
// empty.
type Lead struct {
	LeadID        string           `json:"lead_id"`
	OwnerID       int64            `json:"owner_id"`
	FirstName     string           `json:"first_name,omitempty"`
	LastName      string           `json:"last_name"`
	Company       string           `json:"company,omitempty"`
	Email         *string          `json:"email,omitempty"`
	Phone         *string          `json:"phone,omitempty"`
	Status        string           `json:"status"`
	Source        string           `json:"source,omitempty"`
	AnnualRevenue *decimal.Decimal `json:"annual_revenue,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Repository is the persistence surface for leads: (nil, nil) when no row
// matches.
type Repository interface {
	FindLeadByLeadID(ctx context.Context, tenantID, leadID string) (*leadDatamodel.Lead, error)
	ListLeads(ctx context.Context, tenantID string, limit, offset int) ([]*leadDatamodel.Lead, error)
	CreateLead(ctx context.Context, l *leadDatamodel.Lead) error
	SaveLead(ctx context.Context, l *leadDatamodel.Lead) error
}

func fromDataModel(l *leadDatamodel.Lead) *Lead {
	if l == nil {
		return nil
	}
	email := l.Email
	phone := l.Phone
	revenue := l.AnnualRevenue
	return &Lead{
		LeadID:        l.LeadID,
		OwnerID:       l.OwnerID,
		FirstName:     l.FirstName,
		LastName:      l.LastName,
		Company:       l.Company,
		Email:         &email,
		Phone:         &phone,
		Status:        l.Status,
		Source:        l.Source,
		AnnualRevenue: &revenue,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}
