package lead

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusNew         = "NEW"
	StatusContacted   = "CONTACTED"
	StatusQualified   = "QUALIFIED"
	StatusUnqualified = "UNQUALIFIED"
	StatusConverted   = "CONVERTED"
)

// Lead is the representative CRM entity wired through the decision engine.
type Lead struct {
	ID            int64           `gorm:"primaryKey"`
	LeadID        string          `gorm:"column:lead_id;uniqueIndex;not null"`
	TenantID      string          `gorm:"column:tenant_id;index;not null"`
	OwnerID       int64           `gorm:"column:owner_id;index;not null"`
	FirstName     string          `gorm:"column:first_name"`
	LastName      string          `gorm:"column:last_name;not null"`
	Company       string          `gorm:"column:company"`
	Email         string          `gorm:"column:email"`
	Phone         string          `gorm:"column:phone"`
	Status        string          `gorm:"column:status;default:NEW"`
	Source        string          `gorm:"column:source"`
	AnnualRevenue decimal.Decimal `gorm:"column:annual_revenue;type:numeric(18,2)"`
	IsDeleted     bool            `gorm:"column:is_deleted;default:false"`
	CreatedAt     time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;default:now()"`
}

func (Lead) TableName() string {
	return "leads"
}
