package lead

import "github.com/shopspring/decimal"

type CreateLeadRequest struct {
	FirstName     string           `json:"first_name"`
	LastName      string           `json:"last_name"`
	Company       string           `json:"company"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone"`
	Source        string           `json:"source"`
	AnnualRevenue *decimal.Decimal `json:"annual_revenue"`
}

// UpdateLeadRequest uses pointers so absent fields are left untouched. A
// present field still goes through the caller's field-level edit permission.
type UpdateLeadRequest struct {
	FirstName     *string          `json:"first_name"`
	LastName      *string          `json:"last_name"`
	Company       *string          `json:"company"`
	Email         *string          `json:"email"`
	Phone         *string          `json:"phone"`
	Status        *string          `json:"status"`
	Source        *string          `json:"source"`
	AnnualRevenue *decimal.Decimal `json:"annual_revenue"`
}

type ListResponse struct {
	Leads []*Lead `json:"leads"`
}
