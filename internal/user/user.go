package user

import (
	"context"
	"time"

	userDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/user"
)

// User is the directory view exposed over the API. PasswordHash never
// leaves the service layer.
type User struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	RoleID    *string   `json:"role_id,omitempty"`
	ProfileID *string   `json:"profile_id,omitempty"`
	ManagerID *int64    `json:"manager_id,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository is the persistence surface the directory service needs. The
// FindUserByID and FindUsersByManagerID methods deliberately share their
// shape with the decision engine's user lookups so one implementation
// serves both: (nil, nil) on no match.
type Repository interface {
	FindUserByID(ctx context.Context, tenantID string, userID int64) (*userDatamodel.User, error)
	FindUsersByManagerID(ctx context.Context, tenantID string, managerID int64) ([]*userDatamodel.User, error)
	ListUsers(ctx context.Context, tenantID string, limit, offset int) ([]*userDatamodel.User, error)
	UpdateManager(ctx context.Context, tenantID string, userID int64, managerID *int64) error
}

func FromDataModel(u *userDatamodel.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:        u.ID,
		TenantID:  u.TenantID,
		Email:     u.Email,
		Name:      u.Name,
		RoleID:    u.RoleID,
		ProfileID: u.ProfileID,
		ManagerID: u.ManagerID,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
