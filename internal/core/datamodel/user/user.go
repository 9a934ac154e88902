package user

import "time"

const (
	StatusActive    = "ACTIVE"
	StatusInactive  = "INACTIVE"
	StatusSuspended = "SUSPENDED"
)

// User carries the directory fields the decision engine reads. ManagerID
// forms the subordinate graph; no write-time check guarantees it is acyclic,
// the read path tolerates cycles instead.
type User struct {
	ID           int64     `gorm:"primaryKey"`
	TenantID     string    `gorm:"column:tenant_id;index;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	RoleID       *string   `gorm:"column:role_id;index"`
	ProfileID    *string   `gorm:"column:profile_id;index"`
	ManagerID    *int64    `gorm:"column:manager_id;index"`
	Status       string    `gorm:"column:status;default:ACTIVE"`
	IsDeleted    bool      `gorm:"column:is_deleted;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}

// IsUsable reports whether the user may participate in authorization
// decisions at all. Half-provisioned or deactivated accounts fail closed.
func (u *User) IsUsable() bool {
	return u != nil && !u.IsDeleted && u.Status == StatusActive
}
