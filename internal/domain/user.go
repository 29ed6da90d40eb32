package domain

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleOwner    UserRole = "owner"
	RoleStaff    UserRole = "staff"
	RoleAdmin    UserRole = "admin"
)

// User is the identity behind a booking, a location owner or a watchman.
// Credentials live outside this service.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email" gorm:"not null;uniqueIndex" validate:"required,email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Role      UserRole  `json:"role" gorm:"type:varchar(16);not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsStaff() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}
