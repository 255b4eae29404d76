package models

import (
	"time"
)

type UserRole string

const (
	RoleDeveloper UserRole = "DEVELOPER"
	RoleCreator   UserRole = "CREATOR"
	RoleBuyer     UserRole = "BUYER"
	RoleAdmin     UserRole = "ADMIN"
)

// User represents an account in the system
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Role      UserRole  `gorm:"size:50;not null;default:BUYER;index" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// Session identifies the caller of a service operation. It is resolved from
// the request token by the auth middleware and passed down explicitly; the
// services never look up ambient state themselves.
type Session struct {
	UserID uint     `json:"user_id"`
	Role   UserRole `json:"role"`
}

// IsAdmin reports whether the session carries the admin capability.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// ValidUserRole reports whether r is a known role.
func ValidUserRole(r UserRole) bool {
	switch r {
	case RoleDeveloper, RoleCreator, RoleBuyer, RoleAdmin:
		return true
	}
	return false
}
