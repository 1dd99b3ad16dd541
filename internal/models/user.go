package models

import "gorm.io/gorm"

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleIT    UserRole = "it"
	RoleUser  UserRole = "user"
)

type User struct {
	gorm.Model
	Username     string   `gorm:"uniqueIndex;size:50;not null"`
	FullName     string   `gorm:"size:255"`
	PasswordHash string   `gorm:"not null"`
	Role         UserRole `gorm:"type:varchar(20);not null"`
	Active       bool     `gorm:"not null;default:true"`
}

// IsElevated reports whether the user has full access to the catalog.
// Administrators and IT staff count as elevated, everyone else is a
// standard user limited to their own equipment.
func (u User) IsElevated() bool {
	return u.Role == RoleAdmin || u.Role == RoleIT
}

// DisplayName returns the full name if set, otherwise the username.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
