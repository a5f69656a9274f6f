package models

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleSeller Role = "seller"
)

// Roles is the closed set accepted at the service boundary.
var Roles = []Role{RoleAdmin, RoleStaff, RoleSeller}

// User represents an authenticated operator of the shop.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:150;not null" json:"email"`
	Role         Role      `gorm:"size:20;not null;default:staff" json:"role"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
