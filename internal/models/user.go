package models

import (
	"strings"
	"time"
)

// Role is the tagged variant every authorization check switches on.
type Role string

const (
	RoleCoreIntern Role = "core_intern"
	RoleLeadIntern Role = "lead_intern"
	RoleAdmin      Role = "admin"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleCoreIntern:
		return RoleCoreIntern, true
	case RoleLeadIntern:
		return RoleLeadIntern, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

func (role Role) Label() string {
	switch role {
	case RoleCoreIntern:
		return "Core Intern"
	case RoleLeadIntern:
		return "Lead Intern"
	case RoleAdmin:
		return "Admin"
	default:
		return "Unknown"
	}
}

type UserStatus string

const (
	StatusPendingApproval UserStatus = "pending_approval"
	StatusActive          UserStatus = "active"
	StatusInactive        UserStatus = "inactive"
)

type User struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Name               string     `gorm:"not null" json:"name"`
	Email              string     `gorm:"not null" json:"email"`
	Username           *string    `json:"username,omitempty"`
	School             string     `gorm:"not null;default:''" json:"school"`
	Role               Role       `gorm:"not null" json:"role"`
	Status             UserStatus `gorm:"not null;default:pending_approval" json:"status"`
	PasswordHash       string     `gorm:"not null;default:''" json:"-"`
	MustChangePassword bool       `gorm:"not null;default:false" json:"must_change_password"`
	LeadInternID       *uint      `json:"lead_intern_id,omitempty"`
	StartDate          string     `gorm:"not null;default:''" json:"start_date"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
}

func (user User) UsernameValue() string {
	if user.Username == nil {
		return ""
	}
	return *user.Username
}

func (user User) IsActive() bool {
	return user.Status == StatusActive
}

func (user User) HasCredentials() bool {
	return user.Username != nil && strings.TrimSpace(user.PasswordHash) != ""
}
