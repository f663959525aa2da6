package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleVolunteer UserRole = "VOLUNTEER"
	RoleNGO       UserRole = "NGO"
	RoleModerator UserRole = "MODERATOR"
	RoleAdmin     UserRole = "ADMIN"
)

// IsStaff reports whether the role moderates content and support.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleModerator
}

// SignupRole reports whether r may be chosen at registration.
func (r UserRole) SignupRole() bool {
	return r == RoleVolunteer || r == RoleNGO
}

type User struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Email           string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash    string         `gorm:"not null;default:''" json:"-"` // empty for VK-only accounts
	Name            string         `gorm:"not null" json:"name"`
	City            string         `json:"city,omitempty"`
	Image           string         `json:"image,omitempty"`
	VKID            *string        `gorm:"column:vk_id;uniqueIndex" json:"vk_id,omitempty"`
	Role            UserRole       `gorm:"type:varchar(20);default:'VOLUNTEER'" json:"role"`
	EmailVerifiedAt *time.Time     `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	NGO *NGO `gorm:"foreignKey:UserID" json:"ngo,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// HasPassword is false for accounts created through VK sign-in.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
