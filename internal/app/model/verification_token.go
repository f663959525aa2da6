package model

import (
	"time"
)

// VerificationToken is a single-use code scoped by Identifier ("<purpose>:<email>").
type VerificationToken struct {
	Identifier string    `gorm:"primaryKey;size:350" json:"identifier"`
	Token      string    `gorm:"primaryKey;size:320" json:"-"` // 6-digit code, or a pending email address
	Expires    time.Time `gorm:"not null;index" json:"expires"`
	CreatedAt  time.Time `json:"created_at"`
}

func (VerificationToken) TableName() string {
	return "verification_tokens"
}

// Expired reports whether the token's validity ended before now.
func (t *VerificationToken) Expired(now time.Time) bool {
	return t.Expires.Before(now)
}
