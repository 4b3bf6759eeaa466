package models

import "time"

// Session stores user login sessions (for logout, invalidation, audit).
// Sessions live in the relational store so login/logout flow through the
// same transactional audit pipeline as business data.
type Session struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"` // UUID
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	MachineName string    `gorm:"size:128" json:"machine_name,omitempty"`
	ExpiresAt   time.Time `gorm:"index;not null" json:"expires_at"`
	Revoked     bool      `gorm:"index;not null" json:"revoked"`
	CreatedAt   time.Time `json:"created_at"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
