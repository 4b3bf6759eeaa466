package models

import "time"

// AuditAction is what the actor did.
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionLogin  AuditAction = "login"
	AuditActionLogout AuditAction = "logout"
)

// AuditLog is one append-only audit record: who changed what, when, and
// with which before/after values. Rows are written by the audit plugin as
// part of the same transaction as the business change and are never
// mutated or deleted by the application.
type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// who (denormalized so the record survives user changes)
	UserID       uint   `gorm:"index;not null" json:"user_id"`
	Username     string `gorm:"size:64" json:"username"`
	UserFullName string `gorm:"size:128" json:"user_full_name"`

	// what
	Action     AuditAction `gorm:"size:16;index;not null" json:"action"`
	EntityType string      `gorm:"size:64;index" json:"entity_type"`
	EntityID   *uint       `gorm:"index" json:"entity_id,omitempty"`
	EntityName string      `gorm:"size:128" json:"entity_name"`

	Description string `gorm:"size:255" json:"description"`
	OldValues   string `gorm:"type:text" json:"old_values,omitempty"` // JSON, absent for creates
	NewValues   string `gorm:"type:text" json:"new_values,omitempty"` // JSON, absent for deletes

	// when / where
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	IP          string    `gorm:"size:64" json:"ip,omitempty"`
	MachineName string    `gorm:"size:128" json:"machine_name,omitempty"`
}
