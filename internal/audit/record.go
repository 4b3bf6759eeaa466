package audit

import (
	"context"
	"fmt"
	"time"

	"travel-ledger/internal/actor"
	"travel-ledger/internal/models"

	"gorm.io/gorm"
)

// RecordLogin appends a login audit record. Login and logout are not
// entity changes, so the callback hooks never see them; they are still
// part of the trail.
func RecordLogin(ctx context.Context, db *gorm.DB, a *actor.Actor) error {
	return recordAuth(ctx, db, a, models.AuditActionLogin, "logged in")
}

// RecordLogout appends a logout audit record.
func RecordLogout(ctx context.Context, db *gorm.DB, a *actor.Actor) error {
	return recordAuth(ctx, db, a, models.AuditActionLogout, "logged out")
}

func recordAuth(ctx context.Context, db *gorm.DB, a *actor.Actor, action models.AuditAction, verb string) error {
	if a == nil {
		return nil
	}
	entry := models.AuditLog{
		UserID:       a.UserID,
		Username:     a.Username,
		UserFullName: a.FullName,
		Action:       action,
		EntityType:   "User",
		EntityID:     &a.UserID,
		EntityName:   a.Username,
		Description:  fmt.Sprintf("%s %s", a.Username, verb),
		CreatedAt:    time.Now().UTC(),
		IP:           a.IP,
		MachineName:  a.Machine,
	}
	return db.WithContext(ctx).Create(&entry).Error
}
