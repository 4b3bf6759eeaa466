package audit

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"travel-ledger/internal/actor"
	"travel-ledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Use(New(NewRegistry())); err != nil {
		t.Fatalf("install plugin: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.CashBox{},
		&models.CashTransaction{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func actorCtx() context.Context {
	return actor.WithActor(context.Background(), &actor.Actor{
		UserID:   3,
		Username: "sara",
		FullName: "Sara Hassan",
		IP:       "192.168.1.20",
	})
}

func testBox() *models.CashBox {
	return &models.CashBox{
		Code:           "CB001",
		Name:           "Main cash box",
		Currency:       "EGP",
		OpeningBalance: decimal.NewFromInt(100),
		CurrentBalance: decimal.NewFromInt(100),
		IsActive:       true,
		Version:        1,
	}
}

func loadLogs(t *testing.T, db *gorm.DB) []models.AuditLog {
	t.Helper()
	var logs []models.AuditLog
	if err := db.Order("id").Find(&logs).Error; err != nil {
		t.Fatalf("load audit logs: %v", err)
	}
	return logs
}

func TestPlugin_CreateProducesRecord(t *testing.T) {
	db := openTestDB(t)
	box := testBox()

	if err := db.WithContext(actorCtx()).Create(box).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	logs := loadLogs(t, db)
	if len(logs) != 1 {
		t.Fatalf("len(logs) = %d, want 1", len(logs))
	}
	l := logs[0]
	if l.Action != models.AuditActionCreate || l.EntityType != "CashBox" {
		t.Errorf("record = %s %s, want create CashBox", l.Action, l.EntityType)
	}
	if l.EntityID == nil || *l.EntityID != box.ID {
		t.Errorf("EntityID = %v, want %d", l.EntityID, box.ID)
	}
	if l.EntityName != "Main cash box" {
		t.Errorf("EntityName = %q, want the box name", l.EntityName)
	}
	if l.Description != "created cash box Main cash box" {
		t.Errorf("Description = %q", l.Description)
	}
	if l.UserID != 3 || l.Username != "sara" || l.UserFullName != "Sara Hassan" {
		t.Errorf("actor = %d %q %q", l.UserID, l.Username, l.UserFullName)
	}
	if l.OldValues != "" {
		t.Errorf("OldValues = %q, want empty for create", l.OldValues)
	}
	var newValues map[string]any
	if err := json.Unmarshal([]byte(l.NewValues), &newValues); err != nil {
		t.Fatalf("NewValues is not JSON: %v", err)
	}
	if newValues["name"] != "Main cash box" {
		t.Errorf("NewValues[name] = %v", newValues["name"])
	}
}

func TestPlugin_UpdateCapturesOldAndNew(t *testing.T) {
	db := openTestDB(t)
	box := testBox()
	ctx := actorCtx()
	if err := db.WithContext(ctx).Create(box).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	err := db.WithContext(ctx).Model(box).Updates(map[string]any{"name": "Front desk"}).Error
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	logs := loadLogs(t, db)
	if len(logs) != 2 {
		t.Fatalf("len(logs) = %d, want 2", len(logs))
	}
	l := logs[1]
	if l.Action != models.AuditActionUpdate {
		t.Fatalf("Action = %s, want update", l.Action)
	}
	var old, current map[string]any
	if err := json.Unmarshal([]byte(l.OldValues), &old); err != nil {
		t.Fatalf("OldValues is not JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(l.NewValues), &current); err != nil {
		t.Fatalf("NewValues is not JSON: %v", err)
	}
	if old["name"] != "Main cash box" {
		t.Errorf("OldValues[name] = %v, want the pre-update name", old["name"])
	}
	if current["name"] != "Front desk" {
		t.Errorf("NewValues[name] = %v, want the new name", current["name"])
	}
}

func TestPlugin_DeleteCapturesOldValues(t *testing.T) {
	db := openTestDB(t)
	box := testBox()
	ctx := actorCtx()
	if err := db.WithContext(ctx).Create(box).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := db.WithContext(ctx).Delete(box).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}

	logs := loadLogs(t, db)
	if len(logs) != 2 {
		t.Fatalf("len(logs) = %d, want 2", len(logs))
	}
	l := logs[1]
	if l.Action != models.AuditActionDelete {
		t.Fatalf("Action = %s, want delete", l.Action)
	}
	if l.NewValues != "" {
		t.Errorf("NewValues = %q, want empty for delete", l.NewValues)
	}
	var old map[string]any
	if err := json.Unmarshal([]byte(l.OldValues), &old); err != nil {
		t.Fatalf("OldValues is not JSON: %v", err)
	}
	if old["code"] != "CB001" {
		t.Errorf("OldValues[code] = %v", old["code"])
	}
	if l.EntityName != "Main cash box" {
		t.Errorf("EntityName = %q, want resolved from old values", l.EntityName)
	}
}

func TestPlugin_NoActorNoRecord(t *testing.T) {
	db := openTestDB(t)
	box := testBox()

	if err := db.Create(box).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Model(box).Updates(map[string]any{"name": "renamed"}).Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := db.Delete(box).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}

	if logs := loadLogs(t, db); len(logs) != 0 {
		t.Errorf("len(logs) = %d, want 0 without an actor", len(logs))
	}
}

func TestPlugin_RollbackDiscardsRecords(t *testing.T) {
	db := openTestDB(t)
	ctx := actorCtx()

	_ = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(testBox()).Error; err != nil {
			return err
		}
		return context.Canceled // force rollback
	})

	if logs := loadLogs(t, db); len(logs) != 0 {
		t.Errorf("len(logs) = %d, want 0 after rollback", len(logs))
	}
}

func TestPlugin_StringPrimaryKeyEntity(t *testing.T) {
	db := openTestDB(t)
	ctx := actorCtx()

	user := &models.User{Username: "sara", PasswordHash: "x", FullName: "Sara Hassan", IsActive: true}
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	session := &models.Session{
		ID:        "4f9d2c1a-aaaa-bbbb-cccc-000000000001",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := db.WithContext(ctx).Create(session).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}

	logs := loadLogs(t, db)
	var found *models.AuditLog
	for i := range logs {
		if logs[i].EntityType == "Session" {
			found = &logs[i]
		}
	}
	if found == nil {
		t.Fatal("no Session audit record")
	}
	if found.EntityID != nil {
		t.Errorf("EntityID = %v, want nil for a string key", found.EntityID)
	}
	if found.EntityName != session.ID {
		t.Errorf("EntityName = %q, want the session id", found.EntityName)
	}
}

func TestPlugin_LongStringsTruncated(t *testing.T) {
	db := openTestDB(t)
	box := testBox()
	box.Notes = strings.Repeat("x", 600)

	if err := db.WithContext(actorCtx()).Create(box).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	logs := loadLogs(t, db)
	if len(logs) != 1 {
		t.Fatalf("len(logs) = %d, want 1", len(logs))
	}
	var newValues map[string]any
	if err := json.Unmarshal([]byte(logs[0].NewValues), &newValues); err != nil {
		t.Fatalf("NewValues is not JSON: %v", err)
	}
	notes, _ := newValues["notes"].(string)
	if len(notes) != maxStringLen+3 {
		t.Errorf("len(notes) = %d, want %d", len(notes), maxStringLen+3)
	}
	if !strings.HasSuffix(notes, "...") {
		t.Error("truncated value must end with ellipsis")
	}
}

func TestRecordLogin_WritesAuthRecord(t *testing.T) {
	db := openTestDB(t)
	a := &actor.Actor{UserID: 3, Username: "sara", FullName: "Sara Hassan", IP: "10.0.0.9"}

	if err := RecordLogin(context.Background(), db, a); err != nil {
		t.Fatalf("RecordLogin: %v", err)
	}
	if err := RecordLogout(context.Background(), db, a); err != nil {
		t.Fatalf("RecordLogout: %v", err)
	}

	logs := loadLogs(t, db)
	if len(logs) != 2 {
		t.Fatalf("len(logs) = %d, want 2", len(logs))
	}
	if logs[0].Action != models.AuditActionLogin || logs[1].Action != models.AuditActionLogout {
		t.Errorf("actions = %s, %s, want login, logout", logs[0].Action, logs[1].Action)
	}
	if logs[0].UserID != 3 || logs[0].IP != "10.0.0.9" {
		t.Errorf("login record actor = %d %q", logs[0].UserID, logs[0].IP)
	}
}

func TestPlugin_CreatedRowVanishedReportsCleanly(t *testing.T) {
	db := openTestDB(t)

	// make the freshly inserted row disappear before the audit hook reads
	// it back, like a conflicting same-transaction delete would
	err := db.Callback().Create().Before("audit:after_create").Register("test:vanish_row", func(tx *gorm.DB) {
		if tx.Error != nil || tx.Statement.Table != "cash_boxes" {
			return
		}
		pk, ok := primaryKey(tx)
		if !ok {
			return
		}
		tx.Session(&gorm.Session{NewDB: true}).
			Exec("DELETE FROM cash_boxes WHERE id = ?", pk)
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	defer db.Callback().Create().Remove("test:vanish_row")

	createErr := db.WithContext(actorCtx()).Create(testBox()).Error
	if createErr == nil {
		t.Fatal("create error = nil, want the audit failure to abort it")
	}
	if !strings.Contains(createErr.Error(), "not found") {
		t.Errorf("error = %q, want a missing-row message", createErr)
	}
	if strings.Contains(createErr.Error(), "%!w") {
		t.Errorf("error = %q, malformed wrap verb", createErr)
	}

	if logs := loadLogs(t, db); len(logs) != 0 {
		t.Errorf("len(logs) = %d, want 0", len(logs))
	}
}
