// Package audit derives an immutable audit record for every entity
// changed by a commit. It hooks into gorm's create/update/delete
// callbacks, so the audit rows join the same transaction as the business
// change and commit or roll back with it.
package audit

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"travel-ledger/internal/actor"
	"travel-ledger/internal/models"

	"gorm.io/gorm"
)

const (
	oldValuesKey = "audit:old_values"
)

// Plugin is the gorm plugin implementing the audit trail generator.
type Plugin struct {
	registry *Registry
	machine  string
}

// New builds the plugin around a display-name registry.
func New(registry *Registry) *Plugin {
	host, _ := os.Hostname()
	return &Plugin{registry: registry, machine: host}
}

func (p *Plugin) Name() string { return "audit" }

// Initialize registers the audit callbacks. Before-hooks snapshot the
// row's persisted values; after-hooks build and append the audit record.
func (p *Plugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Create().After("gorm:create").Register("audit:after_create", p.afterCreate); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("audit:before_update", p.snapshotOld); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("audit:after_update", p.afterUpdate); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("audit:before_delete", p.snapshotOld); err != nil {
		return err
	}
	return db.Callback().Delete().After("gorm:delete").Register("audit:after_delete", p.afterDelete)
}

// auditable reports whether this statement should produce an audit record
// and returns the actor and primary key when it should. Audit rows
// themselves are excluded to avoid self-recursion, and commits without an
// authenticated actor are deliberately skipped in full.
func (p *Plugin) auditable(db *gorm.DB) (*actor.Actor, any, bool) {
	stmt := db.Statement
	if db.Error != nil || stmt.Schema == nil || stmt.Schema.Name == "AuditLog" {
		return nil, nil, false
	}
	a := actor.FromContext(stmt.Context)
	if a == nil {
		return nil, nil, false
	}
	pk, ok := primaryKey(db)
	if !ok {
		return nil, nil, false
	}
	return a, pk, true
}

func (p *Plugin) snapshotOld(db *gorm.DB) {
	_, pk, ok := p.auditable(db)
	if !ok {
		return
	}
	old, err := p.fetchRow(db, pk)
	if err != nil {
		db.AddError(fmt.Errorf("audit: snapshot %s %v: %w", db.Statement.Schema.Name, pk, err))
		return
	}
	db.InstanceSet(oldValuesKey, old)
}

func (p *Plugin) afterCreate(db *gorm.DB) {
	a, pk, ok := p.auditable(db)
	if !ok || db.RowsAffected == 0 {
		return
	}
	current, err := p.fetchRow(db, pk)
	if err != nil {
		db.AddError(fmt.Errorf("audit: read created %s %v: %w", db.Statement.Schema.Name, pk, err))
		return
	}
	if current == nil {
		db.AddError(fmt.Errorf("audit: created %s %v not found", db.Statement.Schema.Name, pk))
		return
	}
	p.append(db, a, pk, models.AuditActionCreate, nil, current)
}

func (p *Plugin) afterUpdate(db *gorm.DB) {
	a, pk, ok := p.auditable(db)
	if !ok || db.RowsAffected == 0 {
		return
	}
	var old map[string]any
	if v, ok := db.InstanceGet(oldValuesKey); ok {
		old, _ = v.(map[string]any)
	}
	current, err := p.fetchRow(db, pk)
	if err != nil {
		db.AddError(fmt.Errorf("audit: read updated %s %v: %w", db.Statement.Schema.Name, pk, err))
		return
	}
	p.append(db, a, pk, models.AuditActionUpdate, old, current)
}

func (p *Plugin) afterDelete(db *gorm.DB) {
	a, pk, ok := p.auditable(db)
	if !ok || db.RowsAffected == 0 {
		return
	}
	var old map[string]any
	if v, ok := db.InstanceGet(oldValuesKey); ok {
		old, _ = v.(map[string]any)
	}
	p.append(db, a, pk, models.AuditActionDelete, old, nil)
}

// append builds the audit record and adds it to the same unit of work.
// Any failure here aborts the whole commit; audit coverage is never
// silently lost.
func (p *Plugin) append(db *gorm.DB, a *actor.Actor, pk any, action models.AuditAction, old, current map[string]any) {
	entityType := db.Statement.Schema.Name

	oldJSON, err := marshalValues(old)
	if err != nil {
		db.AddError(fmt.Errorf("audit: serialize old values of %s %v: %w", entityType, pk, err))
		return
	}
	newJSON, err := marshalValues(current)
	if err != nil {
		db.AddError(fmt.Errorf("audit: serialize new values of %s %v: %w", entityType, pk, err))
		return
	}

	named := current
	if named == nil {
		named = old
	}
	name := p.registry.DisplayName(entityType, named, pk)

	var verb string
	switch action {
	case models.AuditActionCreate:
		verb = "created"
	case models.AuditActionUpdate:
		verb = "updated"
	default:
		verb = "deleted"
	}

	entry := models.AuditLog{
		UserID:       a.UserID,
		Username:     a.Username,
		UserFullName: a.FullName,
		Action:       action,
		EntityType:   entityType,
		EntityID:     numericID(pk),
		EntityName:   name,
		Description:  fmt.Sprintf("%s %s %s", verb, p.registry.Label(entityType), name),
		OldValues:    oldJSON,
		NewValues:    newJSON,
		CreatedAt:    time.Now().UTC(),
		IP:           a.IP,
		MachineName:  p.machine,
	}
	if entry.MachineName == "" {
		entry.MachineName = a.Machine
	}
	if err := db.Session(&gorm.Session{NewDB: true}).Create(&entry).Error; err != nil {
		db.AddError(fmt.Errorf("audit: append record for %s %v: %w", entityType, pk, err))
	}
}

// fetchRow reads the row's persisted column values inside the current
// transaction. A missing row returns nil without error.
func (p *Plugin) fetchRow(db *gorm.DB, pk any) (map[string]any, error) {
	row := map[string]any{}
	err := db.Session(&gorm.Session{NewDB: true}).
		Table(db.Statement.Table).
		Where("id = ?", pk).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// primaryKey extracts the statement's primary key value. Statements
// without a resolvable key (batch writes on a bare model) are not
// auditable.
func primaryKey(db *gorm.DB) (any, bool) {
	stmt := db.Statement
	field := stmt.Schema.PrioritizedPrimaryField
	if field == nil {
		return nil, false
	}
	rv := stmt.ReflectValue
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	v, zero := field.ValueOf(stmt.Context, rv)
	if zero {
		return nil, false
	}
	return v, true
}

// numericID maps integer primary keys onto the audit row's EntityID;
// string keys (sessions) are carried in EntityName only.
func numericID(pk any) *uint {
	var id uint
	switch v := pk.(type) {
	case uint:
		id = v
	case uint64:
		id = uint(v)
	case int:
		id = uint(v)
	case int64:
		id = uint(v)
	default:
		return nil
	}
	return &id
}
