package ledger

import (
	"errors"

	"gorm.io/gorm"
)

// updateVersioned performs an optimistic-locked update: the row is only
// written when its version column still matches the value the caller read.
// Zero rows affected means another writer got there first; the helper then
// distinguishes "modified" from "deleted" by refetching the row.
//
// model must be the loaded entity (primary key set) so the audit hook can
// resolve it; updates must not contain the version key.
func updateVersioned(tx *gorm.DB, model any, entityType string, table string, id uint, version int64, updates map[string]any) error {
	updates["version"] = version + 1
	res := tx.Model(model).
		Where("version = ?", version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return detectConflict(tx, table, entityType, id)
	}
	return nil
}

// deleteVersioned removes a row under the same optimistic version check
// as updateVersioned.
func deleteVersioned(tx *gorm.DB, model any, entityType string, table string, id uint, version int64) error {
	res := tx.Where("version = ?", version).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return detectConflict(tx, table, entityType, id)
	}
	return nil
}

// detectConflict fetches the latest persisted values of a row that failed
// its version check. A missing row is a terminal deletion; anything else
// is a retryable conflict carrying the fresh values as the new baseline.
func detectConflict(tx *gorm.DB, table, entityType string, id uint) error {
	latest := map[string]any{}
	err := tx.Session(&gorm.Session{NewDB: true}).
		Table(table).
		Where("id = ?", id).
		Take(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &ConcurrencyError{Kind: KindDeleted, EntityType: entityType, EntityID: id}
	}
	if err != nil {
		return err
	}
	return &ConcurrencyError{Kind: KindConflict, EntityType: entityType, EntityID: id, Latest: latest}
}
