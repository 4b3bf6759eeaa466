package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsolationLevel_String(t *testing.T) {
	testCases := map[IsolationLevel]string{
		ReadCommitted: "read committed",
		Serializable:  "serializable",
		Snapshot:      "snapshot",
	}
	for level, want := range testCases {
		if got := level.String(); got != want {
			t.Errorf("String(%d) = %q, want %q", level, got, want)
		}
	}
}

func TestTxOptions_Postgres(t *testing.T) {
	testCases := map[IsolationLevel]sql.IsolationLevel{
		ReadCommitted: sql.LevelReadCommitted,
		Serializable:  sql.LevelSerializable,
		// postgres implements snapshot isolation as repeatable read
		Snapshot: sql.LevelRepeatableRead,
	}
	for level, want := range testCases {
		opts := txOptions("postgres", level)
		if opts.Isolation != want {
			t.Errorf("txOptions(postgres, %v).Isolation = %v, want %v", level, opts.Isolation, want)
		}
	}
}

func TestTxOptions_SQLiteCollapsesToDefault(t *testing.T) {
	for _, level := range []IsolationLevel{ReadCommitted, Serializable, Snapshot} {
		opts := txOptions("sqlite", level)
		if opts.Isolation != sql.LevelDefault {
			t.Errorf("txOptions(sqlite, %v).Isolation = %v, want default", level, opts.Isolation)
		}
	}
}

func TestClassifyTxError_SerializationFailure(t *testing.T) {
	for _, code := range []string{"40001", "40P01"} {
		err := fmt.Errorf("commit: %w", &pgconn.PgError{Code: code})
		classified := classifyTxError(err)
		if KindOf(classified) != KindConflict {
			t.Errorf("classifyTxError(SQLSTATE %s) kind = %v, want KindConflict", code, KindOf(classified))
		}
	}
}

func TestClassifyTxError_OtherErrorsUntouched(t *testing.T) {
	plain := errors.New("unique constraint violated")
	if got := classifyTxError(plain); got != plain {
		t.Errorf("classifyTxError(plain) = %v, want unchanged", got)
	}
	pgOther := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if KindOf(classifyTxError(pgOther)) != KindFatal {
		t.Error("non-serialization pg error must stay fatal")
	}
}

func TestRunInTransaction_CommitAndRollback(t *testing.T) {
	db := openTestDB(t)

	type row struct {
		ID    uint
		Value string
	}
	if err := db.Table("rows").AutoMigrate(&row{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	_, err := RunInTransaction(context.Background(), db, ReadCommitted, func(tx *gorm.DB) (struct{}, error) {
		return struct{}{}, tx.Table("rows").Create(&row{Value: "kept"}).Error
	})
	if err != nil {
		t.Fatalf("commit case error = %v", err)
	}

	boom := errors.New("business rule failed")
	_, err = RunInTransaction(context.Background(), db, ReadCommitted, func(tx *gorm.DB) (struct{}, error) {
		if err := tx.Table("rows").Create(&row{Value: "discarded"}).Error; err != nil {
			return struct{}{}, err
		}
		return struct{}{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("rollback case error = %v, want the business error", err)
	}

	var count int64
	if err := db.Table("rows").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("rows after rollback = %d, want 1", count)
	}
}
