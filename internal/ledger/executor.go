package ledger

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// IsolationLevel is the caller-declared isolation of a unit of work.
// Callers declare intent explicitly; there is no implicit default chosen
// on their behalf.
type IsolationLevel int

const (
	// ReadCommitted prevents dirty reads. For ordinary reads and writes.
	ReadCommitted IsolationLevel = iota
	// Serializable is required for any operation that mutates a cash
	// box's balance chain: two concurrent writers must not compute
	// against the same starting balance.
	Serializable
	// Snapshot gives long-running reports a consistent point-in-time
	// view without blocking writers.
	Snapshot
)

func (l IsolationLevel) String() string {
	switch l {
	case Serializable:
		return "serializable"
	case Snapshot:
		return "snapshot"
	default:
		return "read committed"
	}
}

// txOptions maps the level onto what the dialect actually supports.
// PostgreSQL implements snapshot isolation as REPEATABLE READ. SQLite
// transactions are always serializable, and its driver rejects anything
// else, so every level collapses to the default there.
func txOptions(dialect string, level IsolationLevel) *sql.TxOptions {
	if dialect == "sqlite" {
		return &sql.TxOptions{}
	}
	switch level {
	case Serializable:
		return &sql.TxOptions{Isolation: sql.LevelSerializable}
	case Snapshot:
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead}
	default:
		return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}
}

// RunInTransaction opens a transaction at the requested isolation level,
// runs fn, commits on success and rolls back and re-raises on any error.
// The whole begin/operate/commit sequence is one retryable unit: a
// conflict restarts the transaction from scratch, it never resumes a
// half-committed one. fn must therefore be safe to re-invoke in full.
func RunInTransaction[T any](ctx context.Context, db *gorm.DB, level IsolationLevel, fn func(tx *gorm.DB) (T, error)) (T, error) {
	opts := txOptions(db.Dialector.Name(), level)
	return ExecuteWithRetry(ctx, func() (T, error) {
		var out T
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			v, err := fn(tx)
			if err != nil {
				return err
			}
			out = v
			return nil
		}, opts)
		if err != nil {
			return out, classifyTxError(err)
		}
		return out, nil
	})
}

// classifyTxError folds backend serialization failures into the conflict
// kind so the coordinator retries them like any optimistic-lock collision.
// PostgreSQL reports them as SQLSTATE 40001 (serialization_failure) or
// 40P01 (deadlock_detected) at commit time.
func classifyTxError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return &ConcurrencyError{Kind: KindConflict}
		}
	}
	return err
}
