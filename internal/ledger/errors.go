package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrorKind classifies failures for the retry coordinator. Branching is
// done on this explicit enumeration, never on concrete driver error types.
type ErrorKind int

const (
	// KindFatal is everything that must propagate unchanged: constraint
	// violations, business-rule violations, programming errors.
	KindFatal ErrorKind = iota
	// KindConflict is an optimistic-concurrency conflict: a write collided
	// with another writer's already-committed change to the same row.
	KindConflict
	// KindDeleted means the conflicting row no longer exists.
	KindDeleted
)

// Terminal, user-actionable errors surfaced after the retry budget is
// exhausted or a concurrent deletion is detected. Handlers map these to
// friendly text; raw detail never reaches end users.
var (
	ErrModifiedByAnotherUser = errors.New("record was modified by another user, reload and retry")
	ErrDeletedByAnotherUser  = errors.New("record was deleted by another user")

	ErrCashBoxNotFound     = errors.New("cash box not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// ConcurrencyError reports a versioned write that hit zero rows.
type ConcurrencyError struct {
	Kind       ErrorKind
	EntityType string
	EntityID   uint
	// Latest holds the freshest persisted values of the conflicting row,
	// fetched at detection time, for use as the next attempt's baseline.
	// Nil when Kind is KindDeleted.
	Latest map[string]any
}

func (e *ConcurrencyError) Error() string {
	if e.Kind == KindDeleted {
		return fmt.Sprintf("%s %d was deleted concurrently", e.EntityType, e.EntityID)
	}
	return fmt.Sprintf("%s %d was modified concurrently", e.EntityType, e.EntityID)
}

// KindOf classifies an error for retry decisions.
func KindOf(err error) ErrorKind {
	var ce *ConcurrencyError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindFatal
}

// InsufficientBalanceError rejects an operation that would drive a cash
// box's chain below zero.
type InsufficientBalanceError struct {
	CashBoxID uint
	Current   decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance on cash box %d: current %s, required %s",
		e.CashBoxID, e.Current.StringFixed(2), e.Required.StringFixed(2))
}
