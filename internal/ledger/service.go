package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"travel-ledger/internal/actor"
	"travel-ledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInvalidAmount rejects non-positive transaction amounts.
var ErrInvalidAmount = errors.New("amount must be greater than zero")

// Service owns every ledger-affecting operation. All balance-chain
// mutations run at Serializable isolation under the retry coordinator;
// CashBox.CurrentBalance is never written outside this service.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CashBoxUpdate carries the editable cash-box fields. Balances are not
// here on purpose: they only move through transactions.
type CashBoxUpdate struct {
	Name     string
	Notes    string
	IsActive bool
}

// TransactionUpdate carries the editable voucher fields. The direction of
// an existing voucher cannot change; void and re-enter instead.
type TransactionUpdate struct {
	TransactionDate time.Time
	Category        string
	Description     string
	Amount          decimal.Decimal
	PaymentMethod   models.PaymentMethod
	PartyName       string
	ReferenceNumber string
	Notes           string
}

// CreateCashBox persists a new cash box with its opening balance as the
// current balance.
func (s *Service) CreateCashBox(ctx context.Context, box *models.CashBox) error {
	_, err := RunInTransaction(ctx, s.db, ReadCommitted, func(tx *gorm.DB) (struct{}, error) {
		box.ID = 0
		box.CurrentBalance = box.OpeningBalance
		box.Version = 1
		box.IsDeleted = false
		box.CreatedAt = time.Now().UTC()
		if a := actor.FromContext(ctx); a != nil {
			box.CreatedBy = a.UserID
		}
		return struct{}{}, tx.Create(box).Error
	})
	return err
}

func (s *Service) GetCashBox(ctx context.Context, id uint) (*models.CashBox, error) {
	var box models.CashBox
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		Take(&box).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCashBoxNotFound
	}
	if err != nil {
		return nil, err
	}
	return &box, nil
}

func (s *Service) ListCashBoxes(ctx context.Context, activeOnly bool) ([]models.CashBox, error) {
	q := s.db.WithContext(ctx).Where("is_deleted = ?", false)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var boxes []models.CashBox
	if err := q.Order("name").Find(&boxes).Error; err != nil {
		return nil, err
	}
	return boxes, nil
}

// UpdateCashBox edits the descriptive fields of a cash box under an
// optimistic version check.
func (s *Service) UpdateCashBox(ctx context.Context, id uint, upd CashBoxUpdate) error {
	_, err := RunInTransaction(ctx, s.db, ReadCommitted, func(tx *gorm.DB) (struct{}, error) {
		var box models.CashBox
		err := tx.Where("id = ? AND is_deleted = ?", id, false).Take(&box).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return struct{}{}, ErrCashBoxNotFound
		}
		if err != nil {
			return struct{}{}, err
		}
		updates := map[string]any{
			"name":       upd.Name,
			"notes":      upd.Notes,
			"is_active":  upd.IsActive,
			"updated_at": time.Now().UTC(),
			"updated_by": actorIDPtr(ctx),
		}
		return struct{}{}, updateVersioned(tx, &box, "CashBox", "cash_boxes", box.ID, box.Version, updates)
	})
	return err
}

// DeleteCashBox removes a cash box together with all of its transactions.
func (s *Service) DeleteCashBox(ctx context.Context, id uint) error {
	_, err := RunInTransaction(ctx, s.db, Serializable, func(tx *gorm.DB) (struct{}, error) {
		var box models.CashBox
		err := tx.Where("id = ? AND is_deleted = ?", id, false).Take(&box).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return struct{}{}, ErrCashBoxNotFound
		}
		if err != nil {
			return struct{}{}, err
		}

		var txns []models.CashTransaction
		if err := tx.Where("cash_box_id = ?", id).Find(&txns).Error; err != nil {
			return struct{}{}, err
		}
		for i := range txns {
			if err := tx.Delete(&txns[i]).Error; err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, deleteVersioned(tx, &box, "CashBox", "cash_boxes", box.ID, box.Version)
	})
	return err
}

// AddTransaction records an income or expense voucher and advances the
// cash box's ledger chain. A voucher dated before existing entries is
// inserted in chronological position and every later link is recomputed.
func (s *Service) AddTransaction(ctx context.Context, txn *models.CashTransaction) error {
	if !txn.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if txn.Type != models.TransactionIncome && txn.Type != models.TransactionExpense {
		return fmt.Errorf("unknown transaction type %q", txn.Type)
	}
	// remembered across attempts: a number issued by a rolled-back attempt
	// may have been taken by the conflicting writer, so it must be reissued
	generated := txn.VoucherNumber == ""
	_, err := RunInTransaction(ctx, s.db, Serializable, func(tx *gorm.DB) (struct{}, error) {
		var box models.CashBox
		err := tx.Where("id = ? AND is_deleted = ?", txn.CashBoxID, false).Take(&box).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return struct{}{}, ErrCashBoxNotFound
		}
		if err != nil {
			return struct{}{}, err
		}

		// reset attempt-local state so a retried closure starts clean
		txn.ID = 0
		txn.Version = 1
		txn.IsDeleted = false

		if txn.TransactionDate.IsZero() {
			txn.TransactionDate = time.Now().UTC()
		}
		txn.Month = int(txn.TransactionDate.Month())
		txn.Year = txn.TransactionDate.Year()
		if txn.Currency == "" {
			txn.Currency = box.Currency
		}
		txn.CreatedAt = time.Now().UTC()
		if a := actor.FromContext(ctx); a != nil {
			txn.CreatedBy = a.UserID
		}
		if generated {
			v, err := nextVoucherNumber(tx, &box)
			if err != nil {
				return struct{}{}, err
			}
			txn.VoucherNumber = v
		}

		// provisional tail append; the forward recompute below corrects
		// the chain when the voucher lands out of chronological order
		txn.BalanceBefore = box.CurrentBalance
		txn.BalanceAfter = box.CurrentBalance.Add(txn.SignedAmount())

		if err := tx.Create(txn).Error; err != nil {
			return struct{}{}, err
		}
		if err := recomputeForward(ctx, tx, &box, txn.TransactionDate); err != nil {
			return struct{}{}, err
		}
		// the recompute may have rewritten this voucher's chain links;
		// return the persisted values, not the provisional tail append
		return struct{}{}, tx.Where("id = ?", txn.ID).Take(txn).Error
	})
	return err
}

func (s *Service) GetTransaction(ctx context.Context, id uint) (*models.CashTransaction, error) {
	var txn models.CashTransaction
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		Take(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// UpdateTransaction edits a voucher and recomputes the chain from the
// earliest point the edit can affect.
func (s *Service) UpdateTransaction(ctx context.Context, id uint, upd TransactionUpdate) error {
	if !upd.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	_, err := RunInTransaction(ctx, s.db, Serializable, func(tx *gorm.DB) (struct{}, error) {
		var existing models.CashTransaction
		err := tx.Where("id = ? AND is_deleted = ?", id, false).Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return struct{}{}, ErrTransactionNotFound
		}
		if err != nil {
			return struct{}{}, err
		}
		var box models.CashBox
		err = tx.Where("id = ? AND is_deleted = ?", existing.CashBoxID, false).Take(&box).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return struct{}{}, ErrCashBoxNotFound
		}
		if err != nil {
			return struct{}{}, err
		}

		date := upd.TransactionDate
		if date.IsZero() {
			date = existing.TransactionDate
		}
		updates := map[string]any{
			"transaction_date": date,
			"month":            int(date.Month()),
			"year":             date.Year(),
			"category":         upd.Category,
			"description":      upd.Description,
			"amount":           upd.Amount,
			"payment_method":   upd.PaymentMethod,
			"party_name":       upd.PartyName,
			"reference_number": upd.ReferenceNumber,
			"notes":            upd.Notes,
			"updated_at":       time.Now().UTC(),
			"updated_by":       actorIDPtr(ctx),
		}
		if err := updateVersioned(tx, &existing, "CashTransaction", "cash_transactions", existing.ID, existing.Version, updates); err != nil {
			return struct{}{}, err
		}

		from := existing.TransactionDate
		if date.Before(from) {
			from = date
		}
		return struct{}{}, recomputeForward(ctx, tx, &box, from)
	})
	return err
}

// VoidTransaction soft-deletes a voucher and recomputes the chain after
// it. The voucher row is kept for the audit trail.
func (s *Service) VoidTransaction(ctx context.Context, id uint) error {
	_, err := RunInTransaction(ctx, s.db, Serializable, func(tx *gorm.DB) (struct{}, error) {
		var txn models.CashTransaction
		err := tx.Where("id = ? AND is_deleted = ?", id, false).Take(&txn).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return struct{}{}, ErrTransactionNotFound
		}
		if err != nil {
			return struct{}{}, err
		}
		var box models.CashBox
		err = tx.Where("id = ? AND is_deleted = ?", txn.CashBoxID, false).Take(&box).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return struct{}{}, ErrCashBoxNotFound
		}
		if err != nil {
			return struct{}{}, err
		}

		updates := map[string]any{
			"is_deleted": true,
			"updated_at": time.Now().UTC(),
			"updated_by": actorIDPtr(ctx),
		}
		if err := updateVersioned(tx, &txn, "CashTransaction", "cash_transactions", txn.ID, txn.Version, updates); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, recomputeForward(ctx, tx, &box, txn.TransactionDate)
	})
	return err
}

func (s *Service) ListTransactions(ctx context.Context, cashBoxID uint, from, to *time.Time) ([]models.CashTransaction, error) {
	q := s.db.WithContext(ctx).
		Where("cash_box_id = ? AND is_deleted = ?", cashBoxID, false)
	if from != nil {
		q = q.Where("transaction_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("transaction_date <= ?", *to)
	}
	var txns []models.CashTransaction
	if err := q.Order("transaction_date, id").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// CurrentBalance returns the cached running balance of a cash box.
func (s *Service) CurrentBalance(ctx context.Context, cashBoxID uint) (decimal.Decimal, error) {
	box, err := s.GetCashBox(ctx, cashBoxID)
	if err != nil {
		return decimal.Zero, err
	}
	return box.CurrentBalance, nil
}

// recomputeForward rebuilds BalanceBefore/BalanceAfter for every
// non-deleted transaction of the box dated at or after from, then sets
// the box's cached balance to the final BalanceAfter. It runs inside the
// caller's Serializable transaction; a link that would go negative aborts
// the whole unit of work.
//
// If persisted values turn out inconsistent with the recomputation, the
// versioned writes below surface a conflict and the retry coordinator
// re-attempts from fresh data; nothing is patched in place.
func recomputeForward(ctx context.Context, tx *gorm.DB, box *models.CashBox, from time.Time) error {
	running := box.OpeningBalance
	var prev models.CashTransaction
	err := tx.Where("cash_box_id = ? AND is_deleted = ? AND transaction_date < ?", box.ID, false, from).
		Order("transaction_date DESC, id DESC").
		First(&prev).Error
	switch {
	case err == nil:
		running = prev.BalanceAfter
	case errors.Is(err, gorm.ErrRecordNotFound):
		// chain starts at the opening balance
	default:
		return err
	}

	var chain []models.CashTransaction
	if err := tx.Where("cash_box_id = ? AND is_deleted = ? AND transaction_date >= ?", box.ID, false, from).
		Order("transaction_date, id").
		Find(&chain).Error; err != nil {
		return err
	}

	for i := range chain {
		link := &chain[i]
		before := running
		after := before.Add(link.SignedAmount())
		if after.IsNegative() {
			return &InsufficientBalanceError{
				CashBoxID: box.ID,
				Current:   before,
				Required:  link.Amount,
			}
		}
		if !link.BalanceBefore.Equal(before) || !link.BalanceAfter.Equal(after) {
			updates := map[string]any{
				"balance_before": before,
				"balance_after":  after,
			}
			if err := updateVersioned(tx, link, "CashTransaction", "cash_transactions", link.ID, link.Version, updates); err != nil {
				return err
			}
		}
		running = after
	}

	return updateVersioned(tx, box, "CashBox", "cash_boxes", box.ID, box.Version, map[string]any{
		"current_balance": running,
		"updated_at":      time.Now().UTC(),
		"updated_by":      actorIDPtr(ctx),
	})
}

// nextVoucherNumber issues the next sequential voucher for a box, e.g.
// CB001-000042. Voided vouchers keep their numbers; numbers are never
// reused.
func nextVoucherNumber(tx *gorm.DB, box *models.CashBox) (string, error) {
	var last models.CashTransaction
	err := tx.Where("cash_box_id = ?", box.ID).
		Order("id DESC").
		First(&last).Error
	seq := 1
	switch {
	case err == nil:
		if i := strings.LastIndex(last.VoucherNumber, "-"); i >= 0 {
			if n, perr := strconv.Atoi(last.VoucherNumber[i+1:]); perr == nil {
				seq = n + 1
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return "", err
	}
	return fmt.Sprintf("%s-%06d", box.Code, seq), nil
}

func actorIDPtr(ctx context.Context) *uint {
	if a := actor.FromContext(ctx); a != nil {
		id := a.UserID
		return &id
	}
	return nil
}
