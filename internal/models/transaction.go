package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a cash transaction.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// PaymentMethod is how the money moved.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCheque       PaymentMethod = "cheque"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCard         PaymentMethod = "card"
	PaymentOther        PaymentMethod = "other"
)

// CashTransaction is one link of a cash box's ledger chain.
// For the chronologically ordered non-deleted transactions of one box:
//
//	BalanceAfter[i]    = BalanceBefore[i] + Amount[i]   (income)
//	BalanceAfter[i]    = BalanceBefore[i] - Amount[i]   (expense)
//	BalanceBefore[i+1] = BalanceAfter[i]
type CashTransaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	VoucherNumber string          `gorm:"size:32;index;not null" json:"voucher_number"`
	Type          TransactionType `gorm:"size:16;not null" json:"type"`
	CashBoxID     uint            `gorm:"index;not null" json:"cash_box_id"`
	CashBox       *CashBox        `gorm:"foreignKey:CashBoxID" json:"-"`

	// Amount is always in the cash box currency. When the voucher was paid
	// in a foreign currency the original figures are stored untouched;
	// conversion happened before this layer.
	Amount         decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"amount"`
	Currency       string           `gorm:"size:8;not null;default:EGP" json:"currency"`
	ExchangeRate   *decimal.Decimal `gorm:"type:decimal(18,6)" json:"exchange_rate,omitempty"`
	OriginalAmount *decimal.Decimal `gorm:"type:decimal(18,2)" json:"original_amount,omitempty"`

	TransactionDate time.Time `gorm:"index;not null" json:"transaction_date"`
	Month           int       `gorm:"index;not null" json:"month"`
	Year            int       `gorm:"index;not null" json:"year"`

	Category        string        `gorm:"size:64;not null" json:"category"`
	Description     string        `gorm:"size:255" json:"description"`
	PartyName       string        `gorm:"size:128" json:"party_name,omitempty"`
	PaymentMethod   PaymentMethod `gorm:"size:16;not null;default:cash" json:"payment_method"`
	ReferenceNumber string        `gorm:"size:64" json:"reference_number,omitempty"`
	Notes           string        `gorm:"size:512" json:"notes,omitempty"`

	BalanceBefore decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"balance_after"`

	IsDeleted bool `gorm:"index;not null;default:false" json:"is_deleted"`

	// optimistic lock token
	Version int64 `gorm:"not null;default:1" json:"version"`

	CreatedBy uint       `json:"created_by"`
	UpdatedBy *uint      `json:"updated_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// SignedAmount is the amount with the ledger sign applied: positive for
// income, negative for expense.
func (t *CashTransaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}
