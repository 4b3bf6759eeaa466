package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashBoxType distinguishes a physical cash box from a bank account.
type CashBoxType string

const (
	CashBoxTypeCash CashBoxType = "cashbox"
	CashBoxTypeBank CashBoxType = "bank"
)

// CashBox is a cash box or bank account with a running balance.
// CurrentBalance is a denormalized cache: it always equals OpeningBalance
// plus the signed sum of all non-deleted transactions, and is only ever
// written by ledger operations, never by a raw field edit.
type CashBox struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Code          string          `gorm:"size:16;uniqueIndex;not null" json:"code"` // e.g. CB001
	Name          string          `gorm:"size:128;not null" json:"name"`
	Type          CashBoxType     `gorm:"size:16;not null;default:cashbox" json:"type"`
	AccountNumber string          `gorm:"size:64" json:"account_number,omitempty"`
	IBAN          string          `gorm:"size:34" json:"iban,omitempty"`
	BankName      string          `gorm:"size:128" json:"bank_name,omitempty"`
	Currency      string          `gorm:"size:8;not null;default:EGP" json:"currency"`

	OpeningBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"opening_balance"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"current_balance"`

	IsActive  bool   `gorm:"not null;default:true" json:"is_active"`
	IsDeleted bool   `gorm:"index;not null;default:false" json:"is_deleted"`
	Notes     string `gorm:"size:512" json:"notes,omitempty"`

	// optimistic lock token, bumped on every versioned write
	Version int64 `gorm:"not null;default:1" json:"version"`

	CreatedBy uint       `json:"created_by"`
	UpdatedBy *uint      `json:"updated_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	Transactions []CashTransaction `gorm:"foreignKey:CashBoxID" json:"-"`
}
