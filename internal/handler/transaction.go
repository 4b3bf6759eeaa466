package handler

import (
	"net/http"
	"time"

	"travel-ledger/internal/ledger"
	"travel-ledger/internal/models"
	"travel-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TransactionHandler serves voucher entry, editing and voiding.
type TransactionHandler struct {
	Ledger *ledger.Service
}

func NewTransactionHandler(svc *ledger.Service) *TransactionHandler {
	return &TransactionHandler{Ledger: svc}
}

type createTransactionReq struct {
	CashBoxID       uint   `json:"cash_box_id" binding:"required"`
	Type            string `json:"type" binding:"required,oneof=income expense"`
	Amount          string `json:"amount" binding:"required"`
	Currency        string `json:"currency" binding:"max=8"`
	ExchangeRate    string `json:"exchange_rate"`
	OriginalAmount  string `json:"original_amount"`
	Date            string `json:"date"` // yyyy-mm-dd, defaults to today
	Category        string `json:"category" binding:"required,max=64"`
	Description     string `json:"description" binding:"max=255"`
	PartyName       string `json:"party_name" binding:"max=128"`
	PaymentMethod   string `json:"payment_method" binding:"omitempty,oneof=cash cheque bank_transfer card other"`
	ReferenceNumber string `json:"reference_number" binding:"max=64"`
	Notes           string `json:"notes" binding:"max=512"`
}

func (h *TransactionHandler) Create(c *gin.Context) {
	var req createTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid transaction data.")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid amount.")
		return
	}
	if err := util.ValidateAmount(amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if err := util.ValidateCurrency(req.Currency); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Unsupported currency.")
		return
	}

	var date time.Time
	if req.Date != "" {
		date, err = util.ValidateDate(req.Date)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	method := models.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = models.PaymentCash
	}

	txn := models.CashTransaction{
		CashBoxID:       req.CashBoxID,
		Type:            models.TransactionType(req.Type),
		Amount:          amount,
		Currency:        req.Currency,
		TransactionDate: date,
		Category:        req.Category,
		Description:     req.Description,
		PartyName:       req.PartyName,
		PaymentMethod:   method,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
	}
	if req.ExchangeRate != "" {
		rate, err := decimal.NewFromString(req.ExchangeRate)
		if err != nil || !rate.IsPositive() {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid exchange rate.")
			return
		}
		txn.ExchangeRate = &rate
	}
	if req.OriginalAmount != "" {
		orig, err := decimal.NewFromString(req.OriginalAmount)
		if err != nil || !orig.IsPositive() {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid original amount.")
			return
		}
		txn.OriginalAmount = &orig
	}

	if err := h.Ledger.AddTransaction(c.Request.Context(), &txn); err != nil {
		util.FailWith(c, err)
		return
	}
	util.Success(c, util.Response{"transaction": txn})
}

func (h *TransactionHandler) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid transaction id.")
		return
	}
	txn, err := h.Ledger.GetTransaction(c.Request.Context(), id)
	if err != nil {
		util.FailWith(c, err)
		return
	}
	util.Success(c, util.Response{"transaction": txn})
}

func (h *TransactionHandler) List(c *gin.Context) {
	boxID, err := parseID(c.Query("cash_box_id"))
	if err != nil || boxID == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "cash_box_id is required.")
		return
	}
	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := util.ValidateDate(s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := util.ValidateDate(s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		to = &t
	}
	txns, err := h.Ledger.ListTransactions(c.Request.Context(), boxID, from, to)
	if err != nil {
		util.FailWith(c, err)
		return
	}
	util.Success(c, util.Response{"transactions": txns})
}

type updateTransactionReq struct {
	Amount          string `json:"amount" binding:"required"`
	Date            string `json:"date"`
	Category        string `json:"category" binding:"required,max=64"`
	Description     string `json:"description" binding:"max=255"`
	PartyName       string `json:"party_name" binding:"max=128"`
	PaymentMethod   string `json:"payment_method" binding:"omitempty,oneof=cash cheque bank_transfer card other"`
	ReferenceNumber string `json:"reference_number" binding:"max=64"`
	Notes           string `json:"notes" binding:"max=512"`
}

func (h *TransactionHandler) Update(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid transaction id.")
		return
	}
	var req updateTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid transaction data.")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid amount.")
		return
	}
	if err := util.ValidateAmount(amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	upd := ledger.TransactionUpdate{
		Amount:          amount,
		Category:        req.Category,
		Description:     req.Description,
		PartyName:       req.PartyName,
		PaymentMethod:   models.PaymentMethod(req.PaymentMethod),
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
	}
	if req.Date != "" {
		date, err := util.ValidateDate(req.Date)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		upd.TransactionDate = date
	}
	if upd.PaymentMethod == "" {
		upd.PaymentMethod = models.PaymentCash
	}

	if err := h.Ledger.UpdateTransaction(c.Request.Context(), id, upd); err != nil {
		util.FailWith(c, err)
		return
	}
	util.Success(c, util.Response{"updated": true})
}

// Void soft-deletes a voucher; the row stays for the audit trail.
func (h *TransactionHandler) Void(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid transaction id.")
		return
	}
	if err := h.Ledger.VoidTransaction(c.Request.Context(), id); err != nil {
		util.FailWith(c, err)
		return
	}
	util.Success(c, util.Response{"voided": true})
}
