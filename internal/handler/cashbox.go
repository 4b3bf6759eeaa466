package handler

import (
	"net/http"
	"strconv"

	"travel-ledger/internal/ledger"
	"travel-ledger/internal/models"
	"travel-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CashBoxHandler serves cash box CRUD on top of the ledger service.
type CashBoxHandler struct {
	Ledger *ledger.Service
}

func NewCashBoxHandler(svc *ledger.Service) *CashBoxHandler {
	return &CashBoxHandler{Ledger: svc}
}

type createCashBoxReq struct {
	Code           string `json:"code" binding:"required,max=16"`
	Name           string `json:"name" binding:"required,max=128"`
	Type           string `json:"type" binding:"omitempty,oneof=cashbox bank"`
	AccountNumber  string `json:"account_number" binding:"max=64"`
	IBAN           string `json:"iban" binding:"max=34"`
	BankName       string `json:"bank_name" binding:"max=128"`
	Currency       string `json:"currency" binding:"max=8"`
	OpeningBalance string `json:"opening_balance"`
	Notes          string `json:"notes" binding:"max=512"`
}

func (h *CashBoxHandler) Create(c *gin.Context) {
	var req createCashBoxReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid cash box data.")
		return
	}
	if err := util.ValidateCurrency(req.Currency); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Unsupported currency.")
		return
	}

	opening := decimal.Zero
	if req.OpeningBalance != "" {
		var err error
		opening, err = decimal.NewFromString(req.OpeningBalance)
		if err != nil || opening.IsNegative() {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid opening balance.")
			return
		}
	}

	boxType := models.CashBoxType(req.Type)
	if boxType == "" {
		boxType = models.CashBoxTypeCash
	}
	currency := req.Currency
	if currency == "" {
		currency = "EGP"
	}

	box := models.CashBox{
		Code:           req.Code,
		Name:           req.Name,
		Type:           boxType,
		AccountNumber:  req.AccountNumber,
		IBAN:           req.IBAN,
		BankName:       req.BankName,
		Currency:       currency,
		OpeningBalance: opening,
		IsActive:       true,
		Notes:          req.Notes,
	}
	if err := h.Ledger.CreateCashBox(c.Request.Context(), &box); err != nil {
		util.FailWith(c, err)
		return
	}
	util.Success(c, util.Response{"cash_box": box})
}

func (h *CashBoxHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	boxes, err := h.Ledger.ListCashBoxes(c.Request.Context(), activeOnly)
	if err != nil {
		util.FailWith(c, err)
		return
	}
	util.Success(c, util.Response{"cash_boxes": boxes})
}

func (h *CashBoxHandler) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid cash box id.")
		return
	}
	box, err := h.Ledger.GetCashBox(c.Request.Context(), id)
	if err != nil {
		util.FailWith(c, err)
		return
	}
	util.Success(c, util.Response{"cash_box": box})
}

type updateCashBoxReq struct {
	Name     string `json:"name" binding:"required,max=128"`
	Notes    string `json:"notes" binding:"max=512"`
	IsActive bool   `json:"is_active"`
}

func (h *CashBoxHandler) Update(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid cash box id.")
		return
	}
	var req updateCashBoxReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid cash box data.")
		return
	}
	upd := ledger.CashBoxUpdate{Name: req.Name, Notes: req.Notes, IsActive: req.IsActive}
	if err := h.Ledger.UpdateCashBox(c.Request.Context(), id, upd); err != nil {
		util.FailWith(c, err)
		return
	}
	util.Success(c, util.Response{"updated": true})
}

func (h *CashBoxHandler) Delete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid cash box id.")
		return
	}
	if err := h.Ledger.DeleteCashBox(c.Request.Context(), id); err != nil {
		util.FailWith(c, err)
		return
	}
	util.Success(c, util.Response{"deleted": true})
}

func (h *CashBoxHandler) Balance(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid cash box id.")
		return
	}
	balance, err := h.Ledger.CurrentBalance(c.Request.Context(), id)
	if err != nil {
		util.FailWith(c, err)
		return
	}
	util.Success(c, util.Response{"balance": balance})
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	return uint(id), err
}
