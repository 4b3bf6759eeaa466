package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"travel-ledger/internal/ledger"
	"travel-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ReportHandler serves the monthly/yearly cash box reports and their
// xlsx export.
type ReportHandler struct {
	Ledger *ledger.Service
}

func NewReportHandler(svc *ledger.Service) *ReportHandler {
	return &ReportHandler{Ledger: svc}
}

func (h *ReportHandler) monthYear(c *gin.Context) (uint, int, int, bool) {
	boxID, err := parseID(c.Query("cash_box_id"))
	if err != nil || boxID == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "cash_box_id is required.")
		return 0, 0, 0, false
	}
	now := time.Now()
	month, _ := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid month or year.")
		return 0, 0, 0, false
	}
	return boxID, month, year, true
}

func (h *ReportHandler) Monthly(c *gin.Context) {
	boxID, month, year, ok := h.monthYear(c)
	if !ok {
		return
	}
	report, err := h.Ledger.MonthlyReport(c.Request.Context(), boxID, month, year)
	if err != nil {
		util.FailWith(c, err)
		return
	}
	util.Success(c, util.Response{"report": report})
}

func (h *ReportHandler) Yearly(c *gin.Context) {
	boxID, err := parseID(c.Query("cash_box_id"))
	if err != nil || boxID == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "cash_box_id is required.")
		return
	}
	year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(time.Now().Year())))
	if year < 2000 || year > 2100 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid year.")
		return
	}
	report, err := h.Ledger.YearlyReport(c.Request.Context(), boxID, year)
	if err != nil {
		util.FailWith(c, err)
		return
	}
	util.Success(c, util.Response{"report": report})
}

// ExportMonthlyXLSX streams the monthly report as an Excel workbook.
func (h *ReportHandler) ExportMonthlyXLSX(c *gin.Context) {
	boxID, month, year, ok := h.monthYear(c)
	if !ok {
		return
	}
	report, err := h.Ledger.MonthlyReport(c.Request.Context(), boxID, month, year)
	if err != nil {
		util.FailWith(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Transactions"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Voucher", "Date", "Type", "Category", "Description",
		"Party", "Amount", "Balance Before", "Balance After"}
	for i, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, name)
	}
	for row, t := range report.Transactions {
		values := []any{
			t.VoucherNumber,
			t.TransactionDate.Format("2006-01-02"),
			string(t.Type),
			t.Category,
			t.Description,
			t.PartyName,
			t.Amount.StringFixed(2),
			t.BalanceBefore.StringFixed(2),
			t.BalanceAfter.StringFixed(2),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	summary := "Summary"
	if _, err := f.NewSheet(summary); err == nil {
		f.SetCellValue(summary, "A1", "Total income")
		f.SetCellValue(summary, "B1", report.TotalIncome.StringFixed(2))
		f.SetCellValue(summary, "A2", "Total expense")
		f.SetCellValue(summary, "B2", report.TotalExpense.StringFixed(2))
		f.SetCellValue(summary, "A3", "Net")
		f.SetCellValue(summary, "B3", report.Net.StringFixed(2))
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"cashbox_%d_%04d-%02d.xlsx\"", boxID, year, month))
	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Export failed.")
	}
}
