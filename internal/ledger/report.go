package ledger

import (
	"context"
	"sort"

	"travel-ledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CategorySummary aggregates one category within a report period.
type CategorySummary struct {
	Category         string          `json:"category"`
	Amount           decimal.Decimal `json:"amount"`
	TransactionCount int             `json:"transaction_count"`
	Percentage       decimal.Decimal `json:"percentage"`
}

// MonthlyReport is the per-cash-box month view.
type MonthlyReport struct {
	CashBoxID         uint                     `json:"cash_box_id"`
	Month             int                      `json:"month"`
	Year              int                      `json:"year"`
	TotalIncome       decimal.Decimal          `json:"total_income"`
	TotalExpense      decimal.Decimal          `json:"total_expense"`
	Net               decimal.Decimal          `json:"net"`
	IncomeCount       int                      `json:"income_count"`
	ExpenseCount      int                      `json:"expense_count"`
	IncomeByCategory  []CategorySummary        `json:"income_by_category"`
	ExpenseByCategory []CategorySummary        `json:"expense_by_category"`
	Transactions      []models.CashTransaction `json:"transactions"`
}

// YearlyReport rolls twelve monthly reports up.
type YearlyReport struct {
	CashBoxID      uint            `json:"cash_box_id"`
	Year           int             `json:"year"`
	TotalIncome    decimal.Decimal `json:"total_income"`
	TotalExpense   decimal.Decimal `json:"total_expense"`
	Net            decimal.Decimal `json:"net"`
	MonthlyReports []MonthlyReport `json:"monthly_reports"`
}

// MonthlyReport builds the month view under Snapshot isolation: the
// report sees one consistent point-in-time state without blocking the
// writers that keep appending to the chain.
func (s *Service) MonthlyReport(ctx context.Context, cashBoxID uint, month, year int) (*MonthlyReport, error) {
	return RunInTransaction(ctx, s.db, Snapshot, func(tx *gorm.DB) (*MonthlyReport, error) {
		return monthlyReport(tx, cashBoxID, month, year)
	})
}

// YearlyReport builds all twelve months inside one Snapshot transaction,
// so a voucher moved across a month boundary by a concurrent edit is
// counted exactly once.
func (s *Service) YearlyReport(ctx context.Context, cashBoxID uint, year int) (*YearlyReport, error) {
	return RunInTransaction(ctx, s.db, Snapshot, func(tx *gorm.DB) (*YearlyReport, error) {
		yearly := &YearlyReport{CashBoxID: cashBoxID, Year: year}
		for month := 1; month <= 12; month++ {
			m, err := monthlyReport(tx, cashBoxID, month, year)
			if err != nil {
				return nil, err
			}
			yearly.MonthlyReports = append(yearly.MonthlyReports, *m)
			yearly.TotalIncome = yearly.TotalIncome.Add(m.TotalIncome)
			yearly.TotalExpense = yearly.TotalExpense.Add(m.TotalExpense)
		}
		yearly.Net = yearly.TotalIncome.Sub(yearly.TotalExpense)
		return yearly, nil
	})
}

// monthlyReport aggregates one month inside the caller's transaction.
func monthlyReport(tx *gorm.DB, cashBoxID uint, month, year int) (*MonthlyReport, error) {
	var txns []models.CashTransaction
	err := tx.Where("cash_box_id = ? AND month = ? AND year = ? AND is_deleted = ?",
		cashBoxID, month, year, false).
		Order("transaction_date, id").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}

	report := &MonthlyReport{
		CashBoxID:    cashBoxID,
		Month:        month,
		Year:         year,
		Transactions: txns,
	}
	incomeByCat := map[string]*CategorySummary{}
	expenseByCat := map[string]*CategorySummary{}
	for i := range txns {
		t := &txns[i]
		switch t.Type {
		case models.TransactionIncome:
			report.TotalIncome = report.TotalIncome.Add(t.Amount)
			report.IncomeCount++
			addToCategory(incomeByCat, t.Category, t.Amount)
		case models.TransactionExpense:
			report.TotalExpense = report.TotalExpense.Add(t.Amount)
			report.ExpenseCount++
			addToCategory(expenseByCat, t.Category, t.Amount)
		}
	}
	report.Net = report.TotalIncome.Sub(report.TotalExpense)
	report.IncomeByCategory = summarize(incomeByCat, report.TotalIncome)
	report.ExpenseByCategory = summarize(expenseByCat, report.TotalExpense)
	return report, nil
}

func addToCategory(byCat map[string]*CategorySummary, category string, amount decimal.Decimal) {
	if category == "" {
		category = "uncategorized"
	}
	c, ok := byCat[category]
	if !ok {
		c = &CategorySummary{Category: category}
		byCat[category] = c
	}
	c.Amount = c.Amount.Add(amount)
	c.TransactionCount++
}

func summarize(byCat map[string]*CategorySummary, total decimal.Decimal) []CategorySummary {
	out := make([]CategorySummary, 0, len(byCat))
	for _, c := range byCat {
		if total.IsPositive() {
			c.Percentage = c.Amount.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
		}
		out = append(out, *c)
	}
	// largest first, ties by name
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category < out[j].Category
	})
	return out
}
