package sheets

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/model"
)

// CategoryRow is one budget line in the export.
type CategoryRow struct {
	Category      string
	Priority      string
	Notes         string
	Amount        decimal.Decimal
	ShareOfIncome decimal.Decimal // percent, one decimal place
	Fixed         bool
}

// IncomeRow is one income stream in the export.
type IncomeRow struct {
	Source    string
	Frequency string
	Monthly   decimal.Decimal
	Declared  bool
}

// Report is everything written for one budget.
type Report struct {
	Generated     time.Time
	Framework     string
	Stability     string
	MonthlyIncome decimal.Decimal
	TotalBudget   decimal.Decimal
	Unallocated   decimal.Decimal
	Categories    []CategoryRow
	Income        []IncomeRow
	Insights      []string
	Warnings      []string
}

var hundred = decimal.NewFromInt(100)

// NewReport flattens a budget and the income analysis behind it.
func NewReport(budget *model.Budget, income model.IncomeAnalysis, generated time.Time) Report {
	r := Report{
		Generated:     generated,
		Framework:     string(budget.Framework),
		Stability:     string(income.Stability),
		MonthlyIncome: budget.MonthlyIncome,
		TotalBudget:   budget.TotalBudget,
		Unallocated:   decimal.Max(decimal.Zero, budget.MonthlyIncome.Sub(budget.TotalBudget)),
		Insights:      budget.Insights,
		Warnings:      budget.Warnings,
	}

	for _, c := range budget.Categories {
		share := decimal.Zero
		if budget.MonthlyIncome.IsPositive() {
			share = c.Amount.Div(budget.MonthlyIncome).Mul(hundred).Round(1)
		}
		r.Categories = append(r.Categories, CategoryRow{
			Category:      c.Category,
			Priority:      string(c.Priority),
			Notes:         c.Notes,
			Amount:        c.Amount,
			ShareOfIncome: share,
			Fixed:         c.IsFixed,
		})
	}

	for _, s := range income.Streams {
		r.Income = append(r.Income, IncomeRow{
			Source:    s.Source,
			Frequency: string(s.Frequency),
			Monthly:   s.MonthlyAmount,
			Declared:  s.Declared,
		})
	}

	return r
}
