package budget

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/model"
)

var (
	minimumAmount = decimal.New(1, -2)
	driftPerLine  = decimal.New(1, -2)
)

// Finalize rounds amounts to cents, drops empty lines and guarantees the
// total never exceeds income. An overshoot larger than rounding drift is
// reported as a warning and removed by scaling the non-savings lines.
func Finalize(framework model.Framework, income decimal.Decimal, categories []model.BudgetCategory, warnings []string) model.BudgetResult {
	result := model.BudgetResult{
		Framework:     framework,
		MonthlyIncome: income,
		Warnings:      warnings,
		TotalBudget:   decimal.Zero,
	}
	if !income.IsPositive() {
		result.MonthlyIncome = decimal.Zero
		return result
	}

	kept := roundAndDrop(categories)

	if excess := sum(kept).Sub(income); excess.IsPositive() {
		if excess.LessThanOrEqual(driftPerLine.Mul(decimal.NewFromInt(int64(len(kept))))) {
			trimLargest(kept, excess)
		} else {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"Planned allocations exceeded monthly income by %s and were scaled down to fit",
				model.FormatMoney(excess)))
			fitToIncome(kept, income)
		}
		kept = roundAndDrop(kept)
	}

	result.Categories = kept
	result.TotalBudget = sum(kept)
	return result
}

func roundAndDrop(categories []model.BudgetCategory) []model.BudgetCategory {
	kept := make([]model.BudgetCategory, 0, len(categories))
	for _, c := range categories {
		c.Amount = c.Amount.Round(2)
		if c.Amount.LessThan(minimumAmount) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// fitToIncome scales spending lines into whatever income savings leave
// over. If savings alone exceed income every line is scaled.
func fitToIncome(categories []model.BudgetCategory, income decimal.Decimal) {
	var spending, savings []int
	savingsTotal := decimal.Zero
	for i, c := range categories {
		if c.Priority == model.PrioritySavings {
			savings = append(savings, i)
			savingsTotal = savingsTotal.Add(c.Amount)
			continue
		}
		spending = append(spending, i)
	}

	indices := spending
	limit := income.Sub(savingsTotal)
	if limit.IsNegative() || len(spending) == 0 {
		indices = append(spending, savings...)
		limit = income
	}

	subset := make([]model.BudgetCategory, len(indices))
	for j, i := range indices {
		subset[j] = categories[i]
	}
	scaleInto(subset, limit, "Scaled down so the budget fits income")
	for j, i := range indices {
		categories[i] = subset[j]
	}
}

// trimLargest removes a rounding overshoot from the largest line.
func trimLargest(categories []model.BudgetCategory, excess decimal.Decimal) {
	largest := -1
	for i, c := range categories {
		if largest < 0 || c.Amount.GreaterThan(categories[largest].Amount) {
			largest = i
		}
	}
	if largest >= 0 {
		categories[largest].Amount = decimal.Max(decimal.Zero, categories[largest].Amount.Sub(excess))
	}
}
