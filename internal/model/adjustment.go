package model

import "github.com/shopspring/decimal"

// AdjustedCategory is a budget category with the adjuster's proposal.
// The embedded Amount is the currently persisted value.
type AdjustedCategory struct {
	AdjustmentReason string
	BudgetCategory
	SuggestedAmount decimal.Decimal
	Changed         bool
	IsNew           bool
}

// AdjustmentResult is the output of a dynamic adjustment run.
type AdjustmentResult struct {
	BudgetID        string
	Categories      []AdjustedCategory
	Recommendations []string
	Warnings        []string
	MonthlyIncome   decimal.Decimal
	TotalBefore     decimal.Decimal
	TotalAfter      decimal.Decimal
}

// Changed returns only the categories whose amount was revised.
func (r AdjustmentResult) Changed() []AdjustedCategory {
	var changed []AdjustedCategory
	for _, c := range r.Categories {
		if c.Changed {
			changed = append(changed, c)
		}
	}
	return changed
}
