// Package adjust revises an existing budget against fresh spending history
// instead of synthesizing a new one.
package adjust

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/config"
	"github.com/Veraticus/spice-budget/internal/lexicon"
	"github.com/Veraticus/spice-budget/internal/model"
	"github.com/Veraticus/spice-budget/internal/spending"
)

var one = decimal.NewFromInt(1)

// Adjuster proposes incremental amendments to a persisted budget.
type Adjuster struct {
	lex    *lexicon.Lexicon
	policy config.AdjustPolicy
}

// NewAdjuster creates a dynamic adjuster.
func NewAdjuster(lex *lexicon.Lexicon, policy config.AdjustPolicy) *Adjuster {
	return &Adjuster{lex: lex, policy: policy}
}

// Adjust compares each category with its fresh spending pattern and returns
// the proposed amounts. The input slice is not modified.
func (a *Adjuster) Adjust(current []model.BudgetCategory, patterns []model.SpendingPattern, income decimal.Decimal, now time.Time) model.AdjustmentResult {
	byCategory := spending.Index(patterns)

	result := model.AdjustmentResult{
		MonthlyIncome: income,
		TotalBefore:   decimal.Zero,
		TotalAfter:    decimal.Zero,
	}

	net := decimal.Zero
	for _, cat := range current {
		adjusted := model.AdjustedCategory{BudgetCategory: cat, SuggestedAmount: cat.Amount}
		result.TotalBefore = result.TotalBefore.Add(cat.Amount)

		if a.adjustable(cat) {
			if pat, ok := byCategory[strings.ToLower(cat.Category)]; ok && cat.Amount.IsPositive() {
				a.revise(&adjusted, pat)
			}
			a.clampToMinimum(&adjusted)
			net = net.Add(cat.Amount.Sub(adjusted.SuggestedAmount))
		}

		result.Categories = append(result.Categories, adjusted)
	}

	if net.IsPositive() {
		a.depositSavings(&result, net)
	}

	if income.IsPositive() {
		a.fitCeiling(&result, income)
	}

	for i := range result.Categories {
		c := &result.Categories[i]
		c.SuggestedAmount = c.SuggestedAmount.Round(2)
		c.Changed = c.IsNew || !c.SuggestedAmount.Equal(c.Amount)
		result.TotalAfter = result.TotalAfter.Add(c.SuggestedAmount)
	}

	result.Recommendations = a.recommend(result, byCategory, income, now)
	return result
}

// adjustable reports whether a category may be revised at all. Fixed lines
// and savings lines pass through unchanged.
func (a *Adjuster) adjustable(cat model.BudgetCategory) bool {
	if cat.IsFixed {
		return false
	}
	switch cat.Priority {
	case model.PrioritySavings:
		return false
	case model.PriorityEssential, model.PriorityDiscretionary:
		return true
	default:
		return true
	}
}

func (a *Adjuster) revise(c *model.AdjustedCategory, pat model.SpendingPattern) {
	pol := a.policy
	current := c.Amount
	avg := pat.MonthlyAverage

	switch {
	case avg.LessThan(current.Mul(decimal.NewFromFloat(pol.UnderspendRatio))):
		gap := current.Sub(avg)
		c.SuggestedAmount = current.Sub(gap.Mul(decimal.NewFromFloat(pol.UnderspendRecovery))).Round(2)
		c.AdjustmentReason = fmt.Sprintf("Spending averaged %s against a budget of %s; reduced toward actual spending",
			model.FormatMoney(avg), model.FormatMoney(current))
	case avg.GreaterThan(current.Mul(decimal.NewFromFloat(pol.OverspendRatio))):
		gap := avg.Sub(current)
		c.SuggestedAmount = current.Add(gap.Mul(decimal.NewFromFloat(pol.OverspendCoverage))).Round(2)
		c.AdjustmentReason = fmt.Sprintf("Spending averaged %s against a budget of %s; increased toward actual spending",
			model.FormatMoney(avg), model.FormatMoney(current))
	case pat.Trend == model.TrendIncreasing:
		c.SuggestedAmount = current.Mul(one.Add(decimal.NewFromFloat(pol.TrendNudge))).Round(2)
		c.AdjustmentReason = "Spending is trending up"
	case pat.Trend == model.TrendDecreasing:
		c.SuggestedAmount = current.Mul(one.Sub(decimal.NewFromFloat(pol.TrendNudge))).Round(2)
		c.AdjustmentReason = "Spending is trending down"
	}
}

func (a *Adjuster) clampToMinimum(c *model.AdjustedCategory) {
	floor, ok := a.lex.MinimumAmount(c.Category)
	if !ok || !c.SuggestedAmount.LessThan(floor) {
		return
	}
	c.SuggestedAmount = floor
	c.AdjustmentReason = appendReason(c.AdjustmentReason, "raised to the "+model.FormatMoney(floor)+" minimum")
}

// depositSavings credits money freed by reductions to the savings line,
// creating one if the budget has none.
func (a *Adjuster) depositSavings(result *model.AdjustmentResult, amount decimal.Decimal) {
	reason := fmt.Sprintf("Received %s freed up by reductions", model.FormatMoney(amount))

	for _, name := range []string{lexicon.SavingsInvestment, lexicon.Savings} {
		for i := range result.Categories {
			c := &result.Categories[i]
			if c.IsFixed || !strings.EqualFold(c.Category, name) {
				continue
			}
			c.SuggestedAmount = c.SuggestedAmount.Add(amount)
			c.AdjustmentReason = appendReason(c.AdjustmentReason, reason)
			return
		}
	}

	result.Categories = append(result.Categories, model.AdjustedCategory{
		BudgetCategory: model.BudgetCategory{
			Category: lexicon.SavingsInvestment,
			Priority: model.PrioritySavings,
			Amount:   decimal.Zero,
		},
		SuggestedAmount:  amount,
		AdjustmentReason: reason,
		IsNew:            true,
	})
}

// fitCeiling scales every non-fixed line by one factor so the total stays
// within the income ceiling.
func (a *Adjuster) fitCeiling(result *model.AdjustmentResult, income decimal.Decimal) {
	ceiling := income.Mul(decimal.NewFromFloat(a.policy.IncomeCeiling))

	fixed, flexible := decimal.Zero, decimal.Zero
	for _, c := range result.Categories {
		if c.IsFixed {
			fixed = fixed.Add(c.SuggestedAmount)
		} else {
			flexible = flexible.Add(c.SuggestedAmount)
		}
	}
	if !fixed.Add(flexible).GreaterThan(ceiling) || !flexible.IsPositive() {
		return
	}

	factor := decimal.Max(decimal.Zero, ceiling.Sub(fixed)).Div(flexible)
	reason := fmt.Sprintf("Scaled to %s%% so the budget stays within %s%% of income",
		factor.Mul(decimal.NewFromInt(100)).Round(1).String(),
		decimal.NewFromFloat(a.policy.IncomeCeiling*100).Round(1).String())

	for i := range result.Categories {
		c := &result.Categories[i]
		if c.IsFixed {
			continue
		}
		c.SuggestedAmount = c.SuggestedAmount.Mul(factor).Truncate(2)
		c.AdjustmentReason = appendReason(c.AdjustmentReason, reason)
	}
}

func appendReason(existing, reason string) string {
	if existing == "" {
		return reason
	}
	return existing + "; " + reason
}
