// Package insight turns a budget into human-readable insights and warnings.
package insight

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/config"
	"github.com/Veraticus/spice-budget/internal/model"
)

// NoIncomeWarning is the only message of a budget built without income.
const NoIncomeWarning = "No income detected. Add a recurring income source or import deposit history to build a budget."

var hundred = decimal.NewFromInt(100)

// Generator derives insights from budgets.
type Generator struct {
	policy config.InsightPolicy
}

// NewGenerator creates an insight generator.
func NewGenerator(policy config.InsightPolicy) *Generator {
	return &Generator{policy: policy}
}

// Apply returns result with insights and warnings filled in. A result without
// income becomes the empty terminal budget carrying a single warning.
func (g *Generator) Apply(result model.BudgetResult, income model.IncomeAnalysis, patterns []model.SpendingPattern) model.BudgetResult {
	if !result.MonthlyIncome.IsPositive() {
		result.Categories = nil
		result.Insights = nil
		result.TotalBudget = decimal.Zero
		result.MonthlyIncome = decimal.Zero
		result.Warnings = []string{NoIncomeWarning}
		return result
	}

	result.Insights = g.Insights(result, income.Stability, patterns)
	if w, ok := OverageWarning(result.TotalBudget, result.MonthlyIncome); ok {
		result.Warnings = append(result.Warnings, w)
	}
	return result
}

// Insights returns the ordered insight sentences for a funded budget.
func (g *Generator) Insights(result model.BudgetResult, stability model.Stability, patterns []model.SpendingPattern) []string {
	var out []string

	out = append(out, stabilitySentence(stability))

	if s := g.trendingSentence(patterns); s != "" {
		out = append(out, s)
	}

	out = append(out, g.savingsSentence(SavingsRate(result)))
	out = append(out, FrameworkSentence(result.Framework))

	return out
}

func stabilitySentence(s model.Stability) string {
	switch s {
	case model.StabilityStable:
		return "Your income is stable, so fixed monthly allocations should hold up well."
	case model.StabilityVariable:
		return "Part of your income varies month to month; budget on the stable portion and treat the rest as a bonus."
	case model.StabilityUncertain:
		return "Your income is irregular, so budget conservatively and build a larger emergency fund."
	default:
		return "Your income is irregular, so budget conservatively and build a larger emergency fund."
	}
}

func (g *Generator) trendingSentence(patterns []model.SpendingPattern) string {
	var names []string
	for _, p := range patterns {
		if len(names) >= g.policy.MaxTrendingCategories {
			break
		}
		if p.Trend == model.TrendIncreasing {
			names = append(names, p.Category)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return fmt.Sprintf("Spending is increasing in %s.", joinNames(names))
}

func joinNames(names []string) string {
	if len(names) == 1 {
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

// SavingsRate returns savings-priority amounts as a percentage of income.
func SavingsRate(result model.BudgetResult) decimal.Decimal {
	if !result.MonthlyIncome.IsPositive() {
		return decimal.Zero
	}
	return result.SumByPriority(model.PrioritySavings).Div(result.MonthlyIncome).Mul(hundred).Round(1)
}

func (g *Generator) savingsSentence(rate decimal.Decimal) string {
	shown := rate.StringFixed(1) + "%"
	switch {
	case rate.GreaterThanOrEqual(decimal.NewFromFloat(g.policy.SavingsRatePraise)):
		return fmt.Sprintf("Great job: you are saving %s of your income.", shown)
	case rate.GreaterThanOrEqual(decimal.NewFromFloat(g.policy.SavingsRateEncourage)):
		return fmt.Sprintf("You are saving %s of your income; try to work toward %s%%.", shown, decimal.NewFromFloat(g.policy.SavingsRatePraise).String())
	default:
		return fmt.Sprintf("Your savings rate is only %s; aim for at least %s%% to build a cushion.", shown, decimal.NewFromFloat(g.policy.SavingsRateEncourage).String())
	}
}

// FrameworkSentence explains the framework a budget was built with.
func FrameworkSentence(f model.Framework) string {
	switch f {
	case model.FrameworkZeroBased:
		return "Zero-based budgeting gives every dollar of income a job, with leftovers sent to savings."
	case model.FrameworkEnvelope:
		return "Envelope budgeting sets a fixed amount per envelope; when an envelope is empty, spending in it stops."
	case model.FrameworkPayYourselfFirst:
		return "Pay-yourself-first sets savings aside before any spending, then funds expenses from what remains."
	case model.Framework503020:
		return "The 50/30/20 rule splits income into needs, wants and savings."
	default:
		return "The 50/30/20 rule splits income into needs, wants and savings."
	}
}

// OverageWarning reports how far total exceeds income.
func OverageWarning(total, income decimal.Decimal) (string, bool) {
	if !total.GreaterThan(income) {
		return "", false
	}
	return fmt.Sprintf("Budget exceeds monthly income by %s", model.FormatMoney(total.Sub(income))), true
}
