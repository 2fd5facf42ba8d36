package adjust

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/lexicon"
	"github.com/Veraticus/spice-budget/internal/model"
)

// recommend builds advice in priority order: savings rate, spending
// callouts, missing categories, then the seasonal nudge.
func (a *Adjuster) recommend(result model.AdjustmentResult, patterns map[string]model.SpendingPattern, income decimal.Decimal, now time.Time) []string {
	pol := a.policy
	var out []string

	if income.IsPositive() {
		saved := decimal.Zero
		for _, c := range result.Categories {
			if c.Priority == model.PrioritySavings {
				saved = saved.Add(c.SuggestedAmount)
			}
		}
		rate := saved.Div(income)
		shown := rate.Mul(decimal.NewFromInt(100)).Round(1).String() + "%"

		switch {
		case rate.LessThan(decimal.NewFromFloat(pol.LowSavingsRate)):
			out = append(out, fmt.Sprintf("Your savings rate is %s. Try to save at least %s%% of your income.",
				shown, decimal.NewFromFloat(pol.LowSavingsRate*100).Round(1).String()))
		case rate.GreaterThan(decimal.NewFromFloat(pol.HighSavingsRate)):
			out = append(out, fmt.Sprintf("Excellent: you are saving %s of your income.", shown))
		}
	}

	for _, c := range result.Categories {
		if c.IsNew || c.IsFixed || !c.Amount.IsPositive() {
			continue
		}
		pat, ok := patterns[strings.ToLower(c.Category)]
		if !ok {
			continue
		}
		avg := pat.MonthlyAverage
		switch {
		case avg.GreaterThan(c.Amount.Mul(decimal.NewFromFloat(pol.OverspendRatio))):
			out = append(out, fmt.Sprintf("You consistently overspend on %s: %s a month against %s budgeted.",
				c.Category, model.FormatMoney(avg), model.FormatMoney(c.Amount)))
		case avg.LessThan(c.Amount.Mul(decimal.NewFromFloat(pol.UnderspendRatio))):
			out = append(out, fmt.Sprintf("You spend less than planned on %s; consider moving %s a month to savings.",
				c.Category, model.FormatMoney(c.Amount.Sub(avg))))
		}
	}

	has := func(names ...string) bool {
		for _, c := range result.Categories {
			for _, n := range names {
				if strings.EqualFold(c.Category, n) {
					return true
				}
			}
		}
		return false
	}
	if !has(lexicon.EmergencyFund) {
		out = append(out, "Add an Emergency Fund category to cover unexpected expenses.")
	}
	if !has(lexicon.Savings, lexicon.SavingsInvestment) {
		out = append(out, "Add a Savings category so surplus money has a home.")
	}
	if !has(lexicon.Healthcare) {
		out = append(out, "Add a Healthcare category for medical costs.")
	}

	switch now.Month() {
	case time.December:
		out = append(out, "Holiday spending is coming up; set aside extra for gifts and travel.")
	case time.January:
		out = append(out, "January is a good time for an annual review of your budget.")
	default:
	}

	if pol.MaxRecommendations >= 0 && len(out) > pol.MaxRecommendations {
		out = out[:pol.MaxRecommendations]
	}
	return out
}
