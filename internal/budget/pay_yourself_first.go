package budget

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/lexicon"
	"github.com/Veraticus/spice-budget/internal/model"
)

// payYourselfFirst sets savings aside before any expense, then funds
// essentials and finally discretionary spending from what remains.
func (s *Synthesizer) payYourselfFirst(income decimal.Decimal, in Input) []model.BudgetCategory {
	pol := s.policy
	p := s.partition(in.Patterns)

	rate := pol.DefaultSavingsRate
	if in.TargetSavingsRate != nil && *in.TargetSavingsRate >= 0 && *in.TargetSavingsRate <= 1 {
		rate = *in.TargetSavingsRate
	}
	target := share(income, rate)

	emergency := share(target, pol.PYFEmergencyShare)
	retirement := share(target, pol.PYFRetirementShare)
	goals := target.Sub(emergency).Sub(retirement)

	categories := []model.BudgetCategory{
		savingsCategory(lexicon.EmergencyFund, emergency, fmt.Sprintf("Paid first from a %s savings rate", percent(rate))),
		savingsCategory(lexicon.Retirement, retirement, fmt.Sprintf("Paid first from a %s savings rate", percent(rate))),
	}
	if goals.GreaterThan(decimal.NewFromFloat(pol.GoalsMaterialityFloor)) {
		categories = append(categories, savingsCategory(lexicon.GoalsSavings, goals, goalsNote(in.Goals)))
	}
	pool := income.Sub(sum(categories))

	essentialCap := share(pool, pol.PYFEssentialCapRatio)
	var essentials []model.BudgetCategory
	for _, pat := range p.essentials {
		cat := model.BudgetCategory{
			Category: pat.Category,
			Amount:   pat.MonthlyAverage,
			Priority: model.PriorityEssential,
			Notes:    "Funded from average spending",
		}
		if cat.Amount.GreaterThan(essentialCap) {
			cat.Amount = essentialCap
			cat.Notes = fmt.Sprintf("Capped at %s of income after savings", percent(pol.PYFEssentialCapRatio))
		}
		essentials = append(essentials, cat)
	}
	for _, e := range s.missingEssentials(p) {
		essentials = append(essentials, s.floorCategory(e, income))
	}
	scaleInto(essentials, pool, "Scaled to fit income after savings")

	remainder := pool.Sub(sum(essentials))
	discretionaryCap := share(remainder, pol.PYFDiscretionaryCapRatio)
	minimum := decimal.NewFromFloat(pol.PYFDiscretionaryFloor)

	var discretionary []model.BudgetCategory
	for _, pat := range p.discretionary {
		cut := pol.PYFStableMarkdown
		if pat.Trend == model.TrendIncreasing {
			cut = pol.PYFIncreasingMarkdown
		}
		cat := model.BudgetCategory{
			Category: pat.Category,
			Amount:   decimal.Min(markdown(pat.MonthlyAverage, cut), discretionaryCap),
			Priority: model.PriorityDiscretionary,
			Notes:    fmt.Sprintf("Reduced %s from average spending", percent(cut)),
		}
		discretionary = append(discretionary, cat)
	}
	scaleInto(discretionary, remainder, "Scaled to fit what remains")

	categories = append(categories, essentials...)
	for _, cat := range discretionary {
		if cat.Amount.LessThan(minimum) {
			continue
		}
		categories = append(categories, cat)
	}

	return categories
}
