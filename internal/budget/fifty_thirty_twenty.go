package budget

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/lexicon"
	"github.com/Veraticus/spice-budget/internal/model"
)

// fiftyThirtyTwenty splits income into needs, wants and savings pools.
// Essentials that outgrow the needs pool borrow from wants, then savings.
func (s *Synthesizer) fiftyThirtyTwenty(income decimal.Decimal, in Input) []model.BudgetCategory {
	pol := s.policy
	p := s.partition(in.Patterns)

	needs := share(income, pol.NeedsShare)
	wants := share(income, pol.WantsShare)
	savings := share(income, pol.SavingsShare)
	essentialCap := share(income, pol.EssentialCapRatio)

	var essentials []model.BudgetCategory
	for _, pat := range p.essentials {
		amount := uplift(pat.MonthlyAverage, pol.EssentialBuffer)
		cat := model.BudgetCategory{
			Category: pat.Category,
			Amount:   amount,
			Priority: model.PriorityEssential,
			Notes:    fmt.Sprintf("Based on average spending of %s plus a %s buffer", model.FormatMoney(pat.MonthlyAverage), percent(pol.EssentialBuffer)),
		}
		if amount.GreaterThan(essentialCap) {
			cat.Amount = essentialCap
			cat.Notes = fmt.Sprintf("Capped at %s of income", percent(pol.EssentialCapRatio))
		}
		essentials = append(essentials, cat)
	}
	for _, e := range s.missingEssentials(p) {
		essentials = append(essentials, s.floorCategory(e, income))
	}
	if debt, ok := s.debtService(p, income, in); ok {
		essentials = append(essentials, debt)
	}

	if excess := sum(essentials).Sub(needs); excess.IsPositive() {
		fromWants := decimal.Min(excess, wants)
		wants = wants.Sub(fromWants)
		excess = excess.Sub(fromWants)

		fromSavings := decimal.Min(excess, savings)
		savings = savings.Sub(fromSavings)
		excess = excess.Sub(fromSavings)

		if excess.IsPositive() {
			scaleInto(essentials, income, "Scaled down to fit income")
		}
	}

	discretionaryCap := share(wants, pol.DiscretionaryCapRatio)
	var discretionary []model.BudgetCategory
	for _, pat := range p.discretionary {
		cat := model.BudgetCategory{
			Category: pat.Category,
			Amount:   pat.MonthlyAverage,
			Priority: model.PriorityDiscretionary,
		}
		if pat.Trend == model.TrendIncreasing {
			cat.Amount = markdown(pat.MonthlyAverage, pol.IncreasingTrendMarkdown)
			cat.Notes = fmt.Sprintf("Reduced %s because spending is trending up", percent(pol.IncreasingTrendMarkdown))
		}
		if cat.Amount.GreaterThan(discretionaryCap) {
			cat.Amount = discretionaryCap
			cat.Notes = appendNote(cat.Notes, fmt.Sprintf("Capped at %s of the wants budget", percent(pol.DiscretionaryCapRatio)))
		}
		discretionary = append(discretionary, cat)
	}
	scaleInto(discretionary, wants, "Scaled to fit the wants budget")

	categories := make([]model.BudgetCategory, 0, len(essentials)+len(discretionary)+4)
	categories = append(categories, essentials...)
	categories = append(categories, discretionary...)
	return append(categories, s.splitSavingsPool(savings, in)...)
}

// splitSavingsPool divides the savings pool into emergency fund, retirement,
// extra debt payment and goals savings.
func (s *Synthesizer) splitSavingsPool(pool decimal.Decimal, in Input) []model.BudgetCategory {
	if !pool.IsPositive() {
		return nil
	}
	pol := s.policy

	emergency := share(pool, pol.EmergencyFundShare)
	retirement := share(pool, pol.RetirementShare)
	out := []model.BudgetCategory{
		savingsCategory(lexicon.EmergencyFund, emergency, "Build three to six months of expenses"),
		savingsCategory(lexicon.Retirement, retirement, "Long-term retirement contributions"),
	}
	remaining := pool.Sub(emergency).Sub(retirement)

	if in.DebtBalance.IsPositive() {
		debt := decimal.Min(share(in.DebtBalance, pol.DebtPaymentRatio), share(pool, pol.DebtPaymentMaxShare), remaining)
		out = append(out, savingsCategory(lexicon.ExtraDebtPayment, debt,
			fmt.Sprintf("Extra payment toward %s of outstanding debt", model.FormatMoney(in.DebtBalance))))
		remaining = remaining.Sub(debt)
	}

	if remaining.GreaterThan(decimal.NewFromFloat(pol.GoalsMaterialityFloor)) {
		out = append(out, savingsCategory(lexicon.GoalsSavings, remaining, goalsNote(in.Goals)))
	}

	return out
}
