package budget

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/lexicon"
	"github.com/Veraticus/spice-budget/internal/model"
)

// zeroBased gives every dollar a job. Categories are funded in rank order
// from a running remainder; whatever is left goes to savings so the total
// equals income.
//
// Each floored essential, and minimum debt service, holds a reserve out of the
// remainder up front, so a large category earlier in the ranking cannot
// starve it.
func (s *Synthesizer) zeroBased(income decimal.Decimal, in Input) []model.BudgetCategory {
	pol := s.policy
	p := s.partition(in.Patterns)

	reserves := make(map[string]decimal.Decimal)
	reserved := decimal.Zero
	demand := spendingIndex(p)
	for _, e := range s.lex.RequiredEssentials() {
		key := strings.ToLower(e.Name)
		r := share(income, e.FloorPercent)
		if d, ok := demand[key]; ok {
			r = decimal.Min(r, d)
		}
		reserves[key] = r
		reserved = reserved.Add(r)
	}
	debt, hasDebt := s.debtService(p, income, in)
	if hasDebt {
		reserved = reserved.Add(debt.Amount)
	}
	available := income.Sub(reserved)

	var categories []model.BudgetCategory
	fund := func(pat model.SpendingPattern, priority model.Priority) {
		want := pat.MonthlyAverage
		cat := model.BudgetCategory{
			Category: pat.Category,
			Priority: priority,
			Notes:    "Funded from average spending",
		}
		if priority == model.PriorityDiscretionary && pat.Trend == model.TrendIncreasing {
			want = markdown(want, pol.ZeroBasedIncreasingDiscount)
			cat.Notes = fmt.Sprintf("Reduced %s because spending is trending up", percent(pol.ZeroBasedIncreasingDiscount))
		}

		reserve := reserves[strings.ToLower(pat.Category)]
		extra := decimal.Max(decimal.Zero, decimal.Min(want.Sub(reserve), available))
		available = available.Sub(extra)
		cat.Amount = reserve.Add(extra)

		if cat.Amount.LessThan(want) {
			cat.Notes = appendNote(cat.Notes, "Partially funded; income ran out")
		}
		categories = append(categories, cat)
	}

	for _, pat := range byAverage(p.essentials) {
		fund(pat, model.PriorityEssential)
	}
	for _, pat := range byAverage(p.discretionary) {
		fund(pat, model.PriorityDiscretionary)
	}
	for _, e := range s.missingEssentials(p) {
		categories = append(categories, s.floorCategory(e, income))
	}
	if hasDebt {
		categories = append(categories, debt)
	}

	if available.IsPositive() {
		emergency := share(available, pol.ZeroBasedEmergencyShare)
		categories = append(categories,
			savingsCategory(lexicon.EmergencyFund, emergency, "Unassigned income directed to savings"),
			savingsCategory(lexicon.GoalsSavings, available.Sub(emergency), goalsNote(in.Goals)),
		)
	}

	return categories
}

func spendingIndex(p partition) map[string]decimal.Decimal {
	idx := make(map[string]decimal.Decimal, len(p.essentials)+len(p.discretionary))
	for _, pat := range p.essentials {
		idx[strings.ToLower(pat.Category)] = pat.MonthlyAverage
	}
	for _, pat := range p.discretionary {
		idx[strings.ToLower(pat.Category)] = pat.MonthlyAverage
	}
	return idx
}
