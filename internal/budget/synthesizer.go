// Package budget allocates monthly income across categories under one of
// several budgeting frameworks.
package budget

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/config"
	"github.com/Veraticus/spice-budget/internal/lexicon"
	"github.com/Veraticus/spice-budget/internal/model"
)

// Input is everything a synthesis run needs.
type Input struct {
	// TargetSavingsRate is a fraction of income; nil means the policy default.
	TargetSavingsRate *float64
	Framework         string
	Patterns          []model.SpendingPattern
	Goals             []model.Goal
	MonthlyIncome     decimal.Decimal
	DebtBalance       decimal.Decimal
}

// Synthesizer builds budgets from income and spending patterns.
type Synthesizer struct {
	lex    *lexicon.Lexicon
	policy config.SynthesisPolicy
}

// NewSynthesizer creates a budget synthesizer.
func NewSynthesizer(lex *lexicon.Lexicon, policy config.SynthesisPolicy) *Synthesizer {
	return &Synthesizer{lex: lex, policy: policy}
}

// Synthesize allocates income under the requested framework and returns a
// finalized result without insights. Unrecognized frameworks resolve to
// 50-30-20. Income at or below zero yields an empty budget.
func (s *Synthesizer) Synthesize(in Input) model.BudgetResult {
	framework, _ := model.ParseFramework(in.Framework)
	income := in.MonthlyIncome.Round(2)

	if !income.IsPositive() {
		return model.BudgetResult{
			Framework:     framework,
			MonthlyIncome: decimal.Zero,
			TotalBudget:   decimal.Zero,
		}
	}

	var warnings []string
	if demand := s.essentialDemand(in.Patterns); demand.GreaterThan(income) {
		warnings = append(warnings, fmt.Sprintf(
			"Essential spending of %s exceeds monthly income of %s by %s",
			model.FormatMoney(demand), model.FormatMoney(income), model.FormatMoney(demand.Sub(income))))
	}

	categories := s.Allocate(framework, income, in)
	return Finalize(framework, income, categories, warnings)
}

// Allocate runs one framework and returns its raw, unfinalized categories.
func (s *Synthesizer) Allocate(framework model.Framework, income decimal.Decimal, in Input) []model.BudgetCategory {
	switch framework {
	case model.FrameworkZeroBased:
		return s.zeroBased(income, in)
	case model.FrameworkEnvelope:
		return s.envelope(income, in)
	case model.FrameworkPayYourselfFirst:
		return s.payYourselfFirst(income, in)
	case model.Framework503020:
		return s.fiftyThirtyTwenty(income, in)
	default:
		return s.fiftyThirtyTwenty(income, in)
	}
}

// partition separates patterns by the lexicon's priority. Savings-priority
// history is ignored because every framework creates its own savings lines.
type partition struct {
	present       map[string]bool
	essentials    []model.SpendingPattern
	discretionary []model.SpendingPattern
}

func (s *Synthesizer) partition(patterns []model.SpendingPattern) partition {
	p := partition{present: make(map[string]bool, len(patterns))}
	for _, pat := range patterns {
		if !pat.MonthlyAverage.IsPositive() {
			continue
		}
		switch s.lex.PriorityOf(pat.Category) {
		case model.PriorityEssential:
			p.essentials = append(p.essentials, pat)
		case model.PriorityDiscretionary:
			p.discretionary = append(p.discretionary, pat)
		case model.PrioritySavings:
			continue
		}
		p.present[strings.ToLower(pat.Category)] = true
	}
	return p
}

// missingEssentials returns the floored essentials with no spending history.
func (s *Synthesizer) missingEssentials(p partition) []lexicon.Entry {
	var missing []lexicon.Entry
	for _, e := range s.lex.RequiredEssentials() {
		if !p.present[strings.ToLower(e.Name)] {
			missing = append(missing, e)
		}
	}
	return missing
}

// debtService covers minimum payments on outstanding debt when the ledger
// shows no payment history. It is capped like any other essential and marked
// fixed so the adjuster leaves it alone.
func (s *Synthesizer) debtService(p partition, income decimal.Decimal, in Input) (model.BudgetCategory, bool) {
	if !in.DebtBalance.IsPositive() || !s.lex.IsEssential(lexicon.DebtPayments) ||
		p.present[strings.ToLower(lexicon.DebtPayments)] {
		return model.BudgetCategory{}, false
	}

	amount := decimal.Min(
		share(in.DebtBalance, s.policy.MinimumPaymentRatio),
		share(income, s.policy.EssentialCapRatio),
	)
	if !amount.IsPositive() {
		return model.BudgetCategory{}, false
	}
	return model.BudgetCategory{
		Category: lexicon.DebtPayments,
		Amount:   amount,
		Priority: model.PriorityEssential,
		IsFixed:  true,
		Notes: fmt.Sprintf("Minimum payments of %s on %s of outstanding debt",
			percent(s.policy.MinimumPaymentRatio), model.FormatMoney(in.DebtBalance)),
	}, true
}

func (s *Synthesizer) essentialDemand(patterns []model.SpendingPattern) decimal.Decimal {
	total := decimal.Zero
	for _, p := range patterns {
		if s.lex.IsEssential(p.Category) {
			total = total.Add(p.MonthlyAverage)
		}
	}
	return total
}

func (s *Synthesizer) floorCategory(e lexicon.Entry, income decimal.Decimal) model.BudgetCategory {
	return model.BudgetCategory{
		Category: e.Name,
		Amount:   share(income, e.FloorPercent),
		Priority: model.PriorityEssential,
		Notes:    fmt.Sprintf("No spending history; reserved %s of income", percent(e.FloorPercent)),
	}
}

func savingsCategory(name string, amount decimal.Decimal, notes string) model.BudgetCategory {
	return model.BudgetCategory{
		Category: name,
		Amount:   amount,
		Priority: model.PrioritySavings,
		Notes:    notes,
	}
}

// goalsNote lists the user's goals for the goals-savings line.
func goalsNote(goals []model.Goal) string {
	if len(goals) == 0 {
		return "Savings toward future goals"
	}

	sorted := make([]model.Goal, len(goals))
	copy(sorted, goals)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	parts := make([]string, 0, len(sorted))
	for _, g := range sorted {
		parts = append(parts, fmt.Sprintf("%s (%s)", g.Name, model.FormatMoney(g.TargetAmount)))
	}
	return "Toward goals: " + strings.Join(parts, ", ")
}

// share returns fraction f of amount, rounded to cents.
func share(amount decimal.Decimal, f float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(f)).Round(2)
}

// markdown reduces amount by fraction f, rounded to cents.
func markdown(amount decimal.Decimal, f float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(f))).Round(2)
}

// uplift raises amount by fraction f, rounded to cents.
func uplift(amount decimal.Decimal, f float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(f))).Round(2)
}

func percent(f float64) string {
	return decimal.NewFromFloat(f * 100).Round(1).String() + "%"
}

func sum(categories []model.BudgetCategory) decimal.Decimal {
	total := decimal.Zero
	for _, c := range categories {
		total = total.Add(c.Amount)
	}
	return total
}

// scaleInto shrinks categories proportionally so they sum to at most limit.
// Scaled amounts are truncated to cents so rounding never overshoots.
func scaleInto(categories []model.BudgetCategory, limit decimal.Decimal, note string) {
	total := sum(categories)
	if !total.GreaterThan(limit) || !total.IsPositive() {
		return
	}
	if limit.IsNegative() {
		limit = decimal.Zero
	}

	factor := limit.Div(total)
	for i := range categories {
		categories[i].Amount = categories[i].Amount.Mul(factor).Truncate(2)
		if note != "" {
			categories[i].Notes = appendNote(categories[i].Notes, note)
		}
	}
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}

// byAverage orders patterns by monthly average descending, then name.
func byAverage(patterns []model.SpendingPattern) []model.SpendingPattern {
	out := make([]model.SpendingPattern, len(patterns))
	copy(out, patterns)
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].MonthlyAverage.Cmp(out[j].MonthlyAverage); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
