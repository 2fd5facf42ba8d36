package budget

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/lexicon"
	"github.com/Veraticus/spice-budget/internal/model"
)

// envelope turns frequent or essential categories into fixed envelopes and
// rolls occasional spending into a few coarse ones.
func (s *Synthesizer) envelope(income decimal.Decimal, in Input) []model.BudgetCategory {
	pol := s.policy
	p := s.partition(in.Patterns)

	var categories []model.BudgetCategory
	for _, pat := range p.essentials {
		categories = append(categories, fixedEnvelope(pat, model.PriorityEssential))
	}

	type coarse struct {
		name    string
		members []string
		amount  decimal.Decimal
	}
	var order []string
	grouped := make(map[string]*coarse)

	for _, pat := range p.discretionary {
		if pat.TransactionCount >= pol.EnvelopeMinTransactions {
			categories = append(categories, fixedEnvelope(pat, model.PriorityDiscretionary))
			continue
		}
		name := s.lex.EnvelopeFor(pat.Category)
		g, ok := grouped[name]
		if !ok {
			g = &coarse{name: name}
			grouped[name] = g
			order = append(order, name)
		}
		g.members = append(g.members, pat.Category)
		g.amount = g.amount.Add(pat.MonthlyAverage)
	}

	for _, e := range s.missingEssentials(p) {
		categories = append(categories, s.floorCategory(e, income))
	}

	for _, name := range order {
		g := grouped[name]
		cat := model.BudgetCategory{
			Category: g.name,
			Amount:   g.amount,
			Priority: model.PriorityDiscretionary,
			Notes:    "Combines " + strings.Join(g.members, ", "),
		}
		if g.name == lexicon.EnvelopeEntertainmentDining {
			cat.Amount = markdown(g.amount, pol.EnvelopeDiningDiscount)
			cat.Notes = appendNote(cat.Notes, fmt.Sprintf("reduced %s", percent(pol.EnvelopeDiningDiscount)))
		}
		categories = append(categories, cat)
	}

	leftover := income.Sub(sum(categories))
	minimum := share(income, pol.EnvelopeSavingsFloor)
	savings := decimal.Max(leftover, minimum)
	notes := "Everything not assigned to an envelope"
	if savings.Equal(minimum) && leftover.LessThan(minimum) {
		notes = fmt.Sprintf("Minimum of %s of income", percent(pol.EnvelopeSavingsFloor))
	}

	return append(categories, savingsCategory(lexicon.Savings, savings, notes))
}

func fixedEnvelope(pat model.SpendingPattern, priority model.Priority) model.BudgetCategory {
	return model.BudgetCategory{
		Category: pat.Category,
		Amount:   pat.MonthlyAverage,
		Priority: priority,
		IsFixed:  true,
		Notes:    fmt.Sprintf("Fixed envelope at average spending over %d transactions", pat.TransactionCount),
	}
}
