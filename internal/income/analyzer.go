// Package income detects a user's monthly income from declared records and
// deposit history.
package income

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/config"
	"github.com/Veraticus/spice-budget/internal/lexicon"
	"github.com/Veraticus/spice-budget/internal/model"
)

// Analyzer merges declared recurring income with income inferred from
// deposits.
type Analyzer struct {
	lex    *lexicon.Lexicon
	policy config.IncomePolicy
}

// NewAnalyzer creates an income analyzer.
func NewAnalyzer(lex *lexicon.Lexicon, policy config.IncomePolicy) *Analyzer {
	return &Analyzer{lex: lex, policy: policy}
}

// WindowStart returns the first instant of the lookback window ending at asOf.
func (a *Analyzer) WindowStart(asOf time.Time) time.Time {
	return asOf.AddDate(0, -a.policy.LookbackMonths, 0)
}

type depositGroup struct {
	source string
	dates  []time.Time
	total  decimal.Decimal
}

// Analyze returns the combined monthly income. Missing data yields zero
// income with uncertain stability.
func (a *Analyzer) Analyze(declared []model.RecurringIncome, txns []model.Transaction, asOf time.Time) model.IncomeAnalysis {
	var streams []model.IncomeStream
	for _, rec := range declared {
		if !rec.ActiveAt(asOf) {
			continue
		}
		monthly := rec.MonthlyAmount().Round(2)
		if !monthly.IsPositive() {
			continue
		}
		streams = append(streams, model.IncomeStream{
			Source:        rec.Source,
			Frequency:     rec.Frequency,
			MonthlyAmount: monthly,
			IsStable:      true,
			Declared:      true,
		})
	}

	streams = append(streams, a.inferStreams(txns, streams, asOf)...)

	total := decimal.Zero
	for _, s := range streams {
		total = total.Add(s.MonthlyAmount)
	}

	return model.IncomeAnalysis{
		MonthlyIncome: total,
		Streams:       streams,
		Stability:     classifyStability(streams),
	}
}

func (a *Analyzer) inferStreams(txns []model.Transaction, declared []model.IncomeStream, asOf time.Time) []model.IncomeStream {
	start := a.WindowStart(asOf)
	groups := make(map[string]*depositGroup)

	for _, txn := range txns {
		if txn.Date.Before(start) || txn.Date.After(asOf) || !a.lex.IsIncome(txn) {
			continue
		}
		source := txn.Description()
		if source == "" {
			source = txn.Category
		}
		key := strings.ToLower(source)
		g, ok := groups[key]
		if !ok {
			g = &depositGroup{source: source}
			groups[key] = g
		}
		g.dates = append(g.dates, txn.Date)
		g.total = g.total.Add(txn.Amount.Abs())
	}

	months := decimal.NewFromInt(int64(a.policy.LookbackMonths))
	floor := decimal.NewFromFloat(a.policy.MaterialityFloor)
	required := a.policy.StableMonthRatio * float64(a.policy.LookbackMonths)

	var inferred []model.IncomeStream
	for _, g := range groups {
		monthly := g.total.Div(months).Round(2)
		if monthly.LessThan(floor) || duplicatesDeclared(g.source, declared) {
			continue
		}

		sort.Slice(g.dates, func(i, j int) bool { return g.dates[i].Before(g.dates[j]) })

		inferred = append(inferred, model.IncomeStream{
			Source:        g.source,
			Frequency:     InferFrequency(g.dates),
			MonthlyAmount: monthly,
			IsStable:      float64(distinctMonths(g.dates)) >= required,
		})
	}

	sort.Slice(inferred, func(i, j int) bool {
		if c := inferred[i].MonthlyAmount.Cmp(inferred[j].MonthlyAmount); c != 0 {
			return c > 0
		}
		return inferred[i].Source < inferred[j].Source
	})

	return inferred
}

func duplicatesDeclared(source string, declared []model.IncomeStream) bool {
	s := strings.ToLower(strings.TrimSpace(source))
	for _, d := range declared {
		ds := strings.ToLower(strings.TrimSpace(d.Source))
		if ds == "" {
			continue
		}
		if strings.Contains(s, ds) || strings.Contains(ds, s) {
			return true
		}
	}
	return false
}

func distinctMonths(dates []time.Time) int {
	seen := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		seen[d.Format("2006-01")] = struct{}{}
	}
	return len(seen)
}

// InferFrequency estimates a pay cadence from the mean gap between sorted
// deposit dates.
func InferFrequency(dates []time.Time) model.Frequency {
	if len(dates) < 2 {
		return model.FrequencyOther
	}

	span := dates[len(dates)-1].Sub(dates[0]).Hours() / 24
	gap := span / float64(len(dates)-1)

	switch {
	case gap <= 10:
		return model.FrequencyWeekly
	case gap <= 20:
		return model.FrequencyBiweekly
	case gap <= 45:
		return model.FrequencyMonthly
	default:
		return model.FrequencyOther
	}
}

func classifyStability(streams []model.IncomeStream) model.Stability {
	stable := 0
	for _, s := range streams {
		if s.IsStable {
			stable++
		}
	}

	switch {
	case len(streams) > 0 && stable == len(streams):
		return model.StabilityStable
	case stable > 0:
		return model.StabilityVariable
	default:
		return model.StabilityUncertain
	}
}
