// Package spending summarizes transaction history into per-category spending
// patterns.
package spending

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/config"
	"github.com/Veraticus/spice-budget/internal/lexicon"
	"github.com/Veraticus/spice-budget/internal/model"
)

// Analyzer computes spending patterns over a trailing window.
type Analyzer struct {
	lex    *lexicon.Lexicon
	policy config.SpendingPolicy
}

// NewAnalyzer creates a spending analyzer.
func NewAnalyzer(lex *lexicon.Lexicon, policy config.SpendingPolicy) *Analyzer {
	return &Analyzer{lex: lex, policy: policy}
}

// WithLookback returns a copy of the analyzer using a different window.
func (a *Analyzer) WithLookback(months int) *Analyzer {
	clone := *a
	if months > 0 {
		clone.policy.LookbackMonths = months
	}
	return &clone
}

// LookbackMonths returns the window length.
func (a *Analyzer) LookbackMonths() int {
	return a.policy.LookbackMonths
}

// WindowStart returns the first instant of the window ending at asOf.
func (a *Analyzer) WindowStart(asOf time.Time) time.Time {
	return asOf.AddDate(0, -a.policy.LookbackMonths, 0)
}

type bucket struct {
	category string
	entries  []entry
	total    decimal.Decimal
}

type entry struct {
	date   time.Time
	amount decimal.Decimal
}

// Analyze groups outflows inside [asOf-lookback, asOf] by canonical category.
// Patterns are sorted by monthly average, largest first.
func (a *Analyzer) Analyze(txns []model.Transaction, asOf time.Time) []model.SpendingPattern {
	start := a.WindowStart(asOf)
	buckets := make(map[string]*bucket)

	for _, txn := range txns {
		if !txn.IsOutflow() || txn.Date.Before(start) || txn.Date.After(asOf) {
			continue
		}

		category := a.lex.Normalize(txn, a.policy.ClosedVocabulary)
		key := strings.ToLower(category)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{category: category}
			buckets[key] = b
		}
		b.entries = append(b.entries, entry{date: txn.Date, amount: txn.Amount})
		b.total = b.total.Add(txn.Amount)
	}

	months := decimal.NewFromInt(int64(a.policy.LookbackMonths))
	patterns := make([]model.SpendingPattern, 0, len(buckets))

	for _, b := range buckets {
		sort.SliceStable(b.entries, func(i, j int) bool {
			return b.entries[i].date.Before(b.entries[j].date)
		})

		amounts := make([]decimal.Decimal, len(b.entries))
		for i, e := range b.entries {
			amounts[i] = e.amount
		}

		patterns = append(patterns, model.SpendingPattern{
			Category:         b.category,
			MonthlyAverage:   b.total.Div(months).Round(2),
			Trend:            ClassifyTrend(amounts, a.policy.TrendIncreaseRatio, a.policy.TrendDecreaseRatio),
			IsEssential:      a.lex.IsEssential(b.category),
			TransactionCount: len(b.entries),
		})
	}

	SortPatterns(patterns)
	return patterns
}

// SortPatterns orders patterns by monthly average descending, then by name.
func SortPatterns(patterns []model.SpendingPattern) {
	sort.SliceStable(patterns, func(i, j int) bool {
		if c := patterns[i].MonthlyAverage.Cmp(patterns[j].MonthlyAverage); c != 0 {
			return c > 0
		}
		return patterns[i].Category < patterns[j].Category
	})
}

// ClassifyTrend compares the mean of the later half of a chronological series
// against the earlier half. Series shorter than two points are stable.
func ClassifyTrend(amounts []decimal.Decimal, increaseRatio, decreaseRatio float64) model.Trend {
	if len(amounts) < 2 {
		return model.TrendStable
	}

	mid := len(amounts) / 2
	first := mean(amounts[:mid])
	second := mean(amounts[mid:])

	switch {
	case second.GreaterThan(first.Mul(decimal.NewFromFloat(increaseRatio))):
		return model.TrendIncreasing
	case second.LessThan(first.Mul(decimal.NewFromFloat(decreaseRatio))):
		return model.TrendDecreasing
	default:
		return model.TrendStable
	}
}

func mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(values[0], values[1:]...).Div(decimal.NewFromInt(int64(len(values))))
}

// Index maps lowercased category names to their patterns.
func Index(patterns []model.SpendingPattern) map[string]model.SpendingPattern {
	idx := make(map[string]model.SpendingPattern, len(patterns))
	for _, p := range patterns {
		idx[strings.ToLower(p.Category)] = p
	}
	return idx
}
