package spending

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-budget/internal/config"
	"github.com/Veraticus/spice-budget/internal/lexicon"
	"github.com/Veraticus/spice-budget/internal/model"
	"github.com/Veraticus/spice-budget/internal/testutil/ledger"
)

var asOf = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func decimals(values ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name   string
		want   model.Trend
		series []float64
	}{
		{name: "rising halves", series: []float64{100, 100, 100, 200, 200, 200}, want: model.TrendIncreasing},
		{name: "falling halves", series: []float64{200, 200, 200, 100, 100, 100}, want: model.TrendDecreasing},
		{name: "flat", series: []float64{150, 150, 150, 150}, want: model.TrendStable},
		{name: "single observation", series: []float64{500}, want: model.TrendStable},
		{name: "empty", series: nil, want: model.TrendStable},
		{name: "within ten percent", series: []float64{100, 109}, want: model.TrendStable},
		{name: "odd length puts middle in later half", series: []float64{100, 300, 300}, want: model.TrendIncreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTrend(decimals(tt.series...), 1.1, 0.9))
		})
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	txns := ledger.New(asOf).
		Monthly("Rent", 1500, 1500, 1500).
		Monthly("Restaurants", 50, 100, 150).
		SpendAt("NETFLIX.COM", 15.99, 10).
		Deposit("ACME PAYROLL", 3000, 3).
		Spend("Groceries", 999, 120).
		Build()

	analyzer := NewAnalyzer(lexicon.Default(), config.DefaultPolicy().Spending)
	patterns := analyzer.Analyze(txns, asOf)

	require.Len(t, patterns, 3)

	assert.Equal(t, "Housing", patterns[0].Category)
	assert.True(t, patterns[0].MonthlyAverage.Equal(decimal.NewFromInt(1500)))
	assert.True(t, patterns[0].IsEssential)
	assert.Equal(t, model.TrendStable, patterns[0].Trend)
	assert.Equal(t, 3, patterns[0].TransactionCount)

	assert.Equal(t, "Food & Dining", patterns[1].Category)
	assert.True(t, patterns[1].MonthlyAverage.Equal(decimal.NewFromInt(100)))
	assert.False(t, patterns[1].IsEssential)
	assert.Equal(t, model.TrendIncreasing, patterns[1].Trend)

	assert.Equal(t, "Subscriptions", patterns[2].Category)
	assert.True(t, patterns[2].MonthlyAverage.Equal(decimal.RequireFromString("5.33")))
	assert.Equal(t, 1, patterns[2].TransactionCount)
}

func TestAnalyzer_PassThroughAndClosedVocabulary(t *testing.T) {
	txns := ledger.New(asOf).Spend("Hobbies", 90, 5).Build()
	policy := config.DefaultPolicy().Spending

	open := NewAnalyzer(lexicon.Default(), policy).Analyze(txns, asOf)
	require.Len(t, open, 1)
	assert.Equal(t, "Hobbies", open[0].Category)

	policy.ClosedVocabulary = true
	closed := NewAnalyzer(lexicon.Default(), policy).Analyze(txns, asOf)
	require.Len(t, closed, 1)
	assert.Equal(t, "Miscellaneous", closed[0].Category)
}

func TestAnalyzer_NoTransactions(t *testing.T) {
	analyzer := NewAnalyzer(lexicon.Default(), config.DefaultPolicy().Spending)
	assert.Empty(t, analyzer.Analyze(nil, asOf))
}

func TestAnalyzer_WithLookback(t *testing.T) {
	txns := ledger.New(asOf).Spend("Groceries", 300, 45).Build()
	base := NewAnalyzer(lexicon.Default(), config.DefaultPolicy().Spending)

	short := base.WithLookback(1)
	assert.Equal(t, 1, short.LookbackMonths())
	assert.Equal(t, 3, base.LookbackMonths())
	assert.Empty(t, short.Analyze(txns, asOf))

	patterns := base.Analyze(txns, asOf)
	require.Len(t, patterns, 1)
	assert.True(t, patterns[0].MonthlyAverage.Equal(decimal.NewFromInt(100)))
}

func TestAnalyzer_Deterministic(t *testing.T) {
	txns := ledger.New(asOf).
		Spend("Shopping", 100, 3).
		Spend("Clothing", 100, 4).
		Spend("Pets", 100, 5).
		Build()
	analyzer := NewAnalyzer(lexicon.Default(), config.DefaultPolicy().Spending)

	first := analyzer.Analyze(txns, asOf)
	second := analyzer.Analyze(txns, asOf)
	assert.Equal(t, first, second)
	assert.Equal(t, "Clothing", first[0].Category)
}
