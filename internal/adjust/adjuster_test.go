package adjust

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-budget/internal/config"
	"github.com/Veraticus/spice-budget/internal/lexicon"
	"github.com/Veraticus/spice-budget/internal/model"
)

var june = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func newAdjuster() *Adjuster {
	return NewAdjuster(lexicon.Default(), config.DefaultPolicy().Adjust)
}

func line(name string, amount int64, priority model.Priority, fixed bool) model.BudgetCategory {
	return model.BudgetCategory{
		ID:       "id-" + name,
		Category: name,
		Amount:   decimal.NewFromInt(amount),
		Priority: priority,
		IsFixed:  fixed,
	}
}

func spent(name string, avg int64, trend model.Trend) model.SpendingPattern {
	return model.SpendingPattern{Category: name, MonthlyAverage: decimal.NewFromInt(avg), Trend: trend, TransactionCount: 4}
}

func suggested(t *testing.T, r model.AdjustmentResult, name string) model.AdjustedCategory {
	t.Helper()
	for _, c := range r.Categories {
		if c.Category == name {
			return c
		}
	}
	require.Failf(t, "missing category", "%s", name)
	return model.AdjustedCategory{}
}

func TestAdjust_CategoryRules(t *testing.T) {
	tests := []struct {
		name       string
		want       string
		wantReason string
		category   model.BudgetCategory
		patterns   []model.SpendingPattern
		changed    bool
	}{
		{
			name:       "underspend reduces by half the gap",
			category:   line("Shopping", 600, model.PriorityDiscretionary, false),
			patterns:   []model.SpendingPattern{spent("Shopping", 300, model.TrendStable)},
			want:       "450.00",
			wantReason: "reduced toward actual spending",
			changed:    true,
		},
		{
			name:       "overspend covers seventy percent of the gap",
			category:   line("Shopping", 500, model.PriorityDiscretionary, false),
			patterns:   []model.SpendingPattern{spent("Shopping", 1000, model.TrendStable)},
			want:       "850.00",
			wantReason: "increased toward actual spending",
			changed:    true,
		},
		{
			name:       "increasing trend nudges up",
			category:   line("Shopping", 200, model.PriorityDiscretionary, false),
			patterns:   []model.SpendingPattern{spent("Shopping", 210, model.TrendIncreasing)},
			want:       "210.00",
			wantReason: "trending up",
			changed:    true,
		},
		{
			name:       "decreasing trend nudges down",
			category:   line("Shopping", 200, model.PriorityDiscretionary, false),
			patterns:   []model.SpendingPattern{spent("Shopping", 190, model.TrendDecreasing)},
			want:       "190.00",
			wantReason: "trending down",
			changed:    true,
		},
		{
			name:     "stable and on budget is untouched",
			category: line("Shopping", 200, model.PriorityDiscretionary, false),
			patterns: []model.SpendingPattern{spent("Shopping", 205, model.TrendStable)},
			want:     "200.00",
		},
		{
			name:     "fixed passes through",
			category: line("Housing", 1500, model.PriorityEssential, true),
			patterns: []model.SpendingPattern{spent("Housing", 3000, model.TrendIncreasing)},
			want:     "1500.00",
		},
		{
			name:     "savings passes through",
			category: line("Emergency Fund", 300, model.PrioritySavings, false),
			patterns: []model.SpendingPattern{spent("Emergency Fund", 10, model.TrendStable)},
			want:     "300.00",
		},
		{
			name:     "no history is untouched",
			category: line("Travel", 400, model.PriorityDiscretionary, false),
			want:     "400.00",
		},
		{
			name:       "minimum floor clamps up",
			category:   line("Food & Dining", 250, model.PriorityDiscretionary, false),
			patterns:   []model.SpendingPattern{spent("Food & Dining", 50, model.TrendStable)},
			want:       "200.00",
			wantReason: "raised to the $200.00 minimum",
			changed:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newAdjuster().Adjust([]model.BudgetCategory{tt.category}, tt.patterns, decimal.NewFromInt(100000), june)

			got := suggested(t, result, tt.category.Category)
			assert.Equal(t, tt.want, got.SuggestedAmount.StringFixed(2))
			assert.Equal(t, tt.changed, got.Changed)
			assert.True(t, got.Amount.Equal(tt.category.Amount), "current amount must be preserved")
			if tt.wantReason != "" {
				assert.Contains(t, got.AdjustmentReason, tt.wantReason)
			}
		})
	}
}

func TestAdjust_NetSavingsCreatesCategory(t *testing.T) {
	current := []model.BudgetCategory{
		line("Shopping", 600, model.PriorityDiscretionary, false),
		line("Food & Dining", 250, model.PriorityDiscretionary, false),
	}
	patterns := []model.SpendingPattern{
		spent("Shopping", 300, model.TrendStable),
		spent("Food & Dining", 50, model.TrendStable),
	}

	result := newAdjuster().Adjust(current, patterns, decimal.NewFromInt(5000), june)

	require.Len(t, result.Categories, 3)
	savings := result.Categories[2]
	assert.Equal(t, lexicon.SavingsInvestment, savings.Category)
	assert.True(t, savings.IsNew)
	assert.True(t, savings.Changed)
	assert.Equal(t, model.PrioritySavings, savings.Priority)
	assert.Equal(t, "200.00", savings.SuggestedAmount.StringFixed(2))
	assert.True(t, result.TotalBefore.Equal(result.TotalAfter))
	assert.Len(t, result.Changed(), 3)
}

func TestAdjust_NetSavingsUsesExistingCategory(t *testing.T) {
	current := []model.BudgetCategory{
		line("Shopping", 600, model.PriorityDiscretionary, false),
		line("Savings", 300, model.PrioritySavings, false),
	}
	patterns := []model.SpendingPattern{spent("Shopping", 300, model.TrendStable)}

	result := newAdjuster().Adjust(current, patterns, decimal.NewFromInt(5000), june)

	require.Len(t, result.Categories, 2)
	got := suggested(t, result, "Savings")
	assert.Equal(t, "450.00", got.SuggestedAmount.StringFixed(2))
	assert.Contains(t, got.AdjustmentReason, "$150.00")
}

func TestAdjust_NetIncreaseIsNotTakenFromSavings(t *testing.T) {
	current := []model.BudgetCategory{
		line("Shopping", 500, model.PriorityDiscretionary, false),
		line("Savings", 300, model.PrioritySavings, false),
	}
	patterns := []model.SpendingPattern{spent("Shopping", 1000, model.TrendStable)}

	result := newAdjuster().Adjust(current, patterns, decimal.NewFromInt(10000), june)

	assert.Equal(t, "300.00", suggested(t, result, "Savings").SuggestedAmount.StringFixed(2))
}

func TestAdjust_ScalesToIncomeCeiling(t *testing.T) {
	current := []model.BudgetCategory{
		line("Housing", 1500, model.PriorityEssential, true),
		line("Groceries", 800, model.PriorityEssential, false),
		line("Transportation", 1000, model.PriorityEssential, false),
		line("Shopping", 1500, model.PriorityDiscretionary, false),
		line("Travel", 1000, model.PriorityDiscretionary, false),
	}
	patterns := []model.SpendingPattern{spent("Shopping", 2000, model.TrendStable)}

	result := newAdjuster().Adjust(current, patterns, decimal.NewFromInt(5000), june)

	assert.True(t, result.TotalBefore.Equal(decimal.NewFromInt(5800)))
	assert.True(t, result.TotalAfter.LessThanOrEqual(decimal.NewFromInt(4750)), result.TotalAfter.String())
	assert.True(t, result.TotalAfter.GreaterThan(decimal.RequireFromString("4749.95")), result.TotalAfter.String())

	housing := suggested(t, result, "Housing")
	assert.False(t, housing.Changed)
	assert.Empty(t, housing.AdjustmentReason)

	factor := decimal.NewFromInt(3250).Div(decimal.NewFromInt(4650))
	for _, name := range []string{"Groceries", "Transportation", "Travel"} {
		c := suggested(t, result, name)
		assert.True(t, c.Changed)
		assert.Contains(t, c.AdjustmentReason, "within 95% of income")
		assert.Equal(t, c.Amount.Mul(factor).Truncate(2).String(), c.SuggestedAmount.String(), name)
	}
	assert.Contains(t, suggested(t, result, "Shopping").AdjustmentReason, "within 95% of income")
}

func TestAdjust_DoesNotMutateInput(t *testing.T) {
	current := []model.BudgetCategory{line("Shopping", 600, model.PriorityDiscretionary, false)}
	patterns := []model.SpendingPattern{spent("Shopping", 100, model.TrendStable)}

	newAdjuster().Adjust(current, patterns, decimal.NewFromInt(5000), june)

	assert.True(t, current[0].Amount.Equal(decimal.NewFromInt(600)))
}

func TestAdjust_Recommendations(t *testing.T) {
	current := []model.BudgetCategory{
		line("Food & Dining", 600, model.PriorityDiscretionary, false),
		line("Shopping", 500, model.PriorityDiscretionary, false),
	}
	patterns := []model.SpendingPattern{
		spent("Food & Dining", 1000, model.TrendStable),
		spent("Shopping", 100, model.TrendStable),
	}
	december := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)

	result := newAdjuster().Adjust(current, patterns, decimal.NewFromInt(5000), december)

	require.Len(t, result.Recommendations, 5)
	assert.Contains(t, result.Recommendations[0], "savings rate is 0%")
	assert.Contains(t, result.Recommendations[1], "overspend on Food & Dining")
	assert.Contains(t, result.Recommendations[2], "less than planned on Shopping")
	assert.Contains(t, result.Recommendations[3], "Emergency Fund")
	assert.Contains(t, result.Recommendations[4], "Savings category")
}

func TestAdjust_SeasonalAndPraise(t *testing.T) {
	current := []model.BudgetCategory{
		line("Housing", 1500, model.PriorityEssential, true),
		line("Healthcare", 200, model.PriorityEssential, false),
		line("Emergency Fund", 800, model.PrioritySavings, false),
		line("Savings", 800, model.PrioritySavings, false),
	}
	january := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

	result := newAdjuster().Adjust(current, nil, decimal.NewFromInt(5000), january)

	assert.Equal(t, []string{
		"Excellent: you are saving 32% of your income.",
		"January is a good time for an annual review of your budget.",
	}, result.Recommendations)
	assert.Empty(t, result.Changed())
}
