package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-budget/internal/common"
	"github.com/Veraticus/spice-budget/internal/model"
)

func testBudget(userID string) *model.Budget {
	return &model.Budget{
		UserID:        userID,
		Framework:     model.Framework503020,
		MonthlyIncome: decimal.NewFromInt(6000),
		TotalBudget:   decimal.NewFromInt(3000),
		Insights:      []string{"Income appears stable"},
		Categories: []model.BudgetCategory{
			{Category: "Housing", Amount: decimal.NewFromInt(1575), Priority: model.PriorityEssential, IsFixed: true},
			{Category: "Food & Dining", Amount: decimal.NewFromInt(270), Priority: model.PriorityDiscretionary},
			{Category: "Emergency Fund", Amount: decimal.NewFromInt(1155), Priority: model.PrioritySavings, Notes: "Build a cushion"},
		},
	}
}

func TestSQLiteStorage_SaveBudget(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	budget := testBudget("user-1")
	require.NoError(t, store.SaveBudget(ctx, budget))

	assert.NotEmpty(t, budget.ID)
	assert.True(t, budget.IsActive)
	assert.False(t, budget.CreatedAt.IsZero())
	for _, c := range budget.Categories {
		assert.NotEmpty(t, c.ID, "category %s should get an ID", c.Category)
	}

	got, err := store.GetActiveBudget(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, budget.ID, got.ID)
	assert.Equal(t, model.Framework503020, got.Framework)
	assert.True(t, got.MonthlyIncome.Equal(decimal.NewFromInt(6000)))
	assert.True(t, got.TotalBudget.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, []string{"Income appears stable"}, got.Insights)
	assert.Empty(t, got.Warnings)

	require.Len(t, got.Categories, 3)
	assert.Equal(t, "Housing", got.Categories[0].Category)
	assert.True(t, got.Categories[0].IsFixed)
	assert.Equal(t, "Food & Dining", got.Categories[1].Category)
	assert.Equal(t, model.PrioritySavings, got.Categories[2].Priority)
	assert.Equal(t, "Build a cushion", got.Categories[2].Notes)
}

func TestSQLiteStorage_SaveBudget_DeactivatesPrevious(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first := testBudget("user-1")
	require.NoError(t, store.SaveBudget(ctx, first))

	second := testBudget("user-1")
	second.Framework = model.FrameworkZeroBased
	require.NoError(t, store.SaveBudget(ctx, second))

	other := testBudget("user-2")
	require.NoError(t, store.SaveBudget(ctx, other))

	active, err := store.GetActiveBudget(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	old, err := store.GetBudget(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, old.IsActive)

	var activeCount int
	require.NoError(t, store.db.QueryRow(
		`SELECT COUNT(*) FROM budgets WHERE user_id = ? AND is_active = 1`, "user-1").Scan(&activeCount))
	assert.Equal(t, 1, activeCount)

	// Another user's budget is untouched.
	otherActive, err := store.GetActiveBudget(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, other.ID, otherActive.ID)
}

func TestSQLiteStorage_SaveBudget_Invalid(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		mutate func(*model.Budget)
		name   string
	}{
		{name: "missing user", mutate: func(b *model.Budget) { b.UserID = "" }},
		{name: "unknown framework", mutate: func(b *model.Budget) { b.Framework = "kakeibo" }},
		{name: "negative amount", mutate: func(b *model.Budget) { b.Categories[0].Amount = decimal.NewFromInt(-1) }},
		{name: "unnamed category", mutate: func(b *model.Budget) { b.Categories[1].Category = " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBudget("user-1")
			tt.mutate(b)
			assert.ErrorIs(t, store.SaveBudget(ctx, b), ErrInvalidBudget)
		})
	}

	assert.ErrorIs(t, store.SaveBudget(ctx, nil), ErrNilParameter)

	_, err := store.GetActiveBudget(ctx, "user-1")
	assert.ErrorIs(t, err, common.ErrNotFound, "failed saves must not leave a budget behind")
}

func TestSQLiteStorage_GetBudget_NotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.GetActiveBudget(ctx, "nobody")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = store.GetBudget(ctx, "missing-id")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_ApplyAdjustment(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	budget := testBudget("user-1")
	require.NoError(t, store.SaveBudget(ctx, budget))

	food := budget.Categories[1]
	result := &model.AdjustmentResult{
		BudgetID:    budget.ID,
		TotalBefore: decimal.NewFromInt(3000),
		TotalAfter:  decimal.NewFromInt(3000),
		Categories: []model.AdjustedCategory{
			{BudgetCategory: budget.Categories[0], SuggestedAmount: budget.Categories[0].Amount},
			{
				BudgetCategory:   food,
				SuggestedAmount:  decimal.NewFromInt(220),
				AdjustmentReason: "Spending ran under budget",
				Changed:          true,
			},
			{BudgetCategory: budget.Categories[2], SuggestedAmount: budget.Categories[2].Amount},
			{
				BudgetCategory: model.BudgetCategory{
					Category: "Savings/Investment",
					Priority: model.PrioritySavings,
				},
				SuggestedAmount:  decimal.NewFromInt(50),
				AdjustmentReason: "Reallocated from underspent categories",
				Changed:          true,
				IsNew:            true,
			},
		},
	}

	require.NoError(t, store.ApplyAdjustment(ctx, result))
	assert.NotEmpty(t, result.Categories[3].ID)

	got, err := store.GetBudget(ctx, budget.ID)
	require.NoError(t, err)
	require.Len(t, got.Categories, 4)

	assert.True(t, got.Categories[0].Amount.Equal(decimal.NewFromInt(1575)))
	assert.True(t, got.Categories[1].Amount.Equal(decimal.NewFromInt(220)))
	assert.Equal(t, "Savings/Investment", got.Categories[3].Category)
	assert.True(t, got.Categories[3].Amount.Equal(decimal.NewFromInt(50)))
	assert.True(t, got.TotalBudget.Equal(decimal.NewFromInt(3000)))

	var reason string
	require.NoError(t, store.db.QueryRow(
		`SELECT adjustment_reason FROM budget_categories WHERE id = ?`, food.ID).Scan(&reason))
	assert.Equal(t, "Spending ran under budget", reason)
}

func TestSQLiteStorage_ApplyAdjustment_Atomic(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	budget := testBudget("user-1")
	require.NoError(t, store.SaveBudget(ctx, budget))

	result := &model.AdjustmentResult{
		BudgetID:   budget.ID,
		TotalAfter: decimal.NewFromInt(1),
		Categories: []model.AdjustedCategory{
			{BudgetCategory: budget.Categories[1], SuggestedAmount: decimal.NewFromInt(10), Changed: true},
			{
				BudgetCategory:  model.BudgetCategory{ID: "no-such-line", Category: "Ghost"},
				SuggestedAmount: decimal.NewFromInt(10),
				Changed:         true,
			},
		},
	}

	err := store.ApplyAdjustment(ctx, result)
	require.ErrorIs(t, err, common.ErrNotFound)

	got, err := store.GetBudget(ctx, budget.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalBudget.Equal(decimal.NewFromInt(3000)), "total must roll back")
	assert.True(t, got.Categories[1].Amount.Equal(decimal.NewFromInt(270)), "category must roll back")
}

func TestSQLiteStorage_ApplyAdjustment_MissingBudget(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	err := store.ApplyAdjustment(context.Background(), &model.AdjustmentResult{BudgetID: "missing"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}
