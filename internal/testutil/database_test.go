package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-budget/internal/model"
	"github.com/Veraticus/spice-budget/internal/service"
	"github.com/Veraticus/spice-budget/internal/testutil/ledger"
)

func TestSetupTestDB_SeedsLedger(t *testing.T) {
	asOf := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	txns := ledger.New(asOf).
		Monthly("Rent", 1500, 1500, 1500).
		Paychecks("ACME PAYROLL", 2500, 14, 4).
		Build()

	db := SetupTestDBWithOptions(t, TestDBOptions{Transactions: txns})

	got, err := db.Storage.GetTransactions(context.Background(), service.TransactionFilter{UserID: "test-user"})
	require.NoError(t, err)
	assert.Len(t, got, 7)

	inflows := 0
	for _, txn := range got {
		if txn.IsInflow() {
			inflows++
		}
	}
	assert.Equal(t, 4, inflows)
}

func TestSetupTestDB_SeedHelpers(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()

	db.SeedAccounts(&model.Account{UserID: "u", Name: "Visa", Type: model.AccountCredit, Balance: decimal.NewFromInt(-700)})
	db.SeedGoals(&model.Goal{UserID: "u", Name: "Car", TargetAmount: decimal.NewFromInt(5000)})
	db.SeedIncome(&model.RecurringIncome{
		UserID: "u", Source: "Acme", Frequency: model.FrequencyMonthly, GrossAmount: decimal.NewFromInt(4000),
	})

	debt, err := db.Storage.GetOutstandingDebt(ctx, "u")
	require.NoError(t, err)
	assert.True(t, debt.Equal(decimal.NewFromInt(700)))

	goals, err := db.Storage.GetGoals(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, goals, 1)

	income, err := db.Storage.GetRecurringIncome(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, income, 1)
}
