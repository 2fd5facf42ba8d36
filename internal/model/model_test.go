package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_SignConvention(t *testing.T) {
	expense := Transaction{Amount: decimal.NewFromInt(42)}
	paycheck := Transaction{Amount: decimal.NewFromInt(-2500)}
	zero := Transaction{}

	assert.True(t, expense.IsOutflow())
	assert.False(t, expense.IsInflow())
	assert.True(t, paycheck.IsInflow())
	assert.False(t, paycheck.IsOutflow())
	assert.False(t, zero.IsInflow())
	assert.False(t, zero.IsOutflow())
}

func TestTransaction_GenerateHash(t *testing.T) {
	base := Transaction{
		Date:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.RequireFromString("12.5"),
		Name:      "COFFEE",
		AccountID: "chk",
	}
	same := base
	same.Amount = decimal.RequireFromString("12.50")
	other := base
	other.AccountID = "sav"

	assert.Len(t, base.GenerateHash(), 64)
	assert.Equal(t, base.GenerateHash(), same.GenerateHash())
	assert.NotEqual(t, base.GenerateHash(), other.GenerateHash())
}

func TestParseFramework(t *testing.T) {
	for _, f := range Frameworks() {
		got, ok := ParseFramework(" " + string(f) + " ")
		assert.True(t, ok)
		assert.Equal(t, f, got)
	}

	got, ok := ParseFramework("unknown-xyz")
	assert.False(t, ok)
	assert.Equal(t, Framework503020, got)
}

func TestParseEnums(t *testing.T) {
	p, err := ParsePriority("Savings")
	require.NoError(t, err)
	assert.Equal(t, PrioritySavings, p)
	_, err = ParsePriority("luxury")
	assert.Error(t, err)

	f, err := ParseFrequency("BIWEEKLY")
	require.NoError(t, err)
	assert.Equal(t, FrequencyBiweekly, f)
	_, err = ParseFrequency("fortnightly")
	assert.Error(t, err)

	a, err := ParseAccountType("loan")
	require.NoError(t, err)
	assert.True(t, a.IsDebt())
	assert.False(t, AccountSavings.IsDebt())
	_, err = ParseAccountType("crypto")
	assert.Error(t, err)
}

func TestRecurringIncome_MonthlyAmount(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	r := RecurringIncome{
		Frequency:     FrequencyBiweekly,
		GrossAmount:   decimal.NewFromInt(3000),
		NetAmount:     decimal.NewNullDecimal(decimal.NewFromInt(2400)),
		EffectiveFrom: start,
		EffectiveTo:   &end,
	}

	assert.True(t, r.MonthlyAmount().Round(2).Equal(decimal.NewFromInt(5200)), "2400 * 26 / 12")
	assert.True(t, r.ActiveAt(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.ActiveAt(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.ActiveAt(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))

	r.NetAmount = decimal.NullDecimal{}
	r.Frequency = FrequencyMonthly
	assert.True(t, r.MonthlyAmount().Equal(decimal.NewFromInt(3000)))
}

func TestPreferences_TargetSavingsRate(t *testing.T) {
	var p *Preferences
	_, ok := p.TargetSavingsRate()
	assert.False(t, ok)

	pct := 15.0
	rate, ok := (&Preferences{TargetSavingsPercent: &pct}).TargetSavingsRate()
	assert.True(t, ok)
	assert.InDelta(t, 0.15, rate, 1e-9)
}
