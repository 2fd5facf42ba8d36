package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency describes how often an income stream pays out.
type Frequency string

// Frequency constants.
const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyOther    Frequency = "other"
)

var (
	weeklyFactor   = decimal.NewFromInt(52).Div(decimal.NewFromInt(12))
	biweeklyFactor = decimal.NewFromInt(26).Div(decimal.NewFromInt(12))
)

// ParseFrequency converts a string into a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyOther:
		return f, nil
	default:
		return "", fmt.Errorf("unknown income frequency %q", s)
	}
}

// MonthlyFactor is the multiplier that converts one pay period into a
// monthly equivalent.
func (f Frequency) MonthlyFactor() decimal.Decimal {
	switch f {
	case FrequencyWeekly:
		return weeklyFactor
	case FrequencyBiweekly:
		return biweeklyFactor
	case FrequencyMonthly, FrequencyOther:
		return decimal.NewFromInt(1)
	default:
		return decimal.NewFromInt(1)
	}
}

// RecurringIncome is a declared income record from the income registry.
// Amounts are per pay period.
type RecurringIncome struct {
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	UserID        string
	Source        string
	Frequency     Frequency
	GrossAmount   decimal.Decimal
	NetAmount     decimal.NullDecimal
	ID            int64
}

// PeriodAmount returns the net amount when present, otherwise the gross.
func (r RecurringIncome) PeriodAmount() decimal.Decimal {
	if r.NetAmount.Valid && r.NetAmount.Decimal.IsPositive() {
		return r.NetAmount.Decimal
	}
	return r.GrossAmount
}

// MonthlyAmount converts the period amount into a monthly equivalent.
func (r RecurringIncome) MonthlyAmount() decimal.Decimal {
	return r.PeriodAmount().Mul(r.Frequency.MonthlyFactor())
}

// ActiveAt reports whether the record is in effect at t.
func (r RecurringIncome) ActiveAt(t time.Time) bool {
	if !r.EffectiveFrom.IsZero() && r.EffectiveFrom.After(t) {
		return false
	}
	if r.EffectiveTo != nil && r.EffectiveTo.Before(t) {
		return false
	}
	return true
}

// IncomeStream is one source of income, normalized to a monthly amount.
type IncomeStream struct {
	Source        string
	Frequency     Frequency
	MonthlyAmount decimal.Decimal
	IsStable      bool
	Declared      bool
}

// Stability classifies how predictable the combined income is.
type Stability string

// Stability constants.
const (
	StabilityStable    Stability = "stable"
	StabilityVariable  Stability = "variable"
	StabilityUncertain Stability = "uncertain"
)

// IncomeAnalysis is the output of the income analyzer.
type IncomeAnalysis struct {
	Stability     Stability
	Streams       []IncomeStream
	MonthlyIncome decimal.Decimal
}

// HasIncome reports whether any income was found.
func (a IncomeAnalysis) HasIncome() bool {
	return a.MonthlyIncome.IsPositive()
}
