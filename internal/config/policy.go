package config

import (
	"errors"
	"fmt"
)

// ErrInvalidPolicy is returned when a policy value is out of range.
var ErrInvalidPolicy = errors.New("invalid engine policy")

// Policy holds every tunable threshold used by the budget engine.
// Components receive it explicitly; nothing reads package-level defaults.
type Policy struct {
	Income    IncomePolicy    `mapstructure:"income"`
	Spending  SpendingPolicy  `mapstructure:"spending"`
	Synthesis SynthesisPolicy `mapstructure:"synthesis"`
	Insight   InsightPolicy   `mapstructure:"insight"`
	Adjust    AdjustPolicy    `mapstructure:"adjust"`
}

// IncomePolicy configures income detection.
type IncomePolicy struct {
	LookbackMonths   int     `mapstructure:"lookback_months"`
	MaterialityFloor float64 `mapstructure:"materiality_floor"`
	StableMonthRatio float64 `mapstructure:"stable_month_ratio"`
}

// SpendingPolicy configures spending pattern analysis.
type SpendingPolicy struct {
	LookbackMonths     int     `mapstructure:"lookback_months"`
	TrendIncreaseRatio float64 `mapstructure:"trend_increase_ratio"`
	TrendDecreaseRatio float64 `mapstructure:"trend_decrease_ratio"`
	ClosedVocabulary   bool    `mapstructure:"closed_vocabulary"`
}

// SynthesisPolicy configures the four budgeting frameworks.
type SynthesisPolicy struct {
	DefaultSavingsRate float64 `mapstructure:"default_savings_rate"`

	// 50-30-20
	NeedsShare              float64 `mapstructure:"needs_share"`
	WantsShare              float64 `mapstructure:"wants_share"`
	SavingsShare            float64 `mapstructure:"savings_share"`
	EssentialBuffer         float64 `mapstructure:"essential_buffer"`
	EssentialCapRatio       float64 `mapstructure:"essential_cap_ratio"`
	DiscretionaryCapRatio   float64 `mapstructure:"discretionary_cap_ratio"`
	IncreasingTrendMarkdown float64 `mapstructure:"increasing_trend_markdown"`
	EmergencyFundShare      float64 `mapstructure:"emergency_fund_share"`
	RetirementShare         float64 `mapstructure:"retirement_share"`
	DebtPaymentRatio        float64 `mapstructure:"debt_payment_ratio"`
	DebtPaymentMaxShare     float64 `mapstructure:"debt_payment_max_share"`
	GoalsMaterialityFloor   float64 `mapstructure:"goals_materiality_floor"`

	// minimum debt service, shared by 50-30-20 and zero-based
	MinimumPaymentRatio float64 `mapstructure:"minimum_payment_ratio"`

	// zero-based
	ZeroBasedIncreasingDiscount float64 `mapstructure:"zero_based_increasing_discount"`
	ZeroBasedEmergencyShare     float64 `mapstructure:"zero_based_emergency_share"`

	// envelope
	EnvelopeMinTransactions int     `mapstructure:"envelope_min_transactions"`
	EnvelopeDiningDiscount  float64 `mapstructure:"envelope_dining_discount"`
	EnvelopeSavingsFloor    float64 `mapstructure:"envelope_savings_floor"`

	// pay-yourself-first
	PYFEmergencyShare        float64 `mapstructure:"pyf_emergency_share"`
	PYFRetirementShare       float64 `mapstructure:"pyf_retirement_share"`
	PYFEssentialCapRatio     float64 `mapstructure:"pyf_essential_cap_ratio"`
	PYFDiscretionaryCapRatio float64 `mapstructure:"pyf_discretionary_cap_ratio"`
	PYFIncreasingMarkdown    float64 `mapstructure:"pyf_increasing_markdown"`
	PYFStableMarkdown        float64 `mapstructure:"pyf_stable_markdown"`
	PYFDiscretionaryFloor    float64 `mapstructure:"pyf_discretionary_floor"`
}

// InsightPolicy configures insight generation.
type InsightPolicy struct {
	SavingsRatePraise     float64 `mapstructure:"savings_rate_praise"`
	SavingsRateEncourage  float64 `mapstructure:"savings_rate_encourage"`
	MaxTrendingCategories int     `mapstructure:"max_trending_categories"`
}

// AdjustPolicy configures the dynamic adjuster.
type AdjustPolicy struct {
	LookbackMonths     int     `mapstructure:"lookback_months"`
	UnderspendRatio    float64 `mapstructure:"underspend_ratio"`
	OverspendRatio     float64 `mapstructure:"overspend_ratio"`
	UnderspendRecovery float64 `mapstructure:"underspend_recovery"`
	OverspendCoverage  float64 `mapstructure:"overspend_coverage"`
	TrendNudge         float64 `mapstructure:"trend_nudge"`
	IncomeCeiling      float64 `mapstructure:"income_ceiling"`
	LowSavingsRate     float64 `mapstructure:"low_savings_rate"`
	HighSavingsRate    float64 `mapstructure:"high_savings_rate"`
	MaxRecommendations int     `mapstructure:"max_recommendations"`
}

// DefaultPolicy returns the policy the engine ships with.
func DefaultPolicy() Policy {
	return Policy{
		Income: IncomePolicy{
			LookbackMonths:   6,
			MaterialityFloor: 100,
			StableMonthRatio: 0.8,
		},
		Spending: SpendingPolicy{
			LookbackMonths:     3,
			TrendIncreaseRatio: 1.1,
			TrendDecreaseRatio: 0.9,
		},
		Synthesis: SynthesisPolicy{
			DefaultSavingsRate: 0.20,

			NeedsShare:              0.50,
			WantsShare:              0.30,
			SavingsShare:            0.20,
			EssentialBuffer:         0.05,
			EssentialCapRatio:       0.40,
			DiscretionaryCapRatio:   0.30,
			IncreasingTrendMarkdown: 0.10,
			EmergencyFundShare:      0.30,
			RetirementShare:         0.30,
			DebtPaymentRatio:        0.10,
			DebtPaymentMaxShare:     0.50,
			GoalsMaterialityFloor:   50,

			MinimumPaymentRatio: 0.02,

			ZeroBasedIncreasingDiscount: 0.05,
			ZeroBasedEmergencyShare:     0.60,

			EnvelopeMinTransactions: 3,
			EnvelopeDiningDiscount:  0.10,
			EnvelopeSavingsFloor:    0.10,

			PYFEmergencyShare:        0.40,
			PYFRetirementShare:       0.40,
			PYFEssentialCapRatio:     0.70,
			PYFDiscretionaryCapRatio: 0.20,
			PYFIncreasingMarkdown:    0.20,
			PYFStableMarkdown:        0.10,
			PYFDiscretionaryFloor:    20,
		},
		Insight: InsightPolicy{
			SavingsRatePraise:     20,
			SavingsRateEncourage:  10,
			MaxTrendingCategories: 3,
		},
		Adjust: AdjustPolicy{
			LookbackMonths:     2,
			UnderspendRatio:    0.8,
			OverspendRatio:     1.1,
			UnderspendRecovery: 0.5,
			OverspendCoverage:  0.7,
			TrendNudge:         0.05,
			IncomeCeiling:      0.95,
			LowSavingsRate:     0.10,
			HighSavingsRate:    0.30,
			MaxRecommendations: 5,
		},
	}
}

// Validate checks that every threshold is usable.
func (p Policy) Validate() error {
	if p.Income.LookbackMonths <= 0 {
		return fmt.Errorf("%w: income lookback must be positive", ErrInvalidPolicy)
	}
	if p.Spending.LookbackMonths <= 0 {
		return fmt.Errorf("%w: spending lookback must be positive", ErrInvalidPolicy)
	}
	if p.Adjust.LookbackMonths <= 0 {
		return fmt.Errorf("%w: adjust lookback must be positive", ErrInvalidPolicy)
	}
	if p.Spending.TrendIncreaseRatio < 1 || p.Spending.TrendDecreaseRatio > 1 {
		return fmt.Errorf("%w: trend ratios must bracket 1.0", ErrInvalidPolicy)
	}

	fractions := map[string]float64{
		"income.stable_month_ratio":                p.Income.StableMonthRatio,
		"synthesis.default_savings_rate":           p.Synthesis.DefaultSavingsRate,
		"synthesis.essential_cap_ratio":            p.Synthesis.EssentialCapRatio,
		"synthesis.discretionary_cap_ratio":        p.Synthesis.DiscretionaryCapRatio,
		"synthesis.increasing_trend_markdown":      p.Synthesis.IncreasingTrendMarkdown,
		"synthesis.debt_payment_max_share":         p.Synthesis.DebtPaymentMaxShare,
		"synthesis.minimum_payment_ratio":          p.Synthesis.MinimumPaymentRatio,
		"synthesis.zero_based_increasing_discount": p.Synthesis.ZeroBasedIncreasingDiscount,
		"synthesis.zero_based_emergency_share":     p.Synthesis.ZeroBasedEmergencyShare,
		"synthesis.envelope_dining_discount":       p.Synthesis.EnvelopeDiningDiscount,
		"synthesis.envelope_savings_floor":         p.Synthesis.EnvelopeSavingsFloor,
		"synthesis.pyf_essential_cap_ratio":        p.Synthesis.PYFEssentialCapRatio,
		"synthesis.pyf_discretionary_cap_ratio":    p.Synthesis.PYFDiscretionaryCapRatio,
		"synthesis.pyf_increasing_markdown":        p.Synthesis.PYFIncreasingMarkdown,
		"synthesis.pyf_stable_markdown":            p.Synthesis.PYFStableMarkdown,
		"adjust.underspend_recovery":               p.Adjust.UnderspendRecovery,
		"adjust.overspend_coverage":                p.Adjust.OverspendCoverage,
		"adjust.trend_nudge":                       p.Adjust.TrendNudge,
		"adjust.income_ceiling":                    p.Adjust.IncomeCeiling,
	}
	for name, v := range fractions {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be between 0 and 1, got %v", ErrInvalidPolicy, name, v)
		}
	}

	s := p.Synthesis
	if sum := s.NeedsShare + s.WantsShare + s.SavingsShare; sum > 1.0001 {
		return fmt.Errorf("%w: 50-30-20 pool shares sum to %.2f", ErrInvalidPolicy, sum)
	}
	if s.EmergencyFundShare+s.RetirementShare > 1 {
		return fmt.Errorf("%w: emergency and retirement shares exceed the savings pool", ErrInvalidPolicy)
	}
	if s.PYFEmergencyShare+s.PYFRetirementShare > 1 {
		return fmt.Errorf("%w: pay-yourself-first savings shares exceed 1", ErrInvalidPolicy)
	}
	if p.Adjust.UnderspendRatio > 1 || p.Adjust.OverspendRatio < 1 {
		return fmt.Errorf("%w: adjust ratios must bracket 1.0", ErrInvalidPolicy)
	}
	if p.Adjust.MaxRecommendations < 0 || p.Insight.MaxTrendingCategories < 0 {
		return fmt.Errorf("%w: limits cannot be negative", ErrInvalidPolicy)
	}

	return nil
}
