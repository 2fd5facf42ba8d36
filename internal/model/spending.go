package model

import "github.com/shopspring/decimal"

// Trend is the direction a category's spending is moving in.
type Trend string

// Trend constants.
const (
	TrendIncreasing Trend = "increasing"
	TrendStable     Trend = "stable"
	TrendDecreasing Trend = "decreasing"
)

// SpendingPattern summarizes one canonical category over a lookback window.
type SpendingPattern struct {
	Category         string
	Trend            Trend
	MonthlyAverage   decimal.Decimal
	TransactionCount int
	IsEssential      bool
}
