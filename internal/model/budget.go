package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Priority tags a budget category for caps and floors.
type Priority string

// Priority constants.
const (
	PriorityEssential     Priority = "essential"
	PriorityDiscretionary Priority = "discretionary"
	PrioritySavings       Priority = "savings"
)

// ParsePriority converts a string into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityEssential, PriorityDiscretionary, PrioritySavings:
		return p, nil
	default:
		return "", fmt.Errorf("unknown budget priority %q", s)
	}
}

// Framework is a named budgeting methodology.
type Framework string

// Framework constants.
const (
	Framework503020           Framework = "50-30-20"
	FrameworkZeroBased        Framework = "zero-based"
	FrameworkEnvelope         Framework = "envelope"
	FrameworkPayYourselfFirst Framework = "pay-yourself-first"
)

// DefaultFramework is used whenever a framework is missing or unrecognized.
const DefaultFramework = Framework503020

// Frameworks lists every supported framework.
func Frameworks() []Framework {
	return []Framework{Framework503020, FrameworkZeroBased, FrameworkEnvelope, FrameworkPayYourselfFirst}
}

// ParseFramework resolves a framework name. Unrecognized names resolve to
// DefaultFramework and report ok=false so callers can log the fallback.
func ParseFramework(s string) (Framework, bool) {
	switch f := Framework(strings.ToLower(strings.TrimSpace(s))); f {
	case Framework503020, FrameworkZeroBased, FrameworkEnvelope, FrameworkPayYourselfFirst:
		return f, true
	default:
		return DefaultFramework, false
	}
}

// BudgetCategory is one line of a budget.
type BudgetCategory struct {
	ID       string
	Category string
	Priority Priority
	Notes    string
	Amount   decimal.Decimal
	IsFixed  bool
}

// BudgetResult is the terminal output of budget synthesis.
type BudgetResult struct {
	Framework     Framework
	Categories    []BudgetCategory
	Insights      []string
	Warnings      []string
	TotalBudget   decimal.Decimal
	MonthlyIncome decimal.Decimal
}

// SumByPriority totals the categories carrying the given priority.
func (r BudgetResult) SumByPriority(p Priority) decimal.Decimal {
	total := decimal.Zero
	for _, c := range r.Categories {
		if c.Priority == p {
			total = total.Add(c.Amount)
		}
	}
	return total
}

// Budget is a persisted budget header with its categories.
type Budget struct {
	CreatedAt     time.Time
	ID            string
	UserID        string
	Framework     Framework
	Categories    []BudgetCategory
	Insights      []string
	Warnings      []string
	TotalBudget   decimal.Decimal
	MonthlyIncome decimal.Decimal
	IsActive      bool
}
