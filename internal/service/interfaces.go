// Package service defines the interfaces for the external collaborators the
// budget engine reads from and writes to.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	UserID    string
	Limit     int
	Offset    int
}

// Ledger is the transaction history for a user.
type Ledger interface {
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
}

// IncomeRegistry holds declared recurring income.
type IncomeRegistry interface {
	SaveRecurringIncome(ctx context.Context, income *model.RecurringIncome) error
	GetRecurringIncome(ctx context.Context, userID string) ([]model.RecurringIncome, error)
}

// PreferenceStore holds user-stated budgeting preferences.
type PreferenceStore interface {
	// GetPreferences returns empty preferences when none were saved.
	GetPreferences(ctx context.Context, userID string) (*model.Preferences, error)
	SavePreferences(ctx context.Context, prefs *model.Preferences) error
}

// DebtSource reports account balances and the debt they add up to.
type DebtSource interface {
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccounts(ctx context.Context, userID string) ([]model.Account, error)
	GetOutstandingDebt(ctx context.Context, userID string) (decimal.Decimal, error)
}

// GoalSource holds user savings goals.
type GoalSource interface {
	SaveGoal(ctx context.Context, goal *model.Goal) error
	GetGoals(ctx context.Context, userID string) ([]model.Goal, error)
}

// BudgetStore persists synthesized budgets. Every write is all-or-nothing.
type BudgetStore interface {
	// SaveBudget assigns ids, deactivates the user's previous active budget
	// and stores the header with its categories.
	SaveBudget(ctx context.Context, budget *model.Budget) error
	// GetActiveBudget returns common.ErrNotFound when the user has none.
	GetActiveBudget(ctx context.Context, userID string) (*model.Budget, error)
	GetBudget(ctx context.Context, id string) (*model.Budget, error)
	// ApplyAdjustment writes every revised and new category of an adjustment.
	ApplyAdjustment(ctx context.Context, result *model.AdjustmentResult) error
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	Ledger
	IncomeRegistry
	PreferenceStore
	DebtSource
	GoalSource
	BudgetStore

	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
