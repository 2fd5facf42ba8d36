package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Preferences holds user-stated budgeting preferences.
type Preferences struct {
	TargetSavingsPercent *float64
	UserID               string
	BudgetFramework      string
}

// TargetSavingsRate returns the target savings rate as a fraction, if set.
func (p *Preferences) TargetSavingsRate() (float64, bool) {
	if p == nil || p.TargetSavingsPercent == nil {
		return 0, false
	}
	return *p.TargetSavingsPercent / 100, true
}

// AccountType identifies the kind of financial account.
type AccountType string

// Account type constants.
const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCredit     AccountType = "credit"
	AccountLoan       AccountType = "loan"
	AccountInvestment AccountType = "investment"
)

// ParseAccountType converts a string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(strings.ToLower(strings.TrimSpace(s))); t {
	case AccountChecking, AccountSavings, AccountCredit, AccountLoan, AccountInvestment:
		return t, nil
	default:
		return "", fmt.Errorf("unknown account type %q", s)
	}
}

// IsDebt reports whether balances of this type count as outstanding debt.
func (t AccountType) IsDebt() bool {
	switch t {
	case AccountCredit, AccountLoan:
		return true
	case AccountChecking, AccountSavings, AccountInvestment:
		return false
	default:
		return false
	}
}

// Account is a financial account with its current balance.
type Account struct {
	ID      string
	UserID  string
	Name    string
	Type    AccountType
	Balance decimal.Decimal
}

// Goal is a user savings goal. Goals inform budget notes only.
type Goal struct {
	TargetDate   *time.Time
	UserID       string
	Name         string
	TargetAmount decimal.Decimal
	ID           int64
}
