// Package storage provides the data persistence layer for the spice application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-budget/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidIncome      = errors.New("invalid recurring income")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidGoal        = errors.New("invalid goal")
	ErrInvalidPreferences = errors.New("invalid preferences")
	ErrInvalidBudget      = errors.New("invalid budget")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidTransaction)
	}
	return nil
}

func validateRecurringIncome(income *model.RecurringIncome) error {
	if income == nil {
		return fmt.Errorf("%w: recurring income", ErrNilParameter)
	}
	if strings.TrimSpace(income.UserID) == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidIncome)
	}
	if strings.TrimSpace(income.Source) == "" {
		return fmt.Errorf("%w: missing source", ErrInvalidIncome)
	}
	if _, err := model.ParseFrequency(string(income.Frequency)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIncome, err)
	}
	if !income.GrossAmount.IsPositive() {
		return fmt.Errorf("%w: gross amount must be positive", ErrInvalidIncome)
	}
	if income.NetAmount.Valid && income.NetAmount.Decimal.IsNegative() {
		return fmt.Errorf("%w: net amount cannot be negative", ErrInvalidIncome)
	}
	if income.EffectiveTo != nil && income.EffectiveTo.Before(income.EffectiveFrom) {
		return fmt.Errorf("%w: effective range ends before it starts", ErrInvalidIncome)
	}
	return nil
}

func validatePreferences(prefs *model.Preferences) error {
	if prefs == nil {
		return fmt.Errorf("%w: preferences", ErrNilParameter)
	}
	if strings.TrimSpace(prefs.UserID) == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidPreferences)
	}
	if p := prefs.TargetSavingsPercent; p != nil && (*p < 0 || *p > 100) {
		return fmt.Errorf("%w: target savings percent must be between 0 and 100", ErrInvalidPreferences)
	}
	return nil
}

func validateAccount(account *model.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if strings.TrimSpace(account.UserID) == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidAccount)
	}
	if strings.TrimSpace(account.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAccount)
	}
	if _, err := model.ParseAccountType(string(account.Type)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	return nil
}

func validateGoal(goal *model.Goal) error {
	if goal == nil {
		return fmt.Errorf("%w: goal", ErrNilParameter)
	}
	if strings.TrimSpace(goal.UserID) == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidGoal)
	}
	if strings.TrimSpace(goal.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidGoal)
	}
	if !goal.TargetAmount.IsPositive() {
		return fmt.Errorf("%w: target amount must be positive", ErrInvalidGoal)
	}
	return nil
}

func validateBudget(budget *model.Budget) error {
	if budget == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if strings.TrimSpace(budget.UserID) == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidBudget)
	}
	if _, ok := model.ParseFramework(string(budget.Framework)); !ok {
		return fmt.Errorf("%w: unknown framework %q", ErrInvalidBudget, budget.Framework)
	}
	for i, c := range budget.Categories {
		if strings.TrimSpace(c.Category) == "" {
			return fmt.Errorf("%w: category at index %d has no name", ErrInvalidBudget, i)
		}
		if c.Amount.IsNegative() {
			return fmt.Errorf("%w: category %q has a negative amount", ErrInvalidBudget, c.Category)
		}
		if _, err := model.ParsePriority(string(c.Priority)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBudget, err)
		}
	}
	return nil
}
