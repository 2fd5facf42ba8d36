package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/model"
)

// GetPreferences returns a user's preferences, or empty preferences if none
// were saved.
func (s *SQLiteStorage) GetPreferences(ctx context.Context, userID string) (*model.Preferences, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	prefs := &model.Preferences{UserID: userID}
	var (
		framework sql.NullString
		target    sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT budget_framework, target_savings_percent
		FROM preferences
		WHERE user_id = ?
	`, userID).Scan(&framework, &target)
	if errors.Is(err, sql.ErrNoRows) {
		return prefs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	prefs.BudgetFramework = framework.String
	if target.Valid {
		v := target.Float64
		prefs.TargetSavingsPercent = &v
	}
	return prefs, nil
}

// SavePreferences inserts or replaces a user's preferences.
func (s *SQLiteStorage) SavePreferences(ctx context.Context, prefs *model.Preferences) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePreferences(prefs); err != nil {
		return err
	}

	var target sql.NullFloat64
	if prefs.TargetSavingsPercent != nil {
		target = sql.NullFloat64{Float64: *prefs.TargetSavingsPercent, Valid: true}
	}
	var framework sql.NullString
	if prefs.BudgetFramework != "" {
		framework = sql.NullString{String: prefs.BudgetFramework, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (user_id, budget_framework, target_savings_percent, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			budget_framework = excluded.budget_framework,
			target_savings_percent = excluded.target_savings_percent,
			updated_at = CURRENT_TIMESTAMP
	`, prefs.UserID, framework, target)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// SaveAccount inserts or updates an account. Accounts without an ID get one.
func (s *SQLiteStorage) SaveAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, type, balance, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			balance = excluded.balance,
			updated_at = CURRENT_TIMESTAMP
	`, account.ID, account.UserID, account.Name, string(account.Type), account.Balance.String())
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// GetAccounts returns a user's accounts ordered by name.
func (s *SQLiteStorage) GetAccounts(ctx context.Context, userID string) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, type, balance
		FROM accounts
		WHERE user_id = ?
		ORDER BY name, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var (
			acct     model.Account
			acctType string
		)
		if err := rows.Scan(&acct.ID, &acct.UserID, &acct.Name, &acctType, &acct.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if acct.Type, err = model.ParseAccountType(acctType); err != nil {
			return nil, fmt.Errorf("account %s: %w", acct.ID, err)
		}
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// GetOutstandingDebt sums the balances owed on credit and loan accounts.
func (s *SQLiteStorage) GetOutstandingDebt(ctx context.Context, userID string) (decimal.Decimal, error) {
	accounts, err := s.GetAccounts(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, a := range accounts {
		if a.Type.IsDebt() {
			total = total.Add(a.Balance.Abs())
		}
	}

	slog.Debug("Computed outstanding debt", "user", userID, "accounts", len(accounts), "debt", total.String())
	return total, nil
}

// SaveGoal stores a savings goal and assigns its ID.
func (s *SQLiteStorage) SaveGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}

	var target sql.NullTime
	if goal.TargetDate != nil {
		target = sql.NullTime{Time: goal.TargetDate.UTC(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (user_id, name, target_amount, target_date)
		VALUES (?, ?, ?, ?)
	`, goal.UserID, goal.Name, goal.TargetAmount.String(), target)
	if err != nil {
		return fmt.Errorf("failed to save goal: %w", err)
	}

	if goal.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to get goal id: %w", err)
	}
	return nil
}

// GetGoals returns a user's goals in creation order.
func (s *SQLiteStorage) GetGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, target_amount, target_date
		FROM goals
		WHERE user_id = ?
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []model.Goal
	for rows.Next() {
		var (
			goal   model.Goal
			target sql.NullTime
		)
		if err := rows.Scan(&goal.ID, &goal.UserID, &goal.Name, &goal.TargetAmount, &target); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		if target.Valid {
			date := target.Time
			goal.TargetDate = &date
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}
