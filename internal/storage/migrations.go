package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Transaction ledger and recurring income",
		Up: execAll(
			`CREATE TABLE IF NOT EXISTS transactions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				hash TEXT NOT NULL,
				date DATETIME NOT NULL,
				name TEXT NOT NULL,
				merchant_name TEXT,
				category TEXT,
				amount TEXT NOT NULL,
				account_id TEXT,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (user_id, hash)
			)`,
			`CREATE INDEX idx_transactions_user_date ON transactions(user_id, date)`,

			`CREATE TABLE IF NOT EXISTS recurring_income (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id TEXT NOT NULL,
				source TEXT NOT NULL,
				frequency TEXT NOT NULL CHECK (frequency IN ('weekly', 'biweekly', 'monthly', 'other')),
				gross_amount TEXT NOT NULL,
				net_amount TEXT,
				effective_from DATETIME NOT NULL,
				effective_to DATETIME,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_recurring_income_user ON recurring_income(user_id)`,
		),
	},
	{
		Version:     2,
		Description: "Preferences, accounts and goals",
		Up: execAll(
			`CREATE TABLE IF NOT EXISTS preferences (
				user_id TEXT PRIMARY KEY,
				budget_framework TEXT,
				target_savings_percent REAL,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,

			`CREATE TABLE IF NOT EXISTS accounts (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				name TEXT NOT NULL,
				type TEXT NOT NULL CHECK (type IN ('checking', 'savings', 'credit', 'loan', 'investment')),
				balance TEXT NOT NULL,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_accounts_user ON accounts(user_id)`,

			`CREATE TABLE IF NOT EXISTS goals (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id TEXT NOT NULL,
				name TEXT NOT NULL,
				target_amount TEXT NOT NULL,
				target_date DATETIME,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_goals_user ON goals(user_id)`,
		),
	},
	{
		Version:     3,
		Description: "Budgets and budget categories",
		Up: execAll(
			`CREATE TABLE IF NOT EXISTS budgets (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				framework TEXT NOT NULL,
				monthly_income TEXT NOT NULL,
				total_budget TEXT NOT NULL,
				insights TEXT NOT NULL DEFAULT '[]',
				warnings TEXT NOT NULL DEFAULT '[]',
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_budgets_user_active ON budgets(user_id, is_active)`,

			`CREATE TABLE IF NOT EXISTS budget_categories (
				id TEXT PRIMARY KEY,
				budget_id TEXT NOT NULL REFERENCES budgets(id) ON DELETE CASCADE,
				position INTEGER NOT NULL,
				category TEXT NOT NULL,
				amount TEXT NOT NULL,
				priority TEXT NOT NULL CHECK (priority IN ('essential', 'discretionary', 'savings')),
				is_fixed INTEGER NOT NULL DEFAULT 0,
				notes TEXT,
				adjustment_reason TEXT
			)`,
			`CREATE INDEX idx_budget_categories_budget ON budget_categories(budget_id, position)`,
		),
	},
}

func execAll(queries ...string) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		for _, query := range queries {
			if _, err := tx.Exec(query); err != nil {
				return fmt.Errorf("failed to execute query: %w", err)
			}
		}
		return nil
	}
}

// Migrate runs all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
