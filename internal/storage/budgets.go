package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spice-budget/internal/common"
	"github.com/Veraticus/spice-budget/internal/model"
)

// SaveBudget stores a budget as the user's only active budget. The previous
// active budget is deactivated in the same transaction.
func (s *SQLiteStorage) SaveBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(budget); err != nil {
		return err
	}

	insights, err := json.Marshal(nonNil(budget.Insights))
	if err != nil {
		return fmt.Errorf("failed to encode insights: %w", err)
	}
	warnings, err := json.Marshal(nonNil(budget.Warnings))
	if err != nil {
		return fmt.Errorf("failed to encode warnings: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	categories := make([]model.BudgetCategory, len(budget.Categories))
	copy(categories, budget.Categories)

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE budgets SET is_active = 0, updated_at = ? WHERE user_id = ? AND is_active = 1`,
			now, budget.UserID); err != nil {
			return fmt.Errorf("failed to deactivate previous budget: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO budgets (
				id, user_id, framework, monthly_income, total_budget, insights, warnings,
				is_active, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		`, id, budget.UserID, string(budget.Framework), budget.MonthlyIncome.String(),
			budget.TotalBudget.String(), string(insights), string(warnings), now, now); err != nil {
			return fmt.Errorf("failed to insert budget: %w", err)
		}

		for i := range categories {
			categories[i].ID = uuid.NewString()
			if err := insertCategory(ctx, tx, id, i, categories[i], ""); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	budget.ID = id
	budget.CreatedAt = now
	budget.IsActive = true
	budget.Categories = categories

	slog.Info("Saved budget",
		"user", budget.UserID,
		"budget_id", id,
		"framework", budget.Framework,
		"categories", len(categories),
		"total", budget.TotalBudget.String())
	return nil
}

func insertCategory(ctx context.Context, tx *sql.Tx, budgetID string, position int, c model.BudgetCategory, reason string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO budget_categories (
			id, budget_id, position, category, amount, priority, is_fixed, notes, adjustment_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, budgetID, position, c.Category, c.Amount.String(), string(c.Priority), c.IsFixed, c.Notes, reason)
	if err != nil {
		return fmt.Errorf("failed to insert budget category %q: %w", c.Category, err)
	}
	return nil
}

// GetActiveBudget returns the user's active budget or common.ErrNotFound.
func (s *SQLiteStorage) GetActiveBudget(ctx context.Context, userID string) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	return s.loadBudget(ctx, `
		SELECT id, user_id, framework, monthly_income, total_budget, insights, warnings, is_active, created_at
		FROM budgets
		WHERE user_id = ? AND is_active = 1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID)
}

// GetBudget returns a budget by ID or common.ErrNotFound.
func (s *SQLiteStorage) GetBudget(ctx context.Context, id string) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	return s.loadBudget(ctx, `
		SELECT id, user_id, framework, monthly_income, total_budget, insights, warnings, is_active, created_at
		FROM budgets
		WHERE id = ?
	`, id)
}

func (s *SQLiteStorage) loadBudget(ctx context.Context, query string, arg string) (*model.Budget, error) {
	var (
		budget             model.Budget
		framework          string
		insights, warnings string
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&budget.ID, &budget.UserID, &framework,
		&budget.MonthlyIncome, &budget.TotalBudget, &insights, &warnings, &budget.IsActive, &budget.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget %s: %w", arg, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}

	budget.Framework, _ = model.ParseFramework(framework)
	if err := json.Unmarshal([]byte(insights), &budget.Insights); err != nil {
		return nil, fmt.Errorf("%w: budget %s insights: %v", common.ErrDatabaseCorrupted, budget.ID, err)
	}
	if err := json.Unmarshal([]byte(warnings), &budget.Warnings); err != nil {
		return nil, fmt.Errorf("%w: budget %s warnings: %v", common.ErrDatabaseCorrupted, budget.ID, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, amount, priority, is_fixed, notes
		FROM budget_categories
		WHERE budget_id = ?
		ORDER BY position
	`, budget.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			c        model.BudgetCategory
			priority string
			notes    sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Category, &c.Amount, &priority, &c.IsFixed, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan budget category: %w", err)
		}
		if c.Priority, err = model.ParsePriority(priority); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabaseCorrupted, err)
		}
		c.Notes = notes.String
		budget.Categories = append(budget.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget categories: %w", err)
	}

	slog.Debug("Loaded budget", "budget_id", budget.ID, "categories", len(budget.Categories))
	return &budget, nil
}

// ApplyAdjustment writes every changed category of an adjustment and the
// new total in one transaction. New categories are appended and receive IDs.
func (s *SQLiteStorage) ApplyAdjustment(ctx context.Context, result *model.AdjustmentResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("%w: adjustment", ErrNilParameter)
	}
	if err := validateString(result.BudgetID, "budgetID"); err != nil {
		return err
	}

	updated := 0
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE budgets SET total_budget = ?, updated_at = ? WHERE id = ?`,
			result.TotalAfter.String(), time.Now().UTC(), result.BudgetID)
		if err != nil {
			return fmt.Errorf("failed to update budget total: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("budget %s: %w", result.BudgetID, common.ErrNotFound)
		}

		var position int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position), -1) + 1 FROM budget_categories WHERE budget_id = ?`,
			result.BudgetID).Scan(&position); err != nil {
			return fmt.Errorf("failed to find next category position: %w", err)
		}

		for i := range result.Categories {
			c := &result.Categories[i]
			if !c.Changed {
				continue
			}
			if c.IsNew {
				c.ID = uuid.NewString()
				row := c.BudgetCategory
				row.Amount = c.SuggestedAmount
				if err := insertCategory(ctx, tx, result.BudgetID, position, row, c.AdjustmentReason); err != nil {
					return err
				}
				position++
				updated++
				continue
			}

			res, err := tx.ExecContext(ctx, `
				UPDATE budget_categories
				SET amount = ?, adjustment_reason = ?
				WHERE id = ? AND budget_id = ?
			`, c.SuggestedAmount.String(), c.AdjustmentReason, c.ID, result.BudgetID)
			if err != nil {
				return fmt.Errorf("failed to update budget category %q: %w", c.Category, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("budget category %s: %w", c.ID, common.ErrNotFound)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Applied budget adjustment",
		"budget_id", result.BudgetID,
		"categories_changed", updated,
		"total", result.TotalAfter.String())
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
