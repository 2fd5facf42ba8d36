package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/model"
)

// SaveRecurringIncome stores a declared income record and assigns its ID.
func (s *SQLiteStorage) SaveRecurringIncome(ctx context.Context, income *model.RecurringIncome) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecurringIncome(income); err != nil {
		return err
	}

	from := income.EffectiveFrom
	if from.IsZero() {
		from = time.Now()
	}

	var to sql.NullTime
	if income.EffectiveTo != nil {
		to = sql.NullTime{Time: income.EffectiveTo.UTC(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_income (
			user_id, source, frequency, gross_amount, net_amount, effective_from, effective_to
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, income.UserID, income.Source, string(income.Frequency), income.GrossAmount.String(),
		income.NetAmount, from.UTC(), to)
	if err != nil {
		return fmt.Errorf("failed to insert recurring income: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get recurring income id: %w", err)
	}
	income.ID = id
	income.EffectiveFrom = from.UTC()

	slog.Debug("Saved recurring income", "user", income.UserID, "source", income.Source, "id", id)
	return nil
}

// GetRecurringIncome returns every declared income record for a user.
func (s *SQLiteStorage) GetRecurringIncome(ctx context.Context, userID string) ([]model.RecurringIncome, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, source, frequency, gross_amount, net_amount, effective_from, effective_to
		FROM recurring_income
		WHERE user_id = ?
		ORDER BY effective_from, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring income: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.RecurringIncome
	for rows.Next() {
		var (
			rec       model.RecurringIncome
			frequency string
			net       decimal.NullDecimal
			to        sql.NullTime
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Source, &frequency, &rec.GrossAmount,
			&net, &rec.EffectiveFrom, &to); err != nil {
			return nil, fmt.Errorf("failed to scan recurring income: %w", err)
		}

		rec.Frequency, err = model.ParseFrequency(frequency)
		if err != nil {
			return nil, fmt.Errorf("recurring income %d: %w", rec.ID, err)
		}
		rec.NetAmount = net
		if to.Valid {
			end := to.Time
			rec.EffectiveTo = &end
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring income: %w", err)
	}

	return records, nil
}
