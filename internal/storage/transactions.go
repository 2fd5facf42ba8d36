package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-budget/internal/model"
	"github.com/Veraticus/spice-budget/internal/service"
)

// SaveTransactions stores transactions, skipping any whose hash is already
// present. It returns how many rows were inserted.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}

	inserted := 0
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO transactions (
				id, user_id, hash, date, name, merchant_name, category, amount, account_id
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, txn := range transactions {
			if txn.Hash == "" {
				txn.Hash = txn.GenerateHash()
			}

			res, err := stmt.ExecContext(ctx,
				txn.ID,
				txn.UserID,
				txn.Hash,
				txn.Date.UTC(),
				txn.Name,
				txn.MerchantName,
				txn.Category,
				txn.Amount.String(),
				txn.AccountID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Debug("Saved transactions", "received", len(transactions), "inserted", inserted)
	return inserted, nil
}

// GetTransactions returns a user's transactions in date order.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(filter.UserID, "userID"); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, *filter.EndDate, *filter.StartDate)
	}

	var (
		clauses = []string{"user_id = ?"}
		args    = []any{filter.UserID}
	)
	if filter.StartDate != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, filter.EndDate.UTC())
	}

	query := `
		SELECT id, user_id, hash, date, name, merchant_name, category, amount, account_id
		FROM transactions
		WHERE ` + strings.Join(clauses, " AND ") + `
		ORDER BY date, id`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var (
			txn                         model.Transaction
			merchant, category, account sql.NullString
		)
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Hash, &txn.Date, &txn.Name,
			&merchant, &category, &txn.Amount, &account); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.MerchantName = merchant.String
		txn.Category = category.String
		txn.AccountID = account.String
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("Loaded transactions", "user", filter.UserID, "count", len(transactions))
	return transactions, nil
}
