// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single ledger entry from any source.
//
// Amount follows the ledger sign convention used by the whole engine:
// positive amounts are outflows (expenses) and negative amounts are
// inflows (income, refunds, deposits).
type Transaction struct {
	Date         time.Time
	ID           string
	UserID       string
	Name         string // Raw transaction description
	MerchantName string // Cleaned merchant name
	Category     string // Raw category hint from the source ledger
	AccountID    string
	Hash         string
	Amount       decimal.Decimal
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.MerchantName,
		t.Name,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// IsOutflow reports whether money left the account.
func (t Transaction) IsOutflow() bool {
	return t.Amount.IsPositive()
}

// IsInflow reports whether money entered the account.
func (t Transaction) IsInflow() bool {
	return t.Amount.IsNegative()
}

// Description returns the best human-readable label for the transaction.
func (t Transaction) Description() string {
	if name := strings.TrimSpace(t.MerchantName); name != "" {
		return name
	}
	return strings.TrimSpace(t.Name)
}
