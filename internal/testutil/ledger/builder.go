// Package ledger builds synthetic transaction histories for tests.
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/model"
)

// Builder accumulates transactions relative to an as-of date.
type Builder struct {
	asOf   time.Time
	userID string
	txns   []model.Transaction
}

// New starts a history ending at asOf for the default test user.
func New(asOf time.Time) *Builder {
	return &Builder{asOf: asOf, userID: "test-user"}
}

// ForUser changes the user the following transactions belong to.
func (b *Builder) ForUser(userID string) *Builder {
	b.userID = userID
	return b
}

// Spend adds an outflow with a raw category, daysAgo days before asOf.
func (b *Builder) Spend(category string, amount float64, daysAgo int) *Builder {
	return b.add(model.Transaction{
		Date:     b.asOf.AddDate(0, 0, -daysAgo),
		Name:     category + " purchase",
		Category: category,
		Amount:   decimal.NewFromFloat(amount),
	})
}

// SpendAt adds an outflow identified only by its merchant.
func (b *Builder) SpendAt(merchant string, amount float64, daysAgo int) *Builder {
	return b.add(model.Transaction{
		Date:         b.asOf.AddDate(0, 0, -daysAgo),
		Name:         merchant,
		MerchantName: merchant,
		Amount:       decimal.NewFromFloat(amount),
	})
}

// Monthly adds one outflow per month, oldest first, the last one a day
// before asOf.
func (b *Builder) Monthly(category string, amounts ...float64) *Builder {
	n := len(amounts)
	for i, amt := range amounts {
		b.add(model.Transaction{
			Date:     b.asOf.AddDate(0, -(n - 1 - i), -1),
			Name:     category + " payment",
			Category: category,
			Amount:   decimal.NewFromFloat(amt),
		})
	}
	return b
}

// Deposit adds an inflow. amount is given as a positive number.
func (b *Builder) Deposit(name string, amount float64, daysAgo int) *Builder {
	return b.add(model.Transaction{
		Date:   b.asOf.AddDate(0, 0, -daysAgo),
		Name:   name,
		Amount: decimal.NewFromFloat(amount).Neg(),
	})
}

// Paychecks adds count deposits every interval days, newest first from
// the day before asOf.
func (b *Builder) Paychecks(name string, amount float64, interval, count int) *Builder {
	for i := 0; i < count; i++ {
		b.Deposit(name, amount, 1+i*interval)
	}
	return b
}

// Build returns the accumulated transactions.
func (b *Builder) Build() []model.Transaction {
	out := make([]model.Transaction, len(b.txns))
	copy(out, b.txns)
	return out
}

func (b *Builder) add(txn model.Transaction) *Builder {
	txn.ID = fmt.Sprintf("%s-txn-%d", b.userID, len(b.txns)+1)
	txn.UserID = b.userID
	txn.AccountID = "test-account"
	txn.Hash = txn.GenerateHash()
	b.txns = append(b.txns, txn)
	return b
}
