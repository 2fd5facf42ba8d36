// Package testutil provides shared helpers for tests that need a real
// storage backend.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/spice-budget/internal/model"
	"github.com/Veraticus/spice-budget/internal/service"
	"github.com/Veraticus/spice-budget/internal/storage"
)

// TestDB is a migrated in-memory database bound to a test.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database. Migrations run
// immediately and the database is closed when the test finishes.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.SeedTransactions(ledger.New(asOf).Monthly("Rent", 1500, 1500).Build())
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Transactions   []model.Transaction
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	db := &TestDB{Storage: store, t: t}
	if len(opts.Transactions) > 0 {
		db.SeedTransactions(opts.Transactions)
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return db
}

// SeedTransactions stores transactions or fails the test.
func (db *TestDB) SeedTransactions(txns []model.Transaction) {
	db.t.Helper()
	if len(txns) == 0 {
		return
	}
	if _, err := db.Storage.SaveTransactions(context.Background(), txns); err != nil {
		db.t.Fatalf("failed to seed transactions: %v", err)
	}
}

// SeedIncome stores declared income records or fails the test.
func (db *TestDB) SeedIncome(records ...*model.RecurringIncome) {
	db.t.Helper()
	for _, r := range records {
		if err := db.Storage.SaveRecurringIncome(context.Background(), r); err != nil {
			db.t.Fatalf("failed to seed income %q: %v", r.Source, err)
		}
	}
}

// SeedAccounts stores accounts or fails the test.
func (db *TestDB) SeedAccounts(accounts ...*model.Account) {
	db.t.Helper()
	for _, a := range accounts {
		if err := db.Storage.SaveAccount(context.Background(), a); err != nil {
			db.t.Fatalf("failed to seed account %q: %v", a.Name, err)
		}
	}
}

// SeedGoals stores goals or fails the test.
func (db *TestDB) SeedGoals(goals ...*model.Goal) {
	db.t.Helper()
	for _, g := range goals {
		if err := db.Storage.SaveGoal(context.Background(), g); err != nil {
			db.t.Fatalf("failed to seed goal %q: %v", g.Name, err)
		}
	}
}
