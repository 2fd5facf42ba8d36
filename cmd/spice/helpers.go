package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-budget/internal/config"
	"github.com/Veraticus/spice-budget/internal/engine"
	"github.com/Veraticus/spice-budget/internal/lexicon"
	"github.com/Veraticus/spice-budget/internal/service"
	"github.com/Veraticus/spice-budget/internal/storage"
)

const (
	defaultUserID = "default"
	dateLayout    = "2006-01-02"
)

func databasePath() (string, error) {
	if dbPath := viper.GetString("database.path"); dbPath != "" {
		return config.ExpandPath(dbPath), nil
	}
	return config.DefaultDatabasePath()
}

func currentUser() string {
	if id := strings.TrimSpace(viper.GetString("user.id")); id != "" {
		return id
	}
	return defaultUserID
}

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath, err := databasePath()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadLexicon returns the configured category vocabulary, or the built-in one.
func loadLexicon() (*lexicon.Lexicon, error) {
	path := viper.GetString("lexicon.path")
	if path == "" {
		return lexicon.Default(), nil
	}

	lex, err := lexicon.Load(config.ExpandPath(path))
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded category lexicon", "path", path, "version", lex.Version())
	return lex, nil
}

// openEngine wires storage, vocabulary and policy into an engine. The caller
// closes the returned store.
func openEngine(ctx context.Context) (*engine.Engine, service.Storage, error) {
	lex, err := loadLexicon()
	if err != nil {
		return nil, nil, err
	}
	policy, err := config.LoadPolicy()
	if err != nil {
		return nil, nil, err
	}
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	return engine.New(store, lex, policy), store, nil
}

func addAsOfFlag(cmd *cobra.Command) {
	cmd.Flags().String("as-of", "", "analyze as of this date (YYYY-MM-DD, default: today)")
}

// asOf returns the --as-of date, or now. A date covers the whole day, so the
// result is its last instant.
func asOf(cmd *cobra.Command) (time.Time, error) {
	value, _ := cmd.Flags().GetString("as-of")
	if value == "" {
		return time.Now().UTC(), nil
	}
	day, err := parseDate(value)
	if err != nil {
		return time.Time{}, err
	}
	return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

func parseAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(value))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", value)
	}
	return d, nil
}
