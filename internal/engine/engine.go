// Package engine runs the budget pipeline against a user's stored history:
// income and spending analysis, synthesis, insights and dynamic adjustment.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-budget/internal/adjust"
	"github.com/Veraticus/spice-budget/internal/budget"
	"github.com/Veraticus/spice-budget/internal/common"
	"github.com/Veraticus/spice-budget/internal/config"
	"github.com/Veraticus/spice-budget/internal/income"
	"github.com/Veraticus/spice-budget/internal/insight"
	"github.com/Veraticus/spice-budget/internal/lexicon"
	"github.com/Veraticus/spice-budget/internal/model"
	"github.com/Veraticus/spice-budget/internal/service"
	"github.com/Veraticus/spice-budget/internal/spending"
)

// Engine orchestrates budget synthesis and adjustment for stored users.
type Engine struct {
	store          service.Storage
	now            func() time.Time
	income         *income.Analyzer
	spending       *spending.Analyzer
	adjustSpending *spending.Analyzer
	synthesizer    *budget.Synthesizer
	insights       *insight.Generator
	adjuster       *adjust.Adjuster
}

// New creates an engine over the given storage, vocabulary and policy.
func New(store service.Storage, lex *lexicon.Lexicon, policy config.Policy) *Engine {
	spend := spending.NewAnalyzer(lex, policy.Spending)
	return &Engine{
		store:          store,
		now:            time.Now,
		income:         income.NewAnalyzer(lex, policy.Income),
		spending:       spend,
		adjustSpending: spend.WithLookback(policy.Adjust.LookbackMonths),
		synthesizer:    budget.NewSynthesizer(lex, policy.Synthesis),
		insights:       insight.NewGenerator(policy.Insight),
		adjuster:       adjust.NewAdjuster(lex, policy.Adjust),
	}
}

// SynthesizeOptions controls a synthesis run.
type SynthesizeOptions struct {
	// AsOf anchors the lookback windows; zero means now.
	AsOf time.Time
	// Framework overrides the user's preferred framework when set.
	Framework string
	// DryRun skips persisting the result.
	DryRun bool
}

// Synthesis is the outcome of a synthesis run with the analyses behind it.
type Synthesis struct {
	// Budget is the persisted budget, nil on dry runs or when nothing was
	// allocated.
	Budget   *model.Budget
	Income   model.IncomeAnalysis
	Patterns []model.SpendingPattern
	Result   model.BudgetResult
}

// AnalyzeIncome derives the user's monthly income as of asOf.
func (e *Engine) AnalyzeIncome(ctx context.Context, userID string, asOf time.Time) (model.IncomeAnalysis, error) {
	declared, err := e.store.GetRecurringIncome(ctx, userID)
	if err != nil {
		return model.IncomeAnalysis{}, fmt.Errorf("failed to load recurring income: %w", err)
	}

	txns, err := e.transactions(ctx, userID, e.income.WindowStart(asOf), asOf)
	if err != nil {
		return model.IncomeAnalysis{}, err
	}

	return e.income.Analyze(declared, txns, asOf), nil
}

// AnalyzeSpending summarizes the user's spending over the synthesis lookback.
func (e *Engine) AnalyzeSpending(ctx context.Context, userID string, asOf time.Time) ([]model.SpendingPattern, error) {
	return e.analyzeSpending(ctx, e.spending, userID, asOf)
}

func (e *Engine) analyzeSpending(ctx context.Context, a *spending.Analyzer, userID string, asOf time.Time) ([]model.SpendingPattern, error) {
	txns, err := e.transactions(ctx, userID, a.WindowStart(asOf), asOf)
	if err != nil {
		return nil, err
	}
	return a.Analyze(txns, asOf), nil
}

func (e *Engine) transactions(ctx context.Context, userID string, start, end time.Time) ([]model.Transaction, error) {
	txns, err := e.store.GetTransactions(ctx, service.TransactionFilter{
		UserID:    userID,
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return txns, nil
}

// Synthesize builds a budget for the user from stored income, spending,
// preferences, debt and goals. Unless DryRun is set, a budget with at least
// one category replaces the user's active budget.
func (e *Engine) Synthesize(ctx context.Context, userID string, opts SynthesizeOptions) (*Synthesis, error) {
	asOf := opts.AsOf
	if asOf.IsZero() {
		asOf = e.now()
	}

	prefs, err := e.store.GetPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	frameworkName := prefs.BudgetFramework
	if opts.Framework != "" {
		frameworkName = opts.Framework
	}
	if frameworkName != "" {
		if _, ok := model.ParseFramework(frameworkName); !ok {
			slog.Warn("Unrecognized budget framework, falling back to default",
				"user", userID,
				"requested", frameworkName,
				"framework", model.DefaultFramework)
		}
	}

	analysis, err := e.AnalyzeIncome(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}
	if !analysis.HasIncome() {
		slog.Warn("No income detected", "user", userID, "as_of", asOf.Format("2006-01-02"))
	}

	patterns, err := e.AnalyzeSpending(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}

	debt, err := e.store.GetOutstandingDebt(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load outstanding debt: %w", err)
	}

	goals, err := e.store.GetGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}

	in := budget.Input{
		Framework:     frameworkName,
		Patterns:      patterns,
		Goals:         goals,
		MonthlyIncome: analysis.MonthlyIncome,
		DebtBalance:   debt,
	}
	if rate, ok := prefs.TargetSavingsRate(); ok {
		in.TargetSavingsRate = &rate
	}

	result := e.insights.Apply(e.synthesizer.Synthesize(in), analysis, patterns)

	slog.Info("Synthesized budget",
		"user", userID,
		"framework", result.Framework,
		"income", result.MonthlyIncome.String(),
		"categories", len(result.Categories),
		"total", result.TotalBudget.String(),
		"warnings", len(result.Warnings))

	out := &Synthesis{Result: result, Income: analysis, Patterns: patterns}
	if opts.DryRun || len(result.Categories) == 0 {
		return out, nil
	}

	saved := &model.Budget{
		UserID:        userID,
		Framework:     result.Framework,
		Categories:    result.Categories,
		Insights:      result.Insights,
		Warnings:      result.Warnings,
		TotalBudget:   result.TotalBudget,
		MonthlyIncome: result.MonthlyIncome,
	}
	if err := e.store.SaveBudget(ctx, saved); err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}
	out.Budget = saved
	out.Result.Categories = saved.Categories

	return out, nil
}

// AdjustOptions controls an adjustment run.
type AdjustOptions struct {
	// AsOf anchors the lookback windows; zero means now.
	AsOf time.Time
	// DryRun skips persisting the revised categories.
	DryRun bool
}

// Adjust revises the user's active budget against recent spending. It
// returns common.ErrNoActiveBudget when the user has no budget to revise.
func (e *Engine) Adjust(ctx context.Context, userID string, opts AdjustOptions) (*model.AdjustmentResult, error) {
	asOf := opts.AsOf
	if asOf.IsZero() {
		asOf = e.now()
	}

	active, err := e.store.GetActiveBudget(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrNoActiveBudget
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active budget: %w", err)
	}

	patterns, err := e.analyzeSpending(ctx, e.adjustSpending, userID, asOf)
	if err != nil {
		return nil, err
	}

	analysis, err := e.AnalyzeIncome(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}
	monthly := analysis.MonthlyIncome
	if !monthly.IsPositive() {
		monthly = active.MonthlyIncome
		slog.Warn("No current income detected, using the budget's income",
			"user", userID,
			"income", monthly.String())
	}

	result := e.adjuster.Adjust(active.Categories, patterns, monthly.Round(2), asOf)
	result.BudgetID = active.ID
	if w, ok := insight.OverageWarning(result.TotalAfter, result.MonthlyIncome); ok && result.MonthlyIncome.IsPositive() {
		result.Warnings = append(result.Warnings, w)
	}

	changed := len(result.Changed())
	slog.Info("Adjusted budget",
		"user", userID,
		"budget_id", active.ID,
		"changed", changed,
		"total_before", result.TotalBefore.String(),
		"total_after", result.TotalAfter.String())

	if opts.DryRun || changed == 0 {
		return &result, nil
	}

	if err := e.store.ApplyAdjustment(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to apply adjustment: %w", err)
	}
	return &result, nil
}

// ActiveBudget returns the user's active budget or common.ErrNoActiveBudget.
func (e *Engine) ActiveBudget(ctx context.Context, userID string) (*model.Budget, error) {
	active, err := e.store.GetActiveBudget(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrNoActiveBudget
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active budget: %w", err)
	}
	return active, nil
}

// ApplyAdjustment persists an adjustment computed by an earlier dry run.
func (e *Engine) ApplyAdjustment(ctx context.Context, result *model.AdjustmentResult) error {
	if len(result.Changed()) == 0 {
		return nil
	}
	if err := e.store.ApplyAdjustment(ctx, result); err != nil {
		return fmt.Errorf("failed to apply adjustment: %w", err)
	}
	return nil
}
