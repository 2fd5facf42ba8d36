package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-budget/internal/cli"
	"github.com/Veraticus/spice-budget/internal/common"
	"github.com/Veraticus/spice-budget/internal/config"
	"github.com/Veraticus/spice-budget/internal/engine"
	"github.com/Veraticus/spice-budget/internal/model"
	"github.com/Veraticus/spice-budget/internal/sheets"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Create, review and adjust your monthly budget",
	}
	cmd.AddCommand(budgetCreateCmd(), budgetShowCmd(), budgetAdjustCmd(), budgetExportCmd())
	return cmd
}

func budgetCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Synthesize a budget from income and spending history",
		Long: `Synthesize a monthly budget from your income and the last few months of
spending. The framework comes from --framework, then your saved preference,
then 50-30-20. The new budget becomes the active one.`,
		RunE: runBudgetCreate,
	}
	cmd.Flags().String("framework", "", "framework to use for this budget (overrides preferences)")
	cmd.Flags().Bool("dry-run", false, "show the budget without saving it")
	addAsOfFlag(cmd)
	return cmd
}

func runBudgetCreate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	at, err := asOf(cmd)
	if err != nil {
		return err
	}
	framework, _ := cmd.Flags().GetString("framework")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if framework != "" {
		if _, ok := model.ParseFramework(framework); !ok {
			return fmt.Errorf("unknown framework %q; choose one of %v", framework, model.Frameworks())
		}
	}

	eng, store, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	synthesis, err := eng.Synthesize(ctx, currentUser(), engine.SynthesizeOptions{
		AsOf:      at,
		Framework: framework,
		DryRun:    dryRun,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if synthesis.Budget == nil {
		r := synthesis.Result
		fmt.Fprint(out, cli.RenderBudget(&model.Budget{
			Framework:     r.Framework,
			Categories:    r.Categories,
			Insights:      r.Insights,
			Warnings:      r.Warnings,
			TotalBudget:   r.TotalBudget,
			MonthlyIncome: r.MonthlyIncome,
		}))
		switch {
		case len(r.Categories) == 0:
			fmt.Fprintln(out, cli.FormatWarning("Nothing to budget yet; the budget was not saved."))
		case dryRun:
			fmt.Fprintln(out, cli.FormatInfo("Dry run: the budget was not saved."))
		}
		return nil
	}

	fmt.Fprint(out, cli.RenderBudget(synthesis.Budget))
	fmt.Fprintln(out, cli.FormatSuccess("Saved as your active budget."))
	return nil
}

// noBudgetHint turns a missing active budget into a message that says how to
// create one.
func noBudgetHint(err error) error {
	if errors.Is(err, common.ErrNoActiveBudget) {
		return common.NewUserError("You don't have a budget yet. Create one with 'spice budget create'.", err)
	}
	return err
}

func budgetShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active budget",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			eng, store, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			active, err := eng.ActiveBudget(ctx, currentUser())
			if err != nil {
				return noBudgetHint(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderBudget(active))
			return nil
		},
	}
}

func budgetAdjustCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Revise the active budget against recent spending",
		Long: `Compare the active budget with the last two months of spending, move
money out of underused categories and into overspent ones, and keep the
total within your income. Changes are shown before they are saved.`,
		RunE: runBudgetAdjust,
	}
	cmd.Flags().Bool("dry-run", false, "show proposed changes without saving")
	cmd.Flags().BoolP("yes", "y", false, "apply changes without asking")
	addAsOfFlag(cmd)
	return cmd
}

func runBudgetAdjust(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	at, err := asOf(cmd)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	yes, _ := cmd.Flags().GetBool("yes")

	eng, store, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()
	result, err := eng.Adjust(ctx, currentUser(), engine.AdjustOptions{AsOf: at, DryRun: dryRun || !yes})
	if err != nil {
		return noBudgetHint(err)
	}

	applied := yes && !dryRun && len(result.Changed()) > 0
	fmt.Fprint(out, cli.RenderAdjustment(*result, applied))
	if applied || dryRun || len(result.Changed()) == 0 {
		return nil
	}

	ok, err := cli.NewPrompter(cmd.InOrStdin(), out).Confirm(ctx, "Apply these changes?", false)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, cli.FormatInfo("No changes saved."))
		return nil
	}

	if err := eng.ApplyAdjustment(ctx, result); err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Updated %d categories.", len(result.Changed()))))
	return nil
}

func budgetExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the active budget to Google Sheets",
		Long: `Write the active budget, its income streams, insights and warnings to a
Google Sheets spreadsheet. Configure credentials under "sheets" in the config
file or with GOOGLE_SHEETS_* environment variables; run 'spice auth sheets'
to obtain an OAuth refresh token.`,
		RunE: runBudgetExport,
	}
	addAsOfFlag(cmd)
	return cmd
}

func runBudgetExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	at, err := asOf(cmd)
	if err != nil {
		return err
	}

	sheetsConfig, err := config.LoadSheetsConfig()
	if err != nil {
		return fmt.Errorf("google sheets is not configured: %w", err)
	}

	eng, store, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	active, err := eng.ActiveBudget(ctx, currentUser())
	if err != nil {
		return noBudgetHint(err)
	}
	income, err := eng.AnalyzeIncome(ctx, currentUser(), at)
	if err != nil {
		return err
	}

	writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
	if err != nil {
		return err
	}

	return exportBudget(cmd, writer, sheets.NewReport(active, income, time.Now()))
}

func exportBudget(cmd *cobra.Command, writer sheets.BudgetWriter, report sheets.Report) error {
	id, err := writer.Write(cmd.Context(), report)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Exported to https://docs.google.com/spreadsheets/d/"+id))
	return nil
}
