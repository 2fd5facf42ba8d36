package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-budget/internal/cli"
	"github.com/Veraticus/spice-budget/internal/model"
)

func prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "View or change budgeting preferences",
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Set the preferred framework or savings target",
		Long: `Set budgeting preferences. Only the flags you pass are changed.

Example:
  spice prefs set --framework pay-yourself-first --savings-percent 25`,
		RunE: runPrefsSet,
	}
	set.Flags().String("framework", "", "preferred framework (50-30-20, zero-based, envelope, pay-yourself-first)")
	set.Flags().Float64("savings-percent", 0, "target savings as a percent of income")
	set.Flags().Bool("clear-savings", false, "remove the savings target and use the framework default")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show current preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			prefs, err := store.GetPreferences(ctx, currentUser())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderPreferences(prefs))
			return nil
		},
	}

	cmd.AddCommand(set, show)
	return cmd
}

func runPrefsSet(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	prefs, err := store.GetPreferences(ctx, currentUser())
	if err != nil {
		return err
	}
	prefs.UserID = currentUser()

	if flags.Changed("framework") {
		name, _ := flags.GetString("framework")
		framework, ok := model.ParseFramework(name)
		if !ok {
			return fmt.Errorf("unknown framework %q; choose one of %v", name, model.Frameworks())
		}
		prefs.BudgetFramework = string(framework)
	}
	if flags.Changed("savings-percent") {
		pct, _ := flags.GetFloat64("savings-percent")
		prefs.TargetSavingsPercent = &pct
	}
	if clearSavings, _ := flags.GetBool("clear-savings"); clearSavings {
		prefs.TargetSavingsPercent = nil
	}

	if err := store.SavePreferences(ctx, prefs); err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), cli.RenderPreferences(prefs))
	return nil
}

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Record account balances used to size debt payments",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add or update an account balance",
		Long: `Add or update an account. Credit and loan balances count as debt.

Example:
  spice accounts add --id visa --name "Visa Signature" --type credit --balance 1850`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()
			id, _ := flags.GetString("id")
			name, _ := flags.GetString("name")
			typeFlag, _ := flags.GetString("type")
			balanceFlag, _ := flags.GetString("balance")

			accountType, err := model.ParseAccountType(typeFlag)
			if err != nil {
				return err
			}
			balance, err := parseAmount(balanceFlag)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account := &model.Account{ID: id, UserID: currentUser(), Name: name, Type: accountType, Balance: balance}
			if err := store.SaveAccount(ctx, account); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved account %s (%s)", account.Name, account.ID)))
			return nil
		},
	}
	add.Flags().String("id", "", "account id (generated when empty; reuse to update)")
	add.Flags().String("name", "", "account name (required)")
	add.Flags().String("type", string(model.AccountChecking), "account type (checking, savings, credit, loan, investment)")
	add.Flags().String("balance", "0", "current balance")
	_ = add.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			accounts, err := store.GetAccounts(ctx, currentUser())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderAccounts(accounts))
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Manage savings goals",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a savings goal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()
			name, _ := flags.GetString("name")
			targetFlag, _ := flags.GetString("target")
			dueFlag, _ := flags.GetString("due")

			target, err := parseAmount(targetFlag)
			if err != nil {
				return err
			}
			goal := &model.Goal{UserID: currentUser(), Name: name, TargetAmount: target}
			if dueFlag != "" {
				due, err := parseDate(dueFlag)
				if err != nil {
					return err
				}
				goal.TargetDate = &due
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SaveGoal(ctx, goal); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added goal %s: %s", goal.Name, model.FormatMoney(goal.TargetAmount))))
			return nil
		},
	}
	add.Flags().String("name", "", "goal name (required)")
	add.Flags().String("target", "", "target amount (required)")
	add.Flags().String("due", "", "target date (YYYY-MM-DD)")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("target")

	list := &cobra.Command{
		Use:   "list",
		Short: "List savings goals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			goals, err := store.GetGoals(ctx, currentUser())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderGoals(goals))
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
