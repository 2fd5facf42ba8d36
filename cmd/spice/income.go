package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-budget/internal/cli"
	"github.com/Veraticus/spice-budget/internal/model"
)

func incomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Manage and analyze income",
	}
	cmd.AddCommand(incomeAddCmd(), incomeListCmd(), incomeAnalyzeCmd())
	return cmd
}

func incomeAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Declare a recurring income source",
		Long: `Declare a recurring income source. Amounts are per pay period; the
net amount is used when given, otherwise the gross.

Example:
  spice income add --source "ACME Corp" --frequency biweekly --gross 3000 --net 2250`,
		RunE: runIncomeAdd,
	}

	cmd.Flags().String("source", "", "income source name (required)")
	cmd.Flags().String("frequency", string(model.FrequencyMonthly), "pay frequency (weekly, biweekly, monthly, other)")
	cmd.Flags().String("gross", "", "gross amount per pay period (required)")
	cmd.Flags().String("net", "", "net amount per pay period")
	cmd.Flags().String("from", "", "effective from (YYYY-MM-DD, default: today)")
	cmd.Flags().String("until", "", "effective until (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("gross")

	return cmd
}

func runIncomeAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	source, _ := flags.GetString("source")
	frequencyFlag, _ := flags.GetString("frequency")
	grossFlag, _ := flags.GetString("gross")
	netFlag, _ := flags.GetString("net")
	fromFlag, _ := flags.GetString("from")
	untilFlag, _ := flags.GetString("until")

	frequency, err := model.ParseFrequency(frequencyFlag)
	if err != nil {
		return err
	}
	gross, err := parseAmount(grossFlag)
	if err != nil {
		return err
	}

	income := &model.RecurringIncome{
		UserID:      currentUser(),
		Source:      source,
		Frequency:   frequency,
		GrossAmount: gross,
	}
	if netFlag != "" {
		net, err := parseAmount(netFlag)
		if err != nil {
			return err
		}
		income.NetAmount = decimal.NewNullDecimal(net)
	}
	if fromFlag != "" {
		if income.EffectiveFrom, err = parseDate(fromFlag); err != nil {
			return err
		}
	} else {
		income.EffectiveFrom = time.Now().UTC().Truncate(24 * time.Hour)
	}
	if untilFlag != "" {
		until, err := parseDate(untilFlag)
		if err != nil {
			return err
		}
		income.EffectiveTo = &until
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveRecurringIncome(ctx, income); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s: %s per month", income.Source, model.FormatMoney(income.MonthlyAmount()))))
	return nil
}

func incomeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List declared income sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.GetRecurringIncome(ctx, currentUser())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderRecurringIncome(records))
			return nil
		},
	}
}

func incomeAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Estimate monthly income from declared sources and deposits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			at, err := asOf(cmd)
			if err != nil {
				return err
			}

			eng, store, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			analysis, err := eng.AnalyzeIncome(ctx, currentUser(), at)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderIncome(analysis))
			return nil
		},
	}
	addAsOfFlag(cmd)
	return cmd
}
