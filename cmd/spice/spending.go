package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-budget/internal/cli"
)

func spendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spending",
		Short: "Show average monthly spending by category",
		Long: `Show average monthly spending per category over the configured lookback
window, with the direction each category is trending.`,
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

			patterns, err := eng.AnalyzeSpending(ctx, currentUser(), at)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderPatterns(patterns))
			return nil
		},
	}
	addAsOfFlag(cmd)
	return cmd
}
