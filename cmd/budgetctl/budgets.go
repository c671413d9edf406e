package main

import (
	"github.com/spf13/cobra"
)

func budgetsCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Work with budgets",
	}
	cmd.AddCommand(budgetSummaryCmd(load, false))
	cmd.AddCommand(budgetSummaryCmd(load, true))
	return cmd
}

// budgetSummaryCmd builds "summary", or "alerts" which keeps only budgets
// past their threshold.
func budgetSummaryCmd(load loader, alertsOnly bool) *cobra.Command {
	use, short := "summary", "Summarize the budgets current on --as-of"
	if alertsOnly {
		use, short = "alerts", "List current budgets that are warning or over budget"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asOf, err := asOfFlag(cmd)
			if err != nil {
				return err
			}
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if alertsOnly {
				alerts, err := a.budget.GetBudgetAlerts(cmd.Context(), a.userID, asOf)
				if err != nil {
					return err
				}
				renderBudgets(cmd.OutOrStdout(), alerts)
				return nil
			}
			summary, err := a.budget.GetBudgetSummary(cmd.Context(), a.userID, asOf)
			if err != nil {
				return err
			}
			renderBudgetSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().String("as-of", "", "day to summarize (YYYY-MM-DD, default today)")
	return cmd
}
