package main

import (
	"fmt"
	"os"

	"pennywise/internal/export"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/services"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type loader func(cmd *cobra.Command) (*app, error)

func groupsCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Work with budget groups",
	}
	cmd.AddCommand(listGroupsCmd(load))
	cmd.AddCommand(groupSummaryCmd(load))
	cmd.AddCommand(exportGroupCmd(load))
	cmd.AddCommand(generateBudgetsCmd(load))
	return cmd
}

func listGroupsCmd(load loader) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List budget groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			var active *bool
			if !all {
				t := true
				active = &t
			}
			page, err := a.groups.GetUserBudgetGroups(cmd.Context(), a.userID,
				pagination.PageRequest{Page: 1, PageSize: pagination.MaxPageSize}, active)
			if err != nil {
				return err
			}
			renderGroups(cmd.OutOrStdout(), page.Data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include deactivated groups")
	return cmd
}

func groupSummaryCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [group-id]",
		Short: "Show one group, or every group current on --as-of",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if len(args) == 1 {
				summary, err := a.groups.GetBudgetGroupSummary(cmd.Context(), a.userID, args[0])
				if err != nil {
					return err
				}
				renderGroupSummary(cmd.OutOrStdout(), summary)
				return nil
			}

			asOf, err := asOfFlag(cmd)
			if err != nil {
				return err
			}
			overview, err := a.groups.GetUserGroupsSummary(cmd.Context(), a.userID, asOf)
			if err != nil {
				return err
			}
			renderGroupsOverview(cmd.OutOrStdout(), overview)
			return nil
		},
	}
	cmd.Flags().String("as-of", "", "day to summarize (YYYY-MM-DD, default today)")
	return cmd
}

func exportGroupCmd(load loader) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export <group-id>",
		Short: "Export a group summary as csv or xlsx",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			summary, err := a.groups.GetBudgetGroupSummary(cmd.Context(), a.userID, args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = export.Filename(summary, f)
			}
			if output == "-" {
				return export.Write(cmd.OutOrStdout(), summary, f)
			}

			file, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := export.Write(file, summary, f); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), infoStyle.Render("wrote "+output))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: derived from the group)")
	return cmd
}

func generateBudgetsCmd(load loader) *cobra.Command {
	var (
		scope           string
		amount          string
		includeInactive bool
	)
	cmd := &cobra.Command{
		Use:   "generate <group-id>",
		Short: "Create a budget in the group for each category in scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defaultAmount, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q", amount)
			}
			opts := services.GenerateOptions{
				Scope:           models.CategoryScope(scope),
				DefaultAmount:   defaultAmount,
				IncludeInactive: includeInactive,
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			created, err := a.groups.GenerateBudgets(cmd.Context(), a.userID, args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), infoStyle.Render(fmt.Sprintf("created %d budget(s)", created)))
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", string(models.CategoryScopePrimary), "primary, subcategories or all")
	cmd.Flags().StringVar(&amount, "amount", "", "amount for each generated budget")
	cmd.Flags().BoolVar(&includeInactive, "include-inactive", false, "also budget deactivated categories")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
