package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"pennywise/internal/models"
	"pennywise/internal/money"
	"pennywise/internal/services"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	statusStyles = map[models.BudgetStatus]lipgloss.Style{
		models.BudgetStatusOnTrack:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.BudgetStatusWarning:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.BudgetStatusOverBudget: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

const day = "2006-01-02"

func status(s models.BudgetStatus) string {
	if style, ok := statusStyles[s]; ok {
		return style.Render(string(s))
	}
	return string(s)
}

func amt(d decimal.Decimal) string {
	return money.Display(d).StringFixed(2)
}

func pct(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	styled := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = headerStyle.Render(h)
	}
	fmt.Fprintln(tw, strings.Join(styled, "\t"))
	return tw
}

func renderGroups(w io.Writer, groups []models.BudgetGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, infoStyle.Render("No budget groups found."))
		return
	}
	tw := newTable(w, "ID", "Name", "Period", "Start", "End", "Currency", "Active")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
			g.ID, g.Name, g.PeriodType, g.StartDate.Format(day), g.EndDate.Format(day), g.Currency, g.IsActive)
	}
	tw.Flush()
}

func renderGroupSummary(w io.Writer, s *services.GroupSummary) {
	fmt.Fprintf(w, "%s  %s to %s  %s\n", titleStyle.Render(s.Name), s.StartDate.Format(day), s.EndDate.Format(day), status(s.Status))
	fmt.Fprintf(w, "Budgeted %s %s  Spent %s  Remaining %s  Used %s\n\n",
		s.Currency, amt(s.TotalBudgeted), amt(s.TotalSpent), amt(s.TotalRemaining), pct(s.PercentageUsed))

	names := make([]string, 0, len(s.CategorySummary))
	for name := range s.CategorySummary {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := newTable(w, "Category", "Budgeted", "Spent", "Remaining", "Used")
	for _, name := range names {
		node := s.CategorySummary[name]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			name, amt(node.TotalBudgeted), amt(node.TotalSpent), amt(node.TotalRemaining), pct(node.TotalPercentageUsed))

		subs := make([]string, 0, len(node.Subcategories))
		for sub := range node.Subcategories {
			subs = append(subs, sub)
		}
		sort.Strings(subs)
		for _, sub := range subs {
			leaf := node.Subcategories[sub]
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
				sub, amt(leaf.Budgeted), amt(leaf.Spent), amt(leaf.Remaining), pct(leaf.PercentageUsed))
		}
	}
	tw.Flush()
}

func renderGroupsOverview(w io.Writer, s *services.GroupsSummary) {
	fmt.Fprintf(w, "%s  %d current of %d active groups  %s\n",
		titleStyle.Render("Groups on "+s.AsOf.Format(day)), s.CurrentPeriodGroups, s.ActiveGroups, status(s.Status))
	if len(s.Groups) == 0 {
		return
	}
	tw := newTable(w, "Group", "Budgeted", "Spent", "Remaining", "Used", "Status")
	for _, g := range s.Groups {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			g.Name, amt(g.TotalBudgeted), amt(g.TotalSpent), amt(g.TotalRemaining), pct(g.PercentageUsed), status(g.Status))
	}
	tw.Flush()
}

func renderBudgets(w io.Writer, budgets []services.BudgetPerformance) {
	if len(budgets) == 0 {
		fmt.Fprintln(w, infoStyle.Render("No budgets."))
		return
	}
	tw := newTable(w, "Budget", "Category", "Amount", "Spent", "Used", "Status")
	for _, b := range budgets {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%s\t%s\n",
			b.Name, b.CategoryName, b.Currency, amt(b.Amount), amt(b.Spent), pct(b.PercentageUsed), status(b.Status))
	}
	tw.Flush()
}

func renderBudgetSummary(w io.Writer, s *services.BudgetSummary) {
	fmt.Fprintf(w, "%s  %d budgets  %s\n", titleStyle.Render("Budgets on "+s.AsOf.Format(day)), s.BudgetCount, status(s.Status))
	fmt.Fprintf(w, "Budgeted %s  Spent %s  Remaining %s  Used %s\n",
		amt(s.TotalBudgeted), amt(s.TotalSpent), amt(s.TotalRemaining), pct(s.PercentageUsed))
	fmt.Fprintf(w, "on track %d  warning %d  over budget %d\n\n",
		s.StatusCounts.OnTrack, s.StatusCounts.Warning, s.StatusCounts.OverBudget)
	renderBudgets(w, s.Budgets)
}
