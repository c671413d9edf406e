// Package export renders budget group summaries as CSV or XLSX reports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/money"
	"pennywise/internal/services"
)

// Format is a report file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx" in any case. An empty string is XLSX.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", apperrors.Withf(apperrors.ErrInvalidInput, "unsupported export format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename builds the download name of a group report.
func Filename(s *services.GroupSummary, f Format) string {
	return fmt.Sprintf("budget-group-%s-%s.%s", s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"), f)
}

var (
	budgetHeaders   = []string{"Budget", "Category", "Amount", "Spent", "Remaining", "% Used", "Threshold", "Status"}
	categoryHeaders = []string{"Category", "Subcategory", "Budgeted", "Spent", "Remaining", "% Used"}
)

func amount(d decimal.Decimal) string {
	return money.Display(d).StringFixed(2)
}

// budgetRows lists one row per member budget, sorted by name.
func budgetRows(s *services.GroupSummary) [][]string {
	perfs := append([]services.BudgetPerformance(nil), s.Budgets...)
	sort.Slice(perfs, func(i, j int) bool { return perfs[i].Name < perfs[j].Name })

	rows := make([][]string, 0, len(perfs))
	for _, p := range perfs {
		rows = append(rows, []string{
			p.Name,
			p.CategoryName,
			amount(p.Amount),
			amount(p.Spent),
			amount(p.Remaining),
			amount(p.PercentageUsed),
			p.AlertThreshold.String(),
			string(p.Status),
		})
	}
	return rows
}

// categoryRows flattens the category tree. Each primary is followed by its
// subcategories; the primary row carries the totals that include them.
func categoryRows(s *services.GroupSummary) [][]string {
	names := make([]string, 0, len(s.CategorySummary))
	for name := range s.CategorySummary {
		names = append(names, name)
	}
	sort.Strings(names)

	var rows [][]string
	for _, name := range names {
		node := s.CategorySummary[name]
		rows = append(rows, []string{
			name, "",
			amount(node.TotalBudgeted),
			amount(node.TotalSpent),
			amount(node.TotalRemaining),
			amount(node.TotalPercentageUsed),
		})

		subs := make([]string, 0, len(node.Subcategories))
		for sub := range node.Subcategories {
			subs = append(subs, sub)
		}
		sort.Strings(subs)
		for _, sub := range subs {
			leaf := node.Subcategories[sub]
			rows = append(rows, []string{
				name, sub,
				amount(leaf.Budgeted),
				amount(leaf.Spent),
				amount(leaf.Remaining),
				amount(leaf.PercentageUsed),
			})
		}
	}
	return rows
}

func totalRow(s *services.GroupSummary) []string {
	return []string{
		"Total", s.Currency,
		amount(s.TotalBudgeted),
		amount(s.TotalSpent),
		amount(s.TotalRemaining),
		amount(s.PercentageUsed),
		s.AlertThreshold.String(),
		string(s.Status),
	}
}

// Write renders the summary in the given format.
func Write(w io.Writer, s *services.GroupSummary, f Format) error {
	if f == FormatCSV {
		return WriteCSV(w, s)
	}
	return WriteXLSX(w, s)
}

// WriteCSV writes the budgets, a total line and the category breakdown,
// separated by an empty record.
func WriteCSV(w io.Writer, s *services.GroupSummary) error {
	cw := csv.NewWriter(w)

	records := [][]string{{s.Name, s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02")}, {}, budgetHeaders}
	records = append(records, budgetRows(s)...)
	records = append(records, totalRow(s), []string{}, categoryHeaders)
	records = append(records, categoryRows(s)...)

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv report: %w", err)
	}
	return nil
}

const (
	budgetsSheet    = "Budgets"
	categoriesSheet = "Categories"
)

// WriteXLSX writes a workbook with a Budgets sheet and a Categories sheet.
func WriteXLSX(w io.Writer, s *services.GroupSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", budgetsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(categoriesSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create total style: %w", err)
	}

	budgetTable := append([][]string{budgetHeaders}, budgetRows(s)...)
	budgetTable = append(budgetTable, totalRow(s))
	if err := writeSheet(f, budgetsSheet, budgetTable, headerStyle); err != nil {
		return err
	}
	last := len(budgetTable)
	if err := f.SetCellStyle(budgetsSheet, fmt.Sprintf("A%d", last), fmt.Sprintf("H%d", last), totalStyle); err != nil {
		return fmt.Errorf("failed to style total row: %w", err)
	}
	if err := f.SetColWidth(budgetsSheet, "A", "B", 24); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	categoryTable := append([][]string{categoryHeaders}, categoryRows(s)...)
	if err := writeSheet(f, categoriesSheet, categoryTable, headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(categoriesSheet, "A", "B", 24); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx report: %w", err)
	}
	return nil
}

// writeSheet writes rows from A1 down. Numeric columns are stored as numbers
// so spreadsheets can sum them.
func writeSheet(f *excelize.File, sheet string, rows [][]string, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
			if i == 0 || j < 2 {
				continue
			}
			if d, err := decimal.NewFromString(v); err == nil {
				values[j] = d.InexactFloat64()
			}
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	end, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return fmt.Errorf("failed to address header: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", end, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return nil
}
