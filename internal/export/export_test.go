package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pennywise/internal/models"
	"pennywise/internal/services"
	"pennywise/internal/testutil"
)

func sampleSummary() *services.GroupSummary {
	d := testutil.Dec
	return &services.GroupSummary{
		GroupID:        "g1",
		Name:           "March 2025",
		Currency:       "EUR",
		StartDate:      testutil.Date(2025, time.March, 1),
		EndDate:        testutil.Date(2025, time.March, 31),
		TotalBudgeted:  d("400"),
		TotalSpent:     d("370"),
		TotalRemaining: d("30"),
		PercentageUsed: d("92.5"),
		AlertThreshold: d("80"),
		Status:         models.BudgetStatusWarning,
		BudgetCount:    2,
		Budgets: []services.BudgetPerformance{
			{Name: "Transport", CategoryName: "Transport", Amount: d("50"), Spent: d("70"), Remaining: d("-20"), PercentageUsed: d("140"), AlertThreshold: d("80"), Status: models.BudgetStatusOverBudget},
			{Name: "Food", CategoryName: "Food", Amount: d("350"), Spent: d("300"), Remaining: d("50"), PercentageUsed: d("85.71428571"), AlertThreshold: d("80"), Status: models.BudgetStatusWarning},
		},
		CategorySummary: map[string]*services.CategorySummary{
			"Food": {
				TotalBudgeted: d("350"), TotalSpent: d("300"), TotalRemaining: d("50"), TotalPercentageUsed: d("85.71428571"),
				Subcategories: map[string]*services.SubcategorySummary{
					"Snacks": {Budgeted: d("50"), Spent: d("60"), Remaining: d("-10"), PercentageUsed: d("120")},
				},
			},
			"Transport": {
				TotalBudgeted: d("50"), TotalSpent: d("70"), TotalRemaining: d("-20"), TotalPercentageUsed: d("140"),
				Subcategories: map[string]*services.SubcategorySummary{},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", FormatXLSX, false},
		{"XLSX", FormatXLSX, false},
		{" csv ", FormatCSV, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.err {
				testutil.AssertAppError(t, err, "INVALID_INPUT")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "budget-group-2025-03-01-2025-03-31.csv", Filename(sampleSummary(), FormatCSV))
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleSummary(), FormatCSV))

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	// The reader skips the blank separator lines.
	require.Len(t, records, 9)

	assert.Equal(t, []string{"March 2025", "2025-03-01", "2025-03-31"}, records[0])
	assert.Equal(t, budgetHeaders, records[1])
	assert.Equal(t, "Food", records[2][0])
	assert.Equal(t, "85.71", records[2][5])
	assert.Equal(t, []string{"Transport", "Transport", "50.00", "70.00", "-20.00", "140.00", "80", "over_budget"}, records[3])
	assert.Equal(t, []string{"Total", "EUR", "400.00", "370.00", "30.00", "92.50", "80", "warning"}, records[4])
	assert.Equal(t, categoryHeaders, records[5])
	assert.Equal(t, []string{"Food", "", "350.00", "300.00", "50.00", "85.71"}, records[6])
	assert.Equal(t, []string{"Food", "Snacks", "50.00", "60.00", "-10.00", "120.00"}, records[7])
	assert.Equal(t, "Transport", records[8][0])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleSummary(), FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{budgetsSheet, categoriesSheet}, f.GetSheetList())

	rows, err := f.GetRows(budgetsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, budgetHeaders, rows[0])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "370", rows[3][3])

	cats, err := f.GetRows(categoriesSheet)
	require.NoError(t, err)
	require.Len(t, cats, 4)
	assert.Equal(t, "Snacks", cats[2][1])
}

func TestWriteXLSX_EmptyGroup(t *testing.T) {
	s := &services.GroupSummary{
		Name:            "Empty",
		Currency:        "USD",
		TotalBudgeted:   decimal.Zero,
		TotalSpent:      decimal.Zero,
		TotalRemaining:  decimal.Zero,
		PercentageUsed:  decimal.Zero,
		AlertThreshold:  decimal.NewFromInt(80),
		Status:          models.BudgetStatusOnTrack,
		CategorySummary: map[string]*services.CategorySummary{},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, s))
	assert.NotZero(t, buf.Len())
}
