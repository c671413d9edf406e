package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/period"
	"pennywise/internal/testutil"
)

func groupInput(name string, start, end time.Time) BudgetGroupInput {
	return BudgetGroupInput{
		Name:       name,
		PeriodType: period.TypeCustom,
		StartDate:  start,
		EndDate:    end,
		Currency:   "USD",
	}
}

func TestCreateBudgetGroup(t *testing.T) {
	ctx := context.Background()
	march, marchEnd := testutil.Date(2025, time.March, 1), testutil.Date(2025, time.March, 31)

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewBudgetGroupService(db, nil, testThresholds())
		user := testutil.CreateTestUser(t, db)

		group, created, err := svc.CreateBudgetGroup(ctx, user.ID, groupInput("March 2025", march, marchEnd))
		testutil.AssertNoError(t, err)
		assert.NotEmpty(t, group.ID)
		assert.Zero(t, created)
		assert.True(t, group.IsActive)
		assert.Equal(t, "USD", group.Currency)
	})

	t.Run("validation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewBudgetGroupService(db, nil, testThresholds())
		user := testutil.CreateTestUser(t, db)

		cases := map[string]struct {
			mutate func(*BudgetGroupInput)
			code   string
		}{
			"short_name":        {func(in *BudgetGroupInput) { in.Name = " ab " }, "INVALID_INPUT"},
			"bad_period_type":   {func(in *BudgetGroupInput) { in.PeriodType = "fortnightly" }, "INVALID_INPUT"},
			"end_before_start":  {func(in *BudgetGroupInput) { in.EndDate = march.AddDate(0, 0, -1) }, "INVALID_PERIOD"},
			"inactive_currency": {func(in *BudgetGroupInput) { in.Currency = "XTS" }, "CURRENCY_INACTIVE"},
			"bad_auto_create": {func(in *BudgetGroupInput) {
				in.AutoCreate = &GenerateOptions{Scope: models.CategoryScopePrimary, DefaultAmount: decimal.Zero}
			}, "INVALID_AMOUNT"},
		}
		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				in := groupInput("March 2025", march, marchEnd)
				tc.mutate(&in)
				_, _, err := svc.CreateBudgetGroup(ctx, user.ID, in)
				testutil.AssertAppError(t, err, tc.code)
			})
		}
	})

	t.Run("overlapping_group_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewBudgetGroupService(db, nil, testThresholds())
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		_, _, err := svc.CreateBudgetGroup(ctx, user.ID, groupInput("March 2025", march, marchEnd))
		testutil.AssertNoError(t, err)

		_, _, err = svc.CreateBudgetGroup(ctx, user.ID, groupInput("Mid March", testutil.Date(2025, time.March, 15), testutil.Date(2025, time.April, 15)))
		testutil.AssertAppError(t, err, "PERIOD_OVERLAP")
		assert.Contains(t, err.Error(), "March 2025")

		_, _, err = svc.CreateBudgetGroup(ctx, other.ID, groupInput("Mid March", testutil.Date(2025, time.March, 15), testutil.Date(2025, time.April, 15)))
		testutil.AssertNoError(t, err)

		_, _, err = svc.CreateBudgetGroup(ctx, user.ID, groupInput("April 2025", testutil.Date(2025, time.April, 1), testutil.Date(2025, time.April, 30)))
		testutil.AssertNoError(t, err)
	})

	t.Run("auto_create", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewBudgetGroupService(db, nil, testThresholds())
		user := testutil.CreateTestUser(t, db)
		food := testutil.CreateTestCategory(t, db, user.ID, "Food", nil)
		testutil.CreateTestCategory(t, db, user.ID, "Snacks", &food.ID)
		rent := testutil.CreateTestCategory(t, db, user.ID, "Rent", nil)
		testutil.CreateTestIncomeCategory(t, db, user.ID, "Salary")

		in := groupInput("March 2025", march, marchEnd)
		in.AutoCreate = &GenerateOptions{
			Scope:         models.CategoryScopePrimary,
			DefaultAmount: d("100"),
			Overrides:     map[string]decimal.Decimal{rent.ID: d("1200")},
		}
		group, created, err := svc.CreateBudgetGroup(ctx, user.ID, in)
		testutil.AssertNoError(t, err)
		assert.Equal(t, 2, created)

		full, err := svc.GetBudgetGroupWithBudgets(ctx, user.ID, group.ID)
		testutil.AssertNoError(t, err)
		require.Len(t, full.Budgets, 2)
		amounts := map[string]string{}
		for _, b := range full.Budgets {
			amounts[b.Name] = b.Amount.String()
			assert.Equal(t, march, b.StartDate.UTC())
			require.NotNil(t, b.EndDate)
			assert.Equal(t, "80", b.AlertThreshold.String())
		}
		assert.Equal(t, map[string]string{"Food": "100", "Rent": "1200"}, amounts)
	})
}

func TestBudgetGroupQueries(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := NewBudgetGroupService(db, nil, testThresholds())
	user := testutil.CreateTestUser(t, db)

	march := testutil.CreateTestBudgetGroup(t, db, user.ID, testutil.Date(2025, time.March, 1), testutil.Date(2025, time.March, 31), "USD")
	april := testutil.CreateTestBudgetGroup(t, db, user.ID, testutil.Date(2025, time.April, 1), testutil.Date(2025, time.April, 30), "USD")
	testutil.AssertNoError(t, svc.DeactivateBudgetGroup(ctx, user.ID, april.ID))

	t.Run("list_active", func(t *testing.T) {
		page, err := svc.GetUserBudgetGroups(ctx, user.ID, pagination.PageRequest{}, nil)
		testutil.AssertNoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, march.ID, page.Data[0].ID)
	})

	t.Run("list_inactive", func(t *testing.T) {
		page, err := svc.GetUserBudgetGroups(ctx, user.ID, pagination.PageRequest{}, testutil.Ptr(false))
		testutil.AssertNoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, april.ID, page.Data[0].ID)
	})

	t.Run("get_inactive_by_id", func(t *testing.T) {
		got, err := svc.GetBudgetGroupByID(ctx, user.ID, april.ID)
		testutil.AssertNoError(t, err)
		assert.False(t, got.IsActive)
	})

	t.Run("other_user", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db)
		_, err := svc.GetBudgetGroupByID(ctx, other.ID, march.ID)
		testutil.AssertAppError(t, err, "BUDGET_GROUP_NOT_FOUND")
	})

	t.Run("current", func(t *testing.T) {
		groups, err := svc.GetCurrentBudgetGroups(ctx, user.ID, testutil.Ptr(testutil.Date(2025, time.March, 31)))
		testutil.AssertNoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, march.ID, groups[0].ID)

		groups, err = svc.GetCurrentBudgetGroups(ctx, user.ID, testutil.Ptr(testutil.Date(2025, time.April, 10)))
		testutil.AssertNoError(t, err)
		assert.Empty(t, groups)
	})
}

func TestUpdateBudgetGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("propagates_to_members", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewBudgetGroupService(db, nil, testThresholds())
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestBudgetGroup(t, db, user.ID, testutil.Date(2025, time.March, 1), testutil.Date(2025, time.March, 31), "USD")
		member := testutil.CreateTestBudget(t, db, user.ID, "100", testutil.InGroup(group))
		retired := testutil.CreateTestBudget(t, db, user.ID, "100", testutil.InGroup(group), testutil.Inactive())

		newEnd := testutil.Date(2025, time.April, 15)
		updated, err := svc.UpdateBudgetGroup(ctx, user.ID, group.ID, BudgetGroupUpdate{
			Name:     testutil.Ptr("Spring"),
			EndDate:  &newEnd,
			Currency: testutil.Ptr("eur"),
		})
		testutil.AssertNoError(t, err)
		assert.Equal(t, "Spring", updated.Name)
		assert.Equal(t, "EUR", updated.Currency)
		assert.Equal(t, newEnd, updated.EndDate.UTC())

		var got models.Budget
		require.NoError(t, db.First(&got, "id = ?", member.ID).Error)
		assert.Equal(t, "EUR", got.Currency)
		require.NotNil(t, got.EndDate)
		assert.Equal(t, newEnd, got.EndDate.UTC())

		require.NoError(t, db.First(&got, "id = ?", retired.ID).Error)
		assert.Equal(t, "USD", got.Currency)
	})

	t.Run("overlap_rechecked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewBudgetGroupService(db, nil, testThresholds())
		user := testutil.CreateTestUser(t, db)
		march := testutil.CreateTestBudgetGroup(t, db, user.ID, testutil.Date(2025, time.March, 1), testutil.Date(2025, time.March, 31), "USD")
		testutil.CreateTestBudgetGroup(t, db, user.ID, testutil.Date(2025, time.April, 1), testutil.Date(2025, time.April, 30), "USD")

		_, err := svc.UpdateBudgetGroup(ctx, user.ID, march.ID, BudgetGroupUpdate{Name: testutil.Ptr("Still March")})
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateBudgetGroup(ctx, user.ID, march.ID, BudgetGroupUpdate{EndDate: testutil.Ptr(testutil.Date(2025, time.April, 1))})
		testutil.AssertAppError(t, err, "PERIOD_OVERLAP")

		_, err = svc.UpdateBudgetGroup(ctx, user.ID, march.ID, BudgetGroupUpdate{EndDate: testutil.Ptr(testutil.Date(2025, time.February, 1))})
		testutil.AssertAppError(t, err, "INVALID_PERIOD")
	})

	t.Run("reactivation_rechecked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewBudgetGroupService(db, nil, testThresholds())
		user := testutil.CreateTestUser(t, db)
		first := testutil.CreateTestBudgetGroup(t, db, user.ID, testutil.Date(2025, time.March, 1), testutil.Date(2025, time.March, 31), "USD")
		testutil.AssertNoError(t, svc.DeactivateBudgetGroup(ctx, user.ID, first.ID))
		testutil.CreateTestBudgetGroup(t, db, user.ID, testutil.Date(2025, time.March, 10), testutil.Date(2025, time.March, 20), "USD")

		_, err := svc.UpdateBudgetGroup(ctx, user.ID, first.ID, BudgetGroupUpdate{IsActive: testutil.Ptr(true)})
		testutil.AssertAppError(t, err, "PERIOD_OVERLAP")
	})
}

func TestDeactivateBudgetGroup_KeepsBudgets(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := NewBudgetGroupService(db, nil, testThresholds())
	user := testutil.CreateTestUser(t, db)
	group := testutil.CreateTestBudgetGroup(t, db, user.ID, testutil.Date(2025, time.March, 1), testutil.Date(2025, time.March, 31), "USD")
	member := testutil.CreateTestBudget(t, db, user.ID, "100", testutil.InGroup(group))

	testutil.AssertNoError(t, svc.DeactivateBudgetGroup(ctx, user.ID, group.ID))
	testutil.AssertNoError(t, svc.DeactivateBudgetGroup(ctx, user.ID, group.ID))

	var got models.Budget
	require.NoError(t, db.First(&got, "id = ?", member.ID).Error)
	assert.True(t, got.IsActive)

	_, err := svc.GenerateBudgets(ctx, user.ID, group.ID, GenerateOptions{Scope: models.CategoryScopeAll, DefaultAmount: d("10")})
	testutil.AssertAppError(t, err, "BUDGET_GROUP_NOT_FOUND")
}

func TestGetBudgetGroupSummary(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := NewBudgetGroupService(db, nil, testThresholds())
	user := testutil.CreateTestUser(t, db)
	group := testutil.CreateTestBudgetGroup(t, db, user.ID, testutil.Date(2025, time.March, 1), testutil.Date(2025, time.March, 31), "USD")

	food := testutil.CreateTestCategory(t, db, user.ID, "Food", nil)
	transport := testutil.CreateTestCategory(t, db, user.ID, "Transport", nil)
	snacks := testutil.CreateTestCategory(t, db, user.ID, "Snacks", &food.ID)

	testutil.CreateTestBudget(t, db, user.ID, "300", testutil.InGroup(group), testutil.ForCategory(food))
	testutil.CreateTestBudget(t, db, user.ID, "50", testutil.InGroup(group), testutil.ForCategory(snacks))
	testutil.CreateTestBudget(t, db, user.ID, "50", testutil.InGroup(group), testutil.ForCategory(transport))
	testutil.CreateTestBudget(t, db, user.ID, "999", testutil.InGroup(group), testutil.Inactive())

	testutil.CreateTestExpense(t, db, user.ID, &food.ID, nil, "250", testutil.Date(2025, time.March, 5))
	testutil.CreateTestExpense(t, db, user.ID, &food.ID, &snacks.ID, "50", testutil.Date(2025, time.March, 6))
	testutil.CreateTestExpense(t, db, user.ID, &transport.ID, nil, "70", testutil.Date(2025, time.March, 7))

	summary, err := svc.GetBudgetGroupSummary(ctx, user.ID, group.ID)
	testutil.AssertNoError(t, err)

	assert.Equal(t, 3, summary.BudgetCount)
	assert.Equal(t, "400", summary.TotalBudgeted.String())
	assert.Equal(t, "420", summary.TotalSpent.String())
	assert.Equal(t, "-20", summary.TotalRemaining.String())
	assert.Equal(t, models.BudgetStatusOverBudget, summary.Status)

	require.Contains(t, summary.CategorySummary, "Food")
	foodNode := summary.CategorySummary["Food"]
	assert.Equal(t, "300", foodNode.Budgeted.String())
	assert.Equal(t, "300", foodNode.Spent.String())
	assert.Equal(t, "350", foodNode.TotalBudgeted.String())
	assert.Equal(t, "350", foodNode.TotalSpent.String())
	require.Contains(t, foodNode.Subcategories, "Snacks")
	assert.Equal(t, "100", foodNode.Subcategories["Snacks"].PercentageUsed.String())

	require.Contains(t, summary.CategorySummary, "Transport")
	assert.Equal(t, "-20", summary.CategorySummary["Transport"].Remaining.String())

	_, err = svc.GetBudgetGroupSummary(ctx, user.ID, "missing")
	testutil.AssertAppError(t, err, "BUDGET_GROUP_NOT_FOUND")
}

func TestGetUserGroupsSummary(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := NewBudgetGroupService(db, nil, testThresholds())
	user := testutil.CreateTestUser(t, db)

	march := testutil.CreateTestBudgetGroup(t, db, user.ID, testutil.Date(2025, time.March, 1), testutil.Date(2025, time.March, 31), "USD")
	testutil.CreateTestBudgetGroup(t, db, user.ID, testutil.Date(2025, time.April, 1), testutil.Date(2025, time.April, 30), "USD")
	old := testutil.CreateTestBudgetGroup(t, db, user.ID, testutil.Date(2025, time.January, 1), testutil.Date(2025, time.January, 31), "USD")
	testutil.AssertNoError(t, svc.DeactivateBudgetGroup(ctx, user.ID, old.ID))

	food := testutil.CreateTestCategory(t, db, user.ID, "Food", nil)
	testutil.CreateTestBudget(t, db, user.ID, "200", testutil.InGroup(march), testutil.ForCategory(food))
	testutil.CreateTestExpense(t, db, user.ID, &food.ID, nil, "170", testutil.Date(2025, time.March, 20))

	asOf := testutil.Date(2025, time.March, 20)
	summary, err := svc.GetUserGroupsSummary(ctx, user.ID, &asOf)
	testutil.AssertNoError(t, err)
	assert.Equal(t, 3, summary.TotalGroups)
	assert.Equal(t, 2, summary.ActiveGroups)
	assert.Equal(t, 1, summary.CurrentPeriodGroups)
	require.Len(t, summary.Groups, 1)
	assert.Equal(t, "200", summary.TotalBudgeted.String())
	assert.Equal(t, "85", summary.PercentageUsed.String())
	assert.Equal(t, models.BudgetStatusWarning, summary.Status)

	empty, err := svc.GetUserGroupsSummary(ctx, user.ID, testutil.Ptr(testutil.Date(2024, time.June, 1)))
	testutil.AssertNoError(t, err)
	assert.Zero(t, empty.CurrentPeriodGroups)
	assert.True(t, empty.TotalBudgeted.IsZero())
	assert.Equal(t, models.BudgetStatusOnTrack, empty.Status)
}

func TestGenerateBudgets(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := NewBudgetGroupService(db, nil, testThresholds())
	user := testutil.CreateTestUser(t, db)
	group := testutil.CreateTestBudgetGroup(t, db, user.ID, testutil.Date(2025, time.March, 1), testutil.Date(2025, time.March, 31), "USD")
	food := testutil.CreateTestCategory(t, db, user.ID, "Food", nil)
	testutil.CreateTestCategory(t, db, user.ID, "Snacks", &food.ID)
	testutil.CreateTestCategory(t, db, user.ID, "Rent", nil)

	opts := GenerateOptions{Scope: models.CategoryScopeAll, DefaultAmount: d("25")}
	created, err := svc.GenerateBudgets(ctx, user.ID, group.ID, opts)
	testutil.AssertNoError(t, err)
	assert.Equal(t, 3, created)

	created, err = svc.GenerateBudgets(ctx, user.ID, group.ID, opts)
	testutil.AssertNoError(t, err)
	assert.Zero(t, created)

	_, err = svc.GenerateBudgets(ctx, user.ID, group.ID, GenerateOptions{Scope: "every", DefaultAmount: d("25")})
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestBulkUpdateAmounts(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := NewBudgetGroupService(db, nil, testThresholds())
	user := testutil.CreateTestUser(t, db)
	group := testutil.CreateTestBudgetGroup(t, db, user.ID, testutil.Date(2025, time.March, 1), testutil.Date(2025, time.March, 31), "USD")
	food := testutil.CreateTestCategory(t, db, user.ID, "Food", nil)
	rent := testutil.CreateTestCategory(t, db, user.ID, "Rent", nil)
	foodBudget := testutil.CreateTestBudget(t, db, user.ID, "100", testutil.InGroup(group), testutil.ForCategory(food))
	rentBudget := testutil.CreateTestBudget(t, db, user.ID, "900", testutil.InGroup(group), testutil.ForCategory(rent))

	updated, err := svc.BulkUpdateAmounts(ctx, user.ID, group.ID, []AmountUpdate{
		{BudgetID: &foodBudget.ID, Amount: d("150")},
		{CategoryID: &rent.ID, Amount: d("1000")},
		{BudgetID: testutil.Ptr("missing"), Amount: d("1")},
		{BudgetID: &foodBudget.ID, Amount: d("-5")},
	})
	testutil.AssertNoError(t, err)
	assert.Equal(t, 2, updated)

	var got models.Budget
	require.NoError(t, db.First(&got, "id = ?", foodBudget.ID).Error)
	assert.Equal(t, "150", got.Amount.String())
	require.NoError(t, db.First(&got, "id = ?", rentBudget.ID).Error)
	assert.Equal(t, "1000", got.Amount.String())

	_, err = svc.BulkUpdateAmounts(ctx, user.ID, "missing", nil)
	testutil.AssertAppError(t, err, "BUDGET_GROUP_NOT_FOUND")
}

func TestValidateGroupPeriod(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := NewBudgetGroupService(db, nil, testThresholds())
	user := testutil.CreateTestUser(t, db)
	march := testutil.CreateTestBudgetGroup(t, db, user.ID, testutil.Date(2025, time.March, 1), testutil.Date(2025, time.March, 31), "USD")

	check, err := svc.ValidateGroupPeriod(ctx, user.ID, period.Closed(testutil.Date(2025, time.March, 15), testutil.Date(2025, time.April, 15)), "")
	testutil.AssertNoError(t, err)
	assert.False(t, check.Valid)
	assert.Equal(t, march.ID, check.ConflictID)
	assert.Equal(t, march.Name, check.ConflictName)
	assert.NotEmpty(t, check.Message)

	check, err = svc.ValidateGroupPeriod(ctx, user.ID, period.Closed(testutil.Date(2025, time.March, 15), testutil.Date(2025, time.April, 15)), march.ID)
	testutil.AssertNoError(t, err)
	assert.True(t, check.Valid)

	check, err = svc.ValidateGroupPeriod(ctx, user.ID, period.Closed(testutil.Date(2025, time.April, 1), testutil.Date(2025, time.April, 30)), "")
	testutil.AssertNoError(t, err)
	assert.True(t, check.Valid)

	_, err = svc.ValidateGroupPeriod(ctx, user.ID, period.Closed(testutil.Date(2025, time.April, 30), testutil.Date(2025, time.April, 1)), "")
	testutil.AssertAppError(t, err, "INVALID_PERIOD")
}
