package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/metrics"
	"pennywise/internal/models"
	"pennywise/internal/period"
	"pennywise/internal/repositories"
	"pennywise/internal/repositories/repository_mocks"
	"pennywise/internal/testutil"
)

var d = testutil.Dec

func node(id, name string, parentID *string) repositories.CategoryNode {
	return repositories.CategoryNode{ID: id, Name: name, ParentID: parentID, Active: true, Type: models.CategoryTypeExpense}
}

func march2025() *models.BudgetGroup {
	return &models.BudgetGroup{
		Base:       models.Base{ID: "group-march"},
		UserID:     "user-1",
		Name:       "March",
		PeriodType: period.TypeMonthly,
		StartDate:  testutil.Date(2025, time.March, 1),
		EndDate:    testutil.Date(2025, time.March, 31),
		Currency:   "EUR",
		IsActive:   true,
	}
}

func memberBudget(id string, group *models.BudgetGroup, categoryID *string, amount string) models.Budget {
	end := group.EndDate
	return models.Budget{
		Base:           models.Base{ID: id},
		UserID:         group.UserID,
		Name:           id,
		Amount:         d(amount),
		Currency:       group.Currency,
		PeriodType:     group.PeriodType,
		StartDate:      group.StartDate,
		EndDate:        &end,
		CategoryID:     categoryID,
		BudgetGroupID:  &group.ID,
		AlertThreshold: decimal.NewFromInt(80),
		IsActive:       true,
	}
}

type EngineSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	spend      *repository_mocks.MockSpendLookup
	categories *repository_mocks.MockCategoryTree
	budgets    *repository_mocks.MockBudgetStore
	periods    *repository_mocks.MockPeriodStore
	registry   *prometheus.Registry
	recorder   *metrics.Recorder
	ctx        context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.spend = repository_mocks.NewMockSpendLookup(s.ctrl)
	s.categories = repository_mocks.NewMockCategoryTree(s.ctrl)
	s.budgets = repository_mocks.NewMockBudgetStore(s.ctrl)
	s.periods = repository_mocks.NewMockPeriodStore(s.ctrl)
	s.registry = prometheus.NewRegistry()
	s.recorder = metrics.New(s.registry)
	s.ctx = context.Background()
}

func (s *EngineSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *EngineSuite) groupAggregator() *GroupAggregator {
	return NewGroupAggregator(NewBudgetAggregator(s.spend), decimal.NewFromInt(80))
}

func (s *EngineSuite) TestPerformance_RemainingIdentity() {
	for _, tc := range []struct{ amount, spent string }{
		{"100", "40"}, {"100", "100"}, {"100", "130.5"}, {"0", "0"}, {"0", "12"},
	} {
		b := memberBudget("b", march2025(), nil, tc.amount)
		s.spend.EXPECT().Spent(gomock.Any(), "user-1", b.Period(), nil).Return(d(tc.spent), nil)

		perf, err := NewBudgetAggregator(s.spend).Performance(s.ctx, &b)
		s.Require().NoError(err)
		s.True(perf.Remaining.Equal(perf.Amount.Sub(perf.Spent)), "amount %s spent %s", tc.amount, tc.spent)
	}
}

func (s *EngineSuite) TestPerformance_ZeroAmount() {
	b := memberBudget("b", march2025(), nil, "0")
	s.spend.EXPECT().Spent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(d("5"), nil)

	perf, err := NewBudgetAggregator(s.spend).Performance(s.ctx, &b)
	s.Require().NoError(err)
	s.True(perf.PercentageUsed.IsZero())
	s.Equal(models.BudgetStatusOverBudget, perf.Status)
}

func (s *EngineSuite) TestPerformance_SpendError() {
	b := memberBudget("b", march2025(), nil, "10")
	boom := errors.New("boom")
	s.spend.EXPECT().Spent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(decimal.Zero, boom)

	_, err := NewBudgetAggregator(s.spend).Performance(s.ctx, &b)
	s.ErrorIs(err, boom)
}

func (s *EngineSuite) TestGroupSummary_MarchScenario() {
	group := march2025()
	food, transport := "cat-food", "cat-transport"
	budgets := []models.Budget{
		memberBudget("food", group, &food, "300"),
		memberBudget("transport", group, &transport, "100"),
	}
	s.spend.EXPECT().Spent(gomock.Any(), "user-1", group.Period(), &food).Return(d("250"), nil)
	s.spend.EXPECT().Spent(gomock.Any(), "user-1", group.Period(), &transport).Return(d("120"), nil)

	summary, err := s.groupAggregator().Summary(s.ctx, group, budgets, []repositories.CategoryNode{
		node(food, "Food", nil),
		node(transport, "Transport", nil),
	})
	s.Require().NoError(err)

	s.Equal("400", summary.TotalBudgeted.String())
	s.Equal("370", summary.TotalSpent.String())
	s.Equal("30", summary.TotalRemaining.String())
	s.Equal("92.5", summary.PercentageUsed.String())
	s.Equal(models.BudgetStatusWarning, summary.Status)
	s.Equal(2, summary.BudgetCount)

	s.Equal(models.BudgetStatusWarning, summary.Budgets[0].Status)
	s.Equal(models.BudgetStatusOverBudget, summary.Budgets[1].Status)
	s.Equal("-20", summary.Budgets[1].Remaining.String())

	s.Require().Contains(summary.CategorySummary, "Transport")
	s.Equal("120", summary.CategorySummary["Transport"].Spent.String())
}

func (s *EngineSuite) TestGroupSummary_TreeInvariant() {
	group := march2025()
	food, snacks, dining, misc := "food", "snacks", "dining", "misc"
	budgets := []models.Budget{
		memberBudget("b-food", group, &food, "200"),
		memberBudget("b-snacks", group, &snacks, "50"),
		memberBudget("b-dining", group, &dining, "80"),
		memberBudget("b-all", group, nil, "1000"),
		memberBudget("b-gone", group, &misc, "10"),
	}
	inactive := memberBudget("b-off", group, &food, "999")
	inactive.IsActive = false
	budgets = append(budgets, inactive)

	spent := map[string]string{food: "150", snacks: "60", dining: "20", misc: "1"}
	s.spend.EXPECT().Spent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ period.Period, categoryID *string) (decimal.Decimal, error) {
			if categoryID == nil {
				return d("300"), nil
			}
			return d(spent[*categoryID]), nil
		}).Times(5)

	summary, err := s.groupAggregator().Summary(s.ctx, group, budgets, []repositories.CategoryNode{
		node(food, "Food", nil),
		node(snacks, "Snacks", &food),
		node(dining, "Dining", &food),
	})
	s.Require().NoError(err)

	s.Equal("1340", summary.TotalBudgeted.String())
	s.Equal("531", summary.TotalSpent.String())
	s.Len(summary.CategorySummary, 1)

	primary := summary.CategorySummary["Food"]
	s.Require().NotNil(primary)
	s.Equal("200", primary.Budgeted.String())
	s.Equal("150", primary.Spent.String())

	subBudgeted, subSpent := decimal.Zero, decimal.Zero
	for _, leaf := range primary.Subcategories {
		subBudgeted = subBudgeted.Add(leaf.Budgeted)
		subSpent = subSpent.Add(leaf.Spent)
	}
	s.True(primary.TotalBudgeted.Equal(primary.Budgeted.Add(subBudgeted)))
	s.True(primary.TotalSpent.Equal(primary.Spent.Add(subSpent)))
	s.Equal("-10", primary.Subcategories["Snacks"].Remaining.String())
	s.Equal("120", primary.Subcategories["Snacks"].PercentageUsed.String())
	s.Equal("100", primary.TotalRemaining.String())
}

func (s *EngineSuite) TestGroupSummary_CommutativeTotals() {
	group := march2025()
	a, b, c := "a", "b", "c"
	budgets := []models.Budget{
		memberBudget("1", group, &a, "10.5"),
		memberBudget("2", group, &b, "20"),
		memberBudget("3", group, &c, "30.25"),
	}
	s.spend.EXPECT().Spent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ period.Period, categoryID *string) (decimal.Decimal, error) {
			return map[string]decimal.Decimal{a: d("1.1"), b: d("2.2"), c: d("3.3")}[*categoryID], nil
		}).AnyTimes()

	forward, err := s.groupAggregator().Summary(s.ctx, group, budgets, nil)
	s.Require().NoError(err)
	reversed, err := s.groupAggregator().Summary(s.ctx, group, []models.Budget{budgets[2], budgets[0], budgets[1]}, nil)
	s.Require().NoError(err)

	s.True(forward.TotalBudgeted.Equal(reversed.TotalBudgeted))
	s.True(forward.TotalSpent.Equal(reversed.TotalSpent))
	s.Equal(forward.Status, reversed.Status)
}

func (s *EngineSuite) TestGroupSummary_RejectsDeepNesting() {
	group := march2025()
	a, b := "a", "b"
	_, err := s.groupAggregator().Summary(s.ctx, group, nil, []repositories.CategoryNode{
		node(a, "A", nil),
		node(b, "B", &a),
		node("c", "C", &b),
	})
	testutil.AssertAppError(s.T(), err, apperrors.ErrCategoryTooDeep.Code)
}

func (s *EngineSuite) TestGroupSummary_Empty() {
	summary, err := s.groupAggregator().Summary(s.ctx, march2025(), nil, nil)
	s.Require().NoError(err)
	s.True(summary.PercentageUsed.IsZero())
	s.Equal(models.BudgetStatusOnTrack, summary.Status)
	s.Empty(summary.Budgets)
}

func (s *EngineSuite) TestGenerate_PrimaryScope() {
	group := march2025()
	food := "food"
	income := node("salary", "Salary", nil)
	income.Type = models.CategoryTypeIncome
	s.categories.EXPECT().Categories(gomock.Any(), "user-1", false).Return([]repositories.CategoryNode{
		node("rent", "Rent", nil),
		node("groceries", "Groceries", nil),
		node("snacks", "Snacks", &food),
		income,
	}, nil)
	s.budgets.EXPECT().CategoriesWithActiveBudget(gomock.Any(), group.ID).Return(map[string]bool{}, nil)

	var created []*models.Budget
	s.budgets.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b *models.Budget) error {
			created = append(created, b)
			return nil
		}).Times(2)

	gen := NewBudgetGenerator(s.categories, s.budgets, decimal.NewFromInt(80))
	n, err := gen.Generate(s.ctx, group, GenerateOptions{Scope: models.CategoryScopePrimary, DefaultAmount: d("50")})
	s.Require().NoError(err)
	s.Equal(2, n)

	s.Equal("Rent", created[0].Name)
	s.Equal("Groceries", created[1].Name)
	for _, b := range created {
		s.Equal("50", b.Amount.String())
		s.Equal("EUR", b.Currency)
		s.Equal(period.TypeMonthly, b.PeriodType)
		s.Equal(group.Period(), b.Period())
		s.Equal(group.ID, *b.BudgetGroupID)
		s.Equal("80", b.AlertThreshold.String())
		s.True(b.IsActive)
	}
}

func (s *EngineSuite) TestGenerate_OverridesAndScopes() {
	group := march2025()
	food := "food"
	nodes := []repositories.CategoryNode{node(food, "Food", nil), node("snacks", "Snacks", &food)}

	s.categories.EXPECT().Categories(gomock.Any(), gomock.Any(), true).Return(nodes, nil).Times(2)
	s.budgets.EXPECT().CategoriesWithActiveBudget(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) (map[string]bool, error) { return map[string]bool{}, nil }).
		Times(2)

	var amounts []string
	s.budgets.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b *models.Budget) error {
			amounts = append(amounts, b.Name+"="+b.Amount.String())
			return nil
		}).Times(3)

	gen := NewBudgetGenerator(s.categories, s.budgets, decimal.NewFromInt(80))
	n, err := gen.Generate(s.ctx, group, GenerateOptions{
		Scope:           models.CategoryScopeSubcategories,
		DefaultAmount:   d("10"),
		IncludeInactive: true,
	})
	s.Require().NoError(err)
	s.Equal(1, n)

	n, err = gen.Generate(s.ctx, group, GenerateOptions{
		Scope:           models.CategoryScopeAll,
		DefaultAmount:   d("10"),
		IncludeInactive: true,
		Overrides:       map[string]decimal.Decimal{food: d("0")},
	})
	s.Require().NoError(err)
	s.Equal(2, n)
	s.Equal([]string{"Snacks=10", "Food=0", "Snacks=10"}, amounts)
}

func (s *EngineSuite) TestGenerate_Idempotent() {
	group := march2025()
	existing := map[string]bool{}
	s.categories.EXPECT().Categories(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]repositories.CategoryNode{node("rent", "Rent", nil)}, nil).Times(2)
	s.budgets.EXPECT().CategoriesWithActiveBudget(gomock.Any(), group.ID).
		DoAndReturn(func(context.Context, string) (map[string]bool, error) {
			out := make(map[string]bool, len(existing))
			for k, v := range existing {
				out[k] = v
			}
			return out, nil
		}).Times(2)
	s.budgets.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b *models.Budget) error {
			existing[*b.CategoryID] = true
			return nil
		}).Times(1)

	gen := NewBudgetGenerator(s.categories, s.budgets, decimal.NewFromInt(80))
	opts := GenerateOptions{Scope: models.CategoryScopeAll, DefaultAmount: d("25")}

	first, err := gen.Generate(s.ctx, group, opts)
	s.Require().NoError(err)
	second, err := gen.Generate(s.ctx, group, opts)
	s.Require().NoError(err)
	s.Equal(1, first)
	s.Equal(0, second)
}

func (s *EngineSuite) TestGenerate_InvalidOptions() {
	gen := NewBudgetGenerator(s.categories, s.budgets, decimal.NewFromInt(80))
	group := march2025()

	_, err := gen.Generate(s.ctx, group, GenerateOptions{Scope: "everything", DefaultAmount: d("1")})
	testutil.AssertAppError(s.T(), err, apperrors.ErrInvalidInput.Code)

	_, err = gen.Generate(s.ctx, group, GenerateOptions{Scope: models.CategoryScopeAll, DefaultAmount: d("0")})
	testutil.AssertAppError(s.T(), err, apperrors.ErrInvalidAmount.Code)

	_, err = gen.Generate(s.ctx, group, GenerateOptions{
		Scope:         models.CategoryScopeAll,
		DefaultAmount: d("1"),
		Overrides:     map[string]decimal.Decimal{"x": d("-1")},
	})
	testutil.AssertAppError(s.T(), err, apperrors.ErrInvalidAmount.Code)
}

func (s *EngineSuite) TestBulkUpdate_SkipsNegativeAndUnknown() {
	budgetID, categoryID, missing := "b-1", "cat-2", "nope"
	s.budgets.EXPECT().FindActiveInGroup(gomock.Any(), "g", budgetID).
		Return(&models.Budget{Base: models.Base{ID: budgetID}}, nil)
	s.budgets.EXPECT().FindActiveByCategory(gomock.Any(), "g", categoryID).
		Return(&models.Budget{Base: models.Base{ID: "b-2"}}, nil)
	s.budgets.EXPECT().FindActiveInGroup(gomock.Any(), "g", missing).
		Return(nil, repositories.ErrRecordNotFound)
	s.budgets.EXPECT().UpdateAmount(gomock.Any(), budgetID, d("75")).Return(nil)
	s.budgets.EXPECT().UpdateAmount(gomock.Any(), "b-2", d("0")).Return(nil)

	n, err := NewBulkAmountUpdater(s.budgets).Apply(s.ctx, "g", []AmountUpdate{
		{BudgetID: &budgetID, Amount: d("75")},
		{CategoryID: &categoryID, Amount: d("0")},
		{BudgetID: &budgetID, Amount: d("-5")},
		{BudgetID: &missing, Amount: d("10")},
		{Amount: d("10")},
	})
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *EngineSuite) TestBulkUpdate_StoreError() {
	id := "b-1"
	s.budgets.EXPECT().FindActiveInGroup(gomock.Any(), "g", id).Return(nil, errors.New("db down"))

	_, err := NewBulkAmountUpdater(s.budgets).Apply(s.ctx, "g", []AmountUpdate{{BudgetID: &id, Amount: d("1")}})
	testutil.AssertAppError(s.T(), err, apperrors.ErrInternalServer.Code)
}

func (s *EngineSuite) TestCheckGroup_RejectsOverlap() {
	existing := []repositories.PeriodRecord{{
		ID:        "march",
		Name:      "March",
		Period:    period.Closed(testutil.Date(2025, time.March, 1), testutil.Date(2025, time.March, 31)),
		CreatedAt: time.Now(),
	}}
	s.periods.EXPECT().LockUser(gomock.Any(), "user-1").Return(nil)
	s.periods.EXPECT().GroupPeriods(gomock.Any(), "user-1").Return(existing, nil)

	guard := NewOverlapGuard(s.periods, s.recorder)
	err := guard.CheckGroup(s.ctx, "user-1",
		period.Closed(testutil.Date(2025, time.March, 15), testutil.Date(2025, time.April, 15)), "")
	testutil.AssertAppError(s.T(), err, apperrors.ErrPeriodOverlap.Code)
	s.Contains(err.Error(), "March")
	s.NoError(promtest.GatherAndCompare(s.registry, strings.NewReader(`
# HELP budget_period_conflicts_total Total number of writes rejected for overlapping periods
# TYPE budget_period_conflicts_total counter
budget_period_conflicts_total{resource="budget_group"} 1
`), "budget_period_conflicts_total"))
}

func (s *EngineSuite) TestCheckBudget_ExcludesSelf() {
	categoryID := "cat"
	existing := []repositories.PeriodRecord{{
		ID:     "self",
		Name:   "Mine",
		Period: period.New(testutil.Date(2025, time.January, 1), nil),
	}}
	s.periods.EXPECT().LockUser(gomock.Any(), "user-1").Return(nil).Times(2)
	s.periods.EXPECT().BudgetPeriods(gomock.Any(), "user-1", &categoryID, nil).Return(existing, nil).Times(2)

	guard := NewOverlapGuard(s.periods, s.recorder)
	p := period.New(testutil.Date(2030, time.January, 1), nil)
	s.NoError(guard.CheckBudget(s.ctx, "user-1", p, &categoryID, nil, "self"))
	testutil.AssertAppError(s.T(), guard.CheckBudget(s.ctx, "user-1", p, &categoryID, nil, ""), apperrors.ErrPeriodOverlap.Code)
}

func (s *EngineSuite) TestCheckBudget_LockError() {
	s.periods.EXPECT().LockUser(gomock.Any(), "user-1").Return(errors.New("lock"))

	err := NewOverlapGuard(s.periods, nil).CheckBudget(s.ctx, "user-1", period.New(time.Now(), nil), nil, nil, "")
	testutil.AssertAppError(s.T(), err, apperrors.ErrInternalServer.Code)
}

func TestClassify(t *testing.T) {
	threshold := decimal.NewFromInt(80)
	tests := []struct {
		name   string
		amount string
		spent  string
		want   models.BudgetStatus
	}{
		{"nothing_spent", "100", "0", models.BudgetStatusOnTrack},
		{"below_threshold", "100", "79.99", models.BudgetStatusOnTrack},
		{"at_threshold", "100", "80", models.BudgetStatusWarning},
		{"fully_spent", "100", "100", models.BudgetStatusWarning},
		{"over", "100", "100.01", models.BudgetStatusOverBudget},
		{"zero_amount_unspent", "0", "0", models.BudgetStatusOnTrack},
		{"zero_amount_spent", "0", "0.01", models.BudgetStatusOverBudget},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(d(tc.amount), d(tc.spent), threshold))
		})
	}
}

func TestClassify_ThresholdHundred(t *testing.T) {
	assert.Equal(t, models.BudgetStatusWarning, Classify(d("50"), d("50"), decimal.NewFromInt(100)))
	assert.Equal(t, models.BudgetStatusOnTrack, Classify(d("50"), d("49.99"), decimal.NewFromInt(100)))
}

func TestFirstOverlap(t *testing.T) {
	jan := func(day int) time.Time { return testutil.Date(2025, time.January, day) }
	closed := func(a, b int) period.Period { return period.Closed(jan(a), jan(b)) }
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("symmetric", func(t *testing.T) {
		pairs := [][2]period.Period{
			{closed(1, 5), closed(3, 9)},
			{closed(1, 5), closed(6, 10)},
			{closed(1, 5), period.New(jan(4), nil)},
			{period.New(jan(1), nil), period.New(jan(20), nil)},
		}
		for _, pair := range pairs {
			assert.Equal(t, pair[0].Overlaps(pair[1]), pair[1].Overlaps(pair[0]))
		}
	})

	t.Run("self_overlap", func(t *testing.T) {
		p := closed(1, 5)
		assert.True(t, HasOverlap(p, []repositories.PeriodRecord{{ID: "x", Period: p}}, ""))
	})

	t.Run("adjacent_does_not_overlap", func(t *testing.T) {
		assert.False(t, HasOverlap(closed(6, 10), []repositories.PeriodRecord{{ID: "x", Period: closed(1, 5)}}, ""))
	})

	t.Run("touching_overlaps", func(t *testing.T) {
		assert.True(t, HasOverlap(closed(5, 10), []repositories.PeriodRecord{{ID: "x", Period: closed(1, 5)}}, ""))
	})

	t.Run("earliest_created_wins", func(t *testing.T) {
		existing := []repositories.PeriodRecord{
			{ID: "b", Name: "Later", Period: closed(1, 31), CreatedAt: created.Add(time.Hour)},
			{ID: "a", Name: "Earlier", Period: closed(10, 12), CreatedAt: created},
		}
		got := FirstOverlap(closed(11, 11), existing, "")
		require.NotNil(t, got)
		assert.Equal(t, "Earlier", got.Name)
		assert.Equal(t, "b", existing[0].ID)
	})

	t.Run("exclude_id", func(t *testing.T) {
		existing := []repositories.PeriodRecord{{ID: "me", Period: closed(1, 31)}}
		assert.Nil(t, FirstOverlap(closed(1, 31), existing, "me"))
	})
}
