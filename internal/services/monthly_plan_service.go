package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/metrics"
	"pennywise/internal/models"
	"pennywise/internal/money"
	"pennywise/internal/period"
	"pennywise/internal/repositories"
)

const (
	minPlanYear = 2000
	maxPlanYear = 2100
)

// monthlyPlanService manages monthly plans. A plan has no table of its own:
// it is the set of the user's ungrouped monthly budgets starting in a month.
type monthlyPlanService struct {
	db         *gorm.DB
	metrics    *metrics.Recorder
	thresholds Thresholds
}

// NewMonthlyPlanService creates a new MonthlyPlanServicer.
func NewMonthlyPlanService(db *gorm.DB, rec *metrics.Recorder, thresholds Thresholds) MonthlyPlanServicer {
	return &monthlyPlanService{db: db, metrics: rec, thresholds: thresholds}
}

func validatePlanMonth(year int, month time.Month) error {
	if month < time.January || month > time.December {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}
	if year < minPlanYear || year > maxPlanYear {
		return apperrors.Withf(apperrors.ErrInvalidInput, "year must be between %d and %d", minPlanYear, maxPlanYear)
	}
	return nil
}

func validateAllocations(allocations []PlanAllocation) error {
	seen := make(map[string]bool, len(allocations))
	for _, a := range allocations {
		if seen[a.CategoryID] {
			return apperrors.Withf(apperrors.ErrInvalidInput, "category %s is allocated twice", a.CategoryID)
		}
		seen[a.CategoryID] = true
		if !a.Amount.IsPositive() {
			return apperrors.WithMessage(apperrors.ErrInvalidAmount, "allocation amount must be greater than 0")
		}
		if a.AlertThreshold != nil {
			if err := validateThreshold(*a.AlertThreshold); err != nil {
				return err
			}
		}
	}
	return nil
}

// planQuery selects the budgets making up one month's plan.
func planQuery(q repositories.BudgetQuery, userID string, year int, month time.Month) repositories.BudgetQuery {
	p := period.Month(year, month)
	return q.ForUser(userID).
		InGroupScope(nil).
		WithPeriodType(string(period.TypeMonthly)).
		StartingBetween(p.Start, *p.End)
}

func planBudgetName(category, plan string) string {
	return category + " - " + plan
}

func defaultPlanName(year int, month time.Month) string {
	return fmt.Sprintf("%s %d Budget Plan", month, year)
}

// CreatePlan creates one monthly budget per allocation. A month that already
// has a plan is rejected.
func (s *monthlyPlanService) CreatePlan(ctx context.Context, userID string, in MonthlyPlanInput) (*MonthlyPlan, error) {
	if err := validatePlanMonth(in.Year, in.Month); err != nil {
		return nil, err
	}
	if len(in.Allocations) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one allocation is required")
	}
	if err := validateAllocations(in.Allocations); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = defaultPlanName(in.Year, in.Month)
	}
	currency := money.NormalizeCurrency(in.Currency)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireCurrency(ctx, tx, currency); err != nil {
			return err
		}
		existing, err := planQuery(repositories.ActiveBudgets(tx), userID, in.Year, in.Month).Count(ctx)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if existing > 0 {
			return apperrors.Withf(apperrors.ErrPlanExists, "a budget plan already exists for %d/%d", int(in.Month), in.Year)
		}

		repos := repositories.New(tx)
		guard := NewOverlapGuard(repos.Periods, s.metrics)
		for _, a := range in.Allocations {
			if err := s.createAllocation(ctx, tx, repos, guard, userID, in.Year, in.Month, name, currency, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetPlan(ctx, userID, in.Year, in.Month)
}

func (s *monthlyPlanService) createAllocation(ctx context.Context, tx *gorm.DB, repos *repositories.Repositories, guard *OverlapGuard, userID string, year int, month time.Month, planName, currency string, a PlanAllocation) error {
	category, err := budgetableCategory(ctx, tx, userID, a.CategoryID)
	if err != nil {
		return err
	}
	threshold := s.thresholds.Budget
	if a.AlertThreshold != nil {
		threshold = *a.AlertThreshold
	}
	p := period.Month(year, month)
	if err := guard.CheckBudget(ctx, userID, p, &category.ID, nil, ""); err != nil {
		return err
	}
	budget := &models.Budget{
		UserID:         userID,
		Name:           planBudgetName(category.Name, planName),
		Amount:         a.Amount,
		Currency:       currency,
		PeriodType:     period.TypeMonthly,
		StartDate:      p.Start,
		EndDate:        p.End,
		CategoryID:     &category.ID,
		AlertThreshold: threshold,
		IsActive:       true,
	}
	if err := repos.Budgets.Create(ctx, budget); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListPlans returns every plan of the user, newest month first, optionally
// restricted to one year.
func (s *monthlyPlanService) ListPlans(ctx context.Context, userID string, year *int) ([]MonthlyPlan, error) {
	defer s.metrics.ObserveSummary(metrics.KindPlan, time.Now())

	plans := []MonthlyPlan{}
	err := repositories.ReadSnapshot(ctx, s.db, func(tx *gorm.DB) error {
		q := repositories.ActiveBudgets(tx).
			ForUser(userID).
			InGroupScope(nil).
			WithPeriodType(string(period.TypeMonthly))
		if year != nil {
			q = q.StartingBetween(period.Month(*year, time.January).Start, *period.Month(*year, time.December).End)
		}
		budgets, err := q.Find(ctx)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		type monthKey struct {
			year  int
			month time.Month
		}
		byMonth := make(map[monthKey][]models.Budget)
		for _, b := range budgets {
			k := monthKey{b.StartDate.Year(), b.StartDate.Month()}
			byMonth[k] = append(byMonth[k], b)
		}

		agg := NewBudgetAggregator(repositories.NewSpendLookup(tx))
		for k, members := range byMonth {
			plan, err := buildPlan(ctx, agg, k.year, k.month, members)
			if err != nil {
				return err
			}
			plans = append(plans, *plan)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(plans, func(i, j int) bool {
		if plans[i].Year != plans[j].Year {
			return plans[i].Year > plans[j].Year
		}
		return plans[i].Month > plans[j].Month
	})
	return plans, nil
}

// GetPlan returns one month's plan with per-budget performance.
func (s *monthlyPlanService) GetPlan(ctx context.Context, userID string, year int, month time.Month) (*MonthlyPlan, error) {
	if err := validatePlanMonth(year, month); err != nil {
		return nil, err
	}
	defer s.metrics.ObserveSummary(metrics.KindPlan, time.Now())

	var plan *MonthlyPlan
	err := repositories.ReadSnapshot(ctx, s.db, func(tx *gorm.DB) error {
		budgets, err := planQuery(repositories.ActiveBudgets(tx), userID, year, month).Find(ctx)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(budgets) == 0 {
			return apperrors.Withf(apperrors.ErrPlanNotFound, "no budget plan found for %d/%d", int(month), year)
		}
		plan, err = buildPlan(ctx, NewBudgetAggregator(repositories.NewSpendLookup(tx)), year, month, budgets)
		return err
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// UpdatePlan upserts allocations: a category already in the plan gets the
// new amount and threshold, a new category gets a new budget. A non-empty
// name or currency is applied to every budget of the plan.
func (s *monthlyPlanService) UpdatePlan(ctx context.Context, userID string, in MonthlyPlanInput) (*MonthlyPlan, error) {
	if err := validatePlanMonth(in.Year, in.Month); err != nil {
		return nil, err
	}
	if err := validateAllocations(in.Allocations); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		budgets, err := planQuery(repositories.ActiveBudgets(tx), userID, in.Year, in.Month).Find(ctx)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(budgets) == 0 {
			return apperrors.Withf(apperrors.ErrPlanNotFound, "no budget plan found for %d/%d", int(in.Month), in.Year)
		}

		currency := budgets[0].Currency
		if code := money.NormalizeCurrency(in.Currency); code != "" && code != currency {
			if err := requireCurrency(ctx, tx, code); err != nil {
				return err
			}
			currency = code
			ids := make([]string, len(budgets))
			for i := range budgets {
				ids[i] = budgets[i].ID
			}
			if err := tx.Model(&models.Budget{}).Where("id IN ?", ids).Update("currency", currency).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		planName := planNameOf(in.Year, in.Month, budgets)
		if name := strings.TrimSpace(in.Name); name != "" && name != planName {
			planName = name
			for i := range budgets {
				categoryName := ""
				if budgets[i].Category != nil {
					categoryName = budgets[i].Category.Name
				}
				if err := tx.Model(&models.Budget{}).Where("id = ?", budgets[i].ID).
					Update("name", planBudgetName(categoryName, planName)).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
			}
		}

		byCategory := make(map[string]*models.Budget, len(budgets))
		for i := range budgets {
			if budgets[i].CategoryID != nil {
				byCategory[*budgets[i].CategoryID] = &budgets[i]
			}
		}

		repos := repositories.New(tx)
		guard := NewOverlapGuard(repos.Periods, s.metrics)
		for _, a := range in.Allocations {
			existing, ok := byCategory[a.CategoryID]
			if !ok {
				if err := s.createAllocation(ctx, tx, repos, guard, userID, in.Year, in.Month, planName, currency, a); err != nil {
					return err
				}
				continue
			}
			updates := map[string]interface{}{"amount": a.Amount}
			if a.AlertThreshold != nil {
				updates["alert_threshold"] = *a.AlertThreshold
			}
			if err := tx.Model(&models.Budget{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetPlan(ctx, userID, in.Year, in.Month)
}

// DeletePlan removes every budget of the month's plan, deactivated ones
// included, and returns how many were removed.
func (s *monthlyPlanService) DeletePlan(ctx context.Context, userID string, year int, month time.Month) (int, error) {
	if err := validatePlanMonth(year, month); err != nil {
		return 0, err
	}

	deleted := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		budgets, err := planQuery(repositories.AllBudgets(tx), userID, year, month).Find(ctx)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(budgets) == 0 {
			return apperrors.Withf(apperrors.ErrPlanNotFound, "no budget plan found for %d/%d", int(month), year)
		}
		ids := make([]string, len(budgets))
		for i := range budgets {
			ids[i] = budgets[i].ID
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Budget{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		deleted = int(res.RowsAffected)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// planNameOf recovers the plan name from the "<category> - <plan>" budget
// names, falling back to a name built from the month.
func planNameOf(year int, month time.Month, budgets []models.Budget) string {
	for _, b := range budgets {
		if b.Category == nil {
			continue
		}
		if name, ok := strings.CutPrefix(b.Name, b.Category.Name+" - "); ok && name != "" {
			return name
		}
	}
	return defaultPlanName(year, month)
}

// buildPlan computes totals for one month. The plan status is the worst
// status among its budgets.
func buildPlan(ctx context.Context, agg *BudgetAggregator, year int, month time.Month, budgets []models.Budget) (*MonthlyPlan, error) {
	plan := &MonthlyPlan{
		Year:          year,
		Month:         int(month),
		Name:          planNameOf(year, month, budgets),
		Currency:      budgets[0].Currency,
		TotalBudgeted: decimal.Zero,
		TotalSpent:    decimal.Zero,
		Budgets:       make([]BudgetPerformance, 0, len(budgets)),
	}
	for i := range budgets {
		perf, err := agg.Performance(ctx, &budgets[i])
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		plan.Budgets = append(plan.Budgets, *perf)
		plan.TotalBudgeted = plan.TotalBudgeted.Add(perf.Amount)
		plan.TotalSpent = plan.TotalSpent.Add(perf.Spent)
		plan.StatusCounts.Add(perf.Status)
	}
	plan.TotalRemaining = plan.TotalBudgeted.Sub(plan.TotalSpent)
	plan.PercentageUsed = money.Percent(plan.TotalSpent, plan.TotalBudgeted)
	switch {
	case plan.StatusCounts.OverBudget > 0:
		plan.Status = models.BudgetStatusOverBudget
	case plan.StatusCounts.Warning > 0:
		plan.Status = models.BudgetStatusWarning
	default:
		plan.Status = models.BudgetStatusOnTrack
	}
	return plan, nil
}
