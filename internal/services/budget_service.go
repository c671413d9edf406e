package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/metrics"
	"pennywise/internal/models"
	"pennywise/internal/money"
	"pennywise/internal/pagination"
	"pennywise/internal/period"
	"pennywise/internal/repositories"
)

var maxThreshold = decimal.NewFromInt(100)

// Thresholds are the configured alert thresholds. Group applies to every
// roll-up status; Budget is the default for budgets created without one.
type Thresholds struct {
	Group  decimal.Decimal
	Budget decimal.Decimal
}

// budgetService handles budget-related business logic.
type budgetService struct {
	db         *gorm.DB
	metrics    *metrics.Recorder
	thresholds Thresholds
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, rec *metrics.Recorder, thresholds Thresholds) BudgetServicer {
	return &budgetService{db: db, metrics: rec, thresholds: thresholds}
}

func validateThreshold(t decimal.Decimal) error {
	if !t.IsPositive() || t.GreaterThan(maxThreshold) {
		return apperrors.ErrInvalidThreshold
	}
	return nil
}

func validatePeriod(p period.Period, requireEnd bool) error {
	if err := p.Validate(requireEnd); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidPeriod, err.Error())
	}
	return nil
}

// budgetableCategory loads the user's category and checks it can carry a
// budget.
func budgetableCategory(ctx context.Context, db *gorm.DB, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := db.WithContext(ctx).Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !category.Budgetable() {
		return nil, apperrors.Withf(apperrors.ErrCategoryNotExpense, "category %q is not an expense category", category.Name)
	}
	return &category, nil
}

// activeGroup loads an active group owned by the user.
func activeGroup(ctx context.Context, db *gorm.DB, userID, groupID string) (*models.BudgetGroup, error) {
	group, err := repositories.ActiveBudgetGroups(db).ForUser(userID).First(ctx, groupID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, apperrors.ErrBudgetGroupNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return group, nil
}

// asOfDay resolves an optional reference day, defaulting to today.
func asOfDay(asOf *time.Time) time.Time {
	if asOf == nil {
		return period.Day(time.Now())
	}
	return period.Day(*asOf)
}

// CreateBudget creates a budget after checking its category, currency and
// that no active budget in the same category and group overlaps it.
func (s *budgetService) CreateBudget(ctx context.Context, userID string, in BudgetInput) (*models.Budget, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	if in.Amount.IsNegative() {
		return nil, apperrors.ErrInvalidAmount
	}
	if !in.PeriodType.Valid() {
		return nil, apperrors.Withf(apperrors.ErrInvalidInput, "unknown period type %q", in.PeriodType)
	}
	threshold := s.thresholds.Budget
	if in.AlertThreshold != nil {
		threshold = *in.AlertThreshold
	}
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}
	p := period.New(in.StartDate, in.EndDate)
	if err := validatePeriod(p, false); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		UserID:         userID,
		Name:           name,
		Amount:         in.Amount,
		Currency:       money.NormalizeCurrency(in.Currency),
		PeriodType:     in.PeriodType,
		StartDate:      period.Day(in.StartDate),
		CategoryID:     in.CategoryID,
		BudgetGroupID:  in.BudgetGroupID,
		AlertThreshold: threshold,
		IsActive:       true,
	}
	if in.EndDate != nil {
		end := period.Day(*in.EndDate)
		budget.EndDate = &end
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if budget.BudgetGroupID != nil {
			group, err := activeGroup(ctx, tx, userID, *budget.BudgetGroupID)
			if err != nil {
				return err
			}
			if budget.Currency == "" {
				budget.Currency = group.Currency
			}
			if budget.Currency != group.Currency {
				return apperrors.Withf(apperrors.ErrInvalidInput, "budget currency must match its group currency %s", group.Currency)
			}
		}
		if err := requireCurrency(ctx, tx, budget.Currency); err != nil {
			return err
		}
		if budget.CategoryID != nil {
			if _, err := budgetableCategory(ctx, tx, userID, *budget.CategoryID); err != nil {
				return err
			}
		}

		repos := repositories.New(tx)
		guard := NewOverlapGuard(repos.Periods, s.metrics)
		if err := guard.CheckBudget(ctx, userID, budget.Period(), budget.CategoryID, budget.BudgetGroupID, ""); err != nil {
			return err
		}
		if err := repos.Budgets.Create(ctx, budget); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// GetUserBudgets returns a paginated list of budgets for the user with optional filters.
func (s *budgetService) GetUserBudgets(ctx context.Context, userID string, page pagination.PageRequest, filter BudgetFilter) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	q := repositories.ActiveBudgets(s.db).ForUser(userID)
	if filter.IsActive != nil && !*filter.IsActive {
		q = repositories.AllBudgets(s.db).ForUser(userID).Inactive()
	}
	if filter.PeriodType != nil {
		q = q.WithPeriodType(string(*filter.PeriodType))
	}
	if filter.CategoryID != nil {
		q = q.ForCategory(filter.CategoryID)
	}
	if filter.BudgetGroupID != nil {
		q = q.InGroup(*filter.BudgetGroupID)
	}

	budgets, total, err := q.Page(ctx, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, total)
	return &result, nil
}

// GetBudgetByID returns one budget, active or not.
func (s *budgetService) GetBudgetByID(ctx context.Context, userID, budgetID string) (*models.Budget, error) {
	return findBudget(ctx, s.db, userID, budgetID)
}

func findBudget(ctx context.Context, db *gorm.DB, userID, budgetID string) (*models.Budget, error) {
	budget, err := repositories.AllBudgets(db).ForUser(userID).First(ctx, budgetID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, apperrors.ErrBudgetNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// UpdateBudget applies the given changes. A budget that is active after the
// change is re-checked for overlaps, excluding itself.
func (s *budgetService) UpdateBudget(ctx context.Context, userID, budgetID string, upd BudgetUpdate) (*models.Budget, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		budget, err := findBudget(ctx, tx, userID, budgetID)
		if err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if upd.Name != nil {
			name := strings.TrimSpace(*upd.Name)
			if name == "" {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
			}
			updates["name"] = name
		}
		if upd.Amount != nil {
			if upd.Amount.IsNegative() {
				return apperrors.ErrInvalidAmount
			}
			updates["amount"] = *upd.Amount
		}
		if upd.AlertThreshold != nil {
			if err := validateThreshold(*upd.AlertThreshold); err != nil {
				return err
			}
			updates["alert_threshold"] = *upd.AlertThreshold
		}

		start, end := budget.StartDate, budget.EndDate
		datesChanged := false
		if upd.StartDate != nil {
			start = period.Day(*upd.StartDate)
			updates["start_date"] = start
			datesChanged = true
		}
		switch {
		case upd.ClearEndDate:
			end = nil
			updates["end_date"] = nil
			datesChanged = true
		case upd.EndDate != nil:
			e := period.Day(*upd.EndDate)
			end = &e
			updates["end_date"] = e
			datesChanged = true
		}
		p := period.New(start, end)
		if err := validatePeriod(p, false); err != nil {
			return err
		}

		active := budget.IsActive
		if upd.IsActive != nil {
			active = *upd.IsActive
			updates["is_active"] = active
		}
		reactivated := active && !budget.IsActive
		if active && (datesChanged || reactivated) {
			guard := NewOverlapGuard(repositories.NewPeriodStore(tx), s.metrics)
			if err := guard.CheckBudget(ctx, userID, p, budget.CategoryID, budget.BudgetGroupID, budget.ID); err != nil {
				return err
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.Budget{}).Where("id = ?", budget.ID).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetBudgetByID(ctx, userID, budgetID)
}

// DeactivateBudget soft-deletes a budget. Deactivating twice is a no-op.
func (s *budgetService) DeactivateBudget(ctx context.Context, userID, budgetID string) error {
	budget, err := s.GetBudgetByID(ctx, userID, budgetID)
	if err != nil {
		return err
	}
	if !budget.IsActive {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&models.Budget{}).Where("id = ?", budget.ID).Update("is_active", false).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetPerformance returns the spend and status of one budget.
func (s *budgetService) GetBudgetPerformance(ctx context.Context, userID, budgetID string) (*BudgetPerformance, error) {
	defer s.metrics.ObserveSummary(metrics.KindBudget, time.Now())

	var perf *BudgetPerformance
	err := repositories.ReadSnapshot(ctx, s.db, func(tx *gorm.DB) error {
		budget, err := findBudget(ctx, tx, userID, budgetID)
		if err != nil {
			return err
		}
		perf, err = NewBudgetAggregator(repositories.NewSpendLookup(tx)).Performance(ctx, budget)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Status(perf.Status)
	return perf, nil
}

// GetBudgetSummary aggregates every active budget current on the given day.
func (s *budgetService) GetBudgetSummary(ctx context.Context, userID string, asOf *time.Time) (*BudgetSummary, error) {
	defer s.metrics.ObserveSummary(metrics.KindBudgetTotal, time.Now())

	day := asOfDay(asOf)
	summary := &BudgetSummary{
		AsOf:          day,
		TotalBudgeted: decimal.Zero,
		TotalSpent:    decimal.Zero,
		Budgets:       []BudgetPerformance{},
	}

	err := repositories.ReadSnapshot(ctx, s.db, func(tx *gorm.DB) error {
		budgets, err := repositories.ActiveBudgets(tx).ForUser(userID).CurrentAt(day).Find(ctx)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		agg := NewBudgetAggregator(repositories.NewSpendLookup(tx))
		for i := range budgets {
			perf, err := agg.Performance(ctx, &budgets[i])
			if err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			summary.Budgets = append(summary.Budgets, *perf)
			summary.TotalBudgeted = summary.TotalBudgeted.Add(perf.Amount)
			summary.TotalSpent = summary.TotalSpent.Add(perf.Spent)
			summary.StatusCounts.Add(perf.Status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary.BudgetCount = len(summary.Budgets)
	summary.TotalRemaining = summary.TotalBudgeted.Sub(summary.TotalSpent)
	summary.PercentageUsed = money.Percent(summary.TotalSpent, summary.TotalBudgeted)
	summary.Status = Classify(summary.TotalBudgeted, summary.TotalSpent, s.thresholds.Group)
	return summary, nil
}

// GetBudgetAlerts returns the current budgets that reached their alert
// threshold or went over.
func (s *budgetService) GetBudgetAlerts(ctx context.Context, userID string, asOf *time.Time) ([]BudgetPerformance, error) {
	summary, err := s.GetBudgetSummary(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}
	alerts := []BudgetPerformance{}
	for _, perf := range summary.Budgets {
		if perf.Status != models.BudgetStatusOnTrack {
			s.metrics.Status(perf.Status)
			alerts = append(alerts, perf)
		}
	}
	return alerts, nil
}

// GetCurrentBudgets returns the active budgets whose period contains the day.
func (s *budgetService) GetCurrentBudgets(ctx context.Context, userID string, asOf *time.Time) ([]models.Budget, error) {
	budgets, err := repositories.ActiveBudgets(s.db).ForUser(userID).CurrentAt(asOfDay(asOf)).Find(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}
