package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/logger"
	"pennywise/internal/metrics"
	"pennywise/internal/models"
	"pennywise/internal/money"
	"pennywise/internal/pagination"
	"pennywise/internal/period"
	"pennywise/internal/repositories"
)

const minGroupNameLength = 3

// budgetGroupService handles budget group business logic.
type budgetGroupService struct {
	db         *gorm.DB
	metrics    *metrics.Recorder
	thresholds Thresholds
}

// NewBudgetGroupService creates a new BudgetGroupServicer.
func NewBudgetGroupService(db *gorm.DB, rec *metrics.Recorder, thresholds Thresholds) BudgetGroupServicer {
	return &budgetGroupService{db: db, metrics: rec, thresholds: thresholds}
}

func validateGroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < minGroupNameLength {
		return "", apperrors.Withf(apperrors.ErrInvalidInput, "group name must be at least %d characters", minGroupNameLength)
	}
	return name, nil
}

// mapGroupWriteError turns the database exclusion constraint into the same
// conflict the guard reports.
func mapGroupWriteError(err error) error {
	if repositories.IsExclusionViolation(err) {
		return apperrors.WithMessage(apperrors.ErrPeriodOverlap, "period overlaps an existing budget group")
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// CreateBudgetGroup creates a group and, when requested, its budgets in the
// same transaction. It returns the number of budgets generated.
func (s *budgetGroupService) CreateBudgetGroup(ctx context.Context, userID string, in BudgetGroupInput) (*models.BudgetGroup, int, error) {
	name, err := validateGroupName(in.Name)
	if err != nil {
		return nil, 0, err
	}
	if !in.PeriodType.Valid() {
		return nil, 0, apperrors.Withf(apperrors.ErrInvalidInput, "unknown period type %q", in.PeriodType)
	}
	p := period.Closed(in.StartDate, in.EndDate)
	if err := validatePeriod(p, true); err != nil {
		return nil, 0, err
	}
	if in.AutoCreate != nil {
		if err := in.AutoCreate.Validate(); err != nil {
			return nil, 0, err
		}
	}

	group := &models.BudgetGroup{
		UserID:      userID,
		Name:        name,
		Description: in.Description,
		PeriodType:  in.PeriodType,
		StartDate:   period.Day(in.StartDate),
		EndDate:     period.Day(in.EndDate),
		Currency:    money.NormalizeCurrency(in.Currency),
		IsActive:    true,
	}

	created := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireCurrency(ctx, tx, group.Currency); err != nil {
			return err
		}
		repos := repositories.New(tx)
		if err := NewOverlapGuard(repos.Periods, s.metrics).CheckGroup(ctx, userID, group.Period(), ""); err != nil {
			return err
		}
		if err := tx.Omit("Budgets").Create(group).Error; err != nil {
			return mapGroupWriteError(err)
		}
		if in.AutoCreate == nil {
			return nil
		}
		n, err := NewBudgetGenerator(repos.Categories, repos.Budgets, s.thresholds.Budget).Generate(ctx, group, *in.AutoCreate)
		if err != nil {
			return err
		}
		created = n
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	s.metrics.BudgetsGenerated(created)
	if created > 0 {
		logger.Named("budget_groups").Infow("budgets generated", "group_id", group.ID, "created", created)
	}
	return group, created, nil
}

// GetUserBudgetGroups returns a paginated list of the user's groups. A nil
// isActive lists active groups.
func (s *budgetGroupService) GetUserBudgetGroups(ctx context.Context, userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.BudgetGroup], error) {
	page.Defaults()

	q := repositories.ActiveBudgetGroups(s.db).ForUser(userID)
	if isActive != nil && !*isActive {
		q = repositories.AllBudgetGroups(s.db).ForUser(userID).Inactive()
	}
	groups, total, err := q.Page(ctx, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	result := pagination.NewPageResponse(groups, page.Page, page.PageSize, total)
	return &result, nil
}

// GetBudgetGroupByID returns one group, active or not.
func (s *budgetGroupService) GetBudgetGroupByID(ctx context.Context, userID, groupID string) (*models.BudgetGroup, error) {
	return findGroup(ctx, s.db, userID, groupID)
}

func findGroup(ctx context.Context, db *gorm.DB, userID, groupID string) (*models.BudgetGroup, error) {
	group, err := repositories.AllBudgetGroups(db).ForUser(userID).First(ctx, groupID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, apperrors.ErrBudgetGroupNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return group, nil
}

// GetBudgetGroupWithBudgets returns the group with its active budgets.
func (s *budgetGroupService) GetBudgetGroupWithBudgets(ctx context.Context, userID, groupID string) (*models.BudgetGroup, error) {
	group, err := s.GetBudgetGroupByID(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	budgets, err := repositories.ActiveBudgets(s.db).InGroup(group.ID).Find(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	group.Budgets = budgets
	return group, nil
}

// UpdateBudgetGroup applies the given changes. New dates are re-checked
// against the user's other active groups, and period or currency changes
// are copied to the group's active budgets.
func (s *budgetGroupService) UpdateBudgetGroup(ctx context.Context, userID, groupID string, upd BudgetGroupUpdate) (*models.BudgetGroup, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := findGroup(ctx, tx, userID, groupID)
		if err != nil {
			return err
		}

		updates := make(map[string]interface{})
		members := make(map[string]interface{})
		if upd.Name != nil {
			name, err := validateGroupName(*upd.Name)
			if err != nil {
				return err
			}
			updates["name"] = name
		}
		if upd.Description != nil {
			updates["description"] = *upd.Description
		}
		if upd.PeriodType != nil {
			if !upd.PeriodType.Valid() {
				return apperrors.Withf(apperrors.ErrInvalidInput, "unknown period type %q", *upd.PeriodType)
			}
			updates["period_type"] = *upd.PeriodType
			members["period_type"] = *upd.PeriodType
		}
		if upd.Currency != nil {
			code := money.NormalizeCurrency(*upd.Currency)
			if err := requireCurrency(ctx, tx, code); err != nil {
				return err
			}
			updates["currency"] = code
			members["currency"] = code
		}

		start, end := group.StartDate, group.EndDate
		if upd.StartDate != nil {
			start = period.Day(*upd.StartDate)
		}
		if upd.EndDate != nil {
			end = period.Day(*upd.EndDate)
		}
		p := period.Closed(start, end)
		if err := validatePeriod(p, true); err != nil {
			return err
		}
		datesChanged := !start.Equal(group.StartDate) || !end.Equal(group.EndDate)
		if datesChanged {
			updates["start_date"] = start
			updates["end_date"] = end
			members["start_date"] = start
			members["end_date"] = end
		}

		active := group.IsActive
		if upd.IsActive != nil {
			active = *upd.IsActive
			updates["is_active"] = active
		}
		if active && (datesChanged || !group.IsActive) {
			guard := NewOverlapGuard(repositories.NewPeriodStore(tx), s.metrics)
			if err := guard.CheckGroup(ctx, userID, p, group.ID); err != nil {
				return err
			}
		}

		if len(updates) > 0 {
			if err := tx.Model(&models.BudgetGroup{}).Where("id = ?", group.ID).Updates(updates).Error; err != nil {
				return mapGroupWriteError(err)
			}
		}
		if len(members) > 0 {
			err := tx.Model(&models.Budget{}).
				Where("budget_group_id = ? AND is_active = ?", group.ID, true).
				Updates(members).Error
			if err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetBudgetGroupByID(ctx, userID, groupID)
}

// DeactivateBudgetGroup soft-deletes a group. Its budgets keep their own
// active flag.
func (s *budgetGroupService) DeactivateBudgetGroup(ctx context.Context, userID, groupID string) error {
	group, err := s.GetBudgetGroupByID(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if !group.IsActive {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&models.BudgetGroup{}).Where("id = ?", group.ID).Update("is_active", false).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetCurrentBudgetGroups returns the active groups whose period contains the
// day.
func (s *budgetGroupService) GetCurrentBudgetGroups(ctx context.Context, userID string, asOf *time.Time) ([]models.BudgetGroup, error) {
	groups, err := repositories.ActiveBudgetGroups(s.db).ForUser(userID).CurrentAt(asOfDay(asOf)).Find(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return groups, nil
}

// summarize aggregates one group inside an open snapshot.
func (s *budgetGroupService) summarize(ctx context.Context, tx *gorm.DB, group *models.BudgetGroup, categories []repositories.CategoryNode) (*GroupSummary, error) {
	budgets, err := repositories.ActiveBudgets(tx).InGroup(group.ID).Find(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	agg := NewGroupAggregator(NewBudgetAggregator(repositories.NewSpendLookup(tx)), s.thresholds.Group)
	summary, err := agg.Summary(ctx, group, budgets, categories)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	s.metrics.GroupSummarized()
	s.metrics.Status(summary.Status)
	return summary, nil
}

// GetBudgetGroupSummary aggregates one group's budgets and builds its
// category tree.
func (s *budgetGroupService) GetBudgetGroupSummary(ctx context.Context, userID, groupID string) (*GroupSummary, error) {
	defer s.metrics.ObserveSummary(metrics.KindGroup, time.Now())

	var summary *GroupSummary
	err := repositories.ReadSnapshot(ctx, s.db, func(tx *gorm.DB) error {
		group, err := findGroup(ctx, tx, userID, groupID)
		if err != nil {
			return err
		}
		categories, err := repositories.NewCategoryTree(tx).Categories(ctx, userID, true)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		summary, err = s.summarize(ctx, tx, group, categories)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// GetUserGroupsSummary aggregates every active group current on the day.
func (s *budgetGroupService) GetUserGroupsSummary(ctx context.Context, userID string, asOf *time.Time) (*GroupsSummary, error) {
	defer s.metrics.ObserveSummary(metrics.KindGroupTotal, time.Now())

	day := asOfDay(asOf)
	result := &GroupsSummary{
		AsOf:          day,
		TotalBudgeted: decimal.Zero,
		TotalSpent:    decimal.Zero,
		Groups:        []GroupSummary{},
	}

	err := repositories.ReadSnapshot(ctx, s.db, func(tx *gorm.DB) error {
		total, err := repositories.AllBudgetGroups(tx).ForUser(userID).Count(ctx)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		active, err := repositories.ActiveBudgetGroups(tx).ForUser(userID).Count(ctx)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		current, err := repositories.ActiveBudgetGroups(tx).ForUser(userID).CurrentAt(day).Find(ctx)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result.TotalGroups = int(total)
		result.ActiveGroups = int(active)
		result.CurrentPeriodGroups = len(current)
		if len(current) == 0 {
			return nil
		}

		categories, err := repositories.NewCategoryTree(tx).Categories(ctx, userID, true)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for i := range current {
			summary, err := s.summarize(ctx, tx, &current[i], categories)
			if err != nil {
				return err
			}
			result.Groups = append(result.Groups, *summary)
			result.TotalBudgeted = result.TotalBudgeted.Add(summary.TotalBudgeted)
			result.TotalSpent = result.TotalSpent.Add(summary.TotalSpent)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.TotalRemaining = result.TotalBudgeted.Sub(result.TotalSpent)
	result.PercentageUsed = money.Percent(result.TotalSpent, result.TotalBudgeted)
	result.Status = Classify(result.TotalBudgeted, result.TotalSpent, s.thresholds.Group)
	return result, nil
}

// GenerateBudgets creates one budget per matching category of an active
// group and returns how many were created.
func (s *budgetGroupService) GenerateBudgets(ctx context.Context, userID, groupID string, opts GenerateOptions) (int, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}

	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := activeGroup(ctx, tx, userID, groupID)
		if err != nil {
			return err
		}
		repos := repositories.New(tx)
		created, err = NewBudgetGenerator(repos.Categories, repos.Budgets, s.thresholds.Budget).Generate(ctx, group, opts)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.metrics.BudgetsGenerated(created)
	logger.Named("budget_groups").Infow("budgets generated",
		"group_id", groupID, "scope", opts.Scope, "created", created)
	return created, nil
}

// BulkUpdateAmounts changes the amounts of an active group's budgets and
// returns how many were updated.
func (s *budgetGroupService) BulkUpdateAmounts(ctx context.Context, userID, groupID string, items []AmountUpdate) (int, error) {
	updated := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := activeGroup(ctx, tx, userID, groupID); err != nil {
			return err
		}
		var err error
		updated, err = NewBulkAmountUpdater(repositories.NewBudgetStore(tx)).Apply(ctx, groupID, items)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.metrics.AmountsUpdated(updated)
	if skipped := len(items) - updated; skipped > 0 {
		logger.Named("budget_groups").Infow("bulk amount update skipped items",
			"group_id", groupID, "requested", len(items), "skipped", skipped)
	}
	return updated, nil
}

// ValidateGroupPeriod reports whether p could be used by a group without
// overlapping another active group of the user.
func (s *budgetGroupService) ValidateGroupPeriod(ctx context.Context, userID string, p period.Period, excludeID string) (*PeriodCheck, error) {
	if err := validatePeriod(p, true); err != nil {
		return nil, err
	}
	guard := NewOverlapGuard(repositories.NewPeriodStore(s.db.WithContext(ctx)), s.metrics)
	conflict, err := guard.GroupConflict(ctx, userID, p, excludeID)
	if err != nil {
		return nil, err
	}
	if conflict == nil {
		return &PeriodCheck{Valid: true}, nil
	}
	return &PeriodCheck{
		Valid:        false,
		ConflictID:   conflict.ID,
		ConflictName: conflict.Name,
		Message:      groupOverlapError(conflict.Name).Message,
	}, nil
}
