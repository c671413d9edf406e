package repositories

import (
	"context"
	"errors"
	"time"

	"pennywise/internal/models"
	"pennywise/internal/pagination"

	"gorm.io/gorm"
)

// ErrRecordNotFound is returned by lookups that match no row.
var ErrRecordNotFound = errors.New("record not found")

// BudgetQuery is an immutable filter over the budgets table. Build one with
// ActiveBudgets for anything that reports or compares; AllBudgets exists for
// direct lookups that must also see deactivated rows.
type BudgetQuery struct {
	db *gorm.DB
}

// ActiveBudgets starts a query restricted to is_active budgets.
func ActiveBudgets(db *gorm.DB) BudgetQuery {
	return BudgetQuery{db: db.Model(&models.Budget{}).Where("budgets.is_active = ?", true).Session(&gorm.Session{})}
}

// AllBudgets starts a query that includes deactivated budgets.
func AllBudgets(db *gorm.DB) BudgetQuery {
	return BudgetQuery{db: db.Model(&models.Budget{}).Session(&gorm.Session{})}
}

func (q BudgetQuery) where(query any, args ...any) BudgetQuery {
	return BudgetQuery{db: q.db.Where(query, args...).Session(&gorm.Session{})}
}

// ForUser restricts to one owner.
func (q BudgetQuery) ForUser(userID string) BudgetQuery {
	return q.where("budgets.user_id = ?", userID)
}

// Inactive keeps deactivated budgets. Use it on AllBudgets.
func (q BudgetQuery) Inactive() BudgetQuery {
	return q.where("budgets.is_active = ?", false)
}

// InGroup restricts to members of a budget group.
func (q BudgetQuery) InGroup(groupID string) BudgetQuery {
	return q.where("budgets.budget_group_id = ?", groupID)
}

// InGroupScope matches budgets in the same group, or ungrouped budgets when
// groupID is nil.
func (q BudgetQuery) InGroupScope(groupID *string) BudgetQuery {
	if groupID == nil {
		return q.where("budgets.budget_group_id IS NULL")
	}
	return q.InGroup(*groupID)
}

// ForCategory matches budgets on the category, or uncategorized budgets when
// categoryID is nil.
func (q BudgetQuery) ForCategory(categoryID *string) BudgetQuery {
	if categoryID == nil {
		return q.where("budgets.category_id IS NULL")
	}
	return q.where("budgets.category_id = ?", *categoryID)
}

// WithPeriodType restricts to one period type.
func (q BudgetQuery) WithPeriodType(t string) BudgetQuery {
	return q.where("budgets.period_type = ?", t)
}

// CurrentAt keeps budgets whose period contains day d.
func (q BudgetQuery) CurrentAt(d time.Time) BudgetQuery {
	return q.where("budgets.start_date <= ? AND (budgets.end_date IS NULL OR budgets.end_date >= ?)", d, d)
}

// StartingBetween keeps budgets whose start date falls in [from, to].
func (q BudgetQuery) StartingBetween(from, to time.Time) BudgetQuery {
	return q.where("budgets.start_date >= ? AND budgets.start_date <= ?", from, to)
}

// Find returns matching budgets in creation order.
func (q BudgetQuery) Find(ctx context.Context) ([]models.Budget, error) {
	var budgets []models.Budget
	err := q.db.WithContext(ctx).Preload("Category").
		Order("budgets.created_at ASC, budgets.id ASC").Find(&budgets).Error
	return budgets, err
}

// First returns the budget with the given id.
func (q BudgetQuery) First(ctx context.Context, id string) (*models.Budget, error) {
	var budget models.Budget
	err := q.db.WithContext(ctx).Preload("Category").Where("budgets.id = ?", id).First(&budget).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// Count returns the number of matching budgets.
func (q BudgetQuery) Count(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.WithContext(ctx).Count(&n).Error
	return n, err
}

// Page returns one page of matches, newest start date first, and the total.
func (q BudgetQuery) Page(ctx context.Context, page pagination.PageRequest) ([]models.Budget, int64, error) {
	total, err := q.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	var budgets []models.Budget
	err = q.db.WithContext(ctx).Preload("Category").
		Order("budgets.start_date DESC, budgets.id ASC").
		Scopes(pagination.Paginate(page)).Find(&budgets).Error
	return budgets, total, err
}

// BudgetGroupQuery mirrors BudgetQuery for the budget_groups table.
type BudgetGroupQuery struct {
	db *gorm.DB
}

// ActiveBudgetGroups starts a query restricted to is_active groups.
func ActiveBudgetGroups(db *gorm.DB) BudgetGroupQuery {
	return BudgetGroupQuery{db: db.Model(&models.BudgetGroup{}).Where("budget_groups.is_active = ?", true).Session(&gorm.Session{})}
}

// AllBudgetGroups starts a query that includes deactivated groups.
func AllBudgetGroups(db *gorm.DB) BudgetGroupQuery {
	return BudgetGroupQuery{db: db.Model(&models.BudgetGroup{}).Session(&gorm.Session{})}
}

func (q BudgetGroupQuery) where(query any, args ...any) BudgetGroupQuery {
	return BudgetGroupQuery{db: q.db.Where(query, args...).Session(&gorm.Session{})}
}

// ForUser restricts to one owner.
func (q BudgetGroupQuery) ForUser(userID string) BudgetGroupQuery {
	return q.where("budget_groups.user_id = ?", userID)
}

// Inactive keeps deactivated groups. Use it on AllBudgetGroups.
func (q BudgetGroupQuery) Inactive() BudgetGroupQuery {
	return q.where("budget_groups.is_active = ?", false)
}

// CurrentAt keeps groups whose period contains day d.
func (q BudgetGroupQuery) CurrentAt(d time.Time) BudgetGroupQuery {
	return q.where("budget_groups.start_date <= ? AND budget_groups.end_date >= ?", d, d)
}

// Find returns matching groups in creation order.
func (q BudgetGroupQuery) Find(ctx context.Context) ([]models.BudgetGroup, error) {
	var groups []models.BudgetGroup
	err := q.db.WithContext(ctx).Order("budget_groups.created_at ASC, budget_groups.id ASC").Find(&groups).Error
	return groups, err
}

// First returns the group with the given id.
func (q BudgetGroupQuery) First(ctx context.Context, id string) (*models.BudgetGroup, error) {
	var group models.BudgetGroup
	err := q.db.WithContext(ctx).Where("budget_groups.id = ?", id).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// Count returns the number of matching groups.
func (q BudgetGroupQuery) Count(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.WithContext(ctx).Count(&n).Error
	return n, err
}

// Page returns one page of matches, newest start date first, and the total.
func (q BudgetGroupQuery) Page(ctx context.Context, page pagination.PageRequest) ([]models.BudgetGroup, int64, error) {
	total, err := q.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	var groups []models.BudgetGroup
	err = q.db.WithContext(ctx).
		Order("budget_groups.start_date DESC, budget_groups.id ASC").
		Scopes(pagination.Paginate(page)).Find(&groups).Error
	return groups, total, err
}
