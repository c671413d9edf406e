package repositories

import (
	"context"
	"time"

	"pennywise/internal/models"
	"pennywise/internal/period"

	"github.com/shopspring/decimal"
)

// CategoryNode is the flat view of a category the budget engine works from.
type CategoryNode struct {
	ID        string
	Name      string
	ParentID  *string
	Active    bool
	Type      models.CategoryType
	SortOrder int
}

// IsPrimary reports whether the node has no parent.
func (n CategoryNode) IsPrimary() bool {
	return n.ParentID == nil
}

// PeriodRecord is an existing budget or budget group as seen by the overlap
// guard.
type PeriodRecord struct {
	ID        string
	Name      string
	Period    period.Period
	CreatedAt time.Time
}

// SpendLookup sums a user's expenses in base currency.
type SpendLookup interface {
	// Spent returns the total for the period. A primary category includes
	// its subcategories' spend; a nil category covers everything.
	Spent(ctx context.Context, userID string, p period.Period, categoryID *string) (decimal.Decimal, error)
}

// CategoryTree lists a user's categories ordered by sort order then name.
type CategoryTree interface {
	Categories(ctx context.Context, userID string, includeInactive bool) ([]CategoryNode, error)
}

// CurrencyRegistry answers whether a currency code may be used.
type CurrencyRegistry interface {
	IsActive(ctx context.Context, code string) (bool, error)
}

// BudgetStore persists the budgets written by generation and bulk updates.
type BudgetStore interface {
	CategoriesWithActiveBudget(ctx context.Context, groupID string) (map[string]bool, error)
	Create(ctx context.Context, budget *models.Budget) error
	FindActiveInGroup(ctx context.Context, groupID, budgetID string) (*models.Budget, error)
	FindActiveByCategory(ctx context.Context, groupID, categoryID string) (*models.Budget, error)
	UpdateAmount(ctx context.Context, budgetID string, amount decimal.Decimal) error
}

// PeriodStore loads the active periods an overlap check compares against,
// ordered by creation.
type PeriodStore interface {
	// BudgetPeriods returns active budgets sharing the category scope
	// (both nil or equal) and the group scope (both nil or equal).
	BudgetPeriods(ctx context.Context, userID string, categoryID, groupID *string) ([]PeriodRecord, error)
	GroupPeriods(ctx context.Context, userID string) ([]PeriodRecord, error)
	// LockUser serialises period writes for one user until the surrounding
	// transaction ends.
	LockUser(ctx context.Context, userID string) error
}
