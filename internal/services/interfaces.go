package services

import (
	"context"
	"time"

	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/period"

	"github.com/shopspring/decimal"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, firstName, lastName, baseCurrency string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// CategoryInput holds the fields of a new category.
type CategoryInput struct {
	Name        string
	Type        models.CategoryType
	Description string
	Icon        string
	Color       string
	SortOrder   int
	ParentID    *string
}

// CategoryUpdate holds optional category changes. Nil fields are left as is.
type CategoryUpdate struct {
	Name        *string
	Description *string
	Icon        *string
	Color       *string
	SortOrder   *int
	IsActive    *bool
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, userID string, in CategoryInput) (*models.Category, error)
	GetUserCategories(ctx context.Context, userID string, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryTree(ctx context.Context, userID string) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, userID, categoryID string) (*models.Category, error)
	UpdateCategory(ctx context.Context, userID, categoryID string, upd CategoryUpdate) (*models.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID string) error
}

// CurrencyServicer defines the contract for the currency registry and
// conversions into a user's base currency.
type CurrencyServicer interface {
	ListCurrencies(ctx context.Context) ([]models.Currency, error)
	UpsertRate(ctx context.Context, from, to string, rate decimal.Decimal, asOf time.Time) (*models.ExchangeRate, error)
	Convert(ctx context.Context, amount decimal.Decimal, from, to string, on time.Time) (converted, rate decimal.Decimal, err error)
}

// ExpenseInput holds the fields of a new expense. CategoryID may name a
// primary category or a subcategory.
type ExpenseInput struct {
	Description string
	Amount      decimal.Decimal
	Currency    string
	CategoryID  *string
	Date        time.Time
	Notes       string
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	CategoryID *string
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(ctx context.Context, userID string, in ExpenseInput) (*models.Expense, error)
	GetUserExpenses(ctx context.Context, userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(ctx context.Context, userID, expenseID string) (*models.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error
}

// BudgetInput holds the fields of a new budget. A nil AlertThreshold takes
// the configured default.
type BudgetInput struct {
	Name           string
	Amount         decimal.Decimal
	Currency       string
	PeriodType     period.Type
	StartDate      time.Time
	EndDate        *time.Time
	CategoryID     *string
	BudgetGroupID  *string
	AlertThreshold *decimal.Decimal
}

// BudgetUpdate holds optional budget changes. ClearEndDate makes the budget
// open-ended.
type BudgetUpdate struct {
	Name           *string
	Amount         *decimal.Decimal
	AlertThreshold *decimal.Decimal
	StartDate      *time.Time
	EndDate        *time.Time
	ClearEndDate   bool
	IsActive       *bool
}

// BudgetFilter holds optional filter parameters for listing budgets. A nil
// IsActive lists active budgets.
type BudgetFilter struct {
	IsActive      *bool
	PeriodType    *period.Type
	CategoryID    *string
	BudgetGroupID *string
}

// StatusCounts tallies budgets per status.
type StatusCounts struct {
	OnTrack    int `json:"on_track"`
	Warning    int `json:"warning"`
	OverBudget int `json:"over_budget"`
}

// Add counts one status.
func (c *StatusCounts) Add(s models.BudgetStatus) {
	switch s {
	case models.BudgetStatusOnTrack:
		c.OnTrack++
	case models.BudgetStatusWarning:
		c.Warning++
	case models.BudgetStatusOverBudget:
		c.OverBudget++
	}
}

// BudgetSummary aggregates the budgets current on a given day.
type BudgetSummary struct {
	AsOf           time.Time           `json:"as_of"`
	TotalBudgeted  decimal.Decimal     `json:"total_budgeted"`
	TotalSpent     decimal.Decimal     `json:"total_spent"`
	TotalRemaining decimal.Decimal     `json:"total_remaining"`
	PercentageUsed decimal.Decimal     `json:"percentage_used"`
	Status         models.BudgetStatus `json:"status"`
	BudgetCount    int                 `json:"budget_count"`
	StatusCounts   StatusCounts        `json:"status_counts"`
	Budgets        []BudgetPerformance `json:"budgets"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(ctx context.Context, userID string, in BudgetInput) (*models.Budget, error)
	GetUserBudgets(ctx context.Context, userID string, page pagination.PageRequest, filter BudgetFilter) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(ctx context.Context, userID, budgetID string) (*models.Budget, error)
	UpdateBudget(ctx context.Context, userID, budgetID string, upd BudgetUpdate) (*models.Budget, error)
	DeactivateBudget(ctx context.Context, userID, budgetID string) error
	GetBudgetPerformance(ctx context.Context, userID, budgetID string) (*BudgetPerformance, error)
	GetBudgetSummary(ctx context.Context, userID string, asOf *time.Time) (*BudgetSummary, error)
	GetBudgetAlerts(ctx context.Context, userID string, asOf *time.Time) ([]BudgetPerformance, error)
	GetCurrentBudgets(ctx context.Context, userID string, asOf *time.Time) ([]models.Budget, error)
}

// BudgetGroupInput holds the fields of a new budget group. When AutoCreate
// is set, budgets are generated in the same transaction.
type BudgetGroupInput struct {
	Name        string
	Description string
	PeriodType  period.Type
	StartDate   time.Time
	EndDate     time.Time
	Currency    string
	AutoCreate  *GenerateOptions
}

// BudgetGroupUpdate holds optional group changes.
type BudgetGroupUpdate struct {
	Name        *string
	Description *string
	PeriodType  *period.Type
	StartDate   *time.Time
	EndDate     *time.Time
	Currency    *string
	IsActive    *bool
}

// PeriodCheck is the answer to a group period validation.
type PeriodCheck struct {
	Valid        bool   `json:"valid"`
	ConflictID   string `json:"conflict_id,omitempty"`
	ConflictName string `json:"conflict_name,omitempty"`
	Message      string `json:"message,omitempty"`
}

// GroupsSummary aggregates the groups current on a given day.
type GroupsSummary struct {
	AsOf                time.Time           `json:"as_of"`
	TotalGroups         int                 `json:"total_groups"`
	ActiveGroups        int                 `json:"active_groups"`
	CurrentPeriodGroups int                 `json:"current_period_groups"`
	TotalBudgeted       decimal.Decimal     `json:"total_budgeted"`
	TotalSpent          decimal.Decimal     `json:"total_spent"`
	TotalRemaining      decimal.Decimal     `json:"total_remaining"`
	PercentageUsed      decimal.Decimal     `json:"percentage_used"`
	Status              models.BudgetStatus `json:"status"`
	Groups              []GroupSummary      `json:"groups"`
}

// BudgetGroupServicer defines the contract for budget group business logic.
type BudgetGroupServicer interface {
	CreateBudgetGroup(ctx context.Context, userID string, in BudgetGroupInput) (*models.BudgetGroup, int, error)
	GetUserBudgetGroups(ctx context.Context, userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.BudgetGroup], error)
	GetBudgetGroupByID(ctx context.Context, userID, groupID string) (*models.BudgetGroup, error)
	GetBudgetGroupWithBudgets(ctx context.Context, userID, groupID string) (*models.BudgetGroup, error)
	UpdateBudgetGroup(ctx context.Context, userID, groupID string, upd BudgetGroupUpdate) (*models.BudgetGroup, error)
	DeactivateBudgetGroup(ctx context.Context, userID, groupID string) error
	GetCurrentBudgetGroups(ctx context.Context, userID string, asOf *time.Time) ([]models.BudgetGroup, error)
	GetBudgetGroupSummary(ctx context.Context, userID, groupID string) (*GroupSummary, error)
	GetUserGroupsSummary(ctx context.Context, userID string, asOf *time.Time) (*GroupsSummary, error)
	GenerateBudgets(ctx context.Context, userID, groupID string, opts GenerateOptions) (int, error)
	BulkUpdateAmounts(ctx context.Context, userID, groupID string, items []AmountUpdate) (int, error)
	ValidateGroupPeriod(ctx context.Context, userID string, p period.Period, excludeID string) (*PeriodCheck, error)
}

// PlanAllocation is one category line of a monthly plan.
type PlanAllocation struct {
	CategoryID     string           `json:"category_id"`
	Amount         decimal.Decimal  `json:"amount"`
	AlertThreshold *decimal.Decimal `json:"alert_threshold,omitempty"`
}

// MonthlyPlanInput holds a new or updated monthly plan.
type MonthlyPlanInput struct {
	Year        int
	Month       time.Month
	Name        string
	Currency    string
	Allocations []PlanAllocation
}

// MonthlyPlan is the ungrouped monthly budgets starting in one month.
type MonthlyPlan struct {
	Year           int                 `json:"year"`
	Month          int                 `json:"month"`
	Name           string              `json:"name"`
	Currency       string              `json:"currency"`
	TotalBudgeted  decimal.Decimal     `json:"total_budgeted"`
	TotalSpent     decimal.Decimal     `json:"total_spent"`
	TotalRemaining decimal.Decimal     `json:"total_remaining"`
	PercentageUsed decimal.Decimal     `json:"percentage_used"`
	Status         models.BudgetStatus `json:"status"`
	StatusCounts   StatusCounts        `json:"status_counts"`
	Budgets        []BudgetPerformance `json:"budgets"`
}

// MonthlyPlanServicer defines the contract for monthly budget plans.
type MonthlyPlanServicer interface {
	CreatePlan(ctx context.Context, userID string, in MonthlyPlanInput) (*MonthlyPlan, error)
	ListPlans(ctx context.Context, userID string, year *int) ([]MonthlyPlan, error)
	GetPlan(ctx context.Context, userID string, year int, month time.Month) (*MonthlyPlan, error)
	UpdatePlan(ctx context.Context, userID string, in MonthlyPlanInput) (*MonthlyPlan, error)
	DeletePlan(ctx context.Context, userID string, year int, month time.Month) (int, error)
}

// AuditServicer defines the contract for the audit trail.
type AuditServicer interface {
	Log(ctx context.Context, userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
	GetUserAuditLogs(ctx context.Context, userID string, filter AuditFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
