package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"pennywise/internal/models"
	"pennywise/internal/period"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("%d.%s", nextID(), gofakeit.Email())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        email,
		Password:     string(hash),
		FirstName:    gofakeit.FirstName(),
		LastName:     gofakeit.LastName(),
		BaseCurrency: "USD",
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates an active expense category. Pass a parent to
// create a subcategory.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID, name string, parentID *string) *models.Category {
	t.Helper()
	return createCategory(t, db, userID, name, models.CategoryTypeExpense, parentID)
}

// CreateTestIncomeCategory creates an active income category.
func CreateTestIncomeCategory(t *testing.T, db *gorm.DB, userID, name string) *models.Category {
	t.Helper()
	return createCategory(t, db, userID, name, models.CategoryTypeIncome, nil)
}

func createCategory(t *testing.T, db *gorm.DB, userID, name string, categoryType models.CategoryType, parentID *string) *models.Category {
	t.Helper()

	if name == "" {
		name = fmt.Sprintf("%s %d", gofakeit.Word(), nextID())
	}
	category := &models.Category{
		UserID:   userID,
		Name:     name,
		Type:     categoryType,
		Color:    gofakeit.HexColor(),
		IsActive: true,
		ParentID: parentID,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestExpense records an expense in USD, which is also the base
// currency of fixture users.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID string, categoryID, subcategoryID *string, amount string, date time.Time) *models.Expense {
	t.Helper()

	value := Dec(amount)
	expense := &models.Expense{
		UserID:               userID,
		Description:          gofakeit.Word(),
		Amount:               value,
		Currency:             "USD",
		AmountInBaseCurrency: value,
		ExchangeRate:         decimal.NewFromInt(1),
		CategoryID:           categoryID,
		SubcategoryID:        subcategoryID,
		ExpenseDate:          period.Day(date),
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestBudgetGroup creates an active custom-period group.
func CreateTestBudgetGroup(t *testing.T, db *gorm.DB, userID string, start, end time.Time, currency string) *models.BudgetGroup {
	t.Helper()

	group := &models.BudgetGroup{
		UserID:     userID,
		Name:       fmt.Sprintf("Group %d", nextID()),
		PeriodType: period.TypeCustom,
		StartDate:  period.Day(start),
		EndDate:    period.Day(end),
		Currency:   currency,
		IsActive:   true,
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed to create test budget group: %v", err)
	}
	return group
}

// BudgetOption customises CreateTestBudget.
type BudgetOption func(*models.Budget)

// InGroup places the budget in a group and copies its period and currency.
func InGroup(g *models.BudgetGroup) BudgetOption {
	return func(b *models.Budget) {
		b.BudgetGroupID = &g.ID
		b.StartDate = g.StartDate
		end := g.EndDate
		b.EndDate = &end
		b.Currency = g.Currency
	}
}

// ForCategory links the budget to a category.
func ForCategory(c *models.Category) BudgetOption {
	return func(b *models.Budget) { b.CategoryID = &c.ID }
}

// Between sets the budget period.
func Between(start time.Time, end *time.Time) BudgetOption {
	return func(b *models.Budget) {
		p := period.New(start, end)
		b.StartDate = p.Start
		b.EndDate = p.End
	}
}

// WithThreshold sets the alert threshold.
func WithThreshold(v string) BudgetOption {
	return func(b *models.Budget) { b.AlertThreshold = Dec(v) }
}

// Inactive creates the budget deactivated.
func Inactive() BudgetOption {
	return func(b *models.Budget) { b.IsActive = false }
}

// CreateTestBudget creates an active monthly USD budget for the current
// month, adjusted by opts.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, amount string, opts ...BudgetOption) *models.Budget {
	t.Helper()

	now := time.Now().UTC()
	month := period.Month(now.Year(), now.Month())
	budget := &models.Budget{
		UserID:         userID,
		Name:           fmt.Sprintf("Budget %d", nextID()),
		Amount:         Dec(amount),
		Currency:       "USD",
		PeriodType:     period.TypeMonthly,
		StartDate:      month.Start,
		EndDate:        month.End,
		AlertThreshold: decimal.NewFromInt(80),
		IsActive:       true,
	}
	for _, opt := range opts {
		opt(budget)
	}
	if err := db.Omit("Category").Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
