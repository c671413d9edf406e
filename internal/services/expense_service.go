package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/money"
	"pennywise/internal/pagination"
	"pennywise/internal/period"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db         *gorm.DB
	categories CategoryServicer
	currencies CurrencyServicer
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, categories CategoryServicer, currencies CurrencyServicer) ExpenseServicer {
	return &expenseService{
		db:         db,
		categories: categories,
		currencies: currencies,
	}
}

// CreateExpense records an expense and its value in the user's base
// currency. A subcategory id is stored as the subcategory with its parent as
// the category, so spend rolls up to the primary.
func (s *expenseService) CreateExpense(ctx context.Context, userID string, in ExpenseInput) (*models.Expense, error) {
	if !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Select("id", "base_currency").Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	currency := money.NormalizeCurrency(in.Currency)
	if currency == "" {
		currency = user.BaseCurrency
	}
	if err := requireCurrency(ctx, db, currency); err != nil {
		return nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	date = period.Day(date)

	expense := &models.Expense{
		UserID:      userID,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Currency:    currency,
		ExpenseDate: date,
		Notes:       in.Notes,
	}

	if in.CategoryID != nil {
		category, err := s.categories.GetCategoryByID(ctx, userID, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if category.Type != models.CategoryTypeExpense {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "expenses can only use expense categories")
		}
		if category.IsPrimary() {
			expense.CategoryID = &category.ID
		} else {
			expense.CategoryID = category.ParentID
			expense.SubcategoryID = &category.ID
		}
	}

	converted, rate, err := s.currencies.Convert(ctx, in.Amount, currency, user.BaseCurrency, date)
	if err != nil {
		return nil, err
	}
	expense.AmountInBaseCurrency = converted
	expense.ExchangeRate = rate

	if err := db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// GetUserExpenses retrieves a paginated, filtered list of a user's expenses,
// newest first.
func (s *expenseService) GetUserExpenses(ctx context.Context, userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Expense{}).Where("user_id = ?", userID)
	base = applyExpenseFilters(base, filter)

	var totalItems int64
	if err := base.Session(&gorm.Session{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Scopes(pagination.Paginate(page)).
		Order("expense_date DESC, created_at DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyExpenseFilters(q *gorm.DB, f ExpenseFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("expense_date >= ?", period.Day(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("expense_date <= ?", period.Day(*f.ToDate))
	}
	if f.CategoryID != nil {
		q = q.Where("(category_id = ? OR subcategory_id = ?)", *f.CategoryID, *f.CategoryID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount_in_base_currency >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount_in_base_currency <= ?", *f.MaxAmount)
	}
	return q
}

// GetExpenseByID retrieves an expense by ID for a specific user
func (s *expenseService) GetExpenseByID(ctx context.Context, userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// DeleteExpense deletes an expense
func (s *expenseService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	expense, err := s.GetExpenseByID(ctx, userID, expenseID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
