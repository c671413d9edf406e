package repositories

import (
	"context"
	"fmt"

	"pennywise/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type budgetStore struct {
	db *gorm.DB
}

// NewBudgetStore creates a BudgetStore over the budgets table.
func NewBudgetStore(db *gorm.DB) BudgetStore {
	return &budgetStore{db: db}
}

func (r *budgetStore) CategoriesWithActiveBudget(ctx context.Context, groupID string) (map[string]bool, error) {
	var ids []string
	err := ActiveBudgets(r.db).InGroup(groupID).db.WithContext(ctx).
		Where("budgets.category_id IS NOT NULL").
		Distinct().Pluck("budgets.category_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list budgeted categories: %w", err)
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	return seen, nil
}

func (r *budgetStore) Create(ctx context.Context, budget *models.Budget) error {
	if err := r.db.WithContext(ctx).Omit("Category").Create(budget).Error; err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

func (r *budgetStore) FindActiveInGroup(ctx context.Context, groupID, budgetID string) (*models.Budget, error) {
	return ActiveBudgets(r.db).InGroup(groupID).First(ctx, budgetID)
}

func (r *budgetStore) FindActiveByCategory(ctx context.Context, groupID, categoryID string) (*models.Budget, error) {
	budgets, err := ActiveBudgets(r.db).InGroup(groupID).ForCategory(&categoryID).Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget: %w", err)
	}
	if len(budgets) == 0 {
		return nil, ErrRecordNotFound
	}
	return &budgets[0], nil
}

func (r *budgetStore) UpdateAmount(ctx context.Context, budgetID string, amount decimal.Decimal) error {
	err := r.db.WithContext(ctx).Model(&models.Budget{}).
		Where("id = ?", budgetID).Update("amount", amount).Error
	if err != nil {
		return fmt.Errorf("failed to update budget amount: %w", err)
	}
	return nil
}
