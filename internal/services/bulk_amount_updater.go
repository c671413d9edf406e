package services

import (
	"context"
	"errors"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/repositories"

	"github.com/shopspring/decimal"
)

// AmountUpdate is one item of a bulk amount change. BudgetID wins over
// CategoryID when both are set.
type AmountUpdate struct {
	BudgetID   *string         `json:"budget_id,omitempty"`
	CategoryID *string         `json:"category_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
}

// BulkAmountUpdater applies amount changes to a group's budgets.
type BulkAmountUpdater struct {
	budgets repositories.BudgetStore
}

// NewBulkAmountUpdater creates a BulkAmountUpdater.
func NewBulkAmountUpdater(budgets repositories.BudgetStore) *BulkAmountUpdater {
	return &BulkAmountUpdater{budgets: budgets}
}

// Apply returns how many budgets were updated. Negative amounts and items
// that match no active budget of the group are skipped.
func (u *BulkAmountUpdater) Apply(ctx context.Context, groupID string, items []AmountUpdate) (int, error) {
	updated := 0
	for _, item := range items {
		if item.Amount.IsNegative() {
			continue
		}
		budget, err := u.resolve(ctx, groupID, item)
		if errors.Is(err, repositories.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if budget == nil {
			continue
		}
		if err := u.budgets.UpdateAmount(ctx, budget.ID, item.Amount); err != nil {
			return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updated++
	}
	return updated, nil
}

func (u *BulkAmountUpdater) resolve(ctx context.Context, groupID string, item AmountUpdate) (*models.Budget, error) {
	switch {
	case item.BudgetID != nil:
		return u.budgets.FindActiveInGroup(ctx, groupID, *item.BudgetID)
	case item.CategoryID != nil:
		return u.budgets.FindActiveByCategory(ctx, groupID, *item.CategoryID)
	}
	return nil, nil
}
