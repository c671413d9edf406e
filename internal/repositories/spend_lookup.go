package repositories

import (
	"context"
	"errors"
	"fmt"

	"pennywise/internal/models"
	"pennywise/internal/period"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type spendLookup struct {
	db *gorm.DB
}

// NewSpendLookup creates a SpendLookup over the expenses table.
func NewSpendLookup(db *gorm.DB) SpendLookup {
	return &spendLookup{db: db}
}

func (r *spendLookup) Spent(ctx context.Context, userID string, p period.Period, categoryID *string) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&models.Expense{}).
		Select("SUM(amount_in_base_currency)").
		Where("user_id = ? AND expense_date >= ?", userID, p.Start)
	if p.End != nil {
		q = q.Where("expense_date <= ?", *p.End)
	}

	if categoryID != nil {
		sub, err := r.isSubcategory(ctx, userID, *categoryID)
		if err != nil {
			return decimal.Zero, err
		}
		if sub {
			q = q.Where("subcategory_id = ?", *categoryID)
		} else {
			q = q.Where("(category_id = ? OR subcategory_id = ?)", *categoryID, *categoryID)
		}
	}

	var total decimal.NullDecimal
	if err := q.Row().Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// isSubcategory reports whether the category has a parent. A category that
// no longer exists is treated as primary.
func (r *spendLookup) isSubcategory(ctx context.Context, userID, categoryID string) (bool, error) {
	var c models.Category
	err := r.db.WithContext(ctx).Select("id", "parent_id").
		Where("id = ? AND user_id = ?", categoryID, userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to resolve category: %w", err)
	}
	return !c.IsPrimary(), nil
}
