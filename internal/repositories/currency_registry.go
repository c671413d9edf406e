package repositories

import (
	"context"
	"fmt"

	"pennywise/internal/models"
	"pennywise/internal/money"

	"gorm.io/gorm"
)

type currencyRegistry struct {
	db *gorm.DB
}

// NewCurrencyRegistry creates a CurrencyRegistry over the currencies table.
func NewCurrencyRegistry(db *gorm.DB) CurrencyRegistry {
	return &currencyRegistry{db: db}
}

func (r *currencyRegistry) IsActive(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Currency{}).
		Where("code = ? AND is_active = ?", money.NormalizeCurrency(code), true).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up currency: %w", err)
	}
	return n > 0, nil
}
