package services

import (
	"context"
	"errors"
	"time"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/money"
	"pennywise/internal/period"
	"pennywise/internal/repositories"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// currencyService handles the currency registry and exchange rates.
type currencyService struct {
	db *gorm.DB
}

// NewCurrencyService creates a new CurrencyServicer.
func NewCurrencyService(db *gorm.DB) CurrencyServicer {
	return &currencyService{db: db}
}

// ListCurrencies returns active currencies ordered by code.
func (s *currencyService) ListCurrencies(ctx context.Context) ([]models.Currency, error) {
	var currencies []models.Currency
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("code ASC").Find(&currencies).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return currencies, nil
}

// UpsertRate stores the rate for a currency pair on a day, replacing any
// rate already recorded for that day.
func (s *currencyService) UpsertRate(ctx context.Context, from, to string, rate decimal.Decimal, asOf time.Time) (*models.ExchangeRate, error) {
	from, to = money.NormalizeCurrency(from), money.NormalizeCurrency(to)
	if !rate.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "rate must be greater than 0")
	}
	if from == to {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "currencies must differ")
	}
	db := s.db.WithContext(ctx)
	for _, code := range []string{from, to} {
		if err := requireCurrency(ctx, db, code); err != nil {
			return nil, err
		}
	}

	entry := &models.ExchangeRate{FromCurrency: from, ToCurrency: to, Rate: rate, AsOf: period.Day(asOf)}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_currency"}, {Name: "to_currency"}, {Name: "as_of"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entry, nil
}

// Convert turns amount in from into to using the latest rate on or before
// the given day, falling back to the inverse pair. The result is rounded
// half-up to cents.
func (s *currencyService) Convert(ctx context.Context, amount decimal.Decimal, from, to string, on time.Time) (decimal.Decimal, decimal.Decimal, error) {
	from, to = money.NormalizeCurrency(from), money.NormalizeCurrency(to)
	if from == to {
		return money.Display(amount), decimal.NewFromInt(1), nil
	}

	rate, err := s.latestRate(ctx, from, to, on)
	if err == nil {
		return money.Convert(amount, rate), rate, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	inverse, err := s.latestRate(ctx, to, from, on)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, decimal.Zero, apperrors.Withf(apperrors.ErrRateNotAvailable, "no exchange rate from %s to %s", from, to)
	}
	if err != nil {
		return decimal.Zero, decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	rate = decimal.NewFromInt(1).DivRound(inverse, 8)
	return money.Convert(amount, rate), rate, nil
}

func (s *currencyService) latestRate(ctx context.Context, from, to string, on time.Time) (decimal.Decimal, error) {
	var r models.ExchangeRate
	err := s.db.WithContext(ctx).
		Where("from_currency = ? AND to_currency = ? AND as_of <= ?", from, to, period.Day(on)).
		Order("as_of DESC").First(&r).Error
	return r.Rate, err
}

// currencyActive consults the registry through the repository collaborator.
func currencyActive(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	ok, err := repositories.NewCurrencyRegistry(db).IsActive(ctx, code)
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ok, nil
}

// requireCurrency fails with ErrCurrencyInactive unless code is active.
func requireCurrency(ctx context.Context, db *gorm.DB, code string) error {
	ok, err := currencyActive(ctx, db, code)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Withf(apperrors.ErrCurrencyInactive, "currency %s is unknown or inactive", code)
	}
	return nil
}
