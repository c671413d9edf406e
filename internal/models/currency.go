package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a row of the currency registry, keyed by ISO 4217 code.
type Currency struct {
	Code          string    `gorm:"primaryKey;size:3" json:"code"`
	Name          string    `gorm:"not null;size:100" json:"name"`
	Symbol        string    `gorm:"size:10" json:"symbol"`
	DecimalPlaces int       `gorm:"not null" json:"decimal_places"`
	IsActive      bool      `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ExchangeRate converts one unit of FromCurrency into Rate units of
// ToCurrency, effective from AsOf until a newer rate exists.
type ExchangeRate struct {
	Base
	FromCurrency string          `gorm:"size:3;not null;uniqueIndex:idx_rate_pair_day" json:"from_currency"`
	ToCurrency   string          `gorm:"size:3;not null;uniqueIndex:idx_rate_pair_day" json:"to_currency"`
	Rate         decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"rate"`
	AsOf         time.Time       `gorm:"type:date;not null;uniqueIndex:idx_rate_pair_day" json:"as_of"`
}
