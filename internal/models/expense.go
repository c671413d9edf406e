package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single spend record. CategoryID always points at a primary
// category; SubcategoryID, when set, at one of its children.
type Expense struct {
	Base
	UserID               string          `gorm:"type:uuid;not null;index:idx_expense_user_date" json:"user_id"`
	Description          string          `gorm:"size:255" json:"description"`
	Amount               decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency             string          `gorm:"size:3;not null" json:"currency"`
	AmountInBaseCurrency decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount_in_base_currency"`
	ExchangeRate         decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"exchange_rate"`
	CategoryID           *string         `gorm:"type:uuid;index" json:"category_id,omitempty"`
	SubcategoryID        *string         `gorm:"type:uuid;index" json:"subcategory_id,omitempty"`
	ExpenseDate          time.Time       `gorm:"type:date;not null;index:idx_expense_user_date" json:"expense_date"`
	Notes                string          `json:"notes,omitempty"`

	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Subcategory *Category `gorm:"foreignKey:SubcategoryID" json:"subcategory,omitempty"`
}
