package models

import (
	"time"

	"pennywise/internal/period"

	"github.com/shopspring/decimal"
)

// BudgetStatus is the three-way classification of a budget's consumption.
type BudgetStatus string

const (
	BudgetStatusOnTrack    BudgetStatus = "on_track"
	BudgetStatusWarning    BudgetStatus = "warning"
	BudgetStatusOverBudget BudgetStatus = "over_budget"
)

// CategoryScope selects which categories budget generation considers.
type CategoryScope string

const (
	CategoryScopePrimary       CategoryScope = "primary"
	CategoryScopeSubcategories CategoryScope = "subcategories"
	CategoryScopeAll           CategoryScope = "all"
)

// Valid reports whether s is a known scope.
func (s CategoryScope) Valid() bool {
	switch s {
	case CategoryScopePrimary, CategoryScopeSubcategories, CategoryScopeAll:
		return true
	}
	return false
}

// Budget is a spending limit over a period. A nil CategoryID tracks all of
// the user's spending.
type Budget struct {
	Base
	UserID         string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string          `gorm:"not null;size:100" json:"name"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency       string          `gorm:"size:3;not null" json:"currency"`
	PeriodType     period.Type     `gorm:"size:20;not null" json:"period_type"`
	StartDate      time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate        *time.Time      `gorm:"type:date" json:"end_date,omitempty"`
	CategoryID     *string         `gorm:"type:uuid;index" json:"category_id,omitempty"`
	BudgetGroupID  *string         `gorm:"type:uuid;index" json:"budget_group_id,omitempty"`
	AlertThreshold decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"alert_threshold"`
	IsActive       bool            `gorm:"not null;index" json:"is_active"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

// Period returns the budget's date interval.
func (b *Budget) Period() period.Period {
	return period.New(b.StartDate, b.EndDate)
}
