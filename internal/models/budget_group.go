package models

import (
	"time"

	"pennywise/internal/period"
)

// BudgetGroup is an umbrella over budgets sharing one period and currency.
type BudgetGroup struct {
	Base
	UserID      string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string      `gorm:"not null;size:100" json:"name"`
	Description string      `json:"description,omitempty"`
	PeriodType  period.Type `gorm:"size:20;not null" json:"period_type"`
	StartDate   time.Time   `gorm:"type:date;not null" json:"start_date"`
	EndDate     time.Time   `gorm:"type:date;not null" json:"end_date"`
	Currency    string      `gorm:"size:3;not null" json:"currency"`
	IsActive    bool        `gorm:"not null;index" json:"is_active"`

	Budgets []Budget `gorm:"foreignKey:BudgetGroupID;constraint:OnDelete:SET NULL" json:"budgets,omitempty"`
}

// Period returns the group's date interval. Groups always have an end.
func (g *BudgetGroup) Period() period.Period {
	return period.Closed(g.StartDate, g.EndDate)
}
