package services

import (
	"context"
	"time"

	"pennywise/internal/models"
	"pennywise/internal/money"
	"pennywise/internal/repositories"

	"github.com/shopspring/decimal"
)

// BudgetPerformance is a budget's consumption over its period.
type BudgetPerformance struct {
	BudgetID       string              `json:"budget_id"`
	Name           string              `json:"name"`
	CategoryID     *string             `json:"category_id,omitempty"`
	CategoryName   string              `json:"category_name,omitempty"`
	BudgetGroupID  *string             `json:"budget_group_id,omitempty"`
	Currency       string              `json:"currency"`
	StartDate      time.Time           `json:"start_date"`
	EndDate        *time.Time          `json:"end_date,omitempty"`
	Amount         decimal.Decimal     `json:"amount"`
	Spent          decimal.Decimal     `json:"spent"`
	Remaining      decimal.Decimal     `json:"remaining"`
	PercentageUsed decimal.Decimal     `json:"percentage_used"`
	AlertThreshold decimal.Decimal     `json:"alert_threshold"`
	Status         models.BudgetStatus `json:"status"`
}

// Classify maps spend against a limit to a status. Over budget wins over
// warning; a zero amount has a percentage of zero, so it is over budget as
// soon as anything is spent.
func Classify(amount, spent, threshold decimal.Decimal) models.BudgetStatus {
	if spent.GreaterThan(amount) {
		return models.BudgetStatusOverBudget
	}
	if money.Percent(spent, amount).GreaterThanOrEqual(threshold) {
		return models.BudgetStatusWarning
	}
	return models.BudgetStatusOnTrack
}

// BudgetAggregator computes per-budget performance from the expense ledger.
type BudgetAggregator struct {
	spend repositories.SpendLookup
}

// NewBudgetAggregator creates a BudgetAggregator.
func NewBudgetAggregator(spend repositories.SpendLookup) *BudgetAggregator {
	return &BudgetAggregator{spend: spend}
}

// Performance sums the budget's spend and classifies it.
func (a *BudgetAggregator) Performance(ctx context.Context, b *models.Budget) (*BudgetPerformance, error) {
	spent, err := a.spend.Spent(ctx, b.UserID, b.Period(), b.CategoryID)
	if err != nil {
		return nil, err
	}

	perf := &BudgetPerformance{
		BudgetID:       b.ID,
		Name:           b.Name,
		CategoryID:     b.CategoryID,
		BudgetGroupID:  b.BudgetGroupID,
		Currency:       b.Currency,
		StartDate:      b.StartDate,
		EndDate:        b.EndDate,
		Amount:         b.Amount,
		Spent:          spent,
		Remaining:      b.Amount.Sub(spent),
		PercentageUsed: money.Percent(spent, b.Amount),
		AlertThreshold: b.AlertThreshold,
		Status:         Classify(b.Amount, spent, b.AlertThreshold),
	}
	if b.Category != nil {
		perf.CategoryName = b.Category.Name
	}
	return perf, nil
}
