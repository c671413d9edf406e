package services

import (
	"context"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/repositories"

	"github.com/shopspring/decimal"
)

// GenerateOptions controls BudgetGenerator.Generate.
type GenerateOptions struct {
	Scope           models.CategoryScope
	DefaultAmount   decimal.Decimal
	IncludeInactive bool
	// Overrides maps category id to the amount used instead of DefaultAmount.
	Overrides map[string]decimal.Decimal
}

// Validate checks the options before anything is written.
func (o GenerateOptions) Validate() error {
	if !o.Scope.Valid() {
		return apperrors.Withf(apperrors.ErrInvalidInput, "unknown category scope %q", o.Scope)
	}
	if !o.DefaultAmount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "default amount must be greater than 0")
	}
	for id, amount := range o.Overrides {
		if amount.IsNegative() {
			return apperrors.Withf(apperrors.ErrInvalidAmount, "override for category %s must not be negative", id)
		}
	}
	return nil
}

// BudgetGenerator creates one budget per matching category of a group.
type BudgetGenerator struct {
	categories repositories.CategoryTree
	budgets    repositories.BudgetStore
	threshold  decimal.Decimal
}

// NewBudgetGenerator creates a BudgetGenerator. threshold is the alert
// threshold given to every generated budget.
func NewBudgetGenerator(categories repositories.CategoryTree, budgets repositories.BudgetStore, threshold decimal.Decimal) *BudgetGenerator {
	return &BudgetGenerator{categories: categories, budgets: budgets, threshold: threshold}
}

// Generate returns the number of budgets created. Categories that already
// have an active budget in the group are skipped, so repeating a call
// creates nothing new.
func (g *BudgetGenerator) Generate(ctx context.Context, group *models.BudgetGroup, opts GenerateOptions) (int, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}

	nodes, err := g.categories.Categories(ctx, group.UserID, opts.IncludeInactive)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	existing, err := g.budgets.CategoriesWithActiveBudget(ctx, group.ID)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	created := 0
	for _, node := range nodes {
		if !inScope(node, opts.Scope) || existing[node.ID] {
			continue
		}
		amount := opts.DefaultAmount
		if override, ok := opts.Overrides[node.ID]; ok {
			amount = override
		}

		end := group.EndDate
		categoryID := node.ID
		budget := &models.Budget{
			UserID:         group.UserID,
			Name:           node.Name,
			Amount:         amount,
			Currency:       group.Currency,
			PeriodType:     group.PeriodType,
			StartDate:      group.StartDate,
			EndDate:        &end,
			CategoryID:     &categoryID,
			BudgetGroupID:  &group.ID,
			AlertThreshold: g.threshold,
			IsActive:       true,
		}
		if err := g.budgets.Create(ctx, budget); err != nil {
			return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		existing[node.ID] = true
		created++
	}
	return created, nil
}

// inScope applies the scope filter and the expense-only rule.
func inScope(node repositories.CategoryNode, scope models.CategoryScope) bool {
	if node.Type != models.CategoryTypeExpense {
		return false
	}
	switch scope {
	case models.CategoryScopePrimary:
		return node.IsPrimary()
	case models.CategoryScopeSubcategories:
		return !node.IsPrimary()
	default:
		return true
	}
}
