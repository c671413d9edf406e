package services

import (
	"context"
	"time"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/money"
	"pennywise/internal/repositories"

	"github.com/shopspring/decimal"
)

// SubcategorySummary is a leaf of the category summary tree.
type SubcategorySummary struct {
	CategoryID     string          `json:"category_id"`
	Budgeted       decimal.Decimal `json:"budgeted"`
	Spent          decimal.Decimal `json:"spent"`
	Remaining      decimal.Decimal `json:"remaining"`
	PercentageUsed decimal.Decimal `json:"percentage_used"`
}

// CategorySummary describes one primary category. Budgeted and Spent cover
// budgets on the primary itself; the Total fields fold in its subcategories.
type CategorySummary struct {
	CategoryID          string                         `json:"category_id"`
	Budgeted            decimal.Decimal                `json:"budgeted"`
	Spent               decimal.Decimal                `json:"spent"`
	Remaining           decimal.Decimal                `json:"remaining"`
	PercentageUsed      decimal.Decimal                `json:"percentage_used"`
	TotalBudgeted       decimal.Decimal                `json:"total_budgeted"`
	TotalSpent          decimal.Decimal                `json:"total_spent"`
	TotalRemaining      decimal.Decimal                `json:"total_remaining"`
	TotalPercentageUsed decimal.Decimal                `json:"total_percentage_used"`
	Subcategories       map[string]*SubcategorySummary `json:"subcategories"`
}

// GroupSummary is the aggregate view of a budget group.
type GroupSummary struct {
	GroupID         string                      `json:"group_id"`
	Name            string                      `json:"name"`
	Currency        string                      `json:"currency"`
	StartDate       time.Time                   `json:"start_date"`
	EndDate         time.Time                   `json:"end_date"`
	TotalBudgeted   decimal.Decimal             `json:"total_budgeted"`
	TotalSpent      decimal.Decimal             `json:"total_spent"`
	TotalRemaining  decimal.Decimal             `json:"total_remaining"`
	PercentageUsed  decimal.Decimal             `json:"percentage_used"`
	AlertThreshold  decimal.Decimal             `json:"alert_threshold"`
	Status          models.BudgetStatus         `json:"status"`
	BudgetCount     int                         `json:"budget_count"`
	Budgets         []BudgetPerformance         `json:"budgets"`
	CategorySummary map[string]*CategorySummary `json:"category_summary"`
}

// GroupAggregator rolls member budget performance up to the group and into
// a two-level category tree.
type GroupAggregator struct {
	budgets   *BudgetAggregator
	threshold decimal.Decimal
}

// NewGroupAggregator creates a GroupAggregator. Groups carry no threshold of
// their own, so the configured group threshold is applied to every group.
func NewGroupAggregator(budgets *BudgetAggregator, threshold decimal.Decimal) *GroupAggregator {
	return &GroupAggregator{budgets: budgets, threshold: threshold}
}

// categoryIndex is the adjacency view of a user's categories.
type categoryIndex struct {
	byID     map[string]repositories.CategoryNode
	children map[string][]string
}

// newCategoryIndex builds the index and rejects trees nested deeper than
// one level below a primary.
func newCategoryIndex(nodes []repositories.CategoryNode) (*categoryIndex, error) {
	idx := &categoryIndex{
		byID:     make(map[string]repositories.CategoryNode, len(nodes)),
		children: make(map[string][]string),
	}
	for _, n := range nodes {
		idx.byID[n.ID] = n
		if n.ParentID != nil {
			idx.children[*n.ParentID] = append(idx.children[*n.ParentID], n.ID)
		}
	}
	for parentID, kids := range idx.children {
		parent, ok := idx.byID[parentID]
		if ok && !parent.IsPrimary() {
			return nil, apperrors.Withf(apperrors.ErrCategoryTooDeep,
				"category %q is nested below subcategory %q", idx.byID[kids[0]].Name, parent.Name)
		}
	}
	return idx, nil
}

// resolve returns the primary a budget's category rolls up to and, for a
// subcategory, the subcategory itself. ok is false when the category is
// missing or its parent cannot be found.
func (idx *categoryIndex) resolve(categoryID string) (primary repositories.CategoryNode, sub *repositories.CategoryNode, ok bool) {
	node, found := idx.byID[categoryID]
	if !found {
		return primary, nil, false
	}
	if node.IsPrimary() {
		return node, nil, true
	}
	parent, found := idx.byID[*node.ParentID]
	if !found {
		return primary, nil, false
	}
	return parent, &node, true
}

// Summary aggregates the given member budgets. categories is the owner's
// full category list, used to place budgets in the tree.
func (g *GroupAggregator) Summary(ctx context.Context, group *models.BudgetGroup, budgets []models.Budget, categories []repositories.CategoryNode) (*GroupSummary, error) {
	idx, err := newCategoryIndex(categories)
	if err != nil {
		return nil, err
	}

	summary := &GroupSummary{
		GroupID:         group.ID,
		Name:            group.Name,
		Currency:        group.Currency,
		StartDate:       group.StartDate,
		EndDate:         group.EndDate,
		TotalBudgeted:   decimal.Zero,
		TotalSpent:      decimal.Zero,
		AlertThreshold:  g.threshold,
		Budgets:         make([]BudgetPerformance, 0, len(budgets)),
		CategorySummary: make(map[string]*CategorySummary),
	}

	for i := range budgets {
		b := &budgets[i]
		if !b.IsActive {
			continue
		}
		perf, err := g.budgets.Performance(ctx, b)
		if err != nil {
			return nil, err
		}
		summary.Budgets = append(summary.Budgets, *perf)
		summary.TotalBudgeted = summary.TotalBudgeted.Add(b.Amount)
		summary.TotalSpent = summary.TotalSpent.Add(perf.Spent)

		if b.CategoryID == nil {
			continue
		}
		primary, sub, ok := idx.resolve(*b.CategoryID)
		if !ok {
			continue
		}
		node := summary.CategorySummary[primary.Name]
		if node == nil {
			node = &CategorySummary{
				CategoryID:    primary.ID,
				Budgeted:      decimal.Zero,
				Spent:         decimal.Zero,
				TotalBudgeted: decimal.Zero,
				TotalSpent:    decimal.Zero,
				Subcategories: make(map[string]*SubcategorySummary),
			}
			summary.CategorySummary[primary.Name] = node
		}
		node.TotalBudgeted = node.TotalBudgeted.Add(b.Amount)
		node.TotalSpent = node.TotalSpent.Add(perf.Spent)
		if sub == nil {
			node.Budgeted = node.Budgeted.Add(b.Amount)
			node.Spent = node.Spent.Add(perf.Spent)
			continue
		}
		leaf := node.Subcategories[sub.Name]
		if leaf == nil {
			leaf = &SubcategorySummary{CategoryID: sub.ID, Budgeted: decimal.Zero, Spent: decimal.Zero}
			node.Subcategories[sub.Name] = leaf
		}
		leaf.Budgeted = leaf.Budgeted.Add(b.Amount)
		leaf.Spent = leaf.Spent.Add(perf.Spent)
	}

	// Derived fields are computed only once every budget has been added.
	for _, node := range summary.CategorySummary {
		node.Remaining = node.Budgeted.Sub(node.Spent)
		node.PercentageUsed = money.Percent(node.Spent, node.Budgeted)
		node.TotalRemaining = node.TotalBudgeted.Sub(node.TotalSpent)
		node.TotalPercentageUsed = money.Percent(node.TotalSpent, node.TotalBudgeted)
		for _, leaf := range node.Subcategories {
			leaf.Remaining = leaf.Budgeted.Sub(leaf.Spent)
			leaf.PercentageUsed = money.Percent(leaf.Spent, leaf.Budgeted)
		}
	}

	summary.BudgetCount = len(summary.Budgets)
	summary.TotalRemaining = summary.TotalBudgeted.Sub(summary.TotalSpent)
	summary.PercentageUsed = money.Percent(summary.TotalSpent, summary.TotalBudgeted)
	summary.Status = Classify(summary.TotalBudgeted, summary.TotalSpent, g.threshold)
	return summary, nil
}
