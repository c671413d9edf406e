package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type periodStore struct {
	db *gorm.DB
}

// NewPeriodStore creates a PeriodStore over budgets and budget groups.
func NewPeriodStore(db *gorm.DB) PeriodStore {
	return &periodStore{db: db}
}

func (r *periodStore) BudgetPeriods(ctx context.Context, userID string, categoryID, groupID *string) ([]PeriodRecord, error) {
	budgets, err := ActiveBudgets(r.db).ForUser(userID).ForCategory(categoryID).InGroupScope(groupID).Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget periods: %w", err)
	}
	records := make([]PeriodRecord, 0, len(budgets))
	for i := range budgets {
		b := &budgets[i]
		records = append(records, PeriodRecord{ID: b.ID, Name: b.Name, Period: b.Period(), CreatedAt: b.CreatedAt})
	}
	return records, nil
}

func (r *periodStore) GroupPeriods(ctx context.Context, userID string) ([]PeriodRecord, error) {
	groups, err := ActiveBudgetGroups(r.db).ForUser(userID).Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget group periods: %w", err)
	}
	records := make([]PeriodRecord, 0, len(groups))
	for i := range groups {
		g := &groups[i]
		records = append(records, PeriodRecord{ID: g.ID, Name: g.Name, Period: g.Period(), CreatedAt: g.CreatedAt})
	}
	return records, nil
}

// LockUser takes a transaction-scoped advisory lock on Postgres. Other
// dialects rely on their own write serialisation.
func (r *periodStore) LockUser(ctx context.Context, userID string) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", userID).Error; err != nil {
		return fmt.Errorf("failed to lock user periods: %w", err)
	}
	return nil
}
