package services

import (
	"context"
	"sort"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/metrics"
	"pennywise/internal/period"
	"pennywise/internal/repositories"
)

const (
	resourceBudget      = "budget"
	resourceBudgetGroup = "budget_group"
)

// FirstOverlap returns the earliest-created record whose period overlaps
// candidate, ignoring excludeID. It returns nil when there is no conflict.
func FirstOverlap(candidate period.Period, existing []repositories.PeriodRecord, excludeID string) *repositories.PeriodRecord {
	ordered := make([]repositories.PeriodRecord, len(existing))
	copy(ordered, existing)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	for i := range ordered {
		if excludeID != "" && ordered[i].ID == excludeID {
			continue
		}
		if candidate.Overlaps(ordered[i].Period) {
			return &ordered[i]
		}
	}
	return nil
}

// HasOverlap reports whether candidate overlaps any record other than
// excludeID.
func HasOverlap(candidate period.Period, existing []repositories.PeriodRecord, excludeID string) bool {
	return FirstOverlap(candidate, existing, excludeID) != nil
}

// OverlapGuard rejects budget and group writes whose period collides with an
// active record of the same user. Call it with stores bound to the write
// transaction.
type OverlapGuard struct {
	periods repositories.PeriodStore
	metrics *metrics.Recorder
}

// NewOverlapGuard creates an OverlapGuard.
func NewOverlapGuard(periods repositories.PeriodStore, rec *metrics.Recorder) *OverlapGuard {
	return &OverlapGuard{periods: periods, metrics: rec}
}

// CheckBudget fails with ErrPeriodOverlap when another active budget in the
// same category and group scope overlaps p.
func (g *OverlapGuard) CheckBudget(ctx context.Context, userID string, p period.Period, categoryID, groupID *string, excludeID string) error {
	if err := g.periods.LockUser(ctx, userID); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	existing, err := g.periods.BudgetPeriods(ctx, userID, categoryID, groupID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if conflict := FirstOverlap(p, existing, excludeID); conflict != nil {
		g.metrics.PeriodConflict(resourceBudget)
		return apperrors.Withf(apperrors.ErrPeriodOverlap, "period overlaps existing budget %q", conflict.Name)
	}
	return nil
}

// GroupConflict returns the first active group overlapping p, or nil.
func (g *OverlapGuard) GroupConflict(ctx context.Context, userID string, p period.Period, excludeID string) (*repositories.PeriodRecord, error) {
	existing, err := g.periods.GroupPeriods(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return FirstOverlap(p, existing, excludeID), nil
}

// CheckGroup fails with ErrPeriodOverlap when another active group of the
// user overlaps p.
func (g *OverlapGuard) CheckGroup(ctx context.Context, userID string, p period.Period, excludeID string) error {
	if err := g.periods.LockUser(ctx, userID); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	conflict, err := g.GroupConflict(ctx, userID, p, excludeID)
	if err != nil {
		return err
	}
	if conflict != nil {
		g.metrics.PeriodConflict(resourceBudgetGroup)
		return groupOverlapError(conflict.Name)
	}
	return nil
}

func groupOverlapError(name string) *apperrors.AppError {
	return apperrors.Withf(apperrors.ErrPeriodOverlap, "period overlaps existing budget group %q", name)
}
