// Package repositories holds the GORM-backed collaborators of the budget
// engine and the active-only query objects every read path goes through.
package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// exclusionViolation is the Postgres SQLSTATE raised by an EXCLUDE constraint.
const exclusionViolation = "23P01"

// Repositories bundles the engine collaborators over one connection or
// transaction.
type Repositories struct {
	Spend      SpendLookup
	Categories CategoryTree
	Currencies CurrencyRegistry
	Budgets    BudgetStore
	Periods    PeriodStore
}

// New builds every collaborator over db. Pass a transaction handle to scope
// them to that transaction.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Spend:      NewSpendLookup(db),
		Categories: NewCategoryTree(db),
		Currencies: NewCurrencyRegistry(db),
		Budgets:    NewBudgetStore(db),
		Periods:    NewPeriodStore(db),
	}
}

// ReadSnapshot runs fn inside a read-only repeatable-read transaction so
// every query fn issues sees the same data.
func ReadSnapshot(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

// IsExclusionViolation reports whether err came from the budget group
// period exclusion constraint.
func IsExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == exclusionViolation
}
