// Package store defines the persistence contract for imported expenses,
// categories and stored predictions, with SQLite and in-memory
// implementations.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Category is an app-side spending category. Fixed categories carry
// user-pinned amounts and are excluded from forecasting.
type Category struct {
	ID    int64
	Name  string
	Fixed bool
}

// Expense is one imported statement transaction.
type Expense struct {
	ID          string
	CategoryID  int64
	Amount      int64 // minor-unit-rounded magnitude
	Description string
	AuthCode    string // statement authorization code, "" when absent
	OccurredAt  time.Time
}

// MonthTotal is the aggregated spend for one calendar month, keyed as
// "YYYY-MM". Slices of MonthTotal are always chronologically ascending.
type MonthTotal struct {
	Month string
	Total float64
}

// Store is the persistence collaborator for the import and forecast
// workflows. Implementations must be safe for concurrent use; the batch
// forecast additionally assumes no other writer touches predictions while
// it runs.
type Store interface {
	// Categories
	GetOrCreateCategory(ctx context.Context, name string) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)

	// Expenses
	CreateExpense(ctx context.Context, e *Expense) error
	ListExpenses(ctx context.Context, categoryID int64) ([]*Expense, error)
	HasExpense(ctx context.Context, authCode string, occurredAt time.Time, amount int64) (bool, error)
	MonthlyTotals(ctx context.Context, categoryID int64) ([]MonthTotal, error)

	// Predictions
	ClearPredictions(ctx context.Context) error
	UpsertPrediction(ctx context.Context, categoryID int64, amount float64) error
	ListPredictions(ctx context.Context) (map[int64]float64, error)

	Close() error
}
