package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for local development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	nextCatID   int64
	categories  map[int64]*Category
	expenses    map[string]*Expense
	predictions map[int64]float64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextCatID:   1,
		categories:  make(map[int64]*Category),
		expenses:    make(map[string]*Expense),
		predictions: make(map[int64]float64),
	}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) GetOrCreateCategory(ctx context.Context, name string) (*Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, cat := range m.categories {
		if cat.Name == name {
			copied := *cat
			return &copied, nil
		}
	}

	cat := &Category{ID: m.nextCatID, Name: name}
	m.nextCatID++
	m.categories[cat.ID] = cat
	copied := *cat
	return &copied, nil
}

// SetCategoryFixed marks a category as fixed. Tests use this to exercise
// the forecaster's non-fixed filter.
func (m *MemoryStore) SetCategoryFixed(categoryID int64, fixed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cat, ok := m.categories[categoryID]; ok {
		cat.Fixed = fixed
	}
}

func (m *MemoryStore) ListCategories(ctx context.Context) ([]*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	categories := make([]*Category, 0, len(m.categories))
	for _, cat := range m.categories {
		copied := *cat
		categories = append(categories, &copied)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func (m *MemoryStore) CreateExpense(ctx context.Context, e *Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *e
	m.expenses[e.ID] = &copied
	return nil
}

func (m *MemoryStore) ListExpenses(ctx context.Context, categoryID int64) ([]*Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var expenses []*Expense
	for _, e := range m.expenses {
		if e.CategoryID == categoryID {
			copied := *e
			expenses = append(expenses, &copied)
		}
	}
	sort.Slice(expenses, func(i, j int) bool {
		return expenses[i].OccurredAt.Before(expenses[j].OccurredAt)
	})
	return expenses, nil
}

func (m *MemoryStore) HasExpense(ctx context.Context, authCode string, occurredAt time.Time, amount int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.expenses {
		if authCode != "" {
			if e.AuthCode == authCode {
				return true, nil
			}
			continue
		}
		if e.OccurredAt.Equal(occurredAt) && e.Amount == amount {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) MonthlyTotals(ctx context.Context, categoryID int64) ([]MonthTotal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byMonth := make(map[string]float64)
	for _, e := range m.expenses {
		if e.CategoryID != categoryID {
			continue
		}
		byMonth[e.OccurredAt.Format("2006-01")] += float64(e.Amount)
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	totals := make([]MonthTotal, 0, len(months))
	for _, month := range months {
		totals = append(totals, MonthTotal{Month: month, Total: byMonth[month]})
	}
	return totals, nil
}

func (m *MemoryStore) ClearPredictions(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions = make(map[int64]float64)
	return nil
}

func (m *MemoryStore) UpsertPrediction(ctx context.Context, categoryID int64, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[categoryID] = amount
	return nil
}

func (m *MemoryStore) ListPredictions(ctx context.Context) (map[int64]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	predictions := make(map[int64]float64, len(m.predictions))
	for id, amount := range m.predictions {
		predictions[id] = amount
	}
	return predictions, nil
}
