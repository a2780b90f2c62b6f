package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    fixed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS expenses (
    id TEXT PRIMARY KEY,
    category_id INTEGER NOT NULL,
    amount INTEGER NOT NULL,
    description TEXT NOT NULL,
    auth_code TEXT NOT NULL DEFAULT '',
    occurred_at TEXT NOT NULL,
    FOREIGN KEY (category_id) REFERENCES categories(id)
);

CREATE INDEX IF NOT EXISTS idx_expenses_category ON expenses(category_id);

CREATE TABLE IF NOT EXISTS predictions (
    category_id INTEGER PRIMARY KEY,
    amount REAL NOT NULL,
    FOREIGN KEY (category_id) REFERENCES categories(id)
);
`

// occurredAtLayout keeps timestamps lexically sortable and readable by
// SQLite's strftime.
const occurredAtLayout = "2006-01-02 15:04:05"

// SQLiteStore is the on-disk Store implementation.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetOrCreateCategory(ctx context.Context, name string) (*Category, error) {
	cat := &Category{Name: name}
	var fixed int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, fixed FROM categories WHERE name = ?`, name).Scan(&cat.ID, &fixed)
	switch {
	case err == sql.ErrNoRows:
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO categories (name, fixed) VALUES (?, 0)`, name)
		if err != nil {
			return nil, fmt.Errorf("insert category %q: %w", name, err)
		}
		cat.ID, err = res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("category id: %w", err)
		}
		return cat, nil
	case err != nil:
		return nil, fmt.Errorf("lookup category %q: %w", name, err)
	}
	cat.Fixed = fixed != 0
	return cat, nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, fixed FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		cat := &Category{}
		var fixed int
		if err := rows.Scan(&cat.ID, &cat.Name, &fixed); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cat.Fixed = fixed != 0
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

func (s *SQLiteStore) CreateExpense(ctx context.Context, e *Expense) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, category_id, amount, description, auth_code, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.CategoryID, e.Amount, e.Description, e.AuthCode,
		e.OccurredAt.Format(occurredAtLayout))
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListExpenses(ctx context.Context, categoryID int64) ([]*Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category_id, amount, description, auth_code, occurred_at
		 FROM expenses WHERE category_id = ? ORDER BY occurred_at`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		e := &Expense{}
		var occurredAt string
		if err := rows.Scan(&e.ID, &e.CategoryID, &e.Amount, &e.Description, &e.AuthCode, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.OccurredAt, err = time.ParseInLocation(occurredAtLayout, occurredAt, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse occurred_at %q: %w", occurredAt, err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// HasExpense reports whether an equivalent expense was already imported:
// by authorization code when the statement carried one, otherwise by exact
// timestamp and amount.
func (s *SQLiteStore) HasExpense(ctx context.Context, authCode string, occurredAt time.Time, amount int64) (bool, error) {
	var count int
	var err error
	if authCode != "" {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM expenses WHERE auth_code = ?`, authCode).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM expenses WHERE occurred_at = ? AND amount = ?`,
			occurredAt.Format(occurredAtLayout), amount).Scan(&count)
	}
	if err != nil {
		return false, fmt.Errorf("check duplicate expense: %w", err)
	}
	return count > 0, nil
}

func (s *SQLiteStore) MonthlyTotals(ctx context.Context, categoryID int64) ([]MonthTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT strftime('%Y-%m', occurred_at) AS month, SUM(amount)
		 FROM expenses WHERE category_id = ?
		 GROUP BY month ORDER BY month`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	defer rows.Close()

	var totals []MonthTotal
	for rows.Next() {
		var mt MonthTotal
		if err := rows.Scan(&mt.Month, &mt.Total); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		totals = append(totals, mt)
	}
	return totals, rows.Err()
}

func (s *SQLiteStore) ClearPredictions(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM predictions`); err != nil {
		return fmt.Errorf("clear predictions: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertPrediction(ctx context.Context, categoryID int64, amount float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO predictions (category_id, amount) VALUES (?, ?)
		 ON CONFLICT(category_id) DO UPDATE SET amount = excluded.amount`,
		categoryID, amount)
	if err != nil {
		return fmt.Errorf("upsert prediction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListPredictions(ctx context.Context) (map[int64]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category_id, amount FROM predictions`)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	predictions := make(map[int64]float64)
	for rows.Next() {
		var categoryID int64
		var amount float64
		if err := rows.Scan(&categoryID, &amount); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		predictions[categoryID] = amount
	}
	return predictions, rows.Err()
}
