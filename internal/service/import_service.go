// Package service hosts the statement import and prediction workflows on
// top of the persistence store.
package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/moneyhelper/backend/internal/statement"
	"github.com/moneyhelper/backend/internal/store"
)

// ImportResult summarizes one statement import.
type ImportResult struct {
	Parsed     int `json:"parsed"`
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
}

// ImportService turns statement documents into persisted expenses.
type ImportService struct {
	store  store.Store
	parser *statement.Parser
}

// NewImportService creates an ImportService.
func NewImportService(st store.Store) *ImportService {
	return &ImportService{store: st, parser: statement.NewParser()}
}

// NewImportServiceWithParser creates an ImportService with a custom parser,
// letting tests inject a fixed clock.
func NewImportServiceWithParser(st store.Store, parser *statement.Parser) *ImportService {
	return &ImportService{store: st, parser: parser}
}

// ImportPDF extracts text from a statement PDF and imports its expense
// transactions. Extraction failures are hard failures with no partial
// results.
func (s *ImportService) ImportPDF(ctx context.Context, data []byte) (*ImportResult, error) {
	text, err := statement.ExtractText(data)
	if err != nil {
		return nil, fmt.Errorf("extract statement text: %w", err)
	}
	return s.ImportText(ctx, text)
}

// ImportText imports expense transactions from already-extracted statement
// text. Each transaction is deduplicated against the store, its category
// materialized, and the expense inserted.
func (s *ImportService) ImportText(ctx context.Context, text string) (*ImportResult, error) {
	transactions := s.parser.Parse(text)
	result := &ImportResult{Parsed: len(transactions)}

	for _, tx := range transactions {
		duplicate, err := s.store.HasExpense(ctx, tx.AuthCode, tx.OccurredAt, int64(tx.Amount))
		if err != nil {
			return result, fmt.Errorf("check duplicate: %w", err)
		}
		if duplicate {
			result.Duplicates++
			continue
		}

		cat, err := s.store.GetOrCreateCategory(ctx, tx.Category)
		if err != nil {
			return result, fmt.Errorf("resolve category %q: %w", tx.Category, err)
		}

		expense := &store.Expense{
			ID:          uuid.New().String(),
			CategoryID:  cat.ID,
			Amount:      int64(tx.Amount),
			Description: tx.Description,
			AuthCode:    tx.AuthCode,
			OccurredAt:  tx.OccurredAt,
		}
		if err := s.store.CreateExpense(ctx, expense); err != nil {
			return result, fmt.Errorf("insert expense: %w", err)
		}
		result.Imported++
	}

	log.Printf("[statement-import] imported %d of %d parsed transactions (%d duplicates)",
		result.Imported, result.Parsed, result.Duplicates)
	return result, nil
}
