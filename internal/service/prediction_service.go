package service

import (
	"context"
	"fmt"
	"log"

	"github.com/moneyhelper/backend/internal/forecast"
	"github.com/moneyhelper/backend/internal/store"
)

// CategoryForecast is the outcome of forecasting one category.
type CategoryForecast struct {
	CategoryID int64   `json:"categoryId"`
	Category   string  `json:"category"`
	Predicted  float64 `json:"predicted"`
	Valid      bool    `json:"valid"`
	Reason     string  `json:"reason,omitempty"`
}

// PredictionService runs the batch expense forecast.
type PredictionService struct {
	store store.Store
}

// NewPredictionService creates a PredictionService.
func NewPredictionService(st store.Store) *PredictionService {
	return &PredictionService{store: st}
}

// RunAll recomputes predictions for every non-fixed category. All stored
// predictions are cleared first so a category that fails this round keeps
// no stale value; only valid forecasts are written back. Callers must not
// interleave other prediction writers with a batch run.
func (s *PredictionService) RunAll(ctx context.Context) ([]CategoryForecast, error) {
	if err := s.store.ClearPredictions(ctx); err != nil {
		return nil, fmt.Errorf("clear predictions: %w", err)
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	var results []CategoryForecast
	stored := 0
	for _, cat := range categories {
		if cat.Fixed {
			continue
		}

		totals, err := s.store.MonthlyTotals(ctx, cat.ID)
		if err != nil {
			return results, fmt.Errorf("monthly totals for %q: %w", cat.Name, err)
		}

		points := make([]forecast.Point, len(totals))
		for i, t := range totals {
			points[i] = forecast.Point{Month: i + 1, Total: t.Total}
		}

		res := forecast.Forecast(points)
		cf := CategoryForecast{
			CategoryID: cat.ID,
			Category:   cat.Name,
			Valid:      res.Valid,
			Reason:     res.Reason,
		}
		if res.Valid {
			cf.Predicted = res.Next
			if err := s.store.UpsertPrediction(ctx, cat.ID, res.Next); err != nil {
				return results, fmt.Errorf("store prediction for %q: %w", cat.Name, err)
			}
			stored++
		} else {
			log.Printf("[prediction] category %q: %s", cat.Name, res.Reason)
		}
		results = append(results, cf)
	}

	log.Printf("[prediction] forecast %d categories, %d predictions stored", len(results), stored)
	return results, nil
}

// Forecast computes a single category's forecast without touching stored
// predictions.
func (s *PredictionService) Forecast(ctx context.Context, categoryID int64) (forecast.Result, error) {
	totals, err := s.store.MonthlyTotals(ctx, categoryID)
	if err != nil {
		return forecast.Result{}, fmt.Errorf("monthly totals: %w", err)
	}

	points := make([]forecast.Point, len(totals))
	for i, t := range totals {
		points[i] = forecast.Point{Month: i + 1, Total: t.Total}
	}
	return forecast.Forecast(points), nil
}
