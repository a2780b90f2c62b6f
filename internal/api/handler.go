// Package api exposes the import and forecast workflows over a small JSON
// HTTP surface.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/moneyhelper/backend/internal/service"
	"github.com/moneyhelper/backend/internal/statement"
	"github.com/moneyhelper/backend/internal/store"
)

// maxUploadBytes caps statement uploads.
const maxUploadBytes = 20 << 20

// Handler holds the HTTP handlers for the API.
type Handler struct {
	store       store.Store
	importer    *service.ImportService
	predictions *service.PredictionService
}

// NewHandler creates a Handler.
func NewHandler(st store.Store, importer *service.ImportService, predictions *service.PredictionService) *Handler {
	return &Handler{store: st, importer: importer, predictions: predictions}
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", h.handleHealth)
	mux.HandleFunc("/api/import", h.handleImport)
	mux.HandleFunc("/api/categories", h.handleListCategories)
	mux.HandleFunc("/api/expenses", h.handleListExpenses)
	mux.HandleFunc("/api/predictions", h.handleListPredictions)
	mux.HandleFunc("/api/predictions/run", h.handleRunPredictions)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleImport accepts a statement either as a PDF upload (multipart field
// "statement" or a raw application/pdf body) or as already-extracted text
// with Content-Type text/plain.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "text/plain") {
		text, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
			return
		}
		result, err := h.importer.ImportText(r.Context(), string(text))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	var data []byte
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, _, err := r.FormFile("statement")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing statement file: "+err.Error())
			return
		}
		defer file.Close()
		data, err = io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "read statement file: "+err.Error())
			return
		}
	} else {
		var err error
		data, err = io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
			return
		}
	}

	result, err := h.importer.ImportPDF(r.Context(), data)
	if err != nil {
		var extractionErr *statement.ExtractionError
		if errors.As(err, &extractionErr) {
			writeError(w, http.StatusUnprocessableEntity, extractionErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type categoryResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Fixed bool   `json:"fixed"`
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		out = append(out, categoryResponse{ID: cat.ID, Name: cat.Name, Fixed: cat.Fixed})
	}
	writeJSON(w, http.StatusOK, out)
}

type expenseResponse struct {
	ID          string `json:"id"`
	CategoryID  int64  `json:"categoryId"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	DisplayName string `json:"displayName"`
	AuthCode    string `json:"authCode,omitempty"`
	OccurredAt  string `json:"occurredAt"`
}

func (h *Handler) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(r.URL.Query().Get("categoryId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "categoryId query parameter is required")
		return
	}

	expenses, err := h.store.ListExpenses(r.Context(), categoryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseResponse{
			ID:          e.ID,
			CategoryID:  e.CategoryID,
			Amount:      e.Amount,
			Description: e.Description,
			DisplayName: statement.FormatDisplayName(e.Description),
			AuthCode:    e.AuthCode,
			OccurredAt:  e.OccurredAt.Format("2006-01-02 15:04"),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type predictionResponse struct {
	CategoryID int64   `json:"categoryId"`
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
}

func (h *Handler) handleListPredictions(w http.ResponseWriter, r *http.Request) {
	predictions, err := h.store.ListPredictions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]predictionResponse, 0, len(predictions))
	for _, cat := range categories {
		if amount, ok := predictions[cat.ID]; ok {
			out = append(out, predictionResponse{CategoryID: cat.ID, Category: cat.Name, Amount: amount})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleRunPredictions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	results, err := h.predictions.RunAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
