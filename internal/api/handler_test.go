package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneyhelper/backend/internal/service"
	"github.com/moneyhelper/backend/internal/statement"
	"github.com/moneyhelper/backend/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	clock := func() time.Time { return time.Date(2025, 7, 1, 12, 0, 0, 0, time.Local) }
	importer := service.NewImportServiceWithParser(st, statement.NewParserWithClock(clock))
	predictions := service.NewPredictionService(st)

	mux := http.NewServeMux()
	NewHandler(st, importer, predictions).RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, st
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestImportTextEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	text := "28.06.2025 17:47 123456 Супермаркеты 349,97 36 975,65\n" +
		"PYATEROCHKA 5351 RUS\n"
	resp, err := http.Post(srv.URL+"/api/import", "text/plain; charset=utf-8", strings.NewReader(text))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result service.ImportResult
	decodeBody(t, resp, &result)
	assert.Equal(t, 1, result.Parsed)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Duplicates)
}

func TestImportRejectsInvalidPDF(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/import", "application/pdf", strings.NewReader("not a pdf"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Contains(t, body["error"], "INVALID_DOCUMENT")
}

func TestImportRequiresPost(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/import")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestListExpensesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	text := "28.06.2025 17:47 123456 Супермаркеты 349,97 36 975,65\n" +
		"PYATEROCHKA 5351 RUS\n"
	resp, err := http.Post(srv.URL+"/api/import", "text/plain", strings.NewReader(text))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/categories")
	require.NoError(t, err)
	var categories []categoryResponse
	decodeBody(t, resp, &categories)
	require.Len(t, categories, 1)
	assert.Equal(t, statement.CategoryGroceries, categories[0].Name)

	resp, err = http.Get(srv.URL + "/api/expenses?categoryId=" + strconv.FormatInt(categories[0].ID, 10))
	require.NoError(t, err)
	var expenses []expenseResponse
	decodeBody(t, resp, &expenses)
	require.Len(t, expenses, 1)
	assert.Equal(t, int64(36976), expenses[0].Amount)
	assert.Equal(t, "PYATEROCHKA 5351", expenses[0].Description)
	assert.Equal(t, "Pyaterochka 5351", expenses[0].DisplayName)
	assert.Equal(t, "123456", expenses[0].AuthCode)
}

func TestListExpensesRequiresCategoryID(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/expenses")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPredictionsRoundTrip(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	cat, err := st.GetOrCreateCategory(ctx, "Продукты")
	require.NoError(t, err)
	for i, e := range []struct {
		at     time.Time
		amount int64
	}{
		{time.Date(2025, 5, 10, 12, 0, 0, 0, time.Local), 100},
		{time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local), 200},
	} {
		require.NoError(t, st.CreateExpense(ctx, &store.Expense{
			ID: "seed" + strconv.Itoa(i), CategoryID: cat.ID,
			Amount: e.amount, OccurredAt: e.at,
		}))
	}

	resp, err := http.Post(srv.URL+"/api/predictions/run", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var results []service.CategoryForecast
	decodeBody(t, resp, &results)
	require.Len(t, results, 1)
	assert.True(t, results[0].Valid)
	assert.InDelta(t, 300.0, results[0].Predicted, 1e-9)

	resp, err = http.Get(srv.URL + "/api/predictions")
	require.NoError(t, err)
	var stored []predictionResponse
	decodeBody(t, resp, &stored)
	require.Len(t, stored, 1)
	assert.Equal(t, cat.ID, stored[0].CategoryID)
	assert.InDelta(t, 300.0, stored[0].Amount, 1e-9)
}

