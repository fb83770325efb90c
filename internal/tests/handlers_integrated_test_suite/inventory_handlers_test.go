package handlers_integrated_test_suite

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	handler "github.com/rogerio-castellano/inventory-dashboard/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-dashboard/internal/http/router"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeProduct(t *testing.T, w *httptest.ResponseRecorder, expectCode int) handler.ProductResponse {
	t.Helper()
	require.Equal(t, expectCode, w.Code, w.Body.String())
	var p handler.ProductResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	return p
}

func TestProductLifecycle(t *testing.T) {
	t.Cleanup(clearAll)
	r := router.NewRouter()

	w := doRequest(r, http.MethodPost, "/categories", handler.CategoryRequest{Name: "Hardware"}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var hardware handler.CategoryResponse
	json.NewDecoder(w.Body).Decode(&hardware)

	p := decodeProduct(t, createProduct(r, "Drill", "Hardware", "89.90", 8), http.StatusCreated)
	require.NotNil(t, p.CategoryID)
	assert.Equal(t, hardware.ID, *p.CategoryID)
	assert.Equal(t, "Hardware", p.Category)

	w = createProduct(r, "Drill", "", "10", 1)
	assert.Equal(t, http.StatusConflict, w.Code)

	adjusted := decodeProduct(t, adjustProduct(r, p.ID.String(), -5), http.StatusOK)
	assert.Equal(t, 3, adjusted.Quantity)
	assert.True(t, adjusted.LowStock)

	assert.Equal(t, http.StatusConflict, adjustProduct(r, p.ID.String(), -4).Code)
	assert.Equal(t, http.StatusNotFound, adjustProduct(r, uuid.NewString(), 1).Code)

	w = doRequest(r, http.MethodGet, "/products/"+p.ID.String()+"/history", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var history handler.StockHistoryResult
	json.NewDecoder(w.Body).Decode(&history)
	require.Len(t, history.Data, 2)
	assert.Equal(t, models.StockEvent{PreviousQty: 0, NewQty: 8}.Delta(), history.Data[0].Delta())
	assert.Equal(t, 8, history.Data[1].PreviousQty)
	assert.Equal(t, 3, history.Data[1].NewQty)

	w = doRequest(r, http.MethodPut, "/categories/"+hardware.ID.String(), handler.CategoryRequest{Name: "Tools"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeProduct(t, doRequest(r, http.MethodGet, "/products/"+p.ID.String(), nil, token), http.StatusOK)
	assert.Equal(t, "Tools", got.Category)
	assert.Len(t, got.StockHistory, 2)

	assert.Equal(t, http.StatusNoContent, doRequest(r, http.MethodDelete, "/products/"+p.ID.String(), nil, token).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodGet, "/products/"+p.ID.String(), nil, token).Code)
}

func TestAdjustQuantityHandler_AtomicAndConcurrent(t *testing.T) {
	t.Cleanup(clearAll)
	r := router.NewRouter()
	created := decodeProduct(t, createProduct(r, "ConcurrentItem", "", "10", 10), http.StatusCreated)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			delta := -1
			if i%2 == 0 {
				delta = 1
			}
			if adjustProduct(r, created.ID.String(), delta).Code == http.StatusOK {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	final := decodeProduct(t, doRequest(r, http.MethodGet, "/products/"+created.ID.String(), nil, token), http.StatusOK)
	assert.Equal(t, 10, final.Quantity, "ten increments and ten decrements cancel out")
	assert.Equal(t, 20, successes)
	assert.Len(t, final.StockHistory, 21, "every adjustment is recorded")
}

func TestDashboardAndView(t *testing.T) {
	t.Cleanup(clearAll)
	r := router.NewRouter()

	for _, c := range []handler.CategoryRequest{
		{Name: "Active", Status: models.CategoryActive},
		{Name: "Hidden", Status: models.CategoryInactive},
	} {
		require.Equal(t, http.StatusCreated, doRequest(r, http.MethodPost, "/categories", c, token).Code)
	}
	for _, p := range []struct {
		name, category, price string
		qty                   int
	}{
		{"Visible", "Active", "10", 10},
		{"Scarce", "Active", "10", 2},
		{"Gone", "Active", "10", 0},
		{"Invisible", "Hidden", "10", 10},
	} {
		require.Equal(t, http.StatusCreated, createProduct(r, p.name, p.category, p.price, p.qty).Code)
	}

	w := doRequest(r, http.MethodGet, "/metrics/dashboard", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var dash handler.DashboardResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dash))
	assert.Equal(t, 3, dash.TotalProducts)
	assert.Equal(t, 1, dash.LowStock)
	assert.Equal(t, 1, dash.OutOfStock)
	assert.True(t, dash.TotalValue.Equal(decimal.NewFromInt(120)), "total value %s", dash.TotalValue)

	w = doRequest(r, http.MethodGet, "/products/view?sort=qty-desc", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var view handler.ProductViewResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&view))
	require.Len(t, view.Rows, 3)
	assert.Equal(t, []string{"Visible", "Scarce", "Gone"}, []string{view.Rows[0].Name, view.Rows[1].Name, view.Rows[2].Name})
}
