package handlers_test_suite

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	handler "github.com/rogerio-castellano/inventory-dashboard/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-dashboard/internal/http/router"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
)

func importCSV(r http.Handler, csvContent, mode string) *httptest.ResponseRecorder {
	body, contentType := multipartCSV(csvContent, "products.csv")
	path := "/products/import"
	if mode != "" {
		path += "?mode=" + mode
	}
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeImport(t *testing.T, w *httptest.ResponseRecorder) handler.ImportProductsResult {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var res handler.ImportProductsResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	return res
}

func TestImportProductsHandler_Valid(t *testing.T) {
	t.Cleanup(clearAll)
	r := router.NewRouter()
	mustCreateCategory(r, "Stationery", models.CategoryActive)

	csv := "name,category,price,quantity\n" +
		"Notebook,Stationery,3.50,40\n" +
		"Marker,Stationery,1.25,2\n" +
		"Folder,,0.80,15\n"

	res := decodeImport(t, importCSV(r, csv, ""))
	if res.ImportedProductsCount != 3 {
		t.Errorf("expected 3 imported, got %d (errors %+v)", res.ImportedProductsCount, res.Errors)
	}
	if len(res.Errors) != 0 {
		t.Errorf("expected no errors, got %+v", res.Errors)
	}

	notebook, err := productRepo.GetByName("Notebook")
	if err != nil {
		t.Fatalf("notebook not stored: %v", err)
	}
	if notebook.Category != "Stationery" || notebook.Price.String() != "3.5" {
		t.Errorf("unexpected notebook %+v", notebook)
	}

	entries, _ := alertLog.Drain(context.Background())
	if len(entries) != 1 || entries[0].Product != "Marker" {
		t.Errorf("expected one alert for Marker, got %+v", entries)
	}
}

func TestImportProductsHandler_RowErrors(t *testing.T) {
	t.Cleanup(clearAll)
	r := router.NewRouter()

	csv := "name,price,quantity,category\n" +
		"Good,10,5,\n" +
		",10,5,\n" +
		"BadPrice,ten,5,\n" +
		"BadQty,10,five,\n" +
		"Negative,10,-4,\n" +
		"Orphan,10,5,Unknown\n"

	res := decodeImport(t, importCSV(r, csv, ""))
	if res.ImportedProductsCount != 1 {
		t.Fatalf("expected only the valid row imported, got %d", res.ImportedProductsCount)
	}

	wantErrors := []string{
		"row 3: name is required",
		"row 4: invalid price",
		"row 5: invalid quantity",
		"row 6: quantity cannot be negative",
		`row 7: unknown category "Unknown"`,
	}
	if len(res.Errors) != len(wantErrors) {
		t.Fatalf("expected %d errors, got %+v", len(wantErrors), res.Errors)
	}
	for i, want := range wantErrors {
		if res.Errors[i].Description != want {
			t.Errorf("error %d: expected %q, got %q", i, want, res.Errors[i].Description)
		}
	}

	if _, err := productRepo.GetByName("BadPrice"); err == nil {
		t.Error("a row with a non-numeric price must not be stored")
	}
}

func TestImportProductsHandler_Modes(t *testing.T) {
	t.Cleanup(clearAll)
	r := router.NewRouter()
	existing := mustCreateProduct(r, "Scissors", "", "6", 10)

	csv := "name,price,quantity\nScissors,7.5,3\n"

	res := decodeImport(t, importCSV(r, csv, "skip"))
	if res.ImportedProductsCount != 0 || len(res.Errors) != 1 {
		t.Fatalf("skip mode must reject the existing product, got %+v", res)
	}
	if !strings.Contains(res.Errors[0].Description, "already exists") {
		t.Errorf("unexpected skip error %q", res.Errors[0].Description)
	}

	res = decodeImport(t, importCSV(r, csv, "update"))
	if res.ImportedProductsCount != 1 || len(res.Errors) != 0 {
		t.Fatalf("update mode must overwrite the existing product, got %+v", res)
	}
	updated, _ := productRepo.GetByID(existing.ID)
	if updated.Quantity != 3 || updated.Price.String() != "7.5" {
		t.Errorf("unexpected updated product %+v", updated)
	}
	if n := len(updated.StockHistory); n != 2 {
		t.Errorf("expected the quantity change to be recorded, got %d events", n)
	}
	if entries, _ := alertLog.Drain(context.Background()); len(entries) != 1 {
		t.Fatalf("expected one alert for the drop to 3, got %+v", entries)
	}

	res = decodeImport(t, importCSV(r, csv, "update"))
	if res.ImportedProductsCount != 1 {
		t.Fatalf("re-import must still count the row, got %+v", res)
	}
	if entries, _ := alertLog.Drain(context.Background()); len(entries) != 0 {
		t.Errorf("re-importing an unchanged quantity must not raise an alert, got %+v", entries)
	}
}

func TestImportProductsHandler_BadFile(t *testing.T) {
	r := router.NewRouter()

	tests := []struct {
		name string
		csv  string
	}{
		{"Empty file", ""},
		{"Missing quantity column", "name,price\nPen,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := importCSV(r, tt.csv, "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/products/import", strings.NewReader("name,price,quantity\n"))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a multipart file, got %d", w.Code)
	}
}
