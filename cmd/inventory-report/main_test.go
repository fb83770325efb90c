package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-dashboard/internal/client"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func reportServer(t *testing.T) *httptest.Server {
	t.Helper()
	tools := models.Category{ID: uuid.New(), Name: "Tools", Status: models.CategoryActive}
	mux := chi.NewRouter()
	mux.MethodFunc("POST", "/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "pw" {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"token": "t", "expires_at": time.Now().Add(time.Hour)})
	})
	mux.MethodFunc("POST", "/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.MethodFunc("GET", "/categories", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.Category{tools})
	})
	mux.MethodFunc("GET", "/products", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": uuid.New(), "name": "Hammer", "category_id": tools.ID, "category": "Tools", "price": "250", "quantity": 2},
			{"id": uuid.New(), "name": "Wrench", "category_id": tools.ID, "category": "Tools", "price": "100", "quantity": 0},
			{"id": uuid.New(), "name": "Saw", "category_id": tools.ID, "category": "Tools", "price": "400", "quantity": 10},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func baseOptions(url string) options {
	return options{
		baseURL:   url,
		username:  "admin",
		password:  "pw",
		threshold: 5,
		currency:  "$",
		category:  "All",
		stock:     "All",
		page:      1,
		pageSize:  5,
		timeout:   5 * time.Second,
	}
}

func TestRun_PrintsDashboardAndList(t *testing.T) {
	var out bytes.Buffer
	opts := baseOptions(reportServer(t).URL)
	opts.sort = "price-desc"

	require.NoError(t, run(opts, &out))

	s := out.String()
	assert.Regexp(t, `Total products\s+3\n`, s)
	assert.Contains(t, s, "$4,500")
	assert.Contains(t, s, "3 matching, page 1 of 1")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("Saw")), bytes.Index(out.Bytes(), []byte("Hammer")))
}

func TestRun_WritesXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	opts := baseOptions(reportServer(t).URL)
	opts.stock = "In"
	opts.out = path

	var out bytes.Buffer
	require.NoError(t, run(opts, &out))
	assert.Contains(t, out.String(), "Wrote 2 rows")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	book, err := excelize.OpenReader(f)
	require.NoError(t, err)
	rows, err := book.GetRows("Products")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestRun_RejectsBadInput(t *testing.T) {
	srv := reportServer(t)

	opts := baseOptions(srv.URL)
	opts.sort = "name"
	assert.Error(t, run(opts, &bytes.Buffer{}))

	opts = baseOptions(srv.URL)
	opts.out = "report.pdf"
	assert.Error(t, run(opts, &bytes.Buffer{}))

	opts = baseOptions(srv.URL)
	opts.password = "wrong"
	assert.ErrorIs(t, run(opts, &bytes.Buffer{}), client.ErrInvalidCredentials)
}
