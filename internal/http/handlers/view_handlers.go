package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/rogerio-castellano/inventory-dashboard/internal/export"
	"github.com/rogerio-castellano/inventory-dashboard/internal/inventory"
	"github.com/rogerio-castellano/inventory-dashboard/internal/obs"
)

// filterStateFromQuery reads the list view controls. Unknown stock filters or sort
// keys and non-numeric pages are rejected.
func filterStateFromQuery(r *http.Request) (inventory.FilterState, error) {
	q := r.URL.Query()

	stock, err := inventory.ParseStockFilter(q.Get("stock"))
	if err != nil {
		return inventory.FilterState{}, err
	}
	sortKey, err := inventory.ParseSortKey(q.Get("sort"))
	if err != nil {
		return inventory.FilterState{}, err
	}

	page := 1
	if v := q.Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil {
			return inventory.FilterState{}, fmt.Errorf("invalid page %q", v)
		}
	}
	pageSize := settings.PageSize
	if v := q.Get("page_size"); v != "" {
		if pageSize, err = strconv.Atoi(v); err != nil || pageSize <= 0 {
			return inventory.FilterState{}, fmt.Errorf("invalid page_size %q", v)
		}
	}

	category := q.Get("category")
	if category == "" {
		category = inventory.AllCategories
	}

	return inventory.FilterState{
		Search:            q.Get("search"),
		Category:          category,
		Stock:             stock,
		Sort:              sortKey,
		Page:              page,
		PageSize:          pageSize,
		LowStockThreshold: settings.LowStockThreshold,
	}, nil
}

// GetProductViewHandler godoc
// @Summary Filtered, sorted and paginated product list
// @Description Only products of Active categories are listed, unless no category is Active.
// @Tags products
// @Security BearerAuth
// @Produce json
// @Param search query string false "Case-insensitive name substring"
// @Param category query string false "Category name or All"
// @Param stock query string false "All, In or Out"
// @Param sort query string false "price-asc, price-desc, qty-asc or qty-desc"
// @Param page query int false "1-based page"
// @Param page_size query int false "Rows per page"
// @Success 200 {object} ProductViewResult
// @Failure 400 {string} string "Invalid filter"
// @Router /products/view [get]
func GetProductViewHandler(w http.ResponseWriter, r *http.Request) {
	fs, err := filterStateFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := snapshot(r.Context())
	if err != nil {
		obs.Logger.Error("could not load record store", "err", err)
		http.Error(w, "could not fetch products", http.StatusInternalServerError)
		return
	}

	view := inventory.ComputeProductListView(snap.Products, snap.Categories, fs)
	respond(w, http.StatusOK, ProductViewResult{
		ListViewSnapshot: view,
		Search:           fs.Search,
		Category:         fs.Category,
		Stock:            string(fs.Stock),
		Sort:             string(fs.Sort),
	})
}

// ExportProductViewHandler godoc
// @Summary Export the filtered and sorted product list
// @Description Exports every matching row, ignoring pagination
// @Tags products
// @Security BearerAuth
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string true "csv or xlsx"
// @Param search query string false "Case-insensitive name substring"
// @Param category query string false "Category name or All"
// @Param stock query string false "All, In or Out"
// @Param sort query string false "price-asc, price-desc, qty-asc or qty-desc"
// @Success 200 {file} file
// @Failure 400 {string} string "Invalid input"
// @Router /products/view/export [get]
func ExportProductViewHandler(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != export.FormatCSV && format != export.FormatXLSX {
		http.Error(w, "format must be 'csv' or 'xlsx'", http.StatusBadRequest)
		return
	}
	fs, err := filterStateFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := snapshot(r.Context())
	if err != nil {
		obs.Logger.Error("could not load record store", "err", err)
		http.Error(w, "could not fetch products", http.StatusInternalServerError)
		return
	}
	rows := inventory.ProcessProducts(snap.Products, snap.Categories, fs)

	filename := fmt.Sprintf("products_%s.%s", now().Format("20060102"), format)
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if err := export.Write(w, format, rows); err != nil {
		obs.Logger.Error("export failed", "format", format, "err", err)
	}
}

// GetDashboardMetricsHandler godoc
// @Summary Dashboard metrics
// @Description Recomputed from the current products and categories on every call
// @Tags metrics
// @Security BearerAuth
// @Produce json
// @Success 200 {object} DashboardResult
// @Failure 500 {string} string "Internal error"
// @Router /metrics/dashboard [get]
func GetDashboardMetricsHandler(w http.ResponseWriter, r *http.Request) {
	dash, err := computeDashboard(r)
	if err != nil {
		http.Error(w, "failed to fetch metrics", http.StatusInternalServerError)
		return
	}
	respond(w, http.StatusOK, toDashboardResult(dash))
}

func computeDashboard(r *http.Request) (inventory.DashboardSnapshot, error) {
	snap, err := snapshot(r.Context())
	if err != nil {
		obs.Logger.Error("could not load record store", "err", err)
		return inventory.DashboardSnapshot{}, err
	}
	return inventory.ComputeDashboardMetrics(snap.Products, snap.Categories, now(), settings.LowStockThreshold), nil
}

