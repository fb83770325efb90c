package inventory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 5
	AllCategories   = "All"
)

type StockFilter string

const (
	StockAll StockFilter = "All"
	StockIn  StockFilter = "In"
	StockOut StockFilter = "Out"
)

type SortKey string

const (
	SortNone      SortKey = ""
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortQtyAsc    SortKey = "qty-asc"
	SortQtyDesc   SortKey = "qty-desc"
)

func ParseStockFilter(s string) (StockFilter, error) {
	switch StockFilter(s) {
	case "", StockAll:
		return StockAll, nil
	case StockIn, StockOut:
		return StockFilter(s), nil
	}
	return "", fmt.Errorf("unknown stock filter %q", s)
}

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortNone, SortPriceAsc, SortPriceDesc, SortQtyAsc, SortQtyDesc:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// FilterState is the UI-driven input of the product list.
type FilterState struct {
	Search            string
	Category          string
	Stock             StockFilter
	Sort              SortKey
	Page              int
	PageSize          int
	LowStockThreshold int
}

func (fs FilterState) withDefaults() FilterState {
	if fs.Category == "" {
		fs.Category = AllCategories
	}
	if fs.Stock == "" {
		fs.Stock = StockAll
	}
	if fs.PageSize <= 0 {
		fs.PageSize = DefaultPageSize
	}
	if fs.LowStockThreshold <= 0 {
		fs.LowStockThreshold = DefaultLowStockThreshold
	}
	return fs
}

type ProductRow struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Status   string          `json:"status"`
}

// ListViewSnapshot is one rendered page plus the figures of the whole filtered set.
type ListViewSnapshot struct {
	Rows       []ProductRow `json:"rows"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalCount int          `json:"total_count"`
	TotalPages int          `json:"total_pages"`
	InStock    int          `json:"in_stock"`
	LowStock   int          `json:"low_stock"`
	OutOfStock int          `json:"out_of_stock"`
}

// ProcessProducts runs the filter and sort stages of the list and returns every
// matching row in display order.
func ProcessProducts(products []models.Product, categories []models.Category, fs FilterState) []ProductRow {
	fs = fs.withDefaults()
	catalog := NewCatalog(categories)
	search := strings.ToLower(fs.Search)

	rows := []ProductRow{}
	for _, p := range catalog.ActiveProducts(products, FallbackNoneActive) {
		if !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		category := catalog.CategoryName(p)
		if fs.Category != AllCategories && category != fs.Category {
			continue
		}
		if fs.Stock == StockIn && p.Quantity <= 0 {
			continue
		}
		if fs.Stock == StockOut && p.Quantity != 0 {
			continue
		}
		rows = append(rows, ProductRow{
			ID:       p.ID,
			Name:     p.Name,
			Category: category,
			Price:    p.Price,
			Quantity: p.Quantity,
			Status:   StockStatus(p.Quantity, fs.LowStockThreshold),
		})
	}

	if less := rowOrder(fs.Sort); less != nil {
		sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	}
	return rows
}

func rowOrder(k SortKey) func(a, b ProductRow) bool {
	switch k {
	case SortPriceAsc:
		return func(a, b ProductRow) bool { return a.Price.LessThan(b.Price) }
	case SortPriceDesc:
		return func(a, b ProductRow) bool { return a.Price.GreaterThan(b.Price) }
	case SortQtyAsc:
		return func(a, b ProductRow) bool { return a.Quantity < b.Quantity }
	case SortQtyDesc:
		return func(a, b ProductRow) bool { return a.Quantity > b.Quantity }
	}
	return nil
}

// ComputeProductListView filters, sorts and paginates the products. Page is
// 1-based and never clamped: a page outside 1..TotalPages yields no rows and the
// caller is expected to move back into range.
func ComputeProductListView(products []models.Product, categories []models.Category, fs FilterState) ListViewSnapshot {
	fs = fs.withDefaults()
	rows := ProcessProducts(products, categories, fs)

	view := ListViewSnapshot{
		Rows:       []ProductRow{},
		Page:       fs.Page,
		PageSize:   fs.PageSize,
		TotalCount: len(rows),
		TotalPages: (len(rows) + fs.PageSize - 1) / fs.PageSize,
	}

	for _, r := range rows {
		switch {
		case r.Quantity == 0:
			view.OutOfStock++
		case r.Quantity >= fs.LowStockThreshold:
			view.InStock++
		case IsLowStock(r.Quantity, fs.LowStockThreshold):
			view.LowStock++
		}
	}

	start := (fs.Page - 1) * fs.PageSize
	if fs.Page >= 1 && start < len(rows) {
		end := min(start+fs.PageSize, len(rows))
		view.Rows = append(view.Rows, rows[start:end]...)
	}
	return view
}
