package inventory

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(rows []ProductRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func catalogFixture() ([]models.Product, []models.Category) {
	categories := []models.Category{
		category("Tools", models.CategoryActive),
		category("Food", models.CategoryActive),
		category("Toys", models.CategoryInactive),
	}
	products := []models.Product{
		product("Hammer", "Tools", 12, 3),
		product("Apple", "Food", 1, 40),
		product("Saw", "Tools", 30, 0),
		product("Yo-yo", "Toys", 4, 8),
		product("Pineapple", "Food", 3, 7),
		product("Screwdriver", "Tools", 8, 15),
		product("Banana", "Food", 1, 0),
		product("Wrench", "Tools", 15, 2),
	}
	return products, categories
}

func TestComputeProductListView_PriceDescending(t *testing.T) {
	products := []models.Product{
		product("A", "Tools", 5, 1),
		product("B", "Tools", 1, 1),
		product("C", "Tools", 3, 1),
	}
	categories := []models.Category{category("Tools", models.CategoryActive)}

	view := ComputeProductListView(products, categories, FilterState{Sort: SortPriceDesc, Page: 1})

	prices := []string{}
	for _, r := range view.Rows {
		prices = append(prices, r.Price.String())
	}
	assert.Equal(t, []string{"5", "3", "1"}, prices)
	assert.Equal(t, 3, view.TotalCount)
	assert.Equal(t, 1, view.TotalPages)
	assert.Equal(t, DefaultPageSize, view.PageSize)
}

func TestComputeProductListView_Filters(t *testing.T) {
	products, categories := catalogFixture()

	tests := []struct {
		name string
		fs   FilterState
		want []string
	}{
		{"inactive category removed first", FilterState{PageSize: 10}, []string{"Hammer", "Apple", "Saw", "Pineapple", "Screwdriver", "Banana", "Wrench"}},
		{"search is case insensitive", FilterState{Search: "APP", PageSize: 10}, []string{"Apple", "Pineapple"}},
		{"category filter", FilterState{Category: "Food", PageSize: 10}, []string{"Apple", "Pineapple", "Banana"}},
		{"inactive category name selects nothing", FilterState{Category: "Toys", PageSize: 10}, []string{}},
		{"in stock", FilterState{Category: "Tools", Stock: StockIn, PageSize: 10}, []string{"Hammer", "Screwdriver", "Wrench"}},
		{"out of stock", FilterState{Stock: StockOut, PageSize: 10}, []string{"Saw", "Banana"}},
		{"qty ascending is stable", FilterState{Sort: SortQtyAsc, PageSize: 10}, []string{"Saw", "Banana", "Wrench", "Hammer", "Pineapple", "Screwdriver", "Apple"}},
		{"price ascending is stable", FilterState{Category: "Food", Sort: SortPriceAsc, PageSize: 10}, []string{"Apple", "Banana", "Pineapple"}},
		{"qty descending", FilterState{Category: "Tools", Sort: SortQtyDesc, PageSize: 10}, []string{"Screwdriver", "Hammer", "Wrench", "Saw"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fs.Page = 1
			view := ComputeProductListView(products, categories, tt.fs)
			assert.Equal(t, tt.want, names(view.Rows))
			assert.Equal(t, len(tt.want), view.TotalCount)
		})
	}
}

func TestComputeProductListView_StockCounts(t *testing.T) {
	products, categories := catalogFixture()

	view := ComputeProductListView(products, categories, FilterState{Page: 1})

	assert.Equal(t, 7, view.TotalCount)
	assert.Equal(t, 3, view.InStock)
	assert.Equal(t, 2, view.LowStock)
	assert.Equal(t, 2, view.OutOfStock)
	assert.Equal(t, view.TotalCount, view.InStock+view.LowStock+view.OutOfStock)
	assert.Len(t, view.Rows, DefaultPageSize)
}

func TestComputeProductListView_NoActiveCategoryShowsEverything(t *testing.T) {
	products := []models.Product{
		product("Yo-yo", "Toys", 4, 8),
		product("Kite", "Toys", 9, 1),
	}
	categories := []models.Category{category("Toys", models.CategoryInactive)}

	view := ComputeProductListView(products, categories, FilterState{Page: 1})

	assert.Equal(t, []string{"Yo-yo", "Kite"}, names(view.Rows))
}

func TestComputeProductListView_Pagination(t *testing.T) {
	products, categories := catalogFixture()
	fs := FilterState{Sort: SortPriceDesc, PageSize: 3}

	all := ProcessProducts(products, categories, fs)
	first := ComputeProductListView(products, categories, FilterState{Sort: SortPriceDesc, PageSize: 3, Page: 1})
	require.Equal(t, 3, first.TotalPages)

	var joined []ProductRow
	for page := 1; page <= first.TotalPages; page++ {
		fs.Page = page
		view := ComputeProductListView(products, categories, fs)
		assert.LessOrEqual(t, len(view.Rows), fs.PageSize)
		joined = append(joined, view.Rows...)
	}
	assert.Equal(t, all, joined)

	seen := map[uuid.UUID]bool{}
	for _, r := range joined {
		assert.False(t, seen[r.ID], "row %s repeated", r.Name)
		seen[r.ID] = true
	}
}

func TestComputeProductListView_PageOutOfRangeIsEmpty(t *testing.T) {
	products, categories := catalogFixture()

	for _, page := range []int{0, -1, 3, 100} {
		view := ComputeProductListView(products, categories, FilterState{Page: page})
		assert.Empty(t, view.Rows, "page %d", page)
		assert.Equal(t, page, view.Page)
		assert.Equal(t, 2, view.TotalPages)
		assert.Equal(t, 7, view.TotalCount)
	}
}

func TestComputeProductListView_StatusLabels(t *testing.T) {
	products := []models.Product{
		product("Empty", "Tools", 1, 0),
		product("Low", "Tools", 1, 4),
		product("Plenty", "Tools", 1, 5),
	}

	view := ComputeProductListView(products, nil, FilterState{Page: 1})

	require.Len(t, view.Rows, 3)
	assert.Equal(t, StatusOut, view.Rows[0].Status)
	assert.Equal(t, StatusLow, view.Rows[1].Status)
	assert.Equal(t, StatusIn, view.Rows[2].Status)
}

func TestComputeProductListView_JoinsByCategoryID(t *testing.T) {
	tools := category("Hand Tools", models.CategoryActive)
	p := product("Hammer", "Tools", 12, 3)
	p.CategoryID = tools.ID

	view := ComputeProductListView([]models.Product{p}, []models.Category{tools}, FilterState{Category: "Hand Tools", Page: 1})

	require.Len(t, view.Rows, 1)
	assert.Equal(t, "Hand Tools", view.Rows[0].Category)
}

func TestComputeProductListView_UnknownCategoryIDExcluded(t *testing.T) {
	tools := category("Tools", models.CategoryActive)
	p := product("Hammer", "Tools", 12, 3)
	p.CategoryID = uuid.New()

	view := ComputeProductListView([]models.Product{p}, []models.Category{tools}, FilterState{Page: 1})

	assert.Empty(t, view.Rows)
}

func TestComputeProductListView_Idempotent(t *testing.T) {
	products, categories := catalogFixture()
	fs := FilterState{Search: "a", Sort: SortQtyDesc, Page: 1}

	first, err := json.Marshal(ComputeProductListView(products, categories, fs))
	require.NoError(t, err)
	second, err := json.Marshal(ComputeProductListView(products, categories, fs))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestComputeProductListView_DecimalPrices(t *testing.T) {
	a := product("A", "Tools", 0, 1)
	a.Price = decimal.RequireFromString("2.10")
	b := product("B", "Tools", 0, 1)
	b.Price = decimal.RequireFromString("2.05")

	view := ComputeProductListView([]models.Product{a, b}, nil, FilterState{Sort: SortPriceAsc, Page: 1})

	assert.Equal(t, []string{"B", "A"}, names(view.Rows))
}

func TestParseFilterValues(t *testing.T) {
	s, err := ParseStockFilter("")
	require.NoError(t, err)
	assert.Equal(t, StockAll, s)

	s, err = ParseStockFilter("Out")
	require.NoError(t, err)
	assert.Equal(t, StockOut, s)

	_, err = ParseStockFilter("some")
	assert.Error(t, err)

	k, err := ParseSortKey("qty-desc")
	require.NoError(t, err)
	assert.Equal(t, SortQtyDesc, k)

	_, err = ParseSortKey("name-asc")
	assert.Error(t, err)
}
