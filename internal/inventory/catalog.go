// Package inventory derives the dashboard metrics and the product list view from
// snapshots of products and categories. Every function here is pure: inputs are
// never mutated and outputs are freshly allocated.
package inventory

import (
	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
)

const DefaultLowStockThreshold = 5

// Fallback selects when the active-category gate is lifted and every product is
// shown.
type Fallback int

const (
	// FallbackNoCategories lets everything through only when no categories exist.
	FallbackNoCategories Fallback = iota
	// FallbackNoneActive lets everything through when no category is Active.
	FallbackNoneActive
)

// Catalog resolves the category of a product and whether it is Active.
type Catalog struct {
	byID   map[uuid.UUID]models.Category
	byName map[string]models.Category
	total  int
	active int
}

func NewCatalog(categories []models.Category) Catalog {
	c := Catalog{
		byID:   make(map[uuid.UUID]models.Category, len(categories)),
		byName: make(map[string]models.Category, len(categories)),
		total:  len(categories),
	}
	for _, cat := range categories {
		if cat.ID != uuid.Nil {
			c.byID[cat.ID] = cat
		}
		// first Active entry wins a name clash so an inactive duplicate never hides it
		if prev, ok := c.byName[cat.Name]; !ok || (!prev.IsActive() && cat.IsActive()) {
			c.byName[cat.Name] = cat
		}
		if cat.IsActive() {
			c.active++
		}
	}
	return c
}

// Lookup returns the category a product belongs to. The typed CategoryID wins;
// the denormalized name is consulted only when the id is unset. An id that is
// not in the catalog resolves to nothing.
func (c Catalog) Lookup(p models.Product) (models.Category, bool) {
	if p.CategoryID != uuid.Nil {
		cat, ok := c.byID[p.CategoryID]
		return cat, ok
	}
	cat, ok := c.byName[p.Category]
	return cat, ok
}

// CategoryName is the display name of the product's category, falling back to the
// stored name when the category is unknown.
func (c Catalog) CategoryName(p models.Product) string {
	if cat, ok := c.Lookup(p); ok {
		return cat.Name
	}
	return p.Category
}

func (c Catalog) IsActive(p models.Product) bool {
	cat, ok := c.Lookup(p)
	return ok && cat.IsActive()
}

func (c Catalog) permissive(fb Fallback) bool {
	switch fb {
	case FallbackNoneActive:
		return c.active == 0
	default:
		return c.total == 0
	}
}

// ActiveProducts keeps the products whose category is Active, preserving order.
func (c Catalog) ActiveProducts(products []models.Product, fb Fallback) []models.Product {
	out := make([]models.Product, 0, len(products))
	pass := c.permissive(fb)
	for _, p := range products {
		if pass || c.IsActive(p) {
			out = append(out, p)
		}
	}
	return out
}
