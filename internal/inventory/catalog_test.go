package inventory

import (
	"testing"

	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCatalog_RenamedCategoryKeepsProducts(t *testing.T) {
	tools := category("Tools", models.CategoryActive)
	p := product("Hammer", "Tools", 1, 1)
	p.CategoryID = tools.ID

	tools.Name = "Hand Tools"
	c := NewCatalog([]models.Category{tools})

	assert.True(t, c.IsActive(p))
	assert.Equal(t, "Hand Tools", c.CategoryName(p))
}

func TestCatalog_NameFallbackPrefersActiveDuplicate(t *testing.T) {
	c := NewCatalog([]models.Category{
		category("Tools", models.CategoryInactive),
		category("Tools", models.CategoryActive),
	})

	assert.True(t, c.IsActive(product("Hammer", "Tools", 1, 1)))
}

func TestCatalog_ActiveProductsIsSubset(t *testing.T) {
	products, categories := catalogFixture()
	c := NewCatalog(categories)

	for _, fb := range []Fallback{FallbackNoCategories, FallbackNoneActive} {
		active := c.ActiveProducts(products, fb)
		assert.LessOrEqual(t, len(active), len(products))
		for _, p := range active {
			assert.Contains(t, products, p)
			assert.True(t, c.IsActive(p))
		}
	}
}

func TestCatalog_Fallbacks(t *testing.T) {
	products := []models.Product{product("Yo-yo", "Toys", 1, 1)}

	none := NewCatalog(nil)
	assert.Len(t, none.ActiveProducts(products, FallbackNoCategories), 1)
	assert.Len(t, none.ActiveProducts(products, FallbackNoneActive), 1)

	inactive := NewCatalog([]models.Category{category("Toys", models.CategoryInactive)})
	assert.Empty(t, inactive.ActiveProducts(products, FallbackNoCategories))
	assert.Len(t, inactive.ActiveProducts(products, FallbackNoneActive), 1)
}
