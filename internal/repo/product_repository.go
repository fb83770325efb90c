package repo

import (
	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
)

// ProductRepository defines the interface for product data operations.
//
// Every change of a product's quantity is recorded as a StockEvent: creation with a
// non-zero quantity (0 -> qty), an Update that changes the quantity, and AdjustQuantity.
type ProductRepository interface {
	Create(p models.Product) (models.Product, error)
	GetAll() ([]models.Product, error)
	GetByID(id uuid.UUID) (models.Product, error)
	GetByName(name string) (models.Product, error)
	Update(p models.Product) (models.Product, error)
	Delete(id uuid.UUID) error
	AdjustQuantity(id uuid.UUID, delta int) (models.Product, error)
	History(id uuid.UUID) ([]models.StockEvent, error)
}
