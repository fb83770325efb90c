package repo

import (
	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
)

// CategoryRepository defines the interface for category data operations.
type CategoryRepository interface {
	Create(c models.Category) (models.Category, error)
	GetAll() ([]models.Category, error)
	GetByID(id uuid.UUID) (models.Category, error)
	GetByName(name string) (models.Category, error)
	Update(c models.Category) (models.Category, error)
	Delete(id uuid.UUID) error
}
