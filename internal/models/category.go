package models

import (
	"time"

	"github.com/google/uuid"
)

type CategoryStatus string

const (
	CategoryActive   CategoryStatus = "Active"
	CategoryInactive CategoryStatus = "Inactive"
)

// Valid reports whether s is one of the known statuses.
func (s CategoryStatus) Valid() bool {
	return s == CategoryActive || s == CategoryInactive
}

// Category groups products. Only Active categories make their products visible
// to the dashboard and the product list.
type Category struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Status    CategoryStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
	UpdatedAt time.Time      `json:"updated_at,omitempty"`
}

func (c Category) IsActive() bool {
	return c.Status == CategoryActive
}
