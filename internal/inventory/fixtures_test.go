package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, time.March, 14, 15, 0, 0, 0, time.UTC)

func category(name string, status models.CategoryStatus) models.Category {
	return models.Category{ID: uuid.New(), Name: name, Status: status}
}

func product(name, categoryName string, price int64, qty int, history ...models.StockEvent) models.Product {
	return models.Product{
		ID:           uuid.New(),
		Name:         name,
		Category:     categoryName,
		Price:        decimal.NewFromInt(price),
		Quantity:     qty,
		StockHistory: history,
	}
}

func event(prev, next int, at time.Time) models.StockEvent {
	return models.StockEvent{PreviousQty: prev, NewQty: next, Date: at}
}
