package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockEvent is one recorded change of a product's on-hand quantity.
type StockEvent struct {
	PreviousQty int       `json:"previous_qty"`
	NewQty      int       `json:"new_qty"`
	Date        time.Time `json:"date"`
}

// Delta is positive for a restock, negative for a sale and zero for a neutral update.
func (e StockEvent) Delta() int {
	return e.NewQty - e.PreviousQty
}

// Product represents a product entity in the inventory system.
//
// CategoryID is the authoritative reference to the owning category. Category holds
// the category name as last seen by the store and is only used for matching when
// CategoryID is unset.
type Product struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	CategoryID   uuid.UUID       `json:"category_id"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	StockHistory []StockEvent    `json:"stock_history"`
	CreatedAt    time.Time       `json:"created_at,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at,omitempty"`
}

// Value is the stock value of the product at its current price.
func (p Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
