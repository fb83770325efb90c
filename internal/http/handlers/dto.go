package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-dashboard/internal/inventory"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RegisterResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type SessionResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CategoryRequest struct {
	Name   string                `json:"name"`
	Status models.CategoryStatus `json:"status,omitempty"`
}

type CategoryResponse struct {
	ID     uuid.UUID             `json:"id"`
	Name   string                `json:"name"`
	Status models.CategoryStatus `json:"status"`
}

// ProductRequest names its category either by id or by name; the id wins when both
// are given.
type ProductRequest struct {
	Name       string          `json:"name"`
	CategoryID string          `json:"category_id,omitempty"`
	Category   string          `json:"category,omitempty"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}

type ProductResponse struct {
	ID           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	CategoryID   *uuid.UUID          `json:"category_id,omitempty"`
	Category     string              `json:"category"`
	Price        decimal.Decimal     `json:"price"`
	Quantity     int                 `json:"quantity"`
	Status       string              `json:"status"`
	LowStock     bool                `json:"low_stock,omitempty"`
	StockHistory []models.StockEvent `json:"stock_history,omitempty"`
}

type Meta struct {
	TotalCount int `json:"total_count"`
}

type QuantityAdjustmentRequest struct {
	Delta int `json:"delta"` // can be positive or negative
}

type StockHistoryResult struct {
	ProductID uuid.UUID           `json:"product_id"`
	Data      []models.StockEvent `json:"data"`
	Meta      Meta                `json:"meta"`
}

type ImportProductsResult struct {
	ImportedProductsCount int                      `json:"imported"`
	Errors                []ProductValidationError `json:"errors"`
}

type ProductViewResult struct {
	inventory.ListViewSnapshot
	Search   string `json:"search"`
	Category string `json:"category"`
	Stock    string `json:"stock"`
	Sort     string `json:"sort"`
}

type DashboardResult struct {
	inventory.DashboardSnapshot
	TotalValueFormatted   string `json:"total_value_formatted"`
	DailyRevenueFormatted string `json:"daily_revenue_formatted"`
}

func toProductResponse(p models.Product, withHistory bool) ProductResponse {
	resp := ProductResponse{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		Quantity: p.Quantity,
		Status:   inventory.StockStatus(p.Quantity, settings.LowStockThreshold),
		LowStock: inventory.IsLowStock(p.Quantity, settings.LowStockThreshold),
	}
	if p.CategoryID != uuid.Nil {
		id := p.CategoryID
		resp.CategoryID = &id
	}
	if withHistory {
		resp.StockHistory = p.StockHistory
	}
	return resp
}

func toCategoryResponse(c models.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Status: c.Status}
}

func toDashboardResult(d inventory.DashboardSnapshot) DashboardResult {
	return DashboardResult{
		DashboardSnapshot:     d,
		TotalValueFormatted:   inventory.FormatCurrency(settings.CurrencySymbol, d.TotalValue),
		DailyRevenueFormatted: inventory.FormatCurrency(settings.CurrencySymbol, d.DailySales.Revenue),
	}
}
