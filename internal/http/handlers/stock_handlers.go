package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/rogerio-castellano/inventory-dashboard/internal/obs"
	"github.com/rogerio-castellano/inventory-dashboard/internal/repo"
)

// AdjustQuantityHandler godoc
// @Summary Adjust quantity of a product
// @Description Positive deltas restock, negative deltas record a sale
// @Tags inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param adjustment body QuantityAdjustmentRequest true "Quantity change"
// @Success 200 {object} ProductResponse
// @Failure 400 {string} string "Invalid adjustment"
// @Failure 404 {string} string "Not found"
// @Failure 409 {string} string "Quantity would become negative"
// @Router /products/{id}/adjust [post]
func AdjustQuantityHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	var req QuantityAdjustmentRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if req.Delta == 0 {
		http.Error(w, "delta must not be zero", http.StatusBadRequest)
		return
	}

	product, err := productRepo.AdjustQuantity(id, req.Delta)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrProductNotFound):
			http.Error(w, "product not found", http.StatusNotFound)
		case errors.Is(err, repo.ErrInvalidQuantityChange):
			http.Error(w, "quantity cannot be negative", http.StatusConflict)
		default:
			http.Error(w, "could not update quantity", http.StatusInternalServerError)
		}
		return
	}

	checkStock(r.Context(), product)
	publishChange(product.ID.String())
	respond(w, http.StatusOK, toProductResponse(product, false))
}

// fixOffset restores the '+' of an RFC3339 offset that URL decoding turned into a space.
func fixOffset(s string) string {
	if len(s) == len(time.RFC3339) && s[len(s)-6] == ' ' {
		return s[:len(s)-6] + "+" + s[len(s)-5:]
	}
	return s
}

func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	v := fixOffset(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// GetStockHistoryHandler godoc
// @Summary Get the stock history of a product
// @Tags inventory
// @Security BearerAuth
// @Produce json
// @Param id path string true "Product ID"
// @Param since query string false "Only events from this timestamp (RFC3339)"
// @Param until query string false "Only events until this timestamp (RFC3339)"
// @Success 200 {object} StockHistoryResult
// @Failure 400 {string} string "Invalid input"
// @Failure 404 {string} string "Product not found"
// @Router /products/{id}/history [get]
func GetStockHistoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	since, err := parseTimeParam(r, "since")
	if err != nil {
		http.Error(w, "invalid since date format", http.StatusBadRequest)
		return
	}
	until, err := parseTimeParam(r, "until")
	if err != nil {
		http.Error(w, "invalid until date format", http.StatusBadRequest)
		return
	}

	history, err := productRepo.History(id)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		obs.Logger.Error("could not retrieve stock history", "product_id", id, "err", err)
		http.Error(w, "could not retrieve stock history", http.StatusInternalServerError)
		return
	}

	events := []models.StockEvent{}
	for _, e := range history {
		if since != nil && e.Date.Before(*since) {
			continue
		}
		if until != nil && e.Date.After(*until) {
			continue
		}
		events = append(events, e)
	}

	respond(w, http.StatusOK, StockHistoryResult{ProductID: id, Data: events, Meta: Meta{TotalCount: len(events)}})
}
