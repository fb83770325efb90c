package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/rogerio-castellano/inventory-dashboard/internal/repo"
)

var errUnknownCategory = errors.New("unknown category")

// resolveCategory maps the category reference of a request onto a stored category.
// An empty reference leaves the product uncategorized.
func resolveCategory(req ProductRequest) (uuid.UUID, string, error) {
	var (
		c   models.Category
		err error
	)
	switch {
	case req.CategoryID != "":
		id, perr := uuid.Parse(req.CategoryID)
		if perr != nil {
			return uuid.Nil, "", errUnknownCategory
		}
		c, err = categoryRepo.GetByID(id)
	case req.Category != "":
		c, err = categoryRepo.GetByName(req.Category)
	default:
		return uuid.Nil, "", nil
	}
	if errors.Is(err, repo.ErrCategoryNotFound) {
		return uuid.Nil, "", errUnknownCategory
	}
	if err != nil {
		return uuid.Nil, "", err
	}
	return c.ID, c.Name, nil
}

// decodeProduct reads, validates and resolves a product body, writing the error
// response itself when it fails.
func decodeProduct(w http.ResponseWriter, r *http.Request) (models.Product, bool) {
	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return models.Product{}, false
	}

	validationErrors := validateProduct(req)
	if len(validationErrors) > 0 {
		respond(w, http.StatusBadRequest, validationErrors)
		return models.Product{}, false
	}

	categoryID, categoryName, err := resolveCategory(req)
	if errors.Is(err, errUnknownCategory) {
		respond(w, http.StatusBadRequest, []ProductValidationError{{Field: "Category", Description: "Category does not exist"}})
		return models.Product{}, false
	}
	if err != nil {
		http.Error(w, "could not resolve category", http.StatusInternalServerError)
		return models.Product{}, false
	}

	return models.Product{
		Name:       req.Name,
		CategoryID: categoryID,
		Category:   categoryName,
		Price:      req.Price,
		Quantity:   req.Quantity,
	}, true
}

// CreateProductHandler godoc
// @Summary Create a new product
// @Description Adds a product to the inventory. A non-zero quantity is recorded as the first stock event.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} ProductResponse
// @Failure 400 {array} ProductValidationError
// @Failure 409 {string} string "Duplicated name"
// @Router /products [post]
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := decodeProduct(w, r)
	if !ok {
		return
	}

	created, err := productRepo.Create(product)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicatedValueUnique) {
			http.Error(w, "could not create product: product name duplicated", http.StatusConflict)
			return
		}
		http.Error(w, "could not create product", http.StatusInternalServerError)
		return
	}

	checkStock(r.Context(), created)
	publishChange(created.ID.String())
	respond(w, http.StatusCreated, toProductResponse(created, false))
}

// GetProductsHandler godoc
// @Summary List all products
// @Tags products
// @Security BearerAuth
// @Produce json
// @Param with_history query bool false "Include each product's stock history"
// @Success 200 {array} ProductResponse
// @Failure 500 {string} string "Internal error"
// @Router /products [get]
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := productRepo.GetAll()
	if err != nil {
		http.Error(w, "could not fetch products", http.StatusInternalServerError)
		return
	}
	withHistory := r.URL.Query().Get("with_history") == "true"
	response := make([]ProductResponse, len(products))
	for i, p := range products {
		response[i] = toProductResponse(p, withHistory)
	}
	respond(w, http.StatusOK, response)
}

// GetProductByIDHandler godoc
// @Summary Get product by ID
// @Tags products
// @Security BearerAuth
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Router /products/{id} [get]
func GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	product, err := productRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not fetch product", http.StatusInternalServerError)
		return
	}
	respond(w, http.StatusOK, toProductResponse(product, true))
}

// UpdateProductHandler godoc
// @Summary Update a product
// @Description Replaces name, category, price and quantity. A changed quantity is recorded as a stock event.
// @Tags products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body ProductRequest true "Updated product"
// @Success 200 {object} ProductResponse
// @Failure 400 {array} ProductValidationError
// @Failure 404 {string} string "Not found"
// @Failure 409 {string} string "Duplicated name"
// @Router /products/{id} [put]
func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	product, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	product.ID = id

	previous, err := productRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not fetch product", http.StatusInternalServerError)
		return
	}

	updated, err := productRepo.Update(product)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrProductNotFound):
			http.Error(w, "product not found", http.StatusNotFound)
		case errors.Is(err, repo.ErrDuplicatedValueUnique):
			http.Error(w, "could not update product: product name duplicated", http.StatusConflict)
		default:
			http.Error(w, "could not update product", http.StatusInternalServerError)
		}
		return
	}

	if updated.Quantity != previous.Quantity {
		checkStock(r.Context(), updated)
	}
	publishChange(updated.ID.String())
	respond(w, http.StatusOK, toProductResponse(updated, false))
}

// DeleteProductHandler godoc
// @Summary Delete a product
// @Tags products
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 204 "Deleted successfully"
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Router /products/{id} [delete]
func DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}
	if err := productRepo.Delete(id); err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not delete product", http.StatusInternalServerError)
		return
	}
	publishChange(id.String())
	w.WriteHeader(http.StatusNoContent)
}
