package handlers

import (
	"errors"
	"net/http"

	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/rogerio-castellano/inventory-dashboard/internal/repo"
)

// GetCategoriesHandler godoc
// @Summary List categories
// @Tags categories
// @Security BearerAuth
// @Produce json
// @Success 200 {array} CategoryResponse
// @Failure 500 {string} string "Internal error"
// @Router /categories [get]
func GetCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := categoryRepo.GetAll()
	if err != nil {
		http.Error(w, "could not fetch categories", http.StatusInternalServerError)
		return
	}
	resp := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(c)
	}
	respond(w, http.StatusOK, resp)
}

// CreateCategoryHandler godoc
// @Summary Create a category
// @Description New categories are Active unless a status is given
// @Tags categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param category body CategoryRequest true "Category to add"
// @Success 201 {object} CategoryResponse
// @Failure 400 {array} ProductValidationError
// @Failure 403 {string} string "Forbidden"
// @Failure 409 {string} string "Duplicated name"
// @Router /categories [post]
func CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if errs := validateCategory(req); len(errs) > 0 {
		respond(w, http.StatusBadRequest, errs)
		return
	}

	created, err := categoryRepo.Create(models.Category{Name: req.Name, Status: req.Status})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicatedValueUnique) {
			http.Error(w, "could not create category: category name duplicated", http.StatusConflict)
			return
		}
		http.Error(w, "could not create category", http.StatusInternalServerError)
		return
	}
	publishChange("")
	respond(w, http.StatusCreated, toCategoryResponse(created))
}

// UpdateCategoryHandler godoc
// @Summary Rename a category or change its status
// @Tags categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param category body CategoryRequest true "Updated category"
// @Success 200 {object} CategoryResponse
// @Failure 400 {array} ProductValidationError
// @Failure 404 {string} string "Not found"
// @Router /categories/{id} [put]
func UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid category ID", http.StatusBadRequest)
		return
	}
	var req CategoryRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if errs := validateCategory(req); len(errs) > 0 {
		respond(w, http.StatusBadRequest, errs)
		return
	}

	existing, err := categoryRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrCategoryNotFound) {
			http.Error(w, "category not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not fetch category", http.StatusInternalServerError)
		return
	}
	existing.Name = req.Name
	if req.Status != "" {
		existing.Status = req.Status
	}

	updated, err := categoryRepo.Update(existing)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrCategoryNotFound):
			http.Error(w, "category not found", http.StatusNotFound)
		case errors.Is(err, repo.ErrDuplicatedValueUnique):
			http.Error(w, "could not update category: category name duplicated", http.StatusConflict)
		default:
			http.Error(w, "could not update category", http.StatusInternalServerError)
		}
		return
	}
	publishChange("")
	respond(w, http.StatusOK, toCategoryResponse(updated))
}

// DeleteCategoryHandler godoc
// @Summary Delete a category
// @Description Products of a deleted category keep existing but are no longer visible while other categories exist
// @Tags categories
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 204 "Deleted successfully"
// @Failure 404 {string} string "Not found"
// @Router /categories/{id} [delete]
func DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid category ID", http.StatusBadRequest)
		return
	}
	if err := categoryRepo.Delete(id); err != nil {
		if errors.Is(err, repo.ErrCategoryNotFound) {
			http.Error(w, "category not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not delete category", http.StatusInternalServerError)
		return
	}
	publishChange("")
	w.WriteHeader(http.StatusNoContent)
}
