package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

type csvRow struct {
	Line     int
	Name     string
	Category string
	Price    string
	Quantity string
}

var requiredColumns = []string{"name", "price", "quantity"}

func parseCSV(file io.Reader) ([]csvRow, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV header")
	}

	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	field := func(record []string, col string) string {
		if i, ok := index[col]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	var rows []csvRow
	for line := 2; ; line++ { // header is row 1
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %v", err)
		}
		rows = append(rows, csvRow{
			Line:     line,
			Name:     field(record, "name"),
			Category: field(record, "category"),
			Price:    field(record, "price"),
			Quantity: field(record, "quantity"),
		})
	}
	return rows, nil
}

// toRequest converts a raw row. Non-numeric price or quantity rejects the row
// instead of being read as zero.
func (r csvRow) toRequest() (ProductRequest, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return ProductRequest{}, errors.New("invalid price")
	}
	qty, err := strconv.Atoi(r.Quantity)
	if err != nil {
		return ProductRequest{}, errors.New("invalid quantity")
	}
	req := ProductRequest{Name: r.Name, Category: r.Category, Price: price, Quantity: qty}
	if errs := validateProduct(req); len(errs) > 0 {
		return ProductRequest{}, errors.New(strings.ToLower(errs[0].Description))
	}
	return req, nil
}

// ImportProductsHandler godoc
// @Summary Import products via CSV
// @Description Columns: name, category (optional), price, quantity. Rows with malformed numbers are reported and skipped.
// @Tags import
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Param mode query string false "Import mode (skip|update)"
// @Success 200 {object} ImportProductsResult
// @Failure 400 {string} string "Invalid file"
// @Router /products/import [post]
func ImportProductsHandler(w http.ResponseWriter, r *http.Request) {
	mode := strings.ToLower(r.URL.Query().Get("mode"))
	if mode != "update" {
		mode = "skip" // default
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	records, err := parseCSV(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	imported := 0
	errorsList := []ProductValidationError{}
	rowError := func(rec csvRow, format string, args ...any) {
		errorsList = append(errorsList, ProductValidationError{
			Field:       "row " + strconv.Itoa(rec.Line),
			Description: fmt.Sprintf("row %d: ", rec.Line) + fmt.Sprintf(format, args...),
		})
	}

	for _, rec := range records {
		req, err := rec.toRequest()
		if err != nil {
			rowError(rec, "%v", err)
			continue
		}
		categoryID, categoryName, err := resolveCategory(req)
		if err != nil {
			rowError(rec, "%v %q", err, req.Category)
			continue
		}

		existing, err := productRepo.GetByName(req.Name)
		if err == nil && existing.ID != uuid.Nil {
			if mode == "skip" {
				rowError(rec, "product '%s' already exists", req.Name)
				continue
			}
			previousQty := existing.Quantity
			existing.Price = req.Price
			existing.Quantity = req.Quantity
			if req.Category != "" {
				existing.CategoryID, existing.Category = categoryID, categoryName
			}
			updated, err := productRepo.Update(existing)
			if err != nil {
				rowError(rec, "failed to update '%s'", req.Name)
				continue
			}
			if updated.Quantity != previousQty {
				checkStock(r.Context(), updated)
			}
			imported++
			continue
		}

		created, err := productRepo.Create(models.Product{
			Name:       req.Name,
			CategoryID: categoryID,
			Category:   categoryName,
			Price:      req.Price,
			Quantity:   req.Quantity,
		})
		if err != nil {
			rowError(rec, "%v", err)
			continue
		}
		checkStock(r.Context(), created)
		imported++
	}

	if imported > 0 {
		publishChange("")
	}
	respond(w, http.StatusOK, ImportProductsResult{
		ImportedProductsCount: imported,
		Errors:                errorsList,
	})
}
