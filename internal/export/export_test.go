package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-dashboard/internal/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func rows() []inventory.ProductRow {
	return []inventory.ProductRow{
		{ID: uuid.New(), Name: "Pen", Category: "Stationery", Price: decimal.RequireFromString("12.5"), Quantity: 3, Status: inventory.StatusLow},
		{ID: uuid.New(), Name: "Pad", Category: "Stationery", Price: decimal.NewFromInt(40), Quantity: 0, Status: inventory.StatusOut},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, rows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, headers, records[0])
	assert.Equal(t, []string{"Pen", "Stationery", "12.50", "3", inventory.StatusLow}, records[1][1:])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, rows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, headers, got[0])
	assert.Equal(t, "Pad", got[2][1])
	assert.Equal(t, "0", got[2][4])
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, "pdf", rows()))
	assert.Equal(t, ContentTypeXLSX, ContentType(FormatXLSX))
	assert.Equal(t, ContentTypeCSV, ContentType(FormatCSV))
}
