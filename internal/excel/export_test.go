package excel_test

import (
	"bytes"
	"testing"
	"time"

	"minimarket/internal/domain"
	"minimarket/internal/excel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func reopen(t *testing.T, file *excelize.File) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	_, err := file.WriteTo(&buf)
	require.NoError(t, err)
	reopened, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })
	return reopened
}

func TestProductsWorkbook(t *testing.T) {
	code := "7791234"
	products := []domain.Product{
		{ID: 1, Name: "Arroz", Code: &code, PurchasePrice: 800, SalePrice: 1200, Quantity: 30},
		{ID: 2, Name: "Pan", PurchasePrice: 300, SalePrice: 500, Quantity: 12.5},
	}

	file, err := excel.ProductsWorkbook(products)
	require.NoError(t, err)
	book := reopen(t, file)

	rows, err := book.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"id", "name", "code", "purchase_price", "sale_price", "quantity"}, rows[0])
	assert.Equal(t, []string{"1", "Arroz", "7791234", "800", "1200", "30"}, rows[1])
	// Missing code exports as an empty cell.
	assert.Equal(t, "Pan", rows[2][1])
	assert.Equal(t, "12.5", rows[2][5])
}

func TestSalesWorkbook(t *testing.T) {
	sales := []domain.Sale{
		{ID: 7, CreatedAt: time.Date(2026, time.August, 31, 14, 5, 9, 0, time.UTC), Total: 3975},
	}

	file, err := excel.SalesWorkbook(sales)
	require.NoError(t, err)
	book := reopen(t, file)

	rows, err := book.GetRows("Sales")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"id", "created_at", "total"}, rows[0])
	assert.Equal(t, []string{"7", "2026-08-31 14:05:09", "3975"}, rows[1])
}

func TestEmptyWorkbooksKeepHeader(t *testing.T) {
	file, err := excel.ProductsWorkbook(nil)
	require.NoError(t, err)
	book := reopen(t, file)

	rows, err := book.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
