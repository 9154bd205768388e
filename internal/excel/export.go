// Package excel serializes ledger listings to spreadsheets, the
// backup/export path of the records and inventory views.
package excel

import (
	"fmt"

	"minimarket/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	productsSheet = "Products"
	salesSheet    = "Sales"
)

// ProductsWorkbook builds a workbook with one row per product in the
// order given (callers list by name).
func ProductsWorkbook(products []domain.Product) (*excelize.File, error) {
	file := excelize.NewFile()
	if err := file.SetSheetName("Sheet1", productsSheet); err != nil {
		return nil, fmt.Errorf("rename products sheet: %w", err)
	}

	header := []any{"id", "name", "code", "purchase_price", "sale_price", "quantity"}
	if err := file.SetSheetRow(productsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write products header: %w", err)
	}

	for i, product := range products {
		code := ""
		if product.Code != nil {
			code = *product.Code
		}
		row := []any{
			product.ID,
			product.Name,
			code,
			product.PurchasePrice,
			product.SalePrice,
			product.Quantity,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("product row %d: %w", i+2, err)
		}
		if err := file.SetSheetRow(productsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write product row %d: %w", i+2, err)
		}
	}
	return file, nil
}

// SalesWorkbook builds a workbook with one row per sale in the order
// given (callers list newest first).
func SalesWorkbook(sales []domain.Sale) (*excelize.File, error) {
	file := excelize.NewFile()
	if err := file.SetSheetName("Sheet1", salesSheet); err != nil {
		return nil, fmt.Errorf("rename sales sheet: %w", err)
	}

	header := []any{"id", "created_at", "total"}
	if err := file.SetSheetRow(salesSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write sales header: %w", err)
	}

	for i, sale := range sales {
		row := []any{
			sale.ID,
			sale.CreatedAt.Format("2006-01-02 15:04:05"),
			sale.Total,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("sale row %d: %w", i+2, err)
		}
		if err := file.SetSheetRow(salesSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write sale row %d: %w", i+2, err)
		}
	}
	return file, nil
}
