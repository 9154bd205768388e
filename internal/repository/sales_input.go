package repository

import (
	"math"

	"minimarket/internal/domain"
)

// saleLineRecord is a validated candidate line with its subtotal
// already fixed. Subtotals are never trusted from callers.
type saleLineRecord struct {
	ProductID int64
	Quantity  float64
	UnitPrice int64
	Subtotal  int64
}

// lineSubtotal rounds quantity x unit price to the nearest whole
// currency unit. Fractional quantities (weighable goods) make the
// product fractional even though both prices and subtotals are
// integers.
func lineSubtotal(quantity float64, unitPrice int64) int64 {
	return int64(math.Round(quantity * float64(unitPrice)))
}

// validateSaleLines rejects an empty set, non-positive quantities and
// negative prices, and computes each line's subtotal.
func validateSaleLines(lines []domain.SaleLineInput) ([]saleLineRecord, error) {
	if len(lines) == 0 {
		return nil, &domain.ValidationError{Field: "lines", Reason: "at least one line is required"}
	}
	records := make([]saleLineRecord, 0, len(lines))
	for _, line := range lines {
		if line.ProductID <= 0 {
			return nil, &domain.ValidationError{Field: "product_id", Reason: "must be a positive id"}
		}
		if line.Quantity <= 0 {
			return nil, &domain.ValidationError{Field: "quantity", Reason: "must be greater than zero"}
		}
		if line.UnitPrice < 0 {
			return nil, &domain.ValidationError{Field: "unit_price", Reason: "cannot be negative"}
		}
		records = append(records, saleLineRecord{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  lineSubtotal(line.Quantity, line.UnitPrice),
		})
	}
	return records, nil
}

// recordsTotal sums the line subtotals; this is the only way a sale
// total is ever produced.
func recordsTotal(records []saleLineRecord) int64 {
	var total int64
	for _, record := range records {
		total += record.Subtotal
	}
	return total
}
