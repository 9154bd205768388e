package domain

import "time"

// Product is an inventory record. Quantity is a float because weighable
// goods (fruit, bulk grains) are sold in fractional units. Prices are
// whole currency units.
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Code          *string   `json:"code,omitempty"`
	PurchasePrice int64     `json:"purchase_price"`
	SalePrice     int64     `json:"sale_price"`
	Quantity      float64   `json:"quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Sale is a committed transaction header. Total always equals the sum
// of its line subtotals; it is recomputed on every mutation and never
// accepted from a caller. CreatedAt is fixed at creation and survives
// line edits.
type Sale struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Total     int64     `json:"total"`
}

// SaleLine is one product entry within a sale. ProductName and
// UnitPrice are snapshots taken when the line was written; they do not
// follow later changes to the product, and ProductID may point at a
// product that has since been deleted.
type SaleLine struct {
	ID          int64   `json:"id"`
	SaleID      int64   `json:"sale_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   int64   `json:"unit_price"`
	Subtotal    int64   `json:"subtotal"`
}

// ProductInput carries the mutable product fields for create and
// full-replacement update.
type ProductInput struct {
	Name          string  `json:"name"`
	Code          *string `json:"code"`
	PurchasePrice int64   `json:"purchase_price"`
	SalePrice     int64   `json:"sale_price"`
	Quantity      float64 `json:"quantity"`
}

// SaleLineInput is a candidate line for a sale create or edit. The
// subtotal and the product-name snapshot are computed by the store.
type SaleLineInput struct {
	ProductID int64   `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	UnitPrice int64   `json:"unit_price"`
}

// DeletedProductName is the snapshot label used when a line references
// a product id that no longer resolves.
const DeletedProductName = "Producto eliminado"
