// Package composer holds the in-progress sale for a single till: the
// staged line items accumulated between scanning the first product and
// committing the sale. The buffer has no identity until commit and is
// simply discarded on cancel.
package composer

import (
	"context"
	"math"

	"minimarket/internal/domain"
)

// Ledger is the slice of the store the composer needs: stock re-reads
// at commit time and the atomic sale creation it delegates to.
type Ledger interface {
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	CreateSale(ctx context.Context, lines []domain.SaleLineInput) (int64, error)
}

// StagedLine is an uncommitted candidate line. Name, code and unit
// price were copied from the product when the line was staged.
type StagedLine struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Code      *string `json:"code,omitempty"`
	Quantity  float64 `json:"quantity"`
	UnitPrice int64   `json:"unit_price"`
	Subtotal  int64   `json:"subtotal"`
}

// Composer is a single-session staging buffer. It is not safe for
// concurrent use; the hosting layer serializes access.
type Composer struct {
	lines []StagedLine
}

func New() *Composer {
	return &Composer{}
}

// AddLine stages quantity of a product at its current sale price. If
// the product is already staged the quantities merge. New and merged
// quantities alike are rejected when they exceed the stock known at
// stage time, leaving the buffer unchanged. Commit re-checks against
// live stock anyway, this check just catches the obvious case while
// the operator is still at the till.
func (c *Composer) AddLine(product domain.Product, quantity float64) error {
	if quantity < 1 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	for i := range c.lines {
		if c.lines[i].ProductID != product.ID {
			continue
		}
		merged := c.lines[i].Quantity + quantity
		if merged > product.Quantity {
			return &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   merged,
				Available:   product.Quantity,
			}
		}
		c.lines[i].Quantity = merged
		c.lines[i].Subtotal = subtotal(merged, c.lines[i].UnitPrice)
		return nil
	}
	if quantity > product.Quantity {
		return &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Quantity,
		}
	}
	c.lines = append(c.lines, StagedLine{
		ProductID: product.ID,
		Name:      product.Name,
		Code:      product.Code,
		Quantity:  quantity,
		UnitPrice: product.SalePrice,
		Subtotal:  subtotal(quantity, product.SalePrice),
	})
	return nil
}

// SetLineQuantity overwrites a staged line's quantity. No upper bound
// applies here; the stock check happens at commit.
func (c *Composer) SetLineQuantity(index int, quantity float64) error {
	if index < 0 || index >= len(c.lines) {
		return &domain.ValidationError{Field: "index", Reason: "no staged line at this position"}
	}
	if quantity <= 0 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	c.lines[index].Quantity = quantity
	c.lines[index].Subtotal = subtotal(quantity, c.lines[index].UnitPrice)
	return nil
}

// RemoveLine drops a staged line.
func (c *Composer) RemoveLine(index int) error {
	if index < 0 || index >= len(c.lines) {
		return &domain.ValidationError{Field: "index", Reason: "no staged line at this position"}
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return nil
}

// Lines returns a copy of the staged lines in staging order.
func (c *Composer) Lines() []StagedLine {
	out := make([]StagedLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total is the sum of staged subtotals.
func (c *Composer) Total() int64 {
	var total int64
	for _, line := range c.lines {
		total += line.Subtotal
	}
	return total
}

// Clear discards the session.
func (c *Composer) Clear() {
	c.lines = nil
}

// Commit re-validates every staged line against live stock, delegates
// to the ledger's CreateSale and clears the buffer. Stock is re-read
// here, not trusted from stage time: another operation may have moved
// it since. On any failure the buffer is left untouched so the
// operator can adjust and retry.
func (c *Composer) Commit(ctx context.Context, ledger Ledger) (int64, error) {
	if len(c.lines) == 0 {
		return 0, domain.ErrEmptySale
	}

	inputs := make([]domain.SaleLineInput, 0, len(c.lines))
	for _, line := range c.lines {
		product, err := ledger.GetProductByID(ctx, line.ProductID)
		if err != nil {
			return 0, err
		}
		if line.Quantity > product.Quantity {
			return 0, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.Quantity,
			}
		}
		inputs = append(inputs, domain.SaleLineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	saleID, err := ledger.CreateSale(ctx, inputs)
	if err != nil {
		return 0, err
	}
	c.lines = nil
	return saleID, nil
}

func subtotal(quantity float64, unitPrice int64) int64 {
	return int64(math.Round(quantity * float64(unitPrice)))
}
