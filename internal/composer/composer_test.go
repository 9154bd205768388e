package composer_test

import (
	"context"
	"errors"
	"testing"

	"minimarket/internal/composer"
	"minimarket/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedger serves commit-time product re-reads from a map and
// records the line set handed to CreateSale.
type fakeLedger struct {
	products    map[int64]domain.Product
	createdWith []domain.SaleLineInput
	nextSaleID  int64
	createErr   error
}

func (f *fakeLedger) GetProductByID(_ context.Context, id int64) (*domain.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &product, nil
}

func (f *fakeLedger) CreateSale(_ context.Context, lines []domain.SaleLineInput) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.createdWith = lines
	return f.nextSaleID, nil
}

func bread() domain.Product {
	return domain.Product{ID: 1, Name: "Pan", SalePrice: 500, Quantity: 10}
}

func milk() domain.Product {
	return domain.Product{ID: 2, Name: "Leche", SalePrice: 1200, Quantity: 4}
}

func TestAddLineStagesAtCurrentSalePrice(t *testing.T) {
	c := composer.New()
	require.NoError(t, c.AddLine(bread(), 3))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1), lines[0].ProductID)
	assert.Equal(t, "Pan", lines[0].Name)
	assert.Equal(t, int64(500), lines[0].UnitPrice)
	assert.Equal(t, 3.0, lines[0].Quantity)
	assert.Equal(t, int64(1500), lines[0].Subtotal)
	assert.Equal(t, int64(1500), c.Total())
}

func TestAddLineMergesQuantitiesForSameProduct(t *testing.T) {
	c := composer.New()
	require.NoError(t, c.AddLine(bread(), 3))
	require.NoError(t, c.AddLine(bread(), 2))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 5.0, lines[0].Quantity)
	assert.Equal(t, int64(2500), lines[0].Subtotal)
}

func TestAddLineRejectsMergeBeyondKnownStock(t *testing.T) {
	c := composer.New()
	require.NoError(t, c.AddLine(bread(), 8))

	err := c.AddLine(bread(), 3)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(1), stockErr.ProductID)
	assert.Equal(t, 11.0, stockErr.Requested)
	assert.Equal(t, 10.0, stockErr.Available)

	// Rejection leaves the buffer untouched.
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 8.0, lines[0].Quantity)
}

func TestAddLineRejectsNewLineBeyondKnownStock(t *testing.T) {
	c := composer.New()

	err := c.AddLine(bread(), 15)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 15.0, stockErr.Requested)
	assert.Equal(t, 10.0, stockErr.Available)
	assert.Empty(t, c.Lines())

	// Staging exactly the known stock is fine.
	require.NoError(t, c.AddLine(bread(), 10))
}

func TestAddLineRejectsQuantityBelowOne(t *testing.T) {
	c := composer.New()
	err := c.AddLine(bread(), 0)
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Empty(t, c.Lines())
}

func TestSetLineQuantityRecomputesSubtotal(t *testing.T) {
	c := composer.New()
	require.NoError(t, c.AddLine(bread(), 2))

	require.NoError(t, c.SetLineQuantity(0, 7))
	lines := c.Lines()
	assert.Equal(t, 7.0, lines[0].Quantity)
	assert.Equal(t, int64(3500), lines[0].Subtotal)

	// No upper bound at this layer even beyond known stock.
	require.NoError(t, c.SetLineQuantity(0, 50))
	assert.Equal(t, int64(25000), c.Total())
}

func TestSetLineQuantityValidatesIndexAndValue(t *testing.T) {
	c := composer.New()
	require.NoError(t, c.AddLine(bread(), 1))

	var validation *domain.ValidationError
	require.ErrorAs(t, c.SetLineQuantity(3, 1), &validation)
	require.ErrorAs(t, c.SetLineQuantity(0, 0), &validation)
	require.ErrorAs(t, c.SetLineQuantity(-1, 1), &validation)
}

func TestRemoveLine(t *testing.T) {
	c := composer.New()
	require.NoError(t, c.AddLine(bread(), 1))
	require.NoError(t, c.AddLine(milk(), 2))

	require.NoError(t, c.RemoveLine(0))
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].ProductID)

	var validation *domain.ValidationError
	require.ErrorAs(t, c.RemoveLine(5), &validation)
}

func TestTotalSumsAllStagedSubtotals(t *testing.T) {
	c := composer.New()
	require.NoError(t, c.AddLine(bread(), 3))  // 1500
	require.NoError(t, c.AddLine(milk(), 2))   // 2400
	assert.Equal(t, int64(3900), c.Total())
}

func TestCommitEmptyBufferFails(t *testing.T) {
	c := composer.New()
	ledger := &fakeLedger{products: map[int64]domain.Product{}}

	_, err := c.Commit(context.Background(), ledger)
	require.ErrorIs(t, err, domain.ErrEmptySale)
}

func TestCommitDelegatesAndClearsBuffer(t *testing.T) {
	c := composer.New()
	require.NoError(t, c.AddLine(bread(), 3))
	require.NoError(t, c.AddLine(milk(), 2))

	ledger := &fakeLedger{
		products:   map[int64]domain.Product{1: bread(), 2: milk()},
		nextSaleID: 42,
	}
	saleID, err := c.Commit(context.Background(), ledger)
	require.NoError(t, err)
	assert.Equal(t, int64(42), saleID)

	require.Len(t, ledger.createdWith, 2)
	assert.Equal(t, domain.SaleLineInput{ProductID: 1, Quantity: 3, UnitPrice: 500}, ledger.createdWith[0])
	assert.Equal(t, domain.SaleLineInput{ProductID: 2, Quantity: 2, UnitPrice: 1200}, ledger.createdWith[1])

	assert.Empty(t, c.Lines())
	assert.Zero(t, c.Total())
}

func TestCommitReChecksLiveStock(t *testing.T) {
	c := composer.New()
	require.NoError(t, c.AddLine(bread(), 8))

	// Stock moved between staging and commit: only 5 left now.
	depleted := bread()
	depleted.Quantity = 5
	ledger := &fakeLedger{products: map[int64]domain.Product{1: depleted}}

	_, err := c.Commit(context.Background(), ledger)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 8.0, stockErr.Requested)
	assert.Equal(t, 5.0, stockErr.Available)

	// Failed commit keeps the buffer so the operator can adjust.
	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 8.0, c.Lines()[0].Quantity)
}

func TestCommitFailsWhenStagedProductVanished(t *testing.T) {
	c := composer.New()
	require.NoError(t, c.AddLine(bread(), 1))

	ledger := &fakeLedger{products: map[int64]domain.Product{}}
	_, err := c.Commit(context.Background(), ledger)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Len(t, c.Lines(), 1)
}

func TestCommitKeepsBufferOnStoreFailure(t *testing.T) {
	c := composer.New()
	require.NoError(t, c.AddLine(bread(), 2))

	ledger := &fakeLedger{
		products:  map[int64]domain.Product{1: bread()},
		createErr: errors.New("storage failure"),
	}
	_, err := c.Commit(context.Background(), ledger)
	require.Error(t, err)
	require.Len(t, c.Lines(), 1)
}

func TestClearDiscardsSession(t *testing.T) {
	c := composer.New()
	require.NoError(t, c.AddLine(bread(), 2))
	c.Clear()
	assert.Empty(t, c.Lines())
	assert.Zero(t, c.Total())
}

func TestFractionalQuantityViaSetLineQuantity(t *testing.T) {
	scale := domain.Product{ID: 9, Name: "Manzanas", SalePrice: 990, Quantity: 20}
	c := composer.New()
	require.NoError(t, c.AddLine(scale, 1))
	require.NoError(t, c.SetLineQuantity(0, 2.5))

	lines := c.Lines()
	assert.Equal(t, 2.5, lines[0].Quantity)
	// 2.5 * 990 = 2475, exact in this case.
	assert.Equal(t, int64(2475), lines[0].Subtotal)
}
