package service

import (
	"context"
	"time"

	"minimarket/internal/domain"
)

// Store is the ledger contract the presentation layer programs
// against. repository.Repository is the production implementation;
// tests substitute fakes.
type Store interface {
	CreateProduct(ctx context.Context, input domain.ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	GetProductByCode(ctx context.Context, code string) (*domain.Product, error)
	ListProducts(ctx context.Context, search string) ([]domain.Product, error)

	CreateSale(ctx context.Context, lines []domain.SaleLineInput) (int64, error)
	UpdateSaleLines(ctx context.Context, saleID int64, lines []domain.SaleLineInput) error
	DeleteSale(ctx context.Context, saleID int64) error
	ListSales(ctx context.Context, from, to *time.Time) ([]domain.Sale, error)
	GetSaleLines(ctx context.Context, saleID int64) ([]domain.SaleLine, error)
	SalesTotalBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// Service is the thin facade between the HTTP layer and the store.
type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListProducts(ctx context.Context, search string) ([]domain.Product, error) {
	return s.store.ListProducts(ctx, search)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.store.GetProductByID(ctx, id)
}

func (s *Service) GetProductByCode(ctx context.Context, code string) (*domain.Product, error) {
	return s.store.GetProductByCode(ctx, code)
}

func (s *Service) CreateProduct(ctx context.Context, input domain.ProductInput) (domain.Product, error) {
	return s.store.CreateProduct(ctx, input)
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error) {
	return s.store.UpdateProduct(ctx, id, input)
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.store.DeleteProduct(ctx, id)
}

func (s *Service) CreateSale(ctx context.Context, lines []domain.SaleLineInput) (int64, error) {
	return s.store.CreateSale(ctx, lines)
}

func (s *Service) UpdateSaleLines(ctx context.Context, saleID int64, lines []domain.SaleLineInput) error {
	return s.store.UpdateSaleLines(ctx, saleID, lines)
}

func (s *Service) DeleteSale(ctx context.Context, saleID int64) error {
	return s.store.DeleteSale(ctx, saleID)
}

func (s *Service) ListSales(ctx context.Context, from, to *time.Time) ([]domain.Sale, error) {
	return s.store.ListSales(ctx, from, to)
}

func (s *Service) GetSaleLines(ctx context.Context, saleID int64) ([]domain.SaleLine, error) {
	return s.store.GetSaleLines(ctx, saleID)
}

func (s *Service) SalesTotalBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return s.store.SalesTotalBetween(ctx, from, to)
}

// Store exposes the underlying ledger for collaborators that need the
// narrower composer interface.
func (s *Service) Store() Store {
	return s.store
}
