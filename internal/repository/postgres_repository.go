package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"minimarket/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the sole authority over durable product and sale
// state. Every mutation that touches both sale lines and product stock
// runs inside a single transaction.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `
	id,
	name,
	code,
	purchase_price,
	sale_price,
	quantity,
	created_at,
	updated_at
`

func validateProductInput(input domain.ProductInput) (domain.ProductInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return input, &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	if input.PurchasePrice < 0 {
		return input, &domain.ValidationError{Field: "purchase_price", Reason: "cannot be negative"}
	}
	if input.SalePrice < 0 {
		return input, &domain.ValidationError{Field: "sale_price", Reason: "cannot be negative"}
	}
	if input.Quantity < 0 {
		return input, &domain.ValidationError{Field: "quantity", Reason: "cannot be negative"}
	}
	if input.Code != nil {
		code := strings.TrimSpace(*input.Code)
		if code == "" {
			input.Code = nil
		} else {
			input.Code = &code
		}
	}
	return input, nil
}

func (r *Repository) CreateProduct(ctx context.Context, input domain.ProductInput) (domain.Product, error) {
	input, err := validateProductInput(input)
	if err != nil {
		return domain.Product{}, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, code, purchase_price, sale_price, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING`+productColumns,
		input.Name, input.Code, input.PurchasePrice, input.SalePrice, input.Quantity,
	)
	product, err := scanProductRow(row)
	if err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error) {
	input, err := validateProductInput(input)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET
			name = $2,
			code = $3,
			purchase_price = $4,
			sale_price = $5,
			quantity = $6,
			updated_at = NOW()
		WHERE id = $1
		RETURNING`+productColumns,
		id, input.Name, input.Code, input.PurchasePrice, input.SalePrice, input.Quantity,
	)
	product, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return &product, nil
}

// DeleteProduct removes only the product row. Historical sale lines
// keep their snapshots and their now-dangling product id.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT"+productColumns+"FROM products WHERE id = $1", id)
	product, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &product, nil
}

// GetProductByCode looks up a product by exact code. Codes are not
// unique; ties resolve to the oldest row.
func (r *Repository) GetProductByCode(ctx context.Context, code string) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT"+productColumns+"FROM products WHERE code = $1 ORDER BY id ASC LIMIT 1",
		code,
	)
	product, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product by code %q: %w", code, err)
	}
	return &product, nil
}

// ListProducts returns products ordered by name. A non-blank search is
// a case-insensitive substring match over name or code.
func (r *Repository) ListProducts(ctx context.Context, search string) ([]domain.Product, error) {
	search = strings.TrimSpace(search)
	rows, err := r.pool.Query(ctx, `
		SELECT`+productColumns+`
		FROM products
		WHERE (
			$1 = ''
			OR name ILIKE '%' || $1 || '%'
			OR code ILIKE '%' || $1 || '%'
		)
		ORDER BY name ASC
	`, search)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProductRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func scanProductRow(row pgx.Row) (domain.Product, error) {
	var (
		product domain.Product
		code    sql.NullString
	)
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&code,
		&product.PurchasePrice,
		&product.SalePrice,
		&product.Quantity,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return domain.Product{}, err
	}
	if code.Valid {
		value := code.String
		product.Code = &value
	}
	return product, nil
}
