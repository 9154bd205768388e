package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"minimarket/internal/domain"

	"github.com/jackc/pgx/v5"
)

// CreateSale persists a sale header, its lines and the matching stock
// decrements as one transaction. Line subtotals and the total are
// recomputed here; product names are snapshotted at write time. Stock
// sufficiency is NOT checked: the caller (normally the composer) is
// responsible for it, and stock may go negative.
func (r *Repository) CreateSale(ctx context.Context, lines []domain.SaleLineInput) (int64, error) {
	records, err := validateSaleLines(lines)
	if err != nil {
		return 0, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin create sale tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var saleID int64
	if err := tx.QueryRow(ctx,
		"INSERT INTO sales (total) VALUES ($1) RETURNING id",
		recordsTotal(records),
	).Scan(&saleID); err != nil {
		return 0, fmt.Errorf("insert sale header: %w", err)
	}

	if err := applySaleLinesTx(ctx, tx, saleID, records); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit create sale tx: %w", err)
	}
	return saleID, nil
}

// UpdateSaleLines replaces a sale's full line set. Inside one
// transaction it first reverses the stock impact of every current
// line, then applies the new lines exactly as CreateSale would, then
// overwrites the total. Reverting before applying means a product
// present in both the old and new sets nets out instead of being
// decremented twice. The sale's timestamp is untouched.
func (r *Repository) UpdateSaleLines(ctx context.Context, saleID int64, lines []domain.SaleLineInput) error {
	records, err := validateSaleLines(lines)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update sale tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockSaleTx(ctx, tx, saleID); err != nil {
		return err
	}
	if err := revertSaleLinesTx(ctx, tx, saleID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM sale_lines WHERE sale_id = $1", saleID); err != nil {
		return fmt.Errorf("clear sale lines %d: %w", saleID, err)
	}
	if err := applySaleLinesTx(ctx, tx, saleID, records); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		"UPDATE sales SET total = $2 WHERE id = $1",
		saleID, recordsTotal(records),
	); err != nil {
		return fmt.Errorf("update sale total %d: %w", saleID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update sale tx: %w", err)
	}
	return nil
}

// DeleteSale returns every line's quantity to stock, then removes the
// lines and the header, as one transaction.
func (r *Repository) DeleteSale(ctx context.Context, saleID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete sale tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockSaleTx(ctx, tx, saleID); err != nil {
		return err
	}
	if err := revertSaleLinesTx(ctx, tx, saleID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM sale_lines WHERE sale_id = $1", saleID); err != nil {
		return fmt.Errorf("delete sale lines %d: %w", saleID, err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM sales WHERE id = $1", saleID); err != nil {
		return fmt.Errorf("delete sale %d: %w", saleID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete sale tx: %w", err)
	}
	return nil
}

// ListSales returns sales newest first, optionally bounded by an
// inclusive [from, to] range over the creation timestamp. Callers
// resolve coarse date filters to concrete boundaries before calling.
func (r *Repository) ListSales(ctx context.Context, from, to *time.Time) ([]domain.Sale, error) {
	query := "SELECT id, created_at, total FROM sales"
	conditions := make([]string, 0, 2)
	args := make([]any, 0, 2)
	if from != nil {
		args = append(args, *from)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	for i, condition := range conditions {
		if i == 0 {
			query += " WHERE " + condition
		} else {
			query += " AND " + condition
		}
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0)
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(&sale.ID, &sale.CreatedAt, &sale.Total); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	return sales, nil
}

// GetSaleLines returns a sale's lines in insertion order, with the
// persisted snapshots.
func (r *Repository) GetSaleLines(ctx context.Context, saleID int64) ([]domain.SaleLine, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM sales WHERE id = $1)", saleID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check sale %d: %w", saleID, err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price, subtotal
		FROM sale_lines
		WHERE sale_id = $1
		ORDER BY id ASC
	`, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale lines %d: %w", saleID, err)
	}
	defer rows.Close()

	lines := make([]domain.SaleLine, 0)
	for rows.Next() {
		var line domain.SaleLine
		if err := rows.Scan(
			&line.ID,
			&line.SaleID,
			&line.ProductID,
			&line.ProductName,
			&line.Quantity,
			&line.UnitPrice,
			&line.Subtotal,
		); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale lines %d: %w", saleID, err)
	}
	return lines, nil
}

// SalesTotalBetween sums sale totals over an inclusive range.
func (r *Repository) SalesTotalBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0)
		FROM sales
		WHERE created_at >= $1 AND created_at <= $2
	`, from, to).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum sales between: %w", err)
	}
	return total, nil
}

// lockSaleTx takes the row lock that serializes concurrent edits or
// deletes of the same sale.
func lockSaleTx(ctx context.Context, tx pgx.Tx, saleID int64) error {
	var id int64
	err := tx.QueryRow(ctx,
		"SELECT id FROM sales WHERE id = $1 FOR UPDATE", saleID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock sale %d: %w", saleID, err)
	}
	return nil
}

// applySaleLinesTx inserts the validated lines and decrements stock.
// The product name is re-read per line so the snapshot reflects the
// name at write time; a dangling product id gets the placeholder and
// its stock update touches zero rows, which is not an error.
func applySaleLinesTx(ctx context.Context, tx pgx.Tx, saleID int64, records []saleLineRecord) error {
	for _, record := range records {
		productName := domain.DeletedProductName
		err := tx.QueryRow(ctx,
			"SELECT name FROM products WHERE id = $1", record.ProductID,
		).Scan(&productName)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("resolve product %d: %w", record.ProductID, err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO sale_lines (
				sale_id,
				product_id,
				product_name,
				quantity,
				unit_price,
				subtotal
			) VALUES ($1, $2, $3, $4, $5, $6)
		`, saleID, record.ProductID, productName, record.Quantity, record.UnitPrice, record.Subtotal); err != nil {
			return fmt.Errorf("insert sale line for sale %d: %w", saleID, err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE products
			SET quantity = quantity - $2, updated_at = NOW()
			WHERE id = $1
		`, record.ProductID, record.Quantity); err != nil {
			return fmt.Errorf("decrement stock for product %d: %w", record.ProductID, err)
		}
	}
	return nil
}

// revertSaleLinesTx returns each current line's quantity to its
// product's stock. Lines whose product was deleted affect zero rows.
func revertSaleLinesTx(ctx context.Context, tx pgx.Tx, saleID int64) error {
	rows, err := tx.Query(ctx,
		"SELECT product_id, quantity FROM sale_lines WHERE sale_id = $1", saleID)
	if err != nil {
		return fmt.Errorf("load sale lines %d for revert: %w", saleID, err)
	}

	type lineImpact struct {
		productID int64
		quantity  float64
	}
	impacts := make([]lineImpact, 0)
	for rows.Next() {
		var impact lineImpact
		if err := rows.Scan(&impact.productID, &impact.quantity); err != nil {
			rows.Close()
			return fmt.Errorf("scan sale line for revert: %w", err)
		}
		impacts = append(impacts, impact)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate sale lines %d for revert: %w", saleID, err)
	}
	rows.Close()

	for _, impact := range impacts {
		if _, err := tx.Exec(ctx, `
			UPDATE products
			SET quantity = quantity + $2, updated_at = NOW()
			WHERE id = $1
		`, impact.productID, impact.quantity); err != nil {
			return fmt.Errorf("restore stock for product %d: %w", impact.productID, err)
		}
	}
	return nil
}
