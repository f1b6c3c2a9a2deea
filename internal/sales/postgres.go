package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over a pgx connection pool.
type PostgresStore struct {
	Pool *pgxpool.Pool
	Now  func() time.Time
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

func (s *PostgresStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Record runs the whole sale in one transaction: decrement each sold batch
// guarded by its remaining quantity, take the next daily receipt sequence,
// then insert the sale and its items.
func (s *PostgresStore) Record(ctx context.Context, sale Sale) (Sale, error) {
	if len(sale.Items) == 0 {
		return Sale{}, ErrEmptySale
	}
	now := s.now()

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Sale{}, fmt.Errorf("begin sale tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, item := range sale.Items {
		tag, err := tx.Exec(ctx, `
			UPDATE drug_batches
			SET quantity = quantity - $1
			WHERE id = $2 AND quantity >= $1`, item.Quantity, item.BatchID)
		if err != nil {
			return Sale{}, fmt.Errorf("decrement batch: %w", err)
		}
		if tag.RowsAffected() == 0 {
			var available int
			if err := tx.QueryRow(ctx, `SELECT quantity FROM drug_batches WHERE id = $1`, item.BatchID).Scan(&available); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					available = 0
				} else {
					return Sale{}, fmt.Errorf("load batch quantity: %w", err)
				}
			}
			return Sale{}, &StockConflictError{
				BatchID:   item.BatchID,
				DrugName:  item.DrugName,
				Requested: item.Quantity,
				Available: available,
			}
		}
	}

	var seq int
	if err := tx.QueryRow(ctx, `
		INSERT INTO receipt_counters (day, counter) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET counter = receipt_counters.counter + 1
		RETURNING counter`, now.Format("2006-01-02")).Scan(&seq); err != nil {
		return Sale{}, fmt.Errorf("next receipt number: %w", err)
	}

	sale.ID = uuid.New()
	sale.ReceiptNumber = ReceiptNumber(now, seq)
	sale.CreatedAt = now

	if _, err := tx.Exec(ctx, `
		INSERT INTO sales (id, receipt_number, subtotal, discount, discount_reason, tax, total,
		                   payment_method, amount_tendered, change, customer_name, customer_phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		sale.ID, sale.ReceiptNumber, sale.Subtotal, sale.Discount, sale.DiscountReason,
		sale.Tax, sale.Total, sale.PaymentMethod, sale.AmountTendered, sale.Change,
		sale.CustomerName, sale.CustomerPhone, sale.CreatedAt); err != nil {
		return Sale{}, fmt.Errorf("insert sale: %w", err)
	}

	for i := range sale.Items {
		sale.Items[i].ID = uuid.New()
		sale.Items[i].SaleID = sale.ID
		item := sale.Items[i]
		if _, err := tx.Exec(ctx, `
			INSERT INTO sale_items (id, sale_id, batch_id, drug_id, drug_name, dosage,
			                        batch_number, unit_price, quantity, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			item.ID, item.SaleID, item.BatchID, item.DrugID, item.DrugName, item.Dosage,
			item.BatchNumber, item.UnitPrice, item.Quantity, item.LineTotal); err != nil {
			return Sale{}, fmt.Errorf("insert sale item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Sale{}, fmt.Errorf("commit sale: %w", err)
	}
	return sale, nil
}

// List returns sales in reverse chronological order.
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]Sale, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, receipt_number, subtotal, discount, COALESCE(discount_reason, ''), tax, total,
		       payment_method, amount_tendered, change, COALESCE(customer_name, ''), COALESCE(customer_phone, ''), created_at
		FROM sales
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var out []Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := s.listItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

// GetByID loads one sale with its items.
func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (Sale, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, receipt_number, subtotal, discount, COALESCE(discount_reason, ''), tax, total,
		       payment_method, amount_tendered, change, COALESCE(customer_name, ''), COALESCE(customer_phone, ''), created_at
		FROM sales WHERE id = $1`, id)
	sale, err := scanSale(row)
	if err != nil {
		return Sale{}, err
	}
	sale.Items, err = s.listItems(ctx, sale.ID)
	if err != nil {
		return Sale{}, err
	}
	return sale, nil
}

func (s *PostgresStore) listItems(ctx context.Context, saleID uuid.UUID) ([]SaleItem, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, sale_id, batch_id, drug_id, drug_name, COALESCE(dosage, ''),
		       batch_number, unit_price, quantity, line_total
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY drug_name`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	var out []SaleItem
	for rows.Next() {
		var it SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.BatchID, &it.DrugID, &it.DrugName, &it.Dosage,
			&it.BatchNumber, &it.UnitPrice, &it.Quantity, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func scanSale(row pgx.Row) (Sale, error) {
	var sale Sale
	err := row.Scan(&sale.ID, &sale.ReceiptNumber, &sale.Subtotal, &sale.Discount, &sale.DiscountReason,
		&sale.Tax, &sale.Total, &sale.PaymentMethod, &sale.AmountTendered, &sale.Change,
		&sale.CustomerName, &sale.CustomerPhone, &sale.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, ErrSaleNotFound
		}
		return Sale{}, fmt.Errorf("scan sale: %w", err)
	}
	return sale, nil
}
