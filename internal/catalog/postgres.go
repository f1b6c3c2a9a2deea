package catalog

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
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

// ListCategories returns all categories ordered by name.
func (s *PostgresStore) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, COALESCE(description, '')
		FROM categories
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SearchDrugs matches drugs by name, generic name, brand, or barcode prefix.
func (s *PostgresStore) SearchDrugs(ctx context.Context, query string, limit int) ([]Drug, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, COALESCE(generic_name, ''), COALESCE(brand, ''),
		       COALESCE(dosage, ''), COALESCE(form, ''), COALESCE(barcode, ''), category_id
		FROM drugs
		WHERE name ILIKE '%' || $1 || '%'
		   OR generic_name ILIKE '%' || $1 || '%'
		   OR brand ILIKE '%' || $1 || '%'
		   OR barcode LIKE $1 || '%'
		ORDER BY name
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search drugs: %w", err)
	}
	defer rows.Close()
	return scanDrugs(rows)
}

// GetDrugByID loads a single drug.
func (s *PostgresStore) GetDrugByID(ctx context.Context, id uuid.UUID) (Drug, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(generic_name, ''), COALESCE(brand, ''),
		       COALESCE(dosage, ''), COALESCE(form, ''), COALESCE(barcode, ''), category_id
		FROM drugs WHERE id = $1`, id)
	return scanDrug(row)
}

// GetDrugByBarcode resolves a drug from a scanned barcode.
func (s *PostgresStore) GetDrugByBarcode(ctx context.Context, code string) (Drug, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(generic_name, ''), COALESCE(brand, ''),
		       COALESCE(dosage, ''), COALESCE(form, ''), COALESCE(barcode, ''), category_id
		FROM drugs WHERE barcode = $1`, code)
	return scanDrug(row)
}

// ListBatchesForDrug returns the drug's batches in insertion order. The
// register picks the first one with stock, not the soonest expiry.
func (s *PostgresStore) ListBatchesForDrug(ctx context.Context, drugID uuid.UUID) ([]Batch, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, drug_id, batch_number, quantity, cost_price, selling_price, expiry_date
		FROM drug_batches
		WHERE drug_id = $1
		ORDER BY created_at`, drugID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.DrugID, &b.BatchNumber, &b.Quantity, &b.CostPrice, &b.SellingPrice, &b.ExpiryDate); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListBatchesWithStock returns stocked batches joined with drug metadata.
func (s *PostgresStore) ListBatchesWithStock(ctx context.Context, limit int) ([]BatchWithDrug, error) {
	if limit <= 0 {
		limit = 8
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT b.id, b.drug_id, b.batch_number, b.quantity, b.cost_price, b.selling_price, b.expiry_date,
		       d.name, COALESCE(d.dosage, '')
		FROM drug_batches b
		JOIN drugs d ON d.id = b.drug_id
		WHERE b.quantity > 0
		ORDER BY b.created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list stocked batches: %w", err)
	}
	defer rows.Close()
	return scanBatchesWithDrug(rows)
}

// ListLowStockBatches returns batches at or below the threshold.
func (s *PostgresStore) ListLowStockBatches(ctx context.Context, threshold int) ([]BatchWithDrug, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT b.id, b.drug_id, b.batch_number, b.quantity, b.cost_price, b.selling_price, b.expiry_date,
		       d.name, COALESCE(d.dosage, '')
		FROM drug_batches b
		JOIN drugs d ON d.id = b.drug_id
		WHERE b.quantity <= $1
		ORDER BY b.quantity`, threshold)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	return scanBatchesWithDrug(rows)
}

// ListExpiringBatches returns stocked batches expiring before the cutoff.
func (s *PostgresStore) ListExpiringBatches(ctx context.Context, before time.Time) ([]BatchWithDrug, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT b.id, b.drug_id, b.batch_number, b.quantity, b.cost_price, b.selling_price, b.expiry_date,
		       d.name, COALESCE(d.dosage, '')
		FROM drug_batches b
		JOIN drugs d ON d.id = b.drug_id
		WHERE b.quantity > 0 AND b.expiry_date < $1
		ORDER BY b.expiry_date`, before)
	if err != nil {
		return nil, fmt.Errorf("list expiring: %w", err)
	}
	defer rows.Close()
	return scanBatchesWithDrug(rows)
}

func scanDrug(row pgx.Row) (Drug, error) {
	var d Drug
	err := row.Scan(&d.ID, &d.Name, &d.GenericName, &d.Brand, &d.Dosage, &d.Form, &d.Barcode, &d.CategoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Drug{}, ErrNotFound
		}
		return Drug{}, fmt.Errorf("scan drug: %w", err)
	}
	return d, nil
}

func scanDrugs(rows pgx.Rows) ([]Drug, error) {
	var out []Drug
	for rows.Next() {
		var d Drug
		if err := rows.Scan(&d.ID, &d.Name, &d.GenericName, &d.Brand, &d.Dosage, &d.Form, &d.Barcode, &d.CategoryID); err != nil {
			return nil, fmt.Errorf("scan drug: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanBatchesWithDrug(rows pgx.Rows) ([]BatchWithDrug, error) {
	var out []BatchWithDrug
	for rows.Next() {
		var b BatchWithDrug
		if err := rows.Scan(&b.ID, &b.DrugID, &b.BatchNumber, &b.Quantity, &b.CostPrice, &b.SellingPrice, &b.ExpiryDate, &b.DrugName, &b.DrugDosage); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
