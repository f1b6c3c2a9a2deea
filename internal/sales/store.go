package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrSaleNotFound indicates the requested sale does not exist.
var ErrSaleNotFound = errors.New("sale not found")

// ErrEmptySale is returned when a sale with no items is submitted.
var ErrEmptySale = errors.New("sale has no items")

// StockConflictError reports a line whose batch no longer carries enough
// stock at submission time.
type StockConflictError struct {
	BatchID   uuid.UUID
	DrugName  string
	Requested int
	Available int
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.DrugName, e.Requested, e.Available)
}

// Store persists completed sales and adjusts inventory atomically.
type Store interface {
	// Record revalidates stock, decrements the sold batches, assigns a
	// receipt number, and persists the sale. The whole operation either
	// commits or leaves inventory untouched.
	Record(ctx context.Context, sale Sale) (Sale, error)
	List(ctx context.Context, limit, offset int) ([]Sale, error)
	GetByID(ctx context.Context, id uuid.UUID) (Sale, error)
}

// ReceiptNumber renders the daily-sequenced receipt identifier, e.g.
// RX-20250301-0042.
func ReceiptNumber(day time.Time, seq int) string {
	return fmt.Sprintf("RX-%s-%04d", day.Format("20060102"), seq)
}
