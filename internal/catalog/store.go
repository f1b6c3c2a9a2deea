package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates the requested catalog record could not be located.
var ErrNotFound = errors.New("catalog: not found")

// Store is the persistence contract for the drug catalog. The cart and sales
// layers only ever read from it.
type Store interface {
	ListCategories(ctx context.Context) ([]Category, error)
	SearchDrugs(ctx context.Context, query string, limit int) ([]Drug, error)
	GetDrugByID(ctx context.Context, id uuid.UUID) (Drug, error)
	GetDrugByBarcode(ctx context.Context, code string) (Drug, error)
	ListBatchesForDrug(ctx context.Context, drugID uuid.UUID) ([]Batch, error)
	ListBatchesWithStock(ctx context.Context, limit int) ([]BatchWithDrug, error)
	ListLowStockBatches(ctx context.Context, threshold int) ([]BatchWithDrug, error)
	ListExpiringBatches(ctx context.Context, before time.Time) ([]BatchWithDrug, error)
}
