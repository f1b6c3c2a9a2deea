package alerts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dawadesk/backend-pharmacy/internal/catalog"
)

func seedInventory(t *testing.T, now time.Time) *catalog.MemoryStore {
	t.Helper()
	store := catalog.NewMemoryStore()

	drug := catalog.Drug{ID: uuid.New(), Name: "Insulin", Dosage: "100IU"}
	store.AddDrug(drug)

	// Plenty of stock, far expiry: should not be flagged.
	store.AddBatch(catalog.Batch{
		ID: uuid.New(), DrugID: drug.ID, BatchNumber: "B-OK",
		Quantity: 100, SellingPrice: decimal.NewFromInt(500),
		ExpiryDate: now.AddDate(2, 0, 0),
	})
	// Low stock.
	store.AddBatch(catalog.Batch{
		ID: uuid.New(), DrugID: drug.ID, BatchNumber: "B-LOW",
		Quantity: 3, SellingPrice: decimal.NewFromInt(500),
		ExpiryDate: now.AddDate(1, 0, 0),
	})
	// Expiring within the window.
	store.AddBatch(catalog.Batch{
		ID: uuid.New(), DrugID: drug.ID, BatchNumber: "B-EXP",
		Quantity: 50, SellingPrice: decimal.NewFromInt(500),
		ExpiryDate: now.Add(7 * 24 * time.Hour),
	})
	return store
}

func TestScanFlagsLowStockAndExpiring(t *testing.T) {
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	svc := &Service{
		Store:             seedInventory(t, now),
		LowStockThreshold: 10,
		ExpiryWindow:      30 * 24 * time.Hour,
		Now:               func() time.Time { return now },
	}

	report, err := svc.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, report.LowStock, 1)
	require.Equal(t, "B-LOW", report.LowStock[0].BatchNumber)
	require.Len(t, report.Expiring, 1)
	require.Equal(t, "B-EXP", report.Expiring[0].BatchNumber)
	require.Equal(t, now, report.ScannedAt)
}

func TestScanEmptyInventory(t *testing.T) {
	svc := &Service{Store: catalog.NewMemoryStore()}
	report, err := svc.Scan(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.LowStock)
	require.Empty(t, report.Expiring)
}

func TestScanHandler(t *testing.T) {
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	h := &Handler{Svc: &Service{
		Store:             seedInventory(t, now),
		LowStockThreshold: 10,
		ExpiryWindow:      30 * 24 * time.Hour,
		Now:               func() time.Time { return now },
	}}

	rec := httptest.NewRecorder()
	h.Scan(rec, httptest.NewRequest(http.MethodGet, "/alerts", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.LowStock, 1)
	require.Len(t, body.Data.Expiring, 1)
}
