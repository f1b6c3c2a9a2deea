package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T) (*MemoryStore, Drug, Batch, Batch) {
	t.Helper()
	store := NewMemoryStore()

	drug := Drug{
		ID:          uuid.New(),
		Name:        "Paracetamol",
		GenericName: "Acetaminophen",
		Brand:       "Panadol",
		Dosage:      "500mg",
		Form:        "tablet",
		Barcode:     "6001234567890",
	}
	store.AddDrug(drug)

	empty := Batch{
		ID:           uuid.New(),
		DrugID:       drug.ID,
		BatchNumber:  "B-001",
		Quantity:     0,
		SellingPrice: decimal.RequireFromString("12.50"),
		ExpiryDate:   time.Now().AddDate(0, 6, 0),
	}
	stocked := Batch{
		ID:           uuid.New(),
		DrugID:       drug.ID,
		BatchNumber:  "B-002",
		Quantity:     40,
		SellingPrice: decimal.RequireFromString("13.00"),
		ExpiryDate:   time.Now().AddDate(1, 0, 0),
	}
	store.AddBatch(empty)
	store.AddBatch(stocked)
	return store, drug, empty, stocked
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{Store: store})
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresStore(t *testing.T) {
	_, err := NewService(ServiceConfig{})
	require.Error(t, err)
}

func TestFirstAvailableBatchSkipsEmpty(t *testing.T) {
	store, drug, _, stocked := seedStore(t)
	svc := newTestService(t, store)

	got, err := svc.FirstAvailableBatch(context.Background(), drug.ID)
	require.NoError(t, err)
	require.Equal(t, stocked.ID, got.ID)
}

func TestFirstAvailableBatchPrefersInsertionOrder(t *testing.T) {
	store, drug, empty, _ := seedStore(t)
	svc := newTestService(t, store)

	// Restock the older batch; it should win over the later one.
	store.SetBatchQuantity(empty.ID, 5)

	got, err := svc.FirstAvailableBatch(context.Background(), drug.ID)
	require.NoError(t, err)
	require.Equal(t, empty.ID, got.ID)
}

func TestFirstAvailableBatchNoStock(t *testing.T) {
	store, drug, _, stocked := seedStore(t)
	svc := newTestService(t, store)

	store.SetBatchQuantity(stocked.ID, 0)

	_, err := svc.FirstAvailableBatch(context.Background(), drug.ID)
	require.ErrorIs(t, err, ErrNoStock)
}

func TestSearchDrugsBlankQuery(t *testing.T) {
	store, _, _, _ := seedStore(t)
	svc := newTestService(t, store)

	drugs, err := svc.SearchDrugs(context.Background(), "   ")
	require.NoError(t, err)
	require.Empty(t, drugs)
}

func TestSearchDrugsMatchesGenericName(t *testing.T) {
	store, drug, _, _ := seedStore(t)
	svc := newTestService(t, store)

	drugs, err := svc.SearchDrugs(context.Background(), "acetamin")
	require.NoError(t, err)
	require.Len(t, drugs, 1)
	require.Equal(t, drug.ID, drugs[0].ID)
}

func TestLookupBarcode(t *testing.T) {
	store, drug, _, _ := seedStore(t)
	svc := newTestService(t, store)

	got, err := svc.LookupBarcode(context.Background(), drug.Barcode)
	require.NoError(t, err)
	require.Equal(t, drug.ID, got.ID)

	_, err = svc.LookupBarcode(context.Background(), "0000000000000")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.LookupBarcode(context.Background(), "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListCategoriesUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewMemoryStore()
	store.AddCategory(Category{ID: uuid.New(), Name: "Analgesics"})

	svc, err := NewService(ServiceConfig{Store: store, Cache: NewCache(client, time.Minute)})
	require.NoError(t, err)

	first, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A category added after the cache warms is not visible until expiry.
	store.AddCategory(Category{ID: uuid.New(), Name: "Antibiotics"})

	second, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)

	mr.FastForward(2 * time.Minute)

	third, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, third, 2)
}

func TestPopularBatchesOnlyStocked(t *testing.T) {
	store, _, _, stocked := seedStore(t)
	svc := newTestService(t, store)

	batches, err := svc.PopularBatches(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Equal(t, stocked.ID, batches[0].ID)
	require.Equal(t, "Paracetamol", batches[0].DrugName)
}
