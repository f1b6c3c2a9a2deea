package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and local development.
type MemoryStore struct {
	mu         sync.RWMutex
	categories []Category
	drugs      []Drug
	batches    []Batch
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AddCategory registers a category.
func (m *MemoryStore) AddCategory(c Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = append(m.categories, c)
}

// AddDrug registers a drug.
func (m *MemoryStore) AddDrug(d Drug) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drugs = append(m.drugs, d)
}

// AddBatch registers a batch. Insertion order is preserved, mirroring the
// created_at ordering of the Postgres store.
func (m *MemoryStore) AddBatch(b Batch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, b)
}

// SetBatchQuantity mutates a batch's remaining quantity.
func (m *MemoryStore) SetBatchQuantity(id uuid.UUID, qty int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.batches {
		if m.batches[i].ID == id {
			m.batches[i].Quantity = qty
			return
		}
	}
}

func (m *MemoryStore) ListCategories(_ context.Context) ([]Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]Category(nil), m.categories...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) SearchDrugs(_ context.Context, query string, limit int) ([]Drug, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	query = strings.ToLower(query)
	var out []Drug
	for _, d := range m.drugs {
		if strings.Contains(strings.ToLower(d.Name), query) ||
			strings.Contains(strings.ToLower(d.GenericName), query) ||
			strings.Contains(strings.ToLower(d.Brand), query) ||
			strings.HasPrefix(d.Barcode, query) {
			out = append(out, d)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) GetDrugByID(_ context.Context, id uuid.UUID) (Drug, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drugs {
		if d.ID == id {
			return d, nil
		}
	}
	return Drug{}, ErrNotFound
}

func (m *MemoryStore) GetDrugByBarcode(_ context.Context, code string) (Drug, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drugs {
		if d.Barcode != "" && d.Barcode == code {
			return d, nil
		}
	}
	return Drug{}, ErrNotFound
}

func (m *MemoryStore) ListBatchesForDrug(_ context.Context, drugID uuid.UUID) ([]Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Batch
	for _, b := range m.batches {
		if b.DrugID == drugID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListBatchesWithStock(ctx context.Context, limit int) ([]BatchWithDrug, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []BatchWithDrug
	for _, b := range m.batches {
		if b.Quantity <= 0 {
			continue
		}
		out = append(out, m.withDrug(b))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) ListLowStockBatches(_ context.Context, threshold int) ([]BatchWithDrug, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []BatchWithDrug
	for _, b := range m.batches {
		if b.Quantity <= threshold {
			out = append(out, m.withDrug(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}

func (m *MemoryStore) ListExpiringBatches(_ context.Context, before time.Time) ([]BatchWithDrug, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []BatchWithDrug
	for _, b := range m.batches {
		if b.Quantity > 0 && b.ExpiryDate.Before(before) {
			out = append(out, m.withDrug(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return out, nil
}

func (m *MemoryStore) withDrug(b Batch) BatchWithDrug {
	joined := BatchWithDrug{Batch: b}
	for _, d := range m.drugs {
		if d.ID == b.DrugID {
			joined.DrugName = d.Name
			joined.DrugDosage = d.Dosage
			break
		}
	}
	return joined
}
