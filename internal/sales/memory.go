package sales

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and local development.
// Stock revalidation is delegated to CheckStock when set; RecordErr forces
// every Record call to fail.
type MemoryStore struct {
	mu         sync.Mutex
	sales      []Sale
	seqByDay   map[string]int
	Now        func() time.Time
	RecordErr  error
	CheckStock func(item SaleItem) error
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seqByDay: map[string]int{}}
}

func (m *MemoryStore) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *MemoryStore) Record(_ context.Context, sale Sale) (Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecordErr != nil {
		return Sale{}, m.RecordErr
	}
	if len(sale.Items) == 0 {
		return Sale{}, ErrEmptySale
	}
	if m.CheckStock != nil {
		for _, it := range sale.Items {
			if err := m.CheckStock(it); err != nil {
				return Sale{}, err
			}
		}
	}
	now := m.now()
	day := now.Format("2006-01-02")
	m.seqByDay[day]++

	sale.ID = uuid.New()
	sale.ReceiptNumber = ReceiptNumber(now, m.seqByDay[day])
	sale.CreatedAt = now
	for i := range sale.Items {
		sale.Items[i].ID = uuid.New()
		sale.Items[i].SaleID = sale.ID
	}
	m.sales = append(m.sales, sale)
	return sale, nil
}

func (m *MemoryStore) List(_ context.Context, limit, offset int) ([]Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	// Newest first.
	var out []Sale
	for i := len(m.sales) - 1; i >= 0; i-- {
		out = append(out, m.sales[i])
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sales {
		if s.ID == id {
			return s, nil
		}
	}
	return Sale{}, ErrSaleNotFound
}
