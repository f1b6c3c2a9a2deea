package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNoStock indicates no batch of the drug has remaining quantity.
var ErrNoStock = errors.New("catalog: no batch with stock")

// Service orchestrates catalog reads, batch resolution, and caching.
type Service struct {
	store        Store
	cache        *Cache
	searchLimit  int
	popularLimit int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store        Store
	Cache        *Cache
	SearchLimit  int
	PopularLimit int
}

// NewService validates configuration and constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog store is required")
	}
	searchLimit := cfg.SearchLimit
	if searchLimit <= 0 {
		searchLimit = 20
	}
	popularLimit := cfg.PopularLimit
	if popularLimit <= 0 {
		popularLimit = 8
	}
	return &Service{
		store:        cfg.Store,
		cache:        cfg.Cache,
		searchLimit:  searchLimit,
		popularLimit: popularLimit,
	}, nil
}

// ListCategories returns all categories, served from cache when warm.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	const key = "catalog:categories"
	var cached []Category
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, key, categories)
	return categories, nil
}

// SearchDrugs matches drugs against the query string.
func (s *Service) SearchDrugs(ctx context.Context, query string) ([]Drug, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	return s.store.SearchDrugs(ctx, query, s.searchLimit)
}

// LookupBarcode resolves a drug from a scanned barcode.
func (s *Service) LookupBarcode(ctx context.Context, code string) (Drug, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Drug{}, ErrNotFound
	}
	return s.store.GetDrugByBarcode(ctx, code)
}

// GetDrug loads a drug by identifier.
func (s *Service) GetDrug(ctx context.Context, id uuid.UUID) (Drug, error) {
	return s.store.GetDrugByID(ctx, id)
}

// ListBatches returns all batches for a drug.
func (s *Service) ListBatches(ctx context.Context, drugID uuid.UUID) ([]Batch, error) {
	return s.store.ListBatchesForDrug(ctx, drugID)
}

// FirstAvailableBatch picks the batch the register sells from: the first
// batch with quantity > 0 in insertion order. Expiry ordering (FEFO) is
// deliberately not applied here.
func (s *Service) FirstAvailableBatch(ctx context.Context, drugID uuid.UUID) (Batch, error) {
	batches, err := s.store.ListBatchesForDrug(ctx, drugID)
	if err != nil {
		return Batch{}, fmt.Errorf("resolve batch: %w", err)
	}
	for _, b := range batches {
		if b.Quantity > 0 {
			return b, nil
		}
	}
	return Batch{}, ErrNoStock
}

// PopularBatches returns the quick-access list shown beside the register.
func (s *Service) PopularBatches(ctx context.Context) ([]BatchWithDrug, error) {
	key := fmt.Sprintf("catalog:popular:%d", s.popularLimit)
	var cached []BatchWithDrug
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	batches, err := s.store.ListBatchesWithStock(ctx, s.popularLimit)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, key, batches)
	return batches, nil
}
