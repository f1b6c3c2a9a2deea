// Package alerts scans inventory for batches that need attention: stock at
// or below the reorder threshold and stocked batches nearing expiry.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dawadesk/backend-pharmacy/internal/catalog"
	"github.com/dawadesk/backend-pharmacy/internal/obs"
)

// Report is the outcome of one inventory scan.
type Report struct {
	LowStock  []catalog.BatchWithDrug `json:"lowStock"`
	Expiring  []catalog.BatchWithDrug `json:"expiring"`
	ScannedAt time.Time               `json:"scannedAt"`
}

// Service runs inventory scans against the catalog store.
type Service struct {
	Store             catalog.Store
	LowStockThreshold int
	ExpiryWindow      time.Duration
	Now               func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) threshold() int {
	if s == nil || s.LowStockThreshold <= 0 {
		return 10
	}
	return s.LowStockThreshold
}

func (s *Service) window() time.Duration {
	if s == nil || s.ExpiryWindow <= 0 {
		return 30 * 24 * time.Hour
	}
	return s.ExpiryWindow
}

// Scan flags low-stock and expiring batches.
func (s *Service) Scan(ctx context.Context) (Report, error) {
	if s == nil || s.Store == nil {
		return Report{}, errors.New("alerts service not configured")
	}
	now := s.now()

	lowStock, err := s.Store.ListLowStockBatches(ctx, s.threshold())
	if err != nil {
		recordScan("error")
		return Report{}, fmt.Errorf("scan low stock: %w", err)
	}
	expiring, err := s.Store.ListExpiringBatches(ctx, now.Add(s.window()))
	if err != nil {
		recordScan("error")
		return Report{}, fmt.Errorf("scan expiring: %w", err)
	}

	recordScan("ok")
	if obs.AlertItemsFound != nil {
		obs.AlertItemsFound.WithLabelValues("low_stock").Set(float64(len(lowStock)))
		obs.AlertItemsFound.WithLabelValues("expiring").Set(float64(len(expiring)))
	}
	if lowStock == nil {
		lowStock = []catalog.BatchWithDrug{}
	}
	if expiring == nil {
		expiring = []catalog.BatchWithDrug{}
	}
	return Report{LowStock: lowStock, Expiring: expiring, ScannedAt: now}, nil
}

func recordScan(result string) {
	if obs.AlertScanTotal != nil {
		obs.AlertScanTotal.WithLabelValues(result).Inc()
	}
}
