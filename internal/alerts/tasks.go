package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/dawadesk/backend-pharmacy/internal/lock"
)

// TypeInventoryScan is the asynq task type for periodic inventory scans.
const TypeInventoryScan = "alerts:inventory_scan"

// scanLockKey serialises scans across worker replicas.
const scanLockKey = "alerts:lock:scan"

// NewInventoryScanTask builds the periodic scan task.
func NewInventoryScanTask() *asynq.Task {
	return asynq.NewTask(TypeInventoryScan, nil, asynq.MaxRetry(3))
}

// TaskHandler processes scheduled alert tasks.
type TaskHandler struct {
	Svc     *Service
	Log     zerolog.Logger
	Locker  lock.Locker
	LockTTL time.Duration
}

func (h *TaskHandler) lockTTL() time.Duration {
	if h.LockTTL <= 0 {
		return time.Minute
	}
	return h.LockTTL
}

// HandleInventoryScan runs a scan and logs every flagged batch. When a
// locker is configured, overlapping scans from other replicas wait their
// turn rather than hammering the catalog concurrently.
func (h *TaskHandler) HandleInventoryScan(ctx context.Context, _ *asynq.Task) error {
	var report Report
	scan := func(ctx context.Context) error {
		var err error
		report, err = h.Svc.Scan(ctx)
		return err
	}
	var err error
	if h.Locker.R != nil {
		err = h.Locker.WithLock(ctx, scanLockKey, h.lockTTL(), scan)
	} else {
		err = scan(ctx)
	}
	if err != nil {
		return fmt.Errorf("inventory scan: %w", err)
	}
	for _, b := range report.LowStock {
		h.Log.Warn().
			Str("drug", b.DrugName).
			Str("batch", b.BatchNumber).
			Int("quantity", b.Quantity).
			Msg("low stock")
	}
	for _, b := range report.Expiring {
		h.Log.Warn().
			Str("drug", b.DrugName).
			Str("batch", b.BatchNumber).
			Time("expiry", b.ExpiryDate).
			Msg("expiring batch")
	}
	h.Log.Info().
		Int("low_stock", len(report.LowStock)).
		Int("expiring", len(report.Expiring)).
		Msg("inventory scan complete")
	return nil
}

// Register attaches the handler to an asynq mux.
func (h *TaskHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeInventoryScan, h.HandleInventoryScan)
}
