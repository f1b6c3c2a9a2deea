package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dawadesk/backend-pharmacy/internal/lock"
)

func TestHandleInventoryScanUnderLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	h := &TaskHandler{
		Svc: &Service{
			Store:             seedInventory(t, now),
			LowStockThreshold: 10,
			ExpiryWindow:      30 * 24 * time.Hour,
			Now:               func() time.Time { return now },
		},
		Log:     zerolog.Nop(),
		Locker:  lock.Locker{R: client, RetryBackoff: 5 * time.Millisecond},
		LockTTL: time.Second,
	}

	require.NoError(t, h.HandleInventoryScan(context.Background(), NewInventoryScanTask()))

	// The lock must be released once the scan is done.
	exists, err := client.Exists(context.Background(), scanLockKey).Result()
	require.NoError(t, err)
	require.Zero(t, exists)
}

func TestHandleInventoryScanWaitsForHeldLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), scanLockKey, "other-worker", time.Minute).Err())

	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	h := &TaskHandler{
		Svc: &Service{
			Store:             seedInventory(t, now),
			LowStockThreshold: 10,
			ExpiryWindow:      30 * 24 * time.Hour,
			Now:               func() time.Time { return now },
		},
		Log:     zerolog.Nop(),
		Locker:  lock.Locker{R: client, RetryBackoff: 5 * time.Millisecond},
		LockTTL: time.Second,
	}

	released := make(chan struct{})
	go func() {
		time.Sleep(25 * time.Millisecond)
		client.Del(context.Background(), scanLockKey)
		close(released)
	}()

	require.NoError(t, h.HandleInventoryScan(context.Background(), NewInventoryScanTask()))
	<-released
}

func TestHandleInventoryScanWithoutLocker(t *testing.T) {
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	h := &TaskHandler{
		Svc: &Service{
			Store:             seedInventory(t, now),
			LowStockThreshold: 10,
			ExpiryWindow:      30 * 24 * time.Hour,
			Now:               func() time.Time { return now },
		},
		Log: zerolog.Nop(),
	}
	require.NoError(t, h.HandleInventoryScan(context.Background(), NewInventoryScanTask()))
}
