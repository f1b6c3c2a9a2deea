package common

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func idemHandler(t *testing.T) (http.Handler, *int) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	calls := 0
	idem := Idem{R: client, TTL: time.Minute}
	h := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))
	return h, &calls
}

func TestIdempotencyBlocksDuplicate(t *testing.T) {
	h, calls := idemHandler(t)

	first := httptest.NewRequest(http.MethodPost, "/carts", nil)
	first.Header.Set("Idempotency-Key", "till-7-receipt-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, first)
	if rr.Code != http.StatusCreated {
		t.Fatalf("first request: expected 201 got %d", rr.Code)
	}

	dup := httptest.NewRequest(http.MethodPost, "/carts", nil)
	dup.Header.Set("Idempotency-Key", "till-7-receipt-1")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, dup)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409 got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), CodeIdempotentReplay) {
		t.Fatalf("expected %s in body, got %s", CodeIdempotentReplay, rr.Body.String())
	}
	if *calls != 1 {
		t.Fatalf("handler should run once, ran %d times", *calls)
	}
}

func TestIdempotencySkipsWithoutKey(t *testing.T) {
	h, calls := idemHandler(t)

	for range 2 {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/carts", nil))
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d", rr.Code)
		}
	}
	if *calls != 2 {
		t.Fatalf("handler should run both times, ran %d", *calls)
	}
}
