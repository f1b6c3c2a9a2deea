package sales

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*chi.Mux, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	h := &Handler{Store: store}

	r := chi.NewRouter()
	r.Get("/sales", h.List)
	r.Get("/sales/{id}", h.Get)
	r.Get("/sales/{id}/receipt", h.PrintReceipt)
	return r, store
}

func TestListHandlerEmpty(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sales", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestGetHandler(t *testing.T) {
	router, store := newTestRouter(t)
	sale, err := store.Record(context.Background(), sampleSale())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sales/"+sale.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data Sale `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, sale.ReceiptNumber, body.Data.ReceiptNumber)
	require.Len(t, body.Data.Items, 1)
}

func TestGetHandlerNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sales/0b04c5b5-4e3e-4dca-9a3a-222222222222", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPrintReceiptHandler(t *testing.T) {
	router, store := newTestRouter(t)
	sale, err := store.Record(context.Background(), sampleSale())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sales/"+sale.ID.String()+"/receipt", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	require.Contains(t, rec.Body.String(), sale.ReceiptNumber)
	require.Contains(t, rec.Body.String(), "Cetirizine")
}
