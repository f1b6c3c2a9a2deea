package sales

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dawadesk/backend-pharmacy/internal/common"
	"github.com/dawadesk/backend-pharmacy/internal/receipt"
)

// Handler exposes the sales history over HTTP.
type Handler struct {
	Store   Store
	Receipt receipt.Options
}

// List returns recorded sales, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)
	out, err := h.Store.List(r.Context(), limit, offset)
	if err != nil {
		common.Fail(w, common.CodeInternal, "unable to load sales", nil)
		return
	}
	if out == nil {
		out = []Sale{}
	}
	common.JSONData(w, http.StatusOK, out)
}

// Get returns a single sale with its items.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sale, ok := h.loadSale(w, r)
	if !ok {
		return
	}
	common.JSONData(w, http.StatusOK, sale)
}

// PrintReceipt renders the sale as printer-ready text.
func (h *Handler) PrintReceipt(w http.ResponseWriter, r *http.Request) {
	sale, ok := h.loadSale(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(receipt.Format(sale, h.Receipt)))
}

func (h *Handler) loadSale(w http.ResponseWriter, r *http.Request) (Sale, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.Fail(w, common.CodeBadRequest, "invalid sale id", nil)
		return Sale{}, false
	}
	sale, err := h.Store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSaleNotFound) {
			common.Fail(w, common.CodeNotFound, "sale not found", nil)
			return Sale{}, false
		}
		common.Fail(w, common.CodeInternal, "unable to load sale", nil)
		return Sale{}, false
	}
	return sale, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
