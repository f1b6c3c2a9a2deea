package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dawadesk/backend-pharmacy/internal/common"
)

// Handler wires the catalog service to HTTP.
type Handler struct {
	Svc *Service
}

// Categories lists all drug categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Svc.ListCategories(r.Context())
	if err != nil {
		common.Fail(w, common.CodeInternal, "unable to load categories", nil)
		return
	}
	if categories == nil {
		categories = []Category{}
	}
	common.JSONData(w, http.StatusOK, categories)
}

// Search matches drugs against the q parameter.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	drugs, err := h.Svc.SearchDrugs(r.Context(), query)
	if err != nil {
		common.Fail(w, common.CodeInternal, "drug search failed", nil)
		return
	}
	if drugs == nil {
		drugs = []Drug{}
	}
	common.JSONData(w, http.StatusOK, drugs)
}

// Barcode resolves a drug from a scanned code.
func (h *Handler) Barcode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	drug, err := h.Svc.LookupBarcode(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.Fail(w, common.CodeNotFound, "no drug with that barcode", nil)
			return
		}
		common.Fail(w, common.CodeInternal, "barcode lookup failed", nil)
		return
	}
	common.JSONData(w, http.StatusOK, drug)
}

// Batches lists all batches for a drug.
func (h *Handler) Batches(w http.ResponseWriter, r *http.Request) {
	drugID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.Fail(w, common.CodeBadRequest, "invalid drug id", nil)
		return
	}
	batches, err := h.Svc.ListBatches(r.Context(), drugID)
	if err != nil {
		common.Fail(w, common.CodeInternal, "unable to load batches", nil)
		return
	}
	if batches == nil {
		batches = []Batch{}
	}
	common.JSONData(w, http.StatusOK, batches)
}

// Popular returns the register quick-access batch list.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	batches, err := h.Svc.PopularBatches(r.Context())
	if err != nil {
		common.Fail(w, common.CodeInternal, "unable to load batches", nil)
		return
	}
	if batches == nil {
		batches = []BatchWithDrug{}
	}
	common.JSONData(w, http.StatusOK, batches)
}
