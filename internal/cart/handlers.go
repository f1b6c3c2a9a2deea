package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dawadesk/backend-pharmacy/internal/catalog"
	"github.com/dawadesk/backend-pharmacy/internal/common"
	"github.com/dawadesk/backend-pharmacy/internal/discount"
)

var validate = validator.New()

// Handler wires the cart service to HTTP.
type Handler struct {
	Svc *Service
}

// Create starts a new cart session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	view, err := h.Svc.Create(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, view)
}

// Get returns the cart with computed totals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "id", "invalid cart id")
	if !ok {
		return
	}
	view, err := h.Svc.Get(r.Context(), cartID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, view)
}

// Delete removes the cart session.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "id", "invalid cart id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(r.Context(), cartID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addItemRequest struct {
	DrugID   string `json:"drugId" validate:"required,uuid4_rfc4122|uuid_rfc4122"`
	Quantity int    `json:"quantity"`
}

// AddItem adds units of a drug, selling from its first in-stock batch.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "id", "invalid cart id")
	if !ok {
		return
	}
	var payload addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.Fail(w, common.CodeBadRequest, "invalid payload", nil)
		return
	}
	if err := validate.Struct(payload); err != nil {
		common.Fail(w, common.CodeBadRequest, "drugId is required", nil)
		return
	}
	drugID, err := uuid.Parse(payload.DrugID)
	if err != nil {
		common.Fail(w, common.CodeBadRequest, "invalid drug id", nil)
		return
	}
	view, err := h.Svc.AddDrug(r.Context(), cartID, drugID, payload.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, view)
}

// UpdateItem sets the quantity on a cart line. Zero removes the line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "id", "invalid cart id")
	if !ok {
		return
	}
	batchID, ok := pathUUID(w, r, "batchId", "invalid batch id")
	if !ok {
		return
	}
	var payload struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.Fail(w, common.CodeBadRequest, "invalid payload", nil)
		return
	}
	view, err := h.Svc.SetQuantity(r.Context(), cartID, batchID, payload.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, view)
}

// RemoveItem deletes a cart line.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "id", "invalid cart id")
	if !ok {
		return
	}
	batchID, ok := pathUUID(w, r, "batchId", "invalid batch id")
	if !ok {
		return
	}
	view, err := h.Svc.RemoveItem(r.Context(), cartID, batchID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, view)
}

// Clear empties the cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "id", "invalid cart id")
	if !ok {
		return
	}
	view, err := h.Svc.Clear(r.Context(), cartID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, view)
}

type applyDiscountRequest struct {
	Kind   string          `json:"kind" validate:"required,oneof=percentage fixed"`
	Value  decimal.Decimal `json:"value"`
	Reason string          `json:"reason"`
}

// ApplyDiscount attaches a discount to the cart.
func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "id", "invalid cart id")
	if !ok {
		return
	}
	var payload applyDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.Fail(w, common.CodeBadRequest, "invalid payload", nil)
		return
	}
	if err := validate.Struct(payload); err != nil {
		common.Fail(w, common.CodeInvalidDiscount, "kind must be percentage or fixed", nil)
		return
	}
	kind, err := discount.ParseKind(payload.Kind)
	if err != nil {
		common.Fail(w, common.CodeInvalidDiscount, "kind must be percentage or fixed", nil)
		return
	}
	view, err := h.Svc.ApplyDiscount(r.Context(), cartID, kind, payload.Value, strings.TrimSpace(payload.Reason))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, view)
}

// RemoveDiscount clears the applied discount.
func (h *Handler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "id", "invalid cart id")
	if !ok {
		return
	}
	view, err := h.Svc.RemoveDiscount(r.Context(), cartID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, view)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCartNotFound):
		common.Fail(w, common.CodeCartNotFound, "cart not found", nil)
	case errors.Is(err, ErrItemNotFound):
		common.Fail(w, common.CodeItemNotFound, "cart item not found", nil)
	case errors.Is(err, ErrOutOfStock):
		common.Fail(w, common.CodeOutOfStock, "no batch with remaining stock", nil)
	case errors.Is(err, ErrInsufficientStock):
		common.Fail(w, common.CodeInsufficientStock, "requested quantity exceeds stock", nil)
	case errors.Is(err, discount.ErrInvalidDiscount):
		common.Fail(w, common.CodeInvalidDiscount, err.Error(), nil)
	case errors.Is(err, catalog.ErrNotFound):
		common.Fail(w, common.CodeNotFound, "drug not found", nil)
	default:
		common.Fail(w, common.CodeInternal, "unexpected error", nil)
	}
}

func pathUUID(w http.ResponseWriter, r *http.Request, param, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		common.Fail(w, common.CodeBadRequest, message, nil)
		return uuid.UUID{}, false
	}
	return id, true
}
