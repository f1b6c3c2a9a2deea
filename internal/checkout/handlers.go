package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dawadesk/backend-pharmacy/internal/cart"
	"github.com/dawadesk/backend-pharmacy/internal/common"
)

var validate = validator.New()

// Handler wires the checkout service to HTTP.
type Handler struct {
	Svc *Service
}

// Begin starts checkout for a cart.
func (h *Handler) Begin(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	session, err := h.Svc.Begin(r.Context(), cartID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, session)
}

// Get returns the checkout session state.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	session, err := h.Svc.Get(r.Context(), cartID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, session)
}

type selectMethodRequest struct {
	Method string `json:"method" validate:"required,oneof=cash card mobile"`
}

// SelectMethod records the payment method.
func (h *Handler) SelectMethod(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var payload selectMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.Fail(w, common.CodeBadRequest, "invalid payload", nil)
		return
	}
	if err := validate.Struct(payload); err != nil {
		common.Fail(w, common.CodeInvalidMethod, "method must be cash, card, or mobile", nil)
		return
	}
	method, err := ParseMethod(payload.Method)
	if err != nil {
		h.writeError(w, err)
		return
	}
	session, err := h.Svc.SelectMethod(r.Context(), cartID, method)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, session)
}

// Tender records the cash amount handed over.
func (h *Handler) Tender(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var payload struct {
		AmountTendered decimal.Decimal `json:"amountTendered"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.Fail(w, common.CodeBadRequest, "invalid payload", nil)
		return
	}
	session, err := h.Svc.Tender(r.Context(), cartID, payload.AmountTendered)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, session)
}

// Submit records the sale.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var payload struct {
		CustomerName  string `json:"customerName"`
		CustomerPhone string `json:"customerPhone"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}
	session, err := h.Svc.Submit(r.Context(), cartID,
		strings.TrimSpace(payload.CustomerName), strings.TrimSpace(payload.CustomerPhone))
	if err != nil {
		if errors.Is(err, ErrSubmissionFailed) && session != nil {
			common.Fail(w, common.CodeSubmissionFailed, "sale could not be recorded; cart preserved",
				map[string]any{"state": session.State, "reason": session.FailureReason})
			return
		}
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, session)
}

// Cancel abandons checkout, keeping the cart.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Cancel(r.Context(), cartID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cartID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.Fail(w, common.CodeBadRequest, "invalid cart id", nil)
		return uuid.UUID{}, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrCartNotFound):
		common.Fail(w, common.CodeCartNotFound, "cart not found", nil)
	case errors.Is(err, ErrSessionNotFound):
		common.Fail(w, common.CodeNoCheckout, "no checkout in progress", nil)
	case errors.Is(err, ErrEmptyCart):
		common.Fail(w, common.CodeEmptyCart, "cannot pay for an empty cart", nil)
	case errors.Is(err, ErrInvalidMethod):
		common.Fail(w, common.CodeInvalidMethod, "method must be cash, card, or mobile", nil)
	case errors.Is(err, ErrInsufficientAmount):
		common.Fail(w, common.CodeInsufficientAmount, "amount tendered is below total", nil)
	case errors.Is(err, ErrCheckoutInProgress):
		common.Fail(w, common.CodeCheckoutInProgress, "another submission holds this cart", nil)
	case errors.Is(err, ErrInvalidTransition):
		common.Fail(w, common.CodeInvalidState, err.Error(), nil)
	default:
		common.Fail(w, common.CodeInternal, "unexpected error", nil)
	}
}
