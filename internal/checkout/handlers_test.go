package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newCheckoutRouter(env *testEnv) *chi.Mux {
	h := &Handler{Svc: env.svc}
	r := chi.NewRouter()
	r.Route("/carts/{id}/checkout", func(ck chi.Router) {
		ck.Get("/", h.Get)
		ck.Post("/", h.Begin)
		ck.Put("/method", h.SelectMethod)
		ck.Put("/tender", h.Tender)
		ck.Post("/submit", h.Submit)
		ck.Post("/cancel", h.Cancel)
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerBeginCreatesSession(t *testing.T) {
	env := newTestEnv(t)
	cartID := env.newCartWithItems(t, 2)
	r := newCheckoutRouter(env)

	rec := doJSON(t, r, http.MethodPost, "/carts/"+cartID.String()+"/checkout", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data struct {
			State State `json:"state"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, StateAwaitingMethod, resp.Data.State)
}

func TestHandlerBeginEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.carts.Create(context.Background())
	require.NoError(t, err)
	r := newCheckoutRouter(env)

	rec := doJSON(t, r, http.MethodPost, "/carts/"+created.Cart.ID.String()+"/checkout", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "EMPTY_CART")
}

func TestHandlerGetWithoutSession(t *testing.T) {
	env := newTestEnv(t)
	cartID := env.newCartWithItems(t, 1)
	r := newCheckoutRouter(env)

	rec := doJSON(t, r, http.MethodGet, "/carts/"+cartID.String()+"/checkout", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NO_CHECKOUT")
}

func TestHandlerSelectMethodRejectsUnknown(t *testing.T) {
	env := newTestEnv(t)
	cartID := env.newCartWithItems(t, 1)
	r := newCheckoutRouter(env)

	base := "/carts/" + cartID.String() + "/checkout"
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, base, "").Code)

	rec := doJSON(t, r, http.MethodPut, base+"/method", `{"method":"cheque"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_METHOD")
}

func TestHandlerCashFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	cartID := env.newCartWithItems(t, 4)
	r := newCheckoutRouter(env)
	base := "/carts/" + cartID.String() + "/checkout"

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, base, "").Code)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPut, base+"/method", `{"method":"cash"}`).Code)

	rec := doJSON(t, r, http.MethodPut, base+"/tender", `{"amountTendered":"150.00"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, base+"/submit", `{"customerName":"Amina Otieno"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			State         State  `json:"state"`
			ReceiptNumber string `json:"receiptNumber"`
			Change        string `json:"change"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, StateSucceeded, resp.Data.State)
	require.NotEmpty(t, resp.Data.ReceiptNumber)
	require.Equal(t, "42", resp.Data.Change)

	recorded, err := env.sales.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
}

func TestHandlerTenderBelowTotal(t *testing.T) {
	env := newTestEnv(t)
	cartID := env.newCartWithItems(t, 4)
	r := newCheckoutRouter(env)
	base := "/carts/" + cartID.String() + "/checkout"

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, base, "").Code)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPut, base+"/method", `{"method":"cash"}`).Code)

	rec := doJSON(t, r, http.MethodPut, base+"/tender", `{"amountTendered":"50.00"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "INSUFFICIENT_AMOUNT")
}

func TestHandlerSubmitFailureKeepsCart(t *testing.T) {
	env := newTestEnv(t)
	cartID := env.newCartWithItems(t, 1)
	env.sales.RecordErr = errors.New("connection refused")
	r := newCheckoutRouter(env)
	base := "/carts/" + cartID.String() + "/checkout"

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, base, "").Code)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPut, base+"/method", `{"method":"card"}`).Code)

	rec := doJSON(t, r, http.MethodPost, base+"/submit", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "SUBMISSION_FAILED")

	view, err := env.carts.Get(context.Background(), cartID)
	require.NoError(t, err)
	require.Len(t, view.Cart.Items, 1)
}

func TestHandlerCancelReturnsNoContent(t *testing.T) {
	env := newTestEnv(t)
	cartID := env.newCartWithItems(t, 1)
	r := newCheckoutRouter(env)
	base := "/carts/" + cartID.String() + "/checkout"

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, base, "").Code)
	rec := doJSON(t, r, http.MethodPost, base+"/cancel", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodGet, base, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerBadCartID(t *testing.T) {
	env := newTestEnv(t)
	env.newCartWithItems(t, 1)
	r := newCheckoutRouter(env)

	rec := doJSON(t, r, http.MethodPost, "/carts/not-a-uuid/checkout", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "BAD_REQUEST")
}
