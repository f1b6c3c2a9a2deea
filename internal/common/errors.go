package common

import "net/http"

// Error codes returned in the error envelope. Handlers translate the
// domain sentinel errors onto this vocabulary, so a register client can
// switch on Code without parsing messages.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeCartNotFound       = "CART_NOT_FOUND"
	CodeItemNotFound       = "ITEM_NOT_FOUND"
	CodeOutOfStock         = "OUT_OF_STOCK"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeInvalidDiscount    = "INVALID_DISCOUNT"
	CodeNoCheckout         = "NO_CHECKOUT"
	CodeEmptyCart          = "EMPTY_CART"
	CodeInvalidMethod      = "INVALID_METHOD"
	CodeInsufficientAmount = "INSUFFICIENT_AMOUNT"
	CodeCheckoutInProgress = "CHECKOUT_IN_PROGRESS"
	CodeInvalidState       = "INVALID_STATE"
	CodeSubmissionFailed   = "SUBMISSION_FAILED"
	CodeIdempotentReplay   = "IDEMPOTENT_REPLAY"
	CodeInternal           = "INTERNAL"
)

var statusByCode = map[string]int{
	CodeBadRequest:         http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeCartNotFound:       http.StatusNotFound,
	CodeItemNotFound:       http.StatusNotFound,
	CodeOutOfStock:         http.StatusConflict,
	CodeInsufficientStock:  http.StatusConflict,
	CodeInvalidDiscount:    http.StatusBadRequest,
	CodeNoCheckout:         http.StatusNotFound,
	CodeEmptyCart:          http.StatusConflict,
	CodeInvalidMethod:      http.StatusBadRequest,
	CodeInsufficientAmount: http.StatusConflict,
	CodeCheckoutInProgress: http.StatusConflict,
	CodeInvalidState:       http.StatusConflict,
	CodeSubmissionFailed:   http.StatusBadGateway,
	CodeIdempotentReplay:   http.StatusConflict,
	CodeInternal:           http.StatusInternalServerError,
}

// StatusFor returns the HTTP status a code maps to. Unknown codes are
// treated as internal faults.
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Fail writes the canonical error envelope for a known code.
func Fail(w http.ResponseWriter, code, message string, details any) {
	JSONError(w, StatusFor(code), code, message, details)
}
