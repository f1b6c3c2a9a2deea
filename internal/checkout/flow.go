// Package checkout drives a cart through payment: choose a method, tender
// cash if needed, then submit the sale. A failed submission returns the
// session to editing with the cart intact so the cashier can retry.
package checkout

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State is the checkout session's position in the payment flow.
type State string

const (
	StateEditing        State = "editing"
	StateAwaitingMethod State = "awaitingMethod"
	StateAwaitingAmount State = "awaitingAmount"
	StateSubmitting     State = "submitting"
	StateSucceeded      State = "succeeded"
	StateFailed         State = "failed"
)

// Method is the payment instrument.
type Method string

const (
	MethodCash   Method = "cash"
	MethodCard   Method = "card"
	MethodMobile Method = "mobile"
)

var (
	// ErrSessionNotFound indicates no checkout is in progress for the cart.
	ErrSessionNotFound = errors.New("checkout session not found")
	// ErrEmptyCart blocks payment on a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidMethod is returned for an unknown payment method.
	ErrInvalidMethod = errors.New("invalid payment method")
	// ErrInsufficientAmount is returned when cash tendered is below the total.
	ErrInsufficientAmount = errors.New("amount tendered is below total")
	// ErrInvalidTransition is returned for an operation the current state
	// does not allow.
	ErrInvalidTransition = errors.New("invalid checkout transition")
	// ErrSubmissionFailed wraps the cause of a failed sale submission.
	ErrSubmissionFailed = errors.New("sale submission failed")
	// ErrCheckoutInProgress is returned when another submit already holds
	// the cart.
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

// ParseMethod validates a payment method string.
func ParseMethod(value string) (Method, error) {
	switch Method(value) {
	case MethodCash, MethodCard, MethodMobile:
		return Method(value), nil
	default:
		return "", fmt.Errorf("unknown payment method %q: %w", value, ErrInvalidMethod)
	}
}

// Session is one cart's progress through checkout.
type Session struct {
	CartID         uuid.UUID        `json:"cartId"`
	State          State            `json:"state"`
	Method         Method           `json:"method,omitempty"`
	AmountTendered *decimal.Decimal `json:"amountTendered,omitempty"`
	Change         *decimal.Decimal `json:"change,omitempty"`
	SaleID         uuid.UUID        `json:"saleId,omitempty"`
	ReceiptNumber  string           `json:"receiptNumber,omitempty"`
	FailureReason  string           `json:"failureReason,omitempty"`
	StartedAt      time.Time        `json:"startedAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// NewSession starts checkout for a cart, landing on method selection.
func NewSession(cartID uuid.UUID, now time.Time) *Session {
	return &Session{CartID: cartID, State: StateAwaitingMethod, StartedAt: now, UpdatedAt: now}
}

// SelectMethod records the payment method. Cash proceeds to tendering; other
// methods are ready to submit immediately. Choosing again before submission
// replaces the previous choice.
func (s *Session) SelectMethod(m Method, now time.Time) error {
	switch s.State {
	case StateAwaitingMethod, StateAwaitingAmount, StateFailed:
	default:
		return fmt.Errorf("cannot select method in state %q: %w", s.State, ErrInvalidTransition)
	}
	s.Method = m
	s.AmountTendered = nil
	s.Change = nil
	s.FailureReason = ""
	if m == MethodCash {
		s.State = StateAwaitingAmount
	} else {
		s.State = StateAwaitingMethod
	}
	s.UpdatedAt = now
	return nil
}

// Tender records the cash amount handed over and the change due. The amount
// must cover the total.
func (s *Session) Tender(amount, total decimal.Decimal, now time.Time) error {
	if s.State != StateAwaitingAmount {
		return fmt.Errorf("cannot tender in state %q: %w", s.State, ErrInvalidTransition)
	}
	if amount.LessThan(total) {
		return ErrInsufficientAmount
	}
	change := amount.Sub(total).Round(2)
	s.AmountTendered = &amount
	s.Change = &change
	s.UpdatedAt = now
	return nil
}

// ReadyToSubmit reports whether the session may move to submission.
func (s *Session) ReadyToSubmit() error {
	if s.Method == "" {
		return fmt.Errorf("no payment method selected: %w", ErrInvalidTransition)
	}
	switch s.State {
	case StateAwaitingMethod:
		if s.Method == MethodCash {
			return fmt.Errorf("cash requires a tendered amount: %w", ErrInvalidTransition)
		}
		return nil
	case StateAwaitingAmount:
		if s.AmountTendered == nil {
			return fmt.Errorf("cash requires a tendered amount: %w", ErrInvalidTransition)
		}
		return nil
	default:
		return fmt.Errorf("cannot submit in state %q: %w", s.State, ErrInvalidTransition)
	}
}

// BeginSubmit marks the session as submitting.
func (s *Session) BeginSubmit(now time.Time) {
	s.State = StateSubmitting
	s.UpdatedAt = now
}

// Succeed records the persisted sale.
func (s *Session) Succeed(saleID uuid.UUID, receiptNumber string, now time.Time) {
	s.State = StateSucceeded
	s.SaleID = saleID
	s.ReceiptNumber = receiptNumber
	s.FailureReason = ""
	s.UpdatedAt = now
}

// Fail records a failed submission. The cart is untouched so the cashier
// can retry or return to editing.
func (s *Session) Fail(reason string, now time.Time) {
	s.State = StateFailed
	s.FailureReason = reason
	s.UpdatedAt = now
}
