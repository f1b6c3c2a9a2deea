package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dawadesk/backend-pharmacy/internal/cart"
	"github.com/dawadesk/backend-pharmacy/internal/lock"
	"github.com/dawadesk/backend-pharmacy/internal/obs"
	"github.com/dawadesk/backend-pharmacy/internal/sales"
)

// Service drives carts through the payment flow and records completed sales.
type Service struct {
	Sessions *SessionStore
	Carts    *cart.Service
	Sales    sales.Store
	Locker   lock.Locker
	LockTTL  time.Duration
	Log      zerolog.Logger
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) lockTTL() time.Duration {
	if s == nil || s.LockTTL <= 0 {
		return 15 * time.Second
	}
	return s.LockTTL
}

func (s *Service) configured() error {
	if s == nil || s.Sessions == nil || s.Carts == nil || s.Sales == nil {
		return errors.New("checkout service not configured")
	}
	return nil
}

// Begin starts checkout for a cart. The cart must have at least one line,
// and a session mid-submission cannot be replaced.
func (s *Service) Begin(ctx context.Context, cartID uuid.UUID) (*Session, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	if existing, err := s.Sessions.Get(ctx, cartID); err == nil && existing.State == StateSubmitting {
		return nil, ErrCheckoutInProgress
	}
	view, err := s.Carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if view.Cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	session := NewSession(cartID, s.now())
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// Get returns the current checkout session for a cart.
func (s *Service) Get(ctx context.Context, cartID uuid.UUID) (*Session, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	return s.Sessions.Get(ctx, cartID)
}

// SelectMethod records the payment method on the session.
func (s *Service) SelectMethod(ctx context.Context, cartID uuid.UUID, method Method) (*Session, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	session, err := s.Sessions.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := session.SelectMethod(method, s.now()); err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// Tender records the cash handed over, validating it covers the current
// cart total.
func (s *Service) Tender(ctx context.Context, cartID uuid.UUID, amount decimal.Decimal) (*Session, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	session, err := s.Sessions.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	view, err := s.Carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := session.Tender(amount, view.Total, s.now()); err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// Cancel abandons checkout, returning the register to cart editing. The
// cart and its discount are untouched.
func (s *Service) Cancel(ctx context.Context, cartID uuid.UUID) error {
	if err := s.configured(); err != nil {
		return err
	}
	session, err := s.Sessions.Get(ctx, cartID)
	if err != nil {
		return err
	}
	if session.State == StateSubmitting {
		return fmt.Errorf("cannot cancel while submitting: %w", ErrInvalidTransition)
	}
	return s.Sessions.Delete(ctx, cartID)
}

// Submit records the sale under a per-cart lock. On success the cart is
// consumed; on failure the session is marked failed and the cart survives
// for another attempt.
func (s *Service) Submit(ctx context.Context, cartID uuid.UUID, customerName, customerPhone string) (*Session, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	session, err := s.Sessions.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := session.ReadyToSubmit(); err != nil {
		return nil, err
	}

	view, err := s.Carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if view.Cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if session.Method == MethodCash {
		// Revalidate the tender against the live total in case the cart
		// changed after the amount was entered.
		if session.AmountTendered == nil || session.AmountTendered.LessThan(view.Total) {
			return nil, ErrInsufficientAmount
		}
		change := session.AmountTendered.Sub(view.Total).Round(2)
		session.Change = &change
	}

	session.BeginSubmit(s.now())
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	sale := buildSale(view, session, customerName, customerPhone)
	started := time.Now()
	var recorded sales.Sale
	lockErr := s.Locker.TryWithLock(ctx, "checkout:lock:"+cartID.String(), s.lockTTL(), func(ctx context.Context) error {
		var recordErr error
		recorded, recordErr = s.Sales.Record(ctx, sale)
		return recordErr
	})
	observeSubmit(session.Method, started, lockErr)

	if lockErr != nil {
		if errors.Is(lockErr, lock.ErrLocked) {
			return nil, ErrCheckoutInProgress
		}
		session.Fail(lockErr.Error(), s.now())
		if saveErr := s.Sessions.Save(ctx, session); saveErr != nil {
			s.Log.Error().Err(saveErr).Str("cart_id", cartID.String()).Msg("save failed checkout session")
		}
		s.Log.Error().Err(lockErr).Str("cart_id", cartID.String()).Msg("sale submission failed")
		return session, fmt.Errorf("%w: %s", ErrSubmissionFailed, lockErr)
	}

	session.Succeed(recorded.ID, recorded.ReceiptNumber, s.now())
	if err := s.Sessions.Save(ctx, session); err != nil {
		s.Log.Error().Err(err).Str("cart_id", cartID.String()).Msg("save succeeded checkout session")
	}
	if err := s.Carts.Delete(ctx, cartID); err != nil {
		s.Log.Error().Err(err).Str("cart_id", cartID.String()).Msg("delete cart after sale")
	}
	s.Log.Info().
		Str("cart_id", cartID.String()).
		Str("receipt", recorded.ReceiptNumber).
		Str("method", string(session.Method)).
		Str("total", recorded.Total.StringFixed(2)).
		Msg("sale recorded")
	return session, nil
}

func buildSale(view cart.View, session *Session, customerName, customerPhone string) sales.Sale {
	items := make([]sales.SaleItem, 0, len(view.Cart.Items))
	for _, it := range view.Cart.Items {
		items = append(items, sales.SaleItem{
			BatchID:     it.BatchID,
			DrugID:      it.DrugID,
			DrugName:    it.DrugName,
			Dosage:      it.Dosage,
			BatchNumber: it.BatchNumber,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			LineTotal:   it.LineTotal(),
		})
	}
	sale := sales.Sale{
		Items:         items,
		Subtotal:      view.Subtotal,
		Discount:      view.Discount,
		Tax:           view.Tax,
		Total:         view.Total,
		PaymentMethod: string(session.Method),
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
	}
	if view.Cart.Discount != nil {
		sale.DiscountReason = view.Cart.Discount.Reason
	}
	if session.Method == MethodCash {
		sale.AmountTendered = session.AmountTendered
		sale.Change = session.Change
	}
	return sale
}

func observeSubmit(method Method, started time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues(string(method), result).Inc()
	}
	if obs.SaleSubmitLatency != nil {
		obs.SaleSubmitLatency.WithLabelValues(result).Observe(float64(time.Since(started).Milliseconds()))
	}
}
