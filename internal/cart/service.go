package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dawadesk/backend-pharmacy/internal/catalog"
	"github.com/dawadesk/backend-pharmacy/internal/discount"
	"github.com/dawadesk/backend-pharmacy/internal/obs"
	"github.com/dawadesk/backend-pharmacy/internal/pricing"
)

// Service encapsulates register cart operations: resolving batches from the
// catalog, mutating cart contents, and pricing.
type Service struct {
	Store   *Store
	Catalog *catalog.Service
	TaxRate decimal.Decimal
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// View is the cart plus its computed totals, as returned to clients.
type View struct {
	Cart      *Cart           `json:"cart"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	UnitCount int             `json:"unitCount"`
}

func (s *Service) view(c *Cart) View {
	summary := c.Totals(s.TaxRate)
	return View{
		Cart:      c,
		Subtotal:  summary.Subtotal,
		Discount:  summary.Discount,
		Tax:       summary.Tax,
		Total:     summary.Total,
		UnitCount: c.UnitCount(),
	}
}

// Totals exposes the priced summary for other services.
func (s *Service) Totals(c *Cart) pricing.Summary {
	return c.Totals(s.TaxRate)
}

// Create starts a new empty cart session.
func (s *Service) Create(ctx context.Context) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("cart service not configured")
	}
	c := New(uuid.New(), s.now())
	if err := s.Store.Save(ctx, c); err != nil {
		return View{}, fmt.Errorf("save cart: %w", err)
	}
	return s.view(c), nil
}

// Get loads a cart and its totals.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.view(c), nil
}

// AddDrug resolves the drug's selling batch and adds qty units to the cart.
func (s *Service) AddDrug(ctx context.Context, cartID, drugID uuid.UUID, qty int) (View, error) {
	if s == nil || s.Store == nil || s.Catalog == nil {
		return View{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		recordOp("add", "error")
		return View{}, err
	}
	drug, err := s.Catalog.GetDrug(ctx, drugID)
	if err != nil {
		recordOp("add", "error")
		return View{}, err
	}
	batch, err := s.Catalog.FirstAvailableBatch(ctx, drugID)
	if err != nil {
		if errors.Is(err, catalog.ErrNoStock) {
			recordOp("add", "out_of_stock")
			return View{}, ErrOutOfStock
		}
		recordOp("add", "error")
		return View{}, err
	}
	item := LineItem{
		BatchID:     batch.ID,
		DrugID:      drug.ID,
		DrugName:    drug.Name,
		Dosage:      drug.Dosage,
		BatchNumber: batch.BatchNumber,
		UnitPrice:   batch.SellingPrice,
		Available:   batch.Quantity,
	}
	if err := c.Add(item, qty); err != nil {
		recordOp("add", "rejected")
		return View{}, err
	}
	c.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, c); err != nil {
		recordOp("add", "error")
		return View{}, fmt.Errorf("save cart: %w", err)
	}
	recordOp("add", "ok")
	return s.view(c), nil
}

// SetQuantity sets the quantity on a cart line. Zero or less removes it.
func (s *Service) SetQuantity(ctx context.Context, cartID, batchID uuid.UUID, qty int) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		recordOp("set_qty", "error")
		return View{}, err
	}
	if err := c.SetQuantity(batchID, qty); err != nil {
		recordOp("set_qty", "rejected")
		return View{}, err
	}
	c.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, c); err != nil {
		recordOp("set_qty", "error")
		return View{}, fmt.Errorf("save cart: %w", err)
	}
	recordOp("set_qty", "ok")
	return s.view(c), nil
}

// RemoveItem drops a cart line. Absent lines are ignored.
func (s *Service) RemoveItem(ctx context.Context, cartID, batchID uuid.UUID) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		recordOp("remove", "error")
		return View{}, err
	}
	c.Remove(batchID)
	c.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, c); err != nil {
		recordOp("remove", "error")
		return View{}, fmt.Errorf("save cart: %w", err)
	}
	recordOp("remove", "ok")
	return s.view(c), nil
}

// Clear empties the cart, dropping its lines and discount.
func (s *Service) Clear(ctx context.Context, cartID uuid.UUID) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	c.Clear()
	c.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, c); err != nil {
		return View{}, fmt.Errorf("save cart: %w", err)
	}
	recordOp("clear", "ok")
	return s.view(c), nil
}

// Delete removes the cart session entirely.
func (s *Service) Delete(ctx context.Context, cartID uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	return s.Store.Delete(ctx, cartID)
}

// ApplyDiscount validates and attaches a discount to the cart.
func (s *Service) ApplyDiscount(ctx context.Context, cartID uuid.UUID, kind discount.Kind, value decimal.Decimal, reason string) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	d, err := discount.New(kind, value, reason)
	if err != nil {
		recordDiscount(string(kind), "rejected")
		return View{}, err
	}
	c.Discount = &d
	c.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, c); err != nil {
		recordDiscount(string(kind), "error")
		return View{}, fmt.Errorf("save cart: %w", err)
	}
	recordDiscount(string(kind), "ok")
	return s.view(c), nil
}

// RemoveDiscount clears the applied discount.
func (s *Service) RemoveDiscount(ctx context.Context, cartID uuid.UUID) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	c.Discount = nil
	c.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, c); err != nil {
		return View{}, fmt.Errorf("save cart: %w", err)
	}
	return s.view(c), nil
}

func recordOp(op, result string) {
	if obs.CartOperationsTotal != nil {
		obs.CartOperationsTotal.WithLabelValues(op, result).Inc()
	}
}

func recordDiscount(kind, result string) {
	if obs.DiscountAppliedTotal != nil {
		obs.DiscountAppliedTotal.WithLabelValues(kind, result).Inc()
	}
}
