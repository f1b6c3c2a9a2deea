package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dawadesk/backend-pharmacy/internal/discount"
	"github.com/dawadesk/backend-pharmacy/internal/pricing"
)

// ErrCartNotFound indicates the requested cart could not be located.
var ErrCartNotFound = errors.New("cart not found")

// ErrItemNotFound indicates the cart has no line for the given batch.
var ErrItemNotFound = errors.New("cart item not found")

// ErrOutOfStock is returned when the batch has no remaining quantity.
var ErrOutOfStock = errors.New("out of stock")

// ErrInsufficientStock is returned when the requested quantity exceeds the
// batch's remaining stock.
var ErrInsufficientStock = errors.New("insufficient stock")

// LineItem is a single batch in the cart with its quantity and the stock
// snapshot captured when the line was created.
type LineItem struct {
	BatchID     uuid.UUID       `json:"batchId"`
	DrugID      uuid.UUID       `json:"drugId"`
	DrugName    string          `json:"drugName"`
	Dosage      string          `json:"dosage"`
	BatchNumber string          `json:"batchNumber"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Available   int             `json:"available"`
	Quantity    int             `json:"quantity"`
}

// LineTotal returns unit price times quantity rounded to cents.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity))).Round(2)
}

// Cart is a register session: its lines plus an optional discount.
type Cart struct {
	ID        uuid.UUID          `json:"id"`
	Items     []LineItem         `json:"items"`
	Discount  *discount.Discount `json:"discount,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// New constructs an empty cart.
func New(id uuid.UUID, now time.Time) *Cart {
	return &Cart{ID: id, Items: []LineItem{}, CreatedAt: now, UpdatedAt: now}
}

// Add inserts item with the given quantity, merging into an existing line
// for the same batch. The merged quantity may never exceed the stock
// snapshot carried on the line.
func (c *Cart) Add(item LineItem, qty int) error {
	if qty <= 0 {
		qty = 1
	}
	if item.Available <= 0 {
		return ErrOutOfStock
	}
	for i := range c.Items {
		if c.Items[i].BatchID == item.BatchID {
			if c.Items[i].Quantity+qty > c.Items[i].Available {
				return ErrInsufficientStock
			}
			c.Items[i].Quantity += qty
			return nil
		}
	}
	if qty > item.Available {
		return ErrInsufficientStock
	}
	item.Quantity = qty
	c.Items = append(c.Items, item)
	return nil
}

// SetQuantity replaces the quantity on the line for batchID. A quantity of
// zero or less removes the line.
func (c *Cart) SetQuantity(batchID uuid.UUID, qty int) error {
	for i := range c.Items {
		if c.Items[i].BatchID != batchID {
			continue
		}
		if qty <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
		if qty > c.Items[i].Available {
			return ErrInsufficientStock
		}
		c.Items[i].Quantity = qty
		return nil
	}
	return ErrItemNotFound
}

// Remove drops the line for batchID. Removing an absent line is a no-op.
func (c *Cart) Remove(batchID uuid.UUID) {
	for i := range c.Items {
		if c.Items[i].BatchID == batchID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Clear drops every line and the applied discount.
func (c *Cart) Clear() {
	c.Items = []LineItem{}
	c.Discount = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// UnitCount returns the total number of units across all lines.
func (c *Cart) UnitCount() int {
	var n int
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Subtotal sums the line totals before discount and tax.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// Totals prices the cart under the given tax rate, applying the attached
// discount if any.
func (c *Cart) Totals(taxRate decimal.Decimal) pricing.Summary {
	items := make([]pricing.Item, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, pricing.Item{Qty: it.Quantity, UnitPrice: it.UnitPrice})
	}
	discountAmount := decimal.Zero
	if c.Discount != nil {
		if amount, err := c.Discount.Amount(c.Subtotal()); err == nil {
			discountAmount = amount
		}
	}
	return pricing.Compute(items, discountAmount, taxRate)
}
