// Package discount evaluates one-off checkout discounts. A discount applies
// to exactly one checkout attempt and is discarded after completion or
// cancellation.
package discount

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidDiscount is returned when a discount value is zero or negative.
var ErrInvalidDiscount = errors.New("invalid discount")

// Kind distinguishes percentage and fixed-amount discounts.
type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
)

// ParseKind validates a discount kind string.
func ParseKind(value string) (Kind, error) {
	switch Kind(value) {
	case KindPercentage, KindFixed:
		return Kind(value), nil
	default:
		return "", fmt.Errorf("unknown discount kind %q: %w", value, ErrInvalidDiscount)
	}
}

// Discount captures a single adjustment to a cart subtotal.
type Discount struct {
	Kind   Kind            `json:"kind"`
	Value  decimal.Decimal `json:"value"`
	Reason string          `json:"reason,omitempty"`
}

// New validates and constructs a discount.
func New(kind Kind, value decimal.Decimal, reason string) (Discount, error) {
	if kind != KindPercentage && kind != KindFixed {
		return Discount{}, fmt.Errorf("unknown discount kind %q: %w", kind, ErrInvalidDiscount)
	}
	if !value.IsPositive() {
		return Discount{}, fmt.Errorf("discount value must be positive: %w", ErrInvalidDiscount)
	}
	return Discount{Kind: kind, Value: value, Reason: reason}, nil
}

// Amount evaluates the discount against a subtotal. Percentage values are
// taken literally (no clamp at 100 here); the pricing engine caps the final
// amount at the subtotal.
func (d Discount) Amount(subtotal decimal.Decimal) (decimal.Decimal, error) {
	if !d.Value.IsPositive() {
		return decimal.Zero, fmt.Errorf("discount value must be positive: %w", ErrInvalidDiscount)
	}
	switch d.Kind {
	case KindPercentage:
		return subtotal.Mul(d.Value).Div(decimal.NewFromInt(100)).Round(2), nil
	case KindFixed:
		return d.Value, nil
	default:
		return decimal.Zero, fmt.Errorf("unknown discount kind %q: %w", d.Kind, ErrInvalidDiscount)
	}
}

// Preset is a commonly applied discount offered as a one-tap shortcut at the
// register.
type Preset struct {
	Label  string          `json:"label"`
	Kind   Kind            `json:"kind"`
	Value  decimal.Decimal `json:"value"`
	Reason string          `json:"reason"`
}

// Presets returns the built-in register shortcuts.
func Presets() []Preset {
	return []Preset{
		{Label: "Senior Citizen", Kind: KindPercentage, Value: decimal.NewFromInt(10), Reason: "Senior citizen discount"},
		{Label: "Student", Kind: KindPercentage, Value: decimal.NewFromInt(5), Reason: "Student discount"},
		{Label: "Staff", Kind: KindPercentage, Value: decimal.NewFromInt(15), Reason: "Staff discount"},
		{Label: "Bulk Purchase", Kind: KindFixed, Value: decimal.NewFromInt(50), Reason: "Bulk purchase discount"},
	}
}
