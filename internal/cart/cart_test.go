package cart

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dawadesk/backend-pharmacy/internal/discount"
)

func testItem(price string, available int) LineItem {
	return LineItem{
		BatchID:     uuid.New(),
		DrugID:      uuid.New(),
		DrugName:    "Amoxicillin",
		BatchNumber: "B-100",
		UnitPrice:   decimal.RequireFromString(price),
		Available:   available,
	}
}

func TestAddMergesSameBatch(t *testing.T) {
	c := New(uuid.New(), time.Now())
	item := testItem("10.00", 5)

	require.NoError(t, c.Add(item, 2))
	require.NoError(t, c.Add(item, 1))
	require.Len(t, c.Items, 1)
	require.Equal(t, 3, c.Items[0].Quantity)
	require.Equal(t, 3, c.UnitCount())
}

func TestAddRejectsOutOfStock(t *testing.T) {
	c := New(uuid.New(), time.Now())
	require.ErrorIs(t, c.Add(testItem("10.00", 0), 1), ErrOutOfStock)
	require.True(t, c.IsEmpty())
}

func TestAddEnforcesStockCeiling(t *testing.T) {
	c := New(uuid.New(), time.Now())
	item := testItem("10.00", 3)

	require.NoError(t, c.Add(item, 3))
	require.ErrorIs(t, c.Add(item, 1), ErrInsufficientStock)
	require.Equal(t, 3, c.Items[0].Quantity)
}

func TestAddDefaultsQuantityToOne(t *testing.T) {
	c := New(uuid.New(), time.Now())
	require.NoError(t, c.Add(testItem("10.00", 5), 0))
	require.Equal(t, 1, c.Items[0].Quantity)
}

func TestSetQuantity(t *testing.T) {
	c := New(uuid.New(), time.Now())
	item := testItem("10.00", 5)
	require.NoError(t, c.Add(item, 1))

	require.NoError(t, c.SetQuantity(item.BatchID, 4))
	require.Equal(t, 4, c.Items[0].Quantity)

	require.ErrorIs(t, c.SetQuantity(item.BatchID, 6), ErrInsufficientStock)
	require.Equal(t, 4, c.Items[0].Quantity)

	require.NoError(t, c.SetQuantity(item.BatchID, 0))
	require.True(t, c.IsEmpty())

	require.ErrorIs(t, c.SetQuantity(item.BatchID, 1), ErrItemNotFound)
}

func TestRemoveIsIdempotent(t *testing.T) {
	c := New(uuid.New(), time.Now())
	item := testItem("10.00", 5)
	require.NoError(t, c.Add(item, 1))

	c.Remove(item.BatchID)
	require.True(t, c.IsEmpty())
	c.Remove(item.BatchID)
	require.True(t, c.IsEmpty())
}

func TestClearDropsDiscount(t *testing.T) {
	c := New(uuid.New(), time.Now())
	require.NoError(t, c.Add(testItem("10.00", 5), 1))
	d, err := discount.New(discount.KindFixed, decimal.NewFromInt(5), "")
	require.NoError(t, err)
	c.Discount = &d

	c.Clear()
	require.True(t, c.IsEmpty())
	require.Nil(t, c.Discount)
}

func TestTotalsWithPercentageDiscount(t *testing.T) {
	c := New(uuid.New(), time.Now())
	require.NoError(t, c.Add(testItem("25.00", 10), 4))

	d, err := discount.New(discount.KindPercentage, decimal.NewFromInt(10), "Senior citizen discount")
	require.NoError(t, err)
	c.Discount = &d

	summary := c.Totals(decimal.RequireFromString("0.08"))
	require.True(t, summary.Subtotal.Equal(decimal.RequireFromString("100.00")), summary.Subtotal.String())
	require.True(t, summary.Discount.Equal(decimal.RequireFromString("10.00")), summary.Discount.String())
	require.True(t, summary.Tax.Equal(decimal.RequireFromString("7.20")), summary.Tax.String())
	require.True(t, summary.Total.Equal(decimal.RequireFromString("97.20")), summary.Total.String())
}

func TestTotalsFixedDiscountClampedToSubtotal(t *testing.T) {
	c := New(uuid.New(), time.Now())
	require.NoError(t, c.Add(testItem("15.00", 10), 2))

	d, err := discount.New(discount.KindFixed, decimal.NewFromInt(50), "Bulk purchase discount")
	require.NoError(t, err)
	c.Discount = &d

	summary := c.Totals(decimal.RequireFromString("0.08"))
	require.True(t, summary.Discount.Equal(decimal.RequireFromString("30.00")))
	require.True(t, summary.Total.IsZero())
}

func TestTotalsRepeatableWithoutMutation(t *testing.T) {
	c := New(uuid.New(), time.Now())
	require.NoError(t, c.Add(testItem("25.00", 10), 3))

	d, err := discount.New(discount.KindPercentage, decimal.NewFromInt(10), "Senior citizen discount")
	require.NoError(t, err)
	c.Discount = &d

	rate := decimal.RequireFromString("0.08")
	first := c.Totals(rate)
	second := c.Totals(rate)

	require.True(t, first.Subtotal.Equal(second.Subtotal))
	require.True(t, first.Discount.Equal(second.Discount))
	require.True(t, first.Tax.Equal(second.Tax))
	require.True(t, first.Total.Equal(second.Total))

	require.Len(t, c.Items, 1)
	require.Equal(t, 3, c.Items[0].Quantity)
	require.NotNil(t, c.Discount)
}
