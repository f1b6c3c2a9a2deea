// Package model holds the sales record types in a leaf package so that
// both the sales handlers and the receipt formatter can depend on them
// without importing each other.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleItem is one sold cart line, priced at the moment of sale.
type SaleItem struct {
	ID          uuid.UUID       `json:"id"`
	SaleID      uuid.UUID       `json:"saleId"`
	BatchID     uuid.UUID       `json:"batchId"`
	DrugID      uuid.UUID       `json:"drugId"`
	DrugName    string          `json:"drugName"`
	Dosage      string          `json:"dosage"`
	BatchNumber string          `json:"batchNumber"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// Sale is a completed checkout recorded against inventory.
type Sale struct {
	ID             uuid.UUID        `json:"id"`
	ReceiptNumber  string           `json:"receiptNumber"`
	Items          []SaleItem       `json:"items"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	Discount       decimal.Decimal  `json:"discount"`
	DiscountReason string           `json:"discountReason,omitempty"`
	Tax            decimal.Decimal  `json:"tax"`
	Total          decimal.Decimal  `json:"total"`
	PaymentMethod  string           `json:"paymentMethod"`
	AmountTendered *decimal.Decimal `json:"amountTendered,omitempty"`
	Change         *decimal.Decimal `json:"change,omitempty"`
	CustomerName   string           `json:"customerName,omitempty"`
	CustomerPhone  string           `json:"customerPhone,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}
