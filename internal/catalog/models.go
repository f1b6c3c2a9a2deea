package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups drugs for browsing and reporting.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

// Drug is a catalog entry. Stock lives on batches, not on the drug itself.
type Drug struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	GenericName string     `json:"genericName,omitempty"`
	Brand       string     `json:"brand,omitempty"`
	Dosage      string     `json:"dosage,omitempty"`
	Form        string     `json:"form,omitempty"`
	Barcode     string     `json:"barcode,omitempty"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
}

// Batch is a stocked lot of a drug with its own quantity, expiry, and prices.
type Batch struct {
	ID           uuid.UUID       `json:"id"`
	DrugID       uuid.UUID       `json:"drugId"`
	BatchNumber  string          `json:"batchNumber"`
	Quantity     int             `json:"quantity"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	ExpiryDate   time.Time       `json:"expiryDate"`
}

// BatchWithDrug joins a batch with its drug for register quick-access lists.
type BatchWithDrug struct {
	Batch
	DrugName   string `json:"drugName"`
	DrugDosage string `json:"drugDosage,omitempty"`
}
