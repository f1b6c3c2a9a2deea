package sales

import (
	"github.com/dawadesk/backend-pharmacy/internal/sales/model"
)

// SaleItem is one sold cart line, priced at the moment of sale.
type SaleItem = model.SaleItem

// Sale is a completed checkout recorded against inventory.
type Sale = model.Sale
