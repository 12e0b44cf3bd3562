package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLine is one product line of a sale or return
type SaleLine struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// TransferLine is one product line of a transfer request
type TransferLine struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// StockLevel is a read-model row pairing a ledger key with its on-hand quantity
type StockLevel struct {
	ProductID    uuid.UUID       `json:"product_id"`
	LocationType string          `json:"location_type"`
	LocationID   uuid.UUID       `json:"location_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}
