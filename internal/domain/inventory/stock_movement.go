package inventory

import (
	"time"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType represents the direction and cause of a stock movement
type MovementType string

const (
	// MovementTypeSale represents stock leaving a branch through a sale
	MovementTypeSale MovementType = "SALE"
	// MovementTypeReturn represents stock coming back to a branch through a return
	MovementTypeReturn MovementType = "RETURN"
	// MovementTypeAdjustmentIncrease represents a positive manual correction
	MovementTypeAdjustmentIncrease MovementType = "ADJUSTMENT_INCREASE"
	// MovementTypeAdjustmentDecrease represents a negative manual correction
	MovementTypeAdjustmentDecrease MovementType = "ADJUSTMENT_DECREASE"
	// MovementTypeTransferOut represents stock leaving the source of a transfer
	MovementTypeTransferOut MovementType = "TRANSFER_OUT"
	// MovementTypeTransferIn represents stock arriving at the destination of a transfer
	MovementTypeTransferIn MovementType = "TRANSFER_IN"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeSale,
		MovementTypeReturn,
		MovementTypeAdjustmentIncrease,
		MovementTypeAdjustmentDecrease,
		MovementTypeTransferOut,
		MovementTypeTransferIn:
		return true
	}
	return false
}

// IsIncrease returns true if this movement type increases on-hand quantity
func (t MovementType) IsIncrease() bool {
	switch t {
	case MovementTypeReturn, MovementTypeAdjustmentIncrease, MovementTypeTransferIn:
		return true
	}
	return false
}

// SourceType represents the source document type for a movement
type SourceType string

const (
	// SourceTypeSale is a point-of-sale sale
	SourceTypeSale SourceType = "SALE"
	// SourceTypeReturn is a customer return
	SourceTypeReturn SourceType = "RETURN"
	// SourceTypeTransfer is an inter-location transfer
	SourceTypeTransfer SourceType = "TRANSFER"
	// SourceTypeManualAdjustment is a direct stock correction
	SourceTypeManualAdjustment SourceType = "MANUAL_ADJUSTMENT"
)

// String returns the string representation of SourceType
func (s SourceType) String() string {
	return string(s)
}

// IsValid returns true if the source type is valid
func (s SourceType) IsValid() bool {
	switch s {
	case SourceTypeSale, SourceTypeReturn, SourceTypeTransfer, SourceTypeManualAdjustment:
		return true
	}
	return false
}

// StockMovement is an immutable audit record of one ledger mutation.
// Once created, movements cannot be modified; corrections are new movements.
type StockMovement struct {
	shared.BaseEntity
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_tenant_time,priority:1"`
	LedgerEntryID uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_entry"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_product"`
	LocationType  LocationType    `gorm:"type:varchar(10);not null"`
	LocationID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_location"`
	MovementType  MovementType    `gorm:"type:varchar(30);not null;index:idx_movement_type"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Always positive, direction given by type
	BalanceBefore decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SourceType    SourceType      `gorm:"type:varchar(30);not null;index:idx_movement_source,priority:1"`
	SourceID      string          `gorm:"type:varchar(50);not null;index:idx_movement_source,priority:2"`
	ActorID       uuid.UUID       `gorm:"type:uuid"`
	OccurredAt    time.Time       `gorm:"type:timestamptz;not null;index:idx_movement_tenant_time,priority:2"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new stock movement record
func NewStockMovement(
	entry *LedgerEntry,
	movementType MovementType,
	quantity decimal.Decimal,
	balanceBefore decimal.Decimal,
	balanceAfter decimal.Decimal,
	sourceType SourceType,
	sourceID string,
	actor uuid.UUID,
) (*StockMovement, error) {
	if entry == nil {
		return nil, shared.NewDomainError("INVALID_LEDGER_ENTRY", "Ledger entry cannot be nil")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if !sourceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_TYPE", "Invalid source type")
	}
	if sourceID == "" {
		return nil, shared.NewDomainError("INVALID_SOURCE_ID", "Source ID cannot be empty")
	}

	return &StockMovement{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      entry.TenantID,
		LedgerEntryID: entry.ID,
		ProductID:     entry.ProductID,
		LocationType:  entry.LocationType,
		LocationID:    entry.LocationID,
		MovementType:  movementType,
		Quantity:      quantity,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		SourceType:    sourceType,
		SourceID:      sourceID,
		ActorID:       actor,
		OccurredAt:    time.Now(),
	}, nil
}

// SignedQuantity returns the quantity with sign based on movement type
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.MovementType.IsIncrease() {
		return m.Quantity
	}
	return m.Quantity.Neg()
}

// Location returns the movement's location as a LocationRef
func (m *StockMovement) Location() LocationRef {
	return LocationRef{Type: m.LocationType, ID: m.LocationID}
}
