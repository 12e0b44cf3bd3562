package inventory

import (
	"time"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntry is the quantity-on-hand record for one product at one location.
// It is the aggregate root for all stock mutations and the single source of
// truth for the quantity invariant: Quantity never goes below zero, and at most
// one entry exists per (tenant, product, location). A row may sit at quantity
// zero indefinitely; zero is a stable state, not a deletion trigger.
type LedgerEntry struct {
	shared.TenantAggregateRoot
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_product_location,priority:2"`
	LocationType LocationType    `gorm:"type:varchar(10);not null;uniqueIndex:idx_ledger_product_location,priority:3"`
	LocationID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_product_location,priority:4"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UpdatedBy    uuid.UUID       `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// NewLedgerEntry creates a zero-quantity ledger entry for a product-location pair
func NewLedgerEntry(tenantID, productID uuid.UUID, location LocationRef) (*LedgerEntry, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if err := location.Validate(); err != nil {
		return nil, err
	}

	return &LedgerEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		LocationType:        location.Type,
		LocationID:          location.ID,
		Quantity:            decimal.Zero,
	}, nil
}

// Location returns the entry's location as a LocationRef
func (e *LedgerEntry) Location() LocationRef {
	return LocationRef{Type: e.LocationType, ID: e.LocationID}
}

// LockKey returns the global lock-ordering key for this entry.
// Multi-row operations sort their targets by this key before locking.
func (e *LedgerEntry) LockKey() string {
	return LockKey(e.ProductID, e.Location())
}

// LockKey builds the lock-ordering key for a product-location pair without an entry
func LockKey(productID uuid.UUID, location LocationRef) string {
	return location.Key() + ":" + productID.String()
}

// CanFulfill returns true if the on-hand quantity covers the requested quantity
func (e *LedgerEntry) CanFulfill(quantity decimal.Decimal) bool {
	return e.Quantity.GreaterThanOrEqual(quantity)
}

// Adjust applies a relative quantity change. The check and the write are one
// step on the aggregate; callers must hold the row lock for the whole
// transaction so no other writer can interleave between read and commit.
func (e *LedgerEntry) Adjust(delta decimal.Decimal, actor uuid.UUID) error {
	if delta.IsZero() {
		return shared.ErrInvalidQuantity
	}

	newQuantity := e.Quantity.Add(delta)
	if newQuantity.IsNegative() {
		return NewInsufficientStockError(e.ProductID, e.Location(), delta.Neg(), e.Quantity)
	}

	before := e.Quantity
	e.Quantity = newQuantity
	e.UpdatedBy = actor
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	e.AddDomainEvent(NewStockAdjustedEvent(e, before, newQuantity, actor))
	return nil
}

// SetQuantity overwrites the on-hand quantity (manual stock correction)
func (e *LedgerEntry) SetQuantity(quantity decimal.Decimal, actor uuid.UUID) error {
	if quantity.IsNegative() {
		return shared.ErrInvalidQuantity
	}

	before := e.Quantity
	e.Quantity = quantity
	e.UpdatedBy = actor
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	e.AddDomainEvent(NewStockAdjustedEvent(e, before, quantity, actor))
	return nil
}
