package inventory

import (
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeStockAdjusted     = "inventory.stock_adjusted"
	EventTypeTransferCreated   = "inventory.transfer_created"
	EventTypeTransferApproved  = "inventory.transfer_approved"
	EventTypeTransferRejected  = "inventory.transfer_rejected"
	EventTypeTransferCompleted = "inventory.transfer_completed"
)

// StockAdjustedEvent is raised whenever a ledger entry's quantity changes
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductID    uuid.UUID       `json:"product_id"`
	LocationType LocationType    `json:"location_type"`
	LocationID   uuid.UUID       `json:"location_id"`
	Before       decimal.Decimal `json:"before"`
	After        decimal.Decimal `json:"after"`
	ActorID      uuid.UUID       `json:"actor_id"`
}

// NewStockAdjustedEvent creates a StockAdjustedEvent from a ledger entry mutation
func NewStockAdjustedEvent(entry *LedgerEntry, before, after decimal.Decimal, actor uuid.UUID) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, entry.ID, "LedgerEntry", entry.TenantID),
		ProductID:       entry.ProductID,
		LocationType:    entry.LocationType,
		LocationID:      entry.LocationID,
		Before:          before,
		After:           after,
		ActorID:         actor,
	}
}

// TransferCreatedEvent is raised when a transfer enters PENDING state
type TransferCreatedEvent struct {
	shared.BaseDomainEvent
	SourceType      LocationType `json:"source_type"`
	SourceID        uuid.UUID    `json:"source_id"`
	DestinationType LocationType `json:"destination_type"`
	DestinationID   uuid.UUID    `json:"destination_id"`
	InitiatedBy     uuid.UUID    `json:"initiated_by"`
}

// NewTransferCreatedEvent creates a TransferCreatedEvent
func NewTransferCreatedEvent(transfer *Transfer) *TransferCreatedEvent {
	return &TransferCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCreated, transfer.ID, "Transfer", transfer.TenantID),
		SourceType:      transfer.SourceType,
		SourceID:        transfer.SourceID,
		DestinationType: transfer.DestinationType,
		DestinationID:   transfer.DestinationID,
		InitiatedBy:     transfer.InitiatedBy,
	}
}

// TransferApprovedEvent is raised when a transfer is approved
type TransferApprovedEvent struct {
	shared.BaseDomainEvent
	ApprovedBy uuid.UUID `json:"approved_by"`
}

// NewTransferApprovedEvent creates a TransferApprovedEvent
func NewTransferApprovedEvent(transfer *Transfer, approvedBy uuid.UUID) *TransferApprovedEvent {
	return &TransferApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferApproved, transfer.ID, "Transfer", transfer.TenantID),
		ApprovedBy:      approvedBy,
	}
}

// TransferRejectedEvent is raised when a transfer is rejected
type TransferRejectedEvent struct {
	shared.BaseDomainEvent
}

// NewTransferRejectedEvent creates a TransferRejectedEvent
func NewTransferRejectedEvent(transfer *Transfer) *TransferRejectedEvent {
	return &TransferRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferRejected, transfer.ID, "Transfer", transfer.TenantID),
	}
}

// TransferCompletedEvent is raised when the two-sided stock move has been applied
type TransferCompletedEvent struct {
	shared.BaseDomainEvent
	ItemCount int `json:"item_count"`
}

// NewTransferCompletedEvent creates a TransferCompletedEvent
func NewTransferCompletedEvent(transfer *Transfer) *TransferCompletedEvent {
	return &TransferCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCompleted, transfer.ID, "Transfer", transfer.TenantID),
		ItemCount:       len(transfer.Items),
	}
}
