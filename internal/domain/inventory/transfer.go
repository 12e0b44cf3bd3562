package inventory

import (
	"time"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus represents the lifecycle state of a transfer
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusApproved  TransferStatus = "APPROVED"
	TransferStatusInTransit TransferStatus = "IN_TRANSIT"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusRejected  TransferStatus = "REJECTED"
)

// String returns the string representation of TransferStatus
func (s TransferStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid TransferStatus
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusPending, TransferStatusApproved, TransferStatusInTransit,
		TransferStatusCompleted, TransferStatusRejected:
		return true
	}
	return false
}

// IsTerminal returns true for states that accept no further transitions
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusCompleted || s == TransferStatusRejected
}

// CanTransitionTo checks if the status can transition to the target status.
// The dispatch step is optional: APPROVED may go straight to COMPLETED.
func (s TransferStatus) CanTransitionTo(target TransferStatus) bool {
	switch s {
	case TransferStatusPending:
		return target == TransferStatusApproved || target == TransferStatusRejected
	case TransferStatusApproved:
		return target == TransferStatusInTransit || target == TransferStatusCompleted || target == TransferStatusRejected
	case TransferStatusInTransit:
		return target == TransferStatusCompleted
	case TransferStatusCompleted, TransferStatusRejected:
		return false
	}
	return false
}

// TransferItem is a line item owned exclusively by its Transfer.
// Items are created at transfer-creation time and never mutated afterwards.
type TransferItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TransferID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_transfer_item_product,priority:1"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_transfer_item_product,priority:2"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (TransferItem) TableName() string {
	return "transfer_items"
}

// Transfer is a request to move quantities of one or more products from one
// location to another, subject to approval. The stock move itself happens only
// at completion time, as one atomic two-sided ledger mutation per item.
type Transfer struct {
	shared.TenantAggregateRoot
	SourceType      LocationType    `gorm:"type:varchar(10);not null"`
	SourceID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_transfer_source"`
	DestinationType LocationType    `gorm:"type:varchar(10);not null"`
	DestinationID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_transfer_destination"`
	Status          TransferStatus  `gorm:"type:varchar(20);not null;index:idx_transfer_status"`
	InitiatedBy     uuid.UUID       `gorm:"type:uuid;not null"`
	ApprovedBy      *uuid.UUID      `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	DispatchedAt    *time.Time
	CompletedAt     *time.Time
	RejectedAt      *time.Time
	Items           []TransferItem `gorm:"foreignKey:TransferID;references:ID"`
}

// TableName returns the table name for GORM
func (Transfer) TableName() string {
	return "transfers"
}

// NewTransfer creates a transfer in PENDING state with no items yet
func NewTransfer(tenantID uuid.UUID, source, destination LocationRef, initiatedBy uuid.UUID) (*Transfer, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}
	if err := destination.Validate(); err != nil {
		return nil, err
	}
	if source.Equals(destination) {
		return nil, shared.NewDomainError("INVALID_TRANSFER", "Source and destination must differ")
	}
	if initiatedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Initiator cannot be empty")
	}

	transfer := &Transfer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SourceType:          source.Type,
		SourceID:            source.ID,
		DestinationType:     destination.Type,
		DestinationID:       destination.ID,
		Status:              TransferStatusPending,
		InitiatedBy:         initiatedBy,
		Items:               make([]TransferItem, 0),
	}

	transfer.AddDomainEvent(NewTransferCreatedEvent(transfer))
	return transfer, nil
}

// Source returns the source location as a LocationRef
func (t *Transfer) Source() LocationRef {
	return LocationRef{Type: t.SourceType, ID: t.SourceID}
}

// Destination returns the destination location as a LocationRef
func (t *Transfer) Destination() LocationRef {
	return LocationRef{Type: t.DestinationType, ID: t.DestinationID}
}

// AddItem appends a line item. Items may only be added while the transfer is
// PENDING, and a product may appear at most once per transfer.
func (t *Transfer) AddItem(productID uuid.UUID, quantity, unitCost decimal.Decimal) error {
	if t.Status != TransferStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Items can only be added to a pending transfer")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	for _, item := range t.Items {
		if item.ProductID == productID {
			return shared.NewDomainError("DUPLICATE_TRANSFER_ITEM", "Product appears more than once in transfer")
		}
	}

	t.Items = append(t.Items, TransferItem{
		ID:         uuid.New(),
		TransferID: t.ID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitCost:   unitCost,
		CreatedAt:  time.Now(),
	})
	t.UpdatedAt = time.Now()
	return nil
}

// HasItems returns true if the transfer carries at least one line item
func (t *Transfer) HasItems() bool {
	return len(t.Items) > 0
}

// IsCompleted returns true once the stock move has been applied
func (t *Transfer) IsCompleted() bool {
	return t.Status == TransferStatusCompleted
}

// Approve moves the transfer from PENDING to APPROVED
func (t *Transfer) Approve(approvedBy uuid.UUID) error {
	if approvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Approver cannot be empty")
	}
	if !t.HasItems() {
		return shared.NewDomainError("EMPTY_TRANSFER", "Cannot approve a transfer with no items")
	}
	if err := t.transition(TransferStatusApproved); err != nil {
		return err
	}

	now := time.Now()
	t.ApprovedBy = &approvedBy
	t.ApprovedAt = &now
	t.AddDomainEvent(NewTransferApprovedEvent(t, approvedBy))
	return nil
}

// Reject terminates the transfer from PENDING or APPROVED; no ledger effect
func (t *Transfer) Reject() error {
	if err := t.transition(TransferStatusRejected); err != nil {
		return err
	}

	now := time.Now()
	t.RejectedAt = &now
	t.AddDomainEvent(NewTransferRejectedEvent(t))
	return nil
}

// MarkInTransit records dispatch of the goods; optional in some flows
func (t *Transfer) MarkInTransit() error {
	if err := t.transition(TransferStatusInTransit); err != nil {
		return err
	}

	now := time.Now()
	t.DispatchedAt = &now
	return nil
}

// Complete records the terminal state transition. The caller is responsible
// for performing the two-sided ledger move in the same transaction before
// persisting this state change.
func (t *Transfer) Complete() error {
	if err := t.transition(TransferStatusCompleted); err != nil {
		return err
	}

	now := time.Now()
	t.CompletedAt = &now
	t.AddDomainEvent(NewTransferCompletedEvent(t))
	return nil
}

// transition applies a status change after checking the state machine
func (t *Transfer) transition(target TransferStatus) error {
	if !t.Status.CanTransitionTo(target) {
		return NewInvalidTransitionError(t.Status, target)
	}
	t.Status = target
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}
