package inventory

import (
	"fmt"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InsufficientStockError reports a ledger mutation that would drive a quantity
// below zero. It always names the offending product and location so the caller
// can surface "insufficient stock for SKU X at location Y".
type InsufficientStockError struct {
	ProductID uuid.UUID
	Location  LocationRef
	Requested decimal.Decimal
	Available decimal.Decimal
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s at %s: requested %s, available %s",
		e.ProductID, e.Location, e.Requested, e.Available)
}

// Is makes the error match shared.ErrInsufficientStock under errors.Is
func (e *InsufficientStockError) Is(target error) bool {
	return target == shared.ErrInsufficientStock
}

// NewInsufficientStockError creates an InsufficientStockError
func NewInsufficientStockError(productID uuid.UUID, location LocationRef, requested, available decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID: productID,
		Location:  location,
		Requested: requested,
		Available: available,
	}
}

// InvalidTransitionError reports a transfer state transition that the state
// machine does not permit.
type InvalidTransitionError struct {
	From TransferStatus
	To   TransferStatus
}

// Error implements the error interface
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transfer transition from %s to %s", e.From, e.To)
}

// Is makes the error match shared.ErrInvalidState under errors.Is
func (e *InvalidTransitionError) Is(target error) bool {
	return target == shared.ErrInvalidState
}

// NewInvalidTransitionError creates an InvalidTransitionError
func NewInvalidTransitionError(from, to TransferStatus) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}
