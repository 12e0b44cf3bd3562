package inventory

import (
	"fmt"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LocationType discriminates the two kinds of physical stock locations
type LocationType string

const (
	// LocationTypeBranch is a point-of-sale site
	LocationTypeBranch LocationType = "BRANCH"
	// LocationTypeWarehouse is a storage-only site
	LocationTypeWarehouse LocationType = "WAREHOUSE"
)

// String returns the string representation of LocationType
func (t LocationType) String() string {
	return string(t)
}

// IsValid returns true if the location type is valid
func (t LocationType) IsValid() bool {
	return t == LocationTypeBranch || t == LocationTypeWarehouse
}

// LocationRef identifies a stock location as exactly one of branch or warehouse.
// It replaces the two-nullable-foreign-keys encoding: a ref is valid only when the
// type discriminator is set and the ID is non-nil, so "both" and "neither" are
// unrepresentable.
type LocationRef struct {
	Type LocationType
	ID   uuid.UUID
}

// BranchRef creates a LocationRef pointing at a branch
func BranchRef(branchID uuid.UUID) LocationRef {
	return LocationRef{Type: LocationTypeBranch, ID: branchID}
}

// WarehouseRef creates a LocationRef pointing at a warehouse
func WarehouseRef(warehouseID uuid.UUID) LocationRef {
	return LocationRef{Type: LocationTypeWarehouse, ID: warehouseID}
}

// NewLocationRef creates a validated LocationRef
func NewLocationRef(locType LocationType, id uuid.UUID) (LocationRef, error) {
	ref := LocationRef{Type: locType, ID: id}
	if err := ref.Validate(); err != nil {
		return LocationRef{}, err
	}
	return ref, nil
}

// Validate checks the exactly-one-variant invariant
func (l LocationRef) Validate() error {
	if !l.Type.IsValid() || l.ID == uuid.Nil {
		return shared.ErrInvalidLocation
	}
	return nil
}

// IsBranch returns true if the ref points at a branch
func (l LocationRef) IsBranch() bool {
	return l.Type == LocationTypeBranch
}

// IsWarehouse returns true if the ref points at a warehouse
func (l LocationRef) IsWarehouse() bool {
	return l.Type == LocationTypeWarehouse
}

// Equals compares two refs by type and ID
func (l LocationRef) Equals(other LocationRef) bool {
	return l.Type == other.Type && l.ID == other.ID
}

// Key returns a stable sortable key for the location.
// Ledger row locks are always acquired in ascending key order, which gives the
// fixed global lock order that prevents deadlock between opposing transfers.
func (l LocationRef) Key() string {
	prefix := "B"
	if l.Type == LocationTypeWarehouse {
		prefix = "W"
	}
	return prefix + ":" + l.ID.String()
}

// String returns a human-readable representation
func (l LocationRef) String() string {
	return fmt.Sprintf("%s(%s)", l.Type, l.ID)
}
