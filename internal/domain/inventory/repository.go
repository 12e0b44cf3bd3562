package inventory

import (
	"context"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerRepository manages persistence for ledger entries.
// FindByKeyForUpdate acquires an exclusive row lock that is held until the
// surrounding transaction commits; it only makes sense inside a transaction
// scope. Callers locking several rows must do so in ascending LockKey order.
type LedgerRepository interface {
	Create(ctx context.Context, entry *LedgerEntry) error
	// GetOrCreate returns the existing entry for the key or inserts a
	// zero-quantity one, racing inserts resolving to the surviving row.
	GetOrCreate(ctx context.Context, tenantID, productID uuid.UUID, location LocationRef) (*LedgerEntry, error)
	FindByKey(ctx context.Context, tenantID, productID uuid.UUID, location LocationRef) (*LedgerEntry, error)
	FindByKeyForUpdate(ctx context.Context, tenantID, productID uuid.UUID, location LocationRef) (*LedgerEntry, error)
	FindByLocation(ctx context.Context, tenantID uuid.UUID, location LocationRef, filter shared.Filter) ([]*LedgerEntry, error)
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*LedgerEntry, error)
	Save(ctx context.Context, entry *LedgerEntry) error
	// SaveWithVersion persists the entry only if the stored version still
	// matches expectedVersion, returning shared.ErrConcurrencyConflict otherwise.
	SaveWithVersion(ctx context.Context, entry *LedgerEntry, expectedVersion int) error
	CountByLocation(ctx context.Context, tenantID uuid.UUID, location LocationRef) (int64, error)
	SumByProduct(ctx context.Context, tenantID, productID uuid.UUID) (decimal.Decimal, error)
}

// TransferRepository manages persistence for transfers and their items
type TransferRepository interface {
	Create(ctx context.Context, transfer *Transfer) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Transfer, error)
	// FindByIDForUpdate locks the transfer row so concurrent completions
	// serialize on it before touching any ledger rows.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Transfer, error)
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status TransferStatus, filter shared.Filter) ([]*Transfer, int64, error)
	FindByLocation(ctx context.Context, tenantID uuid.UUID, location LocationRef, filter shared.Filter) ([]*Transfer, int64, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Transfer, int64, error)
	Save(ctx context.Context, transfer *Transfer) error
}

// StockMovementRepository manages the append-only movement audit trail
type StockMovementRepository interface {
	Create(ctx context.Context, movement *StockMovement) error
	CreateBatch(ctx context.Context, movements []*StockMovement) error
	FindByLedgerEntry(ctx context.Context, tenantID, ledgerEntryID uuid.UUID, filter shared.Filter) ([]*StockMovement, int64, error)
	FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType SourceType, sourceID string) ([]*StockMovement, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*StockMovement, int64, error)
}
