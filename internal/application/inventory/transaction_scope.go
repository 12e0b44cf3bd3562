package inventory

import (
	"context"

	"github.com/retailcore/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to inventory repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
//
// Every ledger mutation in this package runs inside a scope: the row locks taken
// by FindByKeyForUpdate live exactly as long as the transaction, so the
// check-then-write on a ledger entry can never interleave with another writer.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all inventory repositories within
// a transaction. All repositories returned share the same underlying database
// transaction.
//
// Aggregate boundary notes:
//   - Ledger: repository for the LedgerEntry aggregate root, the single source
//     of truth for on-hand quantity.
//   - Transfers: repository for the Transfer aggregate root and its items.
//   - Movements: append-only repository for the stock movement audit trail.
type TransactionalRepositories interface {
	// Ledger returns the ledger entry repository scoped to the current transaction
	Ledger() inventory.LedgerRepository
	// Transfers returns the transfer repository scoped to the current transaction
	Transfers() inventory.TransferRepository
	// Movements returns the stock movement repository scoped to the current transaction
	Movements() inventory.StockMovementRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	ledgerRepo   inventory.LedgerRepository
	transferRepo inventory.TransferRepository
	movementRepo inventory.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	ledgerRepo inventory.LedgerRepository,
	transferRepo inventory.TransferRepository,
	movementRepo inventory.StockMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		ledgerRepo:   ledgerRepo,
		transferRepo: transferRepo,
		movementRepo: movementRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Ledger returns the ledger entry repository.
func (s *NoOpTransactionScope) Ledger() inventory.LedgerRepository {
	return s.ledgerRepo
}

// Transfers returns the transfer repository.
func (s *NoOpTransactionScope) Transfers() inventory.TransferRepository {
	return s.transferRepo
}

// Movements returns the stock movement repository.
func (s *NoOpTransactionScope) Movements() inventory.StockMovementRepository {
	return s.movementRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
