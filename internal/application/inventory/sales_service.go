package inventory

import (
	"context"
	"errors"
	"sort"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SalesService applies point-of-sale documents to the ledger.
// A sale or return is all-or-nothing: either every line lands or none do.
type SalesService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewSalesService creates a new SalesService
func NewSalesService(scope TransactionScope, logger *zap.Logger) *SalesService {
	return &SalesService{
		scope:  scope,
		logger: logger,
	}
}

// RecordSale decrements branch stock for every line of a sale. If any line
// lacks stock the whole sale fails and no line is applied. Ledger rows are
// locked in ascending lock-key order so concurrent sales never deadlock.
func (s *SalesService) RecordSale(ctx context.Context, tenantID, branchID uuid.UUID, saleID string, lines []SaleLine, actor uuid.UUID) ([]*inventory.StockMovement, error) {
	location := inventory.BranchRef(branchID)
	if err := validateLines(location, saleID, lines); err != nil {
		return nil, err
	}

	ordered := sortLinesByLockKey(location, lines)

	var movements []*inventory.StockMovement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		movements = movements[:0]
		for _, line := range ordered {
			entry, err := repos.Ledger().FindByKeyForUpdate(ctx, tenantID, line.ProductID, location)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return inventory.NewInsufficientStockError(line.ProductID, location, line.Quantity, decimal.Zero)
				}
				return err
			}

			before := entry.Quantity
			if err := entry.Adjust(line.Quantity.Neg(), actor); err != nil {
				return err
			}

			movement, err := inventory.NewStockMovement(entry, inventory.MovementTypeSale,
				line.Quantity, before, entry.Quantity, inventory.SourceTypeSale, saleID, actor)
			if err != nil {
				return err
			}
			movements = append(movements, movement)

			if err := repos.Ledger().Save(ctx, entry); err != nil {
				return err
			}
			entry.ClearDomainEvents()
		}
		return repos.Movements().CreateBatch(ctx, movements)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale applied",
		zap.String("tenant_id", tenantID.String()),
		zap.String("branch_id", branchID.String()),
		zap.String("sale_id", saleID),
		zap.Int("lines", len(lines)),
	)
	return movements, nil
}

// RecordReturn increments branch stock for every line of a customer return.
// Returned products may have no ledger entry yet; entries are created as needed.
func (s *SalesService) RecordReturn(ctx context.Context, tenantID, branchID uuid.UUID, returnID string, lines []SaleLine, actor uuid.UUID) ([]*inventory.StockMovement, error) {
	location := inventory.BranchRef(branchID)
	if err := validateLines(location, returnID, lines); err != nil {
		return nil, err
	}

	ordered := sortLinesByLockKey(location, lines)

	var movements []*inventory.StockMovement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		movements = movements[:0]
		for _, line := range ordered {
			entry, err := repos.Ledger().GetOrCreate(ctx, tenantID, line.ProductID, location)
			if err != nil {
				return err
			}

			before := entry.Quantity
			if err := entry.Adjust(line.Quantity, actor); err != nil {
				return err
			}

			movement, err := inventory.NewStockMovement(entry, inventory.MovementTypeReturn,
				line.Quantity, before, entry.Quantity, inventory.SourceTypeReturn, returnID, actor)
			if err != nil {
				return err
			}
			movements = append(movements, movement)

			if err := repos.Ledger().Save(ctx, entry); err != nil {
				return err
			}
			entry.ClearDomainEvents()
		}
		return repos.Movements().CreateBatch(ctx, movements)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("return applied",
		zap.String("tenant_id", tenantID.String()),
		zap.String("branch_id", branchID.String()),
		zap.String("return_id", returnID),
		zap.Int("lines", len(lines)),
	)
	return movements, nil
}

// validateLines checks sale/return lines before any transaction is opened
func validateLines(location inventory.LocationRef, sourceID string, lines []SaleLine) error {
	if err := location.Validate(); err != nil {
		return err
	}
	if sourceID == "" {
		return shared.NewDomainError("INVALID_SOURCE_ID", "Source document ID cannot be empty")
	}
	if len(lines) == 0 {
		return shared.NewDomainError("EMPTY_DOCUMENT", "Document must contain at least one line")
	}

	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
		}
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return shared.ErrInvalidQuantity
		}
		if _, dup := seen[line.ProductID]; dup {
			return shared.NewDomainError("DUPLICATE_LINE", "Product appears more than once in document")
		}
		seen[line.ProductID] = struct{}{}
	}
	return nil
}

// sortLinesByLockKey returns a copy of lines in global lock acquisition order
func sortLinesByLockKey(location inventory.LocationRef, lines []SaleLine) []SaleLine {
	ordered := make([]SaleLine, len(lines))
	copy(ordered, lines)
	sort.Slice(ordered, func(i, j int) bool {
		return inventory.LockKey(ordered[i].ProductID, location) < inventory.LockKey(ordered[j].ProductID, location)
	})
	return ordered
}
