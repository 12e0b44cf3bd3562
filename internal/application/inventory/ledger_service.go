package inventory

import (
	"context"
	"errors"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService handles direct ledger reads and manual stock corrections
type LedgerService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(scope TransactionScope, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		scope:  scope,
		logger: logger,
	}
}

// GetQuantity returns the on-hand quantity for a product at a location.
// A missing ledger entry reads as zero; it is not an error.
func (s *LedgerService) GetQuantity(ctx context.Context, tenantID, productID uuid.UUID, location inventory.LocationRef) (decimal.Decimal, error) {
	if err := location.Validate(); err != nil {
		return decimal.Zero, err
	}

	quantity := decimal.Zero
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entry, err := repos.Ledger().FindByKey(ctx, tenantID, productID, location)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil
			}
			return err
		}
		quantity = entry.Quantity
		return nil
	})
	return quantity, err
}

// AdjustQuantity applies a relative stock correction. A positive delta against
// a missing entry creates the entry; a negative delta against a missing entry
// fails as insufficient stock without creating anything.
func (s *LedgerService) AdjustQuantity(ctx context.Context, tenantID, productID uuid.UUID, location inventory.LocationRef, delta decimal.Decimal, actor uuid.UUID) (*inventory.LedgerEntry, error) {
	if err := location.Validate(); err != nil {
		return nil, err
	}
	if delta.IsZero() {
		return nil, shared.ErrInvalidQuantity
	}

	var result *inventory.LedgerEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entry, err := repos.Ledger().FindByKeyForUpdate(ctx, tenantID, productID, location)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			if delta.IsNegative() {
				return inventory.NewInsufficientStockError(productID, location, delta.Neg(), decimal.Zero)
			}
			entry, err = repos.Ledger().GetOrCreate(ctx, tenantID, productID, location)
			if err != nil {
				return err
			}
		}

		before := entry.Quantity
		if err := entry.Adjust(delta, actor); err != nil {
			return err
		}

		movementType := inventory.MovementTypeAdjustmentIncrease
		if delta.IsNegative() {
			movementType = inventory.MovementTypeAdjustmentDecrease
		}
		movement, err := inventory.NewStockMovement(entry, movementType, delta.Abs(),
			before, entry.Quantity, inventory.SourceTypeManualAdjustment, entry.ID.String(), actor)
		if err != nil {
			return err
		}
		if err := repos.Movements().Create(ctx, movement); err != nil {
			return err
		}
		if err := repos.Ledger().Save(ctx, entry); err != nil {
			return err
		}

		result = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logEvents(result)
	return result, nil
}

// SetQuantity overwrites the on-hand quantity, creating the entry if needed.
// Used for stocktake corrections where the counted value is authoritative.
func (s *LedgerService) SetQuantity(ctx context.Context, tenantID, productID uuid.UUID, location inventory.LocationRef, quantity decimal.Decimal, actor uuid.UUID) (*inventory.LedgerEntry, error) {
	if err := location.Validate(); err != nil {
		return nil, err
	}
	if quantity.IsNegative() {
		return nil, shared.ErrInvalidQuantity
	}

	var result *inventory.LedgerEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entry, err := repos.Ledger().GetOrCreate(ctx, tenantID, productID, location)
		if err != nil {
			return err
		}

		before := entry.Quantity
		if err := entry.SetQuantity(quantity, actor); err != nil {
			return err
		}

		// No movement when the counted value matches the ledger
		if !before.Equal(quantity) {
			movementType := inventory.MovementTypeAdjustmentIncrease
			if quantity.LessThan(before) {
				movementType = inventory.MovementTypeAdjustmentDecrease
			}
			movement, err := inventory.NewStockMovement(entry, movementType, quantity.Sub(before).Abs(),
				before, quantity, inventory.SourceTypeManualAdjustment, entry.ID.String(), actor)
			if err != nil {
				return err
			}
			if err := repos.Movements().Create(ctx, movement); err != nil {
				return err
			}
		}

		if err := repos.Ledger().Save(ctx, entry); err != nil {
			return err
		}
		result = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logEvents(result)
	return result, nil
}

// ListByLocation returns the stock levels held at a location
func (s *LedgerService) ListByLocation(ctx context.Context, tenantID uuid.UUID, location inventory.LocationRef, filter shared.Filter) ([]StockLevel, error) {
	if err := location.Validate(); err != nil {
		return nil, err
	}

	var levels []StockLevel
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entries, err := repos.Ledger().FindByLocation(ctx, tenantID, location, filter)
		if err != nil {
			return err
		}
		levels = make([]StockLevel, 0, len(entries))
		for _, entry := range entries {
			levels = append(levels, StockLevel{
				ProductID:    entry.ProductID,
				LocationType: entry.LocationType.String(),
				LocationID:   entry.LocationID,
				Quantity:     entry.Quantity,
			})
		}
		return nil
	})
	return levels, err
}

// TotalQuantity sums a product's on-hand quantity across all locations
func (s *LedgerService) TotalQuantity(ctx context.Context, tenantID, productID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sum, err := repos.Ledger().SumByProduct(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		total = sum
		return nil
	})
	return total, err
}

// ListMovements returns the movement audit trail for a tenant
func (s *LedgerService) ListMovements(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*inventory.StockMovement, int64, error) {
	var movements []*inventory.StockMovement
	var total int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		movements, total, err = repos.Movements().List(ctx, tenantID, filter)
		return err
	})
	return movements, total, err
}

// logEvents drains the aggregate's pending events into the structured log
func (s *LedgerService) logEvents(root shared.AggregateRoot) {
	if root == nil {
		return
	}
	for _, event := range root.GetDomainEvents() {
		s.logger.Debug("domain event",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.String("tenant_id", event.TenantID().String()),
		)
	}
	root.ClearDomainEvents()
}
