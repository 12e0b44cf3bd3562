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

// TransferService drives the transfer lifecycle. State transitions mutate only
// the transfer row; the ledger is touched exactly once, at completion, where
// both sides of the move commit or roll back together.
type TransferService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewTransferService creates a new TransferService
func NewTransferService(scope TransactionScope, logger *zap.Logger) *TransferService {
	return &TransferService{
		scope:  scope,
		logger: logger,
	}
}

// CreateTransfer creates a PENDING transfer after a soft availability check at
// the source. The check is advisory for the lifetime of the transfer but
// binding at creation: a request for more than the source currently holds is
// rejected outright. Stock is not reserved; the binding re-check happens at
// completion.
func (s *TransferService) CreateTransfer(ctx context.Context, tenantID uuid.UUID, source, destination inventory.LocationRef, lines []TransferLine, initiator uuid.UUID) (*inventory.Transfer, error) {
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_TRANSFER", "Transfer must contain at least one item")
	}

	transfer, err := inventory.NewTransfer(tenantID, source, destination, initiator)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if err := transfer.AddItem(line.ProductID, line.Quantity, line.UnitCost); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, item := range transfer.Items {
			entry, err := repos.Ledger().FindByKey(ctx, tenantID, item.ProductID, source)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return inventory.NewInsufficientStockError(item.ProductID, source, item.Quantity, decimal.Zero)
				}
				return err
			}
			if !entry.CanFulfill(item.Quantity) {
				return inventory.NewInsufficientStockError(item.ProductID, source, item.Quantity, entry.Quantity)
			}
		}
		return repos.Transfers().Create(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("source", source.String()),
		zap.String("destination", destination.String()),
		zap.Int("items", len(transfer.Items)),
	)
	transfer.ClearDomainEvents()
	return transfer, nil
}

// ApproveTransfer moves a PENDING transfer to APPROVED
func (s *TransferService) ApproveTransfer(ctx context.Context, tenantID, transferID, approver uuid.UUID) (*inventory.Transfer, error) {
	return s.mutate(ctx, tenantID, transferID, func(transfer *inventory.Transfer) error {
		return transfer.Approve(approver)
	})
}

// RejectTransfer terminates a PENDING or APPROVED transfer with no ledger effect
func (s *TransferService) RejectTransfer(ctx context.Context, tenantID, transferID uuid.UUID) (*inventory.Transfer, error) {
	return s.mutate(ctx, tenantID, transferID, func(transfer *inventory.Transfer) error {
		return transfer.Reject()
	})
}

// MarkInTransit records dispatch of an APPROVED transfer
func (s *TransferService) MarkInTransit(ctx context.Context, tenantID, transferID uuid.UUID) (*inventory.Transfer, error) {
	return s.mutate(ctx, tenantID, transferID, func(transfer *inventory.Transfer) error {
		return transfer.MarkInTransit()
	})
}

// mutate runs a state-only transition under the transfer row lock
func (s *TransferService) mutate(ctx context.Context, tenantID, transferID uuid.UUID, fn func(*inventory.Transfer) error) (*inventory.Transfer, error) {
	var result *inventory.Transfer
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		transfer, err := repos.Transfers().FindByIDForUpdate(ctx, tenantID, transferID)
		if err != nil {
			return err
		}
		if err := fn(transfer); err != nil {
			return err
		}
		if err := repos.Transfers().Save(ctx, transfer); err != nil {
			return err
		}
		result = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer state changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("transfer_id", transferID.String()),
		zap.String("status", result.Status.String()),
	)
	result.ClearDomainEvents()
	return result, nil
}

// lockTarget is one ledger row the completion must lock, with its planned delta
type lockTarget struct {
	key       string
	productID uuid.UUID
	location  inventory.LocationRef
	delta     decimal.Decimal
}

// CompleteTransfer applies the two-sided stock move and marks the transfer
// COMPLETED, all in one transaction. Completing an already-completed transfer
// is a no-op success, so retries after a lost response are safe. The binding
// availability check happens here: any short source line aborts the whole
// completion and the transfer stays in its prior state.
func (s *TransferService) CompleteTransfer(ctx context.Context, tenantID, transferID, actor uuid.UUID) (*inventory.Transfer, error) {
	var result *inventory.Transfer
	alreadyCompleted := false

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		alreadyCompleted = false
		transfer, err := repos.Transfers().FindByIDForUpdate(ctx, tenantID, transferID)
		if err != nil {
			return err
		}
		if transfer.IsCompleted() {
			alreadyCompleted = true
			result = transfer
			return nil
		}
		if err := transfer.Complete(); err != nil {
			return err
		}

		source := transfer.Source()
		destination := transfer.Destination()

		// Two rows per item, locked strictly in ascending key order
		targets := make([]lockTarget, 0, len(transfer.Items)*2)
		for _, item := range transfer.Items {
			targets = append(targets,
				lockTarget{
					key:       inventory.LockKey(item.ProductID, source),
					productID: item.ProductID,
					location:  source,
					delta:     item.Quantity.Neg(),
				},
				lockTarget{
					key:       inventory.LockKey(item.ProductID, destination),
					productID: item.ProductID,
					location:  destination,
					delta:     item.Quantity,
				},
			)
		}
		sort.Slice(targets, func(i, j int) bool { return targets[i].key < targets[j].key })

		entries := make(map[string]*inventory.LedgerEntry, len(targets))
		for _, target := range targets {
			entry, err := repos.Ledger().GetOrCreate(ctx, tenantID, target.productID, target.location)
			if err != nil {
				return err
			}
			entries[target.key] = entry
		}

		movements := make([]*inventory.StockMovement, 0, len(targets))
		for _, target := range targets {
			entry := entries[target.key]
			before := entry.Quantity
			if err := entry.Adjust(target.delta, actor); err != nil {
				return err
			}

			movementType := inventory.MovementTypeTransferIn
			if target.delta.IsNegative() {
				movementType = inventory.MovementTypeTransferOut
			}
			movement, err := inventory.NewStockMovement(entry, movementType, target.delta.Abs(),
				before, entry.Quantity, inventory.SourceTypeTransfer, transfer.ID.String(), actor)
			if err != nil {
				return err
			}
			movements = append(movements, movement)

			if err := repos.Ledger().Save(ctx, entry); err != nil {
				return err
			}
			entry.ClearDomainEvents()
		}

		if err := repos.Movements().CreateBatch(ctx, movements); err != nil {
			return err
		}
		if err := repos.Transfers().Save(ctx, transfer); err != nil {
			return err
		}
		result = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}

	if alreadyCompleted {
		s.logger.Info("transfer already completed, no-op",
			zap.String("tenant_id", tenantID.String()),
			zap.String("transfer_id", transferID.String()),
		)
		return result, nil
	}

	s.logger.Info("transfer completed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("transfer_id", transferID.String()),
		zap.Int("items", len(result.Items)),
	)
	result.ClearDomainEvents()
	return result, nil
}

// GetTransfer returns a transfer with its items
func (s *TransferService) GetTransfer(ctx context.Context, tenantID, transferID uuid.UUID) (*inventory.Transfer, error) {
	var result *inventory.Transfer
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		transfer, err := repos.Transfers().FindByID(ctx, tenantID, transferID)
		if err != nil {
			return err
		}
		result = transfer
		return nil
	})
	return result, err
}

// ListTransfers returns a page of transfers, optionally filtered by status
func (s *TransferService) ListTransfers(ctx context.Context, tenantID uuid.UUID, status *inventory.TransferStatus, filter shared.Filter) (shared.Paginated[*inventory.Transfer], error) {
	var page shared.Paginated[*inventory.Transfer]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var transfers []*inventory.Transfer
		var total int64
		var err error
		if status != nil {
			transfers, total, err = repos.Transfers().FindByStatus(ctx, tenantID, *status, filter)
		} else {
			transfers, total, err = repos.Transfers().List(ctx, tenantID, filter)
		}
		if err != nil {
			return err
		}
		page = shared.NewPaginated(transfers, total, filter.Page, filter.PageSize)
		return nil
	})
	return page, err
}
