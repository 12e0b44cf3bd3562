package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTransferRepository implements TransferRepository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// Create inserts a transfer together with its items
func (r *GormTransferRepository) Create(ctx context.Context, transfer *inventory.Transfer) error {
	if err := r.db.WithContext(ctx).Create(transfer).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// FindByID finds a transfer with its items within a tenant
func (r *GormTransferRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Transfer, error) {
	var transfer inventory.Transfer
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, translateError(err)
	}
	return &transfer, nil
}

// FindByIDForUpdate locks the transfer row, then loads its items.
// Concurrent lifecycle calls for the same transfer serialize here before any
// ledger row is touched.
func (r *GormTransferRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Transfer, error) {
	var transfer inventory.Transfer
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, translateError(err)
	}

	if err := r.db.WithContext(ctx).
		Where("transfer_id = ?", transfer.ID).
		Order("created_at ASC").
		Find(&transfer.Items).Error; err != nil {
		return nil, translateError(err)
	}
	return &transfer, nil
}

// FindByStatus finds transfers in a given status
func (r *GormTransferRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status inventory.TransferStatus, filter shared.Filter) ([]*inventory.Transfer, int64, error) {
	return r.findWhere(ctx, filter,
		r.db.WithContext(ctx).Model(&inventory.Transfer{}).
			Where("tenant_id = ? AND status = ?", tenantID, status))
}

// FindByLocation finds transfers touching a location on either side
func (r *GormTransferRepository) FindByLocation(ctx context.Context, tenantID uuid.UUID, location inventory.LocationRef, filter shared.Filter) ([]*inventory.Transfer, int64, error) {
	return r.findWhere(ctx, filter,
		r.db.WithContext(ctx).Model(&inventory.Transfer{}).
			Where("tenant_id = ?", tenantID).
			Where("(source_type = ? AND source_id = ?) OR (destination_type = ? AND destination_id = ?)",
				location.Type, location.ID, location.Type, location.ID))
}

// List returns a page of a tenant's transfers
func (r *GormTransferRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*inventory.Transfer, int64, error) {
	return r.findWhere(ctx, filter,
		r.db.WithContext(ctx).Model(&inventory.Transfer{}).
			Where("tenant_id = ?", tenantID))
}

func (r *GormTransferRepository) findWhere(_ context.Context, filter shared.Filter, query *gorm.DB) ([]*inventory.Transfer, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transfers []*inventory.Transfer
	if err := r.applyFilter(query, filter).Preload("Items").Find(&transfers).Error; err != nil {
		return nil, 0, err
	}
	return transfers, total, nil
}

// Save updates a transfer and its items
func (r *GormTransferRepository) Save(ctx context.Context, transfer *inventory.Transfer) error {
	if err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(transfer).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormTransferRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	orderDir := "DESC"
	if strings.ToLower(filter.OrderDir) == "asc" {
		orderDir = "ASC"
	}
	return query.Order(orderBy + " " + orderDir)
}

// Ensure GormTransferRepository implements TransferRepository
var _ inventory.TransferRepository = (*GormTransferRepository)(nil)
