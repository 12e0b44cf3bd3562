package persistence

import (
	"context"
	"strings"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements StockMovementRepository using GORM.
// Movements are append-only; there is deliberately no update or delete.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Create appends one movement record
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// CreateBatch appends movement records in one insert
func (r *GormStockMovementRepository) CreateBatch(ctx context.Context, movements []*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(movements).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// FindByLedgerEntry returns the movement history of one ledger entry
func (r *GormStockMovementRepository) FindByLedgerEntry(ctx context.Context, tenantID, ledgerEntryID uuid.UUID, filter shared.Filter) ([]*inventory.StockMovement, int64, error) {
	return r.findWhere(filter,
		r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
			Where("tenant_id = ? AND ledger_entry_id = ?", tenantID, ledgerEntryID))
}

// FindBySource returns all movements caused by one source document
func (r *GormStockMovementRepository) FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType inventory.SourceType, sourceID string) ([]*inventory.StockMovement, error) {
	var movements []*inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND source_type = ? AND source_id = ?", tenantID, sourceType, sourceID).
		Order("occurred_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// List returns a page of a tenant's movements
func (r *GormStockMovementRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*inventory.StockMovement, int64, error) {
	return r.findWhere(filter,
		r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
			Where("tenant_id = ?", tenantID))
}

func (r *GormStockMovementRepository) findWhere(filter shared.Filter, query *gorm.DB) ([]*inventory.StockMovement, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []*inventory.StockMovement
	if err := r.applyFilter(query, filter).Find(&movements).Error; err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

// applyFilter applies filter options to the query
func (r *GormStockMovementRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := filter.OrderBy
	if orderBy == "" || orderBy == "created_at" {
		orderBy = "occurred_at"
	}
	orderDir := "DESC"
	if strings.ToLower(filter.OrderDir) == "asc" {
		orderDir = "ASC"
	}
	return query.Order(orderBy + " " + orderDir)
}

// Ensure GormStockMovementRepository implements StockMovementRepository
var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
