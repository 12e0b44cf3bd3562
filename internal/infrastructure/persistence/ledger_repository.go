package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	pgUniqueViolation = "23505"
	pgLockNotAvail    = "55P03"
)

// translateError maps Postgres error codes onto domain errors. Lock timeouts
// surface as busy so callers can retry; unique violations on the ledger key
// surface as duplicate entry.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvail:
			return shared.ErrBusy
		case pgUniqueViolation:
			return shared.ErrDuplicateLedger
		}
	}
	return err
}

// GormLedgerRepository implements LedgerRepository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Create inserts a new ledger entry, failing on a duplicate key
func (r *GormLedgerRepository) Create(ctx context.Context, entry *inventory.LedgerEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// GetOrCreate returns the entry for the key, inserting a zero-quantity one if
// absent. The insert uses ON CONFLICT DO NOTHING so two racing creators both
// converge on the surviving row, which is then read under FOR UPDATE.
func (r *GormLedgerRepository) GetOrCreate(ctx context.Context, tenantID, productID uuid.UUID, location inventory.LocationRef) (*inventory.LedgerEntry, error) {
	fresh, err := inventory.NewLedgerEntry(tenantID, productID, location)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "tenant_id"}, {Name: "product_id"},
				{Name: "location_type"}, {Name: "location_id"},
			},
			DoNothing: true,
		}).
		Create(fresh).Error; err != nil {
		return nil, translateError(err)
	}

	return r.FindByKeyForUpdate(ctx, tenantID, productID, location)
}

// FindByKey finds a ledger entry without locking it
func (r *GormLedgerRepository) FindByKey(ctx context.Context, tenantID, productID uuid.UUID, location inventory.LocationRef) (*inventory.LedgerEntry, error) {
	var entry inventory.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND location_type = ? AND location_id = ?",
			tenantID, productID, location.Type, location.ID).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, translateError(err)
	}
	return &entry, nil
}

// FindByKeyForUpdate finds a ledger entry and takes an exclusive row lock held
// until the surrounding transaction ends
func (r *GormLedgerRepository) FindByKeyForUpdate(ctx context.Context, tenantID, productID uuid.UUID, location inventory.LocationRef) (*inventory.LedgerEntry, error) {
	var entry inventory.LedgerEntry
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND product_id = ? AND location_type = ? AND location_id = ?",
			tenantID, productID, location.Type, location.ID).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, translateError(err)
	}
	return &entry, nil
}

// FindByLocation finds all ledger entries at a location
func (r *GormLedgerRepository) FindByLocation(ctx context.Context, tenantID uuid.UUID, location inventory.LocationRef, filter shared.Filter) ([]*inventory.LedgerEntry, error) {
	var entries []*inventory.LedgerEntry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
			Where("tenant_id = ? AND location_type = ? AND location_id = ?",
				tenantID, location.Type, location.ID),
		filter,
	)
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByProduct finds a product's ledger entries across all locations
func (r *GormLedgerRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*inventory.LedgerEntry, error) {
	var entries []*inventory.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Save updates an existing ledger entry
func (r *GormLedgerRepository) Save(ctx context.Context, entry *inventory.LedgerEntry) error {
	if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// SaveWithVersion persists the entry only if the stored version still matches
func (r *GormLedgerRepository) SaveWithVersion(ctx context.Context, entry *inventory.LedgerEntry, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(entry).
		Where("id = ? AND version = ?", entry.ID, expectedVersion).
		Updates(map[string]interface{}{
			"quantity":   entry.Quantity,
			"version":    entry.Version,
			"updated_by": entry.UpdatedBy,
			"updated_at": entry.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CountByLocation counts ledger entries at a location
func (r *GormLedgerRepository) CountByLocation(ctx context.Context, tenantID uuid.UUID, location inventory.LocationRef) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.LedgerEntry{}).
		Where("tenant_id = ? AND location_type = ? AND location_id = ?",
			tenantID, location.Type, location.ID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumByProduct sums a product's quantity across all locations
func (r *GormLedgerRepository) SumByProduct(ctx context.Context, tenantID, productID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.LedgerEntry{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// applyFilter applies filter options to the query
func (r *GormLedgerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	}
	return query
}

// Ensure GormLedgerRepository implements LedgerRepository
var _ inventory.LedgerRepository = (*GormLedgerRepository)(nil)
