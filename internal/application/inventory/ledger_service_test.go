package inventory

import (
	"context"
	"testing"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLedgerService() (*LedgerService, *MemoryTransactionScope) {
	scope := NewMemoryTransactionScope()
	return NewLedgerService(scope, zap.NewNop()), scope
}

func TestLedgerService_GetQuantity(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	location := inventory.BranchRef(uuid.New())

	t.Run("missing entry reads as zero", func(t *testing.T) {
		service, _ := newTestLedgerService()

		quantity, err := service.GetQuantity(ctx, tenantID, productID, location)

		require.NoError(t, err)
		assert.True(t, quantity.IsZero())
	})

	t.Run("returns stored quantity", func(t *testing.T) {
		service, _ := newTestLedgerService()
		_, err := service.AdjustQuantity(ctx, tenantID, productID, location, decimal.NewFromInt(25), uuid.New())
		require.NoError(t, err)

		quantity, err := service.GetQuantity(ctx, tenantID, productID, location)

		require.NoError(t, err)
		assert.Equal(t, decimal.NewFromInt(25), quantity)
	})

	t.Run("rejects invalid location", func(t *testing.T) {
		service, _ := newTestLedgerService()

		_, err := service.GetQuantity(ctx, tenantID, productID, inventory.LocationRef{})

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidLocation)
	})

	t.Run("tenants are isolated", func(t *testing.T) {
		service, _ := newTestLedgerService()
		_, err := service.AdjustQuantity(ctx, tenantID, productID, location, decimal.NewFromInt(25), uuid.New())
		require.NoError(t, err)

		quantity, err := service.GetQuantity(ctx, uuid.New(), productID, location)

		require.NoError(t, err)
		assert.True(t, quantity.IsZero())
	})
}

func TestLedgerService_AdjustQuantity(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	location := inventory.WarehouseRef(uuid.New())
	actor := uuid.New()

	t.Run("positive delta creates missing entry", func(t *testing.T) {
		service, _ := newTestLedgerService()

		entry, err := service.AdjustQuantity(ctx, tenantID, productID, location, decimal.NewFromInt(10), actor)

		require.NoError(t, err)
		assert.Equal(t, decimal.NewFromInt(10), entry.Quantity)
		assert.Equal(t, actor, entry.UpdatedBy)
	})

	t.Run("negative delta on missing entry fails without creating it", func(t *testing.T) {
		service, _ := newTestLedgerService()

		_, err := service.AdjustQuantity(ctx, tenantID, productID, location, decimal.NewFromInt(-5), actor)

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		// Still reads as zero and no phantom row was committed
		quantity, err := service.GetQuantity(ctx, tenantID, productID, location)
		require.NoError(t, err)
		assert.True(t, quantity.IsZero())
	})

	t.Run("negative delta beyond stock fails and leaves quantity intact", func(t *testing.T) {
		service, _ := newTestLedgerService()
		_, err := service.AdjustQuantity(ctx, tenantID, productID, location, decimal.NewFromInt(3), actor)
		require.NoError(t, err)

		_, err = service.AdjustQuantity(ctx, tenantID, productID, location, decimal.NewFromInt(-5), actor)

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		quantity, err := service.GetQuantity(ctx, tenantID, productID, location)
		require.NoError(t, err)
		assert.Equal(t, decimal.NewFromInt(3), quantity)
	})

	t.Run("zero delta rejected", func(t *testing.T) {
		service, _ := newTestLedgerService()

		_, err := service.AdjustQuantity(ctx, tenantID, productID, location, decimal.Zero, actor)

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})

	t.Run("records an adjustment movement", func(t *testing.T) {
		service, _ := newTestLedgerService()
		entry, err := service.AdjustQuantity(ctx, tenantID, productID, location, decimal.NewFromInt(10), actor)
		require.NoError(t, err)

		movements, total, err := service.ListMovements(ctx, tenantID, shared.DefaultFilter())

		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, movements, 1)
		assert.Equal(t, inventory.MovementTypeAdjustmentIncrease, movements[0].MovementType)
		assert.Equal(t, entry.ID, movements[0].LedgerEntryID)
		assert.True(t, movements[0].BalanceBefore.IsZero())
		assert.Equal(t, decimal.NewFromInt(10), movements[0].BalanceAfter)
	})
}

func TestLedgerService_SetQuantity(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	location := inventory.BranchRef(uuid.New())
	actor := uuid.New()

	t.Run("creates entry at counted value", func(t *testing.T) {
		service, _ := newTestLedgerService()

		entry, err := service.SetQuantity(ctx, tenantID, productID, location, decimal.NewFromInt(42), actor)

		require.NoError(t, err)
		assert.Equal(t, decimal.NewFromInt(42), entry.Quantity)
	})

	t.Run("overwrites downward and records decrease movement", func(t *testing.T) {
		service, _ := newTestLedgerService()
		_, err := service.SetQuantity(ctx, tenantID, productID, location, decimal.NewFromInt(42), actor)
		require.NoError(t, err)

		_, err = service.SetQuantity(ctx, tenantID, productID, location, decimal.NewFromInt(40), actor)
		require.NoError(t, err)

		movements, _, err := service.ListMovements(ctx, tenantID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, movements, 2)
		assert.Equal(t, inventory.MovementTypeAdjustmentDecrease, movements[0].MovementType)
		assert.Equal(t, decimal.NewFromInt(2), movements[0].Quantity)
	})

	t.Run("setting to zero keeps the row", func(t *testing.T) {
		service, _ := newTestLedgerService()
		_, err := service.SetQuantity(ctx, tenantID, productID, location, decimal.NewFromInt(5), actor)
		require.NoError(t, err)

		_, err = service.SetQuantity(ctx, tenantID, productID, location, decimal.Zero, actor)
		require.NoError(t, err)

		levels, err := service.ListByLocation(ctx, tenantID, location, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, levels, 1)
		assert.True(t, levels[0].Quantity.IsZero())
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		service, _ := newTestLedgerService()

		_, err := service.SetQuantity(ctx, tenantID, productID, location, decimal.NewFromInt(-1), actor)

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})
}

func TestLedgerService_TotalQuantity(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	actor := uuid.New()

	service, _ := newTestLedgerService()
	_, err := service.AdjustQuantity(ctx, tenantID, productID, inventory.BranchRef(uuid.New()), decimal.NewFromInt(10), actor)
	require.NoError(t, err)
	_, err = service.AdjustQuantity(ctx, tenantID, productID, inventory.WarehouseRef(uuid.New()), decimal.NewFromInt(30), actor)
	require.NoError(t, err)

	total, err := service.TotalQuantity(ctx, tenantID, productID)

	require.NoError(t, err)
	assert.Equal(t, decimal.NewFromInt(40), total)
}
