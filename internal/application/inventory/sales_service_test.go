package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type salesFixture struct {
	sales  *SalesService
	ledger *LedgerService
	scope  *MemoryTransactionScope
}

func newSalesFixture() *salesFixture {
	scope := NewMemoryTransactionScope()
	logger := zap.NewNop()
	return &salesFixture{
		sales:  NewSalesService(scope, logger),
		ledger: NewLedgerService(scope, logger),
		scope:  scope,
	}
}

func (f *salesFixture) stock(t *testing.T, tenantID, productID uuid.UUID, location inventory.LocationRef, quantity int64) {
	t.Helper()
	_, err := f.ledger.AdjustQuantity(context.Background(), tenantID, productID, location, decimal.NewFromInt(quantity), uuid.New())
	require.NoError(t, err)
}

func (f *salesFixture) quantity(t *testing.T, tenantID, productID uuid.UUID, location inventory.LocationRef) decimal.Decimal {
	t.Helper()
	quantity, err := f.ledger.GetQuantity(context.Background(), tenantID, productID, location)
	require.NoError(t, err)
	return quantity
}

func TestSalesService_RecordSale(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	branchID := uuid.New()
	location := inventory.BranchRef(branchID)
	actor := uuid.New()

	t.Run("decrements stock for every line", func(t *testing.T) {
		f := newSalesFixture()
		productA := uuid.New()
		productB := uuid.New()
		f.stock(t, tenantID, productA, location, 10)
		f.stock(t, tenantID, productB, location, 5)

		movements, err := f.sales.RecordSale(ctx, tenantID, branchID, "SALE-001", []SaleLine{
			{ProductID: productA, Quantity: decimal.NewFromInt(3)},
			{ProductID: productB, Quantity: decimal.NewFromInt(5)},
		}, actor)

		require.NoError(t, err)
		assert.Len(t, movements, 2)
		assert.Equal(t, decimal.NewFromInt(7), f.quantity(t, tenantID, productA, location))
		assert.True(t, f.quantity(t, tenantID, productB, location).IsZero())
	})

	t.Run("is all-or-nothing when one line is short", func(t *testing.T) {
		f := newSalesFixture()
		productA := uuid.New()
		productB := uuid.New()
		f.stock(t, tenantID, productA, location, 10)
		f.stock(t, tenantID, productB, location, 2)

		_, err := f.sales.RecordSale(ctx, tenantID, branchID, "SALE-002", []SaleLine{
			{ProductID: productA, Quantity: decimal.NewFromInt(3)},
			{ProductID: productB, Quantity: decimal.NewFromInt(5)},
		}, actor)

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		var insufficientErr *inventory.InsufficientStockError
		require.True(t, errors.As(err, &insufficientErr))
		assert.Equal(t, productB, insufficientErr.ProductID)

		// Neither line applied
		assert.Equal(t, decimal.NewFromInt(10), f.quantity(t, tenantID, productA, location))
		assert.Equal(t, decimal.NewFromInt(2), f.quantity(t, tenantID, productB, location))
	})

	t.Run("fails against a product never stocked", func(t *testing.T) {
		f := newSalesFixture()

		_, err := f.sales.RecordSale(ctx, tenantID, branchID, "SALE-003", []SaleLine{
			{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)},
		}, actor)

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("rejects duplicate product lines", func(t *testing.T) {
		f := newSalesFixture()
		productID := uuid.New()
		f.stock(t, tenantID, productID, location, 10)

		_, err := f.sales.RecordSale(ctx, tenantID, branchID, "SALE-004", []SaleLine{
			{ProductID: productID, Quantity: decimal.NewFromInt(1)},
			{ProductID: productID, Quantity: decimal.NewFromInt(2)},
		}, actor)

		require.Error(t, err)
		assert.Equal(t, decimal.NewFromInt(10), f.quantity(t, tenantID, productID, location))
	})

	t.Run("rejects empty and invalid lines", func(t *testing.T) {
		f := newSalesFixture()

		_, err := f.sales.RecordSale(ctx, tenantID, branchID, "SALE-005", nil, actor)
		require.Error(t, err)

		_, err = f.sales.RecordSale(ctx, tenantID, branchID, "SALE-006", []SaleLine{
			{ProductID: uuid.New(), Quantity: decimal.Zero},
		}, actor)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)

		_, err = f.sales.RecordSale(ctx, tenantID, branchID, "", []SaleLine{
			{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)},
		}, actor)
		require.Error(t, err)
	})

	t.Run("records sale movements with running balances", func(t *testing.T) {
		f := newSalesFixture()
		productID := uuid.New()
		f.stock(t, tenantID, productID, location, 10)

		_, err := f.sales.RecordSale(ctx, tenantID, branchID, "SALE-007", []SaleLine{
			{ProductID: productID, Quantity: decimal.NewFromInt(4)},
		}, actor)
		require.NoError(t, err)

		err = f.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			movements, err := repos.Movements().FindBySource(ctx, tenantID, inventory.SourceTypeSale, "SALE-007")
			require.NoError(t, err)
			require.Len(t, movements, 1)
			assert.Equal(t, inventory.MovementTypeSale, movements[0].MovementType)
			assert.Equal(t, decimal.NewFromInt(10), movements[0].BalanceBefore)
			assert.Equal(t, decimal.NewFromInt(6), movements[0].BalanceAfter)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestSalesService_RecordReturn(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	branchID := uuid.New()
	location := inventory.BranchRef(branchID)
	actor := uuid.New()

	t.Run("increments existing stock", func(t *testing.T) {
		f := newSalesFixture()
		productID := uuid.New()
		f.stock(t, tenantID, productID, location, 5)

		_, err := f.sales.RecordReturn(ctx, tenantID, branchID, "RET-001", []SaleLine{
			{ProductID: productID, Quantity: decimal.NewFromInt(2)},
		}, actor)

		require.NoError(t, err)
		assert.Equal(t, decimal.NewFromInt(7), f.quantity(t, tenantID, productID, location))
	})

	t.Run("creates entry for a product never stocked here", func(t *testing.T) {
		f := newSalesFixture()
		productID := uuid.New()

		_, err := f.sales.RecordReturn(ctx, tenantID, branchID, "RET-002", []SaleLine{
			{ProductID: productID, Quantity: decimal.NewFromInt(3)},
		}, actor)

		require.NoError(t, err)
		assert.Equal(t, decimal.NewFromInt(3), f.quantity(t, tenantID, productID, location))
	})
}

// One hundred goroutines race to sell one unit each from a stock of fifty.
// Exactly fifty must succeed, the rest must fail with insufficient stock, and
// the final quantity must be exactly zero, never negative.
func TestSalesService_ConcurrentSales(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	branchID := uuid.New()
	location := inventory.BranchRef(branchID)
	productID := uuid.New()

	f := newSalesFixture()
	f.stock(t, tenantID, productID, location, 50)

	const attempts = 100
	results := make(chan error, attempts)
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := f.sales.RecordSale(ctx, tenantID, branchID, uuid.New().String(), []SaleLine{
				{ProductID: productID, Quantity: decimal.NewFromInt(1)},
			}, uuid.New())
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded, failed := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, shared.ErrInsufficientStock)
		failed++
	}

	assert.Equal(t, 50, succeeded)
	assert.Equal(t, 50, failed)
	assert.True(t, f.quantity(t, tenantID, productID, location).IsZero())
}
