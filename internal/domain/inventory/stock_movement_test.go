package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovementType_IsIncrease(t *testing.T) {
	tests := []struct {
		movementType MovementType
		isIncrease   bool
	}{
		{MovementTypeSale, false},
		{MovementTypeReturn, true},
		{MovementTypeAdjustmentIncrease, true},
		{MovementTypeAdjustmentDecrease, false},
		{MovementTypeTransferOut, false},
		{MovementTypeTransferIn, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.movementType), func(t *testing.T) {
			assert.Equal(t, tt.isIncrease, tt.movementType.IsIncrease())
		})
	}
}

func TestNewStockMovement(t *testing.T) {
	entry := createTestEntry(t)
	actor := uuid.New()

	t.Run("creates movement from entry", func(t *testing.T) {
		movement, err := NewStockMovement(
			entry,
			MovementTypeSale,
			decimal.NewFromInt(5),
			decimal.NewFromInt(20),
			decimal.NewFromInt(15),
			SourceTypeSale,
			"SALE-001",
			actor,
		)

		require.NoError(t, err)
		assert.Equal(t, entry.TenantID, movement.TenantID)
		assert.Equal(t, entry.ID, movement.LedgerEntryID)
		assert.Equal(t, entry.ProductID, movement.ProductID)
		assert.Equal(t, entry.Location(), movement.Location())
		assert.Equal(t, decimal.NewFromInt(5), movement.Quantity)
		assert.Equal(t, decimal.NewFromInt(20), movement.BalanceBefore)
		assert.Equal(t, decimal.NewFromInt(15), movement.BalanceAfter)
		assert.Equal(t, "SALE-001", movement.SourceID)
		assert.False(t, movement.OccurredAt.IsZero())
	})

	t.Run("rejects nil entry", func(t *testing.T) {
		_, err := NewStockMovement(nil, MovementTypeSale, decimal.NewFromInt(1),
			decimal.Zero, decimal.Zero, SourceTypeSale, "SALE-001", actor)

		require.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewStockMovement(entry, MovementTypeSale, decimal.Zero,
			decimal.Zero, decimal.Zero, SourceTypeSale, "SALE-001", actor)

		require.Error(t, err)
	})

	t.Run("rejects invalid movement type", func(t *testing.T) {
		_, err := NewStockMovement(entry, MovementType("BAD"), decimal.NewFromInt(1),
			decimal.Zero, decimal.Zero, SourceTypeSale, "SALE-001", actor)

		require.Error(t, err)
	})

	t.Run("rejects empty source ID", func(t *testing.T) {
		_, err := NewStockMovement(entry, MovementTypeSale, decimal.NewFromInt(1),
			decimal.Zero, decimal.Zero, SourceTypeSale, "", actor)

		require.Error(t, err)
	})
}

func TestStockMovement_SignedQuantity(t *testing.T) {
	entry := createTestEntry(t)

	outbound, err := NewStockMovement(entry, MovementTypeSale, decimal.NewFromInt(5),
		decimal.NewFromInt(10), decimal.NewFromInt(5), SourceTypeSale, "SALE-001", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, decimal.NewFromInt(-5), outbound.SignedQuantity())

	inbound, err := NewStockMovement(entry, MovementTypeReturn, decimal.NewFromInt(5),
		decimal.NewFromInt(5), decimal.NewFromInt(10), SourceTypeReturn, "RET-001", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, decimal.NewFromInt(5), inbound.SignedQuantity())
}
