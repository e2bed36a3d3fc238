package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"packhouse/internal/apperror"
)

func newTestInventory(t *testing.T, qty, reserved int) *Inventory {
	t.Helper()
	inv, err := NewInventory(uuid.New(), uuid.New())
	require.NoError(t, err)
	inv.Quantity = qty
	inv.ReservedQuantity = reserved
	return inv
}

func TestNewInventoryRequiresIDs(t *testing.T) {
	_, err := NewInventory(uuid.Nil, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))

	_, err = NewInventory(uuid.New(), uuid.Nil)
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))

	inv, err := NewInventory(uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Quantity)
	assert.Equal(t, 1, inv.Version)
}

func TestAdjustQuantity(t *testing.T) {
	inv := newTestInventory(t, 10, 0)

	require.NoError(t, inv.AdjustQuantity(5))
	assert.Equal(t, 15, inv.Quantity)

	require.NoError(t, inv.AdjustQuantity(-15))
	assert.Equal(t, 0, inv.Quantity)
}

func TestAdjustQuantityRejectsZeroDelta(t *testing.T) {
	inv := newTestInventory(t, 10, 0)
	err := inv.AdjustQuantity(0)
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
	assert.Equal(t, 10, inv.Quantity)
}

func TestAdjustQuantityNeverGoesNegative(t *testing.T) {
	inv := newTestInventory(t, 3, 0)
	err := inv.AdjustQuantity(-4)
	assert.True(t, apperror.Is(err, apperror.KindInsufficientStock))
	// Aggregate unchanged after rejection.
	assert.Equal(t, 3, inv.Quantity)
}

func TestAdjustQuantityProtectsReservations(t *testing.T) {
	inv := newTestInventory(t, 10, 6)
	// Removing 5 would leave 5 on hand against 6 reserved.
	err := inv.AdjustQuantity(-5)
	assert.True(t, apperror.Is(err, apperror.KindInsufficientStock))
	assert.Equal(t, 10, inv.Quantity)

	// Removing 4 exactly consumes the free pool.
	require.NoError(t, inv.AdjustQuantity(-4))
	assert.Equal(t, 0, inv.Available())
}

func TestReserveAndRelease(t *testing.T) {
	inv := newTestInventory(t, 10, 0)

	require.NoError(t, inv.Reserve(7))
	assert.Equal(t, 3, inv.Available())
	assert.Equal(t, 10, inv.Quantity) // on-hand untouched

	err := inv.Reserve(4)
	assert.True(t, apperror.Is(err, apperror.KindInsufficientStock))

	require.NoError(t, inv.Release(5))
	assert.Equal(t, 8, inv.Available())

	err = inv.Release(3)
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
}

func TestReserveRejectsNonPositive(t *testing.T) {
	inv := newTestInventory(t, 10, 0)
	assert.True(t, apperror.Is(inv.Reserve(0), apperror.KindInvalidArgument))
	assert.True(t, apperror.Is(inv.Reserve(-1), apperror.KindInvalidArgument))
	assert.True(t, apperror.Is(inv.Release(0), apperror.KindInvalidArgument))
}

func TestBelowMinimum(t *testing.T) {
	inv := newTestInventory(t, 5, 0)
	assert.False(t, inv.BelowMinimum()) // no threshold configured

	inv.MinimumStock = 5
	assert.True(t, inv.BelowMinimum())

	inv.Quantity = 6
	assert.False(t, inv.BelowMinimum())
}

func TestNewStockMovementSnapshotConsistency(t *testing.T) {
	inv := newTestInventory(t, 10, 0)
	actor := uuid.New()

	m, err := NewStockMovement(inv, MovementPurchase, 10, 15, actor)
	require.NoError(t, err)
	assert.Equal(t, 5, m.Quantity)
	assert.Equal(t, 5, m.Delta())

	m, err = NewStockMovement(inv, MovementSale, 15, 12, actor)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Quantity) // magnitude, always positive
	assert.Equal(t, -3, m.Delta())

	_, err = NewStockMovement(inv, MovementAdjustment, 10, 10, actor)
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))

	_, err = NewStockMovement(inv, MovementPurchase, 10, 15, uuid.Nil)
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
}

func TestParseMovementTypeRejectsUnknown(t *testing.T) {
	for _, valid := range []string{"purchase", "sale", "return", "adjustment", "transfer", "damage"} {
		_, err := ParseMovementType(valid)
		assert.NoError(t, err, valid)
	}
	_, err := ParseMovementType("restock")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	_, err = ParseMovementType("")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
