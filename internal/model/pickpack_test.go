package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"packhouse/internal/apperror"
)

func newTestPickPack(t *testing.T) *PickPack {
	t.Helper()
	lines := []OrderLine{
		{OrderItemID: uuid.New(), ProductID: uuid.New(), Quantity: 2},
		{OrderItemID: uuid.New(), ProductID: uuid.New(), Quantity: 1},
	}
	pp, err := NewPickPack(uuid.New(), uuid.New(), FormatPackNumber(time.Now(), 1), "", lines)
	require.NoError(t, err)
	return pp
}

func markAll(pp *PickPack, picked, packed bool) {
	now := time.Now()
	for i := range pp.Items {
		if picked {
			pp.Items[i].MarkPicked(now)
		}
		if packed {
			pp.Items[i].MarkPacked(now)
		}
	}
}

func TestNewPickPackSeedsItems(t *testing.T) {
	pp := newTestPickPack(t)
	assert.Equal(t, StatusPending, pp.Status)
	require.Len(t, pp.Items, 2)
	for _, item := range pp.Items {
		assert.Equal(t, pp.ID, item.PickPackID)
		assert.False(t, item.IsPicked)
		assert.False(t, item.IsPacked)
	}
}

func TestNewPickPackRejectsEmptyOrder(t *testing.T) {
	_, err := NewPickPack(uuid.New(), uuid.New(), "PK-20260828-000001", "", nil)
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))

	_, err = NewPickPack(uuid.New(), uuid.New(), "PK-20260828-000001", "",
		[]OrderLine{{OrderItemID: uuid.New(), ProductID: uuid.New(), Quantity: 0}})
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
}

func TestFormatPackNumber(t *testing.T) {
	day := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "PK-20260828-000042", FormatPackNumber(day, 42))
}

func TestHappyPathThroughShipped(t *testing.T) {
	pp := newTestPickPack(t)
	picker, packer := uuid.New(), uuid.New()
	now := time.Now()

	require.NoError(t, pp.StartPicking(picker))
	assert.Equal(t, StatusPicking, pp.Status)
	assert.Equal(t, &picker, pp.PickedBy)

	markAll(pp, true, false)
	require.NoError(t, pp.CompletePicking(now))
	assert.Equal(t, StatusPicked, pp.Status)
	require.NotNil(t, pp.PickedAt)

	require.NoError(t, pp.StartPacking(packer))
	assert.Equal(t, StatusPacking, pp.Status)

	markAll(pp, false, true)
	require.NoError(t, pp.CompletePacking(decimal.NewFromFloat(1.25), "30x20x10 cm", 1, now))
	assert.Equal(t, StatusPacked, pp.Status)
	assert.Equal(t, 1, pp.PackageCount)

	require.NoError(t, pp.Ship(now))
	assert.Equal(t, StatusShipped, pp.Status)
	require.NotNil(t, pp.ShippedAt)
}

func TestOutOfOrderTransitionsRejected(t *testing.T) {
	pp := newTestPickPack(t)
	now := time.Now()

	// Every forward operation except StartPicking is illegal from pending.
	assert.True(t, apperror.Is(pp.CompletePicking(now), apperror.KindInvalidStateTransition))
	assert.True(t, apperror.Is(pp.StartPacking(uuid.New()), apperror.KindInvalidStateTransition))
	assert.True(t, apperror.Is(
		pp.CompletePacking(decimal.NewFromInt(1), "10x10x10 cm", 1, now),
		apperror.KindInvalidStateTransition))
	assert.True(t, apperror.Is(pp.Ship(now), apperror.KindInvalidStateTransition))
	assert.Equal(t, StatusPending, pp.Status)

	// Double start is also rejected.
	require.NoError(t, pp.StartPicking(uuid.New()))
	assert.True(t, apperror.Is(pp.StartPicking(uuid.New()), apperror.KindInvalidStateTransition))
}

func TestCompletePickingRequiresAllItemsPicked(t *testing.T) {
	pp := newTestPickPack(t)
	require.NoError(t, pp.StartPicking(uuid.New()))

	pp.Items[0].MarkPicked(time.Now())
	err := pp.CompletePicking(time.Now())
	assert.True(t, apperror.Is(err, apperror.KindInvalidStateTransition))
	assert.Equal(t, StatusPicking, pp.Status)

	pp.Items[1].MarkPicked(time.Now())
	assert.NoError(t, pp.CompletePicking(time.Now()))
}

func TestCompletePackingRequiresPhysicalAttributes(t *testing.T) {
	pp := newTestPickPack(t)
	require.NoError(t, pp.StartPicking(uuid.New()))
	markAll(pp, true, false)
	require.NoError(t, pp.CompletePicking(time.Now()))
	require.NoError(t, pp.StartPacking(uuid.New()))
	markAll(pp, false, true)

	now := time.Now()
	assert.True(t, apperror.Is(
		pp.CompletePacking(decimal.Zero, "10x10x10 cm", 1, now), apperror.KindInvalidArgument))
	assert.True(t, apperror.Is(
		pp.CompletePacking(decimal.NewFromInt(1), "", 1, now), apperror.KindInvalidArgument))
	assert.True(t, apperror.Is(
		pp.CompletePacking(decimal.NewFromInt(1), "10x10x10 cm", 0, now), apperror.KindInvalidArgument))
	assert.Equal(t, StatusPacking, pp.Status)

	assert.NoError(t, pp.CompletePacking(decimal.NewFromInt(1), "10x10x10 cm", 1, now))
}

func TestCancelFromAnyPreShippedState(t *testing.T) {
	now := time.Now()
	advance := map[string]func(pp *PickPack){
		"pending": func(pp *PickPack) {},
		"picking": func(pp *PickPack) {
			_ = pp.StartPicking(uuid.New())
		},
		"packed": func(pp *PickPack) {
			_ = pp.StartPicking(uuid.New())
			markAll(pp, true, true)
			_ = pp.CompletePicking(now)
			_ = pp.StartPacking(uuid.New())
			_ = pp.CompletePacking(decimal.NewFromInt(1), "10x10x10 cm", 1, now)
		},
	}
	for name, setup := range advance {
		pp := newTestPickPack(t)
		setup(pp)
		assert.NoError(t, pp.Cancel(), name)
		assert.Equal(t, StatusCancelled, pp.Status, name)
		// Cancelled is terminal.
		assert.True(t, apperror.Is(pp.Cancel(), apperror.KindInvalidStateTransition), name)
	}
}

func TestShippedCannotBeCancelled(t *testing.T) {
	pp := newTestPickPack(t)
	now := time.Now()
	require.NoError(t, pp.StartPicking(uuid.New()))
	markAll(pp, true, true)
	require.NoError(t, pp.CompletePicking(now))
	require.NoError(t, pp.StartPacking(uuid.New()))
	require.NoError(t, pp.CompletePacking(decimal.NewFromInt(1), "10x10x10 cm", 1, now))
	require.NoError(t, pp.Ship(now))

	assert.True(t, apperror.Is(pp.Cancel(), apperror.KindInvalidStateTransition))
	assert.False(t, pp.Mutable())
}

func TestItemMarkingIsIdempotent(t *testing.T) {
	pp := newTestPickPack(t)
	item := &pp.Items[0]
	first := time.Now()

	assert.True(t, item.MarkPicked(first))
	require.NotNil(t, item.PickedAt)

	// Second call is a no-op and keeps the original timestamp.
	assert.False(t, item.MarkPicked(first.Add(time.Hour)))
	assert.Equal(t, first, *item.PickedAt)

	assert.True(t, item.MarkPacked(first))
	assert.False(t, item.MarkPacked(first.Add(time.Hour)))
}

func TestParsePickPackStatus(t *testing.T) {
	for _, valid := range []string{"pending", "picking", "picked", "packing", "packed", "shipped", "cancelled"} {
		_, err := ParsePickPackStatus(valid)
		assert.NoError(t, err, valid)
	}
	_, err := ParsePickPackStatus("delivered")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
