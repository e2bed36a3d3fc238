package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"packhouse/internal/apperror"
	"packhouse/internal/dto"
	"packhouse/internal/model"
)

type inventoryFixture struct {
	svc      InventoryService
	invRepo  *stubInventoryRepo
	movRepo  *stubMovementRepo
	whRepo   *stubWarehouseRepo
	whActive *model.Warehouse
}

func newInventoryFixture(t *testing.T) *inventoryFixture {
	t.Helper()
	invRepo := newStubInventoryRepo()
	movRepo := newStubMovementRepo()
	whRepo := newStubWarehouseRepo()
	tx := newStubTx(invRepo, movRepo, whRepo)

	w, err := model.NewWarehouse("MAIN", "Main warehouse", "", "", "", "", 0)
	require.NoError(t, err)
	require.NoError(t, whRepo.Create(context.Background(), w))

	return &inventoryFixture{
		svc:      NewInventoryService(tx, invRepo, movRepo, whRepo, nil),
		invRepo:  invRepo,
		movRepo:  movRepo,
		whRepo:   whRepo,
		whActive: w,
	}
}

func (f *inventoryFixture) adjustReq(productID uuid.UUID, delta int, typ string) dto.AdjustStockRequest {
	return dto.AdjustStockRequest{
		ProductID:    productID.String(),
		WarehouseID:  f.whActive.ID.String(),
		Delta:        delta,
		MovementType: typ,
		PerformedBy:  uuid.NewString(),
	}
}

func TestAdjustStockCreatesRecordOnFirstIntake(t *testing.T) {
	f := newInventoryFixture(t)
	productID := uuid.New()

	resp, err := f.svc.AdjustStock(context.Background(), f.adjustReq(productID, 50, "purchase"))
	require.NoError(t, err)
	assert.Equal(t, 50, resp.Quantity)
	assert.Equal(t, 50, resp.Available)
	assert.Equal(t, 2, resp.Version) // created at 1, bumped by the adjustment
	assert.NotNil(t, resp.LastRestockedAt)

	// Exactly one ledger entry with a consistent snapshot.
	id := uuid.MustParse(resp.ID)
	movements := f.movRepo.byInventory(id)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementPurchase, movements[0].Type)
	assert.Equal(t, 0, movements[0].QuantityBefore)
	assert.Equal(t, 50, movements[0].QuantityAfter)
}

func TestAdjustStockOutboundAgainstMissingRecordIsNotFound(t *testing.T) {
	f := newInventoryFixture(t)

	_, err := f.svc.AdjustStock(context.Background(), f.adjustReq(uuid.New(), -5, "sale"))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Empty(t, f.movRepo.movements)
}

func TestAdjustStockRejectsUnknownMovementType(t *testing.T) {
	f := newInventoryFixture(t)

	_, err := f.svc.AdjustStock(context.Background(), f.adjustReq(uuid.New(), 5, "restock"))
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	// Transfers have their own operation with paired legs.
	_, err = f.svc.AdjustStock(context.Background(), f.adjustReq(uuid.New(), 5, "transfer"))
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
}

func TestAdjustStockRejectsIntakeToInactiveWarehouse(t *testing.T) {
	f := newInventoryFixture(t)
	f.whActive.Deactivate()
	require.NoError(t, f.whRepo.Update(context.Background(), f.whActive))

	_, err := f.svc.AdjustStock(context.Background(), f.adjustReq(uuid.New(), 10, "purchase"))
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
}

func TestAdjustStockNegativeRollsBackEverything(t *testing.T) {
	f := newInventoryFixture(t)
	productID := uuid.New()
	_, err := f.svc.AdjustStock(context.Background(), f.adjustReq(productID, 10, "purchase"))
	require.NoError(t, err)

	_, err = f.svc.AdjustStock(context.Background(), f.adjustReq(productID, -11, "sale"))
	assert.True(t, apperror.Is(err, apperror.KindInsufficientStock))

	// Committed state is untouched, no orphan ledger entry.
	inv, err := f.invRepo.find(productID, f.whActive.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, inv.Quantity)
	assert.Len(t, f.movRepo.byInventory(inv.ID), 1)
}

func TestAdjustStockSurfacesConcurrencyConflict(t *testing.T) {
	f := newInventoryFixture(t)
	productID := uuid.New()
	resp, err := f.svc.AdjustStock(context.Background(), f.adjustReq(productID, 10, "purchase"))
	require.NoError(t, err)

	f.invRepo.forceConflictOn = uuid.MustParse(resp.ID)
	_, err = f.svc.AdjustStock(context.Background(), f.adjustReq(productID, -3, "sale"))
	assert.True(t, apperror.Is(err, apperror.KindConcurrencyConflict))
	assert.True(t, apperror.Retryable(err))

	// The loser's writes are rolled back wholesale.
	inv, _ := f.invRepo.find(productID, f.whActive.ID)
	assert.Equal(t, 10, inv.Quantity)
	assert.Len(t, f.movRepo.byInventory(inv.ID), 1)

	// A retry after re-reading succeeds.
	f.invRepo.forceConflictOn = uuid.Nil
	retried, err := f.svc.AdjustStock(context.Background(), f.adjustReq(productID, -3, "sale"))
	require.NoError(t, err)
	assert.Equal(t, 7, retried.Quantity)
}

func TestReserveAndReleaseWriteNoLedgerEntries(t *testing.T) {
	f := newInventoryFixture(t)
	productID := uuid.New()
	_, err := f.svc.AdjustStock(context.Background(), f.adjustReq(productID, 20, "purchase"))
	require.NoError(t, err)

	req := dto.ReserveStockRequest{
		ProductID:   productID.String(),
		WarehouseID: f.whActive.ID.String(),
		Quantity:    8,
	}
	resp, err := f.svc.Reserve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 20, resp.Quantity)
	assert.Equal(t, 12, resp.Available)

	// Over-reservation of the remaining pool fails.
	req.Quantity = 13
	_, err = f.svc.Reserve(context.Background(), req)
	assert.True(t, apperror.Is(err, apperror.KindInsufficientStock))

	req.Quantity = 8
	resp, err = f.svc.Release(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 20, resp.Available)

	// Releasing more than reserved is a caller bug, not a stock problem.
	req.Quantity = 1
	_, err = f.svc.Release(context.Background(), req)
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))

	// Reservation churn never touches the ledger.
	id := uuid.MustParse(resp.ID)
	assert.Len(t, f.movRepo.byInventory(id), 1)
}

func TestRecordCountWithDiscrepancyEmitsAdjustment(t *testing.T) {
	f := newInventoryFixture(t)
	productID := uuid.New()
	_, err := f.svc.AdjustStock(context.Background(), f.adjustReq(productID, 30, "purchase"))
	require.NoError(t, err)

	resp, err := f.svc.RecordCount(context.Background(), dto.RecordCountRequest{
		ProductID:       productID.String(),
		WarehouseID:     f.whActive.ID.String(),
		CountedQuantity: 27,
		PerformedBy:     uuid.NewString(),
	})
	require.NoError(t, err)
	assert.Equal(t, 27, resp.Quantity)
	assert.NotNil(t, resp.LastCountedAt)

	id := uuid.MustParse(resp.ID)
	movements := f.movRepo.byInventory(id)
	require.Len(t, movements, 2)
	last := movements[len(movements)-1]
	assert.Equal(t, model.MovementAdjustment, last.Type)
	assert.Equal(t, -3, last.Delta())
}

func TestRecordCountCleanCountWritesNoMovement(t *testing.T) {
	f := newInventoryFixture(t)
	productID := uuid.New()
	_, err := f.svc.AdjustStock(context.Background(), f.adjustReq(productID, 30, "purchase"))
	require.NoError(t, err)

	resp, err := f.svc.RecordCount(context.Background(), dto.RecordCountRequest{
		ProductID:       productID.String(),
		WarehouseID:     f.whActive.ID.String(),
		CountedQuantity: 30,
		PerformedBy:     uuid.NewString(),
	})
	require.NoError(t, err)
	assert.NotNil(t, resp.LastCountedAt)
	assert.Len(t, f.movRepo.byInventory(uuid.MustParse(resp.ID)), 1)
}

func TestLedgerReconstructsQuantity(t *testing.T) {
	f := newInventoryFixture(t)
	productID := uuid.New()
	ctx := context.Background()

	deltas := []struct {
		delta int
		typ   string
	}{
		{100, "purchase"}, {-30, "sale"}, {5, "return"}, {-2, "damage"}, {-10, "sale"},
	}
	var resp *dto.InventoryResponse
	var err error
	for _, d := range deltas {
		resp, err = f.svc.AdjustStock(ctx, f.adjustReq(productID, d.delta, d.typ))
		require.NoError(t, err)
	}
	assert.Equal(t, 63, resp.Quantity)

	// Replaying signed deltas from zero lands on the stored quantity.
	total := 0
	for _, m := range f.movRepo.byInventory(uuid.MustParse(resp.ID)) {
		total += m.Delta()
	}
	assert.Equal(t, resp.Quantity, total)
}

func TestListLowStock(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	low, err := model.NewInventory(uuid.New(), f.whActive.ID)
	require.NoError(t, err)
	low.Quantity = 2
	low.MinimumStock = 5
	f.invRepo.put(low)

	healthy, err := model.NewInventory(uuid.New(), f.whActive.ID)
	require.NoError(t, err)
	healthy.Quantity = 50
	healthy.MinimumStock = 5
	f.invRepo.put(healthy)

	resp, err := f.svc.ListLowStock(ctx, 0)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, low.ID.String(), resp.Data[0].ID)

	// Explicit threshold overrides the per-record minimums.
	resp, err = f.svc.ListLowStock(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)

	_, err = f.svc.ListLowStock(ctx, -1)
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
}
