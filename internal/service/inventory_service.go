package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"packhouse/internal/apperror"
	"packhouse/internal/dto"
	"packhouse/internal/model"
	"packhouse/internal/repository"
	"packhouse/internal/worker"
)

// InventoryService owns quantity state for (product, warehouse) pairs. Every
// quantity mutation appends a ledger entry inside the same transaction; the
// two never happen independently.
type InventoryService interface {
	Get(ctx context.Context, productID, warehouseID uuid.UUID) (*dto.InventoryResponse, error)
	AdjustStock(ctx context.Context, req dto.AdjustStockRequest) (*dto.InventoryResponse, error)
	Reserve(ctx context.Context, req dto.ReserveStockRequest) (*dto.InventoryResponse, error)
	Release(ctx context.Context, req dto.ReserveStockRequest) (*dto.InventoryResponse, error)
	RecordCount(ctx context.Context, req dto.RecordCountRequest) (*dto.InventoryResponse, error)
	ListLowStock(ctx context.Context, threshold int) (*dto.LowStockResponse, error)
}

type inventoryService struct {
	tx            repository.TxManager
	repo          repository.InventoryRepository
	movementRepo  repository.MovementRepository
	warehouseRepo repository.WarehouseRepository
	dispatcher    *worker.Dispatcher
}

func NewInventoryService(
	tx repository.TxManager,
	repo repository.InventoryRepository,
	movementRepo repository.MovementRepository,
	warehouseRepo repository.WarehouseRepository,
	dispatcher *worker.Dispatcher,
) InventoryService {
	return &inventoryService{
		tx:            tx,
		repo:          repo,
		movementRepo:  movementRepo,
		warehouseRepo: warehouseRepo,
		dispatcher:    dispatcher,
	}
}

func (s *inventoryService) Get(ctx context.Context, productID, warehouseID uuid.UUID) (*dto.InventoryResponse, error) {
	inv, err := s.repo.FindByProductAndWarehouse(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	return inventoryToResponse(inv), nil
}

// AdjustStock applies a signed delta and appends the matching ledger entry in
// one transaction. The inventory record is created lazily on first intake;
// an outbound delta against a missing record is NotFound. A loser of the
// version race gets ConcurrencyConflict and must re-read and redo the whole
// business operation.
func (s *inventoryService) AdjustStock(ctx context.Context, req dto.AdjustStockRequest) (*dto.InventoryResponse, error) {
	productID, warehouseID, err := parsePair(req.ProductID, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	performedBy, err := uuid.Parse(req.PerformedBy)
	if err != nil {
		return nil, apperror.InvalidArgument("performed_by is not a valid uuid")
	}
	movementType, err := model.ParseMovementType(req.MovementType)
	if err != nil {
		return nil, err
	}
	if movementType == model.MovementTransfer {
		return nil, apperror.InvalidArgument("transfer movements must go through the transfer operation")
	}

	var inv *model.Inventory
	txErr := s.tx.Do(ctx, func(tx *gorm.DB) error {
		var err error
		inv, err = s.loadOrCreate(tx, productID, warehouseID, req.Delta > 0)
		if err != nil {
			return err
		}

		before := inv.Quantity
		if err := inv.AdjustQuantity(req.Delta); err != nil {
			return err
		}
		if req.UnitCost != nil {
			inv.UnitCost = *req.UnitCost
		}
		if req.Delta > 0 && (movementType == model.MovementPurchase || movementType == model.MovementReturn) {
			inv.MarkRestocked(time.Now())
		}
		if err := s.repo.UpdateTx(tx, inv); err != nil {
			return err
		}

		movement, err := model.NewStockMovement(inv, movementType, before, inv.Quantity, performedBy)
		if err != nil {
			return err
		}
		movement.WithReference(req.Reference).WithNotes(req.Notes)
		return s.movementRepo.CreateTx(tx, movement)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.emitLowStock(ctx, inv)
	return inventoryToResponse(inv), nil
}

// loadOrCreate fetches the record inside the transaction, lazily creating it
// when stock is being introduced. Intake into an unknown or deactivated
// warehouse is refused.
func (s *inventoryService) loadOrCreate(tx *gorm.DB, productID, warehouseID uuid.UUID, intake bool) (*model.Inventory, error) {
	inv, err := s.repo.FindByProductAndWarehouseTx(tx, productID, warehouseID)
	if err == nil {
		return inv, nil
	}
	if apperror.KindOf(err) != apperror.KindNotFound || !intake {
		return nil, err
	}

	w, err := s.warehouseRepo.FindByIDTx(tx, warehouseID)
	if err != nil {
		return nil, err
	}
	if !w.Active {
		return nil, apperror.InvalidArgument(
			"warehouse %s is deactivated and cannot receive stock", w.Code)
	}

	inv, err = model.NewInventory(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateTx(tx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *inventoryService) Reserve(ctx context.Context, req dto.ReserveStockRequest) (*dto.InventoryResponse, error) {
	return s.reserveOrRelease(ctx, req, true)
}

func (s *inventoryService) Release(ctx context.Context, req dto.ReserveStockRequest) (*dto.InventoryResponse, error) {
	return s.reserveOrRelease(ctx, req, false)
}

// reserveOrRelease moves units between available and reserved. Total on-hand
// never changes, so no ledger entry is written.
func (s *inventoryService) reserveOrRelease(ctx context.Context, req dto.ReserveStockRequest, reserve bool) (*dto.InventoryResponse, error) {
	productID, warehouseID, err := parsePair(req.ProductID, req.WarehouseID)
	if err != nil {
		return nil, err
	}

	var inv *model.Inventory
	txErr := s.tx.Do(ctx, func(tx *gorm.DB) error {
		var err error
		inv, err = s.repo.FindByProductAndWarehouseTx(tx, productID, warehouseID)
		if err != nil {
			return err
		}
		if reserve {
			err = inv.Reserve(req.Quantity)
		} else {
			err = inv.Release(req.Quantity)
		}
		if err != nil {
			return err
		}
		return s.repo.UpdateTx(tx, inv)
	})
	if txErr != nil {
		return nil, txErr
	}
	return inventoryToResponse(inv), nil
}

// RecordCount stores a physical cycle count. Any discrepancy against the
// on-hand quantity is applied as an adjustment movement so the ledger still
// reconciles; a clean count only stamps lastCountedAt.
func (s *inventoryService) RecordCount(ctx context.Context, req dto.RecordCountRequest) (*dto.InventoryResponse, error) {
	productID, warehouseID, err := parsePair(req.ProductID, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	performedBy, err := uuid.Parse(req.PerformedBy)
	if err != nil {
		return nil, apperror.InvalidArgument("performed_by is not a valid uuid")
	}
	if req.CountedQuantity < 0 {
		return nil, apperror.InvalidArgument("counted quantity cannot be negative")
	}

	var inv *model.Inventory
	txErr := s.tx.Do(ctx, func(tx *gorm.DB) error {
		var err error
		inv, err = s.repo.FindByProductAndWarehouseTx(tx, productID, warehouseID)
		if err != nil {
			return err
		}

		now := time.Now()
		before := inv.Quantity
		delta := req.CountedQuantity - inv.Quantity
		if delta != 0 {
			if err := inv.AdjustQuantity(delta); err != nil {
				return err
			}
		}
		inv.MarkCounted(now)
		if err := s.repo.UpdateTx(tx, inv); err != nil {
			return err
		}

		if delta == 0 {
			return nil
		}
		movement, err := model.NewStockMovement(inv, model.MovementAdjustment, before, inv.Quantity, performedBy)
		if err != nil {
			return err
		}
		movement.WithNotes(notesOr(req.Notes, "cycle count correction"))
		return s.movementRepo.CreateTx(tx, movement)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.emitLowStock(ctx, inv)
	return inventoryToResponse(inv), nil
}

func (s *inventoryService) ListLowStock(ctx context.Context, threshold int) (*dto.LowStockResponse, error) {
	if threshold < 0 {
		return nil, apperror.InvalidArgument("threshold cannot be negative")
	}
	records, err := s.repo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}
	resp := &dto.LowStockResponse{Data: make([]dto.InventoryResponse, 0, len(records))}
	for i := range records {
		resp.Data = append(resp.Data, *inventoryToResponse(&records[i]))
	}
	return resp, nil
}

// emitLowStock publishes the alert event after commit. Best-effort: the
// adjustment has already landed, so a publish failure is only logged.
func (s *inventoryService) emitLowStock(ctx context.Context, inv *model.Inventory) {
	if inv == nil || !inv.BelowMinimum() {
		return
	}
	err := s.dispatcher.PublishLowStock(ctx, worker.LowStockEvent{
		InventoryID:  inv.ID.String(),
		ProductID:    inv.ProductID.String(),
		WarehouseID:  inv.WarehouseID.String(),
		Quantity:     inv.Quantity,
		MinimumStock: inv.MinimumStock,
	})
	if err != nil {
		log.Warn().Err(err).Str("inventory_id", inv.ID.String()).Msg("failed to publish low-stock event")
	}
}

func parsePair(productID, warehouseID string) (uuid.UUID, uuid.UUID, error) {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return uuid.Nil, uuid.Nil, apperror.InvalidArgument("product_id is not a valid uuid")
	}
	wid, err := uuid.Parse(warehouseID)
	if err != nil {
		return uuid.Nil, uuid.Nil, apperror.InvalidArgument("warehouse_id is not a valid uuid")
	}
	return pid, wid, nil
}

func notesOr(notes, fallback string) string {
	if notes != "" {
		return notes
	}
	return fallback
}

func inventoryToResponse(inv *model.Inventory) *dto.InventoryResponse {
	resp := &dto.InventoryResponse{
		ID:               inv.ID.String(),
		ProductID:        inv.ProductID.String(),
		WarehouseID:      inv.WarehouseID.String(),
		Quantity:         inv.Quantity,
		ReservedQuantity: inv.ReservedQuantity,
		Available:        inv.Available(),
		MinimumStock:     inv.MinimumStock,
		MaximumStock:     inv.MaximumStock,
		UnitCost:         inv.UnitCost,
		ShelfLocation:    inv.ShelfLocation,
		Version:          inv.Version,
	}
	if inv.LastRestockedAt != nil {
		s := inv.LastRestockedAt.Format(time.RFC3339)
		resp.LastRestockedAt = &s
	}
	if inv.LastCountedAt != nil {
		s := inv.LastCountedAt.Format(time.RFC3339)
		resp.LastCountedAt = &s
	}
	return resp
}
