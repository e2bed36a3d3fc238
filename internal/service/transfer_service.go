package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"packhouse/internal/apperror"
	"packhouse/internal/dto"
	"packhouse/internal/model"
	"packhouse/internal/repository"
)

// TransferService coordinates a single logical transfer: two inventory
// mutations plus two ledger entries inside one atomic unit. It is the only
// component that touches two inventory records in one operation.
//
// Conservation law: total quantity of the product across the two warehouses
// is unchanged by a transfer, and either both ledger entries exist or
// neither does. Correctness depends entirely on both legs sharing the
// transaction — there is no cross-warehouse lock.
type TransferService interface {
	Transfer(ctx context.Context, req dto.TransferStockRequest) (*dto.InventoryResponse, error)
}

type transferService struct {
	tx            repository.TxManager
	invRepo       repository.InventoryRepository
	movementRepo  repository.MovementRepository
	warehouseRepo repository.WarehouseRepository
	catalog       ProductCatalog
}

func NewTransferService(
	tx repository.TxManager,
	invRepo repository.InventoryRepository,
	movementRepo repository.MovementRepository,
	warehouseRepo repository.WarehouseRepository,
	catalog ProductCatalog,
) TransferService {
	return &transferService{
		tx:            tx,
		invRepo:       invRepo,
		movementRepo:  movementRepo,
		warehouseRepo: warehouseRepo,
		catalog:       catalog,
	}
}

// Transfer moves quantity of a product from one warehouse to another. On a
// concurrency conflict the whole unit aborts and the caller must retry the
// entire transfer, never a single leg.
func (s *transferService) Transfer(ctx context.Context, req dto.TransferStockRequest) (*dto.InventoryResponse, error) {
	if req.Quantity <= 0 {
		return nil, apperror.InvalidArgument("transfer quantity must be positive")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apperror.InvalidArgument("product_id is not a valid uuid")
	}
	fromID, err := uuid.Parse(req.FromWarehouseID)
	if err != nil {
		return nil, apperror.InvalidArgument("from_warehouse_id is not a valid uuid")
	}
	toID, err := uuid.Parse(req.ToWarehouseID)
	if err != nil {
		return nil, apperror.InvalidArgument("to_warehouse_id is not a valid uuid")
	}
	if fromID == toID {
		return nil, apperror.InvalidArgument("source and destination warehouses must differ")
	}
	performedBy, err := uuid.Parse(req.PerformedBy)
	if err != nil {
		return nil, apperror.InvalidArgument("performed_by is not a valid uuid")
	}

	// Product existence + ownership. Restricted sellers may only move their
	// own products; platform staff move anything.
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if req.ActorRole == "seller" && product.SellerID != performedBy {
		return nil, apperror.Forbidden(
			"actor %s does not own product %s", performedBy, product.ID)
	}

	var source *model.Inventory
	txErr := s.tx.Do(ctx, func(tx *gorm.DB) error {
		var err error
		source, err = s.invRepo.FindByProductAndWarehouseTx(tx, productID, fromID)
		if err != nil {
			return err
		}
		if source.Available() < req.Quantity {
			return apperror.InsufficientStock(
				"cannot transfer %d units, only %d available at source", req.Quantity, source.Available())
		}

		dest, err := s.loadOrCreateDestination(tx, productID, toID, source)
		if err != nil {
			return err
		}

		srcBefore := source.Quantity
		dstBefore := dest.Quantity
		if err := source.AdjustQuantity(-req.Quantity); err != nil {
			return err
		}
		if err := dest.AdjustQuantity(req.Quantity); err != nil {
			return err
		}
		if err := s.invRepo.UpdateTx(tx, source); err != nil {
			return err
		}
		if err := s.invRepo.UpdateTx(tx, dest); err != nil {
			return err
		}

		// Paired ledger entries: each leg cross-references both warehouses
		// so the pair is reconstructable from either side.
		debit, err := model.NewStockMovement(source, model.MovementTransfer, srcBefore, source.Quantity, performedBy)
		if err != nil {
			return err
		}
		debit.WithTransferRoute(fromID, toID).WithNotes(req.Notes)
		if err := s.movementRepo.CreateTx(tx, debit); err != nil {
			return err
		}

		credit, err := model.NewStockMovement(dest, model.MovementTransfer, dstBefore, dest.Quantity, performedBy)
		if err != nil {
			return err
		}
		credit.WithTransferRoute(fromID, toID).WithNotes(req.Notes)
		return s.movementRepo.CreateTx(tx, credit)
	})
	if txErr != nil {
		return nil, txErr
	}
	return inventoryToResponse(source), nil
}

// loadOrCreateDestination lazily creates the destination record, inheriting
// the source's stock levels and unit cost as defaults. Destination
// warehouses must exist and be active to receive stock.
func (s *transferService) loadOrCreateDestination(tx *gorm.DB, productID, warehouseID uuid.UUID, source *model.Inventory) (*model.Inventory, error) {
	dest, err := s.invRepo.FindByProductAndWarehouseTx(tx, productID, warehouseID)
	if err == nil {
		return dest, nil
	}
	if apperror.KindOf(err) != apperror.KindNotFound {
		return nil, err
	}

	w, err := s.warehouseRepo.FindByIDTx(tx, warehouseID)
	if err != nil {
		return nil, err
	}
	if !w.Active {
		return nil, apperror.InvalidArgument(
			"warehouse %s is deactivated and cannot receive transfers", w.Code)
	}

	dest, err = model.NewInventory(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	dest.MinimumStock = source.MinimumStock
	dest.MaximumStock = source.MaximumStock
	dest.UnitCost = source.UnitCost
	if err := s.invRepo.CreateTx(tx, dest); err != nil {
		return nil, err
	}
	return dest, nil
}
