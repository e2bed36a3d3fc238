package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"packhouse/internal/apperror"
	"packhouse/internal/model"
)

// InventoryRepository is the data access contract for inventory records.
// UpdateTx is the single write path for existing rows and carries the
// optimistic-concurrency compare-and-swap; there is no delete (historical
// accuracy).
type InventoryRepository interface {
	CreateTx(tx *gorm.DB, inv *model.Inventory) error
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*model.Inventory, error)
	FindByProductAndWarehouseTx(tx *gorm.DB, productID, warehouseID uuid.UUID) (*model.Inventory, error)
	// UpdateTx compare-and-swaps on the version token; a lost race surfaces
	// as ConcurrencyConflict and the in-memory aggregate is left untouched.
	UpdateTx(tx *gorm.DB, inv *model.Inventory) error
	ListLowStock(ctx context.Context, threshold int) ([]model.Inventory, error)
	CountByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int64, error)
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepository(db *gorm.DB) InventoryRepository { return &inventoryRepo{db: db} }

func (r *inventoryRepo) CreateTx(tx *gorm.DB, inv *model.Inventory) error {
	err := tx.Create(inv).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// Two writers raced on lazy creation of the same pair.
		return apperror.ConcurrencyConflict(
			"inventory for product %s at warehouse %s was created concurrently",
			inv.ProductID, inv.WarehouseID)
	}
	return err
}

func (r *inventoryRepo) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*model.Inventory, error) {
	return findInventory(r.db.WithContext(ctx), productID, warehouseID)
}

func (r *inventoryRepo) FindByProductAndWarehouseTx(tx *gorm.DB, productID, warehouseID uuid.UUID) (*model.Inventory, error) {
	return findInventory(tx, productID, warehouseID)
}

func findInventory(q *gorm.DB, productID, warehouseID uuid.UUID) (*model.Inventory, error) {
	var inv model.Inventory
	err := q.Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound(
			"no inventory for product %s at warehouse %s", productID, warehouseID)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inventoryRepo) UpdateTx(tx *gorm.DB, inv *model.Inventory) error {
	current := inv.Version
	res := tx.Model(&model.Inventory{}).
		Where("id = ? AND version = ?", inv.ID, current).
		Updates(map[string]interface{}{
			"quantity":          inv.Quantity,
			"reserved_quantity": inv.ReservedQuantity,
			"minimum_stock":     inv.MinimumStock,
			"maximum_stock":     inv.MaximumStock,
			"unit_cost":         inv.UnitCost,
			"shelf_location":    inv.ShelfLocation,
			"last_restocked_at": inv.LastRestockedAt,
			"last_counted_at":   inv.LastCountedAt,
			"version":           current + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.ConcurrencyConflict(
			"inventory %s was modified concurrently (version %d)", inv.ID, current)
	}
	inv.Version = current + 1
	return nil
}

// ListLowStock returns records at or below the given threshold, or at or
// below their own minimum level when threshold is zero.
func (r *inventoryRepo) ListLowStock(ctx context.Context, threshold int) ([]model.Inventory, error) {
	q := r.db.WithContext(ctx).Model(&model.Inventory{})
	if threshold > 0 {
		q = q.Where("quantity <= ?", threshold)
	} else {
		q = q.Where("minimum_stock > 0 AND quantity <= minimum_stock")
	}
	var records []model.Inventory
	err := q.Order("quantity ASC").Find(&records).Error
	return records, err
}

func (r *inventoryRepo) CountByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Inventory{}).
		Where("warehouse_id = ?", warehouseID).Count(&count).Error
	return count, err
}
