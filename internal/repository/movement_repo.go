package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"packhouse/internal/model"
)

// MovementFilter narrows ledger queries. Zero values mean "no filter".
type MovementFilter struct {
	InventoryID *uuid.UUID
	ProductID   *uuid.UUID
	WarehouseID *uuid.UUID
	Type        model.MovementType
	Page        int
	PageSize    int
}

// MovementRepository is write-once, read-many: CreateTx appends inside the
// transaction that also adjusts the inventory quantity, and no update or
// delete method exists.
type MovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.StockMovement) error
	ListByInventory(ctx context.Context, inventoryID uuid.UUID) ([]model.StockMovement, error)
	List(ctx context.Context, filter MovementFilter) ([]model.StockMovement, int64, error)
}

type movementRepo struct{ db *gorm.DB }

func NewMovementRepository(db *gorm.DB) MovementRepository { return &movementRepo{db: db} }

func (r *movementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

// ListByInventory returns the full history for one record in creation order,
// oldest first, so callers can replay signed deltas from zero.
func (r *movementRepo) ListByInventory(ctx context.Context, inventoryID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}

func (r *movementRepo) List(ctx context.Context, filter MovementFilter) ([]model.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{})
	if filter.InventoryID != nil {
		q = q.Where("inventory_id = ?", *filter.InventoryID)
	}
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	size := filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 500 {
		size = 100
	}
	offset := (page - 1) * size

	var movements []model.StockMovement
	err := q.Order("created_at DESC").Offset(offset).Limit(size).Find(&movements).Error
	return movements, total, err
}
