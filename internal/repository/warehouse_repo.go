package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"packhouse/internal/apperror"
	"packhouse/internal/model"
)

// WarehouseRepository is the data access contract for the warehouse registry.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
type WarehouseRepository interface {
	Create(ctx context.Context, w *model.Warehouse) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Warehouse, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Warehouse, error)
	FindByCode(ctx context.Context, code string) (*model.Warehouse, error)
	List(ctx context.Context, activeOnly bool) ([]model.Warehouse, int64, error)
	Update(ctx context.Context, w *model.Warehouse) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type warehouseRepo struct{ db *gorm.DB }

func NewWarehouseRepository(db *gorm.DB) WarehouseRepository { return &warehouseRepo{db: db} }

func (r *warehouseRepo) Create(ctx context.Context, w *model.Warehouse) error {
	err := r.db.WithContext(ctx).Create(w).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict("warehouse code %q already exists", w.Code)
	}
	return err
}

func (r *warehouseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Warehouse, error) {
	var w model.Warehouse
	err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("warehouse %s not found", id)
	}
	return &w, err
}

func (r *warehouseRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Warehouse, error) {
	var w model.Warehouse
	err := tx.First(&w, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("warehouse %s not found", id)
	}
	return &w, err
}

func (r *warehouseRepo) FindByCode(ctx context.Context, code string) (*model.Warehouse, error) {
	var w model.Warehouse
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("warehouse code %q not found", code)
	}
	return &w, err
}

func (r *warehouseRepo) List(ctx context.Context, activeOnly bool) ([]model.Warehouse, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Warehouse{})
	if activeOnly {
		q = q.Where("active = true")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var warehouses []model.Warehouse
	err := q.Order("code ASC").Find(&warehouses).Error
	return warehouses, total, err
}

func (r *warehouseRepo) Update(ctx context.Context, w *model.Warehouse) error {
	return r.db.WithContext(ctx).Save(w).Error
}

// Delete hard-deletes a warehouse row. The service layer rejects the call
// while any inventory record references the warehouse.
func (r *warehouseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Warehouse{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("warehouse %s not found", id)
	}
	return nil
}
