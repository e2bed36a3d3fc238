package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"packhouse/internal/apperror"
	"packhouse/internal/model"
)

// PickPackFilter narrows ListAll queries.
type PickPackFilter struct {
	Status      model.PickPackStatus
	WarehouseID *uuid.UUID
	Page        int
	PageSize    int
}

// StatsFilter scopes the status-count aggregation.
type StatsFilter struct {
	WarehouseID *uuid.UUID
	From        *time.Time
	To          *time.Time
}

// packCounter backs the date-scoped pack number sequence. One row per day,
// atomically incremented inside the pick-pack create transaction.
type packCounter struct {
	Day   string `gorm:"primaryKey;column:day"`
	Value int64  `gorm:"not null"`
}

func (packCounter) TableName() string { return "pack_counters" }

// PackCounterModel exposes the counter table for migrations.
func PackCounterModel() interface{} { return &packCounter{} }

// PickPackRepository is the data access contract for the fulfillment
// aggregate. Loads always include items; status transitions and their item
// completeness checks share one transaction via the ...Tx variants.
type PickPackRepository interface {
	CreateTx(tx *gorm.DB, pp *model.PickPack) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PickPack, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.PickPack, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.PickPack, error)
	FindByPackNumber(ctx context.Context, packNumber string) (*model.PickPack, error)
	List(ctx context.Context, filter PickPackFilter) ([]model.PickPack, int64, error)
	UpdateTx(tx *gorm.DB, pp *model.PickPack) error
	UpdateItemTx(tx *gorm.DB, item *model.PickPackItem) error
	// NextPackSequence atomically increments and returns the per-day counter.
	NextPackSequence(tx *gorm.DB, day time.Time) (int64, error)
	Stats(ctx context.Context, filter StatsFilter) (map[model.PickPackStatus]int64, error)
}

type pickPackRepo struct{ db *gorm.DB }

func NewPickPackRepository(db *gorm.DB) PickPackRepository { return &pickPackRepo{db: db} }

func (r *pickPackRepo) CreateTx(tx *gorm.DB, pp *model.PickPack) error {
	err := tx.Create(pp).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict("a pick-pack already exists for order %s", pp.OrderID)
	}
	return err
}

func (r *pickPackRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PickPack, error) {
	return findPickPack(r.db.WithContext(ctx), "id = ?", id)
}

func (r *pickPackRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.PickPack, error) {
	return findPickPack(tx, "id = ?", id)
}

func (r *pickPackRepo) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.PickPack, error) {
	return findPickPack(r.db.WithContext(ctx), "order_id = ?", orderID)
}

func (r *pickPackRepo) FindByPackNumber(ctx context.Context, packNumber string) (*model.PickPack, error) {
	return findPickPack(r.db.WithContext(ctx), "pack_number = ?", packNumber)
}

func findPickPack(q *gorm.DB, cond string, arg interface{}) (*model.PickPack, error) {
	var pp model.PickPack
	err := q.Preload("Items").Where(cond, arg).First(&pp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("pick-pack not found")
	}
	if err != nil {
		return nil, err
	}
	return &pp, nil
}

func (r *pickPackRepo) List(ctx context.Context, filter PickPackFilter) ([]model.PickPack, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.PickPack{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *filter.WarehouseID)
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
	if size < 1 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	var packs []model.PickPack
	err := q.Preload("Items").Order("created_at DESC").Offset(offset).Limit(size).Find(&packs).Error
	return packs, total, err
}

func (r *pickPackRepo) UpdateTx(tx *gorm.DB, pp *model.PickPack) error {
	return tx.Model(&model.PickPack{}).Where("id = ?", pp.ID).
		Updates(map[string]interface{}{
			"status":        pp.Status,
			"picked_by":     pp.PickedBy,
			"packed_by":     pp.PackedBy,
			"picked_at":     pp.PickedAt,
			"packed_at":     pp.PackedAt,
			"shipped_at":    pp.ShippedAt,
			"notes":         pp.Notes,
			"weight_kg":     pp.WeightKg,
			"dimensions":    pp.Dimensions,
			"package_count": pp.PackageCount,
		}).Error
}

func (r *pickPackRepo) UpdateItemTx(tx *gorm.DB, item *model.PickPackItem) error {
	return tx.Model(&model.PickPackItem{}).Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"is_picked":      item.IsPicked,
			"is_packed":      item.IsPacked,
			"picked_at":      item.PickedAt,
			"packed_at":      item.PackedAt,
			"shelf_location": item.ShelfLocation,
		}).Error
}

func (r *pickPackRepo) NextPackSequence(tx *gorm.DB, day time.Time) (int64, error) {
	var value int64
	err := tx.Raw(`
		INSERT INTO pack_counters (day, value) VALUES (?, 1)
		ON CONFLICT (day) DO UPDATE SET value = pack_counters.value + 1
		RETURNING value`, day.Format("20060102")).Scan(&value).Error
	return value, err
}

func (r *pickPackRepo) Stats(ctx context.Context, filter StatsFilter) (map[model.PickPackStatus]int64, error) {
	q := r.db.WithContext(ctx).Model(&model.PickPack{})
	if filter.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", *filter.To)
	}

	var rows []struct {
		Status model.PickPackStatus
		Count  int64
	}
	if err := q.Select("status, count(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[model.PickPackStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
