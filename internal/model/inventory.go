package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"packhouse/internal/apperror"
)

// Inventory is the per-(product, warehouse) quantity aggregate. It is the
// only place quantity mutation logic lives: all changes go through
// AdjustQuantity / Reserve / Release, and every AdjustQuantity is paired with
// a StockMovement row in the same transaction by the calling service.
//
// Version is the optimistic-concurrency token: repositories compare-and-swap
// on it and surface a ConcurrencyConflict on mismatch.
type Inventory struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_warehouse"`
	WarehouseID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_warehouse"`
	Quantity         int       `gorm:"not null;default:0"` // on-hand, invariant >= 0
	ReservedQuantity int       `gorm:"not null;default:0"` // committed to unfulfilled orders
	MinimumStock     int       `gorm:"not null;default:0"`
	MaximumStock     int       `gorm:"not null;default:0"` // 0 = no ceiling
	UnitCost         decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	ShelfLocation    *string
	LastRestockedAt  *time.Time
	LastCountedAt    *time.Time
	Version          int `gorm:"not null;default:1"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Warehouse *Warehouse `gorm:"foreignKey:WarehouseID"`
}

func (Inventory) TableName() string { return "inventories" }

// NewInventory creates the record lazily the first time stock is introduced
// for a (product, warehouse) pair. Quantity starts at zero; the first
// adjustment and its ledger entry are the caller's responsibility.
func NewInventory(productID, warehouseID uuid.UUID) (*Inventory, error) {
	if productID == uuid.Nil || warehouseID == uuid.Nil {
		return nil, apperror.InvalidArgument("inventory requires product and warehouse ids")
	}
	return &Inventory{
		ID:          uuid.New(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		Version:     1,
	}, nil
}

// Available is the derived on-hand-minus-reserved quantity. It is never
// stored, so it cannot drift.
func (i *Inventory) Available() int { return i.Quantity - i.ReservedQuantity }

// AdjustQuantity applies a signed delta to the on-hand quantity. The result
// must keep both quantity and availability non-negative; a violating delta is
// rejected and leaves the aggregate unchanged.
func (i *Inventory) AdjustQuantity(delta int) error {
	if delta == 0 {
		return apperror.InvalidArgument("adjustment delta cannot be zero")
	}
	next := i.Quantity + delta
	if next < 0 {
		return apperror.InsufficientStock(
			"adjustment of %d would drive quantity below zero (on hand %d)", delta, i.Quantity)
	}
	if next-i.ReservedQuantity < 0 {
		return apperror.InsufficientStock(
			"adjustment of %d would break the reservation of %d units (on hand %d)",
			delta, i.ReservedQuantity, i.Quantity)
	}
	i.Quantity = next
	return nil
}

// Reserve moves units from available to reserved without changing on-hand.
func (i *Inventory) Reserve(qty int) error {
	if qty <= 0 {
		return apperror.InvalidArgument("reserve quantity must be positive")
	}
	if i.Available() < qty {
		return apperror.InsufficientStock(
			"cannot reserve %d units, only %d available", qty, i.Available())
	}
	i.ReservedQuantity += qty
	return nil
}

// Release returns previously reserved units to the available pool.
func (i *Inventory) Release(qty int) error {
	if qty <= 0 {
		return apperror.InvalidArgument("release quantity must be positive")
	}
	if i.ReservedQuantity < qty {
		return apperror.InvalidArgument(
			"cannot release %d units, only %d reserved", qty, i.ReservedQuantity)
	}
	i.ReservedQuantity -= qty
	return nil
}

// BelowMinimum reports whether the low-stock alert threshold has been crossed.
func (i *Inventory) BelowMinimum() bool {
	return i.MinimumStock > 0 && i.Quantity <= i.MinimumStock
}

// MarkRestocked stamps the last stock intake time.
func (i *Inventory) MarkRestocked(at time.Time) { i.LastRestockedAt = &at }

// MarkCounted stamps the last cycle count time.
func (i *Inventory) MarkCounted(at time.Time) { i.LastCountedAt = &at }
