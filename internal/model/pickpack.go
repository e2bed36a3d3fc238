package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"packhouse/internal/apperror"
)

// PickPackStatus is the fulfillment state machine. Legal transitions:
//
//	pending → picking → picked → packing → packed → shipped
//
// cancelled is reachable from any pre-shipped state. "picked" is the
// intermediate milestone between picking-complete and packing-start.
type PickPackStatus string

const (
	StatusPending   PickPackStatus = "pending"
	StatusPicking   PickPackStatus = "picking"
	StatusPicked    PickPackStatus = "picked"
	StatusPacking   PickPackStatus = "packing"
	StatusPacked    PickPackStatus = "packed"
	StatusShipped   PickPackStatus = "shipped"
	StatusCancelled PickPackStatus = "cancelled"
)

// ParsePickPackStatus validates a boundary string against the closed set.
func ParsePickPackStatus(s string) (PickPackStatus, error) {
	switch PickPackStatus(s) {
	case StatusPending, StatusPicking, StatusPicked, StatusPacking,
		StatusPacked, StatusShipped, StatusCancelled:
		return PickPackStatus(s), nil
	}
	return "", apperror.Validation("unknown pick-pack status %q", s)
}

// PickPack tracks picking, packing, and shipping of one order's items.
// At most one PickPack exists per order. All transitions go through the
// named operations below; an out-of-order call fails with
// InvalidStateTransition and changes nothing.
type PickPack struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	WarehouseID  uuid.UUID      `gorm:"type:uuid;not null;index"`
	PackNumber   string         `gorm:"uniqueIndex;not null"` // PK-YYYYMMDD-NNNNNN
	Status       PickPackStatus `gorm:"not null;default:'pending'"`
	PickedBy     *uuid.UUID     `gorm:"type:uuid"`
	PackedBy     *uuid.UUID     `gorm:"type:uuid"`
	PickedAt     *time.Time
	PackedAt     *time.Time
	ShippedAt    *time.Time
	Notes        string
	WeightKg     decimal.Decimal `gorm:"type:decimal(8,3);not null;default:0"`
	Dimensions   string          // "LxWxH cm", free-form from the packing bench
	PackageCount int             `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Items []PickPackItem `gorm:"foreignKey:PickPackID"`
}

func (PickPack) TableName() string { return "pick_packs" }

// OrderLine is the read-only order item shape copied into a PickPack at
// creation. Orders are owned by the external order subsystem.
type OrderLine struct {
	OrderItemID uuid.UUID
	ProductID   uuid.UUID
	Quantity    int
}

// NewPickPack seeds one item per order line. The pack number is generated by
// the caller from the per-day counter so it stays inside the create
// transaction.
func NewPickPack(orderID, warehouseID uuid.UUID, packNumber, notes string, lines []OrderLine) (*PickPack, error) {
	if orderID == uuid.Nil || warehouseID == uuid.Nil {
		return nil, apperror.InvalidArgument("pick-pack requires order and warehouse ids")
	}
	if packNumber == "" {
		return nil, apperror.InvalidArgument("pick-pack requires a pack number")
	}
	if len(lines) == 0 {
		return nil, apperror.InvalidArgument("order has no line items to fulfill")
	}
	pp := &PickPack{
		ID:          uuid.New(),
		OrderID:     orderID,
		WarehouseID: warehouseID,
		PackNumber:  packNumber,
		Status:      StatusPending,
		Notes:       notes,
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, apperror.InvalidArgument("order line %s has non-positive quantity", line.OrderItemID)
		}
		pp.Items = append(pp.Items, PickPackItem{
			ID:          uuid.New(),
			PickPackID:  pp.ID,
			OrderItemID: line.OrderItemID,
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
		})
	}
	return pp, nil
}

// FormatPackNumber builds the date-scoped human-readable pack number from the
// per-day sequence value.
func FormatPackNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("PK-%s-%06d", day.Format("20060102"), seq)
}

func (p *PickPack) invalidTransition(op string) error {
	return apperror.InvalidStateTransition("cannot %s a pick-pack in status %q", op, p.Status)
}

// StartPicking moves pending → picking and records the picker.
func (p *PickPack) StartPicking(userID uuid.UUID) error {
	if p.Status != StatusPending {
		return p.invalidTransition("start picking")
	}
	if userID == uuid.Nil {
		return apperror.InvalidArgument("start picking requires a user")
	}
	p.Status = StatusPicking
	p.PickedBy = &userID
	return nil
}

// CompletePicking moves picking → picked once every item is picked.
func (p *PickPack) CompletePicking(now time.Time) error {
	if p.Status != StatusPicking {
		return p.invalidTransition("complete picking")
	}
	for _, item := range p.Items {
		if !item.IsPicked {
			return apperror.InvalidStateTransition(
				"cannot complete picking: item %s is not picked", item.ID)
		}
	}
	p.Status = StatusPicked
	p.PickedAt = &now
	return nil
}

// StartPacking moves picked → packing and records the packer.
func (p *PickPack) StartPacking(userID uuid.UUID) error {
	if p.Status != StatusPicked {
		return p.invalidTransition("start packing")
	}
	if userID == uuid.Nil {
		return apperror.InvalidArgument("start packing requires a user")
	}
	p.Status = StatusPacking
	p.PackedBy = &userID
	return nil
}

// CompletePacking moves packing → packed. Weight, dimensions, and package
// count are required inputs from the packing bench, never defaulted.
func (p *PickPack) CompletePacking(weightKg decimal.Decimal, dimensions string, packageCount int, now time.Time) error {
	if p.Status != StatusPacking {
		return p.invalidTransition("complete packing")
	}
	for _, item := range p.Items {
		if !item.IsPacked {
			return apperror.InvalidStateTransition(
				"cannot complete packing: item %s is not packed", item.ID)
		}
	}
	if weightKg.LessThanOrEqual(decimal.Zero) {
		return apperror.InvalidArgument("package weight must be positive")
	}
	if dimensions == "" {
		return apperror.InvalidArgument("package dimensions are required")
	}
	if packageCount < 1 {
		return apperror.InvalidArgument("package count must be at least 1")
	}
	p.Status = StatusPacked
	p.WeightKg = weightKg
	p.Dimensions = dimensions
	p.PackageCount = packageCount
	p.PackedAt = &now
	return nil
}

// Ship moves packed → shipped. The order subsystem is notified by the caller
// after commit; the aggregate only guarantees the transition and timestamp.
func (p *PickPack) Ship(now time.Time) error {
	if p.Status != StatusPacked {
		return p.invalidTransition("ship")
	}
	p.Status = StatusShipped
	p.ShippedAt = &now
	return nil
}

// Cancel aborts fulfillment from any pre-shipped state.
func (p *PickPack) Cancel() error {
	switch p.Status {
	case StatusShipped:
		return p.invalidTransition("cancel")
	case StatusCancelled:
		return p.invalidTransition("cancel")
	}
	p.Status = StatusCancelled
	return nil
}

// Mutable reports whether item-level updates are still allowed.
func (p *PickPack) Mutable() bool {
	return p.Status != StatusShipped && p.Status != StatusCancelled
}

// PickPackItem is one line of a PickPack, referencing the external order
// item read-only. Marking operations are idempotent: re-marking a picked or
// packed item is a no-op, not an error.
type PickPackItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PickPackID    uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderItemID   uuid.UUID `gorm:"type:uuid;not null"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null"`
	Quantity      int       `gorm:"not null"`
	IsPicked      bool      `gorm:"not null;default:false"`
	IsPacked      bool      `gorm:"not null;default:false"`
	PickedAt      *time.Time
	PackedAt      *time.Time
	ShelfLocation *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (PickPackItem) TableName() string { return "pick_pack_items" }

// MarkPicked flips the picked flag; returns false when it was already set.
func (it *PickPackItem) MarkPicked(now time.Time) bool {
	if it.IsPicked {
		return false
	}
	it.IsPicked = true
	it.PickedAt = &now
	return true
}

// MarkPacked flips the packed flag; returns false when it was already set.
func (it *PickPackItem) MarkPacked(now time.Time) bool {
	if it.IsPacked {
		return false
	}
	it.IsPacked = true
	it.PackedAt = &now
	return true
}

// SetShelfLocation records where the item was found on the floor.
func (it *PickPackItem) SetShelfLocation(loc string) {
	if loc == "" {
		it.ShelfLocation = nil
		return
	}
	it.ShelfLocation = &loc
}
