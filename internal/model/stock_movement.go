package model

import (
	"time"

	"github.com/google/uuid"

	"packhouse/internal/apperror"
)

// MovementType is the closed set of causes for a stock quantity change.
// Unrecognized strings are rejected at the boundary, never defaulted.
type MovementType string

const (
	MovementPurchase   MovementType = "purchase"
	MovementSale       MovementType = "sale"
	MovementReturn     MovementType = "return"
	MovementAdjustment MovementType = "adjustment"
	MovementTransfer   MovementType = "transfer"
	MovementDamage     MovementType = "damage"
)

// ParseMovementType validates a boundary string against the closed set.
func ParseMovementType(s string) (MovementType, error) {
	switch MovementType(s) {
	case MovementPurchase, MovementSale, MovementReturn,
		MovementAdjustment, MovementTransfer, MovementDamage:
		return MovementType(s), nil
	}
	return "", apperror.Validation("unknown movement type %q", s)
}

// StockMovement is one immutable audit entry for a single quantity change.
// It is the system of record for "how did we get here": summing signed deltas
// from zero reconciles the current inventory quantity. No update or delete
// path exists anywhere in the codebase.
type StockMovement struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InventoryID     uuid.UUID    `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID    `gorm:"type:uuid;not null;index"`
	WarehouseID     uuid.UUID    `gorm:"type:uuid;not null;index"`
	Type            MovementType `gorm:"not null"`
	Quantity        int          `gorm:"not null"` // magnitude of the change, always > 0
	QuantityBefore  int          `gorm:"not null"`
	QuantityAfter   int          `gorm:"not null"`
	PerformedBy     uuid.UUID    `gorm:"type:uuid;not null"`
	Reference       *string      // order / document number, if any
	FromWarehouseID *uuid.UUID `gorm:"type:uuid"` // transfer legs only
	ToWarehouseID   *uuid.UUID `gorm:"type:uuid"` // transfer legs only
	Notes           string
	CreatedAt       time.Time
}

func (StockMovement) TableName() string { return "stock_movements" }

// NewStockMovement enforces snapshot consistency at construction: the
// before/after pair must differ by exactly the stated magnitude.
func NewStockMovement(inv *Inventory, typ MovementType, before, after int, performedBy uuid.UUID) (*StockMovement, error) {
	if performedBy == uuid.Nil {
		return nil, apperror.InvalidArgument("movement requires a performing actor")
	}
	magnitude := after - before
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude == 0 {
		return nil, apperror.InvalidArgument("movement must change the quantity")
	}
	return &StockMovement{
		ID:             uuid.New(),
		InventoryID:    inv.ID,
		ProductID:      inv.ProductID,
		WarehouseID:    inv.WarehouseID,
		Type:           typ,
		Quantity:       magnitude,
		QuantityBefore: before,
		QuantityAfter:  after,
		PerformedBy:    performedBy,
	}, nil
}

// WithTransferRoute stamps both warehouse ids on a transfer leg so the pair
// is reconstructable from either side.
func (m *StockMovement) WithTransferRoute(from, to uuid.UUID) *StockMovement {
	f, t := from, to
	m.FromWarehouseID = &f
	m.ToWarehouseID = &t
	return m
}

// WithReference attaches an external document reference.
func (m *StockMovement) WithReference(ref string) *StockMovement {
	if ref != "" {
		m.Reference = &ref
	}
	return m
}

// WithNotes attaches free-form operator notes.
func (m *StockMovement) WithNotes(notes string) *StockMovement {
	m.Notes = notes
	return m
}

// Delta is the signed quantity change this entry represents.
func (m *StockMovement) Delta() int { return m.QuantityAfter - m.QuantityBefore }
