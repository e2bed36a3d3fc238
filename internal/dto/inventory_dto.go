package dto

import "github.com/shopspring/decimal"

// AdjustStockRequest applies a signed delta to one (product, warehouse) pair.
// MovementType must be one of the closed movement-type set; unrecognized
// values are rejected, never defaulted.
type AdjustStockRequest struct {
	ProductID    string  `json:"product_id" validate:"required,uuid4"`
	WarehouseID  string  `json:"warehouse_id" validate:"required,uuid4"`
	Delta        int     `json:"delta" validate:"required"`
	MovementType string  `json:"movement_type" validate:"required"`
	PerformedBy  string  `json:"performed_by" validate:"required,uuid4"`
	Reference    string  `json:"reference" validate:"max=64"`
	Notes        string  `json:"notes" validate:"max=500"`
	UnitCost     *decimal.Decimal `json:"unit_cost" validate:"omitempty"`
}

// ReserveStockRequest moves units between available and reserved.
type ReserveStockRequest struct {
	ProductID   string `json:"product_id" validate:"required,uuid4"`
	WarehouseID string `json:"warehouse_id" validate:"required,uuid4"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}

// RecordCountRequest records a physical cycle count. A non-zero discrepancy
// between counted and on-hand emits an adjustment movement.
type RecordCountRequest struct {
	ProductID       string `json:"product_id" validate:"required,uuid4"`
	WarehouseID     string `json:"warehouse_id" validate:"required,uuid4"`
	CountedQuantity int    `json:"counted_quantity" validate:"min=0"`
	PerformedBy     string `json:"performed_by" validate:"required,uuid4"`
	Notes           string `json:"notes" validate:"max=500"`
}

// TransferStockRequest moves quantity between two warehouses atomically.
type TransferStockRequest struct {
	ProductID       string `json:"product_id" validate:"required,uuid4"`
	FromWarehouseID string `json:"from_warehouse_id" validate:"required,uuid4"`
	ToWarehouseID   string `json:"to_warehouse_id" validate:"required,uuid4"`
	Quantity        int    `json:"quantity" validate:"required,gt=0"`
	Notes           string `json:"notes" validate:"max=500"`
	PerformedBy     string `json:"performed_by" validate:"required,uuid4"`
	// ActorRole gates the ownership check: restricted sellers may only move
	// their own products. Populated by the calling boundary.
	ActorRole string `json:"actor_role" validate:"omitempty,oneof=admin staff seller"`
}

type InventoryResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	WarehouseID      string          `json:"warehouse_id"`
	Quantity         int             `json:"quantity"`
	ReservedQuantity int             `json:"reserved_quantity"`
	Available        int             `json:"available_quantity"`
	MinimumStock     int             `json:"minimum_stock"`
	MaximumStock     int             `json:"maximum_stock"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	ShelfLocation    *string         `json:"shelf_location,omitempty"`
	LastRestockedAt  *string         `json:"last_restocked_at,omitempty"`
	LastCountedAt    *string         `json:"last_counted_at,omitempty"`
	Version          int             `json:"version"`
}

type LowStockResponse struct {
	Data []InventoryResponse `json:"data"`
}

// MovementFilter drives the read-only ledger queries. All fields optional;
// pagination defaults applied by the service.
type MovementFilter struct {
	InventoryID  string `form:"inventory_id" validate:"omitempty,uuid4"`
	ProductID    string `form:"product_id" validate:"omitempty,uuid4"`
	WarehouseID  string `form:"warehouse_id" validate:"omitempty,uuid4"`
	MovementType string `form:"movement_type"`
	Page         int    `form:"page" validate:"omitempty,min=1"`
	PageSize     int    `form:"page_size" validate:"omitempty,min=1,max=500"`
}

type MovementResponse struct {
	ID              string  `json:"id"`
	InventoryID     string  `json:"inventory_id"`
	ProductID       string  `json:"product_id"`
	WarehouseID     string  `json:"warehouse_id"`
	Type            string  `json:"type"`
	Quantity        int     `json:"quantity"`
	QuantityBefore  int     `json:"quantity_before"`
	QuantityAfter   int     `json:"quantity_after"`
	PerformedBy     string  `json:"performed_by"`
	Reference       *string `json:"reference,omitempty"`
	FromWarehouseID *string `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   *string `json:"to_warehouse_id,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

type MovementListResponse struct {
	Data     []MovementResponse `json:"data"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}
