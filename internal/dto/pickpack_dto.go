package dto

import "github.com/shopspring/decimal"

// CreatePickPackRequest starts fulfillment for a paid order. Line items are
// copied from the order subsystem at creation time.
type CreatePickPackRequest struct {
	OrderID     string `json:"order_id" validate:"required,uuid4"`
	WarehouseID string `json:"warehouse_id" validate:"required,uuid4"`
	Notes       string `json:"notes" validate:"max=500"`
}

// PickPackUserAction carries the acting warehouse-staff user for
// start-picking / start-packing transitions.
type PickPackUserAction struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}

// CompletePackingRequest carries the physical package attributes measured at
// the packing bench. All three are required inputs.
type CompletePackingRequest struct {
	WeightKg     decimal.Decimal `json:"weight_kg" validate:"required,gt=0"`
	Dimensions   string          `json:"dimensions" validate:"required,max=64"`
	PackageCount int             `json:"package_count" validate:"required,min=1"`
}

// UpdateItemStatusRequest flips one item flag or updates its shelf location.
// Action is one of: picked, packed, location.
type UpdateItemStatusRequest struct {
	Action        string `json:"action" validate:"required,oneof=picked packed location"`
	ShelfLocation string `json:"shelf_location" validate:"omitempty,max=32"`
}

// PickPackFilter drives ListAll. Status must parse against the closed status
// set when present.
type PickPackFilter struct {
	Status      string `form:"status"`
	WarehouseID string `form:"warehouse_id" validate:"omitempty,uuid4"`
	Page        int    `form:"page" validate:"omitempty,min=1"`
	PageSize    int    `form:"page_size" validate:"omitempty,min=1,max=200"`
}

// StatsFilter scopes the status-count aggregation.
type StatsFilter struct {
	WarehouseID string `form:"warehouse_id" validate:"omitempty,uuid4"`
	From        string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To          string `form:"to" validate:"omitempty,datetime=2006-01-02"`
}

type PickPackItemResponse struct {
	ID            string  `json:"id"`
	OrderItemID   string  `json:"order_item_id"`
	ProductID     string  `json:"product_id"`
	Quantity      int     `json:"quantity"`
	IsPicked      bool    `json:"is_picked"`
	IsPacked      bool    `json:"is_packed"`
	PickedAt      *string `json:"picked_at,omitempty"`
	PackedAt      *string `json:"packed_at,omitempty"`
	ShelfLocation *string `json:"shelf_location,omitempty"`
}

type PickPackResponse struct {
	ID           string                 `json:"id"`
	OrderID      string                 `json:"order_id"`
	WarehouseID  string                 `json:"warehouse_id"`
	PackNumber   string                 `json:"pack_number"`
	Status       string                 `json:"status"`
	PickedBy     *string                `json:"picked_by,omitempty"`
	PackedBy     *string                `json:"packed_by,omitempty"`
	PickedAt     *string                `json:"picked_at,omitempty"`
	PackedAt     *string                `json:"packed_at,omitempty"`
	ShippedAt    *string                `json:"shipped_at,omitempty"`
	Notes        string                 `json:"notes,omitempty"`
	WeightKg     decimal.Decimal        `json:"weight_kg"`
	Dimensions   string                 `json:"dimensions,omitempty"`
	PackageCount int                    `json:"package_count"`
	Items        []PickPackItemResponse `json:"items"`
	CreatedAt    string                 `json:"created_at"`
}

type PickPackListResponse struct {
	Data     []PickPackResponse `json:"data"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// PickPackStatsResponse returns fulfillment counts by status.
type PickPackStatsResponse struct {
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}
