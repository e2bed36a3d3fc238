package model

// Read-only projections of the catalog and order subsystems. The fulfillment
// core never owns this data; these are the shapes the HTTP clients decode
// into and the services consume.

import "github.com/google/uuid"

// Product carries only the fields the core needs for authorization.
type Product struct {
	ID       uuid.UUID
	Name     string
	SellerID uuid.UUID // owning seller; Nil for platform-owned products
}

// Order is consumed when a PickPack is seeded from the order's lines.
type Order struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Lines  []OrderLine
}
