package service

import (
	"context"

	"github.com/google/uuid"

	"packhouse/internal/model"
)

// Ports to the external subsystems. The HTTP implementations live in
// internal/infra; the projections they return live in internal/model so the
// two packages stay decoupled.

// ProductCatalog looks up products in the external catalog subsystem.
// Used to verify existence and seller ownership before a transfer.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

// OrderClient looks up orders in the external order subsystem. Order status
// progression on shipment happens asynchronously in the worker, not here.
type OrderClient interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
}
