package worker

// shipped_worker.go
// Consumes pick-pack shipped events and notifies the order subsystem so it
// can progress the order status. The core's shipped transition has already
// committed by the time this runs; a notification failure is retried and
// eventually parked in the DLQ, never rolled back into the core.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"packhouse/internal/infra"
)

// ShippedWorker forwards shipment notifications to the order service.
type ShippedWorker struct {
	orders *infra.OrderServiceClient
}

func NewShippedWorker(orders *infra.OrderServiceClient) *ShippedWorker {
	return &ShippedWorker{orders: orders}
}

func (w *ShippedWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var evt ShippedEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		log.Error().Err(err).Msg("shipped_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}

	if err := w.orders.NotifyShipped(ctx, evt.OrderID, evt.PickPackID, evt.PackNumber, evt.ShippedAt); err != nil {
		return fmt.Errorf("shipped_worker: notify order service: %w", err)
	}
	log.Info().Str("order_id", evt.OrderID).Str("pack_number", evt.PackNumber).
		Msg("shipped_worker: order service notified")
	return nil
}
