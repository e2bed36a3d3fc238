package worker

// lowstock_worker.go
// Consumes low-stock events and mails the replenishment team. Delivery is
// best-effort: a failure is retried by the pool and eventually parked in the
// DLQ without ever touching inventory state.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"packhouse/internal/infra"
)

// LowStockWorker mails low-stock alerts to the configured address.
type LowStockWorker struct {
	mailer     *infra.Mailer
	alertEmail string
}

func NewLowStockWorker(mailer *infra.Mailer, alertEmail string) *LowStockWorker {
	return &LowStockWorker{mailer: mailer, alertEmail: alertEmail}
}

func (w *LowStockWorker) Process(_ context.Context, raw json.RawMessage) error {
	var evt LowStockEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		log.Error().Err(err).Msg("lowstock_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}
	if w.alertEmail == "" {
		log.Warn().Str("product_id", evt.ProductID).Msg("lowstock_worker: no alert email configured — skipping")
		return nil
	}

	subject := fmt.Sprintf("Low stock: product %s at warehouse %s", evt.ProductID, evt.WarehouseID)
	body := fmt.Sprintf(
		"Product %s at warehouse %s is down to %d units (minimum %d).\nInventory record: %s\n",
		evt.ProductID, evt.WarehouseID, evt.Quantity, evt.MinimumStock, evt.InventoryID)

	if err := w.mailer.SendAlert(w.alertEmail, subject, body, ""); err != nil {
		return fmt.Errorf("lowstock_worker: send alert: %w", err)
	}
	log.Info().Str("product_id", evt.ProductID).Str("warehouse_id", evt.WarehouseID).
		Int("quantity", evt.Quantity).Msg("lowstock_worker: alert sent")
	return nil
}
