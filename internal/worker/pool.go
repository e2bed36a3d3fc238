package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	// QueueLowStock carries "stock at or below minimum" events.
	QueueLowStock = "events:low_stock"
	// QueueShipped carries "pick-pack shipped" events.
	QueueShipped = "events:pickpack_shipped"

	maxAttempts = 3
)

// Job is the generic envelope for all domain events. Attempts counts
// deliveries so poison messages end up in the DLQ instead of looping.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// LowStockEvent is emitted after a committed adjustment leaves an inventory
// record at or below its minimum level.
type LowStockEvent struct {
	InventoryID  string `json:"inventory_id"`
	ProductID    string `json:"product_id"`
	WarehouseID  string `json:"warehouse_id"`
	Quantity     int    `json:"quantity"`
	MinimumStock int    `json:"minimum_stock"`
}

// ShippedEvent is emitted after a pick-pack commit reaches shipped status.
type ShippedEvent struct {
	PickPackID string `json:"pick_pack_id"`
	OrderID    string `json:"order_id"`
	PackNumber string `json:"pack_number"`
	ShippedAt  string `json:"shipped_at"` // ISO 8601
}

// Dispatcher enqueues domain events onto Redis lists after the owning
// transaction commits. Enqueueing is fire-and-forget: the core's correctness
// never depends on a subscriber succeeding, so callers ignore the error
// beyond logging.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher { return &Dispatcher{rdb: rdb} }

// PublishLowStock pushes a low-stock event. Nil-safe so services can run
// without an event bus in unit tests.
func (d *Dispatcher) PublishLowStock(ctx context.Context, evt LowStockEvent) error {
	if d == nil {
		return nil
	}
	return d.enqueue(ctx, QueueLowStock, "low_stock", evt, 0)
}

// PublishShipped pushes a shipment notification event.
func (d *Dispatcher) PublishShipped(ctx context.Context, evt ShippedEvent) error {
	if d == nil {
		return nil
	}
	return d.enqueue(ctx, QueueShipped, "pickpack_shipped", evt, 0)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}, attempts int) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data, Attempts: attempts})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handler consumes one event. A returned error triggers redelivery up to
// maxAttempts, then the job moves to the DLQ.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Handlers maps each queue to its consumer.
type Handlers struct {
	LowStock Handler
	Shipped  Handler
}

// StartPool launches numWorkers goroutines consuming both event queues.
// Each goroutine blocks on BRPOP, so the pool costs nothing when idle.
func StartPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Int("workers", numWorkers).Msg("event worker pool started")
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *Handlers, id int) {
	queues := []string{QueueLowStock, QueueShipped}
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("event worker shutting down")
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx.
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal event job")
		return
	}

	var handler Handler
	switch queue {
	case QueueLowStock:
		handler = handlers.LowStock
	case QueueShipped:
		handler = handlers.Shipped
	}
	if handler == nil {
		log.Warn().Str("queue", queue).Msg("no handler wired for queue")
		return
	}

	err := handler.Process(ctx, job.Payload)
	if err == nil {
		return
	}

	job.Attempts++
	log.Warn().Str("queue", queue).Str("type", job.Type).
		Int("attempts", job.Attempts).Err(err).Msg("event handler failed")

	if job.Attempts >= maxAttempts {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}
	// Redeliver; subscriber failures never propagate back to the core.
	if encoded, merr := json.Marshal(job); merr == nil {
		if perr := rdb.LPush(ctx, queue, encoded).Err(); perr != nil {
			log.Error().Str("queue", queue).Err(perr).Msg("failed to re-enqueue event")
		}
	}
}
