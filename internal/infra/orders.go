package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"packhouse/internal/apperror"
	"packhouse/internal/model"
)

// OrderServiceClient talks to the order subsystem: it reads orders (with line
// items) when a pick-pack is seeded and notifies shipment afterwards. The
// shipment notification runs from the event worker, never from a request
// handler.
type OrderServiceClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewOrderServiceClient(baseURL string, cb *CircuitBreaker) *OrderServiceClient {
	return &OrderServiceClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cb:         cb,
	}
}

type orderDTO struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Items  []struct {
		ID        string `json:"id"`
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
}

// GetOrder returns the order projection or NotFound when the order subsystem
// has no such order.
func (c *OrderServiceClient) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order *model.Order
	err := c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			fmt.Sprintf("%s/internal/orders/%s", c.baseURL, id), nil)
		if err != nil {
			return fmt.Errorf("orders: create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("orders: unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			order = nil
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("orders: returned %d", resp.StatusCode)
		}

		var body orderDTO
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("orders: decode response: %w", err)
		}
		o := &model.Order{}
		if o.ID, err = uuid.Parse(body.ID); err != nil {
			return fmt.Errorf("orders: malformed order id %q", body.ID)
		}
		o.UserID, _ = uuid.Parse(body.UserID)
		for _, item := range body.Items {
			itemID, err := uuid.Parse(item.ID)
			if err != nil {
				return fmt.Errorf("orders: malformed item id %q", item.ID)
			}
			productID, err := uuid.Parse(item.ProductID)
			if err != nil {
				return fmt.Errorf("orders: malformed product id %q", item.ProductID)
			}
			o.Lines = append(o.Lines, model.OrderLine{
				OrderItemID: itemID,
				ProductID:   productID,
				Quantity:    item.Quantity,
			})
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, apperror.Internal(err, "order lookup failed")
	}
	if order == nil {
		return nil, apperror.NotFound("order %s does not exist", id)
	}
	return order, nil
}

// NotifyShipped tells the order subsystem a pick-pack left the building so it
// can progress the order status. Called from the shipped-event worker;
// failures bubble up for retry / DLQ handling there.
func (c *OrderServiceClient) NotifyShipped(ctx context.Context, orderID, pickPackID, packNumber, shippedAt string) error {
	return c.cb.Execute(func() error {
		payload, err := json.Marshal(map[string]string{
			"pick_pack_id": pickPackID,
			"pack_number":  packNumber,
			"shipped_at":   shippedAt,
		})
		if err != nil {
			return fmt.Errorf("orders: marshal shipment payload: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			fmt.Sprintf("%s/internal/orders/%s/shipped", c.baseURL, orderID),
			bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("orders: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("orders: unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return fmt.Errorf("orders: shipment notification returned %d", resp.StatusCode)
		}
		return nil
	})
}
