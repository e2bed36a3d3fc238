package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"packhouse/internal/apperror"
	"packhouse/internal/model"
)

// CatalogClient fetches product existence and seller ownership from the
// catalog subsystem. The fulfillment core never caches or owns product data;
// this client is the only bridge. Calls go through the circuit breaker so a
// dead catalog fails fast.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewCatalogClient(baseURL string, cb *CircuitBreaker) *CatalogClient {
	return &CatalogClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cb:         cb,
	}
}

type catalogProductDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SellerID string `json:"seller_id"`
}

// GetProduct returns the product projection or NotFound when the catalog has
// no such product.
func (c *CatalogClient) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product *model.Product
	err := c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			fmt.Sprintf("%s/internal/products/%s", c.baseURL, id), nil)
		if err != nil {
			return fmt.Errorf("catalog: create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("catalog: unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			product = nil
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("catalog: returned %d", resp.StatusCode)
		}

		var body catalogProductDTO
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("catalog: decode response: %w", err)
		}
		pid, err := uuid.Parse(body.ID)
		if err != nil {
			return fmt.Errorf("catalog: malformed product id %q", body.ID)
		}
		p := &model.Product{ID: pid, Name: body.Name}
		if body.SellerID != "" {
			sid, err := uuid.Parse(body.SellerID)
			if err != nil {
				// A dropped seller id would pass the ownership check open.
				return fmt.Errorf("catalog: malformed seller id %q", body.SellerID)
			}
			p.SellerID = sid
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, apperror.Internal(err, "product lookup failed")
	}
	if product == nil {
		return nil, apperror.NotFound("product %s does not exist", id)
	}
	return product, nil
}
