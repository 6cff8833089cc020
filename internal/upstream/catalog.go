package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/A3Manav/jewellery-wishlist-service/internal/domain"
	"github.com/A3Manav/jewellery-wishlist-service/pkg/httpclient"
)

const catalogUpstreamName = "catalog-api"

// CatalogClient implements CatalogAPI against the storefront product
// endpoints. No bearer token is needed for reads.
type CatalogClient struct {
	baseURL string
	client  *httpclient.BreakerClient
}

// NewCatalogClient creates a catalog client for the given base URL.
func NewCatalogClient(baseURL string, client *httpclient.BreakerClient) *CatalogClient {
	return &CatalogClient{baseURL: baseURL, client: client}
}

// Product fetches one product by id.
func (c *CatalogClient) Product(ctx context.Context, id string) (*domain.Product, error) {
	resp, err := c.client.Get(ctx, c.baseURL+"/api/products/"+url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("product request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, catalogUpstreamName)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read product response: %w", err)
	}

	var payload productPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode product response: %w", err)
	}
	if payload.ID == "" {
		return nil, fmt.Errorf("product payload missing _id")
	}

	return payload.toDomain(), nil
}
