package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/storeflow/gateway/pkg/types"
)

// SourcingResult pages through sourcing search candidates.
type SourcingResult struct {
	Items   []domain.Product `json:"items"`
	Total   int              `json:"total"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
	HasMore bool             `json:"has_more"`
}

func providerQuery(provider, tenantID string, limit int) url.Values {
	q := url.Values{}
	q.Set("provider", provider)
	if tenantID != "" {
		q.Set("tenant_id", tenantID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

// ListOrders returns recent orders from one provider.
func (c *Client) ListOrders(ctx context.Context, provider, tenantID string, limit int) ([]domain.Order, error) {
	var out []domain.Order
	path := "/api/v1/orders?" + providerQuery(provider, tenantID, limit).Encode()
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProducts returns the provider's product catalog for the tenant.
func (c *Client) ListProducts(ctx context.Context, provider, tenantID string, limit int) ([]domain.Product, error) {
	var out []domain.Product
	path := "/api/v1/products?" + providerQuery(provider, tenantID, limit).Encode()
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchSourcing searches the eBay Browse catalog for items to source.
func (c *Client) SearchSourcing(ctx context.Context, query string, limit, offset int) (*SourcingResult, error) {
	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	var out SourcingResult
	if err := c.get(ctx, "/api/v1/sourcing/search?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
