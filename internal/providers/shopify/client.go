// Package shopify provides the Shopify Admin API client. Shopify is the
// storefront side of the gateway: orders come in, products and inventory
// go out. Auth is a static per-store admin token; the store reports bucket
// usage in X-Shopify-Shop-Api-Call-Limit and throttles at roughly 2 req/s,
// so dispatch paces at 500ms per tenant.
package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/storeflow/gateway/internal/gateway"
	domain "github.com/storeflow/gateway/pkg/types"
)

const (
	defaultAPIVersion = "2024-01"

	// minInterval spaces requests below Shopify's 2 req/s leak rate.
	minInterval = 500 * time.Millisecond
)

// Policy returns the dispatch policy for Shopify Admin API calls. The
// call-limit bucket is per store, so pacing is scoped per tenant.
func Policy() gateway.Policy {
	return gateway.Policy{
		Provider:        gateway.ProviderShopify,
		MinInterval:     minInterval,
		PerTenant:       true,
		Authorize:       gateway.HeaderAuth("X-Shopify-Access-Token"),
		ParseRateHeader: ParseCallLimit,
	}
}

// ParseCallLimit reads the X-Shopify-Shop-Api-Call-Limit header, formatted
// "current/max" ("32/40").
func ParseCallLimit(h http.Header) (used, limit int, ok bool) {
	v := h.Get("X-Shopify-Shop-Api-Call-Limit")
	if v == "" {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(v, "%d/%d", &used, &limit); err != nil {
		return 0, 0, false
	}
	return used, limit, true
}

// Client is a per-tenant Shopify Admin API client. All retry, pacing, and
// auth behavior lives in the dispatcher; the client only translates between
// domain shapes and Shopify payloads.
type Client struct {
	dispatch *gateway.Dispatcher
	tenantID string
	baseURL  string
	version  string
}

// Option configures the Client.
type Option func(*Client)

// WithAPIVersion overrides the default Admin API version.
func WithAPIVersion(v string) Option {
	return func(c *Client) {
		c.version = v
	}
}

// New creates a Client for one store. shopURL is the store origin
// ("https://example.myshopify.com").
func New(dispatch *gateway.Dispatcher, tenantID, shopURL string, opts ...Option) *Client {
	c := &Client{
		dispatch: dispatch,
		tenantID: tenantID,
		baseURL:  strings.TrimRight(shopURL, "/"),
		version:  defaultAPIVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) key() gateway.Key {
	return gateway.Key{Provider: gateway.ProviderShopify, TenantID: c.tenantID}
}

func (c *Client) url(path string) string {
	return c.baseURL + "/admin/api/" + c.version + "/" + path
}

// ListOrders returns the store's orders. status filters by Shopify order
// status ("open", "closed", "cancelled", "any"); empty means the store
// default ("open").
func (c *Client) ListOrders(ctx context.Context, status string, limit int) ([]domain.Order, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var payload ordersEnvelope
	if _, err := c.dispatch.Send(ctx, c.key(), gateway.RequestSpec{
		Method: http.MethodGet,
		URL:    c.url("orders.json"),
		Query:  query,
	}, &payload); err != nil {
		return nil, fmt.Errorf("listing shopify orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(payload.Orders))
	for i := range payload.Orders {
		o, err := toOrder(&payload.Orders[i], c.tenantID)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// GetOrder returns one order by its Shopify ID.
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	var payload orderEnvelope
	if _, err := c.dispatch.Send(ctx, c.key(), gateway.RequestSpec{
		Method: http.MethodGet,
		URL:    c.url("orders/" + strconv.FormatInt(orderID, 10) + ".json"),
	}, &payload); err != nil {
		return nil, fmt.Errorf("getting shopify order %d: %w", orderID, err)
	}

	o, err := toOrder(&payload.Order, c.tenantID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListProducts returns the store's products.
func (c *Client) ListProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var payload productsEnvelope
	if _, err := c.dispatch.Send(ctx, c.key(), gateway.RequestSpec{
		Method: http.MethodGet,
		URL:    c.url("products.json"),
		Query:  query,
	}, &payload); err != nil {
		return nil, fmt.Errorf("listing shopify products: %w", err)
	}

	products := make([]domain.Product, 0, len(payload.Products))
	for i := range payload.Products {
		p, err := toProduct(&payload.Products[i], c.tenantID)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// GetProduct returns one product by its Shopify ID.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	var payload productEnvelope
	if _, err := c.dispatch.Send(ctx, c.key(), gateway.RequestSpec{
		Method: http.MethodGet,
		URL:    c.url("products/" + strconv.FormatInt(productID, 10) + ".json"),
	}, &payload); err != nil {
		return nil, fmt.Errorf("getting shopify product %d: %w", productID, err)
	}

	p, err := toProduct(&payload.Product, c.tenantID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct creates a product on the store and returns the stored form.
func (c *Client) CreateProduct(ctx context.Context, spec domain.NewProductSpec) (*domain.Product, error) {
	var payload productEnvelope
	if _, err := c.dispatch.Send(ctx, c.key(), gateway.RequestSpec{
		Method: http.MethodPost,
		URL:    c.url("products.json"),
		Body:   productEnvelope{Product: fromProductSpec(spec)},
	}, &payload); err != nil {
		return nil, fmt.Errorf("creating shopify product: %w", err)
	}

	p, err := toProduct(&payload.Product, c.tenantID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct replaces the mutable fields of an existing product.
func (c *Client) UpdateProduct(ctx context.Context, productID int64, spec domain.NewProductSpec) (*domain.Product, error) {
	body := productEnvelope{Product: fromProductSpec(spec)}
	body.Product.ID = productID

	var payload productEnvelope
	if _, err := c.dispatch.Send(ctx, c.key(), gateway.RequestSpec{
		Method: http.MethodPut,
		URL:    c.url("products/" + strconv.FormatInt(productID, 10) + ".json"),
		Body:   body,
	}, &payload); err != nil {
		return nil, fmt.Errorf("updating shopify product %d: %w", productID, err)
	}

	p, err := toProduct(&payload.Product, c.tenantID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct removes a product from the store.
func (c *Client) DeleteProduct(ctx context.Context, productID int64) error {
	if _, err := c.dispatch.Send(ctx, c.key(), gateway.RequestSpec{
		Method: http.MethodDelete,
		URL:    c.url("products/" + strconv.FormatInt(productID, 10) + ".json"),
	}, nil); err != nil {
		return fmt.Errorf("deleting shopify product %d: %w", productID, err)
	}
	return nil
}

// AdjustInventory applies a relative inventory adjustment at one location
// and returns the resulting available count.
func (c *Client) AdjustInventory(ctx context.Context, locationID, inventoryItemID int64, delta int) (*domain.StockLevel, error) {
	var payload inventoryLevelEnvelope
	if _, err := c.dispatch.Send(ctx, c.key(), gateway.RequestSpec{
		Method: http.MethodPost,
		URL:    c.url("inventory_levels/adjust.json"),
		Body: inventoryAdjustPayload{
			LocationID:          locationID,
			InventoryItemID:     inventoryItemID,
			AvailableAdjustment: delta,
		},
	}, &payload); err != nil {
		return nil, fmt.Errorf("adjusting shopify inventory item %d: %w", inventoryItemID, err)
	}

	return &domain.StockLevel{
		SKU:       strconv.FormatInt(payload.InventoryLevel.InventoryItemID, 10),
		Provider:  string(gateway.ProviderShopify),
		Available: payload.InventoryLevel.Available,
		CheckedAt: time.Now(),
	}, nil
}
