package etsy

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

const defaultBaseURL = "https://openapi.etsy.com/v3/application"

// Policy returns the dispatch policy for Etsy Open API calls. Etsy limits
// per app key and per user token; tokens are per tenant, so pacing is
// scoped per tenant. apiKey is the application keystring, sent alongside
// the Bearer token on every request.
func Policy(apiKey string) gateway.Policy {
	return gateway.Policy{
		Provider:    gateway.ProviderEtsy,
		MinInterval: 150 * time.Millisecond,
		PerTenant:   true,
		Authorize: func(req *http.Request, token string) {
			req.Header.Set("x-api-key", apiKey)
			req.Header.Set("Authorization", "Bearer "+token)
		},
	}
}

// Client is a per-tenant Etsy Open API client.
type Client struct {
	dispatch *gateway.Dispatcher
	tenantID string
	baseURL  string
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// New creates a Client for one connected Etsy account.
func New(dispatch *gateway.Dispatcher, tenantID string, opts ...Option) *Client {
	c := &Client{
		dispatch: dispatch,
		tenantID: tenantID,
		baseURL:  defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) key() gateway.Key {
	return gateway.Key{Provider: gateway.ProviderEtsy, TenantID: c.tenantID}
}

// Shop is the subset of an Etsy shop the gateway surfaces.
type Shop struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	Currency string `json:"currency"`
	URL      string `json:"url,omitempty"`
}

// GetShop returns one shop by ID.
func (c *Client) GetShop(ctx context.Context, shopID int64) (*Shop, error) {
	var payload shopPayload
	if _, err := c.dispatch.Send(ctx, c.key(), gateway.RequestSpec{
		Method: http.MethodGet,
		URL:    c.baseURL + "/shops/" + strconv.FormatInt(shopID, 10),
	}, &payload); err != nil {
		return nil, fmt.Errorf("getting etsy shop %d: %w", shopID, err)
	}

	return &Shop{
		ID:       payload.ShopID,
		Name:     payload.ShopName,
		Title:    payload.Title,
		Currency: payload.CurrencyCode,
		URL:      payload.URL,
	}, nil
}

// ListReceipts returns the shop's receipts (Etsy's orders) as normalized
// orders.
func (c *Client) ListReceipts(ctx context.Context, shopID int64, limit int) ([]domain.Order, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var payload receiptsPayload
	if _, err := c.dispatch.Send(ctx, c.key(), gateway.RequestSpec{
		Method: http.MethodGet,
		URL:    c.baseURL + "/shops/" + strconv.FormatInt(shopID, 10) + "/receipts",
		Query:  query,
	}, &payload); err != nil {
		return nil, fmt.Errorf("listing etsy receipts for shop %d: %w", shopID, err)
	}

	orders := make([]domain.Order, 0, len(payload.Results))
	for i := range payload.Results {
		orders = append(orders, toOrder(&payload.Results[i], c.tenantID))
	}
	return orders, nil
}

// ListListings returns the shop's active listings as normalized products.
func (c *Client) ListListings(ctx context.Context, shopID int64, limit int) ([]domain.Product, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var payload listingsPayload
	if _, err := c.dispatch.Send(ctx, c.key(), gateway.RequestSpec{
		Method: http.MethodGet,
		URL:    c.baseURL + "/shops/" + strconv.FormatInt(shopID, 10) + "/listings/active",
		Query:  query,
	}, &payload); err != nil {
		return nil, fmt.Errorf("listing etsy listings for shop %d: %w", shopID, err)
	}

	products := make([]domain.Product, 0, len(payload.Results))
	for i := range payload.Results {
		products = append(products, toProduct(&payload.Results[i], c.tenantID))
	}
	return products, nil
}

// GetListing returns one listing by ID.
func (c *Client) GetListing(ctx context.Context, listingID int64) (*domain.Product, error) {
	var payload listingPayload
	if _, err := c.dispatch.Send(ctx, c.key(), gateway.RequestSpec{
		Method: http.MethodGet,
		URL:    c.baseURL + "/listings/" + strconv.FormatInt(listingID, 10),
	}, &payload); err != nil {
		return nil, fmt.Errorf("getting etsy listing %d: %w", listingID, err)
	}

	p := toProduct(&payload, c.tenantID)
	return &p, nil
}

// UpdateListingInventory sets the on-hand quantity for one SKU of a
// listing and returns the resulting stock level.
func (c *Client) UpdateListingInventory(ctx context.Context, listingID int64, sku string, quantity int) (*domain.StockLevel, error) {
	body := inventoryUpdatePayload{
		Products: []inventoryProductPayload{{
			SKU:       sku,
			Offerings: []inventoryOfferingPayload{{Quantity: quantity}},
		}},
	}

	if _, err := c.dispatch.Send(ctx, c.key(), gateway.RequestSpec{
		Method: http.MethodPut,
		URL:    c.baseURL + "/listings/" + strconv.FormatInt(listingID, 10) + "/inventory",
		Body:   body,
	}, nil); err != nil {
		return nil, fmt.Errorf("updating etsy listing %d inventory: %w", listingID, err)
	}

	return &domain.StockLevel{
		SKU:       sku,
		Provider:  string(gateway.ProviderEtsy),
		Available: quantity,
		CheckedAt: time.Now(),
	}, nil
}
