package ebay

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
	defaultBaseURL     = "https://api.ebay.com/buy/browse/v1"
	defaultMarketplace = "EBAY_US"
)

// Policy returns the dispatch policy for eBay Browse API calls. The quota
// is per application, so pacing is scoped to the provider.
func Policy() gateway.Policy {
	return gateway.Policy{
		Provider:    gateway.ProviderEbay,
		MinInterval: 200 * time.Millisecond,
		Authorize:   gateway.BearerAuth(),
	}
}

// SearchRequest defines the parameters for a marketplace search.
type SearchRequest struct {
	Query      string
	CategoryID string
	Limit      int
	Offset     int
	Sort       string
	Filters    map[string]string
}

// SearchResult holds one page of search results.
type SearchResult struct {
	Items   []domain.Product
	Total   int
	Offset  int
	Limit   int
	HasMore bool
}

// Client is the eBay Browse API client.
type Client struct {
	dispatch    *gateway.Dispatcher
	baseURL     string
	marketplace string
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the default Browse API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithMarketplace overrides the default marketplace.
func WithMarketplace(m string) Option {
	return func(c *Client) {
		c.marketplace = m
	}
}

// New creates the eBay client.
func New(dispatch *gateway.Dispatcher, opts ...Option) *Client {
	c := &Client{
		dispatch:    dispatch,
		baseURL:     defaultBaseURL,
		marketplace: defaultMarketplace,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) key() gateway.Key {
	return gateway.Key{Provider: gateway.ProviderEbay}
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("X-EBAY-C-MARKETPLACE-ID", c.marketplace)
	return h
}

// Search queries the marketplace and returns normalized products.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	query := url.Values{}
	query.Set("q", req.Query)

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query.Set("limit", strconv.Itoa(limit))

	if req.CategoryID != "" {
		query.Set("category_ids", req.CategoryID)
	}
	if req.Offset > 0 {
		query.Set("offset", strconv.Itoa(req.Offset))
	}
	if req.Sort != "" {
		query.Set("sort", req.Sort)
	}
	for k, v := range req.Filters {
		query.Set(k, v)
	}

	var payload searchPayload
	if _, err := c.dispatch.Send(ctx, c.key(), gateway.RequestSpec{
		Method: http.MethodGet,
		URL:    c.baseURL + "/item_summary/search",
		Query:  query,
		Header: c.header(),
	}, &payload); err != nil {
		return nil, fmt.Errorf("searching ebay: %w", err)
	}

	items := make([]domain.Product, 0, len(payload.ItemSummaries))
	for i := range payload.ItemSummaries {
		p, err := toProduct(&payload.ItemSummaries[i])
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}

	return &SearchResult{
		Items:   items,
		Total:   payload.Total,
		Offset:  payload.Offset,
		Limit:   payload.Limit,
		HasMore: payload.Next != "",
	}, nil
}

// GetItem returns one item by its eBay item ID, with description and
// availability filled in.
func (c *Client) GetItem(ctx context.Context, itemID string) (*domain.Product, error) {
	var payload itemPayload
	if _, err := c.dispatch.Send(ctx, c.key(), gateway.RequestSpec{
		Method: http.MethodGet,
		URL:    c.baseURL + "/item/" + url.PathEscape(itemID),
		Header: c.header(),
	}, &payload); err != nil {
		return nil, fmt.Errorf("getting ebay item %s: %w", itemID, err)
	}

	p, err := toProductDetail(&payload)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
