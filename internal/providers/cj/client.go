package cj

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/storeflow/gateway/internal/gateway"
	domain "github.com/storeflow/gateway/pkg/types"
)

// Policy returns the dispatch policy for CJ API calls. CJ throttles per
// account, not per storefront, so pacing is scoped to the provider.
func Policy() gateway.Policy {
	return gateway.Policy{
		Provider:    gateway.ProviderCJ,
		MinInterval: time.Second,
		Authorize:   gateway.HeaderAuth("CJ-Access-Token"),
	}
}

// Client is the CJ Dropshipping API client. CJ wraps every response in a
// {code, result, message, data} envelope; a 200 with result=false is still
// a failed call.
type Client struct {
	dispatch *gateway.Dispatcher
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

// New creates the CJ client.
func New(dispatch *gateway.Dispatcher, opts ...Option) *Client {
	c := &Client{
		dispatch: dispatch,
		baseURL:  defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) key() gateway.Key {
	return gateway.Key{Provider: gateway.ProviderCJ}
}

// call dispatches one CJ request, unwraps the envelope, and decodes data
// into out when out is non-nil.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var env envelope
	if _, err := c.dispatch.Send(ctx, c.key(), gateway.RequestSpec{
		Method: method,
		URL:    c.baseURL + path,
		Query:  query,
		Body:   body,
	}, &env); err != nil {
		return err
	}

	if !env.Result {
		return fmt.Errorf("cj %s rejected (code %d): %s", path, env.Code, env.Message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: cj %s data: %w", gateway.ErrMalformedResponse, path, err)
		}
	}
	return nil
}

// ListProducts returns one page of CJ's sourcing catalog.
func (c *Client) ListProducts(ctx context.Context, pageNum, pageSize int) ([]domain.Product, error) {
	query := url.Values{}
	if pageNum > 0 {
		query.Set("pageNum", strconv.Itoa(pageNum))
	}
	if pageSize > 0 {
		query.Set("pageSize", strconv.Itoa(pageSize))
	}

	var data productListData
	if err := c.call(ctx, http.MethodGet, "/product/list", query, nil, &data); err != nil {
		return nil, fmt.Errorf("listing cj products: %w", err)
	}

	products := make([]domain.Product, 0, len(data.List))
	for i := range data.List {
		products = append(products, toProduct(&data.List[i]))
	}
	return products, nil
}

// QueryStock returns the total available stock for one variant across CJ's
// warehouses.
func (c *Client) QueryStock(ctx context.Context, vid string) (*domain.StockLevel, error) {
	query := url.Values{"vid": {vid}}

	var warehouses []stockPayload
	if err := c.call(ctx, http.MethodGet, "/product/stock/queryByVid", query, nil, &warehouses); err != nil {
		return nil, fmt.Errorf("querying cj stock for %s: %w", vid, err)
	}

	total := 0
	for _, w := range warehouses {
		total += w.StorageNum
	}

	return &domain.StockLevel{
		SKU:       vid,
		Provider:  string(gateway.ProviderCJ),
		Available: total,
		CheckedAt: time.Now(),
	}, nil
}

// FreightRequest describes a prospective shipment to quote.
type FreightRequest struct {
	StartCountryCode string
	EndCountryCode   string
	Products         []FreightProduct
}

// FreightProduct is one line of a freight calculation.
type FreightProduct struct {
	VID      string
	Quantity int
}

// CalculateFreight returns the available shipping options for a
// prospective shipment.
func (c *Client) CalculateFreight(ctx context.Context, req FreightRequest) ([]domain.ShippingQuote, error) {
	body := freightRequestPayload{
		StartCountryCode: req.StartCountryCode,
		EndCountryCode:   req.EndCountryCode,
	}
	for _, p := range req.Products {
		body.Products = append(body.Products, freightProductPayload{VID: p.VID, Quantity: p.Quantity})
	}

	var options []freightOptionPayload
	if err := c.call(ctx, http.MethodPost, "/logistic/freightCalculate", nil, body, &options); err != nil {
		return nil, fmt.Errorf("calculating cj freight: %w", err)
	}

	quotes := make([]domain.ShippingQuote, 0, len(options))
	for i := range options {
		quotes = append(quotes, toShippingQuote(&options[i]))
	}
	return quotes, nil
}

// OrderRequest describes a fulfillment order to place with CJ.
type OrderRequest struct {
	OrderNumber     string
	ShippingName    string
	ShippingCountry string
	ShippingProv    string
	ShippingCity    string
	ShippingAddress string
	ShippingPhone   string
	LogisticName    string
	Products        []OrderProduct
}

// OrderProduct is one line of a fulfillment order.
type OrderProduct struct {
	VID      string
	Quantity int
}

// CreateOrder places a fulfillment order and returns CJ's order ID.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (string, error) {
	body := orderRequestPayload{
		OrderNumber:     req.OrderNumber,
		ShippingName:    req.ShippingName,
		ShippingCountry: req.ShippingCountry,
		ShippingProv:    req.ShippingProv,
		ShippingCity:    req.ShippingCity,
		ShippingAddress: req.ShippingAddress,
		ShippingPhone:   req.ShippingPhone,
		LogisticName:    req.LogisticName,
	}
	for _, p := range req.Products {
		body.Products = append(body.Products, orderProductPayload{VID: p.VID, Quantity: p.Quantity})
	}

	var data orderCreateData
	if err := c.call(ctx, http.MethodPost, "/shopping/order/createOrderV2", nil, body, &data); err != nil {
		return "", fmt.Errorf("creating cj order: %w", err)
	}
	return data.OrderID, nil
}

// ListOrders returns one page of fulfillment orders.
func (c *Client) ListOrders(ctx context.Context, pageNum, pageSize int) ([]domain.Order, error) {
	query := url.Values{}
	if pageNum > 0 {
		query.Set("pageNum", strconv.Itoa(pageNum))
	}
	if pageSize > 0 {
		query.Set("pageSize", strconv.Itoa(pageSize))
	}

	var data orderListData
	if err := c.call(ctx, http.MethodGet, "/shopping/order/list", query, nil, &data); err != nil {
		return nil, fmt.Errorf("listing cj orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(data.List))
	for i := range data.List {
		orders = append(orders, toOrder(&data.List[i]))
	}
	return orders, nil
}
