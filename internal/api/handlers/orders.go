package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storeflow/gateway/internal/gateway"
	"github.com/storeflow/gateway/internal/providers/ebay"
	"github.com/storeflow/gateway/internal/registry"
	"github.com/storeflow/gateway/internal/store"
	domain "github.com/storeflow/gateway/pkg/types"
)

// ProviderDirectory resolves providers to configured clients. Implemented
// by registry.Registry.
type ProviderDirectory interface {
	ListOrders(ctx context.Context, provider gateway.Provider, tenantID string, limit int) ([]domain.Order, error)
	ListProducts(ctx context.Context, provider gateway.Provider, tenantID string, limit int) ([]domain.Product, error)
	SearchSourcing(ctx context.Context, req ebay.SearchRequest) (*ebay.SearchResult, error)
}

// OrdersHandler serves order and product reads through the provider gateway.
type OrdersHandler struct {
	dir ProviderDirectory
}

// NewOrdersHandler creates a new OrdersHandler.
func NewOrdersHandler(dir ProviderDirectory) *OrdersHandler {
	return &OrdersHandler{dir: dir}
}

// --- Input/Output types ---

// ListOrdersInput is the input for listing orders from a provider.
type ListOrdersInput struct {
	Provider string `query:"provider" required:"true" doc:"Provider name" enum:"shopify,etsy,cj,ebay"`
	TenantID string `query:"tenant_id" doc:"Tenant identifier"`
	Limit    int    `query:"limit" default:"50" minimum:"1" maximum:"250" doc:"Maximum orders to return"`
}

// ListOrdersOutput is the response for listing orders.
type ListOrdersOutput struct {
	Body []domain.Order
}

// ListProductsInput is the input for listing products from a provider.
type ListProductsInput struct {
	Provider string `query:"provider" required:"true" doc:"Provider name" enum:"shopify,etsy,cj,ebay"`
	TenantID string `query:"tenant_id" doc:"Tenant identifier"`
	Limit    int    `query:"limit" default:"50" minimum:"1" maximum:"250" doc:"Maximum products to return"`
}

// ListProductsOutput is the response for listing products.
type ListProductsOutput struct {
	Body []domain.Product
}

// SearchSourcingInput is the input for searching the eBay Browse catalog.
type SearchSourcingInput struct {
	Query      string `query:"q" required:"true" doc:"Search keywords"`
	CategoryID string `query:"category_id" doc:"Category filter"`
	Limit      int    `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Maximum items to return"`
	Offset     int    `query:"offset" default:"0" minimum:"0" doc:"Result offset for paging"`
}

// SearchSourcingOutput is the response for a sourcing search.
type SearchSourcingOutput struct {
	Body SearchSourcingResult
}

// SearchSourcingResult pages through sourcing candidates.
type SearchSourcingResult struct {
	Items   []domain.Product `json:"items"`
	Total   int              `json:"total"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
	HasMore bool             `json:"has_more"`
}

// providerErr maps gateway failures to API status codes.
func providerErr(err error) error {
	switch {
	case errors.Is(err, store.ErrSettingsNotFound):
		return huma.Error404NotFound("provider not configured for tenant")
	case errors.Is(err, registry.ErrUnsupported):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, gateway.ErrNotConfigured):
		return huma.Error409Conflict("provider not connected: " + err.Error())
	case errors.Is(err, gateway.ErrAuthRejected), errors.Is(err, gateway.ErrAuthExpired):
		return huma.Error409Conflict("provider authorization expired: " + err.Error())
	case errors.Is(err, gateway.ErrRateLimitExceeded):
		return huma.NewError(http.StatusTooManyRequests, "provider rate limit exhausted")
	default:
		return huma.Error502BadGateway("provider call failed: " + err.Error())
	}
}

// --- Handlers ---

// ListOrders returns recent orders from one provider.
func (h *OrdersHandler) ListOrders(
	ctx context.Context,
	input *ListOrdersInput,
) (*ListOrdersOutput, error) {
	orders, err := h.dir.ListOrders(ctx, gateway.Provider(input.Provider), input.TenantID, input.Limit)
	if err != nil {
		return nil, providerErr(err)
	}

	if orders == nil {
		orders = []domain.Order{}
	}

	return &ListOrdersOutput{Body: orders}, nil
}

// ListProducts returns the provider's catalog for the tenant.
func (h *OrdersHandler) ListProducts(
	ctx context.Context,
	input *ListProductsInput,
) (*ListProductsOutput, error) {
	products, err := h.dir.ListProducts(ctx, gateway.Provider(input.Provider), input.TenantID, input.Limit)
	if err != nil {
		return nil, providerErr(err)
	}

	if products == nil {
		products = []domain.Product{}
	}

	return &ListProductsOutput{Body: products}, nil
}

// SearchSourcing queries the eBay Browse catalog for supply candidates.
func (h *OrdersHandler) SearchSourcing(
	ctx context.Context,
	input *SearchSourcingInput,
) (*SearchSourcingOutput, error) {
	res, err := h.dir.SearchSourcing(ctx, ebay.SearchRequest{
		Query:      input.Query,
		CategoryID: input.CategoryID,
		Limit:      input.Limit,
		Offset:     input.Offset,
	})
	if err != nil {
		return nil, providerErr(err)
	}

	items := res.Items
	if items == nil {
		items = []domain.Product{}
	}

	return &SearchSourcingOutput{Body: SearchSourcingResult{
		Items:   items,
		Total:   res.Total,
		Offset:  res.Offset,
		Limit:   res.Limit,
		HasMore: res.HasMore,
	}}, nil
}

// RegisterOrderRoutes registers order, product, and sourcing endpoints.
func RegisterOrderRoutes(api huma.API, h *OrdersHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-orders",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders",
		Summary:     "List orders from a provider",
		Description: "Fetches recent orders through the rate-limited provider gateway.",
		Tags:        []string{"orders"},
		Errors:      []int{http.StatusNotFound, http.StatusConflict, http.StatusBadGateway},
	}, h.ListOrders)

	huma.Register(api, huma.Operation{
		OperationID: "list-products",
		Method:      http.MethodGet,
		Path:        "/api/v1/products",
		Summary:     "List products from a provider",
		Description: "Fetches the provider's product catalog through the rate-limited gateway.",
		Tags:        []string{"products"},
		Errors:      []int{http.StatusNotFound, http.StatusConflict, http.StatusBadGateway},
	}, h.ListProducts)

	huma.Register(api, huma.Operation{
		OperationID: "search-sourcing",
		Method:      http.MethodGet,
		Path:        "/api/v1/sourcing/search",
		Summary:     "Search sourcing candidates",
		Description: "Searches the eBay Browse catalog for items to source.",
		Tags:        []string{"sourcing"},
		Errors:      []int{http.StatusConflict, http.StatusBadGateway},
	}, h.SearchSourcing)
}
