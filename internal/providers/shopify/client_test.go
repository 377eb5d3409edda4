package shopify_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeflow/gateway/internal/gateway"
	"github.com/storeflow/gateway/internal/providers/shopify"
	"github.com/storeflow/gateway/pkg/money"
	domain "github.com/storeflow/gateway/pkg/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newMugSpec() domain.NewProductSpec {
	return domain.NewProductSpec{
		Title:    "Ceramic Mug",
		Price:    money.Money{Units: 1250, Currency: "USD"},
		SKU:      "MUG-S",
		Quantity: 3,
	}
}

// newTestClient wires a real token manager and dispatcher against a test
// server, with pacing disabled so multi-request tests run instantly.
func newTestClient(t *testing.T, handler http.Handler) *shopify.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := gateway.NewMemoryCredentialStore()
	require.NoError(t, store.PutCredential(context.Background(), &gateway.Credential{
		Provider:    gateway.ProviderShopify,
		TenantID:    "shop-1",
		Kind:        gateway.KindStaticBearer,
		AccessToken: "shpat-test-token",
	}))

	tokens := gateway.NewTokenManager(store, discardLogger())

	pol := shopify.Policy()
	pol.MinInterval = 0
	dispatch := gateway.NewDispatcher(tokens, []gateway.Policy{pol}, discardLogger())

	return shopify.New(dispatch, "shop-1", srv.URL)
}

func TestParseCallLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		header    string
		wantUsed  int
		wantLimit int
		wantOK    bool
	}{
		{name: "normal usage", header: "32/40", wantUsed: 32, wantLimit: 40, wantOK: true},
		{name: "at limit", header: "40/40", wantUsed: 40, wantLimit: 40, wantOK: true},
		{name: "missing header", header: "", wantOK: false},
		{name: "garbage", header: "not-a-limit", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := http.Header{}
			if tt.header != "" {
				h.Set("X-Shopify-Shop-Api-Call-Limit", tt.header)
			}

			used, limit, ok := shopify.ParseCallLimit(h)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantUsed, used)
				assert.Equal(t, tt.wantLimit, limit)
			}
		})
	}
}

func TestClient_ListOrders(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/admin/api/2024-01/orders.json", r.URL.Path)
		assert.Equal(t, "any", r.URL.Query().Get("status"))
		assert.Equal(t, "shpat-test-token", r.Header.Get("X-Shopify-Access-Token"))

		w.Header().Set("X-Shopify-Shop-Api-Call-Limit", "5/40")
		_, _ = w.Write([]byte(`{"orders": [
			{
				"id": 1001,
				"email": "buyer@example.com",
				"created_at": "2026-03-01T10:00:00Z",
				"total_price": "49.99",
				"currency": "USD",
				"financial_status": "paid",
				"line_items": [
					{"sku": "SKU-1", "title": "Widget", "quantity": 2, "price": "19.99"},
					{"sku": "SKU-2", "title": "Gadget", "quantity": 1, "price": "10.01"}
				]
			},
			{
				"id": 1002,
				"created_at": "2026-03-02T10:00:00Z",
				"total_price": "15.00",
				"currency": "USD",
				"financial_status": "paid",
				"fulfillment_status": "fulfilled",
				"fulfillments": [{"tracking_number": "TRACK-42", "status": "success"}],
				"line_items": []
			},
			{
				"id": 1003,
				"created_at": "2026-03-03T10:00:00Z",
				"cancelled_at": "2026-03-04T10:00:00Z",
				"total_price": "5.00",
				"currency": "USD",
				"financial_status": "refunded",
				"line_items": []
			}
		]}`))
	}))

	orders, err := client.ListOrders(context.Background(), "any", 0)
	require.NoError(t, err)
	require.Len(t, orders, 3)

	paid := orders[0]
	assert.Equal(t, "1001", paid.ID)
	assert.Equal(t, "shopify", paid.Provider)
	assert.Equal(t, "shop-1", paid.TenantID)
	assert.Equal(t, "buyer@example.com", paid.BuyerEmail)
	assert.Equal(t, int64(4999), paid.Total.Units)
	assert.Equal(t, "USD", paid.Total.Currency)
	assert.Nil(t, paid.TrackingNumber)
	require.Len(t, paid.Items, 2)
	assert.Equal(t, "SKU-1", paid.Items[0].SKU)
	assert.Equal(t, 2, paid.Items[0].Quantity)
	assert.Equal(t, int64(1999), paid.Items[0].Price.Units)

	shipped := orders[1]
	require.NotNil(t, shipped.TrackingNumber)
	assert.Equal(t, "TRACK-42", *shipped.TrackingNumber)
	assert.Empty(t, shipped.BuyerEmail)

	assert.Equal(t, "cancelled", string(orders[2].Status))
	assert.Equal(t, "shipped", string(shipped.Status))
	assert.Equal(t, "paid", string(paid.Status))
}

func TestClient_GetOrder(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-01/orders/1001.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"order": {
			"id": 1001,
			"created_at": "2026-03-01T10:00:00Z",
			"total_price": "49.99",
			"currency": "USD",
			"financial_status": "pending",
			"line_items": []
		}}`))
	}))

	order, err := client.GetOrder(context.Background(), 1001)
	require.NoError(t, err)
	assert.Equal(t, "1001", order.ID)
	assert.Equal(t, "open", string(order.Status))
}

func TestClient_ListProducts(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-01/products.json", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"products": [{
			"id": 7001,
			"title": "Ceramic Mug",
			"body_html": "<p>A mug</p>",
			"created_at": "2026-01-15T08:00:00Z",
			"image": {"src": "https://cdn.example.com/mug.jpg"},
			"variants": [
				{"id": 1, "sku": "MUG-S", "title": "Small", "price": "12.50", "inventory_quantity": 3},
				{"id": 2, "sku": "MUG-L", "title": "Large", "price": "14.00", "inventory_quantity": 7}
			]
		}]}`))
	}))

	products, err := client.ListProducts(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "7001", p.ID)
	assert.Equal(t, "Ceramic Mug", p.Title)
	assert.Equal(t, "https://cdn.example.com/mug.jpg", p.ImageURL)
	assert.Equal(t, int64(1250), p.Price.Units)
	assert.Equal(t, "MUG-S", p.SKU)
	assert.Equal(t, 10, p.Quantity)
	require.Len(t, p.Variants, 2)
	assert.Equal(t, 7, p.Variants[1].Quantity)
}

func TestClient_ProductWithoutVariantsHasUnknownQuantity(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"product": {"id": 7002, "title": "Bare"}}`))
	}))

	p, err := client.GetProduct(context.Background(), 7002)
	require.NoError(t, err)
	assert.Equal(t, -1, p.Quantity)
	assert.Empty(t, p.Variants)
}

func TestClient_CreateProduct(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/api/2024-01/products.json", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var sent map[string]any
		require.NoError(t, json.Unmarshal(body, &sent))
		product := sent["product"].(map[string]any)
		assert.Equal(t, "Ceramic Mug", product["title"])
		variant := product["variants"].([]any)[0].(map[string]any)
		assert.Equal(t, "12.50", variant["price"])
		assert.Equal(t, "MUG-S", variant["sku"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"product": {
			"id": 7001,
			"title": "Ceramic Mug",
			"variants": [{"id": 1, "sku": "MUG-S", "price": "12.50", "inventory_quantity": 3}]
		}}`))
	}))

	p, err := client.CreateProduct(context.Background(), newMugSpec())
	require.NoError(t, err)
	assert.Equal(t, "7001", p.ID)
	assert.Equal(t, int64(1250), p.Price.Units)
}

func TestClient_UpdateProduct(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/admin/api/2024-01/products/7001.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"product": {"id": 7001, "title": "Ceramic Mug v2"}}`))
	}))

	p, err := client.UpdateProduct(context.Background(), 7001, newMugSpec())
	require.NoError(t, err)
	assert.Equal(t, "Ceramic Mug v2", p.Title)
}

func TestClient_DeleteProduct(t *testing.T) {
	t.Parallel()

	var called bool
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/admin/api/2024-01/products/7001.json", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	}))

	require.NoError(t, client.DeleteProduct(context.Background(), 7001))
	assert.True(t, called)
}

func TestClient_AdjustInventory(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/api/2024-01/inventory_levels/adjust.json", r.URL.Path)

		var sent map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		assert.Equal(t, float64(123), sent["location_id"])
		assert.Equal(t, float64(456), sent["inventory_item_id"])
		assert.Equal(t, float64(-2), sent["available_adjustment"])

		_, _ = w.Write([]byte(`{"inventory_level": {"inventory_item_id": 456, "location_id": 123, "available": 8}}`))
	}))

	level, err := client.AdjustInventory(context.Background(), 123, 456, -2)
	require.NoError(t, err)
	assert.Equal(t, 8, level.Available)
	assert.Equal(t, "456", level.SKU)
	assert.Equal(t, "shopify", level.Provider)
}

func TestClient_ProviderErrorPassesThrough(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors": {"title": ["can't be blank"]}}`))
	}))

	_, err := client.CreateProduct(context.Background(), newMugSpec())
	require.Error(t, err)

	var provErr *gateway.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusUnprocessableEntity, provErr.Status)
	assert.Equal(t, gateway.ProviderShopify, provErr.Provider)
}
