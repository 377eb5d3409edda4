package cj_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeflow/gateway/internal/gateway"
	"github.com/storeflow/gateway/internal/providers/cj"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestClient(t *testing.T, handler http.Handler) *cj.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := gateway.NewMemoryCredentialStore()
	require.NoError(t, store.PutCredential(context.Background(), &gateway.Credential{
		Provider:         gateway.ProviderCJ,
		Kind:             gateway.KindOAuthRefresh,
		AccessToken:      "cj-access-1",
		RefreshToken:     "cj-refresh-1",
		ExpiresAt:        time.Now().Add(15 * 24 * time.Hour),
		RefreshExpiresAt: time.Now().Add(180 * 24 * time.Hour),
	}))

	tokens := gateway.NewTokenManager(store, discardLogger())

	pol := cj.Policy()
	pol.MinInterval = 0
	dispatch := gateway.NewDispatcher(tokens, []gateway.Policy{pol}, discardLogger())

	return cj.New(dispatch, cj.WithBaseURL(srv.URL))
}

func TestClient_ListProducts(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/product/list", r.URL.Path)
		assert.Equal(t, "cj-access-1", r.Header.Get("CJ-Access-Token"))
		assert.Equal(t, "2", r.URL.Query().Get("pageNum"))
		assert.Equal(t, "20", r.URL.Query().Get("pageSize"))

		_, _ = w.Write([]byte(`{
			"code": 200, "result": true, "message": "Success",
			"data": {
				"pageNum": 2, "pageSize": 20, "total": 41,
				"list": [{
					"pid": "P-1",
					"productNameEn": "Ceramic Mug",
					"productSku": "CJSKU-1",
					"productImage": "https://img.example.com/mug.jpg",
					"sellPrice": 3.75,
					"createTime": "2026-01-10 08:30:00",
					"currencyCode": "USD"
				}]
			}
		}`))
	}))

	products, err := client.ListProducts(context.Background(), 2, 20)
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "P-1", p.ID)
	assert.Equal(t, "cj", p.Provider)
	assert.Equal(t, int64(375), p.Price.Units)
	assert.Equal(t, "USD", p.Price.Currency)
	assert.Equal(t, -1, p.Quantity)
	assert.Equal(t, 2026, p.CreatedAt.Year())
}

func TestClient_QueryStockSumsWarehouses(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/product/stock/queryByVid", r.URL.Path)
		assert.Equal(t, "V-1", r.URL.Query().Get("vid"))

		_, _ = w.Write([]byte(`{
			"code": 200, "result": true, "message": "Success",
			"data": [
				{"vid": "V-1", "areaEn": "US Warehouse", "countryCode": "US", "storageNum": 12},
				{"vid": "V-1", "areaEn": "CN Warehouse", "countryCode": "CN", "storageNum": 230}
			]
		}`))
	}))

	level, err := client.QueryStock(context.Background(), "V-1")
	require.NoError(t, err)
	assert.Equal(t, 242, level.Available)
	assert.Equal(t, "V-1", level.SKU)
	assert.Equal(t, "cj", level.Provider)
}

func TestClient_CalculateFreight(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/logistic/freightCalculate", r.URL.Path)

		var sent map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		assert.Equal(t, "CN", sent["startCountryCode"])
		assert.Equal(t, "US", sent["endCountryCode"])
		product := sent["products"].([]any)[0].(map[string]any)
		assert.Equal(t, "V-1", product["vid"])
		assert.Equal(t, float64(2), product["quantity"])

		_, _ = w.Write([]byte(`{
			"code": 200, "result": true, "message": "Success",
			"data": [
				{"logisticName": "CJPacket Ordinary", "logisticPrice": 7.42, "logisticAging": "8-12"},
				{"logisticName": "DHL", "logisticPrice": 23.10, "logisticAging": "3-5"}
			]
		}`))
	}))

	quotes, err := client.CalculateFreight(context.Background(), cj.FreightRequest{
		StartCountryCode: "CN",
		EndCountryCode:   "US",
		Products:         []cj.FreightProduct{{VID: "V-1", Quantity: 2}},
	})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, "CJPacket Ordinary", quotes[0].Carrier)
	assert.Equal(t, int64(742), quotes[0].Cost.Units)
	assert.Equal(t, 12, quotes[0].EstimatedDay)
	assert.Equal(t, 5, quotes[1].EstimatedDay)
}

func TestClient_CreateOrder(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shopping/order/createOrderV2", r.URL.Path)

		var sent map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		assert.Equal(t, "SHOP-1001", sent["orderNumber"])
		assert.Equal(t, "Jordan Doe", sent["shippingCustomerName"])

		_, _ = w.Write([]byte(`{"code": 200, "result": true, "message": "Success", "data": {"orderId": "CJ-ORD-77"}}`))
	}))

	orderID, err := client.CreateOrder(context.Background(), cj.OrderRequest{
		OrderNumber:     "SHOP-1001",
		ShippingName:    "Jordan Doe",
		ShippingCountry: "US",
		ShippingCity:    "Portland",
		ShippingAddress: "100 Main St",
		LogisticName:    "CJPacket Ordinary",
		Products:        []cj.OrderProduct{{VID: "V-1", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "CJ-ORD-77", orderID)
}

func TestClient_ListOrders(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shopping/order/list", r.URL.Path)

		_, _ = w.Write([]byte(`{
			"code": 200, "result": true, "message": "Success",
			"data": {"pageNum": 1, "pageSize": 20, "total": 2, "list": [
				{"orderId": "CJ-ORD-77", "orderNum": "SHOP-1001", "orderStatus": "SHIPPED",
				 "orderAmount": 12.34, "createDate": "2026-02-01 09:00:00", "trackNumber": "CJTRACK-9"},
				{"orderId": "CJ-ORD-78", "orderNum": "SHOP-1002", "orderStatus": "UNSHIPPED",
				 "orderAmount": 5.00, "createDate": "2026-02-02 09:00:00"}
			]}
		}`))
	}))

	orders, err := client.ListOrders(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "shipped", string(orders[0].Status))
	require.NotNil(t, orders[0].TrackingNumber)
	assert.Equal(t, "CJTRACK-9", *orders[0].TrackingNumber)
	assert.Equal(t, int64(1234), orders[0].Total.Units)

	assert.Equal(t, "paid", string(orders[1].Status))
	assert.Nil(t, orders[1].TrackingNumber)
}

func TestClient_EnvelopeRejection(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"code": 1600100, "result": false, "message": "quota exceeded"}`))
	}))

	_, err := client.ListProducts(context.Background(), 1, 20)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Contains(t, err.Error(), "1600100")
}
