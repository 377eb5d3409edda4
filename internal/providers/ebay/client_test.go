package ebay_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeflow/gateway/internal/gateway"
	"github.com/storeflow/gateway/internal/providers/ebay"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestClient wires the full chain: the seeded credential has no access
// token, so the first API call mints one through the client-credentials
// flow before hitting the Browse endpoint.
func newTestClient(t *testing.T, handler http.Handler) (*ebay.Client, *atomic.Int32) {
	t.Helper()

	var mints atomic.Int32
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mints.Add(1)
		_, _ = w.Write([]byte(`{"access_token": "ebay-tok-1", "expires_in": 7200}`))
	}))
	t.Cleanup(tokenSrv.Close)

	apiSrv := httptest.NewServer(handler)
	t.Cleanup(apiSrv.Close)

	flow := ebay.NewClientCredentials("app-1", "cert-1", ebay.WithTokenURL(tokenSrv.URL))

	store := gateway.NewMemoryCredentialStore()
	require.NoError(t, store.PutCredential(context.Background(), flow.Seed()))

	tokens := gateway.NewTokenManager(store, discardLogger())
	tokens.RegisterRefresher(gateway.ProviderEbay, flow)

	pol := ebay.Policy()
	pol.MinInterval = 0
	dispatch := gateway.NewDispatcher(tokens, []gateway.Policy{pol}, discardLogger())

	return ebay.New(dispatch, ebay.WithBaseURL(apiSrv.URL)), &mints
}

func TestClient_Search(t *testing.T) {
	t.Parallel()

	client, mints := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/item_summary/search", r.URL.Path)
		assert.Equal(t, "ceramic mug", r.URL.Query().Get("q"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "newlyListed", r.URL.Query().Get("sort"))
		assert.Equal(t, "Bearer ebay-tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "EBAY_US", r.Header.Get("X-EBAY-C-MARKETPLACE-ID"))

		_, _ = w.Write([]byte(`{
			"itemSummaries": [
				{
					"itemId": "v1|100|0",
					"title": "Handmade ceramic mug",
					"price": {"value": "18.99", "currency": "USD"},
					"image": {"imageUrl": "https://i.ebayimg.com/mug.jpg"},
					"condition": "New",
					"itemWebUrl": "https://www.ebay.com/itm/100"
				}
			],
			"total": 1340,
			"offset": 0,
			"limit": 25,
			"next": "https://api.ebay.com/buy/browse/v1/item_summary/search?offset=25"
		}`))
	}))

	result, err := client.Search(context.Background(), ebay.SearchRequest{
		Query: "ceramic mug",
		Limit: 25,
		Sort:  "newlyListed",
	})
	require.NoError(t, err)

	assert.Equal(t, 1340, result.Total)
	assert.True(t, result.HasMore)
	require.Len(t, result.Items, 1)

	item := result.Items[0]
	assert.Equal(t, "v1|100|0", item.ID)
	assert.Equal(t, "ebay", item.Provider)
	assert.Equal(t, int64(1899), item.Price.Units)
	assert.Equal(t, "USD", item.Price.Currency)
	assert.Equal(t, -1, item.Quantity)
	assert.Equal(t, "https://i.ebayimg.com/mug.jpg", item.ImageURL)

	assert.Equal(t, int32(1), mints.Load())
}

func TestClient_SearchReusesMintedToken(t *testing.T) {
	t.Parallel()

	client, mints := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"itemSummaries": [], "total": 0}`))
	}))

	for range 3 {
		_, err := client.Search(context.Background(), ebay.SearchRequest{Query: "mug"})
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), mints.Load())
}

func TestClient_GetItem(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/item/v1%7C100%7C0", r.URL.EscapedPath())

		_, _ = w.Write([]byte(`{
			"itemId": "v1|100|0",
			"title": "Handmade ceramic mug",
			"shortDescription": "Stoneware, 12oz",
			"price": {"value": "18.99", "currency": "USD"},
			"estimatedAvailabilities": [{"estimatedAvailableQuantity": 6}]
		}`))
	}))

	item, err := client.GetItem(context.Background(), "v1|100|0")
	require.NoError(t, err)
	assert.Equal(t, "Stoneware, 12oz", item.Description)
	assert.Equal(t, 6, item.Quantity)
}
