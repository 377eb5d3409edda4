package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.ListCredentials(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListCredentials(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error (HTTP 500)")
}

func TestClient_ListSettings(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/tenants/acme/settings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"tenant_id":"acme","provider":"shopify","store_url":"https://acme.myshopify.com","has_webhook_secret":true,"enabled":true}]`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	settings, err := c.ListSettings(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, "shopify", settings[0].Provider)
	assert.True(t, settings[0].HasWebhookSecret)
}

func TestClient_PutSettings(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/tenants/acme/settings/shopify", r.URL.Path)

		var req SettingsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://acme.myshopify.com", req.StoreURL)
		assert.Equal(t, "whsec_test", req.WebhookSecret)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tenant_id":"acme","provider":"shopify","store_url":"https://acme.myshopify.com","has_webhook_secret":true,"enabled":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	s, err := c.PutSettings(context.Background(), "acme", "shopify", SettingsRequest{
		StoreURL:      "https://acme.myshopify.com",
		WebhookSecret: "whsec_test",
		Enabled:       true,
	})
	require.NoError(t, err)
	assert.True(t, s.HasWebhookSecret)
}

func TestClient_SetCredential(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/tenants/acme/credentials/shopify", r.URL.Path)

		var req CredentialRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "shpat_abc123", req.AccessToken)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"provider":"shopify","tenant_id":"acme","kind":"static_bearer","issued_at":"2026-03-01T12:00:00Z","fresh":true,"refresh_usable":false}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	status, err := c.SetCredential(context.Background(), "acme", "shopify", "shpat_abc123")
	require.NoError(t, err)
	assert.Equal(t, "static_bearer", status.Kind)
	assert.True(t, status.Fresh)
}

func TestClient_ListOrders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/orders", r.URL.Path)
		assert.Equal(t, "shopify", r.URL.Query().Get("provider"))
		assert.Equal(t, "acme", r.URL.Query().Get("tenant_id"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"450789469","provider":"shopify","status":"paid"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	orders, err := c.ListOrders(context.Background(), "shopify", "acme", 25)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "450789469", orders[0].ID)
}

func TestClient_DeleteCredential(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/tenants/-/credentials/cj", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"disconnected"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.DeleteCredential(context.Background(), "-", "cj"))
}

func TestClient_SearchSourcing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/sourcing/search", r.URL.Path)
		assert.Equal(t, "ceramic mug", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"v1|100|0","title":"Vintage Mug"}],"total":1,"has_more":false}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	res, err := c.SearchSourcing(context.Background(), "ceramic mug", 0, 0)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Vintage Mug", res.Items[0].Title)
}
