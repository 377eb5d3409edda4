package cj_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeflow/gateway/internal/gateway"
	"github.com/storeflow/gateway/internal/providers/cj"
)

func TestAuth_Login(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/authentication/getAccessToken", r.URL.Path)

		var sent map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		assert.Equal(t, "ops@example.com", sent["email"])
		assert.Equal(t, "hunter2", sent["password"])

		_, _ = w.Write([]byte(`{
			"code": 200,
			"result": true,
			"message": "Success",
			"data": {
				"accessToken": "cj-access-1",
				"accessTokenExpiryDate": "2026-03-16T12:00:00+08:00",
				"refreshToken": "cj-refresh-1",
				"refreshTokenExpiryDate": "2026-08-28T12:00:00+08:00"
			}
		}`))
	}))
	defer srv.Close()

	auth := cj.NewAuth("ops@example.com", "hunter2", cj.WithAuthBaseURL(srv.URL))

	cred, err := auth.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gateway.ProviderCJ, cred.Provider)
	assert.Equal(t, gateway.KindOAuthRefresh, cred.Kind)
	assert.Equal(t, "cj-access-1", cred.AccessToken)
	assert.Equal(t, "cj-refresh-1", cred.RefreshToken)

	wantAccess, _ := time.Parse(time.RFC3339, "2026-03-16T12:00:00+08:00")
	assert.True(t, cred.ExpiresAt.Equal(wantAccess))
	wantRefresh, _ := time.Parse(time.RFC3339, "2026-08-28T12:00:00+08:00")
	assert.True(t, cred.RefreshExpiresAt.Equal(wantRefresh))
}

func TestAuth_LoginSpaceSeparatedExpiry(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"code": 200,
			"result": true,
			"message": "Success",
			"data": {
				"accessToken": "cj-access-1",
				"accessTokenExpiryDate": "2026-03-16 12:00:00",
				"refreshToken": "cj-refresh-1",
				"refreshTokenExpiryDate": "2026-08-28 12:00:00"
			}
		}`))
	}))
	defer srv.Close()

	auth := cj.NewAuth("ops@example.com", "hunter2", cj.WithAuthBaseURL(srv.URL))

	cred, err := auth.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2026, cred.ExpiresAt.Year())
	assert.Equal(t, time.March, cred.ExpiresAt.Month())
	assert.Equal(t, time.August, cred.RefreshExpiresAt.Month())
}

func TestAuth_Refresh(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authentication/refreshAccessToken", r.URL.Path)

		var sent map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		assert.Equal(t, "cj-refresh-1", sent["refreshToken"])

		_, _ = w.Write([]byte(`{
			"code": 200,
			"result": true,
			"message": "Success",
			"data": {
				"accessToken": "cj-access-2",
				"accessTokenExpiryDate": "2026-03-31T12:00:00+08:00",
				"refreshToken": "cj-refresh-2",
				"refreshTokenExpiryDate": "2026-08-28T12:00:00+08:00"
			}
		}`))
	}))
	defer srv.Close()

	auth := cj.NewAuth("ops@example.com", "hunter2", cj.WithAuthBaseURL(srv.URL))

	cred, err := auth.Refresh(context.Background(), &gateway.Credential{RefreshToken: "cj-refresh-1"})
	require.NoError(t, err)
	assert.Equal(t, "cj-access-2", cred.AccessToken)
	assert.Equal(t, "cj-refresh-2", cred.RefreshToken)
}

func TestAuth_RefreshRejectedIsInvalidGrant(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"code": 1600200, "result": false, "message": "refresh token expired"}`))
	}))
	defer srv.Close()

	auth := cj.NewAuth("ops@example.com", "hunter2", cj.WithAuthBaseURL(srv.URL))

	_, err := auth.Refresh(context.Background(), &gateway.Credential{RefreshToken: "stale"})
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrInvalidGrant)
	assert.Contains(t, err.Error(), "refresh token expired")
}

func TestAuth_ServerErrorIsTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	auth := cj.NewAuth("ops@example.com", "hunter2", cj.WithAuthBaseURL(srv.URL))

	_, err := auth.Refresh(context.Background(), &gateway.Credential{RefreshToken: "r1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrAuthTransient)
}

func TestAuth_NetworkErrorIsTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	auth := cj.NewAuth("ops@example.com", "hunter2", cj.WithAuthBaseURL(srv.URL))

	_, err := auth.Login(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrAuthTransient)
}
