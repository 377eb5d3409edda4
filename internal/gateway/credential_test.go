package gateway_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeflow/gateway/internal/gateway"
)

func TestCredential_Fresh(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	margin := 5 * time.Minute

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"static never expires", time.Time{}, true},
		{"well before expiry", now.Add(time.Hour), true},
		{"just outside margin", now.Add(6 * time.Minute), true},
		{"inside margin", now.Add(4 * time.Minute), false},
		{"exactly at margin boundary", now.Add(5 * time.Minute), false},
		{"already expired", now.Add(-time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cred := &gateway.Credential{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, cred.Fresh(now, margin))
		})
	}
}

func TestCredential_RefreshUsable(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name             string
		refreshToken     string
		refreshExpiresAt time.Time
		want             bool
	}{
		{"no refresh token", "", time.Time{}, false},
		{"non-expiring refresh token", "r1", time.Time{}, true},
		{"refresh token still valid", "r1", now.Add(24 * time.Hour), true},
		{"refresh token expired", "r1", now.Add(-time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cred := &gateway.Credential{
				RefreshToken:     tt.refreshToken,
				RefreshExpiresAt: tt.refreshExpiresAt,
			}
			assert.Equal(t, tt.want, cred.RefreshUsable(now))
		})
	}
}

func TestMemoryCredentialStore_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := gateway.NewMemoryCredentialStore()

	key := gateway.Key{Provider: gateway.ProviderCJ}

	_, err := store.GetCredential(ctx, key)
	assert.ErrorIs(t, err, gateway.ErrNotConfigured)

	cred := &gateway.Credential{
		Provider:     gateway.ProviderCJ,
		Kind:         gateway.KindOAuthRefresh,
		AccessToken:  "a1",
		RefreshToken: "r1",
		ExpiresAt:    time.Now().Add(15 * 24 * time.Hour),
	}
	require.NoError(t, store.PutCredential(ctx, cred))

	got, err := store.GetCredential(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "a1", got.AccessToken)

	// Mutating the returned copy must not affect the stored credential.
	got.AccessToken = "tampered"
	again, err := store.GetCredential(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "a1", again.AccessToken)

	require.NoError(t, store.DeleteCredential(ctx, key))
	_, err = store.GetCredential(ctx, key)
	assert.ErrorIs(t, err, gateway.ErrNotConfigured)
}

func TestMemoryCredentialStore_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := gateway.NewMemoryCredentialStore()

	for _, tenant := range []string{"s1", "s2"} {
		require.NoError(t, store.PutCredential(ctx, &gateway.Credential{
			Provider:    gateway.ProviderShopify,
			TenantID:    tenant,
			Kind:        gateway.KindStaticBearer,
			AccessToken: "tok-" + tenant,
		}))
	}

	creds, err := store.ListCredentials(ctx)
	require.NoError(t, err)
	assert.Len(t, creds, 2)
}
