package gateway_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeflow/gateway/internal/gateway"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeRefresher struct {
	calls atomic.Int32
	delay time.Duration
	fn    func(cred *gateway.Credential) (*gateway.Credential, error)
}

func (f *fakeRefresher) Refresh(_ context.Context, cred *gateway.Credential) (*gateway.Credential, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.fn(cred)
}

type fakeExchanger struct {
	fn func(code, verifier string) (*gateway.Credential, error)
}

func (f *fakeExchanger) Exchange(_ context.Context, code, verifier string) (*gateway.Credential, error) {
	return f.fn(code, verifier)
}

func seedCredential(t *testing.T, store gateway.CredentialStore, cred *gateway.Credential) {
	t.Helper()
	require.NoError(t, store.PutCredential(context.Background(), cred))
}

func etsyKey(tenant string) gateway.Key {
	return gateway.Key{Provider: gateway.ProviderEtsy, TenantID: tenant}
}

func TestTokenManager_StaticBearer(t *testing.T) {
	t.Parallel()

	store := gateway.NewMemoryCredentialStore()
	tm := gateway.NewTokenManager(store, discardLogger())

	key := gateway.Key{Provider: gateway.ProviderShopify, TenantID: "shop-1"}
	seedCredential(t, store, &gateway.Credential{
		Provider:    gateway.ProviderShopify,
		TenantID:    "shop-1",
		Kind:        gateway.KindStaticBearer,
		AccessToken: "shpat_abc",
	})

	token, err := tm.Token(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "shpat_abc", token)
}

func TestTokenManager_NotConfigured(t *testing.T) {
	t.Parallel()

	tm := gateway.NewTokenManager(gateway.NewMemoryCredentialStore(), discardLogger())

	_, err := tm.Token(context.Background(), etsyKey("missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrNotConfigured)
}

func TestTokenManager_FreshTokenReused(t *testing.T) {
	t.Parallel()

	store := gateway.NewMemoryCredentialStore()
	ref := &fakeRefresher{fn: func(*gateway.Credential) (*gateway.Credential, error) {
		t.Fatal("refresh must not be called for a fresh token")
		return nil, nil
	}}

	tm := gateway.NewTokenManager(store, discardLogger())
	tm.RegisterRefresher(gateway.ProviderEtsy, ref)

	seedCredential(t, store, &gateway.Credential{
		Provider:    gateway.ProviderEtsy,
		TenantID:    "t1",
		Kind:        gateway.KindOAuthPKCE,
		AccessToken: "fresh-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	})

	token, err := tm.Token(context.Background(), etsyKey("t1"))
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, int32(0), ref.calls.Load())
}

func TestTokenManager_ExpiredTokenRefreshed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		expiresAt time.Time
	}{
		{"already expired", time.Now().Add(-time.Minute)},
		{"inside safety margin", time.Now().Add(2 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := gateway.NewMemoryCredentialStore()
			ref := &fakeRefresher{fn: func(cred *gateway.Credential) (*gateway.Credential, error) {
				return &gateway.Credential{
					Kind:         cred.Kind,
					AccessToken:  "new-token",
					RefreshToken: "new-refresh",
					IssuedAt:     time.Now(),
					ExpiresAt:    time.Now().Add(time.Hour),
				}, nil
			}}

			tm := gateway.NewTokenManager(store, discardLogger())
			tm.RegisterRefresher(gateway.ProviderEtsy, ref)

			seedCredential(t, store, &gateway.Credential{
				Provider:     gateway.ProviderEtsy,
				TenantID:     "t1",
				Kind:         gateway.KindOAuthPKCE,
				AccessToken:  "stale-token",
				RefreshToken: "refresh-1",
				ExpiresAt:    tt.expiresAt,
			})

			token, err := tm.Token(context.Background(), etsyKey("t1"))
			require.NoError(t, err)
			assert.Equal(t, "new-token", token)
			assert.Equal(t, int32(1), ref.calls.Load())

			// The stored credential was replaced atomically.
			cred, err := store.GetCredential(context.Background(), etsyKey("t1"))
			require.NoError(t, err)
			assert.Equal(t, "new-refresh", cred.RefreshToken)
		})
	}
}

func TestTokenManager_SingleFlight(t *testing.T) {
	t.Parallel()

	store := gateway.NewMemoryCredentialStore()
	ref := &fakeRefresher{
		delay: 20 * time.Millisecond,
		fn: func(*gateway.Credential) (*gateway.Credential, error) {
			return &gateway.Credential{
				AccessToken:  "shared-token",
				RefreshToken: "r2",
				ExpiresAt:    time.Now().Add(time.Hour),
			}, nil
		},
	}

	tm := gateway.NewTokenManager(store, discardLogger())
	tm.RegisterRefresher(gateway.ProviderEtsy, ref)

	seedCredential(t, store, &gateway.Credential{
		Provider:     gateway.ProviderEtsy,
		TenantID:     "t1",
		Kind:         gateway.KindOAuthPKCE,
		AccessToken:  "stale",
		RefreshToken: "r1",
		ExpiresAt:    time.Now().Add(-time.Minute),
	})

	const callers = 16

	var wg sync.WaitGroup
	wg.Add(callers)

	tokens := make([]string, callers)
	errs := make([]error, callers)

	for i := range callers {
		go func() {
			defer wg.Done()
			tokens[i], errs[i] = tm.Token(context.Background(), etsyKey("t1"))
		}()
	}
	wg.Wait()

	// Exactly one network refresh; every caller observes its result.
	assert.Equal(t, int32(1), ref.calls.Load())
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared-token", tokens[i])
	}
}

func TestTokenManager_SingleFlightPerKey(t *testing.T) {
	t.Parallel()

	store := gateway.NewMemoryCredentialStore()
	ref := &fakeRefresher{
		delay: 10 * time.Millisecond,
		fn: func(cred *gateway.Credential) (*gateway.Credential, error) {
			return &gateway.Credential{
				AccessToken: "token-for-" + cred.TenantID,
				ExpiresAt:   time.Now().Add(time.Hour),
			}, nil
		},
	}

	tm := gateway.NewTokenManager(store, discardLogger())
	tm.RegisterRefresher(gateway.ProviderEtsy, ref)

	for _, tenant := range []string{"a", "b"} {
		seedCredential(t, store, &gateway.Credential{
			Provider:     gateway.ProviderEtsy,
			TenantID:     tenant,
			Kind:         gateway.KindOAuthPKCE,
			AccessToken:  "stale",
			RefreshToken: "r1",
			ExpiresAt:    time.Now().Add(-time.Minute),
		})
	}

	var wg sync.WaitGroup
	for _, tenant := range []string{"a", "b"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := tm.Token(context.Background(), etsyKey(tenant))
			assert.NoError(t, err)
			assert.Equal(t, "token-for-"+tenant, token)
		}()
	}
	wg.Wait()

	// Distinct keys refresh independently.
	assert.Equal(t, int32(2), ref.calls.Load())
}

func TestTokenManager_RefreshRejectedClearsCredential(t *testing.T) {
	t.Parallel()

	store := gateway.NewMemoryCredentialStore()
	ref := &fakeRefresher{fn: func(*gateway.Credential) (*gateway.Credential, error) {
		return nil, fmt.Errorf("token endpoint said no: %w", gateway.ErrInvalidGrant)
	}}

	tm := gateway.NewTokenManager(store, discardLogger())
	tm.RegisterRefresher(gateway.ProviderEtsy, ref)

	seedCredential(t, store, &gateway.Credential{
		Provider:     gateway.ProviderEtsy,
		TenantID:     "t1",
		Kind:         gateway.KindOAuthPKCE,
		AccessToken:  "stale",
		RefreshToken: "revoked",
		ExpiresAt:    time.Now().Add(-time.Minute),
	})

	_, err := tm.Token(context.Background(), etsyKey("t1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrAuthExpired)

	// The credential is gone; the caller must re-authenticate from scratch.
	_, err = store.GetCredential(context.Background(), etsyKey("t1"))
	assert.ErrorIs(t, err, gateway.ErrNotConfigured)
}

func TestTokenManager_RefreshTransientKeepsCredential(t *testing.T) {
	t.Parallel()

	store := gateway.NewMemoryCredentialStore()
	ref := &fakeRefresher{fn: func(*gateway.Credential) (*gateway.Credential, error) {
		return nil, fmt.Errorf("connection reset: %w", gateway.ErrAuthTransient)
	}}

	tm := gateway.NewTokenManager(store, discardLogger())
	tm.RegisterRefresher(gateway.ProviderEtsy, ref)

	seedCredential(t, store, &gateway.Credential{
		Provider:     gateway.ProviderEtsy,
		TenantID:     "t1",
		Kind:         gateway.KindOAuthPKCE,
		AccessToken:  "stale",
		RefreshToken: "r1",
		ExpiresAt:    time.Now().Add(-time.Minute),
	})

	_, err := tm.Token(context.Background(), etsyKey("t1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrAuthTransient)
	assert.NotErrorIs(t, err, gateway.ErrAuthExpired)

	// Transient failures leave the credential intact for a later retry.
	_, err = store.GetCredential(context.Background(), etsyKey("t1"))
	assert.NoError(t, err)
}

func TestTokenManager_ExpiredRefreshToken(t *testing.T) {
	t.Parallel()

	store := gateway.NewMemoryCredentialStore()
	ref := &fakeRefresher{fn: func(*gateway.Credential) (*gateway.Credential, error) {
		t.Fatal("refresh must not run with an expired refresh token")
		return nil, nil
	}}

	tm := gateway.NewTokenManager(store, discardLogger())
	tm.RegisterRefresher(gateway.ProviderCJ, ref)

	key := gateway.Key{Provider: gateway.ProviderCJ}
	seedCredential(t, store, &gateway.Credential{
		Provider:         gateway.ProviderCJ,
		Kind:             gateway.KindOAuthRefresh,
		AccessToken:      "stale",
		RefreshToken:     "ancient",
		ExpiresAt:        time.Now().Add(-time.Hour),
		RefreshExpiresAt: time.Now().Add(-time.Minute),
	})

	_, err := tm.Token(context.Background(), key)
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrAuthExpired)
	assert.Equal(t, int32(0), ref.calls.Load())
}

func TestTokenManager_Invalidate(t *testing.T) {
	t.Parallel()

	store := gateway.NewMemoryCredentialStore()
	ref := &fakeRefresher{fn: func(*gateway.Credential) (*gateway.Credential, error) {
		return &gateway.Credential{
			AccessToken: "reissued",
			ExpiresAt:   time.Now().Add(time.Hour),
		}, nil
	}}

	tm := gateway.NewTokenManager(store, discardLogger())
	tm.RegisterRefresher(gateway.ProviderEtsy, ref)

	seedCredential(t, store, &gateway.Credential{
		Provider:     gateway.ProviderEtsy,
		TenantID:     "t1",
		Kind:         gateway.KindOAuthPKCE,
		AccessToken:  "revoked-out-of-band",
		RefreshToken: "r1",
		ExpiresAt:    time.Now().Add(time.Hour),
	})

	require.NoError(t, tm.Invalidate(context.Background(), etsyKey("t1")))

	token, err := tm.Token(context.Background(), etsyKey("t1"))
	require.NoError(t, err)
	assert.Equal(t, "reissued", token)
	assert.Equal(t, int32(1), ref.calls.Load())
}

func TestTokenManager_InvalidateStaticIsNoop(t *testing.T) {
	t.Parallel()

	store := gateway.NewMemoryCredentialStore()
	tm := gateway.NewTokenManager(store, discardLogger())

	key := gateway.Key{Provider: gateway.ProviderShopify, TenantID: "shop-1"}
	seedCredential(t, store, &gateway.Credential{
		Provider:    gateway.ProviderShopify,
		TenantID:    "shop-1",
		Kind:        gateway.KindStaticBearer,
		AccessToken: "shpat_abc",
	})

	require.NoError(t, tm.Invalidate(context.Background(), key))

	token, err := tm.Token(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "shpat_abc", token)
}

func TestTokenManager_Exchange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fn      func(code, verifier string) (*gateway.Credential, error)
		wantErr error
	}{
		{
			name: "successful exchange stores credential",
			fn: func(code, verifier string) (*gateway.Credential, error) {
				return &gateway.Credential{
					Kind:         gateway.KindOAuthPKCE,
					AccessToken:  "access-" + code,
					RefreshToken: "refresh-" + verifier,
					ExpiresAt:    time.Now().Add(time.Hour),
				}, nil
			},
		},
		{
			name: "consumed code rejected",
			fn: func(string, string) (*gateway.Credential, error) {
				return nil, fmt.Errorf("code already used: %w", gateway.ErrInvalidGrant)
			},
			wantErr: gateway.ErrInvalidGrant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := gateway.NewMemoryCredentialStore()
			tm := gateway.NewTokenManager(store, discardLogger())
			tm.RegisterExchanger(gateway.ProviderEtsy, &fakeExchanger{fn: tt.fn})

			cred, err := tm.Exchange(context.Background(), etsyKey("t1"), "code-1", "verifier-1")

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "access-code-1", cred.AccessToken)
			assert.Equal(t, "t1", cred.TenantID)

			stored, err := store.GetCredential(context.Background(), etsyKey("t1"))
			require.NoError(t, err)
			assert.Equal(t, "access-code-1", stored.AccessToken)
		})
	}
}

func TestTokenManager_Logout(t *testing.T) {
	t.Parallel()

	store := gateway.NewMemoryCredentialStore()
	tm := gateway.NewTokenManager(store, discardLogger())

	seedCredential(t, store, &gateway.Credential{
		Provider:    gateway.ProviderEtsy,
		TenantID:    "t1",
		Kind:        gateway.KindOAuthPKCE,
		AccessToken: "tok",
	})

	require.NoError(t, tm.Logout(context.Background(), etsyKey("t1")))

	_, err := tm.Token(context.Background(), etsyKey("t1"))
	assert.ErrorIs(t, err, gateway.ErrNotConfigured)
}

func TestTokenManager_AwaitHonorsContext(t *testing.T) {
	t.Parallel()

	store := gateway.NewMemoryCredentialStore()
	release := make(chan struct{})
	ref := &fakeRefresher{fn: func(*gateway.Credential) (*gateway.Credential, error) {
		<-release
		return &gateway.Credential{AccessToken: "late", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}}

	tm := gateway.NewTokenManager(store, discardLogger())
	tm.RegisterRefresher(gateway.ProviderEtsy, ref)

	seedCredential(t, store, &gateway.Credential{
		Provider:     gateway.ProviderEtsy,
		TenantID:     "t1",
		Kind:         gateway.KindOAuthPKCE,
		AccessToken:  "stale",
		RefreshToken: "r1",
		ExpiresAt:    time.Now().Add(-time.Minute),
	})

	// First caller holds the refresh open.
	go func() {
		_, _ = tm.Token(context.Background(), etsyKey("t1"))
	}()

	// Give the first caller time to take the in-flight slot.
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := tm.Token(ctx, etsyKey("t1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	close(release)
}
