package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/storeflow/gateway/internal/metrics"
)

// DefaultExpiryMargin is how long before the recorded expiry a token is
// treated as stale and refreshed.
const DefaultExpiryMargin = 5 * time.Minute

// Refresher renews an expiring credential against the provider's token
// endpoint. Implementations return ErrInvalidGrant (wrapped) when the
// refresh token itself is rejected and ErrAuthTransient on network-level
// failures.
type Refresher interface {
	Refresh(ctx context.Context, cred *Credential) (*Credential, error)
}

// Exchanger trades a one-time authorization code for a credential.
// verifier is the PKCE code verifier where the provider requires one,
// empty otherwise.
type Exchanger interface {
	Exchange(ctx context.Context, code, verifier string) (*Credential, error)
}

// TokenManager produces currently-valid access tokens for tenant/provider
// pairs, refreshing through the registered Refresher as needed. At most one
// refresh per key is in flight at any time; concurrent callers await the
// pending result instead of issuing parallel refreshes, which would
// invalidate rotated refresh tokens.
type TokenManager struct {
	store      CredentialStore
	refreshers map[Provider]Refresher
	exchangers map[Provider]Exchanger
	margin     time.Duration
	log        *slog.Logger
	nowFunc    func() time.Time

	mu       sync.Mutex
	inflight map[Key]*refreshCall
}

type refreshCall struct {
	done  chan struct{}
	token string
	err   error
}

// TokenManagerOption configures the TokenManager.
type TokenManagerOption func(*TokenManager)

// WithExpiryMargin overrides the default 5-minute expiry safety margin.
func WithExpiryMargin(d time.Duration) TokenManagerOption {
	return func(m *TokenManager) {
		m.margin = d
	}
}

// WithTokenNowFunc overrides the time function for testing.
func WithTokenNowFunc(f func() time.Time) TokenManagerOption {
	return func(m *TokenManager) {
		m.nowFunc = f
	}
}

// NewTokenManager creates a TokenManager backed by the given store.
func NewTokenManager(store CredentialStore, log *slog.Logger, opts ...TokenManagerOption) *TokenManager {
	m := &TokenManager{
		store:      store,
		refreshers: make(map[Provider]Refresher),
		exchangers: make(map[Provider]Exchanger),
		margin:     DefaultExpiryMargin,
		log:        log,
		nowFunc:    time.Now,
		inflight:   make(map[Key]*refreshCall),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RegisterRefresher installs the refresh flow for a provider.
func (m *TokenManager) RegisterRefresher(p Provider, r Refresher) {
	m.refreshers[p] = r
}

// RegisterExchanger installs the authorization-code exchange flow for a
// provider.
func (m *TokenManager) RegisterExchanger(p Provider, e Exchanger) {
	m.exchangers[p] = e
}

// Token returns a currently-valid access token for key, refreshing first if
// the cached token is inside the expiry margin. Returns ErrNotConfigured
// when no credential exists, ErrAuthExpired when the refresh token itself
// was rejected (the credential is cleared and the caller must
// re-authenticate), and ErrAuthTransient on network failure during refresh.
func (m *TokenManager) Token(ctx context.Context, key Key) (string, error) {
	cred, err := m.store.GetCredential(ctx, key)
	if err != nil {
		return "", err
	}

	if cred.Kind == KindStaticBearer {
		return cred.AccessToken, nil
	}

	if cred.Fresh(m.nowFunc(), m.margin) {
		return cred.AccessToken, nil
	}

	return m.refresh(ctx, key)
}

// Invalidate marks the cached token for key as expired so the next Token
// call refreshes it. Used when a provider rejects a token that is not yet
// past its recorded expiry (revoked out-of-band). No-op for static bearer
// credentials, which cannot be refreshed.
func (m *TokenManager) Invalidate(ctx context.Context, key Key) error {
	cred, err := m.store.GetCredential(ctx, key)
	if err != nil {
		return err
	}
	if cred.Kind == KindStaticBearer {
		return nil
	}

	cred.ExpiresAt = m.nowFunc().Add(-time.Second)
	return m.store.PutCredential(ctx, cred)
}

// Exchange trades a one-time authorization code for a credential via the
// provider's registered Exchanger and stores the result under key. Fails
// with ErrInvalidGrant when the code is invalid, expired, or already
// consumed.
func (m *TokenManager) Exchange(ctx context.Context, key Key, code, verifier string) (*Credential, error) {
	ex, ok := m.exchangers[key.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: no exchange flow for %s", ErrNotConfigured, key.Provider)
	}

	cred, err := ex.Exchange(ctx, code, verifier)
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrInvalidGrant) {
			outcome = "rejected"
		}
		metrics.CodeExchangesTotal.WithLabelValues(string(key.Provider), outcome).Inc()
		return nil, fmt.Errorf("exchanging code for %s: %w", key.Provider, err)
	}

	cred.Provider = key.Provider
	if cred.TenantID == "" {
		cred.TenantID = key.TenantID
	}

	if err := m.store.PutCredential(ctx, cred); err != nil {
		return nil, fmt.Errorf("storing %s credential: %w", key.Provider, err)
	}

	metrics.CodeExchangesTotal.WithLabelValues(string(key.Provider), "success").Inc()
	m.log.Info("credential established",
		"provider", key.Provider,
		"tenant", cred.TenantID,
		"kind", cred.Kind,
	)

	return cred, nil
}

// Logout clears the stored credential for key. The caller must
// re-authenticate from scratch afterwards.
func (m *TokenManager) Logout(ctx context.Context, key Key) error {
	return m.store.DeleteCredential(ctx, key)
}

func (m *TokenManager) refresh(ctx context.Context, key Key) (string, error) {
	m.mu.Lock()
	if call, ok := m.inflight[key]; ok {
		m.mu.Unlock()
		return m.await(ctx, call)
	}

	call := &refreshCall{done: make(chan struct{})}
	m.inflight[key] = call
	m.mu.Unlock()

	token, err := m.doRefresh(ctx, key)

	m.mu.Lock()
	delete(m.inflight, key)
	m.mu.Unlock()

	call.token, call.err = token, err
	close(call.done)

	return token, err
}

// await blocks until the in-flight refresh for this key resolves, sharing
// its outcome. The waiter's own context still bounds the wait.
func (m *TokenManager) await(ctx context.Context, call *refreshCall) (string, error) {
	select {
	case <-call.done:
		return call.token, call.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (m *TokenManager) doRefresh(ctx context.Context, key Key) (string, error) {
	// Re-read under the in-flight marker: a refresh that resolved between
	// the freshness check and here must not be repeated.
	cred, err := m.store.GetCredential(ctx, key)
	if err != nil {
		return "", err
	}

	now := m.nowFunc()
	if cred.Fresh(now, m.margin) {
		return cred.AccessToken, nil
	}

	r, ok := m.refreshers[key.Provider]
	if !ok {
		return "", fmt.Errorf("%w: no refresh flow for %s", ErrNotConfigured, key.Provider)
	}

	if !cred.RefreshUsable(now) {
		m.clearCredential(ctx, key)
		metrics.TokenRefreshesTotal.WithLabelValues(string(key.Provider), "expired").Inc()
		return "", fmt.Errorf("%s refresh token expired: %w", key.Provider, ErrAuthExpired)
	}

	next, err := r.Refresh(ctx, cred)
	if err != nil {
		if errors.Is(err, ErrInvalidGrant) || errors.Is(err, ErrAuthExpired) {
			// The refresh token was rejected; the stored credential is
			// irrecoverable.
			m.clearCredential(ctx, key)
			metrics.TokenRefreshesTotal.WithLabelValues(string(key.Provider), "rejected").Inc()
			m.log.Warn("refresh token rejected, credential cleared",
				"provider", key.Provider,
				"tenant", key.TenantID,
			)
			return "", fmt.Errorf("refreshing %s token: %w: %w", key.Provider, ErrAuthExpired, err)
		}
		metrics.TokenRefreshesTotal.WithLabelValues(string(key.Provider), "error").Inc()
		return "", fmt.Errorf("refreshing %s token: %w", key.Provider, err)
	}

	next.Provider = cred.Provider
	next.TenantID = cred.TenantID
	if next.Kind == "" {
		next.Kind = cred.Kind
	}

	if err := m.store.PutCredential(ctx, next); err != nil {
		return "", fmt.Errorf("storing refreshed %s credential: %w", key.Provider, err)
	}

	metrics.TokenRefreshesTotal.WithLabelValues(string(key.Provider), "success").Inc()
	m.log.Debug("token refreshed",
		"provider", key.Provider,
		"tenant", key.TenantID,
		"expires_at", next.ExpiresAt,
	)

	return next.AccessToken, nil
}

func (m *TokenManager) clearCredential(ctx context.Context, key Key) {
	if err := m.store.DeleteCredential(ctx, key); err != nil {
		m.log.Error("clearing rejected credential",
			"provider", key.Provider,
			"tenant", key.TenantID,
			"error", err,
		)
	}
}
