// Package gateway implements the provider gateway layer: credential
// lifecycle with single-flight refresh, rate-limited outbound dispatch with
// bounded retries, and HMAC verification of inbound webhooks. Provider
// packages compose these pieces; the gateway owns all retry and concurrency
// behavior so provider clients stay pure translation.
package gateway

import (
	"context"
	"sync"
	"time"
)

// Provider identifies an upstream marketplace or storefront platform.
type Provider string

// Supported providers.
const (
	ProviderShopify Provider = "shopify"
	ProviderEtsy    Provider = "etsy"
	ProviderCJ      Provider = "cj"
	ProviderEbay    Provider = "ebay"
)

// CredentialKind describes how a credential is acquired and renewed.
type CredentialKind string

// Credential kinds.
const (
	// KindStaticBearer is a long-lived token configured by the operator.
	// It never expires from this system's point of view.
	KindStaticBearer CredentialKind = "static_bearer"

	// KindOAuthRefresh is an OAuth2 access/refresh token pair renewed via
	// the refresh_token grant (or client credentials for machine tokens).
	KindOAuthRefresh CredentialKind = "oauth2_refresh"

	// KindOAuthPKCE is an OAuth2 pair obtained through the PKCE
	// authorization-code flow and renewed via refresh_token.
	KindOAuthPKCE CredentialKind = "oauth2_pkce"
)

// Key identifies one credential: a tenant/provider pair. TenantID is empty
// for providers with a single process-wide credential set (CJ, eBay).
type Key struct {
	Provider Provider
	TenantID string
}

// Credential holds the auth material and expiry bookkeeping for one
// tenant/provider pair. AccessToken and RefreshToken are secrets and must
// never appear in logs or API responses.
type Credential struct {
	Provider     Provider
	TenantID     string
	Kind         CredentialKind
	AccessToken  string
	RefreshToken string

	IssuedAt  time.Time
	ExpiresAt time.Time // zero for static bearer tokens

	// RefreshExpiresAt is set where the refresh token itself expires
	// (CJ: 180 days against a 15-day access token). Zero otherwise.
	RefreshExpiresAt time.Time
}

// Key returns the store key for this credential.
func (c *Credential) Key() Key {
	return Key{Provider: c.Provider, TenantID: c.TenantID}
}

// Fresh reports whether the access token is still usable at now, keeping
// the given safety margin before the recorded expiry. Static bearer tokens
// are always fresh.
func (c *Credential) Fresh(now time.Time, margin time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(c.ExpiresAt.Add(-margin))
}

// RefreshUsable reports whether the refresh token can still be presented
// at now. A zero RefreshExpiresAt means the refresh token does not expire.
func (c *Credential) RefreshUsable(now time.Time) bool {
	if c.RefreshToken == "" {
		return false
	}
	return c.RefreshExpiresAt.IsZero() || now.Before(c.RefreshExpiresAt)
}

// CredentialStore persists credentials keyed by tenant/provider pair.
// Implementations must be safe for concurrent use. Get returns
// ErrNotConfigured when no credential exists for the key.
type CredentialStore interface {
	GetCredential(ctx context.Context, key Key) (*Credential, error)
	PutCredential(ctx context.Context, cred *Credential) error
	DeleteCredential(ctx context.Context, key Key) error
	ListCredentials(ctx context.Context) ([]Credential, error)
}

// MemoryCredentialStore is an in-memory CredentialStore for tests and
// single-process deployments without Postgres.
type MemoryCredentialStore struct {
	mu    sync.RWMutex
	creds map[Key]Credential
}

// NewMemoryCredentialStore creates an empty in-memory credential store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{creds: make(map[Key]Credential)}
}

// GetCredential returns a copy of the stored credential for key.
func (s *MemoryCredentialStore) GetCredential(_ context.Context, key Key) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[key]
	if !ok {
		return nil, ErrNotConfigured
	}
	return &cred, nil
}

// PutCredential stores cred, replacing any existing credential for its key.
func (s *MemoryCredentialStore) PutCredential(_ context.Context, cred *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds[cred.Key()] = *cred
	return nil
}

// DeleteCredential removes the credential for key. Deleting a missing key
// is not an error.
func (s *MemoryCredentialStore) DeleteCredential(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.creds, key)
	return nil
}

// ListCredentials returns copies of all stored credentials.
func (s *MemoryCredentialStore) ListCredentials(_ context.Context) ([]Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Credential, 0, len(s.creds))
	for _, cred := range s.creds {
		out = append(out, cred)
	}
	return out, nil
}
