package gateway

import (
	"net/http"
	"time"
)

// Default retry parameters, used where a Policy leaves them zero.
const (
	DefaultMaxRetries  = 3
	DefaultBaseBackoff = time.Second
	DefaultTimeout     = 30 * time.Second
)

// Policy holds the per-provider dispatch constants: pacing interval, retry
// budget, backoff base, and the provider's wire quirks. Policies are
// configuration, not runtime state; each provider package exports one.
type Policy struct {
	Provider Provider

	// MinInterval is the minimum time between two requests to the same
	// pacing key. Zero disables proactive pacing.
	MinInterval time.Duration

	// MaxRetries bounds retries against 429 and network failures. The total
	// number of HTTP attempts is MaxRetries+1. Zero means DefaultMaxRetries.
	MaxRetries int

	// BaseBackoff is doubled per attempt (1s, 2s, 4s, ...). A provider
	// Retry-After value takes precedence when present. Zero means
	// DefaultBaseBackoff.
	BaseBackoff time.Duration

	// Timeout bounds one Send call end to end, pacing and retries included.
	// Zero means DefaultTimeout.
	Timeout time.Duration

	// PerTenant scopes pacing to the tenant rather than the provider.
	// Shop-wide limits (Shopify per store) pace per tenant; app-wide limits
	// (CJ per account) pace per provider.
	PerTenant bool

	// Authorize injects the provider's auth header(s) into an outbound
	// request.
	Authorize func(req *http.Request, token string)

	// ParseRateHeader extracts current/max usage from the provider's
	// rate-limit response header, if the provider reports one.
	ParseRateHeader func(h http.Header) (used, max int, ok bool)
}

func (p Policy) maxRetries() int {
	if p.MaxRetries == 0 {
		return DefaultMaxRetries
	}
	return p.MaxRetries
}

func (p Policy) baseBackoff() time.Duration {
	if p.BaseBackoff == 0 {
		return DefaultBaseBackoff
	}
	return p.BaseBackoff
}

func (p Policy) timeout() time.Duration {
	if p.Timeout == 0 {
		return DefaultTimeout
	}
	return p.Timeout
}

// BearerAuth returns an Authorize func that sets a standard
// "Authorization: Bearer" header.
func BearerAuth() func(*http.Request, string) {
	return func(req *http.Request, token string) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// HeaderAuth returns an Authorize func that sets the token in a custom
// header (Shopify's X-Shopify-Access-Token, CJ's CJ-Access-Token).
func HeaderAuth(name string) func(*http.Request, string) {
	return func(req *http.Request, token string) {
		req.Header.Set(name, token)
	}
}
