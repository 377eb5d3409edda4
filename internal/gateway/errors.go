package gateway

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the gateway error taxonomy. Callers discriminate
// with errors.Is; provider clients may wrap these with context but must
// never change the kind.
var (
	// ErrNotConfigured means no credential exists for the requested
	// tenant/provider pair. Not retryable; surfaced as a configuration error.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrAuthExpired means the refresh token itself was rejected or expired.
	// The caller must re-authenticate from scratch.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrInvalidGrant means an authorization code exchange was rejected
	// (invalid, expired, or already consumed).
	ErrInvalidGrant = errors.New("invalid grant")

	// ErrAuthTransient means a network-level failure occurred during a token
	// refresh. Retryable by the caller after backoff.
	ErrAuthTransient = errors.New("transient authentication failure")

	// ErrRateLimitExceeded means the retry budget was exhausted against 429
	// responses. Retryable later, not immediately.
	ErrRateLimitExceeded = errors.New("rate limit retry budget exhausted")

	// ErrNetworkExhausted means the retry budget was exhausted against
	// connection-level failures.
	ErrNetworkExhausted = errors.New("network retry budget exhausted")

	// ErrAuthRejected means a 401 persisted after one forced token refresh.
	// Terminal; treat like ErrAuthExpired.
	ErrAuthRejected = errors.New("authorization rejected")

	// ErrMalformedResponse means a 2xx body failed to parse. Provider-side
	// contract violation; not retried.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrSignatureMismatch means an inbound webhook failed HMAC verification.
	ErrSignatureMismatch = errors.New("webhook signature mismatch")
)

// ProviderError is a terminal non-2xx response that is not transient by
// assumption (validation errors, not-found, provider-side 5xx). The status
// and body are preserved verbatim for diagnostics.
type ProviderError struct {
	Provider Provider
	Status   int
	Body     []byte
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Status, e.Body)
}
