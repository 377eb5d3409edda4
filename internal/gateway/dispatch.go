package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/storeflow/gateway/internal/metrics"
)

// RequestSpec describes one outbound provider call. Body, when non-nil, is
// JSON-encoded.
type RequestSpec struct {
	Method string
	URL    string
	Query  url.Values
	Header http.Header
	Body   any
}

// Response is a successful (2xx) provider response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// RateLimitState is the most recently observed rate-limit bookkeeping for
// one pacing key.
type RateLimitState struct {
	LastRequestAt  time.Time
	Used           int
	Max            int
	RetryAfterHint time.Duration
}

// Dispatcher executes outbound HTTP requests honoring each provider's
// pacing interval and retry policy. Pacing is enforced before dispatch, not
// only in reaction to 429s: several providers throttle by request rate, so
// proactive spacing avoids burning a slot on a request that would be
// rejected anyway. Retries never apply to semantic errors (non-401/429
// status codes).
type Dispatcher struct {
	tokens   *TokenManager
	client   *http.Client
	policies map[Provider]Policy
	log      *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	pacers map[Key]*rate.Limiter
	states map[Key]*RateLimitState
}

// DispatcherOption configures the Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchHTTPClient overrides the default HTTP client.
func WithDispatchHTTPClient(c *http.Client) DispatcherOption {
	return func(d *Dispatcher) {
		d.client = c
	}
}

// WithSleepFunc overrides the backoff sleep for testing.
func WithSleepFunc(f func(ctx context.Context, d time.Duration) error) DispatcherOption {
	return func(d *Dispatcher) {
		d.sleep = f
	}
}

// NewDispatcher creates a Dispatcher using tokens for auth and the given
// per-provider policies.
func NewDispatcher(tokens *TokenManager, policies []Policy, log *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		tokens:   tokens,
		client:   &http.Client{},
		policies: make(map[Provider]Policy, len(policies)),
		log:      log,
		sleep:    sleepCtx,
		pacers:   make(map[Key]*rate.Limiter),
		states:   make(map[Key]*RateLimitState),
	}
	for _, p := range policies {
		d.policies[p.Provider] = p
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send executes one provider call under key's policy, decoding the 2xx JSON
// body into out when out is non-nil. On failure the returned error is one
// of the gateway taxonomy kinds, discriminable via errors.Is / errors.As.
func (d *Dispatcher) Send(ctx context.Context, key Key, spec RequestSpec, out any) (*Response, error) {
	pol, ok := d.policies[key.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: no dispatch policy for %s", ErrNotConfigured, key.Provider)
	}

	start := time.Now()
	defer func() {
		metrics.ProviderCallDuration.WithLabelValues(string(key.Provider)).Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, pol.timeout())
	defer cancel()

	resp, err := d.send(ctx, key, pol, spec, out)
	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(string(key.Provider), "error").Inc()
		return nil, err
	}

	metrics.ProviderCallsTotal.WithLabelValues(string(key.Provider), "success").Inc()
	return resp, nil
}

func (d *Dispatcher) send(ctx context.Context, key Key, pol Policy, spec RequestSpec, out any) (*Response, error) {
	var refreshed bool

	for attempt := 0; ; attempt++ {
		if err := d.pace(ctx, key, pol); err != nil {
			return nil, fmt.Errorf("%s pacing wait: %w", key.Provider, err)
		}

		token, err := d.tokens.Token(ctx, key)
		if err != nil {
			return nil, err
		}

		req, err := buildRequest(ctx, pol, spec, token)
		if err != nil {
			return nil, err
		}

		httpResp, err := d.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%s request deadline exceeded: %w", key.Provider, ctx.Err())
			}
			if attempt >= pol.maxRetries() {
				return nil, fmt.Errorf("%s: %w: %w", key.Provider, ErrNetworkExhausted, err)
			}
			metrics.ProviderRetryTotal.WithLabelValues(string(key.Provider), "network").Inc()
			d.log.Debug("provider request failed, retrying",
				"provider", key.Provider, "attempt", attempt, "error", err)
			if err := d.backoff(ctx, key, pol, attempt, 0); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(httpResp.Body)
		_ = httpResp.Body.Close()
		if readErr != nil {
			if attempt >= pol.maxRetries() {
				return nil, fmt.Errorf("%s: %w: %w", key.Provider, ErrNetworkExhausted, readErr)
			}
			metrics.ProviderRetryTotal.WithLabelValues(string(key.Provider), "network").Inc()
			if err := d.backoff(ctx, key, pol, attempt, 0); err != nil {
				return nil, err
			}
			continue
		}

		d.recordRate(key, pol, httpResp.Header)

		switch {
		case httpResp.StatusCode == http.StatusTooManyRequests:
			retryAfter := parseRetryAfter(httpResp.Header)
			d.setRetryAfterHint(key, retryAfter)
			if attempt >= pol.maxRetries() {
				return nil, fmt.Errorf("%s: %w", key.Provider, ErrRateLimitExceeded)
			}
			metrics.ProviderRetryTotal.WithLabelValues(string(key.Provider), "rate_limit").Inc()
			if err := d.backoff(ctx, key, pol, attempt, retryAfter); err != nil {
				return nil, err
			}

		case httpResp.StatusCode == http.StatusUnauthorized:
			// A token can be revoked out-of-band before its recorded expiry.
			// Force one refresh and retry; a second 401 is terminal.
			if refreshed {
				return nil, fmt.Errorf("%s: %w", key.Provider, ErrAuthRejected)
			}
			refreshed = true
			metrics.ProviderRetryTotal.WithLabelValues(string(key.Provider), "auth").Inc()
			if err := d.tokens.Invalidate(ctx, key); err != nil {
				return nil, fmt.Errorf("invalidating %s token: %w", key.Provider, err)
			}

		case httpResp.StatusCode >= 200 && httpResp.StatusCode < 300:
			if out != nil {
				if err := json.Unmarshal(body, out); err != nil {
					return nil, fmt.Errorf("%s: %w: %w", key.Provider, ErrMalformedResponse, err)
				}
			}
			return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: body}, nil

		default:
			// Semantic errors are not transient by assumption; retrying
			// would only mask caller bugs.
			return nil, &ProviderError{Provider: key.Provider, Status: httpResp.StatusCode, Body: body}
		}
	}
}

// RateState returns a copy of the most recent rate-limit state for key's
// pacing scope, or false when no request has been dispatched yet.
func (d *Dispatcher) RateState(key Key) (RateLimitState, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	st, ok := d.states[d.paceKey(key)]
	if !ok {
		return RateLimitState{}, false
	}
	return *st, true
}

func (d *Dispatcher) paceKey(key Key) Key {
	pol := d.policies[key.Provider]
	if pol.PerTenant {
		return key
	}
	return Key{Provider: key.Provider}
}

// pace blocks until the pacing interval since the previous request for this
// key has elapsed. The limiter reserves the slot before the request is
// issued so overlapping callers serialize correctly.
func (d *Dispatcher) pace(ctx context.Context, key Key, pol Policy) error {
	pk := d.paceKey(key)

	d.mu.Lock()
	limiter, ok := d.pacers[pk]
	if !ok {
		lim := rate.Inf
		if pol.MinInterval > 0 {
			lim = rate.Every(pol.MinInterval)
		}
		limiter = rate.NewLimiter(lim, 1)
		d.pacers[pk] = limiter
	}
	st, ok := d.states[pk]
	if !ok {
		st = &RateLimitState{}
		d.states[pk] = st
	}
	d.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	d.mu.Lock()
	st.LastRequestAt = time.Now()
	d.mu.Unlock()
	return nil
}

func (d *Dispatcher) backoff(ctx context.Context, key Key, pol Policy, attempt int, retryAfter time.Duration) error {
	delay := pol.baseBackoff() << attempt
	if retryAfter > 0 {
		delay = retryAfter
	}

	if err := d.sleep(ctx, delay); err != nil {
		return fmt.Errorf("%s backoff interrupted: %w", key.Provider, err)
	}
	return nil
}

func (d *Dispatcher) recordRate(key Key, pol Policy, h http.Header) {
	if pol.ParseRateHeader == nil {
		return
	}
	used, limit, ok := pol.ParseRateHeader(h)
	if !ok {
		return
	}

	d.mu.Lock()
	if st, found := d.states[d.paceKey(key)]; found {
		st.Used, st.Max = used, limit
	}
	d.mu.Unlock()

	if limit > 0 {
		metrics.ProviderRateUsage.WithLabelValues(string(key.Provider)).Set(float64(used) / float64(limit))
	}
}

func (d *Dispatcher) setRetryAfterHint(key Key, hint time.Duration) {
	if hint <= 0 {
		return
	}
	d.mu.Lock()
	if st, ok := d.states[d.paceKey(key)]; ok {
		st.RetryAfterHint = hint
	}
	d.mu.Unlock()
}

func buildRequest(ctx context.Context, pol Policy, spec RequestSpec, token string) (*http.Request, error) {
	u := spec.URL
	if len(spec.Query) > 0 {
		u += "?" + spec.Query.Encode()
	}

	var bodyReader io.Reader = http.NoBody
	if spec.Body != nil {
		data, err := json.Marshal(spec.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for k, vals := range spec.Header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	if spec.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if pol.Authorize != nil {
		pol.Authorize(req, token)
	}
	return req, nil
}

// parseRetryAfter reads an integer-seconds Retry-After header. Zero means
// absent or unparseable.
func parseRetryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
