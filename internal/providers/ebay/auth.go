// Package ebay provides the eBay Browse API client, used for sourcing
// research: searching the marketplace and inspecting individual items.
// Auth is the OAuth2 client-credentials grant against a Basic-auth token
// endpoint; there is no refresh token, so the credential carries the
// encoded application key pair as its renewal material and every refresh
// mints a fresh token from it.
package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/storeflow/gateway/internal/gateway"
)

const (
	defaultTokenURL = "https://api.ebay.com/identity/v1/oauth2/token" //nolint:gosec // not a credential
	defaultScope    = "https://api.ebay.com/oauth/api_scope"
)

// ClientCredentials implements the eBay client-credentials grant. It
// satisfies gateway.Refresher.
type ClientCredentials struct {
	appID    string
	certID   string
	tokenURL string
	scopes   string
	client   *http.Client
	nowFunc  func() time.Time
}

// AuthOption configures the ClientCredentials flow.
type AuthOption func(*ClientCredentials)

// WithTokenURL overrides the default eBay token endpoint.
func WithTokenURL(u string) AuthOption {
	return func(p *ClientCredentials) {
		p.tokenURL = u
	}
}

// WithAuthHTTPClient overrides the default HTTP client.
func WithAuthHTTPClient(c *http.Client) AuthOption {
	return func(p *ClientCredentials) {
		p.client = c
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) AuthOption {
	return func(p *ClientCredentials) {
		p.nowFunc = f
	}
}

// NewClientCredentials creates the eBay auth flow for one application
// key pair.
func NewClientCredentials(appID, certID string, opts ...AuthOption) *ClientCredentials {
	p := &ClientCredentials{
		appID:    appID,
		certID:   certID,
		tokenURL: defaultTokenURL,
		scopes:   defaultScope,
		client:   &http.Client{Timeout: 10 * time.Second},
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Seed returns the initial eBay credential: no access token yet, with the
// encoded application key pair as the always-valid renewal material. The
// expired timestamp forces a mint on first use.
func (p *ClientCredentials) Seed() *gateway.Credential {
	now := p.nowFunc()
	return &gateway.Credential{
		Provider:     gateway.ProviderEbay,
		Kind:         gateway.KindOAuthRefresh,
		RefreshToken: p.basicCredentials(),
		IssuedAt:     now,
		ExpiresAt:    now.Add(-time.Second),
	}
}

func (p *ClientCredentials) basicCredentials() string {
	return base64.StdEncoding.EncodeToString([]byte(p.appID + ":" + p.certID))
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Refresh mints a new application token. The previous credential's access
// token is irrelevant; client-credentials tokens are not renewed, only
// replaced.
func (p *ClientCredentials) Refresh(ctx context.Context, cred *gateway.Credential) (*gateway.Credential, error) {
	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {p.scopes},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+p.basicCredentials())

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ebay token endpoint: %w", gateway.ErrAuthTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading ebay token response: %w", gateway.ErrAuthTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp tokenErrorResponse
		_ = json.Unmarshal(body, &errResp) //nolint:errcheck // best-effort error parsing
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: ebay token endpoint status %d", gateway.ErrAuthTransient, resp.StatusCode)
		}
		// 4xx means the application key pair itself is bad.
		return nil, fmt.Errorf("%w: ebay token request failed (status %d): %s - %s",
			gateway.ErrInvalidGrant, resp.StatusCode, errResp.Error, errResp.ErrorDescription)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("parsing ebay token response: %w", err)
	}

	now := p.nowFunc()
	return &gateway.Credential{
		Provider:     gateway.ProviderEbay,
		Kind:         gateway.KindOAuthRefresh,
		AccessToken:  tok.AccessToken,
		RefreshToken: cred.RefreshToken,
		IssuedAt:     now,
		ExpiresAt:    now.Add(time.Duration(tok.ExpiresIn) * time.Second),
	}, nil
}
