// Package etsy provides the Etsy Open API v3 client. Etsy is a supplier
// side of the gateway: shops, receipts, and listings are read, listing
// inventory is written. Auth is OAuth2 authorization-code with PKCE
// (code_challenge_method=S256); every API request carries both the app
// keystring in x-api-key and the user token as a Bearer header.
package etsy

import (
	"context"
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
	defaultTokenURL = "https://api.etsy.com/v3/public/oauth/token" //nolint:gosec // not a credential
	defaultAuthURL  = "https://www.etsy.com/oauth/connect"
)

// OAuth implements the Etsy authorization-code and refresh-token grants.
// It satisfies both gateway.Exchanger and gateway.Refresher.
type OAuth struct {
	clientID    string
	redirectURI string
	scopes      []string
	tokenURL    string
	authURL     string
	client      *http.Client
	nowFunc     func() time.Time
}

// OAuthOption configures the OAuth flow.
type OAuthOption func(*OAuth)

// WithTokenURL overrides the default Etsy token endpoint.
func WithTokenURL(u string) OAuthOption {
	return func(o *OAuth) {
		o.tokenURL = u
	}
}

// WithAuthURL overrides the default Etsy authorization page.
func WithAuthURL(u string) OAuthOption {
	return func(o *OAuth) {
		o.authURL = u
	}
}

// WithOAuthHTTPClient overrides the default HTTP client.
func WithOAuthHTTPClient(c *http.Client) OAuthOption {
	return func(o *OAuth) {
		o.client = c
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) OAuthOption {
	return func(o *OAuth) {
		o.nowFunc = f
	}
}

// NewOAuth creates the OAuth flow for one registered Etsy application.
func NewOAuth(clientID, redirectURI string, scopes []string, opts ...OAuthOption) *OAuth {
	o := &OAuth{
		clientID:    clientID,
		redirectURI: redirectURI,
		scopes:      scopes,
		tokenURL:    defaultTokenURL,
		authURL:     defaultAuthURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		nowFunc:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AuthorizationURL builds the Etsy consent-page URL for a pending PKCE
// challenge. The verifier never leaves the server; only the S256 challenge
// and the state nonce travel in the redirect.
func (o *OAuth) AuthorizationURL(ch *gateway.Challenge) string {
	params := url.Values{
		"response_type":         {"code"},
		"client_id":             {o.clientID},
		"redirect_uri":          {o.redirectURI},
		"scope":                 {strings.Join(o.scopes, " ")},
		"state":                 {ch.State},
		"code_challenge":        {ch.Challenge},
		"code_challenge_method": {"S256"},
	}
	return o.authURL + "?" + params.Encode()
}

// Exchange trades an authorization code plus its PKCE verifier for a
// token pair.
func (o *OAuth) Exchange(ctx context.Context, code, verifier string) (*gateway.Credential, error) {
	return o.grant(ctx, url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {o.clientID},
		"redirect_uri":  {o.redirectURI},
		"code":          {code},
		"code_verifier": {verifier},
	})
}

// Refresh renews an Etsy token pair via the refresh_token grant. Etsy
// rotates the refresh token on every renewal, which is why the gateway
// allows only one refresh in flight per credential.
func (o *OAuth) Refresh(ctx context.Context, cred *gateway.Credential) (*gateway.Credential, error) {
	return o.grant(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {o.clientID},
		"refresh_token": {cred.RefreshToken},
	})
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (o *OAuth) grant(ctx context.Context, form url.Values) (*gateway.Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: etsy token endpoint: %w", gateway.ErrAuthTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading etsy token response: %w", gateway.ErrAuthTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp tokenErrorResponse
		_ = json.Unmarshal(body, &errResp) //nolint:errcheck // best-effort error parsing
		if errResp.Error == "invalid_grant" {
			return nil, fmt.Errorf("%w: %s", gateway.ErrInvalidGrant, errResp.ErrorDescription)
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: etsy token endpoint status %d", gateway.ErrAuthTransient, resp.StatusCode)
		}
		return nil, fmt.Errorf("etsy token request failed (status %d): %s - %s",
			resp.StatusCode, errResp.Error, errResp.ErrorDescription)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("parsing etsy token response: %w", err)
	}

	now := o.nowFunc()
	return &gateway.Credential{
		Provider:     gateway.ProviderEtsy,
		Kind:         gateway.KindOAuthPKCE,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		IssuedAt:     now,
		ExpiresAt:    now.Add(time.Duration(tok.ExpiresIn) * time.Second),
	}, nil
}
