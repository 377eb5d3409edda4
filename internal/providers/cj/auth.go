// Package cj provides the CJ Dropshipping API client. CJ is a supplier
// side of the gateway: product sourcing, warehouse stock, freight quotes,
// and fulfillment orders. One process-wide credential set exists; access
// tokens live 15 days, refresh tokens 180 days, and the auth endpoint
// reports both as absolute expiry timestamps rather than durations.
package cj

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/storeflow/gateway/internal/gateway"
)

const defaultBaseURL = "https://developers.cjdropshipping.com/api2.0/v1"

// expiry timestamp layouts observed from the CJ auth endpoint.
var expiryLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Auth implements the CJ credential flows: initial login with account
// email/password and renewal via refreshAccessToken. It satisfies
// gateway.Refresher.
type Auth struct {
	email    string
	password string
	baseURL  string
	client   *http.Client
}

// AuthOption configures Auth.
type AuthOption func(*Auth)

// WithAuthBaseURL overrides the default CJ API base URL.
func WithAuthBaseURL(u string) AuthOption {
	return func(a *Auth) {
		a.baseURL = strings.TrimRight(u, "/")
	}
}

// WithAuthHTTPClient overrides the default HTTP client.
func WithAuthHTTPClient(c *http.Client) AuthOption {
	return func(a *Auth) {
		a.client = c
	}
}

// NewAuth creates the CJ auth flow for one account.
func NewAuth(email, password string, opts ...AuthOption) *Auth {
	a := &Auth{
		email:    email,
		password: password,
		baseURL:  defaultBaseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type authData struct {
	AccessToken           string `json:"accessToken"`
	AccessTokenExpiryDate string `json:"accessTokenExpiryDate"`
	RefreshToken          string `json:"refreshToken"`
	RefreshTokenExpiry    string `json:"refreshTokenExpiryDate"`
}

// Login performs the initial email/password authentication and returns the
// resulting credential.
func (a *Auth) Login(ctx context.Context) (*gateway.Credential, error) {
	return a.tokenCall(ctx, "/authentication/getAccessToken", map[string]string{
		"email":    a.email,
		"password": a.password,
	})
}

// Refresh renews the token pair via refreshAccessToken. A rejected refresh
// token maps to ErrInvalidGrant so the gateway clears the credential and
// the operator re-authenticates with Login.
func (a *Auth) Refresh(ctx context.Context, cred *gateway.Credential) (*gateway.Credential, error) {
	return a.tokenCall(ctx, "/authentication/refreshAccessToken", map[string]string{
		"refreshToken": cred.RefreshToken,
	})
}

func (a *Auth) tokenCall(ctx context.Context, path string, payload map[string]string) (*gateway.Credential, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling cj auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("creating cj auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: cj auth endpoint: %w", gateway.ErrAuthTransient, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading cj auth response: %w", gateway.ErrAuthTransient, err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: cj auth endpoint status %d", gateway.ErrAuthTransient, resp.StatusCode)
	}

	var env struct {
		Code    int      `json:"code"`
		Result  bool     `json:"result"`
		Message string   `json:"message"`
		Data    authData `json:"data"`
	}
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("parsing cj auth response: %w", err)
	}

	if !env.Result || resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: cj auth rejected (code %d): %s", gateway.ErrInvalidGrant, env.Code, env.Message)
	}

	expiresAt, err := parseExpiry(env.Data.AccessTokenExpiryDate)
	if err != nil {
		return nil, fmt.Errorf("parsing cj access token expiry: %w", err)
	}
	refreshExpiresAt, err := parseExpiry(env.Data.RefreshTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("parsing cj refresh token expiry: %w", err)
	}

	return &gateway.Credential{
		Provider:         gateway.ProviderCJ,
		Kind:             gateway.KindOAuthRefresh,
		AccessToken:      env.Data.AccessToken,
		RefreshToken:     env.Data.RefreshToken,
		IssuedAt:         time.Now(),
		ExpiresAt:        expiresAt,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

func parseExpiry(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range expiryLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized expiry timestamp %q", value)
}
