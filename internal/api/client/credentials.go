package client

import (
	"context"
	"net/url"
	"time"
)

// CredentialStatus describes one stored credential without its secrets.
type CredentialStatus struct {
	Provider         string     `json:"provider"`
	TenantID         string     `json:"tenant_id,omitempty"`
	Kind             string     `json:"kind"`
	IssuedAt         time.Time  `json:"issued_at"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	RefreshExpiresAt *time.Time `json:"refresh_expires_at,omitempty"`
	Fresh            bool       `json:"fresh"`
	RefreshUsable    bool       `json:"refresh_usable"`
}

// ListCredentials returns the status of every stored credential.
func (c *Client) ListCredentials(ctx context.Context) ([]CredentialStatus, error) {
	var out []CredentialStatus
	if err := c.get(ctx, "/api/v1/credentials", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CredentialRequest carries an operator-entered static bearer token.
type CredentialRequest struct {
	AccessToken string `json:"access_token"`
}

func credentialPath(tenantID, provider string) string {
	return "/api/v1/tenants/" + url.PathEscape(tenantID) + "/credentials/" + url.PathEscape(provider)
}

// SetCredential stores a static bearer token for a tenant. Only providers
// whose tokens are issued out of band (Shopify) accept this.
func (c *Client) SetCredential(ctx context.Context, tenantID, provider, accessToken string) (*CredentialStatus, error) {
	var out CredentialStatus
	req := CredentialRequest{AccessToken: accessToken}
	if err := c.put(ctx, credentialPath(tenantID, provider), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCredential disconnects a tenant from a provider. Pass "-" as the
// tenant for account-level credentials (CJ, eBay).
func (c *Client) DeleteCredential(ctx context.Context, tenantID, provider string) error {
	return c.del(ctx, credentialPath(tenantID, provider), nil)
}
