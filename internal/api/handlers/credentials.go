package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storeflow/gateway/internal/gateway"
	"github.com/storeflow/gateway/internal/store"
)

// CredentialsHandler exposes credential lifecycle status. Token values never
// leave the store through this handler.
type CredentialsHandler struct {
	store   store.Store
	tokens  *gateway.TokenManager
	nowFunc func() time.Time
}

// CredentialsOption configures a CredentialsHandler.
type CredentialsOption func(*CredentialsHandler)

// WithCredentialsNowFunc overrides the clock used to compute freshness.
func WithCredentialsNowFunc(f func() time.Time) CredentialsOption {
	return func(h *CredentialsHandler) {
		h.nowFunc = f
	}
}

// NewCredentialsHandler creates a new CredentialsHandler.
func NewCredentialsHandler(s store.Store, tm *gateway.TokenManager, opts ...CredentialsOption) *CredentialsHandler {
	h := &CredentialsHandler{store: s, tokens: tm, nowFunc: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// --- Input/Output types ---

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

// ListCredentialsOutput is the response for listing credential status.
type ListCredentialsOutput struct {
	Body []CredentialStatus
}

// PutCredentialInput stores an operator-entered static bearer token for a
// tenant. Only providers that issue long-lived tokens out of band accept
// this; OAuth providers connect through the redirect flow instead.
type PutCredentialInput struct {
	TenantID string `path:"tenant_id" doc:"Tenant the token belongs to"`
	Provider string `path:"provider" doc:"Provider name" enum:"shopify,etsy,cj,ebay"`
	Body     struct {
		AccessToken string `json:"access_token" minLength:"1" doc:"Long-lived token issued by the provider's admin console"`
	}
}

// PutCredentialOutput is the response after storing a static token.
type PutCredentialOutput struct {
	Body CredentialStatus
}

// DeleteCredentialInput is the input for logging a tenant out of a provider.
type DeleteCredentialInput struct {
	TenantID string `path:"tenant_id" doc:"Tenant identifier, or '-' for account-level credentials"`
	Provider string `path:"provider" doc:"Provider name" enum:"shopify,etsy,cj,ebay"`
}

// DeleteCredentialOutput is the response after a logout.
type DeleteCredentialOutput struct {
	Body StatusResponse
}

// --- Handlers ---

// ListCredentials returns the status of every stored credential.
func (h *CredentialsHandler) ListCredentials(
	ctx context.Context,
	_ *struct{},
) (*ListCredentialsOutput, error) {
	creds, err := h.store.ListCredentials(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list credentials: " + err.Error())
	}

	now := h.nowFunc()
	statuses := make([]CredentialStatus, 0, len(creds))
	for i := range creds {
		c := &creds[i]
		st := CredentialStatus{
			Provider:      string(c.Provider),
			TenantID:      c.TenantID,
			Kind:          string(c.Kind),
			IssuedAt:      c.IssuedAt,
			Fresh:         c.Fresh(now, gateway.DefaultExpiryMargin),
			RefreshUsable: c.RefreshUsable(now),
		}
		if !c.ExpiresAt.IsZero() {
			t := c.ExpiresAt
			st.ExpiresAt = &t
		}
		if !c.RefreshExpiresAt.IsZero() {
			t := c.RefreshExpiresAt
			st.RefreshExpiresAt = &t
		}
		statuses = append(statuses, st)
	}

	return &ListCredentialsOutput{Body: statuses}, nil
}

// PutCredential stores a static bearer token entered by the operator. This
// is how Shopify tenants connect, and how they reconnect after the stored
// token is rejected. The token value is accepted but never echoed back.
func (h *CredentialsHandler) PutCredential(
	ctx context.Context,
	input *PutCredentialInput,
) (*PutCredentialOutput, error) {
	provider := gateway.Provider(input.Provider)
	if provider != gateway.ProviderShopify {
		return nil, huma.Error400BadRequest("provider " + input.Provider + " does not use operator-entered tokens")
	}
	if input.TenantID == "" || input.TenantID == "-" {
		return nil, huma.Error400BadRequest("static bearer tokens are per tenant")
	}

	now := h.nowFunc()
	cred := &gateway.Credential{
		Provider:    provider,
		TenantID:    input.TenantID,
		Kind:        gateway.KindStaticBearer,
		AccessToken: input.Body.AccessToken,
		IssuedAt:    now,
	}
	if err := h.store.PutCredential(ctx, cred); err != nil {
		return nil, huma.Error500InternalServerError("failed to store credential: " + err.Error())
	}

	return &PutCredentialOutput{Body: CredentialStatus{
		Provider:      string(cred.Provider),
		TenantID:      cred.TenantID,
		Kind:          string(cred.Kind),
		IssuedAt:      cred.IssuedAt,
		Fresh:         cred.Fresh(now, gateway.DefaultExpiryMargin),
		RefreshUsable: cred.RefreshUsable(now),
	}}, nil
}

// DeleteCredential disconnects a tenant from a provider by dropping the
// stored credential. A tenant_id of "-" addresses account-level credentials
// (CJ, eBay) that are not scoped to a tenant.
func (h *CredentialsHandler) DeleteCredential(
	ctx context.Context,
	input *DeleteCredentialInput,
) (*DeleteCredentialOutput, error) {
	tenantID := input.TenantID
	if tenantID == "-" {
		tenantID = ""
	}
	key := gateway.Key{Provider: gateway.Provider(input.Provider), TenantID: tenantID}
	if err := h.tokens.Logout(ctx, key); err != nil {
		return nil, huma.Error500InternalServerError("failed to delete credential: " + err.Error())
	}

	return &DeleteCredentialOutput{Body: StatusResponse{Status: "disconnected"}}, nil
}

// RegisterCredentialRoutes registers credential endpoints with the Huma API.
func RegisterCredentialRoutes(api huma.API, h *CredentialsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-credentials",
		Method:      http.MethodGet,
		Path:        "/api/v1/credentials",
		Summary:     "List credential status",
		Description: "Returns freshness and expiry for every stored credential. Token values are never included.",
		Tags:        []string{"credentials"},
	}, h.ListCredentials)

	huma.Register(api, huma.Operation{
		OperationID: "put-credential",
		Method:      http.MethodPut,
		Path:        "/api/v1/tenants/{tenant_id}/credentials/{provider}",
		Summary:     "Store a static token",
		Description: "Stores an operator-entered static bearer token for the tenant. Shopify only; OAuth providers connect via the redirect flow.",
		Tags:        []string{"credentials"},
	}, h.PutCredential)

	huma.Register(api, huma.Operation{
		OperationID: "delete-credential",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tenants/{tenant_id}/credentials/{provider}",
		Summary:     "Disconnect a provider",
		Description: "Removes the stored credential for the tenant and provider.",
		Tags:        []string{"credentials"},
	}, h.DeleteCredential)
}
