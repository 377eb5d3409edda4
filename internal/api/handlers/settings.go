package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storeflow/gateway/internal/gateway"
	"github.com/storeflow/gateway/internal/store"
)

// SettingsHandler manages per-tenant provider settings.
type SettingsHandler struct {
	store store.Store
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(s store.Store) *SettingsHandler {
	return &SettingsHandler{store: s}
}

// --- Input/Output types ---

// SettingsView is the API shape of a settings row. The webhook secret is
// write-only: responses carry only whether one is set.
type SettingsView struct {
	TenantID         string    `json:"tenant_id"`
	Provider         string    `json:"provider"`
	StoreURL         string    `json:"store_url"`
	APIVersion       string    `json:"api_version,omitempty"`
	HasWebhookSecret bool      `json:"has_webhook_secret"`
	Enabled          bool      `json:"enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func settingsView(s *store.TenantSettings) SettingsView {
	return SettingsView{
		TenantID:         s.TenantID,
		Provider:         string(s.Provider),
		StoreURL:         s.StoreURL,
		APIVersion:       s.APIVersion,
		HasWebhookSecret: s.WebhookSecret != "",
		Enabled:          s.Enabled,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// ListSettingsInput is the input for listing a tenant's settings.
type ListSettingsInput struct {
	TenantID string `path:"tenant_id" doc:"Tenant identifier"`
}

// ListSettingsOutput is the response for listing a tenant's settings.
type ListSettingsOutput struct {
	Body []SettingsView
}

// GetSettingsInput is the input for reading one provider's settings.
type GetSettingsInput struct {
	TenantID string `path:"tenant_id" doc:"Tenant identifier"`
	Provider string `path:"provider" doc:"Provider name" enum:"shopify,etsy,cj,ebay"`
}

// GetSettingsOutput is the response for reading one provider's settings.
type GetSettingsOutput struct {
	Body SettingsView
}

// PutSettingsInput is the input for creating or replacing settings.
type PutSettingsInput struct {
	TenantID string `path:"tenant_id" doc:"Tenant identifier"`
	Provider string `path:"provider" doc:"Provider name" enum:"shopify,etsy,cj,ebay"`
	Body     struct {
		StoreURL      string `json:"store_url" doc:"Store base URL, or the numeric shop ID for Etsy"`
		APIVersion    string `json:"api_version,omitempty" doc:"Admin API version (Shopify only)"`
		WebhookSecret string `json:"webhook_secret,omitempty" doc:"Shared secret for webhook HMAC verification"`
		Enabled       bool   `json:"enabled"`
	}
}

// PutSettingsOutput is the response after an upsert.
type PutSettingsOutput struct {
	Body SettingsView
}

// DeleteSettingsInput is the input for removing settings.
type DeleteSettingsInput struct {
	TenantID string `path:"tenant_id" doc:"Tenant identifier"`
	Provider string `path:"provider" doc:"Provider name" enum:"shopify,etsy,cj,ebay"`
}

// DeleteSettingsOutput is the response after a delete.
type DeleteSettingsOutput struct {
	Body StatusResponse
}

// --- Handlers ---

// ListSettings returns all provider settings for a tenant.
func (h *SettingsHandler) ListSettings(
	ctx context.Context,
	input *ListSettingsInput,
) (*ListSettingsOutput, error) {
	rows, err := h.store.ListSettings(ctx, input.TenantID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list settings: " + err.Error())
	}

	views := make([]SettingsView, 0, len(rows))
	for i := range rows {
		views = append(views, settingsView(&rows[i]))
	}

	return &ListSettingsOutput{Body: views}, nil
}

// GetSettings returns one provider's settings for a tenant.
func (h *SettingsHandler) GetSettings(
	ctx context.Context,
	input *GetSettingsInput,
) (*GetSettingsOutput, error) {
	s, err := h.store.GetSettings(ctx, input.TenantID, gateway.Provider(input.Provider))
	if err != nil {
		if errors.Is(err, store.ErrSettingsNotFound) {
			return nil, huma.Error404NotFound("settings not found")
		}
		return nil, huma.Error500InternalServerError("failed to get settings: " + err.Error())
	}

	return &GetSettingsOutput{Body: settingsView(s)}, nil
}

// PutSettings creates or replaces one provider's settings for a tenant. An
// empty webhook_secret in the body clears any stored secret, so the tenant
// falls back to the deployment's verify mode.
func (h *SettingsHandler) PutSettings(
	ctx context.Context,
	input *PutSettingsInput,
) (*PutSettingsOutput, error) {
	s := &store.TenantSettings{
		TenantID:      input.TenantID,
		Provider:      gateway.Provider(input.Provider),
		StoreURL:      input.Body.StoreURL,
		APIVersion:    input.Body.APIVersion,
		WebhookSecret: input.Body.WebhookSecret,
		Enabled:       input.Body.Enabled,
	}
	if err := h.store.UpsertSettings(ctx, s); err != nil {
		return nil, huma.Error500InternalServerError("failed to save settings: " + err.Error())
	}

	return &PutSettingsOutput{Body: settingsView(s)}, nil
}

// DeleteSettings removes one provider's settings for a tenant.
func (h *SettingsHandler) DeleteSettings(
	ctx context.Context,
	input *DeleteSettingsInput,
) (*DeleteSettingsOutput, error) {
	err := h.store.DeleteSettings(ctx, input.TenantID, gateway.Provider(input.Provider))
	if err != nil {
		if errors.Is(err, store.ErrSettingsNotFound) {
			return nil, huma.Error404NotFound("settings not found")
		}
		return nil, huma.Error500InternalServerError("failed to delete settings: " + err.Error())
	}

	return &DeleteSettingsOutput{Body: StatusResponse{Status: "deleted"}}, nil
}

// RegisterSettingsRoutes registers settings endpoints with the Huma API.
func RegisterSettingsRoutes(api huma.API, h *SettingsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-settings",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{tenant_id}/settings",
		Summary:     "List provider settings",
		Description: "Returns all provider settings for the tenant. Secrets are redacted.",
		Tags:        []string{"settings"},
	}, h.ListSettings)

	huma.Register(api, huma.Operation{
		OperationID: "get-settings",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{tenant_id}/settings/{provider}",
		Summary:     "Get provider settings",
		Description: "Returns one provider's settings for the tenant. Secrets are redacted.",
		Tags:        []string{"settings"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetSettings)

	huma.Register(api, huma.Operation{
		OperationID: "put-settings",
		Method:      http.MethodPut,
		Path:        "/api/v1/tenants/{tenant_id}/settings/{provider}",
		Summary:     "Create or replace provider settings",
		Description: "Upserts one provider's settings for the tenant.",
		Tags:        []string{"settings"},
	}, h.PutSettings)

	huma.Register(api, huma.Operation{
		OperationID: "delete-settings",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tenants/{tenant_id}/settings/{provider}",
		Summary:     "Delete provider settings",
		Description: "Removes one provider's settings for the tenant.",
		Tags:        []string{"settings"},
		Errors:      []int{http.StatusNotFound},
	}, h.DeleteSettings)
}
