package client

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Settings is the API shape of a tenant's provider settings. The webhook
// secret is write-only and never returned.
type Settings struct {
	TenantID         string    `json:"tenant_id"`
	Provider         string    `json:"provider"`
	StoreURL         string    `json:"store_url"`
	APIVersion       string    `json:"api_version,omitempty"`
	HasWebhookSecret bool      `json:"has_webhook_secret"`
	Enabled          bool      `json:"enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SettingsRequest carries the writable settings fields.
type SettingsRequest struct {
	StoreURL      string `json:"store_url"`
	APIVersion    string `json:"api_version,omitempty"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
	Enabled       bool   `json:"enabled"`
}

func settingsPath(tenantID, provider string) string {
	return fmt.Sprintf("/api/v1/tenants/%s/settings/%s",
		url.PathEscape(tenantID), url.PathEscape(provider))
}

// ListSettings returns all provider settings for a tenant.
func (c *Client) ListSettings(ctx context.Context, tenantID string) ([]Settings, error) {
	var out []Settings
	path := "/api/v1/tenants/" + url.PathEscape(tenantID) + "/settings"
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSettings returns one provider's settings for a tenant.
func (c *Client) GetSettings(ctx context.Context, tenantID, provider string) (*Settings, error) {
	var out Settings
	if err := c.get(ctx, settingsPath(tenantID, provider), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PutSettings creates or replaces one provider's settings for a tenant.
func (c *Client) PutSettings(ctx context.Context, tenantID, provider string, req SettingsRequest) (*Settings, error) {
	var out Settings
	if err := c.put(ctx, settingsPath(tenantID, provider), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSettings removes one provider's settings for a tenant.
func (c *Client) DeleteSettings(ctx context.Context, tenantID, provider string) error {
	return c.del(ctx, settingsPath(tenantID, provider), nil)
}
