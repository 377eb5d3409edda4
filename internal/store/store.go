// Package store defines the datastore abstraction for the gateway:
// persisted provider credentials and per-tenant provider settings.
// Callers depend on the Store interface, never on concrete
// implementations, so handlers and the sweeper test without a database.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/storeflow/gateway/internal/gateway"
)

// ErrSettingsNotFound is returned when no settings row exists for a
// tenant/provider pair.
var ErrSettingsNotFound = errors.New("provider settings not found")

// TenantSettings holds one tenant's configuration for one provider.
// WebhookSecret is a secret and must never appear in logs or API
// responses.
type TenantSettings struct {
	TenantID      string           `json:"tenant_id"`
	Provider      gateway.Provider `json:"provider"`
	StoreURL      string           `json:"store_url,omitempty"`
	APIVersion    string           `json:"api_version,omitempty"`
	WebhookSecret string           `json:"-"`
	Enabled       bool             `json:"enabled"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Store defines all gateway data access: the credential persistence the
// token manager runs on, plus tenant settings CRUD for the admin API.
type Store interface {
	gateway.CredentialStore

	UpsertSettings(ctx context.Context, s *TenantSettings) error
	GetSettings(ctx context.Context, tenantID string, provider gateway.Provider) (*TenantSettings, error)
	ListSettings(ctx context.Context, tenantID string) ([]TenantSettings, error)
	DeleteSettings(ctx context.Context, tenantID string, provider gateway.Provider) error

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
}
