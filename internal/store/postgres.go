package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storeflow/gateway/internal/gateway"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled
// PostgreSQL).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// GetCredential returns the stored credential for key, or
// gateway.ErrNotConfigured when none exists.
func (s *PostgresStore) GetCredential(ctx context.Context, key gateway.Key) (*gateway.Credential, error) {
	cred := &gateway.Credential{}
	var issuedAt, expiresAt, refreshExpiresAt *time.Time

	err := s.pool.QueryRow(ctx, queryGetCredential, string(key.Provider), key.TenantID).Scan(
		&cred.Provider, &cred.TenantID, &cred.Kind,
		&cred.AccessToken, &cred.RefreshToken,
		&issuedAt, &expiresAt, &refreshExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gateway.ErrNotConfigured
		}
		return nil, fmt.Errorf("getting credential %s/%s: %w", key.Provider, key.TenantID, err)
	}

	cred.IssuedAt = fromNullTime(issuedAt)
	cred.ExpiresAt = fromNullTime(expiresAt)
	cred.RefreshExpiresAt = fromNullTime(refreshExpiresAt)
	return cred, nil
}

// PutCredential stores cred, replacing any existing credential for its key.
func (s *PostgresStore) PutCredential(ctx context.Context, cred *gateway.Credential) error {
	args := pgx.NamedArgs{
		"provider":           string(cred.Provider),
		"tenant_id":          cred.TenantID,
		"kind":               string(cred.Kind),
		"access_token":       cred.AccessToken,
		"refresh_token":      cred.RefreshToken,
		"issued_at":          toNullTime(cred.IssuedAt),
		"expires_at":         toNullTime(cred.ExpiresAt),
		"refresh_expires_at": toNullTime(cred.RefreshExpiresAt),
	}

	if _, err := s.pool.Exec(ctx, queryUpsertCredential, args); err != nil {
		return fmt.Errorf("storing credential %s/%s: %w", cred.Provider, cred.TenantID, err)
	}
	return nil
}

// DeleteCredential removes the credential for key. Deleting a missing key
// is not an error.
func (s *PostgresStore) DeleteCredential(ctx context.Context, key gateway.Key) error {
	if _, err := s.pool.Exec(ctx, queryDeleteCredential, string(key.Provider), key.TenantID); err != nil {
		return fmt.Errorf("deleting credential %s/%s: %w", key.Provider, key.TenantID, err)
	}
	return nil
}

// ListCredentials returns all stored credentials.
func (s *PostgresStore) ListCredentials(ctx context.Context) ([]gateway.Credential, error) {
	rows, err := s.pool.Query(ctx, queryListCredentials)
	if err != nil {
		return nil, fmt.Errorf("listing credentials: %w", err)
	}
	defer rows.Close()

	var creds []gateway.Credential
	for rows.Next() {
		var cred gateway.Credential
		var issuedAt, expiresAt, refreshExpiresAt *time.Time

		if err := rows.Scan(
			&cred.Provider, &cred.TenantID, &cred.Kind,
			&cred.AccessToken, &cred.RefreshToken,
			&issuedAt, &expiresAt, &refreshExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("scanning credential: %w", err)
		}

		cred.IssuedAt = fromNullTime(issuedAt)
		cred.ExpiresAt = fromNullTime(expiresAt)
		cred.RefreshExpiresAt = fromNullTime(refreshExpiresAt)
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

// UpsertSettings inserts or updates one tenant/provider settings row,
// filling in the row timestamps on s.
func (s *PostgresStore) UpsertSettings(ctx context.Context, settings *TenantSettings) error {
	args := pgx.NamedArgs{
		"tenant_id":      settings.TenantID,
		"provider":       string(settings.Provider),
		"store_url":      settings.StoreURL,
		"api_version":    settings.APIVersion,
		"webhook_secret": settings.WebhookSecret,
		"enabled":        settings.Enabled,
	}

	err := s.pool.QueryRow(ctx, queryUpsertSettings, args).Scan(
		&settings.CreatedAt, &settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("storing settings %s/%s: %w", settings.TenantID, settings.Provider, err)
	}
	return nil
}

// GetSettings returns the settings row for a tenant/provider pair.
func (s *PostgresStore) GetSettings(ctx context.Context, tenantID string, provider gateway.Provider) (*TenantSettings, error) {
	settings := &TenantSettings{}
	err := s.pool.QueryRow(ctx, queryGetSettings, tenantID, string(provider)).Scan(
		&settings.TenantID, &settings.Provider, &settings.StoreURL, &settings.APIVersion,
		&settings.WebhookSecret, &settings.Enabled, &settings.CreatedAt, &settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("getting settings %s/%s: %w", tenantID, provider, err)
	}
	return settings, nil
}

// ListSettings returns all provider settings for one tenant.
func (s *PostgresStore) ListSettings(ctx context.Context, tenantID string) ([]TenantSettings, error) {
	rows, err := s.pool.Query(ctx, queryListSettings, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing settings for %s: %w", tenantID, err)
	}
	defer rows.Close()

	var out []TenantSettings
	for rows.Next() {
		var settings TenantSettings
		if err := rows.Scan(
			&settings.TenantID, &settings.Provider, &settings.StoreURL, &settings.APIVersion,
			&settings.WebhookSecret, &settings.Enabled, &settings.CreatedAt, &settings.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning settings: %w", err)
		}
		out = append(out, settings)
	}
	return out, rows.Err()
}

// DeleteSettings removes one tenant/provider settings row.
func (s *PostgresStore) DeleteSettings(ctx context.Context, tenantID string, provider gateway.Provider) error {
	tag, err := s.pool.Exec(ctx, queryDeleteSettings, tenantID, string(provider))
	if err != nil {
		return fmt.Errorf("deleting settings %s/%s: %w", tenantID, provider, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSettingsNotFound
	}
	return nil
}

// toNullTime maps the zero time to NULL so "never expires" survives the
// round trip.
func toNullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func fromNullTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
