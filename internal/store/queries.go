package store

// SQL query constants organized by entity.
// All SQL lives here — PostgresStore methods reference these constants.

// Credential queries.
const (
	queryUpsertCredential = `
		INSERT INTO provider_credentials (
			provider, tenant_id, kind,
			access_token, refresh_token,
			issued_at, expires_at, refresh_expires_at,
			updated_at
		) VALUES (
			@provider, @tenant_id, @kind,
			@access_token, @refresh_token,
			@issued_at, @expires_at, @refresh_expires_at,
			now()
		)
		ON CONFLICT (provider, tenant_id) DO UPDATE SET
			kind = EXCLUDED.kind,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			issued_at = EXCLUDED.issued_at,
			expires_at = EXCLUDED.expires_at,
			refresh_expires_at = EXCLUDED.refresh_expires_at,
			updated_at = now()`

	queryGetCredential = `
		SELECT provider, tenant_id, kind,
			access_token, refresh_token,
			issued_at, expires_at, refresh_expires_at
		FROM provider_credentials
		WHERE provider = $1 AND tenant_id = $2`

	queryDeleteCredential = `
		DELETE FROM provider_credentials
		WHERE provider = $1 AND tenant_id = $2`

	queryListCredentials = `
		SELECT provider, tenant_id, kind,
			access_token, refresh_token,
			issued_at, expires_at, refresh_expires_at
		FROM provider_credentials
		ORDER BY provider, tenant_id`
)

// Settings queries.
const (
	queryUpsertSettings = `
		INSERT INTO provider_settings (
			tenant_id, provider, store_url, api_version,
			webhook_secret, enabled, created_at, updated_at
		) VALUES (
			@tenant_id, @provider, @store_url, @api_version,
			@webhook_secret, @enabled, now(), now()
		)
		ON CONFLICT (tenant_id, provider) DO UPDATE SET
			store_url = EXCLUDED.store_url,
			api_version = EXCLUDED.api_version,
			webhook_secret = EXCLUDED.webhook_secret,
			enabled = EXCLUDED.enabled,
			updated_at = now()
		RETURNING created_at, updated_at`

	queryGetSettings = `
		SELECT tenant_id, provider, store_url, api_version,
			webhook_secret, enabled, created_at, updated_at
		FROM provider_settings
		WHERE tenant_id = $1 AND provider = $2`

	queryListSettings = `
		SELECT tenant_id, provider, store_url, api_version,
			webhook_secret, enabled, created_at, updated_at
		FROM provider_settings
		WHERE tenant_id = $1
		ORDER BY provider`

	queryDeleteSettings = `
		DELETE FROM provider_settings
		WHERE tenant_id = $1 AND provider = $2`
)
