package main

import "errors"

// KnownMetrics is the set of metric names exported by the storeflow gateway
// plus recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"storeflow_http_request_duration_seconds": true,
	"storeflow_http_requests_total":           true,

	// Health metrics.
	"storeflow_healthz_up": true,
	"storeflow_readyz_up":  true,

	// Provider gateway metrics.
	"storeflow_provider_calls_total":           true,
	"storeflow_provider_call_duration_seconds": true,
	"storeflow_provider_retries_total":         true,
	"storeflow_provider_rate_usage_ratio":      true,

	// Token lifecycle metrics.
	"storeflow_token_refreshes_total": true,
	"storeflow_code_exchanges_total":  true,

	// Webhook metrics.
	"storeflow_webhooks_received_total": true,

	// Credential sweep metrics.
	"storeflow_credential_sweep_runs_total":                 true,
	"storeflow_credential_sweep_refreshes_total":            true,
	"storeflow_credential_sweep_last_run_timestamp_seconds": true,

	// Recording rules.
	"storeflow:http_requests:rate5m":          true,
	"storeflow:http_errors:rate5m":            true,
	"storeflow:provider_calls:rate5m":         true,
	"storeflow:provider_errors:rate5m":        true,
	"storeflow:token_refresh_failures:rate5m": true,
	"storeflow:webhook_rejections:rate5m":     true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
