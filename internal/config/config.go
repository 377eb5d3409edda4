// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Providers ProvidersConfig `yaml:"providers"`
	Webhooks  WebhooksConfig  `yaml:"webhooks"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Notify    NotifyConfig    `yaml:"notify"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// ProvidersConfig groups per-provider settings. Tenant-specific values
// (store URLs, admin tokens, webhook secrets) live in the database; this
// holds the application-level credentials and endpoint overrides.
type ProvidersConfig struct {
	Shopify ShopifyConfig `yaml:"shopify"`
	Etsy    EtsyConfig    `yaml:"etsy"`
	CJ      CJConfig      `yaml:"cj"`
	Ebay    EbayConfig    `yaml:"ebay"`
}

// ShopifyConfig defines Shopify Admin API settings.
type ShopifyConfig struct {
	Enabled    bool   `yaml:"enabled"`
	APIVersion string `yaml:"api_version"`
}

// EtsyConfig defines Etsy Open API and OAuth settings. Keystring is the
// registered application's client ID, sent as x-api-key on every request.
type EtsyConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Keystring   string   `yaml:"keystring"`
	RedirectURI string   `yaml:"redirect_uri"`
	Scopes      []string `yaml:"scopes"`
	TokenURL    string   `yaml:"token_url"`
	AuthURL     string   `yaml:"auth_url"`
	BaseURL     string   `yaml:"base_url"`
}

// CJConfig defines CJ Dropshipping account settings.
type CJConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	BaseURL  string `yaml:"base_url"`
}

// EbayConfig defines eBay application settings.
type EbayConfig struct {
	Enabled     bool   `yaml:"enabled"`
	AppID       string `yaml:"app_id"`
	CertID      string `yaml:"cert_id"`
	TokenURL    string `yaml:"token_url"`
	BaseURL     string `yaml:"base_url"`
	Marketplace string `yaml:"marketplace"`
}

// WebhooksConfig defines inbound webhook verification behavior.
type WebhooksConfig struct {
	// Mode decides what happens when a tenant has no webhook secret
	// configured: "enforce" rejects unverifiable deliveries,
	// "allow-unverified" accepts them with a warning log.
	Mode string `yaml:"mode"`
}

// ScheduleConfig defines background job intervals.
type ScheduleConfig struct {
	// RefreshSweepInterval is how often the sweeper checks stored
	// credentials for upcoming expiry.
	RefreshSweepInterval time.Duration `yaml:"refresh_sweep_interval"`
}

// NotifyConfig defines operational alert delivery. When the Discord webhook
// URL is empty, alerts are discarded.
type NotifyConfig struct {
	DiscordWebhookURL string `yaml:"discord_webhook_url"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyProviderDefaults(&cfg.Providers)
	applyWebhooksDefaults(&cfg.Webhooks)
	applyScheduleDefaults(&cfg.Schedule)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyProviderDefaults(p *ProvidersConfig) {
	if p.Shopify.APIVersion == "" {
		p.Shopify.APIVersion = "2024-01"
	}
	if len(p.Etsy.Scopes) == 0 {
		p.Etsy.Scopes = []string{"transactions_r", "listings_r", "listings_w", "shops_r"}
	}
	if p.Ebay.Marketplace == "" {
		p.Ebay.Marketplace = "EBAY_US"
	}
}

func applyWebhooksDefaults(w *WebhooksConfig) {
	// Fail closed: deliveries that cannot be verified are rejected unless
	// the operator explicitly opts out.
	if w.Mode == "" {
		w.Mode = "enforce"
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.RefreshSweepInterval == 0 {
		s.RefreshSweepInterval = time.Hour
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}

	switch cfg.Webhooks.Mode {
	case "enforce", "allow-unverified":
	default:
		errs = append(errs, fmt.Errorf(
			"webhooks.mode must be one of: enforce, allow-unverified (got %q)",
			cfg.Webhooks.Mode,
		))
	}

	if cfg.Providers.Etsy.Enabled {
		if cfg.Providers.Etsy.Keystring == "" {
			errs = append(errs, fmt.Errorf("providers.etsy.keystring is required when etsy is enabled"))
		}
		if cfg.Providers.Etsy.RedirectURI == "" {
			errs = append(errs, fmt.Errorf("providers.etsy.redirect_uri is required when etsy is enabled"))
		}
	}

	if cfg.Providers.CJ.Enabled {
		if cfg.Providers.CJ.Email == "" {
			errs = append(errs, fmt.Errorf("providers.cj.email is required when cj is enabled"))
		}
		if cfg.Providers.CJ.Password == "" {
			errs = append(errs, fmt.Errorf("providers.cj.password is required when cj is enabled"))
		}
	}

	if cfg.Providers.Ebay.Enabled {
		if cfg.Providers.Ebay.AppID == "" {
			errs = append(errs, fmt.Errorf("providers.ebay.app_id is required when ebay is enabled"))
		}
		if cfg.Providers.Ebay.CertID == "" {
			errs = append(errs, fmt.Errorf("providers.ebay.cert_id is required when ebay is enabled"))
		}
	}

	return errors.Join(errs...)
}
