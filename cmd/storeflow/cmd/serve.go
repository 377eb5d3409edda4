package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/storeflow/gateway/internal/api/handlers"
	"github.com/storeflow/gateway/internal/api/middleware"
	"github.com/storeflow/gateway/internal/config"
	"github.com/storeflow/gateway/internal/gateway"
	"github.com/storeflow/gateway/internal/notify"
	"github.com/storeflow/gateway/internal/providers/cj"
	"github.com/storeflow/gateway/internal/providers/ebay"
	"github.com/storeflow/gateway/internal/providers/etsy"
	"github.com/storeflow/gateway/internal/providers/shopify"
	"github.com/storeflow/gateway/internal/registry"
	"github.com/storeflow/gateway/internal/store"
	"github.com/storeflow/gateway/internal/sweeper"
	"github.com/storeflow/gateway/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway server and credential sweeper",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	cancel()
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	tokens := gateway.NewTokenManager(st, log)

	var policies []gateway.Policy
	var etsyOAuth *etsy.OAuth

	if cfg.Providers.Shopify.Enabled {
		policies = append(policies, shopify.Policy())
	}

	if cfg.Providers.Etsy.Enabled {
		policies = append(policies, etsy.Policy(cfg.Providers.Etsy.Keystring))

		var opts []etsy.OAuthOption
		if cfg.Providers.Etsy.TokenURL != "" {
			opts = append(opts, etsy.WithTokenURL(cfg.Providers.Etsy.TokenURL))
		}
		if cfg.Providers.Etsy.AuthURL != "" {
			opts = append(opts, etsy.WithAuthURL(cfg.Providers.Etsy.AuthURL))
		}
		etsyOAuth = etsy.NewOAuth(
			cfg.Providers.Etsy.Keystring,
			cfg.Providers.Etsy.RedirectURI,
			cfg.Providers.Etsy.Scopes,
			opts...,
		)
		tokens.RegisterRefresher(gateway.ProviderEtsy, etsyOAuth)
		tokens.RegisterExchanger(gateway.ProviderEtsy, etsyOAuth)
	}

	if cfg.Providers.CJ.Enabled {
		policies = append(policies, cj.Policy())

		var opts []cj.AuthOption
		if cfg.Providers.CJ.BaseURL != "" {
			opts = append(opts, cj.WithAuthBaseURL(cfg.Providers.CJ.BaseURL))
		}
		auth := cj.NewAuth(cfg.Providers.CJ.Email, cfg.Providers.CJ.Password, opts...)
		tokens.RegisterRefresher(gateway.ProviderCJ, auth)
		if err := seedCJ(st, auth, log); err != nil {
			return err
		}
	}

	if cfg.Providers.Ebay.Enabled {
		policies = append(policies, ebay.Policy())

		var opts []ebay.AuthOption
		if cfg.Providers.Ebay.TokenURL != "" {
			opts = append(opts, ebay.WithTokenURL(cfg.Providers.Ebay.TokenURL))
		}
		creds := ebay.NewClientCredentials(cfg.Providers.Ebay.AppID, cfg.Providers.Ebay.CertID, opts...)
		tokens.RegisterRefresher(gateway.ProviderEbay, creds)
		if err := seedEbay(st, creds, log); err != nil {
			return err
		}
	}

	dispatch := gateway.NewDispatcher(tokens, policies, log)
	reg := registry.New(dispatch, st, cfg.Providers)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	health := handlers.NewHealthHandler(st)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)

	// Verified webhooks are acknowledged and logged; order-sync consumers
	// attach here.
	sink := handlers.WebhookSinkFunc(func(_ context.Context, provider gateway.Provider, tenantID, topic string, body []byte) error {
		log.Info("webhook received",
			"provider", provider,
			"tenant_id", tenantID,
			"topic", topic,
			"bytes", len(body),
		)
		return nil
	})
	webhooks := handlers.NewWebhooksHandler(st, gateway.VerifyMode(cfg.Webhooks.Mode), sink, log)
	e.POST("/webhooks/:provider/:tenant_id", webhooks.Handle)

	if etsyOAuth != nil {
		oauth := handlers.NewOAuthHandler(gateway.NewChallengeStore(), tokens, etsyOAuth, log)
		e.GET("/oauth/etsy/connect", oauth.Connect)
		e.GET("/oauth/etsy/callback", oauth.Callback)
	}

	api := humaecho.New(e, huma.DefaultConfig("Storeflow Gateway", Version))
	handlers.RegisterSettingsRoutes(api, handlers.NewSettingsHandler(st))
	handlers.RegisterCredentialRoutes(api, handlers.NewCredentialsHandler(st, tokens))
	handlers.RegisterOrderRoutes(api, handlers.NewOrdersHandler(reg))

	var notifier notify.Notifier = notify.NewNoOpNotifier(log)
	if cfg.Notify.DiscordWebhookURL != "" {
		notifier = notify.NewDiscordNotifier(cfg.Notify.DiscordWebhookURL)
	}

	sweep, err := sweeper.New(st, tokens, cfg.Schedule.RefreshSweepInterval, log,
		sweeper.WithNotifier(notifier))
	if err != nil {
		return fmt.Errorf("creating credential sweeper: %w", err)
	}
	sweep.Start()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	<-sweep.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// seedCJ performs the initial email/password login when no CJ credential is
// stored yet. A failure is not fatal: the sweeper and interactive requests
// retry through the registered refresher.
func seedCJ(st *store.PostgresStore, auth *cj.Auth, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := gateway.Key{Provider: gateway.ProviderCJ}
	if _, err := st.GetCredential(ctx, key); err == nil {
		return nil
	} else if !errors.Is(err, gateway.ErrNotConfigured) {
		return fmt.Errorf("checking cj credential: %w", err)
	}

	cred, err := auth.Login(ctx)
	if err != nil {
		log.Warn("cj login failed, will retry on first use", "error", err)
		return nil
	}
	cred.Provider = gateway.ProviderCJ
	if err := st.PutCredential(ctx, cred); err != nil {
		return fmt.Errorf("storing cj credential: %w", err)
	}
	log.Info("cj credential acquired")
	return nil
}

// seedEbay stores the renewal seed for the client-credentials grant when no
// eBay credential exists yet; the first call mints an access token.
func seedEbay(st *store.PostgresStore, creds *ebay.ClientCredentials, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	key := gateway.Key{Provider: gateway.ProviderEbay}
	if _, err := st.GetCredential(ctx, key); err == nil {
		return nil
	} else if !errors.Is(err, gateway.ErrNotConfigured) {
		return fmt.Errorf("checking ebay credential: %w", err)
	}

	if err := st.PutCredential(ctx, creds.Seed()); err != nil {
		return fmt.Errorf("storing ebay credential seed: %w", err)
	}
	log.Info("ebay credential seeded")
	return nil
}
