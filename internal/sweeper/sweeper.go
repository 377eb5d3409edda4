// Package sweeper proactively refreshes stored credentials before they
// lapse, so interactive requests rarely pay the refresh round-trip and
// short-lived refresh windows (CJ's 180 days, Etsy's 90) are not missed
// during quiet periods.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/storeflow/gateway/internal/gateway"
	"github.com/storeflow/gateway/internal/metrics"
	"github.com/storeflow/gateway/internal/notify"
)

// Sweeper walks stored credentials on a schedule and warms any whose
// access token is inside the expiry margin.
type Sweeper struct {
	cron     *cron.Cron
	store    gateway.CredentialStore
	tokens   *gateway.TokenManager
	margin   time.Duration
	log      *slog.Logger
	notifier notify.Notifier
	nowFunc  func() time.Time
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithMargin overrides the freshness margin used to pick sweep candidates.
func WithMargin(d time.Duration) Option {
	return func(s *Sweeper) {
		s.margin = d
	}
}

// WithNotifier sets a notifier that receives an alert whenever a refresh
// fails, so operators hear about a broken connection before a customer does.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Sweeper) {
		s.notifier = n
	}
}

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(f func() time.Time) Option {
	return func(s *Sweeper) {
		s.nowFunc = f
	}
}

// New creates a Sweeper that runs every interval.
func New(
	store gateway.CredentialStore,
	tokens *gateway.TokenManager,
	interval time.Duration,
	log *slog.Logger,
	opts ...Option,
) (*Sweeper, error) {
	s := &Sweeper{
		cron:    cron.New(),
		store:   store,
		tokens:  tokens,
		margin:  gateway.DefaultExpiryMargin,
		log:     log,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := s.cron.AddFunc("@every "+interval.String(), s.run); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled sweeps.
func (s *Sweeper) Start() {
	s.log.Info("credential sweeper started")
	s.cron.Start()
}

// Stop gracefully stops the sweeper, waiting for a running sweep to finish.
func (s *Sweeper) Stop() context.Context {
	s.log.Info("credential sweeper stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Sweeper) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Sweeper) run() {
	if err := s.Sweep(context.Background()); err != nil {
		s.log.Error("credential sweep failed", "error", err)
	}
}

// Sweep refreshes every stored credential that is no longer fresh but still
// holds a usable refresh token. Static bearers never qualify; credentials
// whose refresh window has closed are left for the next interactive 401 to
// surface. One failing credential does not stop the sweep.
func (s *Sweeper) Sweep(ctx context.Context) error {
	creds, err := s.store.ListCredentials(ctx)
	if err != nil {
		return err
	}

	now := s.nowFunc()
	for i := range creds {
		c := &creds[i]
		if c.Fresh(now, s.margin) || !c.RefreshUsable(now) {
			continue
		}

		// Token refreshes through the manager's single-flight path, so a
		// concurrent interactive request never doubles the refresh.
		if _, err := s.tokens.Token(ctx, c.Key()); err != nil {
			metrics.SweepRefreshesTotal.WithLabelValues(string(c.Provider), "error").Inc()
			s.log.Warn("sweep refresh failed",
				"provider", c.Provider,
				"tenant_id", c.TenantID,
				"error", err,
			)
			s.alertRefreshFailure(ctx, c, err)
			continue
		}
		metrics.SweepRefreshesTotal.WithLabelValues(string(c.Provider), "success").Inc()
		s.log.Info("sweep refreshed credential",
			"provider", c.Provider,
			"tenant_id", c.TenantID,
		)
	}

	metrics.SweepRunsTotal.Inc()
	metrics.SweepLastRunTimestamp.Set(float64(s.nowFunc().Unix()))
	return nil
}

func (s *Sweeper) alertRefreshFailure(ctx context.Context, c *gateway.Credential, refreshErr error) {
	if s.notifier == nil {
		return
	}
	alert := notify.Alert{
		Title:    "Credential refresh failed",
		Provider: string(c.Provider),
		TenantID: c.TenantID,
		Severity: notify.SeverityWarning,
		Detail:   refreshErr.Error(),
	}
	if err := s.notifier.Send(ctx, alert); err != nil {
		s.log.Warn("refresh failure alert not delivered", "error", err)
	}
}
