package sweeper_test

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeflow/gateway/internal/gateway"
	"github.com/storeflow/gateway/internal/notify"
	"github.com/storeflow/gateway/internal/sweeper"
)

// recordingNotifier captures alerts for assertions.
type recordingNotifier struct {
	alerts []notify.Alert
}

func (r *recordingNotifier) Send(_ context.Context, alert notify.Alert) error {
	r.alerts = append(r.alerts, alert)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// countingRefresher counts refreshes and hands back a fresh credential.
type countingRefresher struct {
	calls atomic.Int32
	err   error
	now   time.Time
}

func (r *countingRefresher) Refresh(_ context.Context, cred *gateway.Credential) (*gateway.Credential, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	next := *cred
	next.AccessToken = "rotated"
	next.ExpiresAt = r.now.Add(time.Hour)
	return &next, nil
}

func newSweeper(t *testing.T, st gateway.CredentialStore, tm *gateway.TokenManager, now time.Time) *sweeper.Sweeper {
	t.Helper()
	s, err := sweeper.New(st, tm, time.Hour, discardLogger(),
		sweeper.WithNowFunc(func() time.Time { return now }),
	)
	require.NoError(t, err)
	return s
}

func TestSweep_RefreshesLapsingCredential(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := gateway.NewMemoryCredentialStore()
	ctx := context.Background()

	// Expires inside the five-minute margin.
	require.NoError(t, st.PutCredential(ctx, &gateway.Credential{
		Provider:     gateway.ProviderEtsy,
		TenantID:     "acme",
		Kind:         gateway.KindOAuthPKCE,
		AccessToken:  "stale",
		RefreshToken: "refresh",
		ExpiresAt:    now.Add(2 * time.Minute),
	}))

	ref := &countingRefresher{now: now}
	tm := gateway.NewTokenManager(st, discardLogger(),
		gateway.WithTokenNowFunc(func() time.Time { return now }))
	tm.RegisterRefresher(gateway.ProviderEtsy, ref)

	s := newSweeper(t, st, tm, now)
	require.NoError(t, s.Sweep(ctx))

	assert.Equal(t, int32(1), ref.calls.Load())

	cred, err := st.GetCredential(ctx, gateway.Key{Provider: gateway.ProviderEtsy, TenantID: "acme"})
	require.NoError(t, err)
	assert.Equal(t, "rotated", cred.AccessToken)
}

func TestSweep_SkipsFreshCredential(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := gateway.NewMemoryCredentialStore()
	ctx := context.Background()

	require.NoError(t, st.PutCredential(ctx, &gateway.Credential{
		Provider:     gateway.ProviderEtsy,
		TenantID:     "acme",
		Kind:         gateway.KindOAuthPKCE,
		AccessToken:  "fine",
		RefreshToken: "refresh",
		ExpiresAt:    now.Add(time.Hour),
	}))

	ref := &countingRefresher{now: now}
	tm := gateway.NewTokenManager(st, discardLogger(),
		gateway.WithTokenNowFunc(func() time.Time { return now }))
	tm.RegisterRefresher(gateway.ProviderEtsy, ref)

	s := newSweeper(t, st, tm, now)
	require.NoError(t, s.Sweep(ctx))

	assert.Zero(t, ref.calls.Load())
}

func TestSweep_SkipsStaticBearer(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := gateway.NewMemoryCredentialStore()
	ctx := context.Background()

	// Static bearers have no expiry and no refresh token.
	require.NoError(t, st.PutCredential(ctx, &gateway.Credential{
		Provider:    gateway.ProviderShopify,
		TenantID:    "acme",
		Kind:        gateway.KindStaticBearer,
		AccessToken: "shpat_token",
	}))

	ref := &countingRefresher{now: now}
	tm := gateway.NewTokenManager(st, discardLogger(),
		gateway.WithTokenNowFunc(func() time.Time { return now }))
	tm.RegisterRefresher(gateway.ProviderShopify, ref)

	s := newSweeper(t, st, tm, now)
	require.NoError(t, s.Sweep(ctx))

	assert.Zero(t, ref.calls.Load())
}

func TestSweep_SkipsClosedRefreshWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := gateway.NewMemoryCredentialStore()
	ctx := context.Background()

	require.NoError(t, st.PutCredential(ctx, &gateway.Credential{
		Provider:         gateway.ProviderCJ,
		Kind:             gateway.KindOAuthRefresh,
		AccessToken:      "stale",
		RefreshToken:     "expired-refresh",
		ExpiresAt:        now.Add(-time.Hour),
		RefreshExpiresAt: now.Add(-time.Minute),
	}))

	ref := &countingRefresher{now: now}
	tm := gateway.NewTokenManager(st, discardLogger(),
		gateway.WithTokenNowFunc(func() time.Time { return now }))
	tm.RegisterRefresher(gateway.ProviderCJ, ref)

	s := newSweeper(t, st, tm, now)
	require.NoError(t, s.Sweep(ctx))

	assert.Zero(t, ref.calls.Load())
}

func TestSweep_OneFailureDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := gateway.NewMemoryCredentialStore()
	ctx := context.Background()

	require.NoError(t, st.PutCredential(ctx, &gateway.Credential{
		Provider:     gateway.ProviderEtsy,
		TenantID:     "acme",
		Kind:         gateway.KindOAuthPKCE,
		AccessToken:  "stale",
		RefreshToken: "refresh",
		ExpiresAt:    now.Add(-time.Minute),
	}))
	require.NoError(t, st.PutCredential(ctx, &gateway.Credential{
		Provider:         gateway.ProviderCJ,
		Kind:             gateway.KindOAuthRefresh,
		AccessToken:      "stale",
		RefreshToken:     "refresh",
		ExpiresAt:        now.Add(-time.Minute),
		RefreshExpiresAt: now.Add(24 * time.Hour),
	}))

	failing := &countingRefresher{now: now, err: gateway.ErrAuthTransient}
	working := &countingRefresher{now: now}
	tm := gateway.NewTokenManager(st, discardLogger(),
		gateway.WithTokenNowFunc(func() time.Time { return now }))
	tm.RegisterRefresher(gateway.ProviderEtsy, failing)
	tm.RegisterRefresher(gateway.ProviderCJ, working)

	s := newSweeper(t, st, tm, now)
	require.NoError(t, s.Sweep(ctx))

	assert.Equal(t, int32(1), failing.calls.Load())
	assert.Equal(t, int32(1), working.calls.Load())
}

func TestSweep_NotifiesOnRefreshFailure(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := gateway.NewMemoryCredentialStore()
	ctx := context.Background()

	require.NoError(t, st.PutCredential(ctx, &gateway.Credential{
		Provider:     gateway.ProviderEtsy,
		TenantID:     "acme",
		Kind:         gateway.KindOAuthPKCE,
		AccessToken:  "stale",
		RefreshToken: "refresh",
		ExpiresAt:    now.Add(-time.Minute),
	}))

	failing := &countingRefresher{now: now, err: gateway.ErrAuthExpired}
	tm := gateway.NewTokenManager(st, discardLogger(),
		gateway.WithTokenNowFunc(func() time.Time { return now }))
	tm.RegisterRefresher(gateway.ProviderEtsy, failing)

	sink := &recordingNotifier{}
	s, err := sweeper.New(st, tm, time.Hour, discardLogger(),
		sweeper.WithNowFunc(func() time.Time { return now }),
		sweeper.WithNotifier(sink),
	)
	require.NoError(t, err)
	require.NoError(t, s.Sweep(ctx))

	require.Len(t, sink.alerts, 1)
	assert.Equal(t, "etsy", sink.alerts[0].Provider)
	assert.Equal(t, "acme", sink.alerts[0].TenantID)
	assert.Equal(t, notify.SeverityWarning, sink.alerts[0].Severity)
}

func TestNew_RegistersCronEntry(t *testing.T) {
	t.Parallel()

	st := gateway.NewMemoryCredentialStore()
	tm := gateway.NewTokenManager(st, discardLogger())

	s, err := sweeper.New(st, tm, time.Hour, discardLogger())
	require.NoError(t, err)
	assert.Len(t, s.Entries(), 1)
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	st := gateway.NewMemoryCredentialStore()
	tm := gateway.NewTokenManager(st, discardLogger())

	s, err := sweeper.New(st, tm, time.Hour, discardLogger())
	require.NoError(t, err)

	s.Start()
	ctx := s.Stop()
	<-ctx.Done()
}
