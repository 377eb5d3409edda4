// Package metrics defines Prometheus metrics for the storeflow gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storeflow"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "Whether the last liveness probe succeeded (1) or failed (0).",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "Whether the last readiness probe succeeded (1) or failed (0).",
	})
)

// Provider gateway metrics.
var (
	ProviderCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_calls_total",
		Help:      "Total outbound provider API calls by provider and outcome.",
	}, []string{"provider", "outcome"})

	ProviderCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_call_duration_seconds",
		Help:      "Duration of outbound provider API calls, including pacing and retries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})

	ProviderRetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_retries_total",
		Help:      "Total provider call retries by provider and cause (rate_limit, network, auth).",
	}, []string{"provider", "cause"})

	ProviderRateUsage = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "provider_rate_usage_ratio",
		Help:      "Most recent used/max ratio reported by the provider's rate-limit header.",
	}, []string{"provider"})
)

// Token lifecycle metrics.
var (
	TokenRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total token refresh attempts by provider and outcome (success, error, rejected, expired).",
	}, []string{"provider", "outcome"})

	CodeExchangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "code_exchanges_total",
		Help:      "Total authorization-code exchanges by provider and outcome.",
	}, []string{"provider", "outcome"})
)

// Webhook metrics.
var (
	WebhooksReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhooks_received_total",
		Help:      "Total inbound webhooks by provider and verdict (verified, rejected, unverified).",
	}, []string{"provider", "verdict"})
)

// Credential sweep metrics.
var (
	SweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_sweep_runs_total",
		Help:      "Total proactive credential sweep runs.",
	})

	SweepRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_sweep_refreshes_total",
		Help:      "Credentials the sweep tried to warm, by provider and outcome.",
	}, []string{"provider", "outcome"})

	SweepLastRunTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "credential_sweep_last_run_timestamp_seconds",
		Help:      "Unix time of the last completed credential sweep.",
	})
)
