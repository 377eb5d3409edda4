package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// storeflow gateway operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "storeflow-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "storeflow-alerts",
					Rules: []Rule{
						{
							Alert: "StoreflowDown",
							Expr:  `absent(up{job="storeflow-gateway"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Storeflow gateway is down",
								"description": "The storeflow-gateway job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "StoreflowReadinessDown",
							Expr:  `storeflow_readyz_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Storeflow gateway readiness check is failing",
								"description": "The readiness probe has been reporting not-ready for more than 2 minutes.",
							},
						},
						{
							Alert: "StoreflowHighErrorRate",
							Expr:  `storeflow:http_errors:rate5m / storeflow:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on the storeflow gateway",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "StoreflowProviderErrors",
							Expr:  `storeflow:provider_errors:rate5m > 0.1`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Provider API calls are failing",
								"description": "Outbound calls to {{ $labels.provider }} have been failing at more than 0.1/s for the last 5 minutes.",
							},
						},
						{
							Alert: "StoreflowRateUsageHigh",
							Expr:  `storeflow_provider_rate_usage_ratio > 0.8`,
							For:   "10m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Provider rate limit usage is above 80%",
								"description": "The {{ $labels.provider }} rate-limit headers report sustained usage above 80% of quota.",
							},
						},
						{
							Alert: "StoreflowTokenRefreshFailures",
							Expr:  `storeflow:token_refresh_failures:rate5m > 0`,
							For:   "10m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Token refreshes are failing",
								"description": "Refreshes against {{ $labels.provider }} have been failing for 10 minutes; a tenant may need to reconnect.",
							},
						},
						{
							Alert: "StoreflowSweepStale",
							Expr:  `time() - storeflow_credential_sweep_last_run_timestamp_seconds > 7200`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Credential sweep has not completed recently",
								"description": "No credential sweep has completed in over 2 hours. Tokens may lapse before interactive requests catch them.",
							},
						},
						{
							Alert: "StoreflowWebhookRejections",
							Expr:  `storeflow:webhook_rejections:rate5m > 0.1`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Webhooks are failing signature verification",
								"description": "Deliveries from {{ $labels.provider }} are being rejected; a webhook secret may have rotated.",
							},
						},
					},
				},
			},
		},
	}
}
