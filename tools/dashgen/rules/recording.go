package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "storeflow-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "storeflow-recording",
					Rules: []Rule{
						{
							Record: "storeflow:http_requests:rate5m",
							Expr:   `sum(rate(storeflow_http_requests_total[5m]))`,
						},
						{
							Record: "storeflow:http_errors:rate5m",
							Expr:   `sum(rate(storeflow_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "storeflow:provider_calls:rate5m",
							Expr:   `sum(rate(storeflow_provider_calls_total[5m])) by (provider)`,
						},
						{
							Record: "storeflow:provider_errors:rate5m",
							Expr:   `sum(rate(storeflow_provider_calls_total{outcome!="success"}[5m])) by (provider)`,
						},
						{
							Record: "storeflow:token_refresh_failures:rate5m",
							Expr:   `sum(rate(storeflow_token_refreshes_total{outcome!="success"}[5m])) by (provider)`,
						},
						{
							Record: "storeflow:webhook_rejections:rate5m",
							Expr:   `sum(rate(storeflow_webhooks_received_total{verdict="rejected"}[5m])) by (provider)`,
						},
					},
				},
			},
		},
	}
}
