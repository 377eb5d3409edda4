package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// ProviderCallRate returns a timeseries panel showing outbound provider API
// calls per second, by provider.
func ProviderCallRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Provider Call Rate").
		Description("Outbound provider API calls per second").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`storeflow:provider_calls:rate5m`, "{{provider}}", "A")).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// ProviderLatency returns a timeseries panel showing the p95 provider call
// duration, by provider. Durations include pacing waits and retries.
func ProviderLatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Provider Latency p95").
		Description("p95 provider call duration including pacing and retries").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(storeflow_provider_call_duration_seconds_bucket{job="storeflow-gateway"}[5m])) by (le, provider))`,
			"{{provider}}",
			"A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// RetryRate returns a timeseries panel showing provider call retries per
// second, broken down by cause.
func RetryRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Retry Rate").
		Description("Provider call retries per second by cause (rate_limit, network, auth)").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(rate(storeflow_provider_retries_total{job="storeflow-gateway"}[5m])) by (provider, cause)`,
			"{{provider}} {{cause}}",
			"A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// RateUsage returns a timeseries panel showing each provider's reported
// rate-limit consumption as a percentage.
func RateUsage() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Rate Limit Usage %").
		Description("Used/max ratio from provider rate-limit headers").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`storeflow_provider_rate_usage_ratio{job="storeflow-gateway"} * 100`,
			"{{provider}}",
			"A",
		)).
		Unit("percent").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(70, 90)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}
