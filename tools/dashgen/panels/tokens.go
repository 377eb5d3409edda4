package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// RefreshOutcomes returns a timeseries panel showing token refresh attempts
// per second by provider and outcome.
func RefreshOutcomes() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Token Refreshes").
		Description("Token refresh attempts per second by provider and outcome").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(rate(storeflow_token_refreshes_total{job="storeflow-gateway"}[5m])) by (provider, outcome)`,
			"{{provider}} {{outcome}}",
			"A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// RefreshFailures returns a timeseries panel isolating failed refreshes,
// which usually mean a tenant needs to reconnect.
func RefreshFailures() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Refresh Failures").
		Description("Failed token refreshes per second by provider").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`storeflow:token_refresh_failures:rate5m`, "{{provider}}", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(0.01, 0.1)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// SweepRefreshes returns a stat panel showing credentials the sweep warmed
// or failed over the last 24 hours.
func SweepRefreshes() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Sweep Refreshes (24h)").
		Description("Credentials warmed and failed by the sweep in the last 24 hours").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(increase(storeflow_credential_sweep_refreshes_total{job="storeflow-gateway",outcome="success"}[24h]))`,
			"warmed", "A",
		)).
		WithTarget(PromQuery(
			`sum(increase(storeflow_credential_sweep_refreshes_total{job="storeflow-gateway",outcome="error"}[24h]))`,
			"failed", "B",
		)).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		GraphMode(common.BigValueGraphModeArea)
}
