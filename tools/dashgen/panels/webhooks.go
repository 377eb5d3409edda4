package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// WebhookVerdicts returns a timeseries panel showing inbound webhooks per
// second by provider and verification verdict.
func WebhookVerdicts() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Webhook Verdicts").
		Description("Inbound webhooks per second by provider and verdict").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(rate(storeflow_webhooks_received_total{job="storeflow-gateway"}[5m])) by (provider, verdict)`,
			"{{provider}} {{verdict}}",
			"A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// WebhookRejections returns a timeseries panel isolating rejected
// deliveries. A sustained rejection rate points at a rotated secret.
func WebhookRejections() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Rejected Webhooks").
		Description("Webhooks failing signature verification per second").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`storeflow:webhook_rejections:rate5m`, "{{provider}}", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(0.01, 0.1)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}
