// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/storeflow/gateway/tools/dashgen/panels"
)

// BuildOverview constructs the Storeflow Gateway Overview dashboard with
// all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Storeflow Gateway Overview").
		Uid("storeflow-overview").
		Tags([]string{"storeflow", "gateway"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.SweepAgeStat()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: Providers.
	b.WithRow(dashboard.NewRowBuilder("Providers").
		WithPanel(panels.ProviderCallRate()).
		WithPanel(panels.ProviderLatency()).
		WithPanel(panels.RetryRate()).
		WithPanel(panels.RateUsage()))

	// Row 4: Tokens.
	b.WithRow(dashboard.NewRowBuilder("Tokens").
		WithPanel(panels.RefreshOutcomes()).
		WithPanel(panels.RefreshFailures()).
		WithPanel(panels.SweepRefreshes()))

	// Row 5: Webhooks.
	b.WithRow(dashboard.NewRowBuilder("Webhooks").
		WithPanel(panels.WebhookVerdicts()).
		WithPanel(panels.WebhookRejections()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
