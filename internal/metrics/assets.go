// Package metrics holds the Prometheus collectors for asset ingestion.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssetMetrics counts ingestion outcomes. A nil *AssetMetrics records nothing.
type AssetMetrics struct {
	saved     prometheus.Counter
	failed    *prometheus.CounterVec
	rollbacks *prometheus.CounterVec
}

// NewAssetMetrics registers the collectors on reg.
func NewAssetMetrics(reg prometheus.Registerer) (*AssetMetrics, error) {
	m := &AssetMetrics{
		saved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assets_saved_total",
			Help: "Total number of assets saved with their image.",
		}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asset_save_failures_total",
			Help: "Total number of rejected or failed asset saves by error kind.",
		}, []string{"kind"}),
		rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asset_rollbacks_total",
			Help: "Total number of compensating deletes by stage and outcome.",
		}, []string{"stage", "outcome"}),
	}
	for _, c := range []prometheus.Collector{m.saved, m.failed, m.rollbacks} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *AssetMetrics) Saved() {
	if m == nil {
		return
	}
	m.saved.Inc()
}

func (m *AssetMetrics) Failed(kind string) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(kind).Inc()
}

// RolledBack records a compensating delete. ok is false when the delete itself failed.
func (m *AssetMetrics) RolledBack(stage string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.rollbacks.WithLabelValues(stage, outcome).Inc()
}
