package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewAssetMetrics(reg)
	require.NoError(t, err)

	m.Saved()
	m.Saved()
	m.Failed("MISSING_IMAGE")
	m.RolledBack("attachment", true)
	m.RolledBack("attachment", false)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.saved))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.failed.WithLabelValues("MISSING_IMAGE")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rollbacks.WithLabelValues("attachment", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rollbacks.WithLabelValues("attachment", "error")))

	_, err = NewAssetMetrics(reg)
	assert.Error(t, err, "duplicate registration must fail")
}

func TestAssetMetrics_Nil(t *testing.T) {
	var m *AssetMetrics
	assert.NotPanics(t, func() {
		m.Saved()
		m.Failed("x")
		m.RolledBack("x", true)
	})
}
