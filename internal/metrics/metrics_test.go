package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RedirectOutcomes.WithLabelValues("resolved").Inc()
	m.ScansDropped.Inc()
	m.RateLimitDenied.WithLabelValues("redirect").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RedirectOutcomes.WithLabelValues("resolved")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RateLimitDenied.WithLabelValues("redirect")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "dynamicqr_redirect_outcomes_total")
	assert.Contains(t, names, "dynamicqr_scan_events_dropped_total")
}

func TestRegisterTrackedKeys(t *testing.T) {
	reg := prometheus.NewRegistry()
	n := 3
	RegisterTrackedKeys(reg, func() int { return n })

	count, err := testutil.GatherAndCount(reg, "dynamicqr_rate_limit_tracked_keys")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// 每次抓取时重新读取
	n = 7
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Equal(t, 7.0, gaugeValue(families, "dynamicqr_rate_limit_tracked_keys"))
}

func gaugeValue(families []*dto.MetricFamily, name string) float64 {
	for _, mf := range families {
		if mf.GetName() != name || mf.GetType() != dto.MetricType_GAUGE {
			continue
		}
		for _, m := range mf.GetMetric() {
			return m.GetGauge().GetValue()
		}
	}
	return -1
}
