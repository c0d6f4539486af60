// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, name string) *dto.MetricFamily {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestNoopByDefault(t *testing.T) {
	assert.Nil(t, HTTPHandler())
	// meters from the no-op factory must be safe to use
	Counter("noop_counter").Add(1)
	GaugeVec("noop_gauge", []string{"a"}).SetWithLabel(1, map[string]string{"a": "b"})
}

func TestPrometheusMeters(t *testing.T) {
	InitializePrometheusMetrics()
	require.NotNil(t, HTTPHandler())

	counter := LazyLoadCounter("test_count")
	counter().Add(1)
	counter().Add(2)

	family := gather(t, "lockstake_test_count")
	require.NotNil(t, family)
	assert.Equal(t, float64(3), family.GetMetric()[0].GetCounter().GetValue())

	counterVec := LazyLoadCounterVec("test_count_vec", []string{"op"})
	counterVec().AddWithLabel(5, map[string]string{"op": "stake"})

	family = gather(t, "lockstake_test_count_vec")
	require.NotNil(t, family)
	m := family.GetMetric()[0]
	assert.Equal(t, "op", m.GetLabel()[0].GetName())
	assert.Equal(t, float64(5), m.GetCounter().GetValue())

	gauge := LazyLoadGauge("test_gauge")
	gauge().Set(42)
	gauge().Add(-2)

	family = gather(t, "lockstake_test_gauge")
	require.NotNil(t, family)
	assert.Equal(t, float64(40), family.GetMetric()[0].GetGauge().GetValue())

	histogram := LazyLoadHistogram("test_hist", BucketHTTPReqs)
	histogram().Observe(100)

	family = gather(t, "lockstake_test_hist")
	require.NotNil(t, family)
	assert.Equal(t, uint64(1), family.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestGetOrCreateReturnsSameMeter(t *testing.T) {
	InitializePrometheusMetrics()
	a := Counter("test_same_meter")
	b := Counter("test_same_meter")
	assert.Same(t, a, b)
}
