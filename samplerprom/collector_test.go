package samplerprom

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type stubMetrics struct{}

func (stubMetrics) Probability() float64    { return .25 }
func (stubMetrics) Budget() float64         { return 1250 }
func (stubMetrics) AverageSamples() float64 { return 48.5 }
func (stubMetrics) AverageCount() float64   { return 1000 }
func (stubMetrics) SaturationRate() float64 { return .3 }
func (stubMetrics) SampledCount() uint64    { return 500 }
func (stubMetrics) ObservedCount() uint64   { return 10000 }

func TestCollector(t *testing.T) {
	collector := NewCollector(stubMetrics{})

	assert.Equal(t, 7, testutil.CollectAndCount(collector))

	expected := `
# HELP sampler_events_total Total number of events offered to the sampler.
# TYPE sampler_events_total counter
sampler_events_total 10000
# HELP sampler_samples_total Total number of events admitted by the sampler.
# TYPE sampler_samples_total counter
sampler_samples_total 500
# HELP sampler_window_budget Sample budget granted to the current sampling window.
# TYPE sampler_window_budget gauge
sampler_window_budget 1250
# HELP sampler_window_events_avg Exponentially weighted average of observed events per window.
# TYPE sampler_window_events_avg gauge
sampler_window_events_avg 1000
# HELP sampler_window_probability Gate probability of the current sampling window.
# TYPE sampler_window_probability gauge
sampler_window_probability 0.25
# HELP sampler_window_samples_avg Exponentially weighted average of admitted samples per window.
# TYPE sampler_window_samples_avg gauge
sampler_window_samples_avg 48.5
# HELP sampler_windows_saturated_ratio Ratio of recently closed windows that exhausted their sample budget.
# TYPE sampler_windows_saturated_ratio gauge
sampler_windows_saturated_ratio 0.3
`
	assert.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected)))
}
