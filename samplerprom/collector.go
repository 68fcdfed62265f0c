// Package samplerprom exposes adaptive sampler metrics as Prometheus
// collectors.
package samplerprom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sampler-go/sampler-go/adaptivesampler"
)

var (
	probabilityDesc = prometheus.NewDesc(
		"sampler_window_probability",
		"Gate probability of the current sampling window.",
		nil, nil)
	budgetDesc = prometheus.NewDesc(
		"sampler_window_budget",
		"Sample budget granted to the current sampling window.",
		nil, nil)
	avgSamplesDesc = prometheus.NewDesc(
		"sampler_window_samples_avg",
		"Exponentially weighted average of admitted samples per window.",
		nil, nil)
	avgCountDesc = prometheus.NewDesc(
		"sampler_window_events_avg",
		"Exponentially weighted average of observed events per window.",
		nil, nil)
	saturationDesc = prometheus.NewDesc(
		"sampler_windows_saturated_ratio",
		"Ratio of recently closed windows that exhausted their sample budget.",
		nil, nil)
	sampledDesc = prometheus.NewDesc(
		"sampler_samples_total",
		"Total number of events admitted by the sampler.",
		nil, nil)
	observedDesc = prometheus.NewDesc(
		"sampler_events_total",
		"Total number of events offered to the sampler.",
		nil, nil)
)

// NewCollector returns a prometheus.Collector reading from metrics. Values
// are gathered at scrape time; the collector holds no state of its own.
func NewCollector(metrics adaptivesampler.Metrics) prometheus.Collector {
	return &collector{metrics: metrics}
}

type collector struct {
	metrics adaptivesampler.Metrics
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- probabilityDesc
	ch <- budgetDesc
	ch <- avgSamplesDesc
	ch <- avgCountDesc
	ch <- saturationDesc
	ch <- sampledDesc
	ch <- observedDesc
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(probabilityDesc, prometheus.GaugeValue, c.metrics.Probability())
	ch <- prometheus.MustNewConstMetric(budgetDesc, prometheus.GaugeValue, c.metrics.Budget())
	ch <- prometheus.MustNewConstMetric(avgSamplesDesc, prometheus.GaugeValue, c.metrics.AverageSamples())
	ch <- prometheus.MustNewConstMetric(avgCountDesc, prometheus.GaugeValue, c.metrics.AverageCount())
	ch <- prometheus.MustNewConstMetric(saturationDesc, prometheus.GaugeValue, c.metrics.SaturationRate())
	ch <- prometheus.MustNewConstMetric(sampledDesc, prometheus.CounterValue, float64(c.metrics.SampledCount()))
	ch <- prometheus.MustNewConstMetric(observedDesc, prometheus.CounterValue, float64(c.metrics.ObservedCount()))
}
