package metrics

import "github.com/prometheus/client_golang/prometheus"

type windowCollector struct {
	source WindowSource
	events *prometheus.Desc
}

func newWindowCollector(source WindowSource) *windowCollector {
	return &windowCollector{
		source: source,
		events: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "monitor", "window_events"),
			"Events currently inside the anomaly detection window.",
			[]string{"metric"}, nil,
		),
	}
}

func (c *windowCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.events
}

func (c *windowCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.source.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.events, prometheus.GaugeValue, float64(snap.Errors), "errors")
	ch <- prometheus.MustNewConstMetric(c.events, prometheus.GaugeValue, float64(snap.FailedAuths), "failed_auth")
	ch <- prometheus.MustNewConstMetric(c.events, prometheus.GaugeValue, float64(snap.SlowRequests), "slow")
}
