// Package metrics exposes licensing counters and the anomaly windows in the
// Prometheus text format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aussiebroadwan/daftar/internal/licensing/monitor"
)

const namespace = "licensing"

// WindowSource reports the current anomaly window counts.
type WindowSource interface {
	Snapshot() monitor.Snapshot
}

type Manager struct {
	registry *prometheus.Registry

	operations    *prometheus.CounterVec
	notifications *prometheus.CounterVec
	suppressed    *prometheus.CounterVec
}

// NewManager builds a private registry with the Go and process collectors,
// the licensing counters and, when windows is non-nil, the window gauges.
func NewManager(windows WindowSource) *Manager {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Manager{
		registry: registry,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "License operations by operation and result code.",
		}, []string{"operation", "result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries by channel and result.",
		}, []string{"channel", "result"}),
		suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_suppressed_total",
			Help:      "Alerts held back by the dedup cooldown.",
		}, []string{"event"}),
	}
	registry.MustRegister(m.operations, m.notifications, m.suppressed)

	if windows != nil {
		registry.MustRegister(newWindowCollector(windows))
	}
	return m
}

func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// ObserveOperation counts one license operation. result is "ok" or an error
// code such as DEVICE_MISMATCH.
func (m *Manager) ObserveOperation(operation, result string) {
	m.operations.WithLabelValues(operation, result).Inc()
}

// ObserveNotification counts one final delivery outcome.
func (m *Manager) ObserveNotification(channel, result string) {
	m.notifications.WithLabelValues(channel, result).Inc()
}

func (m *Manager) AlertSuppressed(event string) {
	m.suppressed.WithLabelValues(event).Inc()
}

func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
