// Package metrics exposes Prometheus counters for daemon calls. Observability
// only; nothing here influences whether or how a call is made.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the installd call counters.
type Metrics struct {
	Calls  *prometheus.CounterVec
	Errors *prometheus.CounterVec
}

// New creates a metrics collector registered with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "installd_calls_total",
				Help: "Total number of calls forwarded to installd",
			},
			[]string{"op", "outcome"},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "installd_call_errors_total",
				Help: "Installd call failures by error kind",
			},
			[]string{"op", "kind"},
		),
	}
}

var (
	defaultOnce sync.Once
	defaultM    *Metrics
)

// Default returns the collector registered with the default Prometheus
// registry, creating it on first use.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultM = New(prometheus.DefaultRegisterer)
	})
	return defaultM
}

// RecordSuccess counts one successful call of op.
func (m *Metrics) RecordSuccess(op string) {
	m.Calls.WithLabelValues(op, "ok").Inc()
}

// RecordError counts one failed call of op with the given error kind.
func (m *Metrics) RecordError(op, kind string) {
	m.Calls.WithLabelValues(op, "error").Inc()
	m.Errors.WithLabelValues(op, kind).Inc()
}
