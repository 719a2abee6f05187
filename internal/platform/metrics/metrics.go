package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ProcessesCreated prometheus.Counter
	Routings         prometheus.Counter
	Signatures       prometheus.Counter
	Verifications    *prometheus.CounterVec
	AccessDenied     *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ProcessesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tramita_processes_created_total",
			Help: "Total number of processes created",
		}),
		Routings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tramita_routings_total",
			Help: "Total number of routing actions applied to processes",
		}),
		Signatures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tramita_signatures_total",
			Help: "Total number of documents signed",
		}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tramita_verifications_total",
			Help: "Total number of integrity verifications by result",
		}, []string{"result"}),
		AccessDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tramita_access_denied_total",
			Help: "Total number of policy denials by operation",
		}, []string{"operation"}),
	}
}

// IncrementProcessesCreated increments the process creation counter by 1.
func (m *Metrics) IncrementProcessesCreated() {
	if m != nil {
		m.ProcessesCreated.Inc()
	}
}

// IncrementRoutings increments the routing counter by 1.
func (m *Metrics) IncrementRoutings() {
	if m != nil {
		m.Routings.Inc()
	}
}

// IncrementSignatures increments the signature counter by 1.
func (m *Metrics) IncrementSignatures() {
	if m != nil {
		m.Signatures.Inc()
	}
}

// ObserveVerification records one verification outcome ("valid" or "tampered").
func (m *Metrics) ObserveVerification(result string) {
	if m != nil {
		m.Verifications.WithLabelValues(result).Inc()
	}
}

// IncrementAccessDenied records one policy denial for the named operation.
func (m *Metrics) IncrementAccessDenied(operation string) {
	if m != nil {
		m.AccessDenied.WithLabelValues(operation).Inc()
	}
}
