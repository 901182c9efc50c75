package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "uploadsigner"

// Metrics holds the Prometheus collectors for the upload handler
type Metrics struct {
	signRequests  *prometheus.CounterVec
	verifications *prometheus.CounterVec
	deletes       *prometheus.CounterVec
}

// NewMetrics registers the handler collectors with registerer.
// A nil registerer uses prometheus.DefaultRegisterer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		signRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sign_requests_total",
			Help:      "Signing requests partitioned by mode, version and outcome",
		}, []string{"mode", "version", "outcome"}),

		verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "upload_verifications_total",
			Help:      "Upload success notifications partitioned by outcome",
		}, []string{"outcome"}),

		deletes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "deletes_total",
			Help:      "Delete file requests partitioned by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observeSign(mode, version, outcome string) {
	if m == nil {
		return
	}
	m.signRequests.WithLabelValues(mode, version, outcome).Inc()
}

func (m *Metrics) observeVerification(outcome string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeDelete(outcome string) {
	if m == nil {
		return
	}
	m.deletes.WithLabelValues(outcome).Inc()
}
