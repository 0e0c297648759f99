package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/djelia-org/djelia-go"
)

const outcomeOK = "ok"

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActiveStreams   prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "djelia_requests_total",
			Help: "Total number of Djelia operations by outcome",
		}, []string{"operation", "outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "djelia_request_duration_seconds",
			Help:    "Duration of Djelia operations",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
		ActiveStreams: factory.NewGauge(prometheus.GaugeOpts{
			Name: "djelia_active_streams",
			Help: "Current number of streaming transcriptions",
		}),
	}
}

// Observe records one finished operation.
func (m *Metrics) Observe(op djelia.Operation, start time.Time, err error) {
	m.Requests.WithLabelValues(string(op), Outcome(err)).Inc()
	m.RequestDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
}

// Outcome is "ok" for nil, the error kind for a *djelia.Error, and "error"
// for anything else.
func Outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	if e, ok := djelia.AsError(err); ok {
		return string(e.Kind)
	}
	return "error"
}
