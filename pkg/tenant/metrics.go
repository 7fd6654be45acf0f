package tenant

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for tenant resolution.
// A nil *Metrics records nothing.
type Metrics struct {
	resolutions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	requests    *prometheus.CounterVec
}

// NewMetrics creates and registers resolution metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tenant_resolutions_total",
				Help: "Hostname resolutions by matching strategy and outcome",
			},
			[]string{"resolved_by", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tenant_resolution_duration_seconds",
				Help:    "Time spent resolving a hostname to a tenant",
				Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"outcome"},
		),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tenant_middleware_requests_total",
				Help: "Requests handled by the tenant middleware by path taken and HTTP status",
			},
			[]string{"path", "status"},
		),
	}
}

func resolutionOutcome(err error) string {
	switch {
	case err == nil:
		return "resolved"
	case errors.Is(err, ErrReservedHost):
		return "reserved"
	case errors.Is(err, ErrTenantNotFound):
		return "not_found"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	default:
		return "error"
	}
}

func (m *Metrics) observeResolution(res *Resolution, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := resolutionOutcome(err)
	by := "none"
	if res != nil {
		by = string(res.ResolvedBy)
	}
	m.resolutions.WithLabelValues(by, outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) observeRequest(path string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}
