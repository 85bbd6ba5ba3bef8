package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "app_cadastro_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// ActiveConnections tracks active connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_cadastro_active_connections",
			Help: "Number of active connections",
		},
	)

	// BackendRequests counts calls to the backend REST API
	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_cadastro_backend_requests_total",
			Help: "Number of requests sent to the backend API",
		},
		[]string{"operation", "status"},
	)

	// BackendDuration tracks backend call latency
	BackendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "app_cadastro_backend_request_duration_seconds",
			Help: "Duration of backend API calls in seconds",
		},
		[]string{"operation"},
	)

	// CEPLookups counts postal code lookups by outcome
	CEPLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_cadastro_cep_lookups_total",
			Help: "Number of postal code lookups by outcome",
		},
		[]string{"outcome"},
	)

	// PageSessions tracks open page sessions
	PageSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_cadastro_page_sessions",
			Help: "Number of open page sessions",
		},
	)
)
