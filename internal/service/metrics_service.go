package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus collectors exposed on /metrics.
type MetricsService struct {
	registry            *prometheus.Registry
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	unreadNotifications prometheus.Gauge
	exportJobsTotal     *prometheus.CounterVec
}

// NewMetricsService builds a registry with process/Go collectors and the
// application metrics.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &MetricsService{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests processed, by method, path and status.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distribution.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		unreadNotifications: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notifications_unread_total",
			Help: "Unread notifications across all users.",
		}),
		exportJobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "export_jobs_total",
			Help: "Async export jobs by terminal status.",
		}, []string{"status"}),
	}

	registry.MustRegister(s.requestsTotal, s.requestDuration, s.unreadNotifications, s.exportJobsTotal)
	return s
}

// Handler serves the registry over HTTP.
func (s *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records a finished HTTP request.
func (s *MetricsService) ObserveRequest(method, path, status string, seconds float64) {
	s.requestsTotal.WithLabelValues(method, path, status).Inc()
	s.requestDuration.WithLabelValues(method, path).Observe(seconds)
}

// SetUnreadNotifications updates the unread notifications gauge.
func (s *MetricsService) SetUnreadNotifications(count int) {
	s.unreadNotifications.Set(float64(count))
}

// CountExportJob records a finished or failed export job.
func (s *MetricsService) CountExportJob(status string) {
	s.exportJobsTotal.WithLabelValues(status).Inc()
}
