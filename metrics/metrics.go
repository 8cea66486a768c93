// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "diaristas", Name: "http_requests_total", Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "diaristas", Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	SchedulerRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "diaristas", Name: "scheduler_runs_total", Help: "Payment scheduler runs",
	})
	SchedulerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "diaristas", Name: "scheduler_errors_total", Help: "Payment scheduler per-worker failures",
	})
	PaymentsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "diaristas", Name: "payments_created_total", Help: "Monthly payment rows created",
	})
	ReportsRendered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "diaristas", Name: "reports_rendered_total", Help: "Reports rendered by format",
	}, []string{"format"})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "diaristas", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, SchedulerRuns, SchedulerErrors,
		PaymentsCreated, ReportsRendered, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

// ObserveRequest records one served request. route is the chi route pattern.
func ObserveRequest(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
