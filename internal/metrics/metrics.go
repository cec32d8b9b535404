// Package metrics holds the Prometheus collectors shared by the control
// server, the extraction pipeline and the workflow watcher.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Workflow status values exported by the status gauge.
var workflowStatuses = []string{"queued", "in_progress", "completed", "unknown"}

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	launches       *prometheus.CounterVec
	extractFiles   *prometheus.CounterVec
	extractRecords prometheus.Counter
	workflowStatus *prometheus.GaugeVec
}

type Config struct {
	ServiceName string
}

func New(registerer prometheus.Registerer, cfg Config) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "zwrot"
	}
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "zwrot_http_requests_total",
				Help:        "Control server requests by route and status code.",
				ConstLabels: constLabels,
			},
			[]string{"route", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "zwrot_http_request_duration_seconds",
				Help:        "Control server request latency.",
				Buckets:     []float64{0.005, 0.05, 0.25, 1, 5, 15, 60},
				ConstLabels: constLabels,
			},
			[]string{"route"},
		),
		launches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "zwrot_fill_launches_total",
				Help:        "Form-filling launches by result.",
				ConstLabels: constLabels,
			},
			[]string{"result"}, // started | already_running | error
		),
		extractFiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "zwrot_extract_files_total",
				Help:        "Invoice PDFs processed by outcome.",
				ConstLabels: constLabels,
			},
			[]string{"outcome"},
		),
		extractRecords: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "zwrot_extract_records_total",
				Help:        "Invoice records extracted.",
				ConstLabels: constLabels,
			},
		),
		workflowStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "zwrot_workflow_last_run_status",
				Help:        "1 for the status of the last refresh workflow run, 0 otherwise.",
				ConstLabels: constLabels,
			},
			[]string{"status"},
		),
	}

	registerer.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.launches,
		m.extractFiles,
		m.extractRecords,
		m.workflowStatus,
	)
	return m
}

func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) Launch(result string) {
	if m == nil {
		return
	}
	m.launches.WithLabelValues(result).Inc()
}

func (m *Metrics) ExtractFile(outcome string) {
	if m == nil {
		return
	}
	m.extractFiles.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ExtractRecords(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.extractRecords.Add(float64(n))
}

// WorkflowStatus sets the gauge for status to 1 and every other known status to 0.
func (m *Metrics) WorkflowStatus(status string) {
	if m == nil {
		return
	}
	known := false
	for _, s := range workflowStatuses {
		v := 0.0
		if s == status {
			v = 1
			known = true
		}
		m.workflowStatus.WithLabelValues(s).Set(v)
	}
	if !known {
		m.workflowStatus.WithLabelValues("unknown").Set(1)
	}
}
