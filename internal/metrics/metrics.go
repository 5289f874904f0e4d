// Package metrics exposes prometheus collectors for HTTP traffic and invoice issuance.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "facturacion"

// Metrics owns its registry so several instances (one per test) can coexist.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	InvoicesIssued    prometheus.Counter
	IssuanceFailures  *prometheus.CounterVec
	IssuanceDuration  prometheus.Histogram
	InvoicesPaid      prometheus.Counter
	InvoicesDeleted   prometheus.Counter
	StockUnitsRemoved prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		InvoicesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_issued_total",
			Help:      "Invoices committed.",
		}),
		IssuanceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_issuance_failures_total",
			Help:      "Rejected or rolled back issuances by error code.",
		}, []string{"code"}),
		IssuanceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invoice_issuance_duration_seconds",
			Help:      "Time spent issuing an invoice, validation included.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		InvoicesPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_paid_total",
			Help:      "Invoices moved to paid.",
		}),
		InvoicesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_deleted_total",
			Help:      "Invoices deleted.",
		}),
		StockUnitsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_units_removed_total",
			Help:      "Units taken from stock by issued invoices.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
		m.InvoicesIssued, m.IssuanceFailures, m.IssuanceDuration,
		m.InvoicesPaid, m.InvoicesDeleted, m.StockUnitsRemoved,
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveIssued(d time.Duration, units int) {
	if m == nil {
		return
	}
	m.InvoicesIssued.Inc()
	m.StockUnitsRemoved.Add(float64(units))
	m.IssuanceDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveIssueFailure(code string, d time.Duration) {
	if m == nil {
		return
	}
	m.IssuanceFailures.WithLabelValues(code).Inc()
	m.IssuanceDuration.Observe(d.Seconds())
}

func (m *Metrics) ObservePaid() {
	if m != nil {
		m.InvoicesPaid.Inc()
	}
}

func (m *Metrics) ObserveDeleted() {
	if m != nil {
		m.InvoicesDeleted.Inc()
	}
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
