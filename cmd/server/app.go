package main

import (
	"net/http"
	"time"

	"github.com/diewo77/facturacion/httpx"
	"github.com/diewo77/facturacion/internal/handlers"
	"github.com/diewo77/facturacion/internal/logger"
	"github.com/diewo77/facturacion/internal/metrics"
	"github.com/diewo77/facturacion/internal/services"
	"github.com/diewo77/facturacion/internal/store"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	store   store.Store
	metrics *metrics.Metrics
}

// NewApp wires the services over st and registers every route.
func NewApp(st store.Store, m *metrics.Metrics) *App {
	app := &App{
		mux:     http.NewServeMux(),
		store:   st,
		metrics: m,
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := withRequestID(withRecover(a.withObservability(a.mux)))
	handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	catalog := services.NewCatalogService(a.store)
	reports := services.NewReportService(a.store)
	invoices := services.NewInvoiceService(a.store, a.metrics)

	// Ops
	a.mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.Handle("GET /metrics", a.metrics.Handler())

	// Clients
	ch := handlers.NewClientHandler(catalog)
	a.mux.HandleFunc("GET /clients", ch.List)
	a.mux.HandleFunc("POST /clients", ch.Create)
	a.mux.HandleFunc("GET /clients/{id}", ch.View)
	a.mux.HandleFunc("PUT /clients/{id}", ch.Update)
	a.mux.HandleFunc("DELETE /clients/{id}", ch.Delete)

	// Products
	ph := handlers.NewProductHandler(catalog, reports)
	a.mux.HandleFunc("GET /products", ph.List)
	a.mux.HandleFunc("POST /products", ph.Create)
	a.mux.HandleFunc("GET /products/low-stock", ph.LowStock)
	a.mux.HandleFunc("GET /products/{id}", ph.View)
	a.mux.HandleFunc("PUT /products/{id}", ph.Update)
	a.mux.HandleFunc("DELETE /products/{id}", ph.Delete)

	// Invoices
	ih := handlers.NewInvoiceHandler(invoices)
	a.mux.HandleFunc("GET /invoices", ih.List)
	a.mux.HandleFunc("POST /invoices", ih.Create)
	a.mux.HandleFunc("GET /invoices/next-number", ih.NextNumber)
	a.mux.HandleFunc("GET /invoices/{id}", ih.View)
	a.mux.HandleFunc("PUT /invoices/{id}", ih.Update)
	a.mux.HandleFunc("PUT /invoices/{id}/pay", ih.Pay)
	a.mux.HandleFunc("DELETE /invoices/{id}", ih.Delete)

	// Reports
	rh := handlers.NewReportHandler(reports)
	a.mux.HandleFunc("GET /dashboard/stats", rh.Dashboard)
	a.mux.HandleFunc("GET /reports/sales-by-month", rh.SalesByMonth)
	a.mux.HandleFunc("GET /reports/top-clients", rh.TopClients)
}

// healthz pings the database.
func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Ping(r.Context()); err != nil {
		logger.Warn(r.Context(), "health check failed", "error", err)
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// withRequestID reuses the caller's X-Request-ID or generates one, and stores it for the logger.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(r.Context(), "panic in handler", "panic", rec, "path", r.URL.Path)
				httpx.JSON(w, http.StatusInternalServerError, httpx.ErrorResponse{
					Error: "internal error", Code: "INTERNAL", Retryable: true,
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withObservability logs every request and records it under its route pattern.
func (a *App) withObservability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		a.metrics.ObserveRequest(r.Method, route, rec.status, elapsed)
		logger.Info(r.Context(), "http request",
			"method", r.Method, "path", r.URL.Path, "route", route,
			"status", rec.status, "duration_ms", elapsed.Milliseconds())
	})
}
