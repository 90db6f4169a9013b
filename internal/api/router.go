package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"agriflow/bnpl-api/internal/metrics"
)

// NewRouter creates and returns a configured Chi router.
func NewRouter(h *Handler, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	// ── Health check ──────────────────────────────────────────────────────────
	started := time.Now()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status, dbStatus := "ok", "ok"
		if _, err := h.decisions.Count(); err != nil {
			status, dbStatus = "degraded", "unavailable"
		}
		ok(w, map[string]any{
			"status":         status,
			"service":        "agriflow-bnpl-api",
			"version":        "1.0.0",
			"uptime_seconds": int64(time.Since(started).Seconds()),
			"checks":         map[string]string{"database": dbStatus},
		})
	})

	// ── Observability ─────────────────────────────────────────────────────────
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/dashboard", h.Dashboard)

	// ── API v1 ────────────────────────────────────────────────────────────────
	r.Route("/api/v1", func(r chi.Router) {

		// Scoring pipeline
		r.Post("/score", h.ScoreApplication)
		r.Post("/recommendations", h.RecommendProducts)
		r.Post("/batch", h.ScoreBatch)

		// Audit trail
		r.Route("/decisions", func(r chi.Router) {
			r.Get("/", h.ListDecisions)
			r.Get("/{id}", h.GetDecision)
		})

		// Reporting
		r.Get("/reports/portfolio", h.GetPortfolioReport)
		r.Get("/export/decisions.csv", h.ExportDecisionsCSV)

		// Product catalog
		r.Get("/products", h.ListProducts)

		// Webhook registration
		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/", h.RegisterWebhook)
			r.Delete("/{id}", h.DeleteWebhook)
		})
	})

	return r
}

// requestLogger is a minimal structured-logging middleware.
// It replaces chi's default Logger to emit zap records.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			metrics.HTTPInFlight.Inc()
			next.ServeHTTP(ww, r)
			metrics.HTTPInFlight.Dec()

			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
