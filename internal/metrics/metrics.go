package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ApplicationsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bnpl_applications_scored_total",
			Help: "Total number of applications scored, by risk tier and decision",
		},
		[]string{"risk_tier", "decision"},
	)

	ProductsRecommended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bnpl_products_recommended_total",
			Help: "Total number of primary product recommendations issued",
		},
		[]string{"product"},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bnpl_pipeline_duration_seconds",
			Help:    "Duration of the full score/match/terms pipeline",
			Buckets: prometheus.DefBuckets,
		},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bnpl_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bnpl_webhook_deliveries_total",
			Help: "Total number of webhook delivery attempts, by outcome",
		},
		[]string{"outcome"},
	)
)
