package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campaign_events_ingested_total",
		Help: "Campaign events accepted by the ingestion API, labelled by outcome (inserted, duplicate).",
	}, []string{"outcome"})

	ComputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campaign_compute_duration_ms",
		Help:    "Latency of analytics computations in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"computation"})

	EventsScanned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "campaign_events_scanned",
		Help:    "Number of events loaded per analytics request.",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	})

	KPICache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campaign_kpi_cache_total",
		Help: "KPI cache lookups, labelled by result (hit, miss, error).",
	}, []string{"result"})

	BriefsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campaign_briefs_rendered_total",
		Help: "Executive briefs rendered, labelled by delivered format.",
	}, []string{"format"})

	BriefFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campaign_brief_pdf_fallbacks_total",
		Help: "PDF brief requests served as Markdown because the PDF renderer failed or was disabled.",
	})
)
