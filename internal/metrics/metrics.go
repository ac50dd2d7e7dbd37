package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchesEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrimstats_matches_enqueued_total",
		Help: "Total number of matches placed on the processing queue.",
	})

	MatchesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrimstats_matches_rejected_total",
		Help: "Total number of matches rejected due to a full queue.",
	})

	MatchesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrimstats_matches_processed_total",
		Help: "Total number of matches run through the pipeline, labelled by status.",
	}, []string{"status"})

	EventsLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrimstats_events_loaded_total",
		Help: "Total number of raw records decoded from event files.",
	})

	DuplicateEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrimstats_duplicate_events_total",
		Help: "Total number of events discarded for a repeated sequence index.",
	})

	SnapshotsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrimstats_snapshots_dropped_total",
		Help: "Total number of player snapshots dropped for missing stats.",
	})

	UnresolvedRoles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrimstats_unresolved_roles_total",
		Help: "Total number of players whose role could not be resolved.",
	})

	RoleSourceFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrimstats_role_source_fetches_total",
		Help: "Role table loads, labelled by status (cache_hit, fetched, error).",
	}, []string{"status"})

	MatchProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scrimstats_match_processing_duration_ms",
		Help:    "End-to-end match processing latency in milliseconds.",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scrimstats_queue_utilization_ratio",
		Help: "Current match queue utilization (0-1).",
	})
)
