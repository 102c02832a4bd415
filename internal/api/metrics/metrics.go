// Package metrics defines and registers all custom Prometheus metrics for the
// cheats API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry through
// promauto when the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cheats"

// ── Like metrics ──────────────────────────────────────────────────────────────

// LikeTogglesTotal counts like toggles by outcome.
// Label:
//   - result: "liked", "unliked", "quota_exceeded", "unauthenticated", "busy", "not_found", "canceled" or "error"
var LikeTogglesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "like_toggles_total",
		Help:      "Total number of like toggles, labelled by outcome.",
	},
	[]string{"result"},
)

// LikeToggleDuration measures a toggle from lock acquisition to the final re-read.
var LikeToggleDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "like_toggle_duration_seconds",
		Help:      "Duration of like toggles.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Badge metrics ─────────────────────────────────────────────────────────────

// BadgesAwardedTotal counts unlocked badges.
// Label:
//   - trigger: "first_like", "like_count" or "like_limit"
var BadgesAwardedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "badges_awarded_total",
		Help:      "Total number of badges unlocked, by trigger type.",
	},
	[]string{"trigger"},
)

// ── Change feed metrics ───────────────────────────────────────────────────────

// ChangeEventsTotal counts change notifications received from the data gateway.
// Labels:
//   - relation: the table or collection that changed
//   - op: INSERT, UPDATE or DELETE
var ChangeEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "change_events_total",
		Help:      "Total number of change events published to the hub.",
	},
	[]string{"relation", "op"},
)

// ChangeQueueDepth tracks pending deliveries in each hub worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ChangeQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "change_queue_depth",
		Help:      "Current number of deliveries pending in each hub worker channel.",
	},
	[]string{"worker_id"},
)

// ChangeSubscriptions tracks live change feed subscriptions.
var ChangeSubscriptions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "change_subscriptions",
		Help:      "Number of active change feed subscriptions.",
	},
)

// FavoritesStreams tracks open favorites websocket sessions.
var FavoritesStreams = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "favorites_streams",
		Help:      "Number of open favorites stream connections.",
	},
)

// LikeStatusStreams tracks open per-cheat like counter websocket sessions.
var LikeStatusStreams = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "like_status_streams",
		Help:      "Number of open like counter stream connections.",
	},
)

// ── Quota metrics ─────────────────────────────────────────────────────────────

// QuotaViolations is the number of free users above the like limit found by
// the last audit.
var QuotaViolations = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "quota_violations",
		Help:      "Non-premium users holding more likes than the free limit at the last audit.",
	},
)

// QuotaAuditsTotal counts audit runs.
// Label:
//   - result: "ok" or "error"
var QuotaAuditsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quota_audits_total",
		Help:      "Total number of quota audit runs, by result.",
	},
	[]string{"result"},
)
