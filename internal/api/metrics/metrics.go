// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace API. It is the single source of truth for metric names, labels,
// and help strings. Metrics are registered with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "freshcart"

// ── Trust metrics ─────────────────────────────────────────────────────────────

// ReviewsSubmittedTotal counts reviews committed, by star rating ("1".."5").
var ReviewsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_submitted_total",
		Help:      "Total number of customer reviews committed, by rating.",
	},
	[]string{"rating"},
)

// ReviewsRejectedTotal counts review submissions that failed.
// Label:
//   - reason: "invalid_request", "invalid_rating", "not_reviewable", "already_reviewed", "conflict", "forbidden", "error"
var ReviewsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_rejected_total",
		Help:      "Total number of review submissions rejected, by reason.",
	},
	[]string{"reason"},
)

// TrustAdjustmentsTotal counts admin overrides, by direction ("up" or "down").
var TrustAdjustmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trust_adjustments_total",
		Help:      "Total number of admin trust adjustments.",
	},
	[]string{"direction"},
)

// VendorTrustScores observes the score a vendor lands on after each change.
var VendorTrustScores = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "vendor_trust_score",
		Help:      "Vendor trust score after each committed change.",
		Buckets:   []float64{1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5},
	},
	[]string{"tier"},
)

// TrustQueueDepth tracks jobs waiting in each serializer worker channel.
var TrustQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "trust_queue_depth",
		Help:      "Current number of trust mutations pending in each serializer worker channel.",
	},
	[]string{"worker_id"},
)

// TrustJobDuration measures a serialized trust mutation from dequeue to
// completion. Label result is "ok" or "error".
var TrustJobDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "trust_job_duration_seconds",
		Help:      "Duration of serialized trust mutations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// TrustEventsPublishedTotal counts outbound trust events by result
// ("ok", "error", "circuit_open").
var TrustEventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trust_events_published_total",
		Help:      "Total number of trust events published to the broker, by result.",
	},
	[]string{"result"},
)

// ── Commerce metrics ──────────────────────────────────────────────────────────

// OrdersPlacedTotal counts orders created at checkout.
var OrdersPlacedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of orders placed.",
	},
)

// LowTrustWarningsTotal counts checkout previews that warned about a vendor.
var LowTrustWarningsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_low_trust_warnings_total",
		Help:      "Total number of low-trust vendor warnings shown at checkout.",
	},
)

// OrderTransitionsTotal counts order status changes, by target status.
var OrderTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Total number of order status transitions, by new status.",
	},
	[]string{"status"},
)

// ── Identity metrics ──────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "locked", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts new accounts, by role.
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered, by role.",
	},
	[]string{"role"},
)
