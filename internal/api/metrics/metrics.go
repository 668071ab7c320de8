// Package metrics defines and registers all custom Prometheus metrics for the
// client console. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry on package init via
// promauto; the HTTP layer exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

// ── Repository metrics ────────────────────────────────────────────────────────

// RepositoryOperationsTotal counts repository calls.
// Labels:
//   - backend: storage backend name (e.g. "file", "postgres")
//   - operation: create, get, list, update, delete, ping
//   - result: "ok", "exists", "not_found", "unavailable", "error"
var RepositoryOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "repository_operations_total",
		Help:      "Total number of client repository operations, by backend, operation and result.",
	},
	[]string{"backend", "operation", "result"},
)

// RepositoryOperationDuration measures repository call latency.
var RepositoryOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "repository_operation_duration_seconds",
		Help:      "Duration of client repository operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"backend", "operation"},
)

// ClientsStored tracks the number of clients seen by the last successful list.
var ClientsStored = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "clients_stored",
		Help:      "Number of client records returned by the most recent list.",
	},
	[]string{"backend"},
)
