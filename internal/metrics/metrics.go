// Package metrics exposes Prometheus instrumentation for engagement operations.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrlokans/soundwave/internal/entities"
)

var (
	// operationsTotal counts engagement operations by operation and result
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundwave_engagement_operations_total",
		Help: "Total engagement operations by operation and result",
	}, []string{"operation", "result"})

	// operationDuration tracks engagement operation latency, retries included
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "soundwave_engagement_operation_duration_seconds",
		Help:    "Engagement operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"operation"})

	// counterDrift counts counters repaired by reconciliation
	counterDrift = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundwave_counter_drift_total",
		Help: "Denormalized counters found out of sync and repaired",
	}, []string{"kind", "field"})
)

// Result labels
const (
	ResultSuccess   = "success"
	ResultNotFound  = "not_found"
	ResultConflict  = "conflict"
	ResultInvalid   = "invalid"
	ResultForbidden = "forbidden"
	ResultTransient = "transient"
	ResultError     = "error"
)

// Result maps an operation error onto its result label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, entities.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, entities.ErrAlreadyLiked),
		errors.Is(err, entities.ErrNotLiked),
		errors.Is(err, entities.ErrAlreadyInAlbum),
		errors.Is(err, entities.ErrNotInAlbum):
		return ResultConflict
	case errors.Is(err, entities.ErrInvalidDepth), errors.Is(err, entities.ErrInvalidInput):
		return ResultInvalid
	case errors.Is(err, entities.ErrForbidden):
		return ResultForbidden
	case errors.Is(err, entities.ErrTransient):
		return ResultTransient
	default:
		return ResultError
	}
}

// Observe records one finished operation.
//
//	start := time.Now()
//	err := repo.LikeSong(ctx, songID, userID)
//	metrics.Observe("song_like", start, err)
func Observe(operation string, start time.Time, err error) {
	operationsTotal.WithLabelValues(operation, Result(err)).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordDrift counts one repaired counter.
func RecordDrift(kind entities.EntityKind, field string) {
	counterDrift.WithLabelValues(string(kind), field).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
