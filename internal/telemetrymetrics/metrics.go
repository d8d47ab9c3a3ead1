// Package telemetrymetrics exposes the Prometheus metrics for the telemetry
// core's hot paths: position ingestion, proximity alerting, push delivery,
// heading-session updates, and WQS calculation.
package telemetrymetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PositionsIngested counts successful record_position calls.
	PositionsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huntiq_positions_ingested_total",
		Help: "Total number of location samples accepted by the position ingester.",
	})

	// PositionIngestLatency measures record_position end-to-end latency.
	PositionIngestLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "huntiq_position_ingest_seconds",
		Help:    "Latency of record_position, from sample write through alert emission.",
		Buckets: prometheus.DefBuckets,
	})

	// ProximityAlertsEmitted counts alerts emitted by the proximity engine.
	ProximityAlertsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huntiq_proximity_alerts_emitted_total",
		Help: "Total proximity alerts emitted, by classification.",
	}, []string{"classification"})

	// PushDeliveries counts push outbox dispatch outcomes.
	PushDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huntiq_push_delivery_total",
		Help: "Total push outbox dispatch attempts, by outcome.",
	}, []string{"outcome"})

	// HeadingUpdates counts heading-session position updates.
	HeadingUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huntiq_heading_updates_total",
		Help: "Total heading-session update_position calls.",
	})

	// WQSCalculations counts WQS calculator invocations.
	WQSCalculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huntiq_wqs_calculations_total",
		Help: "Total WQS calculations, by cache outcome (hit/miss).",
	}, []string{"cache"})
)
