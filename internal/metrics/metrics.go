// Package metrics exposes the bot's Prometheus instrumentation.
//
// Primary series updated during operation:
//   - bot_orders_placed_total{side}        – orders accepted by the venue
//   - bot_open_positions                   – current ledger size (gauge)
//   - bot_monitors_active                  – running position monitors (gauge)
//   - bot_positions_closed_total           – positions liquidated at target
//   - bot_screening_rejects_total{reason}  – screening rejects by reason
//   - bot_cycle_duration_seconds           – discovery cycle wall time
//
// Registered at package init and served at /metrics when a listen address is
// configured.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_placed_total",
			Help: "Orders accepted by the venue",
		},
		[]string{"side"},
	)

	OpenPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_open_positions",
			Help: "Positions currently open in the ledger",
		},
	)

	MonitorsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_monitors_active",
			Help: "Position monitors currently running",
		},
	)

	PositionsClosed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_positions_closed_total",
			Help: "Positions liquidated at profit target",
		},
	)

	ScreeningRejects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_screening_rejects_total",
			Help: "Candidates rejected by the screening pipeline, by reason",
		},
		[]string{"reason"},
	)

	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bot_cycle_duration_seconds",
			Help:    "Discovery cycle wall time",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		OrdersPlaced,
		OpenPositions,
		MonitorsActive,
		PositionsClosed,
		ScreeningRejects,
		CycleDuration,
	)
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
