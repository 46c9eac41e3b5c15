package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Clicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_clicks_total",
			Help: "Card clicks by result (rejected, first_pick, match, mismatch)",
		},
		[]string{"result"},
	)
	Resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_mismatch_resolutions_total",
			Help: "Delayed mismatch completions, applied or stale",
		},
		[]string{"state"},
	)
	GamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_games_finished_total",
			Help: "Finished games by outcome (p1, p2, tie)",
		},
		[]string{"outcome"},
	)
	Resets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memory_resets_total",
			Help: "Tables reset to a fresh deal",
		},
	)
	TablesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "memory_tables_active",
			Help: "Tables currently held in memory",
		},
	)
)

func init() {
	prometheus.MustRegister(Clicks)
	prometheus.MustRegister(Resolutions)
	prometheus.MustRegister(GamesFinished)
	prometheus.MustRegister(Resets)
	prometheus.MustRegister(TablesActive)
}
