package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultAccepted = "accepted"
	ResultOccupied = "occupied"
	ResultRejected = "rejected"

	OutcomeWin  = "win"
	OutcomeDraw = "draw"
)

// Metrics holds the game counters on a private registry so several servers
// can live in one process.
type Metrics struct {
	registry      *prometheus.Registry
	moves         *prometheus.CounterVec
	gamesStarted  prometheus.Counter
	gamesFinished *prometheus.CounterVec
	activeGames   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nex_moves_total",
			Help: "Submitted moves by result.",
		}, []string{"result"}),
		gamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nex_games_started_total",
			Help: "Games created.",
		}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nex_games_finished_total",
			Help: "Games finished by outcome.",
		}, []string{"outcome"}),
		activeGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nex_active_games",
			Help: "Games in progress.",
		}),
	}
	m.registry.MustRegister(
		m.moves,
		m.gamesStarted,
		m.gamesFinished,
		m.activeGames,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Move(result string) {
	if m == nil {
		return
	}
	m.moves.WithLabelValues(result).Inc()
}

func (m *Metrics) GameStarted() {
	if m == nil {
		return
	}
	m.gamesStarted.Inc()
}

func (m *Metrics) GameFinished(outcome string) {
	if m == nil {
		return
	}
	m.gamesFinished.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetActiveGames(n int) {
	if m == nil {
		return
	}
	m.activeGames.Set(float64(n))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
