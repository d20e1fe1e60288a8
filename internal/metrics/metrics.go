// Package metrics exposes gameplay counters for Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robalobadob/flagquiz/internal/game"
)

// Metrics groups the collectors the server updates.
type Metrics struct {
	gamesStarted  *prometheus.CounterVec
	guesses       *prometheus.CounterVec
	gamesFinished *prometheus.CounterVec
	finalScore    *prometheus.HistogramVec
	gatherer      prometheus.Gatherer
}

// New registers the collectors on a fresh registry, together with the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		gamesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flagquiz",
			Name:      "sessions_started_total",
			Help:      "Play sessions created.",
		}, []string{"mode"}),
		guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flagquiz",
			Name:      "guesses_total",
			Help:      "Guesses submitted, by verdict.",
		}, []string{"mode", "verdict"}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flagquiz",
			Name:      "games_finished_total",
			Help:      "Completed 8-round games.",
		}, []string{"mode"}),
		finalScore: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flagquiz",
			Name:      "final_score",
			Help:      "Final score of completed games.",
			Buckets:   prometheus.LinearBuckets(0, 1, game.RoundsPerGame+1),
		}, []string{"mode"}),
		gatherer: reg,
	}
	reg.MustRegister(m.gamesStarted, m.guesses, m.gamesFinished, m.finalScore)
	return m
}

func (m *Metrics) SessionStarted(mode game.Mode) {
	m.gamesStarted.WithLabelValues(string(mode)).Inc()
}

func (m *Metrics) Guess(mode game.Mode, v game.Verdict) {
	m.guesses.WithLabelValues(string(mode), string(v)).Inc()
}

func (m *Metrics) GameFinished(mode game.Mode, finalScore int) {
	m.gamesFinished.WithLabelValues(string(mode)).Inc()
	m.finalScore.WithLabelValues(string(mode)).Observe(float64(finalScore))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
