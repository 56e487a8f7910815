package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the bot's counters. A nil *Metrics is valid and records
// nothing, which keeps use cases usable without a registry.
type Metrics struct {
	commands    *prometheus.CounterVec
	completions *prometheus.CounterVec
	resets      prometheus.Counter
	gatherer    prometheus.Gatherer
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "habitbot",
			Name:      "commands_total",
			Help:      "Chat commands handled, by command and outcome.",
		}, []string{"command", "outcome"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "habitbot",
			Name:      "habit_completions_total",
			Help:      "Habit completion attempts, by frequency and outcome.",
		}, []string{"frequency", "outcome"}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "habitbot",
			Name:      "todo_resets_total",
			Help:      "Recurring todos reopened by the daily reset.",
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.commands, m.completions, m.resets)
	return m
}

func (m *Metrics) CommandHandled(command, outcome string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) CompletionRecorded(frequency, outcome string) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(frequency, outcome).Inc()
}

func (m *Metrics) TodosReset(n int) {
	if m == nil {
		return
	}
	m.resets.Add(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
