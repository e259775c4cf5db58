// Package metrics counts classified outcomes for a run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tyler180/punt-outcomes/internal/punt"
)

// Metrics owns its registry so runs never share counters.
type Metrics struct {
	Registry *prometheus.Registry

	outcomes     *prometheus.CounterVec
	undetermined prometheus.Counter
	failures     prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "punt_outcomes_total",
			Help: "Punt plays classified, by outcome.",
		}, []string{"outcome"}),
		undetermined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "punt_yard_line_undetermined_total",
			Help: "Classified plays whose yard line could not be read.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "punt_classify_failures_total",
			Help: "Plays that could not be classified.",
		}),
	}
	m.Registry.MustRegister(m.outcomes, m.undetermined, m.failures)
	for _, o := range punt.Outcomes() {
		m.outcomes.WithLabelValues(o.String())
	}
	return m
}

// Observe records one processed play.
func (m *Metrics) Observe(p punt.Play) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(p.Outcome.String()).Inc()
	if p.YardLine == punt.YardLineUndetermined {
		m.undetermined.Inc()
	}
}

// Failure records a play that errored.
func (m *Metrics) Failure() {
	if m == nil {
		return
	}
	m.failures.Inc()
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
