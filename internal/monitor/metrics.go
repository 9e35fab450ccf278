package monitor

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the monitor's Prometheus instruments. A nil *Metrics is
// valid and records nothing, so callers never need to guard.
type Metrics struct {
	ticks        prom.Counter
	tickDuration prom.Histogram
	dueSchedules prom.Gauge
	autoStarts   prom.Counter
	conflicts    prom.Counter
	errors       prom.Counter
}

// NewMetrics constructs and registers the monitor metrics on reg.
func NewMetrics(reg *prom.Registry) *Metrics {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	m := &Metrics{
		ticks: prom.NewCounter(prom.CounterOpts{
			Namespace: "fastwell",
			Name:      "monitor_ticks_total",
			Help:      "Completed monitor poll cycles",
		}),
		tickDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "fastwell",
			Name:      "monitor_tick_duration_seconds",
			Help:      "Duration of monitor poll cycles",
			Buckets:   prom.DefBuckets,
		}),
		dueSchedules: prom.NewGauge(prom.GaugeOpts{
			Namespace: "fastwell",
			Name:      "monitor_due_schedules",
			Help:      "Due schedules observed in the last poll cycle",
		}),
		autoStarts: prom.NewCounter(prom.CounterOpts{
			Namespace: "fastwell",
			Name:      "monitor_auto_starts_total",
			Help:      "Sessions started automatically from schedules",
		}),
		conflicts: prom.NewCounter(prom.CounterOpts{
			Namespace: "fastwell",
			Name:      "monitor_conflicts_total",
			Help:      "Auto-starts skipped because a session was already active",
		}),
		errors: prom.NewCounter(prom.CounterOpts{
			Namespace: "fastwell",
			Name:      "monitor_errors_total",
			Help:      "Failed auto-start attempts after retries",
		}),
	}
	reg.MustRegister(m.ticks, m.tickDuration, m.dueSchedules, m.autoStarts, m.conflicts, m.errors)
	return m
}

func (m *Metrics) ObserveTick(seconds float64, due int) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.tickDuration.Observe(seconds)
	m.dueSchedules.Set(float64(due))
}

func (m *Metrics) IncAutoStart() {
	if m == nil {
		return
	}
	m.autoStarts.Inc()
}

func (m *Metrics) IncConflict() {
	if m == nil {
		return
	}
	m.conflicts.Inc()
}

func (m *Metrics) IncError() {
	if m == nil {
		return
	}
	m.errors.Inc()
}
