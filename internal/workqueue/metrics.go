package workqueue

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// workMetrics holds the Prometheus metrics for one work queue.
// A nil *workMetrics records nothing.
type workMetrics struct {
	submitted prometheus.Counter
	executed  prometheus.Counter
	skipped   prometheus.Counter
	depth     *prometheus.GaugeVec
}

func newWorkMetrics(reg prometheus.Registerer, component string) (*workMetrics, error) {
	labels := prometheus.Labels{"component": component}
	counter := func(name, help string) (prometheus.Counter, error) {
		return register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "simcontainers",
			Subsystem:   "workqueue",
			Name:        name,
			ConstLabels: labels,
			Help:        help,
		}))
	}

	m := &workMetrics{}
	var err error
	if m.submitted, err = counter("submitted_total", "Total work blocks queued or run inline"); err != nil {
		return nil, err
	}
	if m.executed, err = counter("executed_total", "Total work blocks executed"); err != nil {
		return nil, err
	}
	if m.skipped, err = counter("skipped_total", "Total work blocks skipped because they were already finished"); err != nil {
		return nil, err
	}
	m.depth, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   "simcontainers",
		Subsystem:   "workqueue",
		Name:        "depth",
		ConstLabels: labels,
		Help:        "Work blocks waiting, by priority",
	}, []string{"priority"}))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// register registers c, reusing an identical collector that is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register work queue metrics: %w", err)
	}
	return c, nil
}

func (m *workMetrics) recordSubmit(p Priority, n int) {
	if m != nil {
		m.submitted.Add(float64(n))
		m.depth.WithLabelValues(p.level().String()).Add(float64(n))
	}
}

func (m *workMetrics) recordInline() {
	if m != nil {
		m.submitted.Inc()
		m.executed.Inc()
	}
}

func (m *workMetrics) recordDispatch(p Priority) {
	if m != nil {
		m.depth.WithLabelValues(p.String()).Dec()
	}
}

func (m *workMetrics) recordExecute() {
	if m != nil {
		m.executed.Inc()
	}
}

func (m *workMetrics) recordSkip() {
	if m != nil {
		m.skipped.Inc()
	}
}

func (m *workMetrics) resetDepth() {
	if m != nil {
		m.depth.Reset()
	}
}
