package queue

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// queueMetrics holds the Prometheus counters for one queue.
// A nil *queueMetrics records nothing.
type queueMetrics struct {
	pushes         prometheus.Counter
	priorityPushes prometheus.Counter
	pops           prometheus.Counter
	swaps          prometheus.Counter
}

func newQueueMetrics(reg prometheus.Registerer, component string) (*queueMetrics, error) {
	counter := func(name, help string) (prometheus.Counter, error) {
		return registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "simcontainers",
			Subsystem:   "queue",
			Name:        name,
			ConstLabels: prometheus.Labels{"component": component},
			Help:        help,
		}))
	}

	m := &queueMetrics{}
	var err error
	if m.pushes, err = counter("pushes_total", "Total number of items pushed"); err != nil {
		return nil, err
	}
	if m.priorityPushes, err = counter("priority_pushes_total", "Total number of items pushed on the priority channel"); err != nil {
		return nil, err
	}
	if m.pops, err = counter("pops_total", "Total number of items popped"); err != nil {
		return nil, err
	}
	if m.swaps, err = counter("swaps_total", "Total number of push/pull buffer swaps"); err != nil {
		return nil, err
	}
	return m, nil
}

// registerCounter registers c, reusing an identical counter that is already registered.
func registerCounter(reg prometheus.Registerer, c prometheus.Counter) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (m *queueMetrics) recordPush() {
	if m != nil {
		m.pushes.Inc()
	}
}

func (m *queueMetrics) recordPushes(n int) {
	if m != nil {
		m.pushes.Add(float64(n))
	}
}

func (m *queueMetrics) recordPriorityPush() {
	if m != nil {
		m.priorityPushes.Inc()
	}
}

func (m *queueMetrics) recordPop() {
	if m != nil {
		m.pops.Inc()
	}
}

func (m *queueMetrics) recordSwap() {
	if m != nil {
		m.swaps.Inc()
	}
}
