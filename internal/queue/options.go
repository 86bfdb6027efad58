package queue

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a queue using the functional options pattern.
type Option func(*options)

type options struct {
	capacity int

	// registerer is optional; when set the queue exports Prometheus counters.
	registerer prometheus.Registerer
	component  string

	logger *slog.Logger
}

// WithCapacity reserves room for n items in each internal buffer.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithMetrics exports queue counters to registerer, labelled with component.
// The option is ignored if registerer is nil or component is empty.
//
// Counters already registered under the same names and component are shared.
// If registration fails for any other reason the queue runs without metrics
// and logs a warning (see WithLogger).
func WithMetrics(registerer prometheus.Registerer, component string) Option {
	return func(o *options) {
		if registerer != nil && component != "" {
			o.registerer = registerer
			o.component = component
		}
	}
}

// WithLogger sets the logger for setup warnings. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
