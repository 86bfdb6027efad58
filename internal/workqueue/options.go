package workqueue

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/randomizedcoder/simcontainers/internal/cancel"
)

// DefaultPriorityRatio is the number of medium blocks run for each low block.
const DefaultPriorityRatio = 4

const (
	defaultPollInterval  = 100 * time.Millisecond
	defaultStatsInterval = 10 * time.Second
)

// Option configures a WorkQueue using the functional options pattern.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	ratio         int
	pollInterval  time.Duration
	statsInterval time.Duration
	stop          cancel.Canceler

	registerer prometheus.Registerer
	component  string
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPriorityRatio sets how many medium blocks run for each low block.
// Values below 1 select DefaultPriorityRatio.
func WithPriorityRatio(ratio int) Option {
	return func(o *options) {
		o.ratio = ratio
	}
}

// WithPollInterval sets how long an idle worker waits before it checks the
// stop flag again.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithStatsInterval sets how often queue depths are logged at debug level.
func WithStatsInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.statsInterval = d
		}
	}
}

// WithStopFlag stops the workers once stop is done, abandoning queued work.
func WithStopFlag(stop cancel.Canceler) Option {
	return func(o *options) {
		o.stop = stop
	}
}

// WithMetrics exports work queue metrics to registerer, labelled with component.
// The option is ignored if registerer is nil or component is empty.
func WithMetrics(registerer prometheus.Registerer, component string) Option {
	return func(o *options) {
		if registerer != nil && component != "" {
			o.registerer = registerer
			o.component = component
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		ratio:         DefaultPriorityRatio,
		pollInterval:  defaultPollInterval,
		statsInterval: defaultStatsInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.ratio < 1 {
		o.ratio = DefaultPriorityRatio
	}
	return o
}
