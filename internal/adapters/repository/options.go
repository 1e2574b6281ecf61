package repository

import "time"

const defaultMetricsUpdateInterval = 5 * time.Second

// Option applies a configuration option to a store.
type Option func(*options)

type options struct {
	metricsUpdateInterval time.Duration
}

func newOptions(opts []Option) options {
	o := options{metricsUpdateInterval: defaultMetricsUpdateInterval}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMetricsUpdateInterval sets the interval of the background record count
// metrics. Zero or negative disables the updater.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(o *options) {
		o.metricsUpdateInterval = interval
	}
}
