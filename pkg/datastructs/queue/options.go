package queue

import "go.uber.org/zap"

type options struct {
	logger *zap.Logger
}

// Option configures a Blocking queue.
type Option func(*options)

// WithLogger sets the logger used for lifecycle events. Nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func defaultOptions() options {
	return options{logger: zap.NewNop()}
}
