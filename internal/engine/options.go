package engine

import (
	"github.com/okian/xcheck/internal/domain/county"
	"github.com/okian/xcheck/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithCounties sets the county table used for multiplier credit.
func WithCounties(t *county.Table) Option {
	return func(e *Engine) {
		e.counties = t
	}
}

// WithWorkers sets the worker count of each parallel pass. Values below 1
// mean one worker per CPU.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithQueueSize sets the job queue capacity.
func WithQueueSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.queueSize = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
