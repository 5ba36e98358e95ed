package service

import (
	"github.com/okian/xcheck/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// LoaderOption applies a configuration option to the Loader.
type LoaderOption func(*Loader)

// WithExtension selects log files by extension, e.g. ".txt" or ".log".
func WithExtension(ext string) LoaderOption {
	return func(l *Loader) {
		if ext != "" {
			l.ext = ext
		}
	}
}

// WithParallelism bounds concurrent file parsing.
func WithParallelism(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.parallel = n
		}
	}
}

// WithLoaderLogger sets a custom logger for the loader.
func WithLoaderLogger(lg logger.Logger) LoaderOption {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}
