package report

import "github.com/okian/xcheck/pkg/logger"

// Option applies a configuration option to the Exporter.
type Option func(*Exporter)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(x *Exporter) {
		if l != nil {
			x.logger = l
		}
	}
}

// WithResultsFile overrides the result table file name.
func WithResultsFile(name string) Option {
	return func(x *Exporter) {
		if name != "" {
			x.resultsFile = name
		}
	}
}
