package resultsdb

import "github.com/okian/xcheck/pkg/logger"

// Option applies a configuration option to the DB.
type Option func(*DB)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(d *DB) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithoutMigrations skips the automatic migration on Open.
func WithoutMigrations() Option {
	return func(d *DB) {
		d.migrate = false
	}
}
