package validation

import (
	"github.com/okian/xcheck/internal/domain/county"
	"github.com/okian/xcheck/pkg/logger"
)

// Option applies a configuration option to the Validator.
type Option func(*Validator)

// WithCounties restricts multiplier credit to codes known to t.
func WithCounties(t *county.Table) Option {
	return func(v *Validator) {
		v.counties = t
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}
