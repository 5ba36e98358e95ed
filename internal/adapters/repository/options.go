package repository

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithLabel sets the label (usually the mode) used in metrics.
func WithLabel(label string) Option {
	return func(s *TreapStore) {
		if label != "" {
			s.label = label
		}
	}
}
