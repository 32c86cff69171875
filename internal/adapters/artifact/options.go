package artifact

import (
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
	"github.com/Ritik-JS/alumni-careerpath/pkg/retry"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithRetryPolicy bounds retries of artifact reads.
func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Store) {
		s.retry = p
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
