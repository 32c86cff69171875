package repository

import (
	"time"

	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
	"github.com/Ritik-JS/alumni-careerpath/pkg/retry"
)

// Breaker defaults.
const (
	DefaultBreakerFailures = 5
	DefaultBreakerTimeout  = 30 * time.Second
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithRetryPolicy bounds retries of reads and transactional writes.
func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Store) {
		s.retry = p
	}
}

// WithBreaker sets the consecutive failures that open the read breaker and
// how long it stays open before probing again.
func WithBreaker(failures uint32, openFor time.Duration) Option {
	return func(s *Store) {
		if failures > 0 {
			s.breakerFailures = failures
		}
		if openFor > 0 {
			s.breakerTimeout = openFor
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
