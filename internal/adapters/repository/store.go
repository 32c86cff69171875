// Package repository is the SQL-backed historical data source. It reads
// transitions and profiles for training, aggregation and similarity search,
// and owns the matrix table, the model registry and the prediction audit
// trail. Queries are written with ? placeholders and rebound per driver, so
// the same code runs on PostgreSQL (lib/pq) and SQLite (modernc).
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	gobreaker "github.com/sony/gobreaker/v2"
	_ "modernc.org/sqlite"

	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
	"github.com/Ritik-JS/alumni-careerpath/pkg/metrics"
	"github.com/Ritik-JS/alumni-careerpath/pkg/retry"
)

// Supported driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	breakerName = "datasource"
)

// Store implements the data-source interfaces of the domain packages.
type Store struct {
	db      *sqlx.DB
	breaker *gobreaker.CircuitBreaker[any]
	retry   retry.Policy
	logger  logger.Logger

	breakerFailures uint32
	breakerTimeout  time.Duration
}

// Open connects to driver/dsn and returns a Store. SQLite connections are
// limited to one so that in-memory databases are shared.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	return New(db, opts...), nil
}

// New wraps an existing connection pool.
func New(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{
		db:              db,
		retry:           retry.DefaultPolicy(),
		breakerFailures: DefaultBreakerFailures,
		breakerTimeout:  DefaultBreakerTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("repository")
	}
	s.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    breakerName,
		Timeout: s.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.breakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(name, float64(to))
			s.logger.Warn(context.Background(), "breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	metrics.UpdateBreakerState(breakerName, float64(gobreaker.StateClosed))
	return s
}

// DB exposes the underlying pool.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// read runs fn behind the breaker with bounded retries. An open breaker is
// reported as ErrUnavailable.
func (s *Store) read(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.withRetry(ctx, op, fn)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordErrorByComponent("repository", "unavailable")
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, s.retry, func() error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || errors.Is(err, ErrNotFound) {
			return retry.Permanent(err)
		}
		return err
	}, func(err error, wait time.Duration) {
		metrics.RecordDatasourceRetry(op)
		s.logger.Warn(ctx, "datasource retry",
			logger.String("operation", op),
			logger.Duration("wait", wait),
			logger.Error(err),
		)
	})
}

// inTx runs fn in a transaction, retrying the whole transaction.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	err := s.withRetry(ctx, op, func(ctx context.Context) error {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
