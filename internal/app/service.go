// Package service wires the prediction engine together: it orchestrates
// matrix, model and heuristic predictions for the HTTP API and the admin
// CLI, and runs training and aggregation as serialized batch jobs.
package service

import (
	"context"
	"sync"
	"time"

	jobqueue "github.com/Ritik-JS/alumni-careerpath/internal/adapters/mq/queue"
	jobworker "github.com/Ritik-JS/alumni-careerpath/internal/adapters/mq/worker"
	"github.com/Ritik-JS/alumni-careerpath/internal/adapters/repository"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/aggregate"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/dedupe"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/inference"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/rules"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/similarity"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/training"
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
)

// Default service configuration.
const (
	defaultQueueSize  = 16
	defaultDedupeSize = 64
	maxJobRecords     = 256
	workerStopTimeout = 5 * time.Second
)

// MatrixReader returns persisted matrix rows for a role.
type MatrixReader interface {
	MatrixFor(ctx context.Context, role string) ([]model.TransitionMatrixEntry, error)
}

// AuditWriter appends served predictions to the audit trail.
type AuditWriter interface {
	SavePrediction(ctx context.Context, res model.PredictionResult) error
}

// PredictionCache holds recent results. It is never authoritative.
type PredictionCache interface {
	Get(ctx context.Context, key string) (*model.PredictionResult, bool)
	Set(ctx context.Context, key string, res *model.PredictionResult) error
}

// CountsSource reports data-source table sizes for stats.
type CountsSource interface {
	Counts(ctx context.Context) (repository.Counts, error)
}

// Service implements the API and CLI dependencies of the engine.
type Service struct {
	mu sync.RWMutex

	// Prediction path
	matrix MatrixReader
	rules  *rules.Predictor
	engine *inference.Engine
	finder *similarity.Finder
	audit  AuditWriter
	cache  PredictionCache
	keyFn  func(version string, p model.ProfileSnapshot) string

	// Batch path
	trainer    *training.Trainer
	aggregator *aggregate.Aggregator
	deduper    dedupe.Deduper
	jobQueue   *jobqueue.InMemoryQueue
	worker     *jobworker.InMemoryWorker
	jobs       map[string]*model.JobRecord
	jobTimeout time.Duration

	// Configuration
	queueSize  int
	dedupeSize int
	stats      CountsSource

	// State
	started bool
	cancel  context.CancelFunc
	now     func() time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithMatrix sets the matrix source used by the rule predictor.
func WithMatrix(m MatrixReader) Option {
	return func(s *Service) {
		s.matrix = m
	}
}

// WithRules replaces the rule-based predictor.
func WithRules(p *rules.Predictor) Option {
	return func(s *Service) {
		if p != nil {
			s.rules = p
		}
	}
}

// WithEngine sets the inference engine.
func WithEngine(e *inference.Engine) Option {
	return func(s *Service) {
		s.engine = e
	}
}

// WithFinder sets the similar-alumni finder.
func WithFinder(f *similarity.Finder) Option {
	return func(s *Service) {
		s.finder = f
	}
}

// WithAudit sets the prediction audit writer.
func WithAudit(a AuditWriter) Option {
	return func(s *Service) {
		s.audit = a
	}
}

// WithCache sets the prediction cache and its key function.
func WithCache(c PredictionCache, key func(version string, p model.ProfileSnapshot) string) Option {
	return func(s *Service) {
		if c != nil && key != nil {
			s.cache = c
			s.keyFn = key
		}
	}
}

// WithTrainer sets the classifier trainer.
func WithTrainer(t *training.Trainer) Option {
	return func(s *Service) {
		s.trainer = t
	}
}

// WithAggregator sets the transition aggregator.
func WithAggregator(a *aggregate.Aggregator) Option {
	return func(s *Service) {
		s.aggregator = a
	}
}

// WithStats sets the source of table counts for GetStats.
func WithStats(c CountsSource) Option {
	return func(s *Service) {
		s.stats = c
	}
}

// WithQueueSize sets the maximum number of pending jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the number of distinct pending job claims.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithJobTimeout bounds a single batch job. Zero means no bound.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.jobTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service. Prediction works without Start; batch jobs
// need the worker started by Start.
func New(opts ...Option) *Service {
	s := &Service{
		rules:      rules.New(),
		jobs:       make(map[string]*model.JobRecord),
		queueSize:  defaultQueueSize,
		dedupeSize: defaultDedupeSize,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start loads the newest model, if any, and starts the job worker.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting career prediction service...")

	if s.engine != nil {
		if s.engine.LoadLatest(ctx) {
			s.logger.Info(ctx, "model available", logger.String("version", s.engine.Current().Version))
		} else {
			s.logger.Warn(ctx, "no model available; predictions use the matrix and heuristics")
		}
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobQueue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.worker = jobworker.NewInMemoryWorker(s.jobQueue, jobworker.HandlerFunc(s.handle),
		jobworker.WithName("jobs"),
		jobworker.WithJobTimeout(s.jobTimeout),
	)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	go s.worker.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "career prediction service started",
		logger.Int("queueSize", s.queueSize),
		logger.Bool("modelLoaded", s.engine != nil && s.engine.Available()),
		logger.Bool("cache", s.cache != nil),
	)
	return nil
}

// Stop stops accepting jobs and waits briefly for the running one.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	q, w, cancel := s.jobQueue, s.worker, s.cancel
	s.mu.Unlock()

	// The running job updates its record under s.mu, so the wait
	// happens unlocked.
	ctx := context.Background()
	s.logger.Info(ctx, "stopping career prediction service...")

	_ = q.Close()
	stopCtx, stop := context.WithTimeout(ctx, workerStopTimeout)
	defer stop()
	if err := w.Shutdown(stopCtx); err != nil {
		s.logger.Warn(ctx, "job worker did not stop in time", logger.Error(err))
	}
	cancel()

	s.logger.Info(ctx, "career prediction service stopped")
}

// Started reports whether Start has run.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Reload swaps in the newest published model.
func (s *Service) Reload(ctx context.Context) (*inference.Handle, error) {
	if s.engine == nil {
		return nil, inference.ErrModelUnavailable
	}
	h, err := s.engine.Reload(ctx)
	if err != nil {
		s.logger.Warn(ctx, "model reload failed", logger.Error(err))
		return h, err
	}
	s.logger.Info(ctx, "model reloaded", logger.String("version", h.Version))
	return h, nil
}
