// Package bootstrap builds the engine's components from configuration for
// the HTTP service and the admin CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ritik-JS/alumni-careerpath/internal/adapters/artifact"
	"github.com/Ritik-JS/alumni-careerpath/internal/adapters/cache"
	"github.com/Ritik-JS/alumni-careerpath/internal/adapters/repository"
	service "github.com/Ritik-JS/alumni-careerpath/internal/app"
	"github.com/Ritik-JS/alumni-careerpath/internal/config"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/aggregate"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/inference"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/similarity"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/training"
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
	"github.com/Ritik-JS/alumni-careerpath/pkg/retry"
)

// Components holds everything Open built. Service is not started.
type Components struct {
	Store     *repository.Store
	Artifacts *artifact.Store
	Cache     *cache.Redis
	Engine    *inference.Engine
	Service   *service.Service
}

// Open connects the data source, artifact store and optional cache and
// wires the service over them. A cache that cannot be reached is logged
// and skipped.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Components, error) {
	if log == nil {
		log = logger.Get()
	}
	policy := retry.Policy{
		MaxAttempts:     cfg.RetryMaxAttempts,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     retry.DefaultMaxInterval,
	}

	store, err := repository.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN,
		repository.WithRetryPolicy(policy),
		repository.WithBreaker(cfg.BreakerFailures, cfg.BreakerTimeout),
		repository.WithLogger(log.Named("repository")),
	)
	if err != nil {
		return nil, fmt.Errorf("open data source: %w", err)
	}
	c := &Components{Store: store}

	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	arts, err := artifact.NewStore(cfg.ArtifactDir,
		artifact.WithRetryPolicy(policy),
		artifact.WithLogger(log.Named("artifacts")),
	)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("open artifact store: %w", err)
	}
	c.Artifacts = arts

	if cfg.CacheEnabled() {
		rc, err := cache.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			cache.WithTTL(cfg.CacheTTL),
			cache.WithLogger(log.Named("cache")),
		)
		if err != nil {
			log.Warn(ctx, "prediction cache disabled", logger.String("redis_addr", cfg.RedisAddr), logger.Error(err))
		} else {
			c.Cache = rc
		}
	}

	c.Engine = inference.New(arts,
		inference.WithTopK(cfg.TopK),
		inference.WithMinProbability(cfg.MinProbability),
		inference.WithLogger(log.Named("inference")),
	)

	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithMatrix(store),
		service.WithAudit(store),
		service.WithStats(store),
		service.WithEngine(c.Engine),
		service.WithFinder(similarity.New(store,
			similarity.WithBandYears(cfg.ExperienceBandYears),
			similarity.WithLimit(cfg.SimilarAlumniLimit),
			similarity.WithLogger(log.Named("similarity")),
		)),
		service.WithTrainer(training.New(store, arts,
			training.WithMinSamples(cfg.MinSamples),
			training.WithWindowMonths(cfg.TrainingWindowMonths),
			training.WithSeed(cfg.RandomSeed),
			training.WithRegistry(store),
			training.WithLogger(log.Named("trainer")),
		)),
		service.WithAggregator(aggregate.New(store, store,
			aggregate.WithWindowMonths(cfg.TrainingWindowMonths),
			aggregate.WithLogger(log.Named("aggregator")),
		)),
		service.WithQueueSize(cfg.JobQueueSize),
		service.WithJobTimeout(cfg.JobTimeout),
	}
	if c.Cache != nil {
		opts = append(opts, service.WithCache(c.Cache, cache.Key))
	}
	c.Service = service.New(opts...)
	return c, nil
}

// Close stops the service and releases every connection.
func (c *Components) Close() error {
	if c.Service != nil {
		c.Service.Stop()
	}
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.Artifacts != nil {
		errs = append(errs, c.Artifacts.Close())
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	return errors.Join(errs...)
}
