// Package config defines service configuration and its defaults.
//
// Conventions:
//   - Keys are flat and snake_case; env vars map CAREER_<KEY> to <key>.
//   - New returns a Config with every default filled in.
//   - Validate is the single place configuration is checked.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// DatabaseDriver is sqlite or postgres; DatabaseDSN is passed to it.
	DatabaseDriver string `koanf:"database_driver" validate:"oneof=sqlite postgres"`
	DatabaseDSN    string `koanf:"database_dsn" validate:"required"`

	// AutoMigrate creates missing tables at startup.
	AutoMigrate bool `koanf:"auto_migrate"`

	// ArtifactDir holds versioned model artifacts.
	ArtifactDir string `koanf:"artifact_dir" validate:"required"`

	// RedisAddr enables the prediction cache when set.
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db" validate:"gte=0"`
	CacheTTL      time.Duration `koanf:"cache_ttl" validate:"gt=0"`

	// JobQueueSize bounds pending batch jobs; JobTimeout bounds one job
	// (zero disables the bound).
	JobQueueSize int           `koanf:"job_queue_size" validate:"gte=1"`
	JobTimeout   time.Duration `koanf:"job_timeout" validate:"gte=0"`

	// Training.
	MinSamples           int   `koanf:"min_samples" validate:"gte=2"`
	TrainingWindowMonths int   `koanf:"training_window_months" validate:"gte=1"`
	RandomSeed           int64 `koanf:"random_seed"`

	// Inference.
	TopK           int     `koanf:"top_k" validate:"gte=1,lte=5"`
	MinProbability float64 `koanf:"min_probability" validate:"gte=0,lt=1"`

	// Similar alumni.
	ExperienceBandYears int `koanf:"experience_band_years" validate:"gte=0"`
	SimilarAlumniLimit  int `koanf:"similar_alumni_limit" validate:"gte=0,lte=100"`

	// Data source resilience.
	RetryMaxAttempts     int           `koanf:"retry_max_attempts" validate:"gte=1,lte=10"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval" validate:"gt=0"`
	BreakerFailures      uint32        `koanf:"breaker_failures" validate:"gte=1"`
	BreakerTimeout       time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		ShutdownTimeout:      30 * time.Second,
		DatabaseDriver:       "sqlite",
		DatabaseDSN:          "file:careerpath.db?_pragma=busy_timeout(5000)",
		AutoMigrate:          true,
		ArtifactDir:          "models",
		CacheTTL:             10 * time.Minute,
		JobQueueSize:         16,
		JobTimeout:           30 * time.Minute,
		MinSamples:           30,
		TrainingWindowMonths: 36,
		RandomSeed:           42,
		TopK:                 5,
		MinProbability:       0.05,
		ExperienceBandYears:  3,
		SimilarAlumniLimit:   5,
		RetryMaxAttempts:     3,
		RetryInitialInterval: 100 * time.Millisecond,
		BreakerFailures:      5,
		BreakerTimeout:       30 * time.Second,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// CacheEnabled reports whether a Redis address is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}
