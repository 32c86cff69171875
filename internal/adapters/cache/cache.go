// Package cache keeps recent prediction results in Redis. Entries are keyed
// by model version and normalized profile, so a model swap naturally
// invalidates them. The cache is never authoritative: every failure reads
// as a miss.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
	"github.com/Ritik-JS/alumni-careerpath/pkg/metrics"
)

// Defaults for the Redis cache.
const (
	DefaultTTL    = 10 * time.Minute
	DefaultPrefix = "careerpath:prediction:"
)

// Option applies a configuration option to the Redis cache.
type Option func(*Redis)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(r *Redis) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Redis) {
		if l != nil {
			r.logger = l
		}
	}
}

// Redis is a prediction cache backed by a Redis client.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

// NewRedis wraps client.
func NewRedis(client redis.UniversalClient, opts ...Option) *Redis {
	r := &Redis{
		client: client,
		ttl:    DefaultTTL,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("cache")
	}
	return r
}

// Dial connects to a single Redis server and verifies it answers.
func Dial(ctx context.Context, addr, password string, db int, opts ...Option) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedis(client, opts...), nil
}

// Get returns the cached result for key. Errors are logged and reported as
// a miss.
func (r *Redis) Get(ctx context.Context, key string) (*model.PredictionResult, bool) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			metrics.RecordErrorByComponent("cache", "get")
			r.logger.Warn(ctx, "cache get failed", logger.Error(err))
		}
		metrics.RecordPredictionCache(false)
		return nil, false
	}
	var res model.PredictionResult
	if err := json.Unmarshal(raw, &res); err != nil {
		metrics.RecordErrorByComponent("cache", "decode")
		r.logger.Warn(ctx, "cache entry undecodable", logger.Error(err))
		metrics.RecordPredictionCache(false)
		return nil, false
	}
	metrics.RecordPredictionCache(true)
	return &res, true
}

// Set stores res under key with the configured TTL.
func (r *Redis) Set(ctx context.Context, key string, res *model.PredictionResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode prediction: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, raw, r.ttl).Err(); err != nil {
		metrics.RecordErrorByComponent("cache", "set")
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Key derives the cache key for a profile under a model and matrix version.
// The profile is normalized first; skill order and casing do not matter,
// but role and industry are kept as spelled since the encoder and the
// heuristics answer differently for different spellings.
func Key(version string, p model.ProfileSnapshot) string {
	p = p.Normalize()
	skills := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		skills = append(skills, model.SkillKey(s))
	}
	sort.Strings(skills)

	h := sha256.New()
	for _, part := range []string{
		version,
		p.ID,
		p.CurrentRole,
		p.Industry,
		fmt.Sprint(p.YearsExperience),
		strings.Join(skills, "\x1f"),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
