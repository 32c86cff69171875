// Package inference serves predictions from the most recently published
// classifier.
package inference

import (
	"context"
	"errors"
	"io/fs"
	"sync/atomic"
	"time"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/encoding"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/forest"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/training"
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
	"github.com/Ritik-JS/alumni-careerpath/pkg/metrics"
)

// Defaults for the candidate list.
const (
	DefaultTopK           = 5
	MaxTopK               = 5
	DefaultMinProbability = 0.05
)

// Loader finds and reads the newest complete artifact.
type Loader interface {
	Latest(ctx context.Context) (*training.Artifact, error)
}

// Handle is an immutable (classifier, encoder bundle) pair. The engine swaps
// whole handles; a handle is never modified after it is stored.
type Handle struct {
	Version  string
	LoadedAt time.Time
	Artifact *training.Artifact
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTopK bounds the number of predicted roles. Values above MaxTopK are
// clamped.
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > MaxTopK {
			k = MaxTopK
		}
		if k > 0 {
			e.topK = k
		}
	}
}

// WithMinProbability sets the exclusive probability floor.
func WithMinProbability(p float64) Option {
	return func(e *Engine) {
		if p >= 0 && p < 1 {
			e.minProb = p
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine answers predictions from the current handle.
type Engine struct {
	loader  Loader
	current atomic.Pointer[Handle]
	topK    int
	minProb float64
	logger  logger.Logger
}

// New creates an Engine with no model loaded.
func New(loader Loader, opts ...Option) *Engine {
	e := &Engine{
		loader:  loader,
		topK:    DefaultTopK,
		minProb: DefaultMinProbability,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("inference")
	}
	metrics.UpdateModelLoaded(false)
	return e
}

// LoadLatest loads the newest artifact and reports whether a model is now
// available. No artifacts is not an error; the engine stays unavailable.
func (e *Engine) LoadLatest(ctx context.Context) bool {
	if _, err := e.Reload(ctx); err != nil && !errors.Is(err, fs.ErrNotExist) {
		e.logger.Warn(ctx, "model load failed", logger.Error(err))
	}
	return e.Current() != nil
}

// Reload reads the newest artifact outside any lock and publishes it with a
// single pointer store. On failure the previous handle stays in place.
func (e *Engine) Reload(ctx context.Context) (*Handle, error) {
	art, err := e.loader.Latest(ctx)
	if err != nil {
		result := "failed"
		if errors.Is(err, fs.ErrNotExist) {
			result = "empty"
		}
		metrics.RecordModelReload(result)
		return e.Current(), err
	}
	if cur := e.Current(); cur != nil && cur.Version == art.Version {
		metrics.RecordModelReload("unchanged")
		return cur, nil
	}
	if art.Forest == nil || art.Bundle == nil {
		metrics.RecordModelReload("failed")
		return e.Current(), ErrIncompleteArtifact
	}

	h := &Handle{Version: art.Version, LoadedAt: time.Now().UTC(), Artifact: art}
	e.current.Store(h)
	metrics.RecordModelReload("success")
	metrics.UpdateModelLoaded(true)
	e.logger.Info(ctx, "model loaded",
		logger.String("version", h.Version),
		logger.Int("classes", art.Bundle.NumClasses()),
		logger.Int("features", art.Bundle.Width()),
	)
	return h, nil
}

// Current returns the active handle, or nil when no model is loaded.
func (e *Engine) Current() *Handle {
	return e.current.Load()
}

// Available reports whether a model is loaded.
func (e *Engine) Available() bool {
	return e.Current() != nil
}

// Predict returns up to topK roles with probability above the floor, each
// labelled high, medium or low. The returned version identifies the handle
// that produced the answer.
func (e *Engine) Predict(ctx context.Context, profile model.ProfileSnapshot) ([]model.RolePrediction, string, error) {
	h := e.Current()
	if h == nil {
		return nil, "", ErrModelUnavailable
	}
	bundle := h.Artifact.Bundle

	vec, unknown := bundle.Transform(encoding.FromProfile(profile))
	if len(unknown) > 0 {
		e.logger.Debug(ctx, "unknown categories mapped to index 0",
			logger.Strings("features", unknown),
			logger.String("version", h.Version),
		)
	}

	proba := h.Artifact.Forest.PredictProba(vec)
	out := make([]model.RolePrediction, 0, e.topK)
	for _, r := range forest.TopK(proba, -1, e.minProb) {
		if len(out) == e.topK {
			break
		}
		role, ok := bundle.Decode(r.Class)
		if !ok {
			continue
		}
		out = append(out, model.RolePrediction{
			Role:        role,
			Probability: r.Probability,
			SkillGap:    []string{},
			Confidence:  model.ConfidenceLabel(r.Probability),
		})
	}
	return out, h.Version, nil
}
