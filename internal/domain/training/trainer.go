// Package training builds, evaluates and publishes career-transition
// classifiers.
package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/encoding"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/forest"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
	"github.com/Ritik-JS/alumni-careerpath/pkg/metrics"
)

// Trainer defaults.
const (
	DefaultMinSamples   = 30
	DefaultWindowMonths = 36
	DefaultSeed         = 42
)

// RowSource reads joined transition and profile rows.
type RowSource interface {
	TrainingRows(ctx context.Context, since time.Time) ([]model.TrainingRow, error)
}

// Publisher persists a complete artifact atomically.
type Publisher interface {
	Publish(ctx context.Context, a *Artifact) error
}

// Registry records training metadata for audit.
type Registry interface {
	RecordModel(ctx context.Context, rec model.ModelRecord) error
}

// Artifact is a trained classifier paired with the exact encoder bundle it
// was trained against. Never mutated after publish.
type Artifact struct {
	Version      string
	CreatedAt    time.Time
	Forest       *forest.Forest
	Bundle       *encoding.Bundle
	Metrics      Metrics
	Params       forest.Params
	Strategy     SearchStrategy
	TrainSamples int
	TestSamples  int
	Stratified   bool
}

// Outcome is the structured result of a training request.
type Outcome struct {
	Success         bool           `json:"success"`
	CurrentSamples  int            `json:"current_samples"`
	RequiredSamples int            `json:"required_samples"`
	Message         string         `json:"message,omitempty"`
	Version         string         `json:"version,omitempty"`
	Strategy        SearchStrategy `json:"strategy"`
	Params          *forest.Params `json:"hyperparameters,omitempty"`
	Metrics         *Metrics       `json:"metrics,omitempty"`
	Stratified      bool           `json:"stratified"`
}

// Err returns the InsufficientDataError behind an unsuccessful outcome.
func (o *Outcome) Err() error {
	if o.Success {
		return nil
	}
	return &InsufficientDataError{Current: o.CurrentSamples, Required: o.RequiredSamples}
}

// Option applies a configuration option to the Trainer.
type Option func(*Trainer)

// WithMinSamples sets the default minimum sample threshold.
func WithMinSamples(n int) Option {
	return func(t *Trainer) {
		if n > 0 {
			t.minSamples = n
		}
	}
}

// WithWindowMonths sets how far back training rows are read.
func WithWindowMonths(months int) Option {
	return func(t *Trainer) {
		if months > 0 {
			t.windowMonths = months
		}
	}
}

// WithSeed sets the seed for splitting, folds and the forest.
func WithSeed(seed int64) Option {
	return func(t *Trainer) {
		t.seed = seed
	}
}

// WithRegistry records every published model.
func WithRegistry(r Registry) Option {
	return func(t *Trainer) {
		t.registry = r
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Trainer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithClock overrides the time source used for windows and versions.
func WithClock(now func() time.Time) Option {
	return func(t *Trainer) {
		if now != nil {
			t.now = now
		}
	}
}

// Trainer runs one training pass per call. Callers serialize runs.
type Trainer struct {
	source       RowSource
	publisher    Publisher
	registry     Registry
	minSamples   int
	windowMonths int
	seed         int64
	now          func() time.Time
	logger       logger.Logger
}

// New creates a Trainer.
func New(source RowSource, publisher Publisher, opts ...Option) *Trainer {
	t := &Trainer{
		source:       source,
		publisher:    publisher,
		minSamples:   DefaultMinSamples,
		windowMonths: DefaultWindowMonths,
		seed:         DefaultSeed,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logger.Get().Named("trainer")
	}
	return t
}

// Train runs extraction, encoding, search, fit, evaluation and publish.
// Too few samples is reported in the Outcome with a nil error; any other
// failure is a *TrainingError and nothing is published.
func (t *Trainer) Train(ctx context.Context, minSamples int) (*Outcome, error) {
	start := time.Now()
	if minSamples <= 0 {
		minSamples = t.minSamples
	}

	out, err := t.train(ctx, minSamples)
	elapsed := float64(time.Since(start).Milliseconds())
	switch {
	case err != nil:
		var te *TrainingError
		stage := "unknown"
		if errors.As(err, &te) {
			stage = te.Stage
		}
		metrics.RecordTrainingRun("failed", elapsed)
		metrics.RecordErrorByComponent("trainer", stage)
		t.logger.Error(ctx, "training failed", logger.String("stage", stage), logger.Error(err))
	case !out.Success:
		metrics.RecordTrainingRun("insufficient_data", elapsed)
		t.logger.Warn(ctx, "training skipped",
			logger.Int("current_samples", out.CurrentSamples),
			logger.Int("required_samples", out.RequiredSamples),
		)
	default:
		metrics.RecordTrainingRun("success", elapsed)
		metrics.UpdateModelQuality(out.CurrentSamples, out.Metrics.Accuracy, out.Metrics.F1)
	}
	return out, err
}

func (t *Trainer) train(ctx context.Context, minSamples int) (*Outcome, error) {
	if t.source == nil {
		return nil, stageErr(StageExtract, ErrNoRowSource)
	}
	now := t.now().UTC()

	rows, err := t.source.TrainingRows(ctx, now.AddDate(0, -t.windowMonths, 0))
	if err != nil {
		return nil, stageErr(StageExtract, err)
	}
	samples := model.NormalizeRows(rows)
	if len(samples) < minSamples {
		e := &InsufficientDataError{Current: len(samples), Required: minSamples}
		return &Outcome{
			CurrentSamples:  len(samples),
			RequiredSamples: minSamples,
			Message:         fmt.Sprintf("need %d more samples", e.Missing()),
		}, nil
	}

	bundle := encoding.Fit(samples)
	if bundle.NumClasses() < 2 {
		return nil, stageErr(StageEncode, errors.New("role vocabulary is empty"))
	}
	X := make([][]float64, len(samples))
	y := make([]int, len(samples))
	for i, s := range samples {
		X[i], _ = bundle.Transform(encoding.FromSample(s))
		y[i] = bundle.Target(s)
	}

	part := Split(y, t.seed)
	strategy := ChooseSearchStrategy(len(part.Train), MinClassCount(part.Train, y))
	metrics.RecordSearchStrategy(string(strategy.Kind))
	t.logger.Info(ctx, "training corpus prepared",
		logger.Int("samples", len(samples)),
		logger.Int("train", len(part.Train)),
		logger.Int("test", len(part.Test)),
		logger.Bool("stratified", part.Stratified),
		logger.String("search", string(strategy.Kind)),
		logger.Int("folds", strategy.Folds),
	)

	search, err := Search(X, y, part.Train, bundle.NumClasses(), strategy, t.seed)
	if err != nil {
		return nil, stageErr(StageSearch, err)
	}

	clf, err := forest.Fit(rowsAt(X, part.Train), labelsAt(y, part.Train), bundle.NumClasses(), search.Params)
	if err != nil {
		return nil, stageErr(StageFit, err)
	}

	scores, err := evaluate(clf, bundle, X, y, part.Test)
	if err != nil {
		return nil, stageErr(StageEvaluate, err)
	}

	art := &Artifact{
		Version:      model.NewVersion(now),
		CreatedAt:    now,
		Forest:       clf,
		Bundle:       bundle,
		Metrics:      scores,
		Params:       search.Params,
		Strategy:     strategy,
		TrainSamples: len(part.Train),
		TestSamples:  len(part.Test),
		Stratified:   part.Stratified,
	}
	if err := t.publisher.Publish(ctx, art); err != nil {
		return nil, stageErr(StagePublish, err)
	}
	t.record(ctx, art)

	t.logger.Info(ctx, "model published",
		logger.String("version", art.Version),
		logger.Float64("accuracy", scores.Accuracy),
		logger.Float64("f1", scores.F1),
		logger.Float64("cv_score", search.CVScore),
	)
	return &Outcome{
		Success:         true,
		CurrentSamples:  len(samples),
		RequiredSamples: minSamples,
		Version:         art.Version,
		Strategy:        strategy,
		Params:          &art.Params,
		Metrics:         &art.Metrics,
		Stratified:      part.Stratified,
	}, nil
}

func evaluate(clf *forest.Forest, bundle *encoding.Bundle, X [][]float64, y []int, test []int) (Metrics, error) {
	if len(clf.Importances) != len(bundle.FeatureNames) {
		return Metrics{}, fmt.Errorf("importances cover %d features, bundle names %d", len(clf.Importances), len(bundle.FeatureNames))
	}
	m := Score(labelsAt(y, test), predictAll(clf, X, test))
	m.TopFeatures = TopFeatures(bundle.FeatureNames, clf.Importances, TopFeatureCount)
	return m, nil
}

// record writes the registry row. The artifact is already live, so a
// registry failure is logged and counted rather than failing the run.
func (t *Trainer) record(ctx context.Context, art *Artifact) {
	if t.registry == nil {
		return
	}
	rec := model.ModelRecord{
		Version:         art.Version,
		CreatedAt:       art.CreatedAt,
		TrainSamples:    art.TrainSamples,
		TestSamples:     art.TestSamples,
		Strategy:        string(art.Strategy.Kind),
		Hyperparameters: art.Params,
		Metrics:         art.Metrics,
	}
	if err := t.registry.RecordModel(ctx, rec); err != nil {
		metrics.RecordErrorByComponent("trainer", "registry")
		t.logger.Error(ctx, "model registry write failed", logger.String("version", art.Version), logger.Error(err))
	}
}
