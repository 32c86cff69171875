package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/confidence"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/inference"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/rules"
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
	"github.com/Ritik-JS/alumni-careerpath/pkg/metrics"
)

// Predict answers a profile with ranked next roles. Matrix rows for the
// role win; otherwise the classifier answers when loaded; heuristics close
// every remaining gap. It always returns predictions for a valid profile.
//
// The audit trail records computed predictions; an answer served from the
// cache was audited when it was computed and is not written again.
func (s *Service) Predict(ctx context.Context, profile model.ProfileSnapshot) (*model.PredictionResult, error) {
	start := time.Now()
	p := profile.Normalize()
	if p.CurrentRole == "" {
		return nil, ErrInvalidProfile
	}

	// Matrix rows are read before the cache so the key carries the
	// persisted matrix version, which every process sees alike.
	entries := s.matrixRows(ctx, p.CurrentRole)

	var key string
	if s.cache != nil {
		key = s.keyFn(s.cacheVersion(entries), p)
		if res, ok := s.cache.Get(ctx, key); ok {
			s.logger.Debug(ctx, "prediction served from cache", logger.String("role", p.CurrentRole))
			return res, nil
		}
	}

	preds, strategy, version := s.rank(ctx, p, entries)

	transitions := 0
	for _, e := range entries {
		transitions += e.TransitionCount
	}
	score := confidence.Score(confidence.Signals{
		Transitions:     transitions,
		Skills:          len(p.Skills),
		YearsExperience: p.YearsExperience,
	})
	res := &model.PredictionResult{
		ID:              uuid.NewString(),
		UserID:          p.ID,
		CurrentRole:     p.CurrentRole,
		Strategy:        strategy,
		ModelVersion:    version,
		PredictedRoles:  preds,
		ConfidenceScore: score,
		SimilarAlumni:   s.similar(ctx, p),
		GeneratedAt:     s.now().UTC(),
	}

	if s.audit != nil {
		if err := s.audit.SavePrediction(ctx, *res); err != nil {
			metrics.RecordErrorByComponent("service", "audit")
			s.logger.Warn(ctx, "prediction audit failed", logger.String("id", res.ID), logger.Error(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, res); err != nil {
			s.logger.Debug(ctx, "prediction cache set failed", logger.Error(err))
		}
	}

	metrics.RecordPrediction(string(strategy), float64(time.Since(start).Milliseconds()), res.ConfidenceScore)
	s.logger.Debug(ctx, "prediction served",
		logger.String("role", p.CurrentRole),
		logger.String("strategy", string(strategy)),
		logger.Int("predictions", len(preds)),
	)
	return res, nil
}

// rank picks the strategy for p and returns its predictions.
func (s *Service) rank(ctx context.Context, p model.ProfileSnapshot, entries []model.TransitionMatrixEntry) ([]model.RolePrediction, model.Strategy, string) {
	if len(entries) > 0 {
		if preds, _ := s.rules.Predict(p.CurrentRole, p.Skills, entries); len(preds) > 0 {
			return preds, model.StrategyMatrix, entries[0].MatrixVersion
		}
	}

	if s.engine != nil {
		preds, version, err := s.engine.Predict(ctx, p)
		switch {
		case err == nil && len(preds) > 0:
			for i := range preds {
				if preds[i].TimeframeMonths == 0 {
					preds[i].TimeframeMonths = model.DefaultDurationMonths
				}
				preds[i].SuccessRate = rules.HeuristicSuccessRate
			}
			return preds, model.StrategyModel, version
		case err != nil && !errors.Is(err, inference.ErrModelUnavailable):
			metrics.RecordErrorByComponent("service", "inference")
			s.logger.Warn(ctx, "model prediction failed", logger.Error(err))
		}
	}

	return s.rules.Heuristic(p.CurrentRole), model.StrategyHeuristic, ""
}

// matrixRows degrades a data source failure to "no rows".
func (s *Service) matrixRows(ctx context.Context, role string) []model.TransitionMatrixEntry {
	if s.matrix == nil {
		return nil
	}
	entries, err := s.matrix.MatrixFor(ctx, role)
	if err != nil {
		metrics.RecordErrorByComponent("service", "matrix")
		s.logger.Warn(ctx, "matrix lookup failed; falling back", logger.String("role", role), logger.Error(err))
		return nil
	}
	return entries
}

// similar never fails the prediction; errors yield an empty list.
func (s *Service) similar(ctx context.Context, p model.ProfileSnapshot) []model.SimilarAlumnus {
	if s.finder == nil {
		return []model.SimilarAlumnus{}
	}
	out, err := s.finder.Find(ctx, p)
	if err != nil {
		metrics.RecordErrorByComponent("service", "similar_alumni")
		s.logger.Warn(ctx, "similar alumni lookup failed", logger.Error(err))
		return []model.SimilarAlumnus{}
	}
	if out == nil {
		return []model.SimilarAlumnus{}
	}
	return out
}

// cacheVersion names the loaded model and the persisted matrix version
// behind a role's rows. A role without rows uses "none" for the matrix.
func (s *Service) cacheVersion(entries []model.TransitionMatrixEntry) string {
	v := "none"
	if s.engine != nil {
		if h := s.engine.Current(); h != nil {
			v = h.Version
		}
	}
	m := "none"
	if len(entries) > 0 && entries[0].MatrixVersion != "" {
		m = entries[0].MatrixVersion
	}
	return v + "/" + m
}
