// Package similarity finds alumni with comparable experience and skills.
package similarity

import (
	"context"
	"fmt"
	"sort"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
)

// Defaults for the search window and result size.
const (
	DefaultBandYears = 3
	DefaultLimit     = 5
	bothEmptyScore   = 0.5
)

// Source lists profiles whose experience falls in [min, max] years.
type Source interface {
	ProfilesInExperienceBand(ctx context.Context, minYears, maxYears int) ([]model.ProfileSnapshot, error)
}

// Jaccard is |A∩B| / |A∪B| over case-insensitive skill sets. Two empty sets
// score a neutral 0.5; one empty set scores 0.
func Jaccard(a, b []string) float64 {
	sa, sb := model.SkillSet(a), model.SkillSet(b)
	switch {
	case len(sa) == 0 && len(sb) == 0:
		return bothEmptyScore
	case len(sa) == 0 || len(sb) == 0:
		return 0
	}
	inter := 0
	for k := range sa {
		if _, ok := sb[k]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(sa)+len(sb)-inter)
}

// Rank scores candidates against query and returns the top limit by
// similarity, keeping candidate order on ties. The query's own profile and
// candidates outside the experience band are skipped.
func Rank(query model.ProfileSnapshot, candidates []model.ProfileSnapshot, band, limit int) []model.SimilarAlumnus {
	out := make([]model.SimilarAlumnus, 0, len(candidates))
	for _, c := range candidates {
		if query.ID != "" && c.ID == query.ID {
			continue
		}
		if diff := c.YearsExperience - query.YearsExperience; diff > band || diff < -band {
			continue
		}
		out = append(out, model.SimilarAlumnus{
			ProfileID:       c.ID,
			Name:            c.Name,
			CurrentRole:     c.CurrentRole,
			YearsExperience: c.YearsExperience,
			Similarity:      Jaccard(query.Skills, c.Skills),
			CommonSkills:    common(query.Skills, c.Skills),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func common(a, b []string) []string {
	sb := model.SkillSet(b)
	out := make([]string, 0)
	for _, s := range model.NormalizeSkills(a) {
		if _, ok := sb[model.SkillKey(s)]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Option applies a configuration option to the Finder.
type Option func(*Finder)

// WithBandYears sets the ± experience window.
func WithBandYears(years int) Option {
	return func(f *Finder) {
		if years >= 0 {
			f.band = years
		}
	}
}

// WithLimit sets the maximum number of alumni returned.
func WithLimit(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.limit = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Finder) {
		if l != nil {
			f.logger = l
		}
	}
}

// Finder queries the profile source and ranks the experience band.
type Finder struct {
	source Source
	band   int
	limit  int
	logger logger.Logger
}

// New creates a Finder.
func New(source Source, opts ...Option) *Finder {
	f := &Finder{source: source, band: DefaultBandYears, limit: DefaultLimit}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logger.Get().Named("similarity")
	}
	return f
}

// Find returns alumni similar to query. Results are evidence only and never
// feed back into role probabilities.
func (f *Finder) Find(ctx context.Context, query model.ProfileSnapshot) ([]model.SimilarAlumnus, error) {
	query = query.Normalize()
	lo := query.YearsExperience - f.band
	if lo < 0 {
		lo = 0
	}
	candidates, err := f.source.ProfilesInExperienceBand(ctx, lo, query.YearsExperience+f.band)
	if err != nil {
		return nil, fmt.Errorf("list profiles in band [%d,%d]: %w", lo, query.YearsExperience+f.band, err)
	}
	res := Rank(query, candidates, f.band, f.limit)
	f.logger.Debug(ctx, "similar alumni ranked",
		logger.Int("candidates", len(candidates)),
		logger.Int("returned", len(res)),
	)
	return res, nil
}
