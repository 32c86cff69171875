// Package aggregate turns historical transition facts into the transition
// probability matrix.
package aggregate

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
	"github.com/Ritik-JS/alumni-careerpath/pkg/metrics"
)

// Aggregation constants.
const (
	MaxRequiredSkills   = 10
	DefaultAvgDuration  = 24
	DefaultSuccessRate  = 0.7
	defaultWindowMonths = 36
)

// FactSource reads historical transitions.
type FactSource interface {
	TransitionFacts(ctx context.Context, since time.Time) ([]model.TransitionFact, error)
}

// MatrixWriter replaces the persisted matrix.
type MatrixWriter interface {
	ReplaceMatrix(ctx context.Context, version string, entries []model.TransitionMatrixEntry) error
}

// Build computes matrix entries from facts. It is a pure function: the same
// facts in the same order always produce identical output. Rows are ordered
// by from_role first-seen, then count descending, then to_role first-seen.
// Roles are grouped by model.RoleKey and reported in their first-seen
// spelling, so case variants of one role share a single distribution.
func Build(facts []model.TransitionFact) []model.TransitionMatrixEntry {
	type group struct {
		from, to     string
		fromName     string
		toName       string
		order        int
		count        int
		durationSum  int
		durationN    int
		ratingSum    int
		ratingN      int
		skillCounts  map[string]int
		skillFirst   map[string]int
		skillSpelled map[string]string
	}

	fromOrder := make(map[string]int)
	fromTotals := make(map[string]int)
	spelled := make(map[string]string)
	groups := make(map[[2]string]*group)
	var ordered []*group
	skillSeq := 0

	spelling := func(role string) string {
		k := model.RoleKey(role)
		if v, ok := spelled[k]; ok {
			return v
		}
		spelled[k] = role
		return role
	}

	for _, f := range facts {
		from := strings.TrimSpace(f.FromRole)
		to := strings.TrimSpace(f.ToRole)
		if from == "" || to == "" {
			continue
		}
		fromKey, toKey := model.RoleKey(from), model.RoleKey(to)
		if _, ok := fromOrder[fromKey]; !ok {
			fromOrder[fromKey] = len(fromOrder)
		}
		fromTotals[fromKey]++

		key := [2]string{fromKey, toKey}
		g, ok := groups[key]
		if !ok {
			g = &group{
				from:         fromKey,
				to:           toKey,
				fromName:     spelling(from),
				toName:       spelling(to),
				order:        len(ordered),
				skillCounts:  make(map[string]int),
				skillFirst:   make(map[string]int),
				skillSpelled: make(map[string]string),
			}
			groups[key] = g
			ordered = append(ordered, g)
		}
		g.count++
		if f.DurationMonths != nil {
			g.durationSum += *f.DurationMonths
			g.durationN++
		}
		if f.SuccessRating != nil {
			g.ratingSum += *f.SuccessRating
			g.ratingN++
		}
		// A fact contributes each skill at most once.
		for _, s := range model.NormalizeSkills(f.SkillsAcquired) {
			k := model.SkillKey(s)
			if _, seen := g.skillFirst[k]; !seen {
				g.skillFirst[k] = skillSeq
				g.skillSpelled[k] = s
				skillSeq++
			}
			g.skillCounts[k]++
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if fromOrder[a.from] != fromOrder[b.from] {
			return fromOrder[a.from] < fromOrder[b.from]
		}
		if a.count != b.count {
			return a.count > b.count
		}
		return a.order < b.order
	})

	entries := make([]model.TransitionMatrixEntry, 0, len(ordered))
	for _, g := range ordered {
		avgDuration := DefaultAvgDuration
		if g.durationN > 0 {
			avgDuration = int(math.Round(float64(g.durationSum) / float64(g.durationN)))
		}
		successRate := DefaultSuccessRate
		if g.ratingN > 0 {
			successRate = float64(g.ratingSum) / float64(g.ratingN) / model.MaxSuccessRating
		}
		entries = append(entries, model.TransitionMatrixEntry{
			FromRole:          g.fromName,
			ToRole:            g.toName,
			TransitionCount:   g.count,
			Probability:       float64(g.count) / float64(fromTotals[g.from]),
			AvgDurationMonths: avgDuration,
			RequiredSkills:    topSkills(g.skillCounts, g.skillFirst, g.skillSpelled),
			SuccessRate:       successRate,
		})
	}
	return entries
}

// topSkills returns up to MaxRequiredSkills skills by descending frequency,
// ties broken by first-seen order.
func topSkills(counts, first map[string]int, spelled map[string]string) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return first[keys[i]] < first[keys[j]]
	})
	if len(keys) > MaxRequiredSkills {
		keys = keys[:MaxRequiredSkills]
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = spelled[k]
	}
	return out
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithWindowMonths sets the trailing window of facts considered.
func WithWindowMonths(months int) Option {
	return func(a *Aggregator) {
		if months > 0 {
			a.windowMonths = months
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// Aggregator runs Build over a trailing window and persists the result.
type Aggregator struct {
	source       FactSource
	writer       MatrixWriter
	windowMonths int
	now          func() time.Time
	logger       logger.Logger
}

// New creates an Aggregator.
func New(source FactSource, writer MatrixWriter, opts ...Option) *Aggregator {
	a := &Aggregator{
		source:       source,
		writer:       writer,
		windowMonths: defaultWindowMonths,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("aggregator")
	}
	return a
}

// Result summarizes an aggregation run.
type Result struct {
	Version   string `json:"version"`
	Facts     int    `json:"facts"`
	Entries   int    `json:"entries"`
	FromRoles int    `json:"from_roles"`
}

// Run reads facts in the window, rebuilds the matrix and replaces it.
func (a *Aggregator) Run(ctx context.Context) (*Result, error) {
	now := a.now().UTC()
	since := now.AddDate(0, -a.windowMonths, 0)

	facts, err := a.source.TransitionFacts(ctx, since)
	if err != nil {
		metrics.RecordAggregation("failed", 0)
		return nil, fmt.Errorf("%w: %w", ErrReadFacts, err)
	}

	entries := Build(facts)
	version := model.NewVersion(now)
	for i := range entries {
		entries[i].MatrixVersion = version
	}

	if err := a.writer.ReplaceMatrix(ctx, version, entries); err != nil {
		metrics.RecordAggregation("failed", 0)
		return nil, fmt.Errorf("%w: %w", ErrWriteMatrix, err)
	}

	froms := make(map[string]struct{})
	for _, e := range entries {
		froms[e.FromRole] = struct{}{}
	}
	res := &Result{Version: version, Facts: len(facts), Entries: len(entries), FromRoles: len(froms)}
	metrics.RecordAggregation("success", len(entries))
	a.logger.Info(ctx, "transition matrix rebuilt",
		logger.String("version", version),
		logger.Int("facts", res.Facts),
		logger.Int("entries", res.Entries),
		logger.Int("from_roles", res.FromRoles),
	)
	return res, nil
}
