// Package rules predicts next roles from the transition matrix, or from
// progression heuristics when a role has no history.
package rules

import (
	"math"
	"sort"
	"strings"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
)

// State is the predictor's branch for a query.
type State string

// Predictor states.
const (
	HasHistoricalTransitions State = "has_historical_transitions"
	NoHistoricalTransitions  State = "no_historical_transitions"
)

// Heuristic constants.
const (
	DefaultTopK            = 5
	HeuristicSuccessRate   = 0.7
	neutralSkillMatchRatio = 0.5
	skillMatchWeight       = 0.5
	skillMatchPctPrecision = 10
	maxHeuristicCandidates = 3
)

var (
	heuristicProbabilities = [maxHeuristicCandidates]float64{0.6, 0.45, 0.3}
	heuristicTimeframes    = [maxHeuristicCandidates]int{24, 36, 48}
)

// Option applies a configuration option to the Predictor.
type Option func(*Predictor)

// WithTopK bounds the number of matrix-derived predictions.
func WithTopK(k int) Option {
	return func(p *Predictor) {
		if k > 0 {
			p.topK = k
		}
	}
}

// WithProgressions replaces the canonical progression table. Keys are
// matched case-insensitively.
func WithProgressions(table map[string][]string) Option {
	return func(p *Predictor) {
		if table != nil {
			p.progressions = normalizeTable(table)
		}
	}
}

// Predictor is stateless and safe for concurrent use.
type Predictor struct {
	topK         int
	progressions map[string][]string
}

// New creates a Predictor.
func New(opts ...Option) *Predictor {
	p := &Predictor{
		topK:         DefaultTopK,
		progressions: normalizeTable(canonicalProgressions),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Predict chooses the matrix branch when entries exist for the role,
// otherwise the heuristic branch.
func (p *Predictor) Predict(role string, skills []string, entries []model.TransitionMatrixEntry) ([]model.RolePrediction, State) {
	if len(entries) > 0 {
		return p.FromMatrix(entries, skills), HasHistoricalTransitions
	}
	return p.Heuristic(role), NoHistoricalTransitions
}

// FromMatrix scales each row's probability by 0.5 + 0.5*skill_match_ratio
// and returns the topK by adjusted probability.
func (p *Predictor) FromMatrix(entries []model.TransitionMatrixEntry, skills []string) []model.RolePrediction {
	user := model.SkillSet(skills)
	out := make([]model.RolePrediction, 0, len(entries))
	for _, e := range entries {
		ratio, gap := skillMatch(e.RequiredSkills, user)
		prob := e.Probability * (skillMatchWeight + skillMatchWeight*ratio)
		out = append(out, model.RolePrediction{
			Role:            e.ToRole,
			Probability:     prob,
			TimeframeMonths: e.AvgDurationMonths,
			SkillGap:        gap,
			SkillMatchPct:   math.Round(ratio*100*skillMatchPctPrecision) / skillMatchPctPrecision,
			SuccessRate:     e.SuccessRate,
			Confidence:      model.ConfidenceLabel(prob),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	if len(out) > p.topK {
		out = out[:p.topK]
	}
	return out
}

// Heuristic proposes up to three roles from the progression table, or by
// seniority escalation of the title when the table has no entry.
func (p *Predictor) Heuristic(role string) []model.RolePrediction {
	candidates, ok := p.progressions[strings.ToLower(strings.TrimSpace(role))]
	if !ok {
		candidates = Escalate(role)
	}
	if len(candidates) > maxHeuristicCandidates {
		candidates = candidates[:maxHeuristicCandidates]
	}
	out := make([]model.RolePrediction, 0, len(candidates))
	for i, c := range candidates {
		out = append(out, model.RolePrediction{
			Role:            c,
			Probability:     heuristicProbabilities[i],
			TimeframeMonths: heuristicTimeframes[i],
			SkillGap:        []string{},
			SuccessRate:     HeuristicSuccessRate,
			Confidence:      model.ConfidenceLabel(heuristicProbabilities[i]),
		})
	}
	return out
}

// skillMatch returns |required ∩ user| / |required| and the required skills
// the user lacks. The ratio is neutral when either side is empty.
func skillMatch(required []string, user map[string]struct{}) (float64, []string) {
	gap := make([]string, 0, len(required))
	matched := 0
	for _, r := range required {
		if _, ok := user[model.SkillKey(r)]; ok {
			matched++
			continue
		}
		gap = append(gap, r)
	}
	if len(required) == 0 || len(user) == 0 {
		return neutralSkillMatchRatio, gap
	}
	return float64(matched) / float64(len(required)), gap
}

func normalizeTable(table map[string][]string) map[string][]string {
	out := make(map[string][]string, len(table))
	for k, v := range table {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
