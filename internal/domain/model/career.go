// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Defaults applied when the historical data source returns nulls.
const (
	DefaultDurationMonths  = 24
	DefaultSuccessRating   = 3
	DefaultYearsExperience = 0
	DefaultIndustry        = "Unknown"
	MaxSuccessRating       = 5
)

// TransitionFact is one observed role change. Nullable columns stay nil
// until aggregation or normalization decides how to default them.
type TransitionFact struct {
	UserID         string
	FromRole       string
	ToRole         string
	SkillsAcquired []string
	DurationMonths *int
	SuccessRating  *int
	TransitionDate time.Time
}

// TransitionMatrixEntry is the aggregate for one (from_role, to_role) pair.
type TransitionMatrixEntry struct {
	FromRole          string   `json:"from_role"`
	ToRole            string   `json:"to_role"`
	TransitionCount   int      `json:"transition_count"`
	Probability       float64  `json:"probability"`
	AvgDurationMonths int      `json:"avg_duration_months"`
	RequiredSkills    []string `json:"required_skills"`
	SuccessRate       float64  `json:"success_rate"`
	MatrixVersion     string   `json:"matrix_version,omitempty"`
}

// ProfileSnapshot is the read-only view of an alumnus used for training,
// inference and similarity search.
type ProfileSnapshot struct {
	ID              string   `json:"id,omitempty"`
	Name            string   `json:"name,omitempty"`
	CurrentRole     string   `json:"current_role" validate:"required,max=200"`
	Skills          []string `json:"skills" validate:"max=200,dive,max=100"`
	YearsExperience int      `json:"years_experience" validate:"gte=0,lte=80"`
	Industry        string   `json:"industry" validate:"max=200"`
	BatchYear       int      `json:"batch_year,omitempty"`
}

// Normalize returns a copy with trimmed strings, deduplicated skills and
// documented defaults for missing values. It is the only place defaults
// for profile fields are decided.
func (p ProfileSnapshot) Normalize() ProfileSnapshot {
	p.CurrentRole = strings.TrimSpace(p.CurrentRole)
	p.Industry = strings.TrimSpace(p.Industry)
	if p.Industry == "" {
		p.Industry = DefaultIndustry
	}
	if p.YearsExperience < 0 {
		p.YearsExperience = DefaultYearsExperience
	}
	p.Skills = NormalizeSkills(p.Skills)
	return p
}

// TrainingRow is a TransitionFact joined with the mover's profile.
type TrainingRow struct {
	FromRole        string
	ToRole          string
	CurrentSkills   []string
	YearsExperience *int
	Industry        *string
	DurationMonths  *int
	SuccessRating   *int
}

// Sample is a TrainingRow after null defaults have been applied.
type Sample struct {
	FromRole        string
	ToRole          string
	Skills          []string
	YearsExperience int
	Industry        string
	DurationMonths  int
	SuccessRating   int
}

// Normalize applies the data-source defaults: duration 24, success rating 3,
// experience 0, industry "Unknown".
func (r TrainingRow) Normalize() Sample {
	s := Sample{
		FromRole:        strings.TrimSpace(r.FromRole),
		ToRole:          strings.TrimSpace(r.ToRole),
		Skills:          NormalizeSkills(r.CurrentSkills),
		YearsExperience: DefaultYearsExperience,
		Industry:        DefaultIndustry,
		DurationMonths:  DefaultDurationMonths,
		SuccessRating:   DefaultSuccessRating,
	}
	if r.YearsExperience != nil && *r.YearsExperience >= 0 {
		s.YearsExperience = *r.YearsExperience
	}
	if r.Industry != nil && strings.TrimSpace(*r.Industry) != "" {
		s.Industry = strings.TrimSpace(*r.Industry)
	}
	if r.DurationMonths != nil {
		s.DurationMonths = *r.DurationMonths
	}
	if r.SuccessRating != nil {
		s.SuccessRating = *r.SuccessRating
	}
	return s
}

// NormalizeRows normalizes a batch of rows, dropping rows without both roles.
func NormalizeRows(rows []TrainingRow) []Sample {
	out := make([]Sample, 0, len(rows))
	for _, r := range rows {
		s := r.Normalize()
		if s.FromRole == "" || s.ToRole == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// NormalizeSkills trims, drops empties and removes case-insensitive
// duplicates while keeping first-seen order and spelling.
func NormalizeSkills(skills []string) []string {
	if len(skills) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := SkillKey(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// SkillKey is the comparison key for a skill name.
func SkillKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RoleKey is the comparison key for a role title. Matrix grouping and
// matrix lookups both match roles by it.
func RoleKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SkillSet builds a lookup set keyed by SkillKey.
func SkillSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		if k := SkillKey(s); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// IntPtr is a convenience for building nullable fields.
func IntPtr(v int) *int { return &v }

// StringPtr is a convenience for building nullable fields.
func StringPtr(v string) *string { return &v }
