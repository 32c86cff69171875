package encoding

import (
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/pkg/metrics"
)

// Feature names for the fixed numeric prefix of every vector.
const (
	FeatureRole            = "role"
	FeatureYearsExperience = "years_experience"
	FeatureDurationMonths  = "duration_months"
	FeatureSuccessRating   = "success_rating"
	FeatureIndustry        = "industry"
	FeatureSkill           = "skill"

	skillFeaturePrefix = "skill_"
	numericPrefixWidth = 5
)

// Features is the encoder input: one normalized profile plus the transition
// context columns.
type Features struct {
	Role            string
	Skills          []string
	YearsExperience int
	Industry        string
	DurationMonths  int
	SuccessRating   int
}

// FromSample builds encoder input from a training sample.
func FromSample(s model.Sample) Features {
	return Features{
		Role:            s.FromRole,
		Skills:          s.Skills,
		YearsExperience: s.YearsExperience,
		Industry:        s.Industry,
		DurationMonths:  s.DurationMonths,
		SuccessRating:   s.SuccessRating,
	}
}

// FromProfile builds encoder input for inference. Transition context is not
// known for a query, so the data-source defaults are used.
func FromProfile(p model.ProfileSnapshot) Features {
	p = p.Normalize()
	return Features{
		Role:            p.CurrentRole,
		Skills:          p.Skills,
		YearsExperience: p.YearsExperience,
		Industry:        p.Industry,
		DurationMonths:  model.DefaultDurationMonths,
		SuccessRating:   model.DefaultSuccessRating,
	}
}

// Bundle holds the encoders fit on one training corpus. It is immutable once
// fit and is always persisted next to the classifier trained against it.
type Bundle struct {
	Roles        *LabelEncoder
	Skills       *LabelEncoder
	Industries   *LabelEncoder
	FeatureNames []string
}

// Fit builds a bundle from training samples. The role vocabulary covers both
// from_role and to_role so that every class the classifier can emit decodes
// to a known role.
func Fit(samples []model.Sample) *Bundle {
	roles := make([]string, 0, 2*len(samples))
	var skills, industries []string
	for _, s := range samples {
		roles = append(roles, s.FromRole, s.ToRole)
		for _, sk := range s.Skills {
			skills = append(skills, model.SkillKey(sk))
		}
		industries = append(industries, s.Industry)
	}

	b := &Bundle{
		Roles:      FitLabels(roles),
		Skills:     FitLabels(skills),
		Industries: FitLabels(industries),
	}
	b.FeatureNames = append([]string{
		FeatureRole,
		FeatureYearsExperience,
		FeatureDurationMonths,
		FeatureSuccessRating,
		FeatureIndustry,
	}, prefixed(b.Skills.Classes())...)
	return b
}

func prefixed(skills []string) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = skillFeaturePrefix + s
	}
	return out
}

// Width is the length of every vector produced by Transform.
func (b *Bundle) Width() int {
	return numericPrefixWidth + len(b.Skills.Classes())
}

// Transform encodes f. It never fails: values outside the fitted vocabulary
// become index 0 (or are left unset in the multi-hot block) and are reported
// in the returned list of unknown feature names.
func (b *Bundle) Transform(f Features) ([]float64, []string) {
	vec := make([]float64, b.Width())
	var unknown []string

	role, ok := b.Roles.Index(f.Role)
	if !ok {
		unknown = append(unknown, FeatureRole)
	}
	industry, ok := b.Industries.Index(f.Industry)
	if !ok {
		unknown = append(unknown, FeatureIndustry)
	}

	vec[0] = float64(role)
	vec[1] = float64(f.YearsExperience)
	vec[2] = float64(f.DurationMonths)
	vec[3] = float64(f.SuccessRating)
	vec[4] = float64(industry)

	missedSkill := false
	for _, s := range f.Skills {
		i, ok := b.Skills.Index(model.SkillKey(s))
		if !ok {
			missedSkill = true
			continue
		}
		vec[numericPrefixWidth+i-1] = 1
	}
	if missedSkill {
		unknown = append(unknown, FeatureSkill)
	}

	for _, name := range unknown {
		metrics.RecordUnknownCategory(name)
	}
	return vec, unknown
}

// Target returns the class index for a training sample's to_role.
func (b *Bundle) Target(s model.Sample) int {
	i, _ := b.Roles.Index(s.ToRole)
	return i
}

// Decode maps a class index back to its role label.
func (b *Bundle) Decode(class int) (string, bool) {
	return b.Roles.Label(class)
}

// NumClasses is the number of classifier outputs, including unknown.
func (b *Bundle) NumClasses() int {
	return b.Roles.Size()
}
