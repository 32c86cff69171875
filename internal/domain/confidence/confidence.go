// Package confidence scores how much data backs a prediction.
package confidence

// Score weights. The total is capped at Max.
const (
	Base             = 0.5
	Max              = 0.95
	ManyTransitions  = 0.3
	FewTransitions   = 0.2
	SkillsBonus      = 0.1
	ExperienceBonus  = 0.1
	manyTransitionsN = 5
	fewTransitionsN  = 2
	skillsN          = 5
	experienceYears  = 3
)

// Signals are the data-availability counts behind one prediction.
type Signals struct {
	Transitions     int
	Skills          int
	YearsExperience int
}

// Score returns 0.5 plus bonuses for transition history, skill count and
// experience, capped at 0.95. It is monotone in every signal.
func Score(s Signals) float64 {
	score := Base
	switch {
	case s.Transitions >= manyTransitionsN:
		score += ManyTransitions
	case s.Transitions >= fewTransitionsN:
		score += FewTransitions
	}
	if s.Skills >= skillsN {
		score += SkillsBonus
	}
	if s.YearsExperience >= experienceYears {
		score += ExperienceBonus
	}
	if score > Max {
		return Max
	}
	return score
}
