package model

import "time"

// Strategy names which predictor produced a result.
type Strategy string

// Prediction strategies, in order of preference.
const (
	StrategyMatrix    Strategy = "matrix"
	StrategyModel     Strategy = "model"
	StrategyHeuristic Strategy = "heuristic"
)

// Confidence bucket labels for a single role probability.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// ConfidenceLabel buckets a probability: high (>0.5), medium (>0.2), low.
func ConfidenceLabel(p float64) string {
	switch {
	case p > 0.5:
		return ConfidenceHigh
	case p > 0.2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// RolePrediction is one candidate next role.
type RolePrediction struct {
	Role            string   `json:"role"`
	Probability     float64  `json:"probability"`
	TimeframeMonths int      `json:"timeframe_months"`
	SkillGap        []string `json:"skill_gap"`
	SkillMatchPct   float64  `json:"skill_match_pct"`
	SuccessRate     float64  `json:"success_rate"`
	Confidence      string   `json:"confidence"`
}

// SimilarAlumnus is corroborating evidence attached to a prediction.
type SimilarAlumnus struct {
	ProfileID       string   `json:"profile_id"`
	Name            string   `json:"name,omitempty"`
	CurrentRole     string   `json:"current_role"`
	YearsExperience int      `json:"years_experience"`
	Similarity      float64  `json:"similarity"`
	CommonSkills    []string `json:"common_skills"`
}

// PredictionResult is the engine's answer for one profile. It is derived
// data: safe to recompute, persisted only as an audit trail.
type PredictionResult struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id,omitempty"`
	CurrentRole     string           `json:"current_role"`
	Strategy        Strategy         `json:"strategy"`
	ModelVersion    string           `json:"model_version,omitempty"`
	PredictedRoles  []RolePrediction `json:"predicted_roles"`
	ConfidenceScore float64          `json:"confidence_score"`
	SimilarAlumni   []SimilarAlumnus `json:"similar_alumni"`
	GeneratedAt     time.Time        `json:"generated_at"`
}
