package inference

import (
	"time"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/training"
)

// ModelInfo describes a loaded classifier.
type ModelInfo struct {
	Loaded       bool              `json:"loaded"`
	Version      string            `json:"version,omitempty"`
	LoadedAt     *time.Time        `json:"loaded_at,omitempty"`
	CreatedAt    *time.Time        `json:"created_at,omitempty"`
	Strategy     string            `json:"strategy,omitempty"`
	TrainSamples int               `json:"train_samples,omitempty"`
	TestSamples  int               `json:"test_samples,omitempty"`
	Stratified   bool              `json:"stratified,omitempty"`
	Classes      []string          `json:"classes,omitempty"`
	Metrics      *training.Metrics `json:"metrics,omitempty"`
}

// Info describes h. A nil handle describes "no model loaded".
func (h *Handle) Info() ModelInfo {
	if h == nil || h.Artifact == nil {
		return ModelInfo{}
	}
	a := h.Artifact
	loadedAt, createdAt, scores := h.LoadedAt, a.CreatedAt, a.Metrics
	info := ModelInfo{
		Loaded:       true,
		Version:      h.Version,
		LoadedAt:     &loadedAt,
		CreatedAt:    &createdAt,
		Strategy:     string(a.Strategy.Kind),
		TrainSamples: a.TrainSamples,
		TestSamples:  a.TestSamples,
		Stratified:   a.Stratified,
		Metrics:      &scores,
	}
	if a.Bundle != nil && a.Bundle.Roles != nil {
		info.Classes = a.Bundle.Roles.Classes()
	}
	return info
}
