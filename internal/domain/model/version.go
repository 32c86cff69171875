package model

import "time"

// VersionLayout formats version ids so that lexical order is time order.
const VersionLayout = "20060102T150405.000000000Z"

// NewVersion returns the version id for t.
func NewVersion(t time.Time) string {
	return t.UTC().Format(VersionLayout)
}

// ModelRecord is the registry row written for every published model.
type ModelRecord struct {
	Version         string    `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	TrainSamples    int       `json:"train_samples"`
	TestSamples     int       `json:"test_samples"`
	Strategy        string    `json:"strategy"`
	Hyperparameters any       `json:"hyperparameters"`
	Metrics         any       `json:"metrics"`
}
