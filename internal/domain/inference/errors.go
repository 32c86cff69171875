package inference

import "errors"

var (
	// ErrModelUnavailable means no artifact has been loaded; callers fall
	// back to rule-based prediction.
	ErrModelUnavailable   = errors.New("model unavailable")
	ErrIncompleteArtifact = errors.New("artifact is missing its classifier or encoder bundle")
)
