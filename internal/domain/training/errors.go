package training

import (
	"errors"
	"fmt"
)

// Training stages reported in TrainingError.
const (
	StageExtract  = "extract"
	StageEncode   = "encode"
	StageSearch   = "search"
	StageFit      = "fit"
	StageEvaluate = "evaluate"
	StagePublish  = "publish"
)

// ErrNoRowSource is returned when a trainer is built without a data source.
var ErrNoRowSource = errors.New("training row source is nil")

// InsufficientDataError reports a corpus below the minimum sample threshold.
// It is a soft condition carried in Outcome, never returned as a failure.
type InsufficientDataError struct {
	Current  int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient training data: have %d samples, need %d more", e.Current, e.Missing())
}

// Missing is the number of additional samples needed.
func (e *InsufficientDataError) Missing() int {
	if e.Required <= e.Current {
		return 0
	}
	return e.Required - e.Current
}

// TrainingError is a failure fatal to one training run.
type TrainingError struct {
	Stage string
	Err   error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training failed at %s: %v", e.Stage, e.Err)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) error {
	return &TrainingError{Stage: stage, Err: err}
}
