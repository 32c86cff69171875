package forest

import "errors"

var (
	ErrEmptyDataset  = errors.New("empty training set")
	ErrShapeMismatch = errors.New("feature matrix shape mismatch")
	ErrInvalidParams = errors.New("invalid forest parameters")
)
