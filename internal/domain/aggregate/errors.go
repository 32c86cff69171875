package aggregate

import "errors"

// Sentinel kinds for aggregation errors.
var (
	ErrReadFacts   = errors.New("read transition facts failed")
	ErrWriteMatrix = errors.New("write transition matrix failed")
)
