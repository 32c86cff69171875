package artifact

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotFound wraps fs.ErrNotExist so callers can treat a missing
	// artifact like a missing file.
	ErrNotFound         = fmt.Errorf("artifact not found: %w", fs.ErrNotExist)
	ErrVersionExists    = errors.New("artifact version already exists")
	ErrChecksumMismatch = errors.New("artifact checksum mismatch")
	ErrInvalidVersion   = errors.New("invalid artifact version")
	ErrIncomplete       = errors.New("artifact is missing its classifier or encoder bundle")
)
