package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound           = errors.New("record not found")
	ErrUnavailable        = errors.New("data source unavailable")
	ErrUnsupportedDriver  = errors.New("unsupported database driver")
	ErrInvalidBand        = errors.New("invalid experience band")
	ErrMissingTransitions = errors.New("transition requires from and to roles")
)
