package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidProfile = errors.New("profile requires a current role")
	ErrUnknownJobKind = errors.New("unknown job kind")
	ErrJobNotFound    = errors.New("job not found")
	ErrQueueFull      = errors.New("job queue full")
	ErrTooManyJobs    = errors.New("too many pending jobs")
	ErrNotStarted     = errors.New("service not started")
	ErrNoTrainer      = errors.New("training is not configured")
	ErrNoAggregator   = errors.New("aggregation is not configured")
)
