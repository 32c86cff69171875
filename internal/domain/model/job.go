package model

import "time"

// JobKind identifies a batch job.
type JobKind string

// Batch job kinds.
const (
	JobTrain     JobKind = "train"
	JobAggregate JobKind = "aggregate"
)

// JobStatus is the lifecycle state of a batch job.
type JobStatus string

// Job lifecycle states.
const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job is the payload flowing through the batch job queue.
type Job struct {
	ID          string
	Kind        JobKind
	MinSamples  int
	RequestedAt time.Time
}

// DedupeKey identifies jobs that would do identical work.
func (j Job) DedupeKey() string {
	return string(j.Kind)
}

// JobRecord is the externally visible state of a job.
type JobRecord struct {
	ID         string     `json:"id"`
	Kind       JobKind    `json:"kind"`
	Status     JobStatus  `json:"status"`
	Message    string     `json:"message,omitempty"`
	Result     any        `json:"result,omitempty"`
	QueuedAt   time.Time  `json:"queued_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
