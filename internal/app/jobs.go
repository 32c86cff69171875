package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	jobqueue "github.com/Ritik-JS/alumni-careerpath/internal/adapters/mq/queue"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/aggregate"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/training"
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
)

// Train runs the trainer synchronously and reloads the engine when a new
// model was published.
func (s *Service) Train(ctx context.Context, minSamples int) (*training.Outcome, error) {
	if s.trainer == nil {
		return nil, ErrNoTrainer
	}
	out, err := s.trainer.Train(ctx, minSamples)
	if err != nil {
		return out, err
	}
	if out.Success && s.engine != nil {
		if _, err := s.Reload(ctx); err != nil {
			s.logger.Warn(ctx, "trained model not loaded", logger.String("version", out.Version), logger.Error(err))
		}
	}
	return out, nil
}

// Aggregate rebuilds the transition matrix synchronously.
func (s *Service) Aggregate(ctx context.Context) (*aggregate.Result, error) {
	if s.aggregator == nil {
		return nil, ErrNoAggregator
	}
	return s.aggregator.Run(ctx)
}

// Submit queues a batch job. When a job of the same kind is already
// pending, its record is returned instead and created is false.
func (s *Service) Submit(ctx context.Context, kind model.JobKind, minSamples int) (rec model.JobRecord, created bool, err error) {
	switch kind {
	case model.JobTrain:
		if s.trainer == nil {
			return model.JobRecord{}, false, ErrNoTrainer
		}
	case model.JobAggregate:
		if s.aggregator == nil {
			return model.JobRecord{}, false, ErrNoAggregator
		}
	default:
		return model.JobRecord{}, false, fmt.Errorf("%w: %q", ErrUnknownJobKind, kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return model.JobRecord{}, false, ErrNotStarted
	}

	job := model.Job{ID: uuid.NewString(), Kind: kind, MinSamples: minSamples, RequestedAt: s.now().UTC()}
	holder, claimed := s.deduper.Claim(ctx, job.DedupeKey(), job.ID)
	if !claimed {
		if holder == "" {
			return model.JobRecord{}, false, ErrTooManyJobs
		}
		if existing, ok := s.jobs[holder]; ok {
			s.logger.Debug(ctx, "duplicate job suppressed",
				logger.String("kind", string(kind)),
				logger.String("pending", holder),
			)
			return *existing, false, nil
		}
		return model.JobRecord{}, false, fmt.Errorf("%w: pending %s", ErrJobNotFound, holder)
	}

	s.jobs[job.ID] = &model.JobRecord{
		ID:       job.ID,
		Kind:     kind,
		Status:   model.JobQueued,
		QueuedAt: job.RequestedAt,
	}
	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		delete(s.jobs, job.ID)
		s.deduper.Release(ctx, job.DedupeKey(), job.ID)
		if errors.Is(err, jobqueue.ErrFull) {
			return model.JobRecord{}, false, ErrQueueFull
		}
		return model.JobRecord{}, false, fmt.Errorf("enqueue job: %w", err)
	}
	s.pruneJobsLocked()

	s.logger.Info(ctx, "job queued", logger.String("job_id", job.ID), logger.String("kind", string(kind)))
	return *s.jobs[job.ID], true, nil
}

// Job returns the current record of a submitted job.
func (s *Service) Job(_ context.Context, id string) (model.JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.jobs[id]
	if !ok {
		return model.JobRecord{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return *rec, nil
}

// handle runs one dequeued job. The pending claim is released as soon as
// the job starts, so a request arriving mid-run queues a fresh job.
func (s *Service) handle(ctx context.Context, job model.Job) error {
	s.deduper.Release(ctx, job.DedupeKey(), job.ID)
	s.update(job.ID, func(r *model.JobRecord) {
		now := s.now().UTC()
		r.Status = model.JobRunning
		r.StartedAt = &now
	})

	var (
		result any
		err    error
	)
	switch job.Kind {
	case model.JobTrain:
		var out *training.Outcome
		out, err = s.Train(ctx, job.MinSamples)
		if out != nil {
			result = out
			if err == nil && !out.Success {
				err = out.Err()
			}
		}
	case model.JobAggregate:
		var res *aggregate.Result
		res, err = s.Aggregate(ctx)
		if res != nil {
			result = res
		}
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownJobKind, job.Kind)
	}

	s.update(job.ID, func(r *model.JobRecord) {
		now := s.now().UTC()
		r.FinishedAt = &now
		r.Result = result
		if err != nil {
			r.Status = model.JobFailed
			r.Message = err.Error()
			return
		}
		r.Status = model.JobSucceeded
	})
	return err
}

func (s *Service) update(id string, fn func(r *model.JobRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.jobs[id]; ok {
		fn(r)
	}
}

// pruneJobsLocked drops the oldest finished records beyond maxJobRecords.
func (s *Service) pruneJobsLocked() {
	if len(s.jobs) <= maxJobRecords {
		return
	}
	finished := make([]*model.JobRecord, 0, len(s.jobs))
	for _, r := range s.jobs {
		if r.FinishedAt != nil {
			finished = append(finished, r)
		}
	}
	sort.Slice(finished, func(i, j int) bool {
		return finished[i].FinishedAt.Before(*finished[j].FinishedAt)
	})
	for _, r := range finished {
		if len(s.jobs) <= maxJobRecords {
			return
		}
		delete(s.jobs, r.ID)
	}
}
