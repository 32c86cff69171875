package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Ritik-JS/alumni-careerpath/internal/adapters/cache"
	service "github.com/Ritik-JS/alumni-careerpath/internal/app"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/rules"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/training"
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type fakeMatrix struct {
	rows map[string][]model.TransitionMatrixEntry
	err  error
}

func (m *fakeMatrix) MatrixFor(_ context.Context, role string) ([]model.TransitionMatrixEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rows[role], nil
}

type fakeAudit struct {
	mu    sync.Mutex
	saved []model.PredictionResult
	err   error
}

func (a *fakeAudit) SavePrediction(_ context.Context, res model.PredictionResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.saved = append(a.saved, res)
	return nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]*model.PredictionResult
	sets int
}

func (c *fakeCache) Get(_ context.Context, key string) (*model.PredictionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.data[key]
	return res, ok
}

func (c *fakeCache) Set(_ context.Context, key string, res *model.PredictionResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = res
	c.sets++
	return nil
}

func cacheKey(version string, p model.ProfileSnapshot) string {
	return version + "|" + p.CurrentRole
}

func analystRows() map[string][]model.TransitionMatrixEntry {
	return map[string][]model.TransitionMatrixEntry{
		"Data Analyst": {
			{FromRole: "Data Analyst", ToRole: "Data Scientist", TransitionCount: 6, Probability: 0.6, AvgDurationMonths: 18, RequiredSkills: []string{"Python"}, SuccessRate: 0.8, MatrixVersion: "m1"},
			{FromRole: "Data Analyst", ToRole: "Senior Data Analyst", TransitionCount: 4, Probability: 0.4, AvgDurationMonths: 24, RequiredSkills: []string{"SQL"}, SuccessRate: 0.9, MatrixVersion: "m1"},
		},
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Started(), ShouldBeFalse)
			So(svc.Model().Loaded, ShouldBeFalse)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithQueueSize(4),
			service.WithDedupeSize(8),
			service.WithJobTimeout(time.Minute),
		)

		Convey("Then stats reflect the configuration", func() {
			stats := svc.GetStats(context.Background())
			So(stats["queueSize"], ShouldEqual, 4)
			So(stats["dedupeSize"], ShouldEqual, 8)
			So(stats["started"], ShouldEqual, false)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats(ctx)["started"], ShouldEqual, true)
				So(svc.GetStats(ctx)["queueLength"], ShouldEqual, 0)
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
				So(svc.Started(), ShouldBeTrue)
			})

			Convey("And stopping marks it stopped", func() {
				svc.Stop()
				So(svc.Started(), ShouldBeFalse)
				So(svc.GetStats(ctx)["started"], ShouldEqual, false)

				Convey("And stopping again is safe", func() {
					So(func() { svc.Stop() }, ShouldNotPanic)
				})
			})
		})
	})
}

func TestService_Predict(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with matrix rows for Data Analyst", t, func() {
		audit := &fakeAudit{}
		svc := service.New(
			service.WithMatrix(&fakeMatrix{rows: analystRows()}),
			service.WithAudit(audit),
		)

		Convey("When a Data Analyst with Python asks for predictions", func() {
			res, err := svc.Predict(ctx, model.ProfileSnapshot{ID: "u1", CurrentRole: "Data Analyst", Skills: []string{"python"}, YearsExperience: 3})

			Convey("Then the matrix answers with skill-adjusted ranking", func() {
				So(err, ShouldBeNil)
				So(res.Strategy, ShouldEqual, model.StrategyMatrix)
				So(res.ModelVersion, ShouldEqual, "m1")
				So(res.PredictedRoles[0].Role, ShouldEqual, "Data Scientist")
				So(res.PredictedRoles[0].Probability, ShouldAlmostEqual, 0.6, 1e-9)
				So(res.PredictedRoles[0].SkillGap, ShouldBeEmpty)
				So(res.PredictedRoles[1].SkillGap, ShouldResemble, []string{"SQL"})
				So(res.UserID, ShouldEqual, "u1")
				So(res.ID, ShouldNotBeEmpty)
				So(res.SimilarAlumni, ShouldNotBeNil)
				So(res.SimilarAlumni, ShouldBeEmpty)
			})

			Convey("Then confidence grows with the transition evidence", func() {
				So(res.ConfidenceScore, ShouldBeGreaterThan, 0)
				So(res.ConfidenceScore, ShouldBeLessThanOrEqualTo, 1)
			})

			Convey("Then the prediction is audited", func() {
				So(len(audit.saved), ShouldEqual, 1)
				So(audit.saved[0].ID, ShouldEqual, res.ID)
			})
		})

		Convey("When a role without rows asks for predictions", func() {
			res, err := svc.Predict(ctx, model.ProfileSnapshot{CurrentRole: "Product Manager"})

			Convey("Then heuristics answer", func() {
				So(err, ShouldBeNil)
				So(res.Strategy, ShouldEqual, model.StrategyHeuristic)
				So(res.ModelVersion, ShouldBeEmpty)
				So(res.PredictedRoles[0].Role, ShouldEqual, "Senior Product Manager")
			})
		})

		Convey("When the role is blank", func() {
			_, err := svc.Predict(ctx, model.ProfileSnapshot{CurrentRole: "   "})

			Convey("Then the profile is rejected", func() {
				So(errors.Is(err, service.ErrInvalidProfile), ShouldBeTrue)
			})
		})
	})

	Convey("Given a matrix source that fails and an audit writer that fails", t, func() {
		svc := service.New(
			service.WithMatrix(&fakeMatrix{err: errors.New("db down")}),
			service.WithAudit(&fakeAudit{err: errors.New("db down")}),
		)

		Convey("When predicting", func() {
			res, err := svc.Predict(ctx, model.ProfileSnapshot{CurrentRole: "Data Analyst"})

			Convey("Then the heuristic still answers", func() {
				So(err, ShouldBeNil)
				So(res.Strategy, ShouldEqual, model.StrategyHeuristic)
				So(res.PredictedRoles[0].Role, ShouldEqual, "Senior Data Analyst")
			})
		})
	})

	Convey("Given a service with a prediction cache", t, func() {
		c := &fakeCache{data: map[string]*model.PredictionResult{}}
		audit := &fakeAudit{}
		svc := service.New(
			service.WithMatrix(&fakeMatrix{rows: analystRows()}),
			service.WithAudit(audit),
			service.WithCache(c, cacheKey),
		)

		Convey("When the same profile is predicted twice", func() {
			first, err := svc.Predict(ctx, model.ProfileSnapshot{CurrentRole: "Data Analyst"})
			So(err, ShouldBeNil)
			second, err := svc.Predict(ctx, model.ProfileSnapshot{CurrentRole: "Data Analyst"})
			So(err, ShouldBeNil)

			Convey("Then the second answer comes from the cache", func() {
				So(second.ID, ShouldEqual, first.ID)
				So(c.sets, ShouldEqual, 1)
				So(len(audit.saved), ShouldEqual, 1)
			})

			Convey("Then the cache key carries the model and persisted matrix version", func() {
				_, ok := c.data["none/m1|Data Analyst"]
				So(ok, ShouldBeTrue)
			})

			Convey("Then only the computed prediction is audited", func() {
				So(len(audit.saved), ShouldEqual, 1)
				So(audit.saved[0].ID, ShouldEqual, first.ID)
			})
		})

		Convey("When a role without matrix rows is predicted", func() {
			_, err := svc.Predict(ctx, model.ProfileSnapshot{CurrentRole: "Astronaut"})
			So(err, ShouldBeNil)

			Convey("Then the matrix part of the key is none", func() {
				_, ok := c.data["none/none|Astronaut"]
				So(ok, ShouldBeTrue)
			})
		})
	})

	Convey("Given a service caching under the production key", t, func() {
		c := &fakeCache{data: map[string]*model.PredictionResult{}}
		svc := service.New(service.WithCache(c, cache.Key))

		Convey("When two spellings of a role are predicted", func() {
			lower, err := svc.Predict(ctx, model.ProfileSnapshot{CurrentRole: "senior data analyst"})
			So(err, ShouldBeNil)
			upper, err := svc.Predict(ctx, model.ProfileSnapshot{CurrentRole: "Senior Data Analyst"})
			So(err, ShouldBeNil)

			Convey("Then each is computed and answered for its own spelling", func() {
				So(c.sets, ShouldEqual, 2)
				So(upper.ID, ShouldNotEqual, lower.ID)
				So(lower.CurrentRole, ShouldEqual, "senior data analyst")
				So(upper.CurrentRole, ShouldEqual, "Senior Data Analyst")
				So(upper.PredictedRoles[0].Role, ShouldEqual, rules.Escalate("Senior Data Analyst")[0])
			})
		})
	})
}

func TestService_Jobs(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service without a trainer or aggregator", t, func() {
		svc := service.New()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then training and aggregation report missing components", func() {
			_, _, err := svc.Submit(ctx, model.JobTrain, 0)
			So(errors.Is(err, service.ErrNoTrainer), ShouldBeTrue)
			_, _, err = svc.Submit(ctx, model.JobAggregate, 0)
			So(errors.Is(err, service.ErrNoAggregator), ShouldBeTrue)
			_, err = svc.Train(ctx, 0)
			So(errors.Is(err, service.ErrNoTrainer), ShouldBeTrue)
			_, err = svc.Aggregate(ctx)
			So(errors.Is(err, service.ErrNoAggregator), ShouldBeTrue)
		})

		Convey("Then unknown job kinds are rejected", func() {
			_, _, err := svc.Submit(ctx, model.JobKind("reindex"), 0)
			So(errors.Is(err, service.ErrUnknownJobKind), ShouldBeTrue)
		})

		Convey("Then unknown job ids are not found", func() {
			_, err := svc.Job(ctx, "missing")
			So(errors.Is(err, service.ErrJobNotFound), ShouldBeTrue)
		})

		Convey("Then reload reports no model", func() {
			_, err := svc.Reload(ctx)
			So(err, ShouldNotBeNil)
		})
	})
}

// blockingRows holds the trainer in its extract stage until release is closed.
type blockingRows struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingRows) TrainingRows(ctx context.Context, _ time.Time) ([]model.TrainingRow, error) {
	b.once.Do(func() { close(b.entered) })
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return nil, nil
}

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, *training.Artifact) error { return nil }

func waitForStatus(svc *service.Service, id string, want model.JobStatus) model.JobRecord {
	deadline := time.Now().Add(5 * time.Second)
	for {
		rec, err := svc.Job(context.Background(), id)
		if err == nil && rec.Status == want {
			return rec
		}
		if time.Now().After(deadline) {
			return rec
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestService_JobDedupe(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service whose trainer blocks", t, func() {
		src := &blockingRows{entered: make(chan struct{}), release: make(chan struct{})}
		svc := service.New(service.WithTrainer(training.New(src, discardPublisher{})))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a second request arrives while the first job runs", func() {
			first, created, err := svc.Submit(ctx, model.JobTrain, 30)
			So(err, ShouldBeNil)
			So(created, ShouldBeTrue)
			So(first.Status, ShouldEqual, model.JobQueued)
			<-src.entered

			second, created, err := svc.Submit(ctx, model.JobTrain, 30)
			So(err, ShouldBeNil)
			So(created, ShouldBeTrue)
			dup, created, err := svc.Submit(ctx, model.JobTrain, 30)
			So(err, ShouldBeNil)

			Convey("Then only one job is queued behind the running one", func() {
				So(second.ID, ShouldNotEqual, first.ID)
				So(created, ShouldBeFalse)
				So(dup.ID, ShouldEqual, second.ID)
				rec, err := svc.Job(ctx, first.ID)
				So(err, ShouldBeNil)
				So(rec.Status, ShouldEqual, model.JobRunning)
				So(rec.StartedAt, ShouldNotBeNil)
				close(src.release)
			})

			Convey("Then both jobs finish with insufficient data once released", func() {
				close(src.release)
				a := waitForStatus(svc, first.ID, model.JobFailed)
				b := waitForStatus(svc, second.ID, model.JobFailed)
				So(a.Status, ShouldEqual, model.JobFailed)
				So(a.Message, ShouldContainSubstring, "need 30 more")
				So(a.FinishedAt, ShouldNotBeNil)
				So(b.Status, ShouldEqual, model.JobFailed)
				out, ok := a.Result.(*training.Outcome)
				So(ok, ShouldBeTrue)
				So(out.RequiredSamples, ShouldEqual, 30)
			})
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New(service.WithTrainer(training.New(&blockingRows{}, discardPublisher{})))

		Convey("Then jobs cannot be submitted", func() {
			_, _, err := svc.Submit(ctx, model.JobTrain, 0)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}
