package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ritik-JS/alumni-careerpath/internal/adapters/repository"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/aggregate"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/pkg/retry"
	. "github.com/smartystreets/goconvey/convey"
)

func openStore(ctx context.Context) *repository.Store {
	s, err := repository.Open(ctx, repository.DriverSQLite, ":memory:",
		repository.WithRetryPolicy(retry.Policy{MaxAttempts: 1}),
	)
	So(err, ShouldBeNil)
	So(s.Migrate(ctx), ShouldBeNil)
	return s
}

func TestStoreReads(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given a migrated SQLite store with profiles and transitions", t, func() {
		s := openStore(ctx)
		defer s.Close()

		aliceID, err := s.UpsertProfile(ctx, model.ProfileSnapshot{ID: "alice", Name: "Alice", CurrentRole: "Senior Data Analyst", Skills: []string{"SQL", "Python"}, YearsExperience: 4, Industry: "Tech"})
		So(err, ShouldBeNil)
		So(aliceID, ShouldEqual, "alice")
		_, err = s.UpsertProfile(ctx, model.ProfileSnapshot{ID: "bob", CurrentRole: "Data Scientist", Skills: []string{"Python"}, YearsExperience: 9})
		So(err, ShouldBeNil)

		_, err = s.InsertTransition(ctx, model.TransitionFact{UserID: "alice", FromRole: "Data Analyst", ToRole: "Senior Data Analyst", SkillsAcquired: []string{"SQL"}, DurationMonths: model.IntPtr(20), SuccessRating: model.IntPtr(4), TransitionDate: base})
		So(err, ShouldBeNil)
		_, err = s.InsertTransition(ctx, model.TransitionFact{UserID: "ghost", FromRole: "Data Analyst", ToRole: "Data Scientist", TransitionDate: base.Add(24 * time.Hour)})
		So(err, ShouldBeNil)
		_, err = s.InsertTransition(ctx, model.TransitionFact{UserID: "bob", FromRole: "Intern", ToRole: "Data Analyst", TransitionDate: base.AddDate(-5, 0, 0)})
		So(err, ShouldBeNil)

		Convey("When transition facts are read since a cutoff", func() {
			facts, err := s.TransitionFacts(ctx, base.AddDate(-1, 0, 0))

			Convey("Then only recent facts are returned, oldest first, with nulls kept", func() {
				So(err, ShouldBeNil)
				So(len(facts), ShouldEqual, 2)
				So(facts[0].ToRole, ShouldEqual, "Senior Data Analyst")
				So(facts[0].SkillsAcquired, ShouldResemble, []string{"SQL"})
				So(*facts[0].DurationMonths, ShouldEqual, 20)
				So(facts[0].TransitionDate.Equal(base), ShouldBeTrue)
				So(facts[1].DurationMonths, ShouldBeNil)
				So(facts[1].SuccessRating, ShouldBeNil)
			})
		})

		Convey("When training rows are read", func() {
			rows, err := s.TrainingRows(ctx, base.AddDate(-1, 0, 0))

			Convey("Then each transition is joined with the mover's profile", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				So(rows[0].CurrentSkills, ShouldResemble, []string{"SQL", "Python"})
				So(*rows[0].YearsExperience, ShouldEqual, 4)
				So(*rows[0].Industry, ShouldEqual, "Tech")
			})

			Convey("Then movers without a profile normalize to defaults", func() {
				sample := rows[1].Normalize()
				So(sample.YearsExperience, ShouldEqual, 0)
				So(sample.Industry, ShouldEqual, model.DefaultIndustry)
				So(sample.DurationMonths, ShouldEqual, 24)
				So(sample.SuccessRating, ShouldEqual, 3)
				So(sample.Skills, ShouldBeEmpty)
			})
		})

		Convey("When profiles are read by experience band", func() {
			ps, err := s.ProfilesInExperienceBand(ctx, 1, 7)

			Convey("Then only profiles inside the band are returned", func() {
				So(err, ShouldBeNil)
				So(len(ps), ShouldEqual, 1)
				So(ps[0].ID, ShouldEqual, "alice")
				So(ps[0].CurrentRole, ShouldEqual, "Senior Data Analyst")
			})

			Convey("Then an inverted band is rejected", func() {
				_, err := s.ProfilesInExperienceBand(ctx, 5, 1)
				So(errors.Is(err, repository.ErrInvalidBand), ShouldBeTrue)
			})
		})

		Convey("When a profile is upserted again", func() {
			_, err := s.UpsertProfile(ctx, model.ProfileSnapshot{ID: "alice", CurrentRole: "Data Scientist", YearsExperience: 5})
			So(err, ShouldBeNil)

			Convey("Then the row is replaced", func() {
				p, err := s.Profile(ctx, "alice")
				So(err, ShouldBeNil)
				So(p.CurrentRole, ShouldEqual, "Data Scientist")
				So(p.Skills, ShouldBeEmpty)
			})
		})

		Convey("When an unknown profile is requested", func() {
			_, err := s.Profile(ctx, "nobody")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a transition lacks a role", func() {
			_, err := s.InsertTransition(ctx, model.TransitionFact{FromRole: "Analyst"})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, repository.ErrMissingTransitions), ShouldBeTrue)
			})
		})
	})
}

func TestStoreMatrix(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store fed through the aggregator", t, func() {
		s := openStore(ctx)
		defer s.Close()

		now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			_, err := s.InsertTransition(ctx, model.TransitionFact{UserID: "u", FromRole: "Data Analyst", ToRole: "Senior Data Analyst", SkillsAcquired: []string{"SQL"}, TransitionDate: now.AddDate(0, -i-1, 0)})
			So(err, ShouldBeNil)
		}
		_, err := s.InsertTransition(ctx, model.TransitionFact{UserID: "u", FromRole: "Data Analyst", ToRole: "Data Scientist", TransitionDate: now.AddDate(0, -1, 0)})
		So(err, ShouldBeNil)

		agg := aggregate.New(s, s, aggregate.WithClock(func() time.Time { return now }))
		res, err := agg.Run(ctx)
		So(err, ShouldBeNil)
		So(res.Entries, ShouldEqual, 2)

		Convey("Then MatrixFor returns rows in aggregate order, case-insensitively", func() {
			rows, err := s.MatrixFor(ctx, "  data analyst")
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 2)
			So(rows[0].ToRole, ShouldEqual, "Senior Data Analyst")
			So(rows[0].Probability, ShouldAlmostEqual, 0.75, 1e-9)
			So(rows[0].RequiredSkills, ShouldResemble, []string{"SQL"})
			So(rows[0].MatrixVersion, ShouldEqual, res.Version)
			So(rows[1].RequiredSkills, ShouldBeEmpty)
		})

		Convey("When the aggregator runs again", func() {
			again, err := agg.Run(ctx)
			So(err, ShouldBeNil)

			Convey("Then the matrix is replaced, not appended", func() {
				all, err := s.Matrix(ctx)
				So(err, ShouldBeNil)
				So(len(all), ShouldEqual, 2)
				So(all[0].MatrixVersion, ShouldEqual, again.Version)
			})
		})

		Convey("Then Counts reflects the tables", func() {
			c, err := s.Counts(ctx)
			So(err, ShouldBeNil)
			So(c.Transitions, ShouldEqual, 4)
			So(c.MatrixEntries, ShouldEqual, 2)
			So(c.MatrixVersion, ShouldEqual, res.Version)
		})

		Convey("Then an unknown role has no rows", func() {
			rows, err := s.MatrixFor(ctx, "Astronaut")
			So(err, ShouldBeNil)
			So(rows, ShouldBeEmpty)
		})
	})

	Convey("Given transitions whose from_role differs only in case", t, func() {
		s := openStore(ctx)
		defer s.Close()

		now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			_, err := s.InsertTransition(ctx, model.TransitionFact{UserID: "u", FromRole: "Software Engineer", ToRole: "Senior Software Engineer", TransitionDate: now.AddDate(0, -i-1, 0)})
			So(err, ShouldBeNil)
		}
		_, err := s.InsertTransition(ctx, model.TransitionFact{UserID: "v", FromRole: "software engineer", ToRole: "Tech Lead", TransitionDate: now.AddDate(0, -1, 0)})
		So(err, ShouldBeNil)

		_, err = aggregate.New(s, s, aggregate.WithClock(func() time.Time { return now })).Run(ctx)
		So(err, ShouldBeNil)

		Convey("Then MatrixFor returns one distribution summing to one", func() {
			for _, role := range []string{"Software Engineer", "software engineer"} {
				rows, err := s.MatrixFor(ctx, role)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				sum := 0.0
				for _, r := range rows {
					sum += r.Probability
				}
				So(sum, ShouldAlmostEqual, 1.0, 1e-9)
				So(rows[0].Probability, ShouldAlmostEqual, 0.75, 1e-9)
				So(rows[1].Probability, ShouldAlmostEqual, 0.25, 1e-9)
			}
		})
	})
}

func TestStoreAudit(t *testing.T) {
	ctx := context.Background()

	Convey("Given a migrated store", t, func() {
		s := openStore(ctx)
		defer s.Close()

		Convey("When a model and a prediction are recorded", func() {
			err := s.RecordModel(ctx, model.ModelRecord{Version: "v1", CreatedAt: time.Now(), TrainSamples: 40, TestSamples: 10, Strategy: "small_grid", Hyperparameters: map[string]int{"n_estimators": 50}, Metrics: map[string]float64{"accuracy": 0.8}})
			So(err, ShouldBeNil)
			err = s.SavePrediction(ctx, model.PredictionResult{CurrentRole: "Analyst", Strategy: model.StrategyHeuristic, ConfidenceScore: 0.6, GeneratedAt: time.Now()})
			So(err, ShouldBeNil)

			Convey("Then they are counted", func() {
				c, err := s.Counts(ctx)
				So(err, ShouldBeNil)
				So(c.Predictions, ShouldEqual, 1)
			})

			Convey("Then a duplicate model version is rejected", func() {
				err := s.RecordModel(ctx, model.ModelRecord{Version: "v1", CreatedAt: time.Now()})
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestStoreBreaker(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store whose database is closed", t, func() {
		s, err := repository.Open(ctx, repository.DriverSQLite, ":memory:",
			repository.WithRetryPolicy(retry.Policy{MaxAttempts: 1}),
			repository.WithBreaker(2, time.Minute),
		)
		So(err, ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		Convey("When reads keep failing", func() {
			_, err1 := s.MatrixFor(ctx, "x")
			_, err2 := s.MatrixFor(ctx, "x")
			_, err3 := s.MatrixFor(ctx, "x")

			Convey("Then the breaker opens and reports unavailability", func() {
				So(err1, ShouldNotBeNil)
				So(errors.Is(err1, repository.ErrUnavailable), ShouldBeFalse)
				So(err2, ShouldNotBeNil)
				So(errors.Is(err3, repository.ErrUnavailable), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unsupported driver", t, func() {
		_, err := repository.Open(ctx, "oracle", "dsn")

		Convey("Then Open fails", func() {
			So(errors.Is(err, repository.ErrUnsupportedDriver), ShouldBeTrue)
		})
	})
}
