package artifact_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ritik-JS/alumni-careerpath/internal/adapters/artifact"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/encoding"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/forest"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/training"
	. "github.com/smartystreets/goconvey/convey"
)

func trained(at time.Time) *training.Artifact {
	samples := []model.Sample{
		{FromRole: "Analyst", ToRole: "Senior Analyst", Skills: []string{"SQL"}, Industry: "Tech", DurationMonths: 24, SuccessRating: 3},
		{FromRole: "Analyst", ToRole: "Data Scientist", Skills: []string{"Python"}, Industry: "Tech", DurationMonths: 24, SuccessRating: 3},
		{FromRole: "Analyst", ToRole: "Senior Analyst", Skills: []string{"SQL", "Excel"}, Industry: "Finance", DurationMonths: 18, SuccessRating: 4},
		{FromRole: "Analyst", ToRole: "Data Scientist", Skills: []string{"Python", "ML"}, Industry: "Finance", DurationMonths: 30, SuccessRating: 5},
	}
	b := encoding.Fit(samples)
	X := make([][]float64, len(samples))
	y := make([]int, len(samples))
	for i, s := range samples {
		X[i], _ = b.Transform(encoding.FromSample(s))
		y[i] = b.Target(s)
	}
	p := forest.DefaultParams()
	p.NumTrees = 5
	f, err := forest.Fit(X, y, b.NumClasses(), p)
	So(err, ShouldBeNil)
	return &training.Artifact{
		Version:      model.NewVersion(at),
		CreatedAt:    at,
		Forest:       f,
		Bundle:       b,
		Params:       p,
		Strategy:     training.SearchStrategy{Kind: training.SearchSkip},
		Metrics:      training.Metrics{Accuracy: 1, F1: 1},
		TrainSamples: 3,
		TestSamples:  1,
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty artifact store", t, func() {
		dir := t.TempDir()
		s, err := artifact.NewStore(filepath.Join(dir, "models"))
		So(err, ShouldBeNil)
		defer s.Close()

		Convey("Then Latest reports not found", func() {
			_, err := s.Latest(ctx)
			So(errors.Is(err, artifact.ErrNotFound), ShouldBeTrue)
			So(errors.Is(err, fs.ErrNotExist), ShouldBeTrue)
		})

		Convey("When two versions are published", func() {
			t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			t2 := t1.Add(time.Hour)
			a1, a2 := trained(t1), trained(t2)
			So(s.Publish(ctx, a1), ShouldBeNil)
			So(s.Publish(ctx, a2), ShouldBeNil)

			Convey("Then Latest returns the newest by version id", func() {
				got, err := s.Latest(ctx)
				So(err, ShouldBeNil)
				So(got.Version, ShouldEqual, a2.Version)
				So(got.Bundle.FeatureNames, ShouldResemble, a2.Bundle.FeatureNames)
				So(got.Metrics.Accuracy, ShouldEqual, 1)
			})

			Convey("Then the loaded classifier matches the published one", func() {
				got, err := s.Load(ctx, a1.Version)
				So(err, ShouldBeNil)
				vec, _ := got.Bundle.Transform(encoding.Features{Role: "Analyst", Skills: []string{"SQL"}, Industry: "Tech"})
				So(got.Forest.PredictProba(vec), ShouldResemble, a1.Forest.PredictProba(vec))
			})

			Convey("Then List returns manifests newest first", func() {
				ms, err := s.List(ctx)
				So(err, ShouldBeNil)
				So(len(ms), ShouldEqual, 2)
				So(ms[0].Version, ShouldEqual, a2.Version)
				So(ms[0].SizeBytes(), ShouldBeGreaterThan, 0)
				So(ms[1].Strategy.Kind, ShouldEqual, training.SearchSkip)
			})

			Convey("Then an existing version is never overwritten", func() {
				err := s.Publish(ctx, trained(t2))
				So(errors.Is(err, artifact.ErrVersionExists), ShouldBeTrue)
			})

			Convey("And a newer directory has no manifest", func() {
				partial := model.NewVersion(t2.Add(time.Hour))
				So(os.MkdirAll(filepath.Join(s.Dir(), partial), 0o750), ShouldBeNil)

				Convey("Then it is ignored", func() {
					got, err := s.Latest(ctx)
					So(err, ShouldBeNil)
					So(got.Version, ShouldEqual, a2.Version)
				})
			})

			Convey("And a stored file is corrupted", func() {
				path := filepath.Join(s.Dir(), a2.Version, artifact.ClassifierFile)
				So(os.WriteFile(path, []byte("garbage"), 0o640), ShouldBeNil)

				Convey("Then loading fails the checksum", func() {
					_, err := s.Load(ctx, a2.Version)
					So(errors.Is(err, artifact.ErrChecksumMismatch), ShouldBeTrue)
				})

				Convey("Then Latest falls back to the older version", func() {
					got, err := s.Latest(ctx)
					So(err, ShouldBeNil)
					So(got.Version, ShouldEqual, a1.Version)
				})

				Convey("And the older version is corrupted too", func() {
					old := filepath.Join(s.Dir(), a1.Version, artifact.ClassifierFile)
					So(os.WriteFile(old, []byte("garbage"), 0o640), ShouldBeNil)

					Convey("Then Latest reports the newest failure", func() {
						_, err := s.Latest(ctx)
						So(errors.Is(err, artifact.ErrChecksumMismatch), ShouldBeTrue)
					})
				})
			})
		})

		Convey("When an incomplete artifact is published", func() {
			err := s.Publish(ctx, &training.Artifact{Version: model.NewVersion(time.Now())})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, artifact.ErrIncomplete), ShouldBeTrue)
			})
		})

		Convey("When a version id is malformed", func() {
			_, err := s.Load(ctx, "../etc")

			Convey("Then it is rejected", func() {
				So(errors.Is(err, artifact.ErrInvalidVersion), ShouldBeTrue)
			})
		})
	})
}
