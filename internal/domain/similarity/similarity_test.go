package similarity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/similarity"
	. "github.com/smartystreets/goconvey/convey"
)

type bandSource struct {
	profiles []model.ProfileSnapshot
	min, max int
	err      error
}

func (s *bandSource) ProfilesInExperienceBand(_ context.Context, minYears, maxYears int) ([]model.ProfileSnapshot, error) {
	s.min, s.max = minYears, maxYears
	return s.profiles, s.err
}

func TestJaccard(t *testing.T) {
	Convey("Given two alumni sharing one skill out of four", t, func() {
		So(similarity.Jaccard([]string{"Python", "SQL", "AWS"}, []string{"Python", "Java"}), ShouldAlmostEqual, 0.25, 1e-9)
	})

	Convey("Given empty skill sets", t, func() {
		So(similarity.Jaccard(nil, nil), ShouldEqual, 0.5)
		So(similarity.Jaccard([]string{"Go"}, nil), ShouldEqual, 0)
		So(similarity.Jaccard(nil, []string{"Go"}), ShouldEqual, 0)
	})

	Convey("Given differently cased skills", t, func() {
		So(similarity.Jaccard([]string{"python"}, []string{"Python"}), ShouldEqual, 1)
	})
}

func TestFinder(t *testing.T) {
	ctx := context.Background()
	query := model.ProfileSnapshot{ID: "me", CurrentRole: "Data Analyst", Skills: []string{"Python", "SQL", "AWS"}, YearsExperience: 2}

	Convey("Given a pool of alumni", t, func() {
		src := &bandSource{profiles: []model.ProfileSnapshot{
			{ID: "me", CurrentRole: "Data Analyst", Skills: []string{"Python", "SQL", "AWS"}, YearsExperience: 2},
			{ID: "a", CurrentRole: "Data Scientist", Skills: []string{"Python", "Java"}, YearsExperience: 4},
			{ID: "b", CurrentRole: "Data Engineer", Skills: []string{"python", "sql", "aws", "spark"}, YearsExperience: 5},
			{ID: "c", CurrentRole: "Designer", Skills: []string{"Figma"}, YearsExperience: 1},
			{ID: "d", CurrentRole: "Analyst", Skills: []string{"Python", "Java"}, YearsExperience: 0},
			{ID: "far", CurrentRole: "Director", Skills: []string{"Python", "SQL", "AWS"}, YearsExperience: 12},
		}}
		f := similarity.New(src, similarity.WithLimit(3))

		res, err := f.Find(ctx, query)

		Convey("Then the band query is clamped at zero", func() {
			So(err, ShouldBeNil)
			So(src.min, ShouldEqual, 0)
			So(src.max, ShouldEqual, 5)
		})

		Convey("Then results exclude self and out-of-band profiles", func() {
			for _, r := range res {
				So(r.ProfileID, ShouldNotEqual, "me")
				So(r.ProfileID, ShouldNotEqual, "far")
			}
		})

		Convey("Then results are ranked with stable ties", func() {
			So(len(res), ShouldEqual, 3)
			So(res[0].ProfileID, ShouldEqual, "b")
			So(res[0].Similarity, ShouldAlmostEqual, 0.75, 1e-9)
			So(res[0].CommonSkills, ShouldResemble, []string{"Python", "SQL", "AWS"})
			So(res[1].ProfileID, ShouldEqual, "a")
			So(res[1].Similarity, ShouldAlmostEqual, 0.25, 1e-9)
			So(res[2].ProfileID, ShouldEqual, "d")
		})
	})

	Convey("Given a failing source", t, func() {
		f := similarity.New(&bandSource{err: errors.New("timeout")})
		_, err := f.Find(ctx, query)

		Convey("Then the error is returned for the caller to absorb", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
