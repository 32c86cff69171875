package seed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type memWriter struct {
	mu          sync.Mutex
	profiles    map[string]model.ProfileSnapshot
	transitions []model.TransitionFact
	failAfter   int
}

func newMemWriter() *memWriter {
	return &memWriter{profiles: map[string]model.ProfileSnapshot{}, failAfter: -1}
}

func (m *memWriter) UpsertProfile(_ context.Context, p model.ProfileSnapshot) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
	return p.ID, nil
}

func (m *memWriter) InsertTransition(_ context.Context, f model.TransitionFact) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAfter >= 0 && len(m.transitions) >= m.failAfter {
		return "", errors.New("disk full")
	}
	m.transitions = append(m.transitions, f)
	return f.UserID, nil
}

func TestGenerate(t *testing.T) {
	Convey("Given a fixed seed and clock", t, func() {
		now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		cfg := Config{Alumni: 50, Seed: 7, Now: now}

		Convey("Generation is deterministic", func() {
			a, err := Generate(cfg)
			So(err, ShouldBeNil)
			b, err := Generate(cfg)
			So(err, ShouldBeNil)
			So(a, ShouldResemble, b)
		})

		Convey("A different seed changes the output", func() {
			a, _ := Generate(cfg)
			cfg.Seed = 8
			b, _ := Generate(cfg)
			So(a[0].Profile.ID, ShouldNotEqual, b[0].Profile.ID)
		})

		Convey("Histories are internally consistent", func() {
			hs, err := Generate(cfg)
			So(err, ShouldBeNil)
			So(hs, ShouldHaveLength, 50)
			for _, h := range hs {
				So(h.Profile.ID, ShouldNotBeEmpty)
				So(h.Transitions, ShouldNotBeEmpty)
				last := h.Transitions[len(h.Transitions)-1]
				So(last.ToRole, ShouldEqual, h.Profile.CurrentRole)
				So(last.TransitionDate.After(now), ShouldBeFalse)
				for i, f := range h.Transitions {
					So(f.UserID, ShouldEqual, h.Profile.ID)
					So(*f.SuccessRating, ShouldBeBetweenOrEqual, minRating, model.MaxSuccessRating)
					So(*f.DurationMonths, ShouldBeGreaterThanOrEqualTo, minTenureMonths)
					if i > 0 {
						So(f.FromRole, ShouldEqual, h.Transitions[i-1].ToRole)
						So(f.TransitionDate.After(h.Transitions[i-1].TransitionDate), ShouldBeTrue)
					}
				}
			}
		})

		Convey("A non-positive size is rejected", func() {
			_, err := Generate(Config{})
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestWrite(t *testing.T) {
	Convey("Given generated histories", t, func() {
		ctx := context.Background()
		hs, err := Generate(Config{Alumni: 30, Seed: 1})
		So(err, ShouldBeNil)
		want := 0
		for _, h := range hs {
			want += len(h.Transitions)
		}

		Convey("Write stores every profile and transition", func() {
			w := newMemWriter()
			stats, err := Write(ctx, w, hs, 3)
			So(err, ShouldBeNil)
			So(stats.Profiles, ShouldEqual, 30)
			So(stats.Transitions, ShouldEqual, want)
			So(w.profiles, ShouldHaveLength, 30)
			So(w.transitions, ShouldHaveLength, want)
		})

		Convey("A writer failure is returned", func() {
			w := newMemWriter()
			w.failAfter = 5
			stats, err := Write(ctx, w, hs, 1)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "disk full")
			So(stats.Transitions, ShouldEqual, 5)
		})

		Convey("Run generates and writes", func() {
			w := newMemWriter()
			stats, err := Run(ctx, w, Config{Alumni: 10, Seed: 3})
			So(err, ShouldBeNil)
			So(stats.Profiles, ShouldEqual, 10)
		})
	})
}
