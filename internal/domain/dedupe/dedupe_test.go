package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/Ritik-JS/alumni-careerpath/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("Then it starts empty", func() {
			So(d, ShouldNotBeNil)
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When a key is claimed", func() {
			holder, claimed := d.Claim(ctx, "train", "job-1")

			Convey("Then the caller becomes the holder", func() {
				So(claimed, ShouldBeTrue)
				So(holder, ShouldEqual, "job-1")
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And the same key is claimed again", func() {
				holder, claimed := d.Claim(ctx, "train", "job-2")

				Convey("Then the first holder is returned", func() {
					So(claimed, ShouldBeFalse)
					So(holder, ShouldEqual, "job-1")
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And a different key is claimed", func() {
				_, claimed := d.Claim(ctx, "aggregate", "job-3")

				Convey("Then both claims are held", func() {
					So(claimed, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 2)
				})
			})

			Convey("And a non-owner releases it", func() {
				released := d.Release(ctx, "train", "job-9")

				Convey("Then the claim stays", func() {
					So(released, ShouldBeFalse)
					holder, ok := d.Holder(ctx, "train")
					So(ok, ShouldBeTrue)
					So(holder, ShouldEqual, "job-1")
				})
			})

			Convey("And the owner releases it", func() {
				released := d.Release(ctx, "train", "job-1")

				Convey("Then the key can be claimed again", func() {
					So(released, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 0)
					_, claimed := d.Claim(ctx, "train", "job-4")
					So(claimed, ShouldBeTrue)
				})
			})
		})

		Convey("When releasing a key that was never claimed", func() {
			Convey("Then nothing changes", func() {
				So(d.Release(ctx, "nonexistent", "x"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
		d.Claim(ctx, "a", "1")
		d.Claim(ctx, "b", "2")

		Convey("When it is full", func() {
			holder, claimed := d.Claim(ctx, "c", "3")

			Convey("Then new claims are refused without evicting held ones", func() {
				So(claimed, ShouldBeFalse)
				So(holder, ShouldEqual, "")
				So(d.Size(), ShouldEqual, 2)
				_, ok := d.Holder(ctx, "a")
				So(ok, ShouldBeTrue)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

		Convey("Then many claims are held", func() {
			for i := 0; i < 2000; i++ {
				_, claimed := d.Claim(ctx, fmt.Sprintf("k-%d", i), "o")
				So(claimed, ShouldBeTrue)
			}
			So(d.Size(), ShouldEqual, 2000)
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given many goroutines racing for one key", t, func() {
		d := dedupe.NewInMemoryDeduper()
		const racers = 50

		var wg sync.WaitGroup
		var mu sync.Mutex
		winners := 0
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				if _, claimed := d.Claim(context.Background(), "train", fmt.Sprintf("job-%d", id)); claimed {
					mu.Lock()
					winners++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		Convey("Then exactly one claim succeeds", func() {
			So(winners, ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}
