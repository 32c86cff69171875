package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ritik-JS/alumni-careerpath/pkg/retry"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDo(t *testing.T) {
	ctx := context.Background()
	p := retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

	Convey("Given an operation that succeeds on the second call", t, func() {
		calls, retries := 0, 0
		err := retry.Do(ctx, p, func() error {
			calls++
			if calls < 2 {
				return errors.New("transient")
			}
			return nil
		}, func(error, time.Duration) { retries++ })

		Convey("Then it is retried once", func() {
			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 2)
			So(retries, ShouldEqual, 1)
		})
	})

	Convey("Given an operation that always fails", t, func() {
		calls := 0
		boom := errors.New("down")
		err := retry.Do(ctx, p, func() error { calls++; return boom }, nil)

		Convey("Then attempts are bounded", func() {
			So(errors.Is(err, boom), ShouldBeTrue)
			So(calls, ShouldEqual, 3)
		})
	})

	Convey("Given a permanent failure", t, func() {
		calls := 0
		boom := errors.New("corrupt")
		err := retry.Do(ctx, p, func() error { calls++; return retry.Permanent(boom) }, nil)

		Convey("Then it is not retried and the cause is returned", func() {
			So(err, ShouldEqual, boom)
			So(calls, ShouldEqual, 1)
		})
	})
}
