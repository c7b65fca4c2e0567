package retry

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRetry(t *testing.T) {
	Convey("While retrying an operation", t, func() {
		Convey("An immediately successful operation is called once", func() {
			calls := 0
			err := Retry(5, time.Millisecond, func() error {
				calls++
				return nil
			}, false)

			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 1)
		})

		Convey("A flaky operation succeeds within the attempt budget", func() {
			calls := 0
			err := Retry(5, time.Millisecond, func() error {
				calls++
				if calls < 3 {
					return errors.New("not yet")
				}
				return nil
			}, false)

			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 3)
		})

		Convey("A persistently failing operation exhausts all attempts", func() {
			calls := 0
			err := Retry(4, time.Millisecond, func() error {
				calls++
				return errors.New("still broken")
			}, false)

			So(err, ShouldNotBeNil)
			So(calls, ShouldEqual, 4)
			So(err.Error(), ShouldContainSubstring, "after 4 attempts")
		})

		Convey("Exponential backoff doubles the delay between attempts", func() {
			start := time.Now()
			err := Retry(3, 10*time.Millisecond, func() error {
				return errors.New("nope")
			}, true)

			// 10ms + 20ms of sleeping across the two inter-attempt gaps.
			So(err, ShouldNotBeNil)
			So(time.Since(start), ShouldBeGreaterThanOrEqualTo, 30*time.Millisecond)
		})

		Convey("Zero attempts is an error", func() {
			err := Retry(0, time.Millisecond, func() error { return nil }, false)
			So(err, ShouldNotBeNil)
		})
	})
}
