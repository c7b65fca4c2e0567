package results

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFlowResults(t *testing.T) {
	Convey("While aggregating round results", t, func() {
		Convey("Add sums field-wise", func() {
			total := RoundResults{Sent: 3, Failed: 1}
			total.Add(RoundResults{Sent: 7, Failed: 2})

			So(total.Sent, ShouldEqual, 10)
			So(total.Failed, ShouldEqual, 3)
		})

		Convey("NewFlowResults totals all rounds and counts iterations", func() {
			rounds := []RoundResults{
				{Sent: 20, Failed: 0, Elapsed: time.Second},
				{Sent: 15, Failed: 5, Elapsed: 2 * time.Second},
			}
			flow := NewFlowResults(rounds, 3*time.Second)

			So(flow.Total.Sent, ShouldEqual, 35)
			So(flow.Total.Failed, ShouldEqual, 5)
			So(flow.TotalIterations, ShouldEqual, 2)
			So(flow.TotalTime, ShouldEqual, 3*time.Second)
			So(len(flow.Rounds), ShouldEqual, 2)
		})

		Convey("An empty run yields zero totals", func() {
			flow := NewFlowResults(nil, 0)

			So(flow.Total.Sent, ShouldEqual, 0)
			So(flow.Total.Failed, ShouldEqual, 0)
			So(flow.TotalIterations, ShouldEqual, 0)
		})
	})
}
