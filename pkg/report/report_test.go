package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/intelsdi-x/testrpc/pkg/results"
)

func TestReportRoundTrip(t *testing.T) {
	Convey("While rendering and parsing a results block", t, func() {
		flow := results.NewFlowResults([]results.RoundResults{
			{Sent: 20, Failed: 0, Elapsed: time.Second},
			{Sent: 18, Failed: 2, Elapsed: 2 * time.Second},
		}, 5*time.Second)
		flow.RunID = "aabbccdd-0011-2233-4455-66778899aabb"

		Convey("The rendered block is bounded by the markers", func() {
			rendered, err := Render(flow)

			So(err, ShouldBeNil)
			So(strings.HasPrefix(rendered, BeginMarker), ShouldBeTrue)
			So(strings.Contains(rendered, EndMarker), ShouldBeTrue)
		})

		Convey("Parsing the rendered block preserves totals and iterations exactly", func() {
			rendered, err := Render(flow)
			So(err, ShouldBeNil)

			parsed, err := Parse(rendered)

			So(err, ShouldBeNil)
			So(parsed.Total.Sent, ShouldEqual, flow.Total.Sent)
			So(parsed.Total.Failed, ShouldEqual, flow.Total.Failed)
			So(parsed.TotalIterations, ShouldEqual, flow.TotalIterations)
			So(parsed.RunID, ShouldEqual, flow.RunID)
			So(len(parsed.Rounds), ShouldEqual, 2)
		})

		Convey("Parsing tolerates surrounding log noise", func() {
			rendered, err := Render(flow)
			So(err, ShouldBeNil)

			noisy := "INFO some log line\n" + rendered + "INFO trailing line\n"
			parsed, err := Parse(noisy)

			So(err, ShouldBeNil)
			So(parsed.Total.Sent, ShouldEqual, 38)
		})

		Convey("Write emits the same block Render produces", func() {
			rendered, err := Render(flow)
			So(err, ShouldBeNil)

			buffer := &bytes.Buffer{}
			So(Write(buffer, flow), ShouldBeNil)
			So(buffer.String(), ShouldEqual, rendered)
		})

		Convey("Output without markers fails to parse", func() {
			_, err := Parse("just some text")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestTimingSummary(t *testing.T) {
	Convey("While summarizing round timings", t, func() {
		Convey("Rounds with timings produce a summary", func() {
			flow := results.NewFlowResults([]results.RoundResults{
				{Sent: 1, Elapsed: time.Second},
				{Sent: 1, Elapsed: 3 * time.Second},
			}, 4*time.Second)

			summary, ok := Summarize(flow)

			So(ok, ShouldBeTrue)
			So(summary.Mean, ShouldEqual, 2*time.Second)
			So(summary.Max, ShouldEqual, 3*time.Second)
			So(summary.String(), ShouldContainSubstring, "mean=2s")
		})

		Convey("A run without timing data yields no summary", func() {
			flow := results.NewFlowResults([]results.RoundResults{{Sent: 1}}, time.Second)

			_, ok := Summarize(flow)
			So(ok, ShouldBeFalse)
		})
	})
}
