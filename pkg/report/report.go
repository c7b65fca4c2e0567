// Package report renders run results as a marker-delimited YAML block on
// stdout, so harness scripts can cut the block out of mixed log output, and
// parses such blocks back for archival tooling.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/intelsdi-x/testrpc/pkg/results"
)

// Markers bounding the results block on stdout.
const (
	BeginMarker = "---RESULTS--"
	EndMarker   = "---END RESULTS--"
)

// Render serializes the run results into the marker-delimited block.
func Render(flow results.FlowResults) (string, error) {
	rendered, err := yaml.Marshal(flow)
	if err != nil {
		return "", errors.Wrap(err, "could not serialize run results")
	}

	return fmt.Sprintf("%s\n\n%s\n%s\n", BeginMarker, rendered, EndMarker), nil
}

// Write renders the results block to the given writer.
func Write(w io.Writer, flow results.FlowResults) error {
	rendered, err := Render(flow)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, rendered)
	return errors.Wrap(err, "could not write run results")
}

// Parse extracts and decodes the first marker-delimited results block from
// raw output.
func Parse(raw string) (results.FlowResults, error) {
	begin := strings.Index(raw, BeginMarker)
	if begin == -1 {
		return results.FlowResults{}, errors.Errorf("no %q marker found", BeginMarker)
	}
	rest := raw[begin+len(BeginMarker):]

	end := strings.Index(rest, EndMarker)
	if end == -1 {
		return results.FlowResults{}, errors.Errorf("no %q marker found", EndMarker)
	}

	flow := results.FlowResults{}
	if err := yaml.Unmarshal([]byte(rest[:end]), &flow); err != nil {
		return results.FlowResults{}, errors.Wrap(err, "could not parse run results")
	}

	return flow, nil
}

// TimingSummary aggregates the per-round wall times of a run.
type TimingSummary struct {
	Mean time.Duration
	P50  time.Duration
	P90  time.Duration
	Max  time.Duration
}

// Summarize computes the round timing summary. Returns false when no round
// carries timing data.
func Summarize(flow results.FlowResults) (TimingSummary, bool) {
	samples := []float64{}
	for _, round := range flow.Rounds {
		if round.Elapsed > 0 {
			samples = append(samples, float64(round.Elapsed))
		}
	}
	if len(samples) == 0 {
		return TimingSummary{}, false
	}

	mean, err := stats.Mean(samples)
	if err != nil {
		return TimingSummary{}, false
	}
	p50, err := stats.Percentile(samples, 50)
	if err != nil {
		return TimingSummary{}, false
	}
	p90, err := stats.Percentile(samples, 90)
	if err != nil {
		return TimingSummary{}, false
	}
	max, err := stats.Max(samples)
	if err != nil {
		return TimingSummary{}, false
	}

	return TimingSummary{
		Mean: time.Duration(mean),
		P50:  time.Duration(p50),
		P90:  time.Duration(p90),
		Max:  time.Duration(max),
	}, true
}

// String renders the summary for log output.
func (s TimingSummary) String() string {
	return fmt.Sprintf("round time mean=%s p50=%s p90=%s max=%s",
		s.Mean.Round(time.Millisecond), s.P50.Round(time.Millisecond),
		s.P90.Round(time.Millisecond), s.Max.Round(time.Millisecond))
}
