// Package results holds the per-round and per-run counters produced by the
// scheduler and rendered by the report layer.
package results

import "time"

// RoundResults counts transaction deliveries for one completed round.
// It is immutable once appended to a run; aggregation is field-wise addition.
type RoundResults struct {
	// Sent is the number of transactions written successfully.
	Sent int `yaml:"sent"`
	// Failed is the number of transactions which could not be delivered.
	Failed int `yaml:"failed"`
	// Elapsed is the wall time the round took, fan-out to fan-in.
	Elapsed time.Duration `yaml:"elapsed,omitempty"`
}

// Add accumulates another result into this one.
func (r *RoundResults) Add(other RoundResults) {
	r.Sent += other.Sent
	r.Failed += other.Failed
}

// FlowResults is the final outcome of a run: one entry per completed round
// in scheduling order, plus totals.
type FlowResults struct {
	// RunID identifies this invocation in logs and archived reports.
	RunID string `yaml:"run_id,omitempty"`
	// Rounds are the per-round results in the order the rounds completed.
	Rounds []RoundResults `yaml:"rounds"`
	// Total is the field-wise sum over Rounds.
	Total RoundResults `yaml:"total"`
	// TotalTime is the wall time of the whole run.
	TotalTime time.Duration `yaml:"total_time"`
	// TotalIterations is the number of rounds that completed.
	TotalIterations uint32 `yaml:"total_iterations"`
}

// NewFlowResults builds the run summary from the collected round results.
func NewFlowResults(rounds []RoundResults, totalTime time.Duration) FlowResults {
	total := RoundResults{}
	for _, round := range rounds {
		total.Add(round)
	}

	return FlowResults{
		Rounds:          rounds,
		Total:           RoundResults{Sent: total.Sent, Failed: total.Failed},
		TotalTime:       totalTime,
		TotalIterations: uint32(len(rounds)),
	}
}
