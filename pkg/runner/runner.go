// Package runner is the round scheduling and execution engine. It walks the
// configured round list, fans each round out across its target endpoints
// through the adapter contract, aggregates per-endpoint results, paces the
// rounds with the configured interval and stops on iteration exhaustion or
// cancellation.
package runner

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/intelsdi-x/testrpc/pkg/adapters"
	"github.com/intelsdi-x/testrpc/pkg/config"
	"github.com/intelsdi-x/testrpc/pkg/results"
	"github.com/intelsdi-x/testrpc/pkg/runctx"
)

// defaultPingTimeout bounds the pre-run reachability pass when the run file
// does not set one.
const defaultPingTimeout = 15 * time.Second

// Runner drives one run of the configured rounds through a single adapter.
type Runner struct {
	adapter adapters.Adapter
	cfg     config.Config
}

// New returns a Runner for given adapter and configuration.
func New(adapter adapters.Adapter, cfg config.Config) *Runner {
	return &Runner{adapter: adapter, cfg: cfg}
}

// LoadEndpoints resolves the endpoint list for the run. An explicit `rpcs`
// list in the configuration overrides adapter discovery.
func (r *Runner) LoadEndpoints() ([]string, error) {
	if len(r.cfg.RPCs) > 0 {
		return r.cfg.RPCs, nil
	}

	endpoints, err := r.adapter.LoadEndpoints(r.cfg.Args)
	if err != nil {
		return nil, errors.Wrap(err, "could not load endpoints")
	}
	return endpoints, nil
}

// CheckNodeCount verifies the resolved endpoint count against the
// num_of_nodes expectation, when one is configured.
func (r *Runner) CheckNodeCount(endpoints []string) error {
	if r.cfg.NumOfNodes == nil {
		return nil
	}
	if len(endpoints) != *r.cfg.NumOfNodes {
		return errors.Errorf("num of nodes mismatch: expected %d, got %d", *r.cfg.NumOfNodes, len(endpoints))
	}
	return nil
}

// PingEndpoints probes every endpoint and returns the reachable count.
// Probe failures are logged, not escalated; an adapter without probing
// support surfaces adapters.ErrPingNotSupported.
func (r *Runner) PingEndpoints(endpoints []string) (int, error) {
	timeout := r.cfg.TimeoutDuration(defaultPingTimeout)

	reachable := 0
	for _, endpoint := range endpoints {
		ok, err := r.adapter.Ping(endpoint, timeout)
		if err == adapters.ErrPingNotSupported {
			return 0, err
		}
		if err != nil {
			log.Warnf("Ping of %s failed: %v", endpoint, err)
			continue
		}
		if ok {
			reachable++
		}
	}
	return reachable, nil
}

// MockEndpoints synthesizes placeholder endpoints for dry runs which skip
// discovery entirely.
func MockEndpoints(count int) []string {
	endpoints := make([]string, 0, count)
	for i := 0; i < count; i++ {
		endpoints = append(endpoints, fmt.Sprintf("http://dummy:%d", 5000+i))
	}
	return endpoints
}

// roundOutcome carries a round's result from its fan-in goroutine back to
// the scheduling loop. Buffered hand-off, so an abandoned round's goroutine
// never leaks and its partial result is never recorded.
type roundOutcome struct {
	result results.RoundResults
	err    error
}

// Run executes rounds until the iteration cap is reached or ctx is stopped.
// Round-level failures (missing template, out-of-range endpoint index,
// transport errors on every endpoint) are logged and skipped; they never
// abort the run. The returned slice holds one entry per completed round in
// scheduling order.
func (r *Runner) Run(ctx *runctx.Context, endpoints []string) ([]results.RoundResults, error) {
	collected := []results.RoundResults{}
	interval := r.cfg.IntervalDuration()

	var i uint32

outer:
	for {
		for roundNum, round := range r.cfg.Rounds {
			for occurrence := 0; occurrence < round.Occurrences(); occurrence++ {
				if ctx.Stopped() {
					break outer
				}

				i++
				iteration := i

				outcomeCh := make(chan roundOutcome, 1)
				go func(round config.Round) {
					result, err := r.processRound(ctx, round, iteration, endpoints)
					outcomeCh <- roundOutcome{result: result, err: err}
				}(round)

				stop := ctx.Subscribe()
				select {
				case outcome := <-outcomeCh:
					ctx.Unsubscribe(stop)
					if outcome.err != nil {
						log.Warnf("Iteration %d round %d failed: %v", iteration, roundNum, outcome.err)
					} else {
						log.Debugf("Iteration %d round %d completed", iteration, roundNum)
						collected = append(collected, outcome.result)
					}
				case <-stop:
					log.Debugf("Iteration %d round %d abandoned as the run was stopped", iteration, roundNum)
					break outer
				}

				stop = ctx.Subscribe()
				select {
				case <-stop:
					log.Debugf("Run stopped during the interval after iteration %d round %d", iteration, roundNum)
					break outer
				case <-time.After(interval):
					ctx.Unsubscribe(stop)
				}

				if r.reachedIterations(i) {
					break outer
				}
			}
		}
		if r.reachedIterations(i) {
			break outer
		}
	}

	return collected, nil
}

func (r *Runner) reachedIterations(i uint32) bool {
	if r.cfg.Iterations == nil {
		return false
	}
	if int(i) >= *r.cfg.Iterations {
		log.Debugf("Reached max iterations: %d", i)
		return true
	}
	return false
}

// processRound delivers one round to all its endpoints concurrently and
// aggregates the per-endpoint results field-wise. An endpoint's failure
// does not discard its siblings' counts: the failed endpoint contributes
// whatever it sent, with the undelivered remainder counted as failed.
func (r *Runner) processRound(ctx *runctx.Context, round config.Round, iteration uint32,
	endpoints []string) (results.RoundResults, error) {

	template, ok := round.GetTemplate(r.cfg.RoundTemplates)
	if !ok {
		return results.RoundResults{}, errors.New("no template found for round")
	}

	// Fail the round fast, before any delivery starts.
	for _, index := range round.RPCs {
		if index < 0 || index >= len(endpoints) {
			return results.RoundResults{}, errors.Errorf("rpc index out of bounds: %d", index)
		}
	}

	timeout := r.cfg.TimeoutDuration(0)
	start := time.Now()

	perEndpoint := make([]results.RoundResults, len(round.RPCs))
	deliveryErrs := make([]error, len(round.RPCs))

	var wg sync.WaitGroup
	for position, index := range round.RPCs {
		wg.Add(1)
		go func(position int, endpoint string, reqID uint64) {
			defer wg.Done()

			result, err := r.adapter.SendTxs(ctx, endpoint, reqID, iteration,
				template.Txs, template.TxSize, timeout)
			if err != nil {
				// Partial aggregation: count the undelivered remainder
				// as failed instead of dropping the whole round.
				result.Failed = template.Txs - result.Sent
				deliveryErrs[position] = err
			}
			perEndpoint[position] = result
		}(position, endpoints[index], uint64(iteration)+uint64(position))
	}
	wg.Wait()

	total := results.RoundResults{}
	for position := range perEndpoint {
		if deliveryErrs[position] != nil {
			log.Warnf("Iteration %d delivery to %s failed: %v",
				iteration, endpoints[round.RPCs[position]], deliveryErrs[position])
		}
		total.Add(perEndpoint[position])
	}
	total.Elapsed = time.Since(start)

	return total, nil
}
