// Package adapters defines the transport contract between the round
// scheduler and the protocol-specific variants, together with the factory
// which resolves the adapter named in the run configuration.
//
// The scheduler depends only on this interface; adding a transport means
// adding a variant package and one factory case.
package adapters

import (
	"time"

	"github.com/pkg/errors"

	"github.com/intelsdi-x/testrpc/pkg/adapters/autobahn"
	"github.com/intelsdi-x/testrpc/pkg/adapters/hotshot"
	"github.com/intelsdi-x/testrpc/pkg/config"
	"github.com/intelsdi-x/testrpc/pkg/results"
	"github.com/intelsdi-x/testrpc/pkg/runctx"
)

// ErrPingNotSupported is returned by variants which cannot probe liveness.
// Callers should treat it as "unknown", not as unreachable.
var ErrPingNotSupported = errors.New("ping is not supported by this adapter")

// Adapter is the capability set every transport variant implements.
type Adapter interface {
	// LoadEndpoints resolves the target endpoints from the adapter argument
	// bag. An empty result is an error, never an empty success.
	LoadEndpoints(args map[string]interface{}) ([]string, error)

	// Ping probes a single endpoint for liveness within timeout.
	// Variants that cannot probe return ErrPingNotSupported.
	Ping(endpoint string, timeout time.Duration) (bool, error)

	// SendTxs delivers numTxs transactions of txSize bytes to one endpoint.
	// The ctx races every blocking step; a zero timeout means unbounded.
	// A failure on one endpoint must not affect sibling deliveries.
	SendTxs(ctx *runctx.Context, endpoint string, reqID uint64, iteration uint32,
		numTxs int, txSize int, timeout time.Duration) (results.RoundResults, error)
}

// New returns the variant registered under the given configuration name.
// The dryRun flag is threaded explicitly so tests can exercise both modes
// without process-wide state.
func New(name string, dryRun bool) (Adapter, error) {
	switch name {
	case config.AdapterHotshot:
		return hotshot.New(dryRun), nil
	case config.AdapterAutobahn:
		return autobahn.New(dryRun), nil
	default:
		return nil, errors.Errorf("unsupported adapter: %q", name)
	}
}
