// Package hotshot is the JSON-RPC-over-HTTP adapter variant. Endpoints are
// discovered from a coordinator service exposing the known libp2p peers;
// transactions are delivered as hex-encoded blobs in a single `send_txs`
// batch call per endpoint.
package hotshot

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/intelsdi-x/testrpc/pkg/jrpc"
	"github.com/intelsdi-x/testrpc/pkg/results"
	"github.com/intelsdi-x/testrpc/pkg/runctx"
)

const (
	rpcMethod      = "send_txs"
	defaultRPCPort = 5000
)

// Args are the adapter arguments consumed from the run configuration.
type Args struct {
	// CoordinatorURL points at the coordinator used for peer discovery.
	CoordinatorURL string
	// RPCPort is the port the nodes' RPC servers listen on.
	RPCPort int
}

// ParseArgs extracts hotshot arguments from the loosely typed bag.
func ParseArgs(args map[string]interface{}) (Args, error) {
	coordinatorURL, ok := args["coordinator_url"].(string)
	if !ok || coordinatorURL == "" {
		return Args{}, errors.New("missing adapter argument: coordinator_url")
	}

	rpcPort := defaultRPCPort
	if rawPort, ok := args["rpc_port"]; ok {
		port, ok := rawPort.(int)
		if !ok || port <= 0 {
			return Args{}, errors.Errorf("adapter argument rpc_port must be a positive integer, got %v", rawPort)
		}
		rpcPort = port
	}

	return Args{CoordinatorURL: coordinatorURL, RPCPort: rpcPort}, nil
}

// Adapter delivers transaction batches over JSON-RPC.
type Adapter struct {
	dryRun bool
}

// New returns a hotshot Adapter. With dryRun set, deliveries and pings are
// simulated without network access.
func New(dryRun bool) *Adapter {
	return &Adapter{dryRun: dryRun}
}

// LoadEndpoints fetches the known peers from the coordinator's libp2p-info
// listing and turns them into RPC URLs.
func (a *Adapter) LoadEndpoints(args map[string]interface{}) ([]string, error) {
	parsed, err := ParseArgs(args)
	if err != nil {
		return nil, err
	}

	log.Infof("Using coordinator at: %s", parsed.CoordinatorURL)

	infoURL := fmt.Sprintf("http://%s/libp2p-info", strings.TrimPrefix(parsed.CoordinatorURL, "http://"))
	response, err := http.Get(infoURL)
	if err != nil {
		return nil, errors.Wrapf(err, "could not fetch peer list from %q", infoURL)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read peer list from %q", infoURL)
	}

	knownIPs, err := ParseEndpoints(string(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse peer list from %q", infoURL)
	}
	log.Infof("Known libp2p nodes: %v", knownIPs)

	rpcURLs := make([]string, 0, len(knownIPs))
	for _, ip := range knownIPs {
		rpcURLs = append(rpcURLs, fmt.Sprintf("http://%s:%d", ip, parsed.RPCPort))
	}

	if len(rpcURLs) == 0 {
		return nil, errors.New("no rpc endpoints found")
	}
	return rpcURLs, nil
}

// Ping issues an empty send_txs call to verify the RPC server answers.
func (a *Adapter) Ping(endpoint string, timeout time.Duration) (bool, error) {
	request := jrpc.NewRequest(rand.Uint64(), rpcMethod, map[string]interface{}{})

	if a.dryRun {
		_, err := jrpc.SendNoop(endpoint, request)
		return err == nil, err
	}

	if _, err := jrpc.Send(endpoint, request, timeout); err != nil {
		return false, err
	}
	return true, nil
}

// SendTxs delivers one batch of random hex-encoded transactions.
func (a *Adapter) SendTxs(ctx *runctx.Context, endpoint string, reqID uint64, iteration uint32,
	numTxs int, txSize int, timeout time.Duration) (results.RoundResults, error) {

	if ctx.Stopped() {
		return results.RoundResults{}, nil
	}

	txs := make([]string, 0, numTxs)
	for i := 0; i < numTxs; i++ {
		blob := make([]byte, txSize)
		rand.Read(blob)
		txs = append(txs, hex.EncodeToString(blob))
	}

	request := jrpc.NewRequest(reqID, rpcMethod, map[string]interface{}{"txs": txs})

	if a.dryRun {
		if _, err := jrpc.SendNoop(endpoint, request); err != nil {
			return results.RoundResults{}, err
		}
		return results.RoundResults{Sent: numTxs}, nil
	}

	if _, err := jrpc.Send(endpoint, request, timeout); err != nil {
		return results.RoundResults{Failed: numTxs}, err
	}
	return results.RoundResults{Sent: numTxs}, nil
}

// ParseEndpoints extracts IP addresses from a newline-separated multiaddr
// listing, e.g. "/ip4/192.168.104.3/udp/3000/quic-v1/p2p/..." yields
// "192.168.104.3". Blank lines are skipped; any other line that is not an
// ip4 multiaddr fails the whole parse, so a corrupt coordinator listing
// surfaces as a discovery error instead of a bogus endpoint.
func ParseEndpoints(listing string) ([]string, error) {
	addrs := []string{}
	for _, line := range strings.Split(listing, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		components := strings.Split(strings.TrimPrefix(line, "/"), "/")
		if len(components) < 2 || components[0] != "ip4" || components[1] == "" {
			return nil, errors.Errorf("not an ip4 multiaddr: %q", line)
		}
		addrs = append(addrs, components[1])
	}

	return addrs, nil
}
