// Package jrpc is a minimal JSON-RPC 2.0 client used by the request/response
// adapter variants.
package jrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const version = "2.0"

// Request is a JSON-RPC request envelope.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      uint64      `json:"id"`
}

// Response is a JSON-RPC response envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	ID      uint64          `json:"id"`
}

// NewRequest builds a request envelope for given method and params.
func NewRequest(reqID uint64, method string, params interface{}) Request {
	return Request{
		JSONRPC: version,
		Method:  method,
		Params:  params,
		ID:      reqID,
	}
}

// Send posts the request to rpcURL and decodes the response. A zero timeout
// means no client-side bound. The rpcURL may omit the scheme, in which case
// plain http is assumed.
func Send(rpcURL string, request Request, timeout time.Duration) (Response, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return Response{}, errors.Wrap(err, "could not serialize rpc request")
	}

	client := &http.Client{Timeout: timeout}
	start := time.Now()

	httpResponse, err := client.Post(normalizeURL(rpcURL), "application/json", bytes.NewReader(payload))
	if err != nil {
		return Response{}, errors.Wrapf(err, "rpc request to %q failed", rpcURL)
	}
	defer httpResponse.Body.Close()

	log.Debugf("Got RPC response from %s after %dms", rpcURL, time.Since(start).Milliseconds())

	if httpResponse.StatusCode != http.StatusOK {
		return Response{}, errors.Errorf("rpc request to %q failed with status %s", rpcURL, httpResponse.Status)
	}

	response := Response{}
	if err := json.NewDecoder(httpResponse.Body).Decode(&response); err != nil {
		return Response{}, errors.Wrapf(err, "could not parse rpc response from %q", rpcURL)
	}

	return response, nil
}

// SendNoop pretends to deliver the request without touching the network.
// It logs the would-be payload size and echoes the request id back, so the
// scheduling logic above can be exercised without a cluster.
func SendNoop(rpcURL string, request Request) (Response, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return Response{}, errors.Wrap(err, "could not serialize rpc request")
	}

	log.Infof("Sending noop request with %d bytes to %s", len(payload), rpcURL)
	time.Sleep(5 * time.Millisecond)

	return Response{
		JSONRPC: version,
		Result:  json.RawMessage(`{}`),
		ID:      request.ID,
	}, nil
}

func normalizeURL(rpcURL string) string {
	if len(rpcURL) >= 7 && (rpcURL[:7] == "http://" || (len(rpcURL) >= 8 && rpcURL[:8] == "https://")) {
		return rpcURL
	}
	return fmt.Sprintf("http://%s", rpcURL)
}
