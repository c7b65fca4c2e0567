// Package autobahn is the burst-protocol adapter variant. It delivers
// fixed-size binary transactions over a persistent length-framed TCP stream,
// paced in sub-second bursts to approximate a steady rate instead of firing
// the whole batch at once.
//
// Wire format, per transaction (tx_size bytes total, each preceded by a
// 4-byte big-endian length frame):
//
//	byte 0     tag: 0 = sample, 1 = standard
//	bytes 1-8  big-endian uint64 identifier
//	rest       zero padding up to tx_size
//
// Sample transactions carry the per-connection burst counter and are picked
// up downstream for latency measurement; standard transactions carry a
// randomly seeded, monotonically incremented identifier so concurrent
// clients never collide.
package autobahn

import (
	"encoding/binary"
	"net"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/intelsdi-x/testrpc/pkg/results"
	"github.com/intelsdi-x/testrpc/pkg/runctx"
	"github.com/intelsdi-x/testrpc/pkg/utils/netutil"
	"github.com/intelsdi-x/testrpc/pkg/utils/random"
)

const (
	// MinTxSize is the smallest encodable transaction: 1 tag byte plus an
	// 8 byte identifier.
	MinTxSize = 9

	// Precision is the number of bursts one delivery is split into.
	Precision = 20

	// BurstDuration is the pacing period of a single burst.
	BurstDuration = time.Second / Precision

	// Transaction tags.
	TagSample   = byte(0)
	TagStandard = byte(1)

	frameHeaderLen = 4
)

// Adapter delivers transactions over the autobahn burst protocol.
type Adapter struct {
	dryRun bool
}

// New returns an autobahn Adapter. With dryRun set, SendTxs never opens a
// connection and reports every transaction as sent.
func New(dryRun bool) *Adapter {
	return &Adapter{dryRun: dryRun}
}

// Ping dials the endpoint's transactions port within timeout.
func (a *Adapter) Ping(endpoint string, timeout time.Duration) (bool, error) {
	if a.dryRun {
		return true, nil
	}
	return netutil.IsListening(endpoint, timeout), nil
}

// SendTxs delivers numTxs transactions to one endpoint, paced over Precision
// bursts. The returned counts are always meaningful, also when an error is
// returned: Sent+Failed never exceeds numTxs and the error explains the gap.
// The first write failure terminates the attempt; there is no reconnect.
func (a *Adapter) SendTxs(ctx *runctx.Context, endpoint string, reqID uint64, iteration uint32,
	numTxs int, txSize int, timeout time.Duration) (results.RoundResults, error) {

	if a.dryRun {
		log.Infof("Dry run: would send %d transactions of %d bytes each to %s", numTxs, txSize, endpoint)
		return results.RoundResults{Sent: numTxs}, nil
	}

	if txSize < MinTxSize {
		return results.RoundResults{}, errors.Errorf(
			"transaction size must be at least %d bytes for the autobahn protocol, got %d", MinTxSize, txSize)
	}

	conn, err := dial(endpoint, timeout)
	if err != nil {
		return results.RoundResults{Failed: numTxs}, errors.Wrapf(err, "could not connect to %q", endpoint)
	}
	defer conn.Close()

	if timeout > 0 {
		// One deadline bounds the whole delivery.
		if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return results.RoundResults{Failed: numTxs}, errors.Wrapf(err, "could not set write deadline on %q", endpoint)
		}
	}

	burstSize := numTxs / Precision
	remainder := numTxs % Precision

	log.Infof("Starting burst sending to %s: %d total txs, %d per burst, %s intervals",
		endpoint, numTxs, burstSize, BurstDuration)

	sender := &burstSender{
		conn:      conn,
		endpoint:  endpoint,
		txSize:    txSize,
		burstSize: burstSize,
		// Seed drawn once per connection so concurrent clients send
		// distinct standard transactions.
		nextStandardID: random.Seed64(),
	}

	ticker := time.NewTicker(BurstDuration)
	defer ticker.Stop()
	stop := ctx.Subscribe()
	defer ctx.Unsubscribe(stop)

	// NOTE: This log entry is used to compute performance.
	log.Infof("Start sending transactions to %s", endpoint)

	var counter uint64
	txIndex := 0

main:
	for {
		select {
		case <-stop:
			log.Debugf("Delivery to %s interrupted by stop signal after %d transactions", endpoint, txIndex)
			break main
		case <-ticker.C:
		}
		burstStart := time.Now()

		burstTxs := burstSize
		if counter >= Precision-1 {
			// The final burst absorbs the integer-division remainder.
			burstTxs += remainder
		}

		for x := 0; x < burstTxs; x++ {
			if txIndex >= numTxs {
				break main
			}

			if err := sender.sendOne(x, counter); err != nil {
				log.Warnf("Failed to send transaction %d to %s: %v", txIndex, endpoint, err)
				sender.failed++
				break main
			}
			txIndex++
		}

		// Check if we are keeping up with the target rate.
		if elapsed := time.Since(burstStart); elapsed > BurstDuration {
			// NOTE: This log entry is used to compute performance.
			log.Warnf("Transaction rate too high for client sending to %s", endpoint)
		}

		counter++
		if txIndex >= numTxs {
			break main
		}
	}

	log.Infof("Completed sending %d transactions to %s (success: %d, failed: %d)",
		numTxs, endpoint, sender.sent, sender.failed)

	return results.RoundResults{Sent: sender.sent, Failed: sender.failed}, nil
}

// burstSender tracks the per-connection send state.
type burstSender struct {
	conn      net.Conn
	endpoint  string
	txSize    int
	burstSize int

	nextStandardID uint64
	sent           int
	failed         int
}

// sendOne writes the transaction at intra-burst position x of burst counter.
func (s *burstSender) sendOne(x int, counter uint64) error {
	var tx []byte
	if IsSamplePosition(x, counter, s.burstSize) {
		// NOTE: This log entry is used to compute performance.
		log.Infof("Sending sample transaction %d to %s", counter, s.endpoint)
		tx = EncodeTx(TagSample, counter, s.txSize)
	} else {
		s.nextStandardID++
		tx = EncodeTx(TagStandard, s.nextStandardID, s.txSize)
	}

	if err := WriteFrame(s.conn, tx); err != nil {
		return err
	}
	s.sent++
	return nil
}

// EncodeTx builds one wire transaction: tag byte, big-endian identifier and
// zero padding up to size. Size must be at least MinTxSize.
func EncodeTx(tag byte, id uint64, size int) []byte {
	tx := make([]byte, size)
	tx[0] = tag
	binary.BigEndian.PutUint64(tx[1:MinTxSize], id)
	return tx
}

// IsSamplePosition reports whether the transaction at intra-burst position x
// of burst `counter` is the burst's sample. With burstSize > 0 exactly one
// position per burst matches, cycling through positions over time.
func IsSamplePosition(x int, counter uint64, burstSize int) bool {
	return burstSize > 0 && uint64(x) == counter%uint64(burstSize)
}

// WriteFrame writes a length-delimited frame: 4-byte big-endian payload
// length followed by the payload.
func WriteFrame(conn net.Conn, payload []byte) error {
	header := [frameHeaderLen]byte{}
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))

	if _, err := conn.Write(header[:]); err != nil {
		return err
	}
	if _, err := conn.Write(payload); err != nil {
		return err
	}
	return nil
}

func dial(endpoint string, timeout time.Duration) (net.Conn, error) {
	if timeout > 0 {
		return net.DialTimeout("tcp", endpoint, timeout)
	}
	return net.Dial("tcp", endpoint)
}
