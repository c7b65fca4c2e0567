package random

import (
	"math/rand"
	"sync"
	"time"
)

var (
	mu     sync.Mutex
	source int64
)

// Seed64 returns a fresh 64-bit seed for per-connection transaction
// identifiers. Consecutive calls never return the same value even within
// one nanosecond tick, so concurrent senders start from distinct ranges.
func Seed64() uint64 {
	mu.Lock()
	if source == 0 {
		source = time.Now().UnixNano()
	} else {
		source = source + 1
	}
	r := rand.New(rand.NewSource(source))
	mu.Unlock()

	return r.Uint64()
}
