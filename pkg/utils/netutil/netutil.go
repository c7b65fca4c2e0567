package netutil

import (
	"net"
	"time"
)

const retries = 5

// IsListeningFunction is a function type for checking if an endpoint is responding.
type IsListeningFunction func(address string, timeout time.Duration) bool

// IsListeningMockedSuccess is a mocked IsListeningFunction returning always true.
func IsListeningMockedSuccess(address string, timeout time.Duration) bool {
	return true
}

// IsListeningMockedFailure is a mocked IsListeningFunction returning always false.
func IsListeningMockedFailure(address string, timeout time.Duration) bool {
	return false
}

// IsListening tries to establish TCP connection to given address in a form of `ip:port`.
// It returns true when it was able to connect to given endpoint within timeout time.
// The timeout budget is split across a fixed number of dial attempts.
func IsListening(address string, timeout time.Duration) bool {
	attemptTimeout := time.Duration(timeout.Nanoseconds() / int64(retries))
	for i := 0; i < retries; i++ {
		conn, err := net.DialTimeout("tcp", address, attemptTimeout)
		if err != nil {
			time.Sleep(attemptTimeout)
			continue
		}
		conn.Close()
		return true
	}

	return false
}
