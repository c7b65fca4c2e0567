// Package retry wraps flaky startup operations, like endpoint discovery
// against a coordinator that may not be up yet. It is not meant for the
// per-round hot path.
package retry

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Retry calls operation up to maxAttempts times, sleeping delay between
// failed attempts. With exponential set, the delay doubles after every
// failure. The first success returns immediately; exhausting all attempts
// returns the last error wrapped.
func Retry(maxAttempts int, delay time.Duration, operation func() error, exponential bool) error {
	if maxAttempts < 1 {
		return errors.Errorf("retry requires at least one attempt, got %d", maxAttempts)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = operation()
		if lastErr == nil {
			return nil
		}

		if attempt < maxAttempts {
			log.Debugf("attempt %d/%d failed, retrying in %s: %v", attempt, maxAttempts, delay, lastErr)
			time.Sleep(delay)
			if exponential {
				delay *= 2
			}
		}
	}

	return errors.Wrapf(lastErr, "operation failed after %d attempts", maxAttempts)
}
