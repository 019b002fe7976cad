package delivery

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Schedule computes retry delays. The curve is deterministic (no jitter) so
// operators reading delivery logs can predict the next attempt time.
type Schedule struct {
	Initial    time.Duration
	Multiplier float64
	Max        time.Duration
}

// DefaultSchedule retries at 5s, then 30s, then 3m (capped at 5m).
func DefaultSchedule() Schedule {
	return Schedule{Initial: 5 * time.Second, Multiplier: 6, Max: 5 * time.Minute}
}

// Delay returns the wait after the given attempt number (1-based).
func (s Schedule) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.Initial
	eb.RandomizationFactor = 0
	eb.Multiplier = s.Multiplier
	eb.MaxInterval = s.Max

	var d time.Duration
	for i := 0; i < attempt; i++ {
		d = eb.NextBackOff()
	}
	return d
}
