package fetcher

import (
	"math"
	"math/rand/v2"
	"time"
)

// Policy determines how long to wait before the next fetch attempt.
// Attempt numbering is 1-based: Delay(1) is the wait after the first
// failed attempt.
type Policy interface {
	Delay(attempt int) time.Duration
}

// FixedDelay waits the same amount between every attempt. This is the
// default retry behavior.
type FixedDelay time.Duration

func (d FixedDelay) Delay(int) time.Duration { return time.Duration(d) }

// ExponentialDelay doubles the wait on each attempt, with optional jitter
// to spread retries from many workers. Jitter is a fraction of the
// computed delay, applied in both directions.
type ExponentialDelay struct {
	Initial time.Duration
	Jitter  float64
}

func (e ExponentialDelay) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(e.Initial) * math.Pow(2, float64(attempt-1))
	if e.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * e.Jitter * d
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}
