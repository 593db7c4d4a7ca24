package crawler

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"
)

// delayPolicy yields the courtesy wait applied before each network request.
type delayPolicy interface {
	NextDelay() time.Duration
}

// uniformDelayPolicy draws a delay uniformly from the half-open interval
// [min, max). The jitter keeps request timing from forming a detectable
// pattern at the origin server.
type uniformDelayPolicy struct {
	min time.Duration
	max time.Duration
}

func newUniformDelayPolicy(min, max time.Duration) *uniformDelayPolicy {
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	return &uniformDelayPolicy{min: min, max: max}
}

// NextDelay returns the next randomized delay.
func (p *uniformDelayPolicy) NextDelay() time.Duration {
	span := p.max - p.min
	if span <= 0 {
		return p.min
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(span)))
	if err != nil {
		return p.min + span/2
	}
	return p.min + time.Duration(n.Int64())
}

// pauseController abstracts how the fetch path sleeps between requests.
type pauseController interface {
	Pause(ctx context.Context, delay time.Duration)
}

type timerPauseController struct{}

func (p *timerPauseController) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
