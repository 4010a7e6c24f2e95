// Package ratelimit spaces out outbound model calls.
//
// A Gate enforces a minimum gap between consecutive calls. It is best effort:
// a caller that arrives early sleeps for the remainder of the gap, then the
// gate records the time. There is no queueing or token accounting.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/entrhq/cobrowse/pkg/logging"
)

// DefaultMinGap is the minimum spacing between model calls.
const DefaultMinGap = 1000 * time.Millisecond

var gateLog *logging.Logger

func init() {
	gateLog = logging.MustNew("ratelimit")
}

// Gate delays callers so consecutive calls are at least MinGap apart.
// It is safe for concurrent use.
type Gate struct {
	mu       sync.Mutex
	minGap   time.Duration
	lastCall time.Time
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	onWait   func(time.Duration)
}

// Option configures a Gate.
type Option func(*Gate)

// WithMinGap overrides DefaultMinGap. Non-positive values disable waiting.
func WithMinGap(d time.Duration) Option {
	return func(g *Gate) {
		g.minGap = d
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

// WithSleeper replaces the context-aware sleep used to wait out the gap.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Gate) {
		g.sleep = sleep
	}
}

// WithWaitHook registers a callback invoked before the gate sleeps.
func WithWaitHook(fn func(time.Duration)) Option {
	return func(g *Gate) {
		g.onWait = fn
	}
}

// NewGate creates a gate with the given options.
func NewGate(opts ...Option) *Gate {
	g := &Gate{
		minGap: DefaultMinGap,
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// MinGap returns the configured gap.
func (g *Gate) MinGap() time.Duration {
	return g.minGap
}

// Wait blocks until at least MinGap has passed since the previous call,
// then records the current time. It returns ctx.Err() if ctx is cancelled
// while waiting; in that case the call is not recorded.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.lastCall.IsZero() && g.minGap > 0 {
		elapsed := g.now().Sub(g.lastCall)
		if remaining := g.minGap - elapsed; remaining > 0 {
			gateLog.Debugf("Waiting %v before next model call", remaining)
			if g.onWait != nil {
				g.onWait(remaining)
			}
			if err := g.sleep(ctx, remaining); err != nil {
				return err
			}
		}
	}

	g.lastCall = g.now()
	return nil
}

// Remaining reports how long a Wait issued now would sleep.
func (g *Gate) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.lastCall.IsZero() || g.minGap <= 0 {
		return 0
	}
	if remaining := g.minGap - g.now().Sub(g.lastCall); remaining > 0 {
		return remaining
	}
	return 0
}

// Reset forgets the previous call so the next Wait returns immediately.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastCall = time.Time{}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
