package settlement

import (
	"context"
	"strconv"
	"time"
)

const (
	DefaultMaxWait      = 180 * time.Second
	DefaultPollInterval = 6 * time.Second
)

// Policy bounds a completion wait. The budget is counted in poll attempts:
// after n attempts the elapsed time is n*Interval, regardless of how long the
// status queries themselves took.
type Policy struct {
	MaxWait  time.Duration
	Interval time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MaxWait: DefaultMaxWait, Interval: DefaultPollInterval}
}

// withDefaults fills non-positive fields with the defaults.
func (p Policy) withDefaults() Policy {
	if p.MaxWait <= 0 {
		p.MaxWait = DefaultMaxWait
	}
	if p.Interval <= 0 {
		p.Interval = DefaultPollInterval
	}
	return p
}

// Elapsed is the budget consumed by attempts polls.
func (p Policy) Elapsed(attempts int) time.Duration {
	return time.Duration(attempts) * p.Interval
}

// Exhausted reports whether attempts polls overran MaxWait.
func (p Policy) Exhausted(attempts int) bool {
	return p.Elapsed(attempts) > p.MaxWait
}

// MaxAttempts is the number of polls after which Exhausted first holds.
func (p Policy) MaxAttempts() int {
	p = p.withDefaults()
	return int(p.MaxWait/p.Interval) + 1
}

// Sleeper suspends the caller between polls. Implementations must return
// early with ctx.Err() when ctx ends.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
