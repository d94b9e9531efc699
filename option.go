package custody

import (
	"time"

	"github.com/vitwit/custody/logger"
	"github.com/vitwit/custody/metrics"
	"github.com/vitwit/custody/settlement"
)

type Option func(*Custody)

func WithLogger(l logger.Logger) Option {
	return func(c *Custody) {
		c.logger = logger.OrNoop(l)
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(c *Custody) {
		c.metrics = metrics.OrNoop(r)
	}
}

// WithWaitPolicy overrides the wait budget taken from the config.
func WithWaitPolicy(maxWait, interval time.Duration) Option {
	return func(c *Custody) {
		c.policy = settlement.Policy{MaxWait: maxWait, Interval: interval}
	}
}

// WithWaitOptions appends waiter options applied to every wait.
func WithWaitOptions(opts ...settlement.WaitOption) Option {
	return func(c *Custody) {
		c.waitOpts = append(c.waitOpts, opts...)
	}
}
