// Package retry provides the bounded retry executor every network operation
// in the core runs under. The policy is linear backoff: the wait before
// attempt n+1 is BaseDelay*n, matching the node-facing retry cadence the
// rest of the system is tuned for.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/launchpad-core/internal/chain"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1000 * time.Millisecond
)

// Policy is a reusable retry configuration. The zero value is not usable;
// build one with NewPolicy.
type Policy struct {
	maxAttempts uint
	baseDelay   time.Duration
	logger      *zap.Logger

	// notify observes every scheduled retry (error, upcoming delay).
	// Tests use it to assert the backoff sequence.
	notify backoff.Notify
}

// NewPolicy builds a policy with maxAttempts >= 1 and baseDelay > 0.
// Out-of-range values fall back to the defaults.
func NewPolicy(maxAttempts int, baseDelay time.Duration, logger *zap.Logger) *Policy {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return &Policy{
		maxAttempts: uint(maxAttempts),
		baseDelay:   baseDelay,
		logger:      logger.Named("retry"),
	}
}

// WithNotify returns a copy of the policy that also reports each scheduled
// retry to fn.
func (p *Policy) WithNotify(fn func(err error, next time.Duration)) *Policy {
	cp := *p
	cp.notify = fn
	return &cp
}

// Abort marks err so Do stops retrying immediately even though the error
// classifies as transient. Callers still observe err itself, not the
// wrapper. Used when retrying in place cannot help and the caller has its
// own recovery path.
func Abort(err error) error {
	return backoff.Permanent(err)
}

// Do runs op under the policy. Transient-classified failures are retried up
// to the attempt budget with linear backoff; a terminal classification
// aborts immediately without consuming further attempts. The success value
// or the last observed error is returned. op must be self-contained: it
// captures no mutable state shared with other attempts.
func Do[T any](ctx context.Context, p *Policy, label string, op func(ctx context.Context) (T, error)) (T, error) {
	wrapped := func() (T, error) {
		v, err := op(ctx)
		if err != nil && chain.IsTerminal(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	notify := func(err error, next time.Duration) {
		p.logger.Warn("operation failed, retrying",
			zap.String("op", label),
			zap.Duration("next_delay", next),
			zap.Error(err))
		if p.notify != nil {
			p.notify(err, next)
		}
	}

	return backoff.Retry(ctx, wrapped,
		backoff.WithBackOff(&linearBackOff{base: p.baseDelay}),
		backoff.WithMaxTries(p.maxAttempts),
		backoff.WithNotify(notify),
	)
}

// linearBackOff waits base*1, base*2, base*3, ... between attempts.
type linearBackOff struct {
	base    time.Duration
	attempt int64
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.base * time.Duration(b.attempt)
}

func (b *linearBackOff) Reset() { b.attempt = 0 }
