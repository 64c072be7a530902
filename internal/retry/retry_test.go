package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/launchpad-core/internal/chain"
)

func testPolicy(maxAttempts int) *Policy {
	return NewPolicy(maxAttempts, time.Millisecond, zap.NewNop())
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	attempts := 0
	v, err := Do(context.Background(), testPolicy(3), "op", func(ctx context.Context) (int, error) {
		attempts++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, attempts)
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	var delays []time.Duration
	policy := testPolicy(3).WithNotify(func(err error, next time.Duration) {
		delays = append(delays, next)
	})

	attempts := 0
	v, err := Do(context.Background(), policy, "op", func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", chain.Transient(chain.CodeTransactionFailed, "busy", nil)
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, attempts)

	// Linear backoff: base*1 before the second attempt, base*2 before the
	// third.
	require.Len(t, delays, 2)
	assert.Equal(t, 1*time.Millisecond, delays[0])
	assert.Equal(t, 2*time.Millisecond, delays[1])
}

func TestDoTerminalAbortsImmediately(t *testing.T) {
	terminal := chain.Terminal(chain.CodeInvalidInput, "bad input", nil)
	attempts := 0
	_, err := Do(context.Background(), testPolicy(5), "op", func(ctx context.Context) (int, error) {
		attempts++
		return 0, terminal
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, chain.CodeInvalidInput, chain.CodeOf(err))
	assert.True(t, chain.IsTerminal(err))
}

func TestDoAbortStopsRetryingTransientError(t *testing.T) {
	transient := chain.Transient(chain.CodeBlockRefExpired, "block reference expired", nil)
	attempts := 0
	_, err := Do(context.Background(), testPolicy(5), "op", func(ctx context.Context) (int, error) {
		attempts++
		return 0, Abort(transient)
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, chain.CodeBlockRefExpired, chain.CodeOf(err))
	assert.False(t, chain.IsTerminal(err))
}

func TestDoExhaustionReturnsLastError(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), testPolicy(3), "op", func(ctx context.Context) (int, error) {
		attempts++
		return 0, chain.Transient(chain.CodeTransactionFailed, "still busy", errors.New("attempt"))
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, chain.CodeTransactionFailed, chain.CodeOf(err))
}

func TestDoUnclassifiedErrorIsRetried(t *testing.T) {
	attempts := 0
	v, err := Do(context.Background(), testPolicy(3), "op", func(ctx context.Context) (int, error) {
		attempts++
		if attempts == 1 {
			return 0, errors.New("dial tcp: connection refused")
		}
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 2, attempts)
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Do(ctx, NewPolicy(3, time.Second, zap.NewNop()), "op", func(ctx context.Context) (int, error) {
		return 0, chain.Transient(chain.CodeTransactionFailed, "busy", nil)
	})
	require.Error(t, err)
}

func TestNewPolicyDefaults(t *testing.T) {
	p := NewPolicy(0, 0, zap.NewNop())
	assert.Equal(t, uint(DefaultMaxAttempts), p.maxAttempts)
	assert.Equal(t, DefaultBaseDelay, p.baseDelay)
}

func TestLinearBackOffSequence(t *testing.T) {
	b := &linearBackOff{base: 100 * time.Millisecond}
	assert.Equal(t, 100*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 200*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 300*time.Millisecond, b.NextBackOff())
	b.Reset()
	assert.Equal(t, 100*time.Millisecond, b.NextBackOff())
}
