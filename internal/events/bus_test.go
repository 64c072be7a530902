package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/launchpad-core/internal/chain"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	bus := NewBus(zap.NewNop(), 16)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = bus.Shutdown(ctx)
	})
	return bus
}

func TestPublishReachesSubscriber(t *testing.T) {
	bus := newTestBus(t)

	var received atomic.Int64
	bus.SubscribeFunc(OperationStarted, func(ctx context.Context, e Event) error {
		assert.Equal(t, OperationStarted, e.Type())
		received.Add(1)
		return nil
	})

	require.NoError(t, bus.Publish(NewOperationStarted("swap", solana.NewWallet().PublicKey())))
	assert.Eventually(t, func() bool { return received.Load() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestSubscriberOnlySeesItsType(t *testing.T) {
	bus := newTestBus(t)

	var wrong atomic.Int64
	bus.SubscribeFunc(OperationFailed, func(ctx context.Context, e Event) error {
		wrong.Add(1)
		return nil
	})

	require.NoError(t, bus.PublishSync(context.Background(),
		NewOperationStarted("swap", solana.NewWallet().PublicKey())))
	assert.Zero(t, wrong.Load())
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := newTestBus(t)

	var received atomic.Int64
	sub := bus.SubscribeFunc(OperationCompleted, func(ctx context.Context, e Event) error {
		received.Add(1)
		return nil
	})
	sub.Unsubscribe()

	require.NoError(t, bus.PublishSync(context.Background(),
		NewOperationCompleted("swap", solana.NewWallet().PublicKey(), chain.SubmissionReceipt{})))
	assert.Zero(t, received.Load())
}

func TestPublishSyncCollectsHandlerErrors(t *testing.T) {
	bus := newTestBus(t)
	bus.SubscribeFunc(OperationFailed, func(ctx context.Context, e Event) error {
		return errors.New("handler broke")
	})

	err := bus.PublishSync(context.Background(),
		NewOperationFailed("swap", solana.NewWallet().PublicKey(),
			chain.Terminal(chain.CodeTransactionFailed, "boom", nil)))
	require.Error(t, err)
}

func TestPublishAfterShutdownFails(t *testing.T) {
	bus := NewBus(zap.NewNop(), 4)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Shutdown(ctx))

	err := bus.Publish(NewOperationStarted("swap", solana.NewWallet().PublicKey()))
	require.Error(t, err)
}

func TestOperationFailedCarriesCode(t *testing.T) {
	e := NewOperationFailed("swap", solana.NewWallet().PublicKey(),
		chain.Terminal(chain.CodeInsufficientBalance, "broke", nil))
	assert.Equal(t, chain.CodeInsufficientBalance, e.Code)
	assert.Equal(t, OperationFailed, e.Type())
	assert.False(t, e.Timestamp().IsZero())
}
