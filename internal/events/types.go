package events

import (
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/launchpad-core/internal/chain"
)

// EventType represents the type of event.
type EventType string

const (
	// Operation lifecycle
	OperationStarted   EventType = "operation.started"
	OperationCompleted EventType = "operation.completed"
	OperationFailed    EventType = "operation.failed"

	// State polling
	PoolStateRefreshed EventType = "pool.state_refreshed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.EventTime }

func newBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now()}
}

// OperationStartedEvent is emitted when a domain operation begins.
type OperationStartedEvent struct {
	BaseEvent
	Operation string
	Signer    solana.PublicKey
}

// OperationCompletedEvent is emitted when a domain operation confirms on chain.
type OperationCompletedEvent struct {
	BaseEvent
	Operation string
	Signer    solana.PublicKey
	Receipt   chain.SubmissionReceipt
}

// OperationFailedEvent is emitted when a domain operation fails.
type OperationFailedEvent struct {
	BaseEvent
	Operation string
	Signer    solana.PublicKey
	Code      chain.Code
	Err       error
}

// PoolStateRefreshedEvent is emitted by the poller on every refresh cycle.
type PoolStateRefreshedEvent struct {
	BaseEvent
	Pool  solana.PublicKey
	State interface{}
}

func NewOperationStarted(op string, signer solana.PublicKey) OperationStartedEvent {
	return OperationStartedEvent{BaseEvent: newBase(OperationStarted), Operation: op, Signer: signer}
}

func NewOperationCompleted(op string, signer solana.PublicKey, receipt chain.SubmissionReceipt) OperationCompletedEvent {
	return OperationCompletedEvent{BaseEvent: newBase(OperationCompleted), Operation: op, Signer: signer, Receipt: receipt}
}

func NewOperationFailed(op string, signer solana.PublicKey, err error) OperationFailedEvent {
	return OperationFailedEvent{BaseEvent: newBase(OperationFailed), Operation: op, Signer: signer, Code: chain.CodeOf(err), Err: err}
}

func NewPoolStateRefreshed(pool solana.PublicKey, state interface{}) PoolStateRefreshedEvent {
	return PoolStateRefreshedEvent{BaseEvent: newBase(PoolStateRefreshed), Pool: pool, State: state}
}
