package chain

import (
	"errors"
	"fmt"
	"strings"
)

// Code is the stable machine-readable failure code surfaced to callers.
type Code string

const (
	CodeWalletNotConnected  Code = "WALLET_NOT_CONNECTED"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeInvalidInput        Code = "INVALID_INPUT"
	CodeTransactionFailed   Code = "TRANSACTION_FAILED"
	CodeStateReadFailed     Code = "STATE_READ_FAILED"

	// CodeBlockRefExpired is a low-level cause, not a user-facing code: the
	// orchestrator consumes it to rebuild against a fresh block reference.
	CodeBlockRefExpired Code = "BLOCKREF_EXPIRED"
)

// Class decides whether a failure is worth retrying.
type Class int

const (
	// ClassTransient errors (timeouts, busy nodes, expired block references)
	// may succeed on a later attempt.
	ClassTransient Class = iota
	// ClassTerminal errors (bad input, rejected signature, insufficient
	// funds) will fail identically on every attempt.
	ClassTerminal
)

// Error is the classified error type every network-touching component
// returns. It carries a stable code, a retry class and the underlying cause.
type Error struct {
	Code    Code
	Class   Class
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Transient builds a retryable classified error.
func Transient(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Class: ClassTransient, Message: msg, Cause: cause}
}

// Terminal builds a non-retryable classified error.
func Terminal(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Class: ClassTerminal, Message: msg, Cause: cause}
}

// IsTerminal reports whether err carries a terminal classification.
// Unclassified errors are treated as transient: the RPC layer produces raw
// network errors for exactly the conditions a retry can fix.
func IsTerminal(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Class == ClassTerminal
	}
	return false
}

// CodeOf extracts the classified code, or empty for unclassified errors.
func CodeOf(err error) Code {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// IsBlockRefExpired reports whether err means the anchoring block reference
// fell out of its validity window.
func IsBlockRefExpired(err error) bool {
	return CodeOf(err) == CodeBlockRefExpired
}

// Classify maps a raw RPC error onto the closed taxonomy by inspecting the
// node's message text, the same way the node itself distinguishes retryable
// conditions.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "blockhashnotfound"),
		strings.Contains(msg, "blockhash not found"),
		strings.Contains(msg, "block height exceeded"):
		return Transient(CodeBlockRefExpired, "block reference expired", err)
	case strings.Contains(msg, "insufficient funds"),
		strings.Contains(msg, "insufficient lamports"):
		return Terminal(CodeInsufficientBalance, "insufficient funds for transaction", err)
	case strings.Contains(msg, "signature verification"),
		strings.Contains(msg, "invalid transaction"),
		strings.Contains(msg, "invalid param"):
		return Terminal(CodeTransactionFailed, "transaction rejected", err)
	case strings.Contains(msg, "node is behind"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "429"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection"),
		strings.Contains(msg, "unavailable"):
		return Transient(CodeTransactionFailed, "node temporarily unavailable", err)
	default:
		return Transient(CodeTransactionFailed, "rpc call failed", err)
	}
}
