// Package txorch builds, signs, submits and confirms transactions.
//
// The orchestrator owns the one genuinely stateful sequence in the core:
// anchoring an envelope to a fresh block reference, broadcasting it, and
// waiting out confirmation. A transaction anchored to an expired reference
// can never confirm, so expiry detected at any stage restarts the loop from
// a fresh reference instead of resubmitting the same bytes. Resubmitting
// identical signed bytes is safe (broadcast is ledger-idempotent), but a
// rebuild produces a distinct transaction identity: callers must not assume
// the signature is stable across rebuilds.
package txorch

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/launchpad-core/internal/chain"
	"github.com/rovshanmuradov/launchpad-core/internal/retry"
	"github.com/rovshanmuradov/launchpad-core/internal/wallet"
)

// Config bounds the orchestrator's retry behavior.
type Config struct {
	// MaxAttempts bounds both per-call retries and envelope rebuilds.
	MaxAttempts int
	// BaseDelay is the linear backoff unit between retries.
	BaseDelay time.Duration
}

// Orchestrator submits instruction sequences as confirmed transactions.
type Orchestrator struct {
	client  chain.Client
	policy  *retry.Policy
	logger  *zap.Logger
	metrics *metrics

	maxRebuilds int
}

// New builds an orchestrator over client.
func New(client chain.Client, cfg Config, logger *zap.Logger) *Orchestrator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = retry.DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = retry.DefaultBaseDelay
	}
	return &Orchestrator{
		client:      client,
		policy:      retry.NewPolicy(cfg.MaxAttempts, cfg.BaseDelay, logger),
		logger:      logger.Named("tx-orchestrator"),
		metrics:     defaultMetrics,
		maxRebuilds: cfg.MaxAttempts,
	}
}

// Submit anchors instructions to the freshest block reference, signs the
// envelope with signer, broadcasts it and waits for confirmation.
//
// On success the returned receipt has status confirmed. On exhaustion a
// TRANSACTION_FAILED error wrapping the last classified cause is returned.
// An unconfirmed receipt means the outcome is genuinely unknown until chain
// state is re-queried; it never means the transaction failed.
func (o *Orchestrator) Submit(ctx context.Context, signer wallet.Signer, instructions []solana.Instruction) (*chain.SubmissionReceipt, error) {
	if len(instructions) == 0 {
		return nil, chain.Terminal(chain.CodeInvalidInput, "no instructions to submit", nil)
	}
	start := time.Now()
	defer o.metrics.trackSubmission(start)

	var lastErr error
	for rebuild := 0; rebuild < o.maxRebuilds; rebuild++ {
		if rebuild > 0 {
			o.metrics.rebuildCounter.Inc()
			o.logger.Info("rebuilding envelope against fresh block reference",
				zap.Int("rebuild", rebuild), zap.Error(lastErr))
		}

		receipt, err := o.submitOnce(ctx, signer, instructions)
		if err == nil {
			o.metrics.submitSuccess.Inc()
			o.logger.Info("transaction confirmed",
				zap.String("signature", receipt.Signature.String()),
				zap.Uint64("slot", receipt.Slot),
				zap.Duration("elapsed", time.Since(start)))
			return receipt, nil
		}
		if chain.IsTerminal(err) {
			o.metrics.submitFailure.Inc()
			return nil, err
		}
		// Transient at the loop level: expired reference or bounded
		// confirmation wait exceeded. Both require a fresh envelope.
		lastErr = err
	}

	o.metrics.submitFailure.Inc()
	return nil, chain.Terminal(chain.CodeTransactionFailed, "submission attempts exhausted", lastErr)
}

func (o *Orchestrator) submitOnce(ctx context.Context, signer wallet.Signer, instructions []solana.Instruction) (*chain.SubmissionReceipt, error) {
	ref, err := retry.Do(ctx, o.policy, "latest-blockref", func(ctx context.Context) (chain.BlockRef, error) {
		return o.client.LatestBlockRef(ctx)
	})
	if err != nil {
		return nil, chain.Terminal(chain.CodeTransactionFailed, "failed to fetch block reference", err)
	}

	tx, err := solana.NewTransaction(instructions, ref.Hash, solana.TransactionPayer(signer.Address()))
	if err != nil {
		return nil, chain.Terminal(chain.CodeTransactionFailed, "failed to build transaction", err)
	}
	if err := signer.SignTransaction(tx); err != nil {
		// A rejecting or disconnected signer will reject every attempt.
		return nil, chain.Terminal(chain.CodeTransactionFailed, "signer rejected transaction", err)
	}
	signed, err := tx.MarshalBinary()
	if err != nil {
		return nil, chain.Terminal(chain.CodeTransactionFailed, "failed to serialize transaction", err)
	}

	submitted, err := retry.Do(ctx, o.policy, "submit-raw", func(ctx context.Context) (chain.SubmissionReceipt, error) {
		receipt, err := o.client.SubmitRaw(ctx, signed)
		if err != nil && chain.IsBlockRefExpired(err) {
			// These bytes can never land. Skip the in-place retries and
			// hand control straight back to the rebuild loop.
			return receipt, retry.Abort(err)
		}
		return receipt, err
	})
	if err != nil {
		if chain.IsBlockRefExpired(err) {
			return nil, err
		}
		if chain.IsTerminal(err) {
			return nil, err
		}
		return nil, chain.Terminal(chain.CodeTransactionFailed, "broadcast failed", err)
	}
	o.logger.Debug("transaction broadcast",
		zap.String("signature", submitted.Signature.String()))

	receipt, err := o.client.Confirm(ctx, submitted.Signature, ref)
	if err != nil {
		if chain.IsTerminal(err) {
			return nil, err
		}
		// Expired reference or confirmation timeout: eligible for rebuild.
		return nil, err
	}
	if receipt.Status == chain.StatusFailed {
		return nil, chain.Terminal(chain.CodeTransactionFailed, "transaction failed on chain: "+receipt.Err, nil)
	}
	return &receipt, nil
}
