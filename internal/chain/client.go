package chain

import (
	"context"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Client is the capability surface the core needs from a blockchain node.
// Every method returns classified errors so retry policy can tell transient
// conditions from terminal ones.
type Client interface {
	// GetBalance fetches a fresh balance snapshot for one asset at addr.
	// A missing token account reads as a zero balance, not an error.
	GetBalance(ctx context.Context, addr solana.PublicKey, asset Asset) (BalanceSnapshot, error)
	// LatestBlockRef fetches the freshest block reference for anchoring
	// a transaction.
	LatestBlockRef(ctx context.Context) (BlockRef, error)
	// SubmitRaw broadcasts already-signed transaction bytes and returns a
	// pending receipt immediately.
	SubmitRaw(ctx context.Context, signed []byte) (SubmissionReceipt, error)
	// Confirm polls until the transaction leaves pending or the bounded
	// wait elapses. A reference that expires before confirmation surfaces
	// as a BLOCKREF_EXPIRED transient error.
	Confirm(ctx context.Context, sig solana.Signature, ref BlockRef) (SubmissionReceipt, error)
	// ReadAccount fetches an account's raw data.
	ReadAccount(ctx context.Context, addr solana.PublicKey) ([]byte, error)
	// ReadProgramAccounts scans all accounts owned by program matching the
	// given filters.
	ReadProgramAccounts(ctx context.Context, program solana.PublicKey, filters []Filter) ([]ProgramAccount, error)
}

const (
	confirmPollInterval   = 500 * time.Millisecond
	defaultConfirmTimeout = 30 * time.Second
)

// RPCClient is a thin adapter over the solana-go RPC client.
type RPCClient struct {
	rpc            *rpc.Client
	logger         *zap.Logger
	confirmTimeout time.Duration
}

// NewRPCClient builds a client for the given RPC endpoint.
func NewRPCClient(rpcURL string, confirmTimeout time.Duration, logger *zap.Logger) *RPCClient {
	if confirmTimeout <= 0 {
		confirmTimeout = defaultConfirmTimeout
	}
	return &RPCClient{
		rpc:            rpc.New(rpcURL),
		logger:         logger.Named("chain-client"),
		confirmTimeout: confirmTimeout,
	}
}

func (c *RPCClient) GetBalance(ctx context.Context, addr solana.PublicKey, asset Asset) (BalanceSnapshot, error) {
	snap := BalanceSnapshot{Address: addr, Asset: asset, FetchedAt: time.Now()}

	if asset.IsNative() {
		result, err := c.rpc.GetBalance(ctx, addr, rpc.CommitmentConfirmed)
		if err != nil {
			c.logger.Debug("GetBalance error", zap.String("address", addr.String()), zap.Error(err))
			return BalanceSnapshot{}, Classify(err)
		}
		snap.Amount = result.Value
		return snap, nil
	}

	ata, _, err := solana.FindAssociatedTokenAddress(addr, asset.Mint)
	if err != nil {
		return BalanceSnapshot{}, Terminal(CodeInvalidInput, "cannot derive token account", err)
	}
	result, err := c.rpc.GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
	if err != nil {
		if isAccountNotFound(err) {
			// No token account yet means a zero balance.
			return snap, nil
		}
		c.logger.Debug("GetTokenAccountBalance error",
			zap.String("address", ata.String()), zap.Error(err))
		return BalanceSnapshot{}, Classify(err)
	}
	amount, err := strconv.ParseUint(result.Value.Amount, 10, 64)
	if err != nil {
		return BalanceSnapshot{}, Terminal(CodeStateReadFailed, "malformed token balance", err)
	}
	snap.Amount = amount
	return snap, nil
}

func (c *RPCClient) LatestBlockRef(ctx context.Context) (BlockRef, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		c.logger.Error("GetLatestBlockhash error", zap.Error(err))
		return BlockRef{}, Classify(err)
	}
	return BlockRef{
		Hash:                 result.Value.Blockhash,
		LastValidBlockHeight: result.Value.LastValidBlockHeight,
		FetchedAt:            time.Now(),
	}, nil
}

func (c *RPCClient) SubmitRaw(ctx context.Context, signed []byte) (SubmissionReceipt, error) {
	sig, err := c.rpc.SendRawTransactionWithOpts(ctx, signed, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		c.logger.Error("SendRawTransaction error", zap.Error(err))
		return SubmissionReceipt{}, Classify(err)
	}
	return SubmissionReceipt{
		Signature: sig,
		Status:    StatusPending,
		Timestamp: time.Now(),
	}, nil
}

func (c *RPCClient) Confirm(ctx context.Context, sig solana.Signature, ref BlockRef) (SubmissionReceipt, error) {
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()
	deadline := time.After(c.confirmTimeout)

	for {
		select {
		case <-ctx.Done():
			return SubmissionReceipt{Signature: sig, Status: StatusPending, Timestamp: time.Now()}, ctx.Err()
		case <-deadline:
			return SubmissionReceipt{Signature: sig, Status: StatusPending, Timestamp: time.Now()},
				Transient(CodeTransactionFailed, "confirmation timeout", nil)
		case <-ticker.C:
			receipt, done, err := c.checkStatus(ctx, sig)
			if err != nil {
				c.logger.Warn("signature status check failed", zap.Error(err))
				continue
			}
			if done {
				return receipt, nil
			}
			expired, err := c.refExpired(ctx, ref)
			if err != nil {
				continue
			}
			if expired {
				return SubmissionReceipt{Signature: sig, Status: StatusPending, Timestamp: time.Now()},
					Transient(CodeBlockRefExpired, "block reference expired before confirmation", nil)
			}
		}
	}
}

func (c *RPCClient) checkStatus(ctx context.Context, sig solana.Signature) (SubmissionReceipt, bool, error) {
	result, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return SubmissionReceipt{}, false, err
	}
	if result == nil || len(result.Value) == 0 || result.Value[0] == nil {
		return SubmissionReceipt{}, false, nil
	}
	status := result.Value[0]
	receipt := SubmissionReceipt{
		Signature: sig,
		Slot:      status.Slot,
		Timestamp: time.Now(),
	}
	if status.Err != nil {
		receipt.Status = StatusFailed
		receipt.Err = formatTxError(status.Err)
		return receipt, true, nil
	}
	if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
		status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
		receipt.Status = StatusConfirmed
		return receipt, true, nil
	}
	return SubmissionReceipt{}, false, nil
}

func (c *RPCClient) refExpired(ctx context.Context, ref BlockRef) (bool, error) {
	height, err := c.rpc.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return false, err
	}
	return height > ref.LastValidBlockHeight, nil
}

func (c *RPCClient) ReadAccount(ctx context.Context, addr solana.PublicKey) ([]byte, error) {
	result, err := c.rpc.GetAccountInfo(ctx, addr)
	if err != nil {
		c.logger.Debug("GetAccountInfo error",
			zap.String("address", addr.String()), zap.Error(err))
		if isAccountNotFound(err) {
			return nil, Terminal(CodeStateReadFailed, "account not found", err)
		}
		return nil, Classify(err)
	}
	if result == nil || result.Value == nil {
		return nil, Terminal(CodeStateReadFailed, "account not found", nil)
	}
	return result.Value.Data.GetBinary(), nil
}

func (c *RPCClient) ReadProgramAccounts(ctx context.Context, program solana.PublicKey, filters []Filter) ([]ProgramAccount, error) {
	opts := rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentConfirmed,
		Encoding:   solana.EncodingBase64,
	}
	for _, f := range filters {
		opts.Filters = append(opts.Filters, rpc.RPCFilter{
			Memcmp: &rpc.RPCFilterMemcmp{
				Offset: f.Offset,
				Bytes:  f.Bytes,
			},
		})
	}

	accounts, err := c.rpc.GetProgramAccountsWithOpts(ctx, program, &opts)
	if err != nil {
		c.logger.Debug("GetProgramAccounts error",
			zap.String("program", program.String()), zap.Error(err))
		return nil, Classify(err)
	}

	out := make([]ProgramAccount, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, ProgramAccount{
			Address: acc.Pubkey,
			Data:    acc.Account.Data.GetBinary(),
		})
	}
	return out, nil
}

var _ Client = (*RPCClient)(nil)
