// Package precheck validates wallet connectivity and balances before a
// domain operation spends any mutating network calls.
package precheck

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/launchpad-core/internal/chain"
	"github.com/rovshanmuradov/launchpad-core/internal/wallet"
)

// Requirement is one (asset, minimum amount) precondition.
type Requirement struct {
	Asset chain.Asset
	Min   uint64
}

// Validator runs fail-fast prechecks against live chain state.
type Validator struct {
	client chain.Client
	logger *zap.Logger
}

func NewValidator(client chain.Client, logger *zap.Logger) *Validator {
	return &Validator{
		client: client,
		logger: logger.Named("precheck"),
	}
}

// EnsureSignerConnected fails with WALLET_NOT_CONNECTED when signer is
// missing or cannot sign. It runs before any other check.
func (v *Validator) EnsureSignerConnected(signer wallet.Signer) error {
	if signer == nil || !signer.Connected() {
		return chain.Terminal(chain.CodeWalletNotConnected, "wallet is not connected", nil)
	}
	return nil
}

// EnsureSufficientBalance fetches a fresh snapshot per requirement and
// reports the first insufficient asset. The boundary is inclusive: a balance
// exactly equal to the requirement passes.
func (v *Validator) EnsureSufficientBalance(ctx context.Context, signer wallet.Signer, requirements []Requirement) error {
	addr := signer.Address()
	for _, req := range requirements {
		snap, err := v.client.GetBalance(ctx, addr, req.Asset)
		if err != nil {
			return chain.Terminal(chain.CodeStateReadFailed,
				fmt.Sprintf("failed to read %s balance", req.Asset), err)
		}
		if snap.Amount < req.Min {
			v.logger.Debug("insufficient balance",
				zap.String("asset", req.Asset.String()),
				zap.Uint64("have", snap.Amount),
				zap.Uint64("need", req.Min))
			return chain.Terminal(chain.CodeInsufficientBalance,
				fmt.Sprintf("insufficient %s balance: have %d, need %d", req.Asset, snap.Amount, req.Min), nil)
		}
	}
	return nil
}
