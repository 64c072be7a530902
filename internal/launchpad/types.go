package launchpad

import (
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/launchpad-core/internal/chain"
)

// CreateTokenParams describes a token launch.
type CreateTokenParams struct {
	Name   string
	Symbol string
	URI    string
	// Supply is the whole-token supply to mint to the creator.
	Supply uint64
	// Decimals in [0, 9]; a negative value selects DefaultDecimals.
	Decimals int
}

// CreateTokenResult is returned once the launch transaction confirms.
type CreateTokenResult struct {
	Mint            solana.PublicKey
	SupplyBaseUnits uint64
	Receipt         chain.SubmissionReceipt
}

// CreatePoolParams describes pool initialization for an existing mint.
type CreatePoolParams struct {
	Mint solana.PublicKey
	// InitialPriceLamports is the starting price in lamports per whole
	// token; must be positive.
	InitialPriceLamports uint64
	// FeeBps is the pool trade fee in basis points; 0 selects the default.
	FeeBps uint16
}

type CreatePoolResult struct {
	Pool    solana.PublicKey
	Receipt chain.SubmissionReceipt
}

// AddLiquidityParams deposits token and SOL into a pool. Amounts are base
// units (token base units and lamports).
type AddLiquidityParams struct {
	Pool        solana.PublicKey
	TokenAmount uint64
	Lamports    uint64
}

// RemoveLiquidityParams burns LP shares from the caller's position.
type RemoveLiquidityParams struct {
	Pool     solana.PublicKey
	LPAmount uint64
}

type LiquidityResult struct {
	Pool     solana.PublicKey
	Position solana.PublicKey
	Receipt  chain.SubmissionReceipt
}

// SwapParams trades one side of a pool for the other. AmountIn is base
// units of the input asset.
type SwapParams struct {
	Pool solana.PublicKey
	// SolToToken selects the trade direction: SOL in, token out when true.
	SolToToken   bool
	AmountIn     uint64
	MinAmountOut uint64
}

type SwapResult struct {
	Pool    solana.PublicKey
	Receipt chain.SubmissionReceipt
}

// ClaimRewardsParams collects accrued rewards from a position.
type ClaimRewardsParams struct {
	Pool solana.PublicKey
}

type ClaimRewardsResult struct {
	Pool     solana.PublicKey
	Position solana.PublicKey
	Receipt  chain.SubmissionReceipt
}
