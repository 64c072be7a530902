package launchpad

import (
	"github.com/gagliardetto/solana-go"
)

// Anchor instruction discriminators for the launchpad pool program.
var (
	launchTokenDiscriminator     = []byte{0x9d, 0x3b, 0x40, 0x52, 0xc1, 0x6e, 0x51, 0x2a}
	createPoolDiscriminator      = []byte{0xe9, 0x92, 0xd1, 0x8e, 0xcf, 0x68, 0x40, 0xbc}
	addLiquidityDiscriminator    = []byte{0xb5, 0x9d, 0x59, 0x43, 0x8f, 0xb6, 0x34, 0x48}
	removeLiquidityDiscriminator = []byte{0x50, 0x5f, 0xee, 0xf4, 0x3c, 0x3b, 0x9c, 0xc5}
	swapDiscriminator            = []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}
	claimRewardsDiscriminator    = []byte{0x04, 0x6e, 0xbb, 0xd9, 0x94, 0x2c, 0x99, 0x78}
)

// Account discriminators for program state decoding.
var (
	PoolAccountDiscriminator     = []byte{0xf1, 0x9a, 0x6d, 0x04, 0x11, 0xb1, 0x6d, 0xbc}
	PositionAccountDiscriminator = []byte{0xaa, 0xbc, 0x8f, 0xe4, 0x7a, 0x40, 0xf7, 0xd0}
	TradeAccountDiscriminator    = []byte{0x3e, 0xd4, 0x5a, 0x3f, 0x86, 0xd8, 0x5a, 0x14}
)

// Programs holds the on-chain program and well-known addresses the
// operations target. Values come from configuration, not hard-coded
// cluster assumptions.
type Programs struct {
	// Pool is the launchpad pool program.
	Pool solana.PublicKey
	// TokenMetadata is the metadata program attached at token launch.
	TokenMetadata solana.PublicKey
	// FeeRecipient collects protocol fees.
	FeeRecipient solana.PublicKey
}

// Seeds for program-derived addresses. Mints are PDAs so a launch needs no
// second signer; the program signs for the mint via CPI.
var (
	mintSeed     = []byte("mint")
	poolSeed     = []byte("pool")
	positionSeed = []byte("position")
	vaultSeed    = []byte("vault")
	metadataSeed = []byte("metadata")
)

// DeriveMint returns the PDA of the mint a creator launches under symbol.
func (p Programs) DeriveMint(creator solana.PublicKey, symbol string) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{mintSeed, creator.Bytes(), []byte(symbol)}, p.Pool)
	return addr, err
}

// DeriveMetadata returns the metadata PDA for mint under the metadata
// program's canonical seed layout.
func (p Programs) DeriveMetadata(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{metadataSeed, p.TokenMetadata.Bytes(), mint.Bytes()}, p.TokenMetadata)
	return addr, err
}

// DerivePool returns the PDA of the pool for a token mint.
func (p Programs) DerivePool(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{poolSeed, mint.Bytes()}, p.Pool)
	return addr, err
}

// DerivePosition returns the PDA of owner's liquidity position in pool.
func (p Programs) DerivePosition(pool, owner solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{positionSeed, pool.Bytes(), owner.Bytes()}, p.Pool)
	return addr, err
}

// DeriveVault returns the PDA of a pool's token vault for mint.
func (p Programs) DeriveVault(pool, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{vaultSeed, pool.Bytes(), mint.Bytes()}, p.Pool)
	return addr, err
}
