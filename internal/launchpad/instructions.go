package launchpad

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// insData accumulates anchor-encoded instruction data: the 8-byte
// discriminator followed by little-endian fixed-width args and
// u32-length-prefixed strings.
type insData struct {
	buf []byte
}

func newInsData(discriminator []byte) *insData {
	d := &insData{buf: make([]byte, 0, 64)}
	d.buf = append(d.buf, discriminator...)
	return d
}

func (d *insData) u8(v uint8) *insData {
	d.buf = append(d.buf, v)
	return d
}

func (d *insData) u16(v uint16) *insData {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	d.buf = append(d.buf, b[:]...)
	return d
}

func (d *insData) u64(v uint64) *insData {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	d.buf = append(d.buf, b[:]...)
	return d
}

func (d *insData) str(s string) *insData {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(len(s)))
	d.buf = append(d.buf, b[:]...)
	d.buf = append(d.buf, s...)
	return d
}

func (d *insData) bytes() []byte { return d.buf }

var associatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")

// createATAIdempotentInstruction creates owner's associated token account
// for mint if it does not exist yet.
func createATAIdempotentInstruction(payer, owner, mint solana.PublicKey) solana.Instruction {
	ata, _, _ := solana.FindAssociatedTokenAddress(owner, mint)
	return solana.NewInstruction(
		associatedTokenProgramID,
		[]*solana.AccountMeta{
			{PublicKey: payer, IsWritable: true, IsSigner: true},
			{PublicKey: ata, IsWritable: true, IsSigner: false},
			{PublicKey: owner, IsWritable: false, IsSigner: false},
			{PublicKey: mint, IsWritable: false, IsSigner: false},
			{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
			{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
			{PublicKey: solana.SysVarRentPubkey, IsWritable: false, IsSigner: false},
		},
		// Instruction code 1 is CreateIdempotent.
		[]byte{1},
	)
}

// buildLaunchTokenInstruction mints a new token under the pool program.
// The mint is a PDA, so the creator is the only required signer; the
// program signs for the mint via CPI.
func buildLaunchTokenInstruction(
	p Programs,
	creator, mint, metadata, creatorATA solana.PublicKey,
	name, symbol, uri string,
	supplyBaseUnits uint64,
	decimals uint8,
) solana.Instruction {
	data := newInsData(launchTokenDiscriminator).
		str(name).
		str(symbol).
		str(uri).
		u64(supplyBaseUnits).
		u8(decimals).
		bytes()

	accounts := []*solana.AccountMeta{
		{PublicKey: creator, IsSigner: true, IsWritable: true},
		{PublicKey: mint, IsSigner: false, IsWritable: true},
		{PublicKey: metadata, IsSigner: false, IsWritable: true},
		{PublicKey: creatorATA, IsSigner: false, IsWritable: true},
		{PublicKey: p.TokenMetadata, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: associatedTokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(p.Pool, accounts, data)
}

func buildCreatePoolInstruction(
	p Programs,
	creator, mint, pool, tokenVault, solVault solana.PublicKey,
	initialPriceLamports uint64,
	feeBps uint16,
) solana.Instruction {
	data := newInsData(createPoolDiscriminator).
		u64(initialPriceLamports).
		u16(feeBps).
		bytes()

	accounts := []*solana.AccountMeta{
		{PublicKey: creator, IsSigner: true, IsWritable: true},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: pool, IsSigner: false, IsWritable: true},
		{PublicKey: tokenVault, IsSigner: false, IsWritable: true},
		{PublicKey: solVault, IsSigner: false, IsWritable: true},
		{PublicKey: p.FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(p.Pool, accounts, data)
}

func buildAddLiquidityInstruction(
	p Programs,
	owner, pool, mint, position, ownerATA, tokenVault, solVault solana.PublicKey,
	tokenAmount, lamports uint64,
) solana.Instruction {
	data := newInsData(addLiquidityDiscriminator).
		u64(tokenAmount).
		u64(lamports).
		bytes()

	accounts := []*solana.AccountMeta{
		{PublicKey: owner, IsSigner: true, IsWritable: true},
		{PublicKey: pool, IsSigner: false, IsWritable: true},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: position, IsSigner: false, IsWritable: true},
		{PublicKey: ownerATA, IsSigner: false, IsWritable: true},
		{PublicKey: tokenVault, IsSigner: false, IsWritable: true},
		{PublicKey: solVault, IsSigner: false, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(p.Pool, accounts, data)
}

func buildRemoveLiquidityInstruction(
	p Programs,
	owner, pool, mint, position, ownerATA, tokenVault, solVault solana.PublicKey,
	lpAmount uint64,
) solana.Instruction {
	data := newInsData(removeLiquidityDiscriminator).
		u64(lpAmount).
		bytes()

	accounts := []*solana.AccountMeta{
		{PublicKey: owner, IsSigner: true, IsWritable: true},
		{PublicKey: pool, IsSigner: false, IsWritable: true},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: position, IsSigner: false, IsWritable: true},
		{PublicKey: ownerATA, IsSigner: false, IsWritable: true},
		{PublicKey: tokenVault, IsSigner: false, IsWritable: true},
		{PublicKey: solVault, IsSigner: false, IsWritable: true},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(p.Pool, accounts, data)
}

func buildSwapInstruction(
	p Programs,
	trader, pool, mint, traderATA, tokenVault, solVault solana.PublicKey,
	solToToken bool,
	amountIn, minAmountOut uint64,
) solana.Instruction {
	direction := uint8(0)
	if solToToken {
		direction = 1
	}
	data := newInsData(swapDiscriminator).
		u8(direction).
		u64(amountIn).
		u64(minAmountOut).
		bytes()

	accounts := []*solana.AccountMeta{
		{PublicKey: trader, IsSigner: true, IsWritable: true},
		{PublicKey: pool, IsSigner: false, IsWritable: true},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: traderATA, IsSigner: false, IsWritable: true},
		{PublicKey: tokenVault, IsSigner: false, IsWritable: true},
		{PublicKey: solVault, IsSigner: false, IsWritable: true},
		{PublicKey: p.FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(p.Pool, accounts, data)
}

func buildClaimRewardsInstruction(
	p Programs,
	owner, pool, position, ownerATA, tokenVault solana.PublicKey,
) solana.Instruction {
	data := newInsData(claimRewardsDiscriminator).bytes()

	accounts := []*solana.AccountMeta{
		{PublicKey: owner, IsSigner: true, IsWritable: true},
		{PublicKey: pool, IsSigner: false, IsWritable: true},
		{PublicKey: position, IsSigner: false, IsWritable: true},
		{PublicKey: ownerATA, IsSigner: false, IsWritable: true},
		{PublicKey: tokenVault, IsSigner: false, IsWritable: true},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(p.Pool, accounts, data)
}
