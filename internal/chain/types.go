package chain

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// Asset identifies a balance-carrying asset: the native coin (SOL) or an
// SPL token mint. The zero value is the native asset.
type Asset struct {
	Mint solana.PublicKey
}

// NativeAsset returns the native SOL asset.
func NativeAsset() Asset { return Asset{} }

// TokenAsset returns the asset for an SPL token mint.
func TokenAsset(mint solana.PublicKey) Asset { return Asset{Mint: mint} }

func (a Asset) IsNative() bool { return a.Mint.IsZero() }

func (a Asset) String() string {
	if a.IsNative() {
		return "SOL"
	}
	return a.Mint.String()
}

// BlockRef is a short-lived marker of a recent ledger state. A transaction
// anchored to an expired BlockRef can never confirm.
type BlockRef struct {
	Hash                 solana.Hash
	LastValidBlockHeight uint64
	FetchedAt            time.Time
}

// BalanceSnapshot is the balance of one asset at one address at query time.
// Snapshots are stale the moment any mutating call runs; never cache them.
type BalanceSnapshot struct {
	Address   solana.PublicKey
	Asset     Asset
	Amount    uint64
	FetchedAt time.Time
}

// ConfirmationStatus tracks a submitted transaction through its lifecycle.
type ConfirmationStatus string

const (
	StatusPending   ConfirmationStatus = "pending"
	StatusConfirmed ConfirmationStatus = "confirmed"
	StatusFailed    ConfirmationStatus = "failed"
)

// SubmissionReceipt is the outcome record of a submitted transaction.
// Once Status reaches confirmed or failed the receipt is terminal.
type SubmissionReceipt struct {
	Signature solana.Signature
	Status    ConfirmationStatus
	Slot      uint64
	Err       string
	Timestamp time.Time
}

// Filter restricts a program-account scan to accounts whose data matches
// Bytes at Offset.
type Filter struct {
	Offset uint64
	Bytes  []byte
}

// ProgramAccount is one (address, raw data) pair from a program scan.
type ProgramAccount struct {
	Address solana.PublicKey
	Data    []byte
}
