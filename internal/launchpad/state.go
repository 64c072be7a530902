package launchpad

import (
	"bytes"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"

	"github.com/rovshanmuradov/launchpad-core/internal/chain"
)

// PoolState is a transient, immutable projection of a pool account. The
// chain owns the data; every read produces a fresh copy.
type PoolState struct {
	Address             solana.PublicKey
	Mint                solana.PublicKey
	Creator             solana.PublicKey
	TokenReserve        uint64
	SolReserve          uint64
	LPSupply            uint64
	FeeBps              uint16
	RewardRatePerSecond uint64
	CumulativeVolume    uint64
	CreatedAt           time.Time
}

// SpotPrice returns the current lamports-per-base-unit price for display.
func (p *PoolState) SpotPrice() float64 {
	if p.TokenReserve == 0 {
		return 0
	}
	return float64(p.SolReserve) / float64(p.TokenReserve)
}

// Position is a user's liquidity position in one pool.
type Position struct {
	Address        solana.PublicKey
	Pool           solana.PublicKey
	Owner          solana.PublicKey
	LPShares       uint64
	RewardsAccrued uint64
	UpdatedAt      time.Time
}

// Trade is one recorded swap against a pool.
type Trade struct {
	Address       solana.PublicKey
	Pool          solana.PublicKey
	Trader        solana.PublicKey
	SolToToken    bool
	AmountIn      uint64
	AmountOut     uint64
	PriceLamports uint64
	Time          time.Time
}

type poolAccountData struct {
	Mint                [32]uint8
	Creator             [32]uint8
	TokenReserve        uint64
	SolReserve          uint64
	LPSupply            uint64
	FeeBps              uint16
	RewardRatePerSecond uint64
	CumulativeVolume    uint64
	CreatedAt           int64
}

type positionAccountData struct {
	Pool           [32]uint8
	Owner          [32]uint8
	LPShares       uint64
	RewardsAccrued uint64
	UpdatedAt      int64
}

type tradeAccountData struct {
	Pool          [32]uint8
	Trader        [32]uint8
	SolToToken    bool
	AmountIn      uint64
	AmountOut     uint64
	PriceLamports uint64
	Time          int64
}

func checkDiscriminator(data, want []byte) error {
	if len(data) < 8 || !bytes.Equal(data[:8], want) {
		return chain.Terminal(chain.CodeStateReadFailed, "unexpected account discriminator", nil)
	}
	return nil
}

// DecodePoolState deserializes a pool account.
func DecodePoolState(addr solana.PublicKey, data []byte) (*PoolState, error) {
	if err := checkDiscriminator(data, PoolAccountDiscriminator); err != nil {
		return nil, err
	}
	var raw poolAccountData
	if err := borsh.Deserialize(&raw, data[8:]); err != nil {
		return nil, chain.Terminal(chain.CodeStateReadFailed, "failed to decode pool account", err)
	}
	return &PoolState{
		Address:             addr,
		Mint:                solana.PublicKeyFromBytes(raw.Mint[:]),
		Creator:             solana.PublicKeyFromBytes(raw.Creator[:]),
		TokenReserve:        raw.TokenReserve,
		SolReserve:          raw.SolReserve,
		LPSupply:            raw.LPSupply,
		FeeBps:              raw.FeeBps,
		RewardRatePerSecond: raw.RewardRatePerSecond,
		CumulativeVolume:    raw.CumulativeVolume,
		CreatedAt:           time.Unix(raw.CreatedAt, 0),
	}, nil
}

// DecodePosition deserializes a position account.
func DecodePosition(addr solana.PublicKey, data []byte) (*Position, error) {
	if err := checkDiscriminator(data, PositionAccountDiscriminator); err != nil {
		return nil, err
	}
	var raw positionAccountData
	if err := borsh.Deserialize(&raw, data[8:]); err != nil {
		return nil, chain.Terminal(chain.CodeStateReadFailed, "failed to decode position account", err)
	}
	return &Position{
		Address:        addr,
		Pool:           solana.PublicKeyFromBytes(raw.Pool[:]),
		Owner:          solana.PublicKeyFromBytes(raw.Owner[:]),
		LPShares:       raw.LPShares,
		RewardsAccrued: raw.RewardsAccrued,
		UpdatedAt:      time.Unix(raw.UpdatedAt, 0),
	}, nil
}

// DecodeTrade deserializes a trade record account.
func DecodeTrade(addr solana.PublicKey, data []byte) (*Trade, error) {
	if err := checkDiscriminator(data, TradeAccountDiscriminator); err != nil {
		return nil, err
	}
	var raw tradeAccountData
	if err := borsh.Deserialize(&raw, data[8:]); err != nil {
		return nil, chain.Terminal(chain.CodeStateReadFailed, "failed to decode trade account", err)
	}
	return &Trade{
		Address:       addr,
		Pool:          solana.PublicKeyFromBytes(raw.Pool[:]),
		Trader:        solana.PublicKeyFromBytes(raw.Trader[:]),
		SolToToken:    raw.SolToToken,
		AmountIn:      raw.AmountIn,
		AmountOut:     raw.AmountOut,
		PriceLamports: raw.PriceLamports,
		Time:          time.Unix(raw.Time, 0),
	}, nil
}

// EncodePoolAccount serializes a pool account image. Tests and fixtures use
// it to produce the byte layout the program writes.
func EncodePoolAccount(s *PoolState) ([]byte, error) {
	raw := poolAccountData{
		TokenReserve:        s.TokenReserve,
		SolReserve:          s.SolReserve,
		LPSupply:            s.LPSupply,
		FeeBps:              s.FeeBps,
		RewardRatePerSecond: s.RewardRatePerSecond,
		CumulativeVolume:    s.CumulativeVolume,
		CreatedAt:           s.CreatedAt.Unix(),
	}
	copy(raw.Mint[:], s.Mint.Bytes())
	copy(raw.Creator[:], s.Creator.Bytes())
	body, err := borsh.Serialize(raw)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, PoolAccountDiscriminator...), body...), nil
}

// EncodePositionAccount serializes a position account image.
func EncodePositionAccount(p *Position) ([]byte, error) {
	raw := positionAccountData{
		LPShares:       p.LPShares,
		RewardsAccrued: p.RewardsAccrued,
		UpdatedAt:      p.UpdatedAt.Unix(),
	}
	copy(raw.Pool[:], p.Pool.Bytes())
	copy(raw.Owner[:], p.Owner.Bytes())
	body, err := borsh.Serialize(raw)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, PositionAccountDiscriminator...), body...), nil
}

// EncodeTradeAccount serializes a trade record account image.
func EncodeTradeAccount(t *Trade) ([]byte, error) {
	raw := tradeAccountData{
		SolToToken:    t.SolToToken,
		AmountIn:      t.AmountIn,
		AmountOut:     t.AmountOut,
		PriceLamports: t.PriceLamports,
		Time:          t.Time.Unix(),
	}
	copy(raw.Pool[:], t.Pool.Bytes())
	copy(raw.Trader[:], t.Trader.Bytes())
	body, err := borsh.Serialize(raw)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, TradeAccountDiscriminator...), body...), nil
}
