package launchpad

import (
	"math"
	"math/big"

	"github.com/rovshanmuradov/launchpad-core/internal/chain"
)

// DefaultDecimals is the token decimal count used when a caller does not
// specify one.
const DefaultDecimals = 9

// LamportsPerSOL is the native base-unit scale.
const LamportsPerSOL = 1_000_000_000

// BaseUnits converts a whole-token amount into base units: amount * 10^decimals,
// computed exactly in integer arithmetic. Floating point is never involved;
// multiplying through a float64 before truncating loses units once the
// product crosses 2^53.
func BaseUnits(amount uint64, decimals uint8) *big.Int {
	exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Int).Mul(new(big.Int).SetUint64(amount), exp)
}

// BaseUnitsU64 is BaseUnits narrowed to the u64 an instruction field holds.
// Amounts that do not fit are INVALID_INPUT: the token program itself could
// never mint them.
func BaseUnitsU64(amount uint64, decimals uint8) (uint64, error) {
	v := BaseUnits(amount, decimals)
	if !v.IsUint64() {
		return 0, chain.Terminal(chain.CodeInvalidInput,
			"amount exceeds the maximum representable supply", nil)
	}
	return v.Uint64(), nil
}

// SolToLamports converts a SOL amount to lamports, rounding down.
// Display-layer convenience only; operation inputs are already base units.
func SolToLamports(sol float64) uint64 {
	if sol <= 0 {
		return 0
	}
	return uint64(math.Floor(sol * LamportsPerSOL))
}
