package executor

import "math/big"

// feeDenominator converts basis points to a fraction (1 bp = 0.01%).
var feeDenominator = big.NewInt(10000)

// FeeFor computes the flash-loan fee for a principal in base units:
// principal * feeBasisPoints / 10000, truncated (floor division).
func FeeFor(principal *big.Int, feeBasisPoints uint16) *big.Int {
	fee := new(big.Int).Mul(principal, big.NewInt(int64(feeBasisPoints)))
	return fee.Div(fee, feeDenominator)
}
