package utils

import (
	"math/big"
	"strings"
)

// ScaleToBase converts a whole-token amount to the token's base unit,
// multiplying by 10^decimals. All token arithmetic happens in base units;
// floating point is never involved.
func ScaleToBase(whole uint64, decimals uint8) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return scale.Mul(scale, new(big.Int).SetUint64(whole))
}

// FormatUnits renders a base-unit amount as a decimal string, e.g.
// 1500000 with 6 decimals becomes "1.5". The conversion is pure string
// manipulation so arbitrary-precision values survive unchanged.
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}

	sign := ""
	abs := new(big.Int).Abs(amount)
	if amount.Sign() < 0 {
		sign = "-"
	}

	digits := abs.String()
	if decimals == 0 {
		return sign + digits
	}

	if len(digits) <= int(decimals) {
		digits = strings.Repeat("0", int(decimals)-len(digits)+1) + digits
	}

	split := len(digits) - int(decimals)
	whole, frac := digits[:split], digits[split:]

	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		return sign + whole
	}
	return sign + whole + "." + frac
}
