package executor

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeeFor(t *testing.T) {
	// 1 basis point with floor division
	tests := []struct {
		principal string
		expected  string
	}{
		{principal: "0", expected: "0"},
		{principal: "1", expected: "0"},
		{principal: "9999", expected: "0"},
		{principal: "10000", expected: "1"},
		{principal: "123456789", expected: "12345"},
		// values past uint64 must not truncate
		{principal: "1000000000000000000000000000000", expected: "100000000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.principal, func(t *testing.T) {
			principal, ok := new(big.Int).SetString(tt.principal, 10)
			require.True(t, ok)
			assert.Equal(t, tt.expected, FeeFor(principal, 1).String())
		})
	}
}

func TestFeeForOtherRates(t *testing.T) {
	principal := big.NewInt(10000000000000000) // 0.01 token at 18 decimals

	// 9 bps, the Aave rate
	assert.Equal(t, "9000000000000", FeeFor(principal, 9).String())
	// 100 bps = 1%
	assert.Equal(t, "100000000000000", FeeFor(principal, 100).String())
}

func TestFeeForDoesNotMutatePrincipal(t *testing.T) {
	principal := big.NewInt(123456789)
	FeeFor(principal, 1)
	assert.Equal(t, "123456789", principal.String())
}

func TestClassifyDiagnostic(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		expected Diagnostic
	}{
		{name: "balance", msg: "ERC20: transfer amount exceeds balance", expected: DiagnosticInsufficientContractBalance},
		{name: "disabled", msg: "pool disabled for token", expected: DiagnosticPoolDisabled},
		{name: "paused", msg: "Pausable: paused", expected: DiagnosticPoolDisabled},
		{name: "liquidity", msg: "insufficient liquidity", expected: DiagnosticInsufficientLiquidity},
		{name: "underpriced", msg: "transaction underpriced", expected: DiagnosticGasUnderpriced},
		{name: "gas", msg: "intrinsic gas too low", expected: DiagnosticGasUnderpriced},
		{name: "unknown", msg: "something else entirely", expected: DiagnosticUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyDiagnostic(tt.msg))
		})
	}
}
