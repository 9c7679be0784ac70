package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleToBase(t *testing.T) {
	tests := []struct {
		name     string
		whole    uint64
		decimals uint8
		expected string
	}{
		{name: "zero", whole: 0, decimals: 18, expected: "0"},
		{name: "one_token_6_decimals", whole: 1, decimals: 6, expected: "1000000"},
		{name: "hundred_tokens_18_decimals", whole: 100, decimals: 18, expected: "100000000000000000000"},
		{name: "no_decimals", whole: 42, decimals: 0, expected: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaleToBase(tt.whole, tt.decimals)
			assert.Equal(t, tt.expected, got.String())
		})
	}
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		expected string
	}{
		{name: "whole_amount", amount: "1000000", decimals: 6, expected: "1"},
		{name: "fractional", amount: "1500000", decimals: 6, expected: "1.5"},
		{name: "sub_unit", amount: "10000", decimals: 6, expected: "0.01"},
		{name: "zero", amount: "0", decimals: 18, expected: "0"},
		{name: "no_decimals", amount: "123", decimals: 0, expected: "123"},
		{name: "negative_delta", amount: "-10000000000000000", decimals: 18, expected: "-0.01"},
		{name: "larger_than_uint64", amount: "123456789012345678901234567890", decimals: 18, expected: "123456789012.34567890123456789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, ok := new(big.Int).SetString(tt.amount, 10)
			require.True(t, ok)
			assert.Equal(t, tt.expected, FormatUnits(amount, tt.decimals))
		})
	}
}

func TestFormatUnitsNil(t *testing.T) {
	assert.Equal(t, "0", FormatUnits(nil, 18))
}
