package config

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey     = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	testAddress = "0xE5aE1FF9c761F581ac4F1d3075e12ae340500C99"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.RPCEndpoint = "https://testnet-rpc.plasma.to"
	cfg.PrivateKey = testKey
	cfg.TokenAddress = common.HexToAddress(testAddress)
	cfg.TesterAddress = common.HexToAddress("0x63A6E3A5743F75388e58e8B778023380694aD3e5")
	cfg.ProviderAddress = common.HexToAddress("0x63A6E3A5743F75388e58e8B778023380694aD3e5")
	return cfg
}

func TestValidateConfig(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	tests := []struct {
		name          string
		mutate        func(*Config)
		errorContains string
	}{
		{
			name:          "missing_rpc_endpoint",
			mutate:        func(c *Config) { c.RPCEndpoint = "" },
			errorContains: "rpc endpoint must be specified",
		},
		{
			name:          "placeholder_private_key",
			mutate:        func(c *Config) { c.PrivateKey = "<YOUR_PRIVATE_KEY_HERE>" },
			errorContains: "private key is still a placeholder",
		},
		{
			name:          "malformed_private_key",
			mutate:        func(c *Config) { c.PrivateKey = "0xdeadbeef" },
			errorContains: "32-byte hex string",
		},
		{
			name:          "zero_token_address",
			mutate:        func(c *Config) { c.TokenAddress = common.Address{} },
			errorContains: "token address must be specified",
		},
		{
			name:          "zero_fee_bps",
			mutate:        func(c *Config) { c.FeeBasisPoints = 0 },
			errorContains: "fee basis points must be positive",
		},
		{
			name:          "zero_loan_amount",
			mutate:        func(c *Config) { c.LoanAmountTokens = 0 },
			errorContains: "loan amount must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.NotEmpty(t, cfgErr.Problems)
		})
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.RPCEndpoint = ""
	cfg.PrivateKey = ""
	cfg.TokenAddress = common.Address{}

	err := cfg.Validate()
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Len(t, cfgErr.Problems, 3)
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name          string
		value         string
		errorContains string
	}{
		{name: "valid", value: testAddress},
		{name: "placeholder", value: "<DEPLOYED_CONTRACT_ADDRESS>", errorContains: "placeholder"},
		{name: "missing_prefix", value: "E5aE1FF9c761F581ac4F1d3075e12ae340500C99", errorContains: "not a well-formed"},
		{name: "not_hex", value: "0xzzzz", errorContains: "not a well-formed"},
		{name: "too_short", value: "0x1234", errorContains: "not a well-formed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, problems := parseAddress("FLASHLOAN_TOKEN_ADDRESS", tt.value)
			if tt.errorContains == "" {
				require.Empty(t, problems)
				assert.Equal(t, common.HexToAddress(tt.value), addr)
				return
			}
			require.Len(t, problems, 1)
			assert.Contains(t, problems[0], tt.errorContains)
		})
	}
}

func TestParseAddressEmptyIsDeferred(t *testing.T) {
	// A missing address is not a load failure; the per-step validators
	// decide whether it is required.
	addr, problems := parseAddress("FLASHLOAN_TESTER_ADDRESS", "")
	assert.Empty(t, problems)
	assert.Equal(t, common.Address{}, addr)
}

func TestValidateDeploy(t *testing.T) {
	cfg := validConfig()
	cfg.TesterAddress = common.Address{} // not deployed yet
	require.NoError(t, cfg.ValidateDeploy())

	cfg.ProviderAddress = common.Address{}
	err := cfg.ValidateDeploy()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider address")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvRPCEndpoint, "https://testnet-rpc.plasma.to")
	t.Setenv(EnvPrivateKey, testKey)
	t.Setenv(EnvTokenAddress, testAddress)
	t.Setenv(EnvTesterAddress, "0x63A6E3A5743F75388e58e8B778023380694aD3e5")
	t.Setenv(EnvProviderAddress, "0x63A6E3A5743F75388e58e8B778023380694aD3e5")
	t.Setenv(EnvLoanAmount, "250")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, uint64(250), cfg.LoanAmountTokens)
	assert.Equal(t, uint64(1), cfg.FundingAmountTokens)
	assert.Equal(t, uint16(1), cfg.FeeBasisPoints)
	assert.Equal(t, common.HexToAddress(testAddress), cfg.TokenAddress)
}

func TestLoadRejectsPlaceholders(t *testing.T) {
	t.Setenv(EnvRPCEndpoint, "https://testnet-rpc.plasma.to")
	t.Setenv(EnvPrivateKey, "<YOUR_PRIVATE_KEY_HERE>")
	t.Setenv(EnvTokenAddress, testAddress)
	t.Setenv(EnvTesterAddress, "<DEPLOYED_CONTRACT_ADDRESS>")
	t.Setenv(EnvProviderAddress, "0x63A6E3A5743F75388e58e8B778023380694aD3e5")

	_, err := Load("")
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "placeholder")
}
