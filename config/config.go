package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ConfigurationError reports every problem found while validating the run
// configuration. It is always produced before any chain call is made.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration validation failed: %s", strings.Join(e.Problems, "; "))
}

// RateLimitConfig bounds the request rate against the RPC endpoint.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// Config holds everything a harness run needs. Addresses and the signing
// key are validated once at load time; a placeholder or malformed value
// fails the whole run up front.
type Config struct {
	// Chain and contract endpoints
	RPCEndpoint     string
	PrivateKey      string
	TokenAddress    common.Address
	TesterAddress   common.Address
	ProviderAddress common.Address

	// Deployment artifact (hardhat output) for the deploy step
	ArtifactPath string

	// Loan policy, in whole tokens; scaled by the token's decimals at run time
	LoanAmountTokens    uint64
	FundingAmountTokens uint64
	FeeBasisPoints      uint16

	// Transaction settings
	ReceiptTimeout   time.Duration
	TransferGasLimit uint64
	LoanGasLimit     uint64
	DeployGasLimit   uint64

	RPCRateLimit RateLimitConfig
}

// DefaultConfig returns the loan policy and transaction settings used by
// the stock FlashLoanTester workflow: a 100 token loan at 1 basis point,
// funded with 1 token.
func DefaultConfig() *Config {
	return &Config{
		ArtifactPath:        "artifacts/contracts/FlashLoanTester.sol/FlashLoanTester.json",
		LoanAmountTokens:    100,
		FundingAmountTokens: 1,
		FeeBasisPoints:      1,
		ReceiptTimeout:      2 * time.Minute,
		TransferGasLimit:    100000,
		LoanGasLimit:        500000,
		DeployGasLimit:      2000000,
		RPCRateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			BurstSize:         100,
		},
	}
}

// Load builds a Config from the environment, loading the given .env file
// first. Malformed or placeholder values are rejected here; presence
// requirements are checked by Validate or ValidateDeploy depending on the
// step being run. On error no chain connection has been attempted.
func Load(envFile string) (*Config, error) {
	if err := LoadEnv(envFile); err != nil {
		return nil, &ConfigurationError{Problems: []string{fmt.Sprintf("failed to load env file: %v", err)}}
	}

	cfg := DefaultConfig()
	var problems []string

	cfg.RPCEndpoint = os.Getenv(EnvRPCEndpoint)
	cfg.PrivateKey = os.Getenv(EnvPrivateKey)
	cfg.ArtifactPath = GetEnvWithDefault(EnvArtifactPath, cfg.ArtifactPath)

	addr, errs := parseAddress(EnvTokenAddress, os.Getenv(EnvTokenAddress))
	cfg.TokenAddress = addr
	problems = append(problems, errs...)

	addr, errs = parseAddress(EnvTesterAddress, os.Getenv(EnvTesterAddress))
	cfg.TesterAddress = addr
	problems = append(problems, errs...)

	addr, errs = parseAddress(EnvProviderAddress, os.Getenv(EnvProviderAddress))
	cfg.ProviderAddress = addr
	problems = append(problems, errs...)

	if v := os.Getenv(EnvLoanAmount); v != "" {
		amount, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s must be a whole token count: %v", EnvLoanAmount, err))
		} else {
			cfg.LoanAmountTokens = amount
		}
	}
	if v := os.Getenv(EnvFundingAmount); v != "" {
		amount, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s must be a whole token count: %v", EnvFundingAmount, err))
		} else {
			cfg.FundingAmountTokens = amount
		}
	}

	if len(problems) > 0 {
		return nil, &ConfigurationError{Problems: problems}
	}

	return cfg, nil
}

// Validate checks the requirements of an execution run and collects all
// problems into a single ConfigurationError.
func (c *Config) Validate() error {
	var problems []string

	problems = append(problems, c.commonProblems()...)

	if (c.TokenAddress == common.Address{}) {
		problems = append(problems, "token address must be specified")
	}
	if (c.TesterAddress == common.Address{}) {
		problems = append(problems, "tester contract address must be specified (deploy first)")
	}

	if c.FeeBasisPoints == 0 {
		problems = append(problems, "fee basis points must be positive")
	}
	if c.LoanAmountTokens == 0 {
		problems = append(problems, "loan amount must be positive")
	}
	if c.ReceiptTimeout <= 0 {
		problems = append(problems, "receipt timeout must be positive")
	}
	if c.TransferGasLimit == 0 || c.LoanGasLimit == 0 {
		problems = append(problems, "gas limits must be positive")
	}
	if c.RPCRateLimit.RequestsPerSecond <= 0 {
		problems = append(problems, "rpc requests per second must be positive")
	}
	if c.RPCRateLimit.BurstSize <= 0 {
		problems = append(problems, "rpc burst size must be positive")
	}

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

// ValidateDeploy checks the requirements of the deployment step, which
// runs before a tester contract address exists.
func (c *Config) ValidateDeploy() error {
	var problems []string

	problems = append(problems, c.commonProblems()...)

	if (c.ProviderAddress == common.Address{}) {
		problems = append(problems, "flash loan provider address must be specified")
	}
	if c.ArtifactPath == "" {
		problems = append(problems, "artifact path must be specified")
	}
	if c.DeployGasLimit == 0 {
		problems = append(problems, "deploy gas limit must be positive")
	}

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

func (c *Config) commonProblems() []string {
	var problems []string

	if c.RPCEndpoint == "" {
		problems = append(problems, "rpc endpoint must be specified")
	} else if isPlaceholder(c.RPCEndpoint) {
		problems = append(problems, "rpc endpoint is still a placeholder value")
	}

	problems = append(problems, validatePrivateKey(c.PrivateKey)...)
	return problems
}

func parseAddress(name, value string) (common.Address, []string) {
	switch {
	case value == "":
		return common.Address{}, nil
	case isPlaceholder(value):
		return common.Address{}, []string{fmt.Sprintf("%s is still a placeholder value", name)}
	case !strings.HasPrefix(value, "0x") || !common.IsHexAddress(value):
		return common.Address{}, []string{fmt.Sprintf("%s is not a well-formed 0x-prefixed hex address: %q", name, value)}
	}
	return common.HexToAddress(value), nil
}

func validatePrivateKey(key string) []string {
	switch {
	case key == "":
		return []string{"private key must be set"}
	case isPlaceholder(key):
		return []string{"private key is still a placeholder value"}
	}

	raw := strings.TrimPrefix(key, "0x")
	decoded, err := hex.DecodeString(raw)
	if err != nil || len(decoded) != 32 {
		return []string{"private key is not a well-formed 32-byte hex string"}
	}
	return nil
}

// isPlaceholder catches the <YOUR_...> sentinel values that ship in
// example configuration before the operator fills them in.
func isPlaceholder(value string) bool {
	return strings.HasPrefix(value, "<") || strings.Contains(value, "YOUR_")
}
