package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvRPCEndpoint     = "FLASHLOAN_RPC_ENDPOINT"
	EnvPrivateKey      = "FLASHLOAN_PRIVATE_KEY"
	EnvTokenAddress    = "FLASHLOAN_TOKEN_ADDRESS"
	EnvTesterAddress   = "FLASHLOAN_TESTER_ADDRESS"
	EnvProviderAddress = "FLASHLOAN_PROVIDER_ADDRESS"
	EnvArtifactPath    = "FLASHLOAN_ARTIFACT_PATH"
	EnvLoanAmount      = "FLASHLOAN_LOAN_AMOUNT"
	EnvFundingAmount   = "FLASHLOAN_FUNDING_AMOUNT"
)

// LoadEnv loads environment variables from the given .env file, or from
// ./.env when the path is empty. A missing default file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); os.IsNotExist(err) {
			return nil
		}
		return godotenv.Load()
	}
	return godotenv.Load(path)
}

// GetEnvWithDefault gets an environment variable with a default value
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetRequiredEnv gets an environment variable that must be set
func GetRequiredEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s not set", key)
	}
	return value, nil
}
