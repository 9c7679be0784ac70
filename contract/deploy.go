package contract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/plasmalabs/flashloan-harness/chain"
)

// Artifact is the slice of a hardhat build artifact the deployer needs.
type Artifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

// LoadArtifact reads a compiled contract artifact from disk.
func LoadArtifact(path string) (*Artifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s (compile the contract first): %w", path, err)
	}

	var artifact Artifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", path, err)
	}
	if artifact.Bytecode == "" || artifact.Bytecode == "0x" {
		return nil, fmt.Errorf("artifact %s has no bytecode", path)
	}
	return &artifact, nil
}

// Deployer publishes the FlashLoanTester contract. Deployment is a
// one-time step; the resulting address is handed back to the caller, which
// is responsible for persisting it.
type Deployer struct {
	client chain.Client
	signer *chain.Signer
	logger *zap.Logger
}

// NewDeployer creates a contract deployer.
func NewDeployer(client chain.Client, signer *chain.Signer, logger *zap.Logger) (*Deployer, error) {
	if client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if signer == nil {
		return nil, fmt.Errorf("signer cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deployer{client: client, signer: signer, logger: logger}, nil
}

// Deploy submits the creation transaction with the flash-loan provider
// address as the constructor argument and waits for it to be mined.
func (d *Deployer) Deploy(ctx context.Context, artifact *Artifact, provider common.Address, gasLimit uint64, timeout time.Duration) (common.Address, *chain.Receipt, error) {
	parsed, err := abi.JSON(bytes.NewReader(artifact.ABI))
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("failed to parse artifact ABI: %w", err)
	}

	args, err := parsed.Pack("", provider)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("failed to pack constructor args: %w", err)
	}

	data := append(common.FromHex(artifact.Bytecode), args...)
	tx, err := d.signer.SendCreate(ctx, gasLimit, data)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("failed to submit deployment: %w", err)
	}

	address := crypto.CreateAddress(d.signer.Address(), tx.Nonce())
	d.logger.Info("Deployment transaction sent",
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.String("contract", address.Hex()))

	receipt, err := chain.WaitReceipt(ctx, d.client, tx.Hash(), timeout)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("deployment not confirmed: %w", err)
	}
	if !receipt.Success {
		return common.Address{}, receipt, fmt.Errorf("deployment transaction %s reverted", tx.Hash().Hex())
	}

	return address, receipt, nil
}
