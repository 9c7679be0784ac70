package contract

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/plasmalabs/flashloan-harness/chain"
)

// FlashLoanTester ABI
const testerABI = `[
	{
		"inputs": [],
		"name": "owner",
		"outputs": [{"internalType": "address", "name": "", "type": "address"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "token", "type": "address"},
			{"internalType": "uint256", "name": "amount", "type": "uint256"},
			{"internalType": "uint8", "name": "mode", "type": "uint8"}
		],
		"name": "testFlashLoan",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// Mode selects contract-internal behavior for a flash-loan invocation.
// Only ModeSuccess has defined semantics; other values are fault-injection
// selectors interpreted by the contract and passed through untouched.
type Mode uint8

// ModeSuccess asks the contract to repay the loan plus fee normally.
const ModeSuccess Mode = 0

// Tester is a typed view over a deployed FlashLoanTester contract.
type Tester struct {
	address common.Address
	client  chain.Client
	signer  *chain.Signer
	abi     abi.ABI
	logger  *zap.Logger
}

// NewTester creates a tester accessor bound to the given contract address.
func NewTester(client chain.Client, signer *chain.Signer, address common.Address, logger *zap.Logger) (*Tester, error) {
	if client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	parsed, err := abi.JSON(strings.NewReader(testerABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse tester ABI: %w", err)
	}

	return &Tester{
		address: address,
		client:  client,
		signer:  signer,
		abi:     parsed,
		logger:  logger,
	}, nil
}

// Address returns the tester contract address.
func (c *Tester) Address() common.Address {
	return c.address
}

// Owner returns the contract's recorded owner.
func (c *Tester) Owner(ctx context.Context) (common.Address, error) {
	data, err := c.abi.Pack("owner")
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to pack owner: %w", err)
	}

	result, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &c.address, Data: data}, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("owner call failed: %w", err)
	}

	out, err := c.abi.Unpack("owner", result)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to unpack owner result: %w", err)
	}

	owner, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected owner result type %T", out[0])
	}
	return owner, nil
}

// TestFlashLoan submits the flash-loan invocation and returns the
// broadcast transaction.
func (c *Tester) TestFlashLoan(ctx context.Context, token common.Address, amount *big.Int, mode Mode, gasLimit uint64) (*types.Transaction, error) {
	if c.signer == nil {
		return nil, fmt.Errorf("testFlashLoan requires a signer")
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("invalid loan amount")
	}

	data, err := c.abi.Pack("testFlashLoan", token, amount, uint8(mode))
	if err != nil {
		return nil, fmt.Errorf("failed to pack testFlashLoan: %w", err)
	}

	tx, err := c.signer.SendCall(ctx, c.address, gasLimit, data)
	if err != nil {
		return nil, fmt.Errorf("failed to submit testFlashLoan: %w", err)
	}

	c.logger.Debug("Submitted flash loan invocation",
		zap.String("contract", c.address.Hex()),
		zap.String("token", token.Hex()),
		zap.String("amount", amount.String()),
		zap.Uint8("mode", uint8(mode)),
		zap.String("tx_hash", tx.Hash().Hex()))

	return tx, nil
}
