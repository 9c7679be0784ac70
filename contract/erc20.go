// Package contract provides typed accessors over the on-chain contracts
// the harness talks to: the fungible token and the FlashLoanTester
// receiver.
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
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/plasmalabs/flashloan-harness/chain"
)

// ERC20 ABI, limited to the calls the harness makes
const erc20ABI = `[
	{
		"inputs": [{"internalType": "address", "name": "account", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "to", "type": "address"},
			{"internalType": "uint256", "name": "amount", "type": "uint256"}
		],
		"name": "transfer",
		"outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "symbol",
		"outputs": [{"internalType": "string", "name": "", "type": "string"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "decimals",
		"outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

type tokenMetadata struct {
	Symbol   string
	Decimals uint8
}

// Token metadata is immutable on chain, so it is cached across accessor
// instances and runs.
var metadataCache, _ = lru.New(64)

// ERC20 is a typed view over a fungible-token contract.
type ERC20 struct {
	address common.Address
	client  chain.Client
	signer  *chain.Signer
	abi     abi.ABI
	logger  *zap.Logger
}

// NewERC20 creates a token accessor bound to the given contract address.
func NewERC20(client chain.Client, signer *chain.Signer, address common.Address, logger *zap.Logger) (*ERC20, error) {
	if client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	return &ERC20{
		address: address,
		client:  client,
		signer:  signer,
		abi:     parsed,
		logger:  logger,
	}, nil
}

// Address returns the token contract address.
func (t *ERC20) Address() common.Address {
	return t.address
}

// BalanceOf returns the base-unit balance of the given account.
func (t *ERC20) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	out, err := t.call(ctx, "balanceOf", account)
	if err != nil {
		return nil, err
	}

	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result type %T", out[0])
	}
	return balance, nil
}

// Symbol returns the token's display symbol.
func (t *ERC20) Symbol(ctx context.Context) (string, error) {
	meta, err := t.metadata(ctx)
	if err != nil {
		return "", err
	}
	return meta.Symbol, nil
}

// Decimals returns the token's base-unit scaling factor.
func (t *ERC20) Decimals(ctx context.Context) (uint8, error) {
	meta, err := t.metadata(ctx)
	if err != nil {
		return 0, err
	}
	return meta.Decimals, nil
}

// Transfer submits a token transfer from the signer to the given address
// and returns the broadcast transaction.
func (t *ERC20) Transfer(ctx context.Context, to common.Address, amount *big.Int, gasLimit uint64) (*types.Transaction, error) {
	if t.signer == nil {
		return nil, fmt.Errorf("transfer requires a signer")
	}
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid transfer amount")
	}

	data, err := t.abi.Pack("transfer", to, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack transfer: %w", err)
	}

	tx, err := t.signer.SendCall(ctx, t.address, gasLimit, data)
	if err != nil {
		return nil, fmt.Errorf("failed to submit transfer: %w", err)
	}

	t.logger.Debug("Submitted token transfer",
		zap.String("token", t.address.Hex()),
		zap.String("to", to.Hex()),
		zap.String("amount", amount.String()),
		zap.String("tx_hash", tx.Hash().Hex()))

	return tx, nil
}

func (t *ERC20) metadata(ctx context.Context) (tokenMetadata, error) {
	if cached, ok := metadataCache.Get(t.address); ok {
		return cached.(tokenMetadata), nil
	}

	symbolOut, err := t.call(ctx, "symbol")
	if err != nil {
		return tokenMetadata{}, err
	}
	symbol, ok := symbolOut[0].(string)
	if !ok {
		return tokenMetadata{}, fmt.Errorf("unexpected symbol result type %T", symbolOut[0])
	}

	decimalsOut, err := t.call(ctx, "decimals")
	if err != nil {
		return tokenMetadata{}, err
	}
	decimals, ok := decimalsOut[0].(uint8)
	if !ok {
		return tokenMetadata{}, fmt.Errorf("unexpected decimals result type %T", decimalsOut[0])
	}

	meta := tokenMetadata{Symbol: symbol, Decimals: decimals}
	metadataCache.Add(t.address, meta)
	return meta, nil
}

func (t *ERC20) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := t.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	result, err := t.client.CallContract(ctx, ethereum.CallMsg{To: &t.address, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}

	out, err := t.abi.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	return out, nil
}
