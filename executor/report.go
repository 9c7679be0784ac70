package executor

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/plasmalabs/flashloan-harness/chain"
)

// State is the orchestrator's position in the execution workflow.
type State int

const (
	StateInit State = iota
	StateValidated
	StateFunded
	StateInvoked
	StateVerified
	StateAborted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateValidated:
		return "validated"
	case StateFunded:
		return "funded"
	case StateInvoked:
		return "invoked"
	case StateVerified:
		return "verified"
	case StateAborted:
		return "aborted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Report is the structured outcome of a run. It carries enough detail for
// a caller to render the result and, after a partial failure, to recover
// any tokens already moved to the contract. Formatting is the caller's
// concern.
type Report struct {
	State State

	// Run identity
	ChainID *big.Int
	Signer  common.Address
	Token   common.Address
	Target  common.Address

	// Token metadata resolved during validation
	TokenSymbol   string
	TokenDecimals uint8

	// Loan parameters, in base units
	Principal     *big.Int
	ExpectedFee   *big.Int
	FundingAmount *big.Int

	// Observed balances, in base units
	WalletBalance *big.Int
	BalanceBefore *big.Int
	BalanceAfter  *big.Int

	// Confirmations for the state-changing steps; FundingReceipt survives
	// a later invocation failure so leftover funds can be traced.
	FundingReceipt *chain.Receipt
	LoanReceipt    *chain.Receipt

	// Fee verification outcome
	FeePaid  *big.Int
	FeeMatch bool
	Warning  *FeeMismatchWarning

	// Terminal error for non-verified states
	Err error
}

// GasUsed sums the gas spent across the run's confirmed transactions.
func (r *Report) GasUsed() uint64 {
	var total uint64
	if r.FundingReceipt != nil {
		total += r.FundingReceipt.GasUsed
	}
	if r.LoanReceipt != nil {
		total += r.LoanReceipt.GasUsed
	}
	return total
}
