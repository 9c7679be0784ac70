package executor

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Diagnostic is an advisory hint attached to a failed flash-loan
// invocation. It is chosen heuristically from the error text and is never
// required for correctness.
type Diagnostic int

const (
	DiagnosticUnknown Diagnostic = iota
	DiagnosticInsufficientContractBalance
	DiagnosticPoolDisabled
	DiagnosticInsufficientLiquidity
	DiagnosticGasUnderpriced
)

func (d Diagnostic) String() string {
	switch d {
	case DiagnosticInsufficientContractBalance:
		return "insufficient contract balance: the contract needs tokens to pay the fee"
	case DiagnosticPoolDisabled:
		return "pool disabled: check whether the token pool is enabled"
	case DiagnosticInsufficientLiquidity:
		return "insufficient liquidity: the pool may not hold enough tokens"
	case DiagnosticGasUnderpriced:
		return "gas underpriced: try raising the gas limit or price"
	default:
		return "unknown"
	}
}

// classifyDiagnostic maps an error or revert message onto the advisory
// categories. Liquidity is matched before balance since both phrasings
// start with "insufficient".
func classifyDiagnostic(msg string) Diagnostic {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "disabled") || strings.Contains(msg, "paused"):
		return DiagnosticPoolDisabled
	case strings.Contains(msg, "liquidity"):
		return DiagnosticInsufficientLiquidity
	case strings.Contains(msg, "balance"):
		return DiagnosticInsufficientContractBalance
	case strings.Contains(msg, "underpriced") || strings.Contains(msg, "gas"):
		return DiagnosticGasUnderpriced
	default:
		return DiagnosticUnknown
	}
}

// NoFundsError aborts a run whose signer holds no tokens to fund the fee.
type NoFundsError struct {
	Account common.Address
	Token   common.Address
}

func (e *NoFundsError) Error() string {
	return fmt.Sprintf("account %s holds no balance of token %s", e.Account.Hex(), e.Token.Hex())
}

// NotOwnerError aborts a run whose signer does not own the tester
// contract.
type NotOwnerError struct {
	Owner  common.Address
	Signer common.Address
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("signer %s is not the contract owner %s", e.Signer.Hex(), e.Owner.Hex())
}

// InsufficientFundingError aborts a run whose configured funding amount
// cannot cover the computed fee; the contract's repayment check would
// revert the loan anyway.
type InsufficientFundingError struct {
	Funding *big.Int
	Fee     *big.Int
}

func (e *InsufficientFundingError) Error() string {
	return fmt.Sprintf("funding amount %s does not cover the computed fee %s", e.Funding, e.Fee)
}

// FundingFailedError reports that the funding transfer was not confirmed.
type FundingFailedError struct {
	TxHash common.Hash
	Err    error
}

func (e *FundingFailedError) Error() string {
	return fmt.Sprintf("funding transfer %s failed: %v", e.TxHash.Hex(), e.Err)
}

func (e *FundingFailedError) Unwrap() error { return e.Err }

// FlashLoanExecutionError reports a failed flash-loan invocation, with the
// revert reason when the chain surfaced one.
type FlashLoanExecutionError struct {
	TxHash       common.Hash
	RevertReason string
	Diagnostic   Diagnostic
	Err          error
}

func (e *FlashLoanExecutionError) Error() string {
	if e.RevertReason != "" {
		return fmt.Sprintf("flash loan execution failed: %s", e.RevertReason)
	}
	return fmt.Sprintf("flash loan transaction %s failed", e.TxHash.Hex())
}

func (e *FlashLoanExecutionError) Unwrap() error { return e.Err }

// RPCError reports a transport or node failure during a read-only query.
type RPCError struct {
	Op  string
	Err error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc %s failed: %v", e.Op, e.Err)
}

func (e *RPCError) Unwrap() error { return e.Err }

// FeeMismatchWarning records a fee accounting discrepancy. The loan itself
// committed, so this is surfaced on the report instead of failing the run.
type FeeMismatchWarning struct {
	Expected *big.Int
	Paid     *big.Int
}

func (w *FeeMismatchWarning) Error() string {
	return fmt.Sprintf("fee paid %s does not match expected fee %s", w.Paid, w.Expected)
}
