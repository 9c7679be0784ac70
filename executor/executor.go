// Package executor sequences the flash-loan test workflow: precondition
// checks, the funding transfer, the loan invocation, and fee
// verification.
package executor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/plasmalabs/flashloan-harness/chain"
	"github.com/plasmalabs/flashloan-harness/config"
	"github.com/plasmalabs/flashloan-harness/contract"
	"github.com/plasmalabs/flashloan-harness/utils"
)

// Token is the fungible-token capability the executor consumes.
type Token interface {
	Address() common.Address
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
	Symbol(ctx context.Context) (string, error)
	Decimals(ctx context.Context) (uint8, error)
	Transfer(ctx context.Context, to common.Address, amount *big.Int, gasLimit uint64) (*types.Transaction, error)
}

// Target is the flash-loan tester capability the executor consumes.
type Target interface {
	Address() common.Address
	Owner(ctx context.Context) (common.Address, error)
	TestFlashLoan(ctx context.Context, token common.Address, amount *big.Int, mode contract.Mode, gasLimit uint64) (*types.Transaction, error)
}

// Executor drives one execution run. Runs are single-shot: nothing is
// retried automatically, since a partial run has already moved tokens; a
// caller that wants another attempt constructs a fresh run from the start.
type Executor struct {
	cfg     *config.Config
	client  chain.Client
	signer  *chain.Signer
	token   Token
	target  Target
	logger  *zap.Logger
	metrics struct {
		runs          prometheus.CounterVec
		latency       prometheus.Histogram
		feeMismatches prometheus.Counter
		gasUsed       prometheus.Counter
	}
}

// New creates an executor for one flash-loan test run.
func New(cfg *config.Config, client chain.Client, signer *chain.Signer, token Token, target Target, logger *zap.Logger) (*Executor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if signer == nil {
		return nil, fmt.Errorf("signer cannot be nil")
	}
	if token == nil {
		return nil, fmt.Errorf("token accessor cannot be nil")
	}
	if target == nil {
		return nil, fmt.Errorf("target accessor cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Executor{
		cfg:    cfg,
		client: client,
		signer: signer,
		token:  token,
		target: target,
		logger: logger,
	}

	e.metrics.runs = *prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flashloan_harness_runs_total",
		Help: "Number of execution runs by terminal state",
	}, []string{"state"})
	e.metrics.latency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "flashloan_harness_run_latency_seconds",
		Help:    "End to end latency of execution runs",
		Buckets: prometheus.DefBuckets,
	})
	e.metrics.feeMismatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flashloan_harness_fee_mismatches_total",
		Help: "Number of verified runs whose fee accounting did not match",
	})
	e.metrics.gasUsed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flashloan_harness_gas_used_total",
		Help: "Gas consumed by confirmed harness transactions",
	})

	return e, nil
}

// Run executes the workflow and returns the structured report. The report
// is non-nil even on failure and retains partial progress (prior tx
// hashes, balances). All state-changing steps are strictly sequential;
// the signer's nonce stream permits no concurrent submissions.
func (e *Executor) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	defer func() {
		e.metrics.latency.Observe(time.Since(start).Seconds())
	}()

	rep := &Report{
		State:   StateInit,
		ChainID: e.signer.ChainID(),
		Signer:  e.signer.Address(),
		Token:   e.token.Address(),
		Target:  e.target.Address(),
	}

	if err := e.validate(ctx, rep); err != nil {
		return e.finish(rep, err)
	}
	if err := e.fund(ctx, rep); err != nil {
		return e.finish(rep, err)
	}
	if err := e.invoke(ctx, rep); err != nil {
		return e.finish(rep, err)
	}
	if err := e.verify(ctx, rep); err != nil {
		return e.finish(rep, err)
	}

	return e.finish(rep, nil)
}

// validate resolves token metadata and checks the run preconditions. It
// issues read-only queries only, so an abort here leaves the chain
// untouched.
func (e *Executor) validate(ctx context.Context, rep *Report) error {
	balance, err := e.token.BalanceOf(ctx, rep.Signer)
	if err != nil {
		return &RPCError{Op: "balanceOf", Err: err}
	}
	rep.WalletBalance = balance

	symbol, err := e.token.Symbol(ctx)
	if err != nil {
		return &RPCError{Op: "symbol", Err: err}
	}
	decimals, err := e.token.Decimals(ctx)
	if err != nil {
		return &RPCError{Op: "decimals", Err: err}
	}
	rep.TokenSymbol = symbol
	rep.TokenDecimals = decimals

	owner, err := e.target.Owner(ctx)
	if err != nil {
		return &RPCError{Op: "owner", Err: err}
	}

	if balance.Sign() == 0 {
		rep.State = StateAborted
		return &NoFundsError{Account: rep.Signer, Token: rep.Token}
	}
	if owner != rep.Signer {
		rep.State = StateAborted
		return &NotOwnerError{Owner: owner, Signer: rep.Signer}
	}

	rep.Principal = utils.ScaleToBase(e.cfg.LoanAmountTokens, decimals)
	rep.ExpectedFee = FeeFor(rep.Principal, e.cfg.FeeBasisPoints)
	rep.FundingAmount = utils.ScaleToBase(e.cfg.FundingAmountTokens, decimals)

	if rep.FundingAmount.Cmp(rep.ExpectedFee) < 0 {
		rep.State = StateAborted
		return &InsufficientFundingError{Funding: rep.FundingAmount, Fee: rep.ExpectedFee}
	}

	rep.State = StateValidated
	e.logger.Info("Run validated",
		zap.String("signer", rep.Signer.Hex()),
		zap.String("token", symbol),
		zap.String("wallet_balance", utils.FormatUnits(balance, decimals)),
		zap.String("principal", utils.FormatUnits(rep.Principal, decimals)),
		zap.String("expected_fee", utils.FormatUnits(rep.ExpectedFee, decimals)))

	return nil
}

// fund transfers the fee funding to the target contract and records the
// contract balance the verification step will diff against.
func (e *Executor) fund(ctx context.Context, rep *Report) error {
	tx, err := e.token.Transfer(ctx, rep.Target, rep.FundingAmount, e.cfg.TransferGasLimit)
	if err != nil {
		rep.State = StateAborted
		return &FundingFailedError{Err: err}
	}

	receipt, err := chain.WaitReceipt(ctx, e.client, tx.Hash(), e.cfg.ReceiptTimeout)
	if err != nil {
		rep.State = StateAborted
		var pending *chain.CancelledWhilePendingError
		if errors.As(err, &pending) {
			return err
		}
		return &FundingFailedError{TxHash: tx.Hash(), Err: err}
	}
	if !receipt.Success {
		rep.State = StateAborted
		rep.FundingReceipt = receipt
		return &FundingFailedError{TxHash: tx.Hash(), Err: fmt.Errorf("transfer reverted")}
	}
	rep.FundingReceipt = receipt

	before, err := e.token.BalanceOf(ctx, rep.Target)
	if err != nil {
		rep.State = StateAborted
		return &RPCError{Op: "balanceOf", Err: err}
	}
	rep.BalanceBefore = before

	rep.State = StateFunded
	e.logger.Info("Contract funded",
		zap.String("tx_hash", receipt.TxHash.Hex()),
		zap.String("contract_balance", utils.FormatUnits(before, rep.TokenDecimals)))

	return nil
}

// invoke submits the flash loan and waits for its confirmation.
func (e *Executor) invoke(ctx context.Context, rep *Report) error {
	tx, err := e.target.TestFlashLoan(ctx, rep.Token, rep.Principal, contract.ModeSuccess, e.cfg.LoanGasLimit)
	if err != nil {
		rep.State = StateFailed
		return &FlashLoanExecutionError{
			RevertReason: revertReason(err),
			Diagnostic:   classifyDiagnostic(err.Error()),
			Err:          err,
		}
	}

	e.logger.Info("Flash loan transaction sent", zap.String("tx_hash", tx.Hash().Hex()))

	receipt, err := chain.WaitReceipt(ctx, e.client, tx.Hash(), e.cfg.ReceiptTimeout)
	if err != nil {
		rep.State = StateFailed
		var pending *chain.CancelledWhilePendingError
		if errors.As(err, &pending) {
			return err
		}
		return &FlashLoanExecutionError{
			TxHash:     tx.Hash(),
			Diagnostic: classifyDiagnostic(err.Error()),
			Err:        err,
		}
	}
	rep.LoanReceipt = receipt
	rep.State = StateInvoked

	if !receipt.Success {
		rep.State = StateFailed
		// A status-0 receipt carries no revert reason; a fee shortfall in
		// the contract is the usual cause.
		return &FlashLoanExecutionError{
			TxHash:     receipt.TxHash,
			Diagnostic: DiagnosticInsufficientContractBalance,
			Err:        fmt.Errorf("transaction reverted in block %d", receipt.BlockNumber),
		}
	}

	return nil
}

// verify diffs the contract balance across the invocation and compares
// the fee actually paid with the computed expectation. A mismatch is
// reported, not fatal: the loan itself committed.
func (e *Executor) verify(ctx context.Context, rep *Report) error {
	after, err := e.token.BalanceOf(ctx, rep.Target)
	if err != nil {
		return &RPCError{Op: "balanceOf", Err: err}
	}
	rep.BalanceAfter = after

	rep.FeePaid = new(big.Int).Sub(rep.BalanceBefore, rep.BalanceAfter)
	rep.FeeMatch = rep.FeePaid.Cmp(rep.ExpectedFee) == 0
	if !rep.FeeMatch {
		rep.Warning = &FeeMismatchWarning{Expected: rep.ExpectedFee, Paid: rep.FeePaid}
		e.metrics.feeMismatches.Inc()
		e.logger.Warn("Fee accounting mismatch",
			zap.String("expected", rep.ExpectedFee.String()),
			zap.String("paid", rep.FeePaid.String()))
	}

	rep.State = StateVerified
	return nil
}

func (e *Executor) finish(rep *Report, err error) (*Report, error) {
	rep.Err = err
	e.metrics.runs.WithLabelValues(rep.State.String()).Inc()
	e.metrics.gasUsed.Add(float64(rep.GasUsed()))

	if err != nil {
		e.logger.Error("Run terminated",
			zap.String("state", rep.State.String()),
			zap.Error(err))
		return rep, err
	}

	e.logger.Info("Run complete",
		zap.String("state", rep.State.String()),
		zap.Uint64("gas_used", rep.GasUsed()),
		zap.Bool("fee_match", rep.FeeMatch))
	return rep, nil
}

// revertReason extracts a revert message from a submission error when the
// node supplied one.
func revertReason(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.Index(msg, "execution reverted"); i >= 0 {
		reason := strings.TrimPrefix(msg[i+len("execution reverted"):], ":")
		return strings.TrimSpace(reason)
	}
	return msg
}
