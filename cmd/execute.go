package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/plasmalabs/flashloan-harness/chain"
	"github.com/plasmalabs/flashloan-harness/config"
	"github.com/plasmalabs/flashloan-harness/contract"
	"github.com/plasmalabs/flashloan-harness/executor"
	"github.com/plasmalabs/flashloan-harness/utils"
)

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Fund the tester contract and execute the flash loan",
	Long: `Runs the execution workflow against a deployed FlashLoanTester: checks
balances and ownership, transfers the fee funding to the contract,
invokes the flash loan, and verifies the fee accounting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := utils.GetLogger()
		ctx := cmd.Context()

		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		client, err := chain.Dial(cfg.RPCEndpoint, cfg.RPCRateLimit)
		if err != nil {
			return err
		}

		signer, err := chain.NewSigner(ctx, client, cfg.PrivateKey)
		if err != nil {
			return err
		}

		token, err := contract.NewERC20(client, signer, cfg.TokenAddress, log)
		if err != nil {
			return err
		}
		tester, err := contract.NewTester(client, signer, cfg.TesterAddress, log)
		if err != nil {
			return err
		}

		exec, err := executor.New(cfg, client, signer, token, tester, log)
		if err != nil {
			return err
		}

		report, err := exec.Run(ctx)
		if report != nil {
			renderReport(log, report)
		}
		return err
	},
}

// renderReport is the presentation layer over the structured run report.
func renderReport(log *zap.Logger, report *executor.Report) {
	fields := []zap.Field{
		zap.String("state", report.State.String()),
		zap.String("chain_id", report.ChainID.String()),
		zap.String("signer", report.Signer.Hex()),
		zap.String("contract", report.Target.Hex()),
	}

	decimals := report.TokenDecimals
	if report.TokenSymbol != "" {
		fields = append(fields, zap.String("token", report.TokenSymbol))
	}
	if report.WalletBalance != nil {
		fields = append(fields, zap.String("wallet_balance", utils.FormatUnits(report.WalletBalance, decimals)))
	}
	if report.Principal != nil {
		fields = append(fields,
			zap.String("loan_amount", utils.FormatUnits(report.Principal, decimals)),
			zap.String("expected_fee", utils.FormatUnits(report.ExpectedFee, decimals)))
	}
	if report.FundingReceipt != nil {
		fields = append(fields, zap.String("funding_tx", report.FundingReceipt.TxHash.Hex()))
	}
	if report.LoanReceipt != nil {
		fields = append(fields,
			zap.String("loan_tx", report.LoanReceipt.TxHash.Hex()),
			zap.Uint64("block", report.LoanReceipt.BlockNumber))
	}
	if report.FeePaid != nil {
		fields = append(fields,
			zap.String("fee_paid", utils.FormatUnits(report.FeePaid, decimals)),
			zap.Bool("fee_match", report.FeeMatch))
	}
	fields = append(fields, zap.Uint64("gas_used", report.GasUsed()))

	if report.Err != nil {
		var loanErr *executor.FlashLoanExecutionError
		if errors.As(report.Err, &loanErr) && loanErr.Diagnostic != executor.DiagnosticUnknown {
			fields = append(fields, zap.String("hint", loanErr.Diagnostic.String()))
		}
		fields = append(fields, zap.Error(report.Err))
		log.Error("Flash loan run did not complete", fields...)
		return
	}

	if report.Warning != nil {
		fields = append(fields, zap.String("warning", report.Warning.Error()))
		log.Warn("Flash loan executed with fee mismatch", fields...)
		return
	}

	log.Info("Flash loan executed and verified", fields...)
}

func init() {
	rootCmd.AddCommand(executeCmd)
}
