package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/plasmalabs/flashloan-harness/chain"
	"github.com/plasmalabs/flashloan-harness/config"
	"github.com/plasmalabs/flashloan-harness/contract"
	"github.com/plasmalabs/flashloan-harness/utils"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the FlashLoanTester contract",
	Long: `Deploys the compiled FlashLoanTester contract with the flash loan
provider address as its constructor argument. Deployment is a one-time
step; record the printed address and set FLASHLOAN_TESTER_ADDRESS before
running execute.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := utils.GetLogger()
		ctx := cmd.Context()

		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if err := cfg.ValidateDeploy(); err != nil {
			return err
		}

		artifact, err := contract.LoadArtifact(cfg.ArtifactPath)
		if err != nil {
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
		log.Info("Deploying contract",
			zap.String("chain_id", signer.ChainID().String()),
			zap.String("deployer", signer.Address().Hex()),
			zap.String("provider", cfg.ProviderAddress.Hex()))

		deployer, err := contract.NewDeployer(client, signer, log)
		if err != nil {
			return err
		}

		address, receipt, err := deployer.Deploy(ctx, artifact, cfg.ProviderAddress, cfg.DeployGasLimit, cfg.ReceiptTimeout)
		if err != nil {
			return err
		}

		log.Info("Contract deployed",
			zap.String("address", address.Hex()),
			zap.String("tx_hash", receipt.TxHash.Hex()),
			zap.Uint64("block", receipt.BlockNumber),
			zap.Uint64("gas_used", receipt.GasUsed))
		log.Info("Set FLASHLOAN_TESTER_ADDRESS to the deployed address to run the execute step")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)
}
