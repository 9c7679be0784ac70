package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/plasmalabs/flashloan-harness/utils"
)

var (
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "flashloan-harness",
	Short: "A CLI harness for testing flash loan receiver contracts",
	Long: `A CLI harness that deploys a flash loan receiver contract and runs the
two-phase test workflow against it: fund the contract, invoke the loan,
and verify the fee accounting.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initRoot)
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file with run configuration (default ./.env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func initRoot() {
	utils.InitLogger(debug)
}
