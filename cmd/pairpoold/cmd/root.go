package cmd

import (
	"github.com/spf13/cobra"

	"github.com/paw-chain/pairpool/app"
)

// Version is stamped at build time.
var Version = "dev"

// NewRootCmd creates the pairpoold root command. It is called once in the
// main function.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "pairpoold",
		Short:        "Two-asset liquidity pool node",
		Version:      Version,
		SilenceUsage: true,
	}

	defaults := app.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file path (yaml, toml or json)")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("denom-a", defaults.DenomA, "first pool asset")
	flags.String("denom-b", defaults.DenomB, "second pool asset")
	flags.Uint32("fee-bps-a", defaults.FeeBpsA, "transfer fee of the first asset in basis points")
	flags.Uint32("fee-bps-b", defaults.FeeBpsB, "transfer fee of the second asset in basis points")
	flags.Duration("oracle-window", defaults.OracleWindow, "TWAP window of the reference oracle")

	rootCmd.AddCommand(
		ServeCmd(),
		SimulateCmd(),
		QuoteCmd(),
		ExportCmd(),
	)

	return rootCmd
}

// loadCommandConfig loads the configuration seen by cmd.
func loadCommandConfig(cmd *cobra.Command) (Config, error) {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return Config{}, err
	}
	return LoadConfig(cfgFile, cmd.Flags())
}
