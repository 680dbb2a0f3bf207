package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paw-chain/pairpool/app/scenario"
)

// SimulateCmd replays a scenario file against a fresh in-memory pool.
func SimulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Replay a scripted scenario and print the outcome as JSON",
		Long: `Replay a scripted scenario against a fresh in-memory pool.

Each step is one of faucet, oracle, add, remove, swap, transfer, skim or
advance. The report lists every step's result, the final pool, each named
account's holdings and the invariant status. The command fails when a step
misses its expectation or an invariant is broken.`,
		Example: `  steps:
    - faucet: {account: alice, denom: atoken, amount: "10000"}
    - oracle: {base: atoken, quote: btoken, price: "2"}
    - add: {provider: alice, amount_a: "1000", amount_b: "2000"}
    - swap: {trader: alice, asset_in: atoken, amount_in: "100", min_amount_out: "180"}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			sc, err := scenario.Load(f)
			if err != nil {
				return err
			}

			report, err := scenario.Run(logger, cfg.App, sc)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}

			if !report.Passed() {
				return fmt.Errorf("scenario failed: %d step(s) missed expectations, invariants broken: %t",
					report.Failed, report.Invariants.Broken)
			}
			return nil
		},
	}
}
