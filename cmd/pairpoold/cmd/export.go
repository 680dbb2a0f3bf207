package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ExportCmd prints the committed state of a data directory as genesis JSON.
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export ledgers and pool state as genesis JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Server.DataDir == "" {
				return fmt.Errorf("--data-dir is required")
			}
			logger, err := NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}

			a, err := openApp(logger, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			genesis, err := a.ExportGenesis()
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(genesis)
		},
	}

	cmd.Flags().String("data-dir", "", "directory holding the pool database")
	return cmd
}
