package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/spf13/cobra"

	"github.com/paw-chain/pairpool/app"
	"github.com/paw-chain/pairpool/app/api"
	"github.com/paw-chain/pairpool/app/health"
	"github.com/paw-chain/pairpool/app/telemetry"
)

const dbName = "pairpool"

// ServeCmd starts the HTTP API and the metrics endpoint.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pool with its HTTP API and metrics servers",
		Long: `Run the pool with its HTTP API and metrics servers.

State lives in memory unless --data-dir is set, in which case it is kept in a
goleveldb database and resumed on restart. A fresh database is initialised from
--genesis, or with an empty pool when no genesis file is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, logger, cfg)
		},
	}

	cmd.Flags().String("listen", "127.0.0.1:8080", "API listen address")
	cmd.Flags().String("metrics-listen", "127.0.0.1:26660", "Prometheus listen address, empty to disable")
	cmd.Flags().String("data-dir", "", "directory for persistent state, empty for in-memory")
	cmd.Flags().String("genesis", "", "genesis file used when the database is fresh")
	cmd.Flags().String("max-faucet", "", "largest amount a single faucet request may mint, empty for unlimited")
	cmd.Flags().Bool("cors", true, "allow cross-origin requests")
	cmd.Flags().Bool("tracing", false, "export block spans over OTLP/HTTP")
	cmd.Flags().String("tracing-endpoint", "localhost:4318", "OTLP/HTTP collector address")
	cmd.Flags().Float64("tracing-sample-rate", 1, "fraction of blocks to trace")

	return cmd
}

func runServe(ctx context.Context, logger log.Logger, cfg Config) error {
	tracing, err := telemetry.NewProvider(cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.Error("tracing shutdown", "err", err)
		}
	}()

	a, err := openApp(logger, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	checker, err := health.NewChecker(logger, health.Config{
		CacheDuration: 5 * time.Second,
		Version:       Version,
	}, a)
	if err != nil {
		return err
	}

	apiCfg := api.DefaultConfig()
	apiCfg.ListenAddr = cfg.Server.Listen
	apiCfg.EnableCORS = cfg.Server.CORS
	if cfg.Server.MaxFaucet != "" {
		limit, ok := math.NewIntFromString(cfg.Server.MaxFaucet)
		if !ok || !limit.IsPositive() {
			return fmt.Errorf("max-faucet: %q is not a positive integer", cfg.Server.MaxFaucet)
		}
		apiCfg.MaxFaucetAmount = limit
	}
	if cfg.LogLevel == "debug" || cfg.LogLevel == "trace" {
		apiCfg.AccessLog = os.Stderr
	}

	servers := []func(context.Context) error{
		api.NewServer(logger, a, checker, apiCfg).Run,
	}
	if cfg.Server.MetricsListen != "" {
		metricsServer := api.NewMetricsServer(cfg.Server.MetricsListen)
		servers = append(servers, func(ctx context.Context) error {
			return api.RunMetricsServer(ctx, logger, metricsServer)
		})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(servers))
	for _, run := range servers {
		go func(run func(context.Context) error) {
			errCh <- run(ctx)
		}(run)
	}

	// the first server to stop takes the others down with it
	var errs []error
	for range servers {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
		cancel()
	}
	return errors.Join(errs...)
}

// openApp opens the configured database and builds the app on it.
// The genesis file is read before the database is opened so a bad file never
// leaves the database locked.
func openApp(logger log.Logger, cfg Config) (*app.App, error) {
	var genesis app.GenesisState
	if cfg.Server.Genesis != "" {
		bz, err := os.ReadFile(cfg.Server.Genesis)
		if err != nil {
			return nil, fmt.Errorf("read genesis: %w", err)
		}
		if err := json.Unmarshal(bz, &genesis); err != nil {
			return nil, fmt.Errorf("decode genesis: %w", err)
		}
	}

	var db dbm.DB = dbm.NewMemDB()
	if cfg.Server.DataDir != "" {
		var err error
		db, err = dbm.NewDB(dbName, dbm.GoLevelDBBackend, cfg.Server.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
	}

	a, err := app.New(logger, db, cfg.App, genesis)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}
