package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammledger/internal/config"
	"ammledger/internal/replay"
	"ammledger/internal/storage"
	"ammledger/internal/storage/postgres"
	"ammledger/internal/token"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if !common.IsHexAddress(cfg.PoolAddress) {
		return fmt.Errorf("invalid pool address: %q", cfg.PoolAddress)
	}
	poolAddress := common.HexToAddress(cfg.PoolAddress)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
	}

	token1 := token.NewLedger(cfg.Asset1)
	token2 := token.NewLedger(cfg.Asset2)
	eventSink := storage.NewJsonlStorage(cfg.EventsOut)
	rejectSink := storage.NewJsonlStorage(cfg.RejectedOut)

	runner := replay.NewRunner(replay.RunConfig{
		PoolName:          cfg.PoolName,
		PoolAddress:       poolAddress,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, token1, token2, eventSink, rejectSink, store, logger)

	logger.Info("replay start",
		zap.String("in", cfg.In),
		zap.String("events_out", cfg.EventsOut),
		zap.String("pool_name", cfg.PoolName),
		zap.String("pool_address", poolAddress.Hex()),
		zap.String("asset1", cfg.Asset1),
		zap.String("asset2", cfg.Asset2),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
		zap.Bool("postgres", store != nil),
	)

	return runner.Run(ctx, cfg.In)
}
