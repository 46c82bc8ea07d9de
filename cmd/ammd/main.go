package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "ammd",
		Short:        "Constant-product AMM pool ledger",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay an operation journal against a fresh pool",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("in", "", "input operations JSONL")
	replayCmd.Flags().String("events-out", "./data/events.jsonl", "output events JSONL path")
	replayCmd.Flags().String("rejected-out", "./data/rejected.jsonl", "rejected operations JSONL path")
	replayCmd.Flags().String("pool-name", "default", "pool name used for persistence keys")
	replayCmd.Flags().String("pool-address", "0x0000000000000000000000000000000000001001", "pool custody address")
	replayCmd.Flags().String("asset1", "TKN1", "asset1 symbol")
	replayCmd.Flags().String("asset2", "TKN2", "asset2 symbol")
	replayCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	replayCmd.Flags().Int("batch-size", 1000, "events per persistence batch")
	replayCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	replayCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	replayCmd.Flags().Int("max-retries", 5, "maximum retry attempts for Postgres writes")
	replayCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(replayCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a swap against supplied reserves without state",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("reserve1", "", "asset1 reserve")
	quoteCmd.Flags().String("reserve2", "", "asset2 reserve")
	quoteCmd.Flags().String("direction", "1->2", "swap direction (1->2 or 2->1)")
	quoteCmd.Flags().String("amount-in", "", "input amount")
	quoteCmd.Flags().Int("decimals", 18, "decimals for human-readable output")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
