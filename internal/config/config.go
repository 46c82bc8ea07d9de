package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ReplayConfig holds configuration for the replay command.
type ReplayConfig struct {
	In                string
	EventsOut         string
	RejectedOut       string
	PoolName          string
	PoolAddress       string
	Asset1            string
	Asset2            string
	PGDSN             string
	BatchSize         int
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	LogLevel          string
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("events-out", "./data/events.jsonl")
		v.SetDefault("rejected-out", "./data/rejected.jsonl")
		v.SetDefault("pool-name", "default")
		v.SetDefault("pool-address", "0x0000000000000000000000000000000000001001")
		v.SetDefault("asset1", "TKN1")
		v.SetDefault("asset2", "TKN2")
		v.SetDefault("batch-size", 1000)
		v.SetDefault("checkpoint", "./data/checkpoint.json")
		v.SetDefault("checkpoint-enabled", true)
		v.SetDefault("max-retries", 5)
		v.SetDefault("retry-backoff", 500*time.Millisecond)
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return ReplayConfig{}, err
	}

	cfg := ReplayConfig{
		In:                v.GetString("in"),
		EventsOut:         v.GetString("events-out"),
		RejectedOut:       v.GetString("rejected-out"),
		PoolName:          v.GetString("pool-name"),
		PoolAddress:       v.GetString("pool-address"),
		Asset1:            v.GetString("asset1"),
		Asset2:            v.GetString("asset2"),
		PGDSN:             v.GetString("pg-dsn"),
		BatchSize:         v.GetInt("batch-size"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}

// QuoteConfig holds configuration for the quote command.
type QuoteConfig struct {
	Reserve1  string
	Reserve2  string
	Direction string
	AmountIn  string
	Decimals  int
	LogLevel  string
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("direction", "1->2")
		v.SetDefault("decimals", 18)
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return QuoteConfig{}, err
	}

	cfg := QuoteConfig{
		Reserve1:  v.GetString("reserve1"),
		Reserve2:  v.GetString("reserve2"),
		Direction: v.GetString("direction"),
		AmountIn:  v.GetString("amount-in"),
		Decimals:  v.GetInt("decimals"),
		LogLevel:  v.GetString("log-level"),
	}

	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, setDefaults func(*viper.Viper)) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("AMM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}
