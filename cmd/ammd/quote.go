package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammledger/internal/amm"
	"ammledger/internal/config"
)

type quoteResult struct {
	Direction      string `json:"direction"`
	AmountIn       string `json:"amount_in"`
	AmountOut      string `json:"amount_out"`
	AmountOutHuman string `json:"amount_out_human"`
	PriceImpact    string `json:"price_impact"`
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := validateDecimals(cfg.Decimals); err != nil {
		return err
	}

	reserve1, err := parsePositive("reserve1", cfg.Reserve1)
	if err != nil {
		return err
	}
	reserve2, err := parsePositive("reserve2", cfg.Reserve2)
	if err != nil {
		return err
	}
	amountIn, err := parsePositive("amount-in", cfg.AmountIn)
	if err != nil {
		return err
	}

	direction, err := amm.ParseDirection(cfg.Direction)
	if err != nil {
		return err
	}

	reserveIn, reserveOut := reserve1, reserve2
	if direction == amm.TwoToOne {
		reserveIn, reserveOut = reserve2, reserve1
	}

	amountOut, err := amm.SwapOutput(amountIn, reserveIn, reserveOut)
	if err != nil {
		return err
	}

	result := quoteResult{
		Direction:      direction.String(),
		AmountIn:       amountIn.String(),
		AmountOut:      amountOut.String(),
		AmountOutHuman: formatTokenAmount(amountOut, uint8(cfg.Decimals)),
		PriceImpact:    priceImpact(amountIn, amountOut, reserveIn, reserveOut),
	}

	logger.Debug("quote",
		zap.String("direction", result.Direction),
		zap.String("reserve1", reserve1.String()),
		zap.String("reserve2", reserve2.String()),
		zap.String("amount_in", result.AmountIn),
		zap.String("amount_out", result.AmountOut),
		zap.String("price_impact", result.PriceImpact),
	)

	encoder := json.NewEncoder(os.Stdout)
	return encoder.Encode(result)
}

// validateDecimals bounds --decimals to the byte range formatTokenAmount
// accepts; values past it would wrap on conversion.
func validateDecimals(decimals int) error {
	if decimals < 0 || decimals > 255 {
		return fmt.Errorf("decimals must be between 0 and 255, got %d", decimals)
	}
	return nil
}

func parsePositive(name, value string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok || parsed.Sign() <= 0 {
		return nil, fmt.Errorf("%s must be a positive integer, got %q", name, value)
	}
	return parsed, nil
}

func formatTokenAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	rat := new(big.Rat).SetFrac(value, denom)
	return rat.FloatString(int(decimals))
}

// priceImpact reports how far the executed price falls below the spot price,
// as a fraction of the spot price.
func priceImpact(amountIn, amountOut, reserveIn, reserveOut *big.Int) string {
	spot := new(big.Rat).SetFrac(reserveOut, reserveIn)
	executed := new(big.Rat).SetFrac(amountOut, amountIn)
	if spot.Sign() == 0 {
		return "0"
	}
	impact := new(big.Rat).Sub(spot, executed)
	impact.Quo(impact, spot)
	return impact.FloatString(6)
}
