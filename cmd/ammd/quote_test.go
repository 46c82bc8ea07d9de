package main

import (
	"math/big"
	"testing"
)

func TestValidateDecimals(t *testing.T) {
	cases := []struct {
		decimals int
		wantErr  bool
	}{
		{0, false},
		{18, false},
		{255, false},
		{-1, true},
		{256, true},
		{300, true},
	}
	for _, tc := range cases {
		err := validateDecimals(tc.decimals)
		if (err != nil) != tc.wantErr {
			t.Errorf("validateDecimals(%d): err = %v, wantErr %v", tc.decimals, err, tc.wantErr)
		}
	}
}

func TestFormatTokenAmount(t *testing.T) {
	value, _ := new(big.Int).SetString("1500000000000000000", 10)
	if got := formatTokenAmount(value, 18); got != "1.500000000000000000" {
		t.Fatalf("formatTokenAmount 18 = %q", got)
	}
	if got := formatTokenAmount(big.NewInt(42), 0); got != "42" {
		t.Fatalf("formatTokenAmount 0 = %q", got)
	}
	if got := formatTokenAmount(nil, 18); got != "0" {
		t.Fatalf("formatTokenAmount nil = %q", got)
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := newLogger("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	logger, err := newLogger("debug")
	if err != nil {
		t.Fatalf("debug level: %v", err)
	}
	logger.Sync()
}
