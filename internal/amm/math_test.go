package amm

import (
	"errors"
	"math/big"
	"testing"
)

// tokens scales n into the conventional 18-decimal fixed-point representation.
func tokens(n int64) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return new(big.Int).Mul(big.NewInt(n), scale)
}

func TestSwapOutputConstantProduct(t *testing.T) {
	// (reserveOut * amountIn) / (reserveIn + amountIn), truncating.
	tests := []struct {
		name       string
		amountIn   *big.Int
		reserveIn  *big.Int
		reserveOut *big.Int
		want       *big.Int
	}{
		{
			name:       "balanced pool small trade",
			amountIn:   big.NewInt(1000),
			reserveIn:  big.NewInt(100000),
			reserveOut: big.NewInt(100000),
			want:       big.NewInt(990), // 100000*1000/101000 = 990.09...
		},
		{
			name:       "scaled unit trade",
			amountIn:   tokens(1),
			reserveIn:  tokens(100000),
			reserveOut: tokens(100000),
			// out = R2*in/(R1+in); just under one full token
			want: quotient(new(big.Int).Mul(tokens(100000), tokens(1)), new(big.Int).Add(tokens(100000), tokens(1))),
		},
		{
			name:       "asymmetric reserves",
			amountIn:   big.NewInt(500),
			reserveIn:  big.NewInt(2000),
			reserveOut: big.NewInt(8000),
			want:       big.NewInt(1600), // 8000*500/2500
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SwapOutput(tc.amountIn, tc.reserveIn, tc.reserveOut)
			if err != nil {
				t.Fatalf("SwapOutput failed: %v", err)
			}
			if got.Cmp(tc.want) != 0 {
				t.Fatalf("SwapOutput = %s, want %s", got, tc.want)
			}

			before := new(big.Int).Mul(tc.reserveIn, tc.reserveOut)
			after := new(big.Int).Mul(
				new(big.Int).Add(tc.reserveIn, tc.amountIn),
				new(big.Int).Sub(tc.reserveOut, got),
			)
			if after.Cmp(before) < 0 {
				t.Fatalf("product decreased: before %s, after %s", before, after)
			}
		})
	}
}

func quotient(numerator, denominator *big.Int) *big.Int {
	return new(big.Int).Div(numerator, denominator)
}

func TestSwapOutputRejections(t *testing.T) {
	tests := []struct {
		name       string
		amountIn   *big.Int
		reserveIn  *big.Int
		reserveOut *big.Int
		wantErr    error
	}{
		{"nil amount", nil, big.NewInt(10), big.NewInt(10), ErrInvalidInput},
		{"zero amount", big.NewInt(0), big.NewInt(10), big.NewInt(10), ErrInvalidInput},
		{"negative amount", big.NewInt(-5), big.NewInt(10), big.NewInt(10), ErrInvalidInput},
		{"empty in reserve", big.NewInt(5), big.NewInt(0), big.NewInt(10), ErrInsufficientLiquidity},
		{"empty out reserve", big.NewInt(5), big.NewInt(10), big.NewInt(0), ErrInsufficientLiquidity},
		{"truncates to zero output", big.NewInt(1), big.NewInt(1_000_000), big.NewInt(1), ErrInsufficientLiquidity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := SwapOutput(tc.amountIn, tc.reserveIn, tc.reserveOut); !errors.Is(err, tc.wantErr) {
				t.Fatalf("SwapOutput error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSwapOutputNeverDrainsReserve(t *testing.T) {
	// Even an enormous input cannot buy the whole opposite reserve.
	amountIn := new(big.Int).Lsh(big.NewInt(1), 120)
	out, err := SwapOutput(amountIn, big.NewInt(1000), big.NewInt(1000))
	if err != nil {
		t.Fatalf("SwapOutput failed: %v", err)
	}
	if out.Cmp(big.NewInt(1000)) >= 0 {
		t.Fatalf("output %s drained reserve 1000", out)
	}
}

func TestSwapOutputOverflow(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 200)
	if _, err := SwapOutput(huge, huge, huge); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestMatchingDeposit(t *testing.T) {
	// (reserve2 * amount1) / reserve1, truncating.
	got, err := MatchingDeposit(big.NewInt(50000), big.NewInt(100000), big.NewInt(100000))
	if err != nil {
		t.Fatalf("MatchingDeposit failed: %v", err)
	}
	if got.Cmp(big.NewInt(50000)) != 0 {
		t.Fatalf("MatchingDeposit = %s, want 50000", got)
	}

	got, err = MatchingDeposit(big.NewInt(3), big.NewInt(7), big.NewInt(10))
	if err != nil {
		t.Fatalf("MatchingDeposit failed: %v", err)
	}
	if got.Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("MatchingDeposit = %s, want 4 (30/7 truncated)", got)
	}
}

func TestSharesForDeposit(t *testing.T) {
	got, err := SharesForDeposit(tokens(50000), tokens(100000), tokens(100))
	if err != nil {
		t.Fatalf("SharesForDeposit failed: %v", err)
	}
	if got.Cmp(tokens(50)) != 0 {
		t.Fatalf("SharesForDeposit = %s, want %s", got, tokens(50))
	}
}

func TestWithdrawalAmountTruncatesTowardPool(t *testing.T) {
	// 10 reserve * 1 share / 3 total = 3.33 -> 3
	got, err := WithdrawalAmount(big.NewInt(10), big.NewInt(1), big.NewInt(3))
	if err != nil {
		t.Fatalf("WithdrawalAmount failed: %v", err)
	}
	if got.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("WithdrawalAmount = %s, want 3", got)
	}
}

func TestInitialShares(t *testing.T) {
	tests := []struct {
		amount1 *big.Int
		want    *big.Int
	}{
		{big.NewInt(1000), big.NewInt(1)},
		{big.NewInt(999), big.NewInt(0)},
		{tokens(100000), tokens(100)},
	}
	for _, tc := range tests {
		if got := InitialShares(tc.amount1); got.Cmp(tc.want) != 0 {
			t.Fatalf("InitialShares(%s) = %s, want %s", tc.amount1, got, tc.want)
		}
	}
}
