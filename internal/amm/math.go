package amm

import "math/big"

// InitialShareDivisor converts the first deposit's amount1 into the initial
// share issuance: initialShares = amount1 / InitialShareDivisor. Protocol
// constant, identical for every pool.
const InitialShareDivisor = 1000

// maxQuantity caps every reserve, share balance, and intermediate product at
// 2^256-1. Anything past the cap fails closed with ErrArithmeticOverflow.
var maxQuantity = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

func checkedMul(a, b *big.Int) (*big.Int, error) {
	product := new(big.Int).Mul(a, b)
	if product.Cmp(maxQuantity) > 0 {
		return nil, ErrArithmeticOverflow
	}
	return product, nil
}

func checkedAdd(a, b *big.Int) (*big.Int, error) {
	sum := new(big.Int).Add(a, b)
	if sum.Cmp(maxQuantity) > 0 {
		return nil, ErrArithmeticOverflow
	}
	return sum, nil
}

// SwapOutput prices a no-fee constant-product trade:
// amountOut = (reserveOut * amountIn) / (reserveIn + amountIn), truncating.
// The truncation keeps the post-trade product at or above the pre-trade
// product, never below it.
func SwapOutput(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrInvalidInput
	}
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return nil, ErrInsufficientLiquidity
	}

	numerator, err := checkedMul(reserveOut, amountIn)
	if err != nil {
		return nil, err
	}
	denominator, err := checkedAdd(reserveIn, amountIn)
	if err != nil {
		return nil, err
	}

	amountOut := numerator.Div(numerator, denominator)
	if amountOut.Sign() == 0 {
		return nil, ErrInsufficientLiquidity
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, ErrInsufficientLiquidity
	}
	return amountOut, nil
}

// MatchingDeposit computes the amount of the other asset a deposit of
// amountIn requires to preserve the current reserve ratio:
// (reserveOther * amountIn) / reserveIn, truncating.
func MatchingDeposit(amountIn, reserveIn, reserveOther *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrInvalidInput
	}
	if reserveIn == nil || reserveIn.Sign() == 0 {
		return nil, ErrInsufficientLiquidity
	}
	numerator, err := checkedMul(reserveOther, amountIn)
	if err != nil {
		return nil, err
	}
	return numerator.Div(numerator, reserveIn), nil
}

// SharesForDeposit computes the shares a follow-on deposit mints:
// (totalShares * amount1) / reserve1, truncating so rounding favors the pool.
func SharesForDeposit(amount1, reserve1, totalShares *big.Int) (*big.Int, error) {
	numerator, err := checkedMul(totalShares, amount1)
	if err != nil {
		return nil, err
	}
	return numerator.Div(numerator, reserve1), nil
}

// WithdrawalAmount computes the reserve share a holder redeems for
// shareAmount: (reserve * shareAmount) / totalShares, truncating so rounding
// never pays out more than the proportional claim.
func WithdrawalAmount(reserve, shareAmount, totalShares *big.Int) (*big.Int, error) {
	numerator, err := checkedMul(reserve, shareAmount)
	if err != nil {
		return nil, err
	}
	return numerator.Div(numerator, totalShares), nil
}

// InitialShares applies the protocol divisor to the first deposit's amount1.
func InitialShares(amount1 *big.Int) *big.Int {
	return new(big.Int).Div(amount1, big.NewInt(InitialShareDivisor))
}
