package amm

import "errors"

// Operation errors. Callers distinguish categories with errors.Is; transfer
// failures from the token layer (insufficient balance or allowance) pass
// through wrapped so both taxonomies stay matchable.
var (
	ErrInvalidInput          = errors.New("amount must be greater than zero")
	ErrUnequalDeposit        = errors.New("must provide equal token amounts")
	ErrInsufficientShares    = errors.New("insufficient shares")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrArithmeticOverflow    = errors.New("arithmetic overflow")
	ErrSlippageExceeded      = errors.New("swap output below caller minimum")
)
