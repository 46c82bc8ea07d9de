package model

// Operation kinds accepted in a replay journal.
const (
	OpMint            = "mint"
	OpApprove         = "approve"
	OpAddLiquidity    = "add_liquidity"
	OpRemoveLiquidity = "remove_liquidity"
	OpSwap            = "swap"
)

// OperationRecord is one journal line: a single operation against the pool or
// one of its asset accounts. Amount fields are decimal strings; which fields
// apply depends on Op.
type OperationRecord struct {
	Seq    uint64 `json:"seq"`
	Op     string `json:"op"`
	Caller string `json:"caller"`

	// mint / approve
	Asset  int    `json:"asset,omitempty"`
	Amount string `json:"amount,omitempty"`

	// add_liquidity
	Amount1 string `json:"amount1,omitempty"`
	Amount2 string `json:"amount2,omitempty"`

	// remove_liquidity
	ShareAmount string `json:"share_amount,omitempty"`

	// swap
	Direction    string `json:"direction,omitempty"`
	AmountIn     string `json:"amount_in,omitempty"`
	MinAmountOut string `json:"min_amount_out,omitempty"`
}
