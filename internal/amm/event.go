package amm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SwapDirection tags which reserve a swap pays into.
type SwapDirection int

const (
	// OneToTwo sells asset1 for asset2.
	OneToTwo SwapDirection = iota + 1
	// TwoToOne sells asset2 for asset1.
	TwoToOne
)

func (d SwapDirection) String() string {
	switch d {
	case OneToTwo:
		return "1->2"
	case TwoToOne:
		return "2->1"
	default:
		return "unknown"
	}
}

// ParseDirection maps the wire form produced by SwapDirection.String back to
// the direction tag.
func ParseDirection(value string) (SwapDirection, error) {
	switch value {
	case "1->2":
		return OneToTwo, nil
	case "2->1":
		return TwoToOne, nil
	default:
		return 0, fmt.Errorf("%w: swap direction %q", ErrInvalidInput, value)
	}
}

// Event is implemented by every domain event the pool emits.
type Event interface {
	Kind() string
}

// LiquidityAdded is emitted after a successful deposit.
type LiquidityAdded struct {
	Provider     common.Address
	Amount1      *big.Int
	Amount2      *big.Int
	SharesMinted *big.Int
}

func (LiquidityAdded) Kind() string { return "liquidity_added" }

// LiquidityRemoved is emitted after a successful withdrawal.
type LiquidityRemoved struct {
	Provider     common.Address
	Amount1      *big.Int
	Amount2      *big.Int
	SharesBurned *big.Int
}

func (LiquidityRemoved) Kind() string { return "liquidity_removed" }

// Swap is emitted after a successful trade.
type Swap struct {
	Trader        common.Address
	Direction     SwapDirection
	AmountIn      *big.Int
	AmountOut     *big.Int
	Reserve1After *big.Int
	Reserve2After *big.Int
	Timestamp     uint64
}

func (Swap) Kind() string { return "swap" }

// Sink receives pool events synchronously, inside the emitting operation's
// critical section. Implementations must not call back into the pool.
type Sink interface {
	Emit(event Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(event Event)

func (f SinkFunc) Emit(event Event) { f(event) }
