// Package stats accumulates running totals over a replayed event stream.
package stats

import (
	"math/big"

	"ammledger/internal/amm"
)

// Accumulator holds aggregate values for one pool across a replay.
type Accumulator struct {
	PoolName string

	SwapCount        uint64
	VolumeIn1        *big.Int
	VolumeIn2        *big.Int
	VolumeOut1       *big.Int
	VolumeOut2       *big.Int
	DepositCount     uint64
	Deposited1       *big.Int
	Deposited2       *big.Int
	WithdrawalCount  uint64
	Withdrawn1       *big.Int
	Withdrawn2       *big.Int
	SharesMinted     *big.Int
	SharesBurned     *big.Int
	FirstTimestamp   uint64
	LastTimestamp    uint64
}

func NewAccumulator(poolName string) *Accumulator {
	return &Accumulator{
		PoolName:     poolName,
		VolumeIn1:    big.NewInt(0),
		VolumeIn2:    big.NewInt(0),
		VolumeOut1:   big.NewInt(0),
		VolumeOut2:   big.NewInt(0),
		Deposited1:   big.NewInt(0),
		Deposited2:   big.NewInt(0),
		Withdrawn1:   big.NewInt(0),
		Withdrawn2:   big.NewInt(0),
		SharesMinted: big.NewInt(0),
		SharesBurned: big.NewInt(0),
	}
}

// AddEvent folds one pool event into the totals.
func (a *Accumulator) AddEvent(event amm.Event) {
	switch typed := event.(type) {
	case amm.LiquidityAdded:
		a.DepositCount++
		a.Deposited1.Add(a.Deposited1, typed.Amount1)
		a.Deposited2.Add(a.Deposited2, typed.Amount2)
		a.SharesMinted.Add(a.SharesMinted, typed.SharesMinted)
	case amm.LiquidityRemoved:
		a.WithdrawalCount++
		a.Withdrawn1.Add(a.Withdrawn1, typed.Amount1)
		a.Withdrawn2.Add(a.Withdrawn2, typed.Amount2)
		a.SharesBurned.Add(a.SharesBurned, typed.SharesBurned)
	case amm.Swap:
		a.SwapCount++
		switch typed.Direction {
		case amm.OneToTwo:
			a.VolumeIn1.Add(a.VolumeIn1, typed.AmountIn)
			a.VolumeOut2.Add(a.VolumeOut2, typed.AmountOut)
		case amm.TwoToOne:
			a.VolumeIn2.Add(a.VolumeIn2, typed.AmountIn)
			a.VolumeOut1.Add(a.VolumeOut1, typed.AmountOut)
		}
		if a.FirstTimestamp == 0 || typed.Timestamp < a.FirstTimestamp {
			a.FirstTimestamp = typed.Timestamp
		}
		if typed.Timestamp > a.LastTimestamp {
			a.LastTimestamp = typed.Timestamp
		}
	}
}
