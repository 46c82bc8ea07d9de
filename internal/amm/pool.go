// Package amm implements a constant-product pool ledger over two asset
// accounts: reserve tracking, proportional share accounting, and no-fee swaps
// priced purely by the reserve ratio.
package amm

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Asset is the transfer capability the pool consumes for one of its two
// tokens. Deposit pulls funds from a holder into pool custody, Withdraw pushes
// funds from custody to a holder. Both must fail cleanly with no partial
// transfer.
type Asset interface {
	Deposit(from common.Address, amount *big.Int) error
	Withdraw(to common.Address, amount *big.Int) error
}

// Pool is the ledger for a single asset pair. Mutating operations are
// serialized by an internal lock; queries share a read lock and never observe
// a partially applied operation.
type Pool struct {
	mu sync.RWMutex

	asset1 Asset
	asset2 Asset

	reserve1    *big.Int
	reserve2    *big.Int
	totalShares *big.Int
	shares      map[common.Address]*big.Int

	sink Sink
	now  func() uint64
}

// NewPool creates an empty pool over the two asset accounts. A nil sink
// discards events.
func NewPool(asset1, asset2 Asset, sink Sink) *Pool {
	if sink == nil {
		sink = SinkFunc(func(Event) {})
	}
	return &Pool{
		asset1:      asset1,
		asset2:      asset2,
		reserve1:    big.NewInt(0),
		reserve2:    big.NewInt(0),
		totalShares: big.NewInt(0),
		shares:      make(map[common.Address]*big.Int),
		sink:        sink,
		now:         func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// AddLiquidity deposits amount1 of asset1 and amount2 of asset2 from the
// caller and mints shares. The first deposit defines the price ratio and
// mints amount1/InitialShareDivisor shares; later deposits must match the
// pool ratio exactly and mint proportionally. Returns the shares minted.
func (p *Pool) AddLiquidity(caller common.Address, amount1, amount2 *big.Int) (*big.Int, error) {
	if err := validateAmount(amount1); err != nil {
		return nil, err
	}
	if err := validateAmount(amount2); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	deposit2 := amount2
	var minted *big.Int
	if p.totalShares.Sign() == 0 {
		minted = InitialShares(amount1)
		if minted.Sign() == 0 {
			return nil, fmt.Errorf("%w: initial deposit below minimum issuance unit", ErrInvalidInput)
		}
	} else {
		required, err := MatchingDeposit(amount1, p.reserve1, p.reserve2)
		if err != nil {
			return nil, err
		}
		if amount2.Cmp(required) != 0 {
			return nil, fmt.Errorf("%w: need %s of asset2 for %s of asset1", ErrUnequalDeposit, required, amount1)
		}
		deposit2 = required
		minted, err = SharesForDeposit(amount1, p.reserve1, p.totalShares)
		if err != nil {
			return nil, err
		}
		if minted.Sign() == 0 {
			return nil, fmt.Errorf("%w: deposit too small to mint shares", ErrInvalidInput)
		}
	}

	newReserve1, err := checkedAdd(p.reserve1, amount1)
	if err != nil {
		return nil, err
	}
	newReserve2, err := checkedAdd(p.reserve2, deposit2)
	if err != nil {
		return nil, err
	}
	newTotal, err := checkedAdd(p.totalShares, minted)
	if err != nil {
		return nil, err
	}

	if err := p.asset1.Deposit(caller, amount1); err != nil {
		return nil, fmt.Errorf("deposit asset1: %w", err)
	}
	if err := p.asset2.Deposit(caller, deposit2); err != nil {
		if refundErr := p.asset1.Withdraw(caller, amount1); refundErr != nil {
			return nil, errors.Join(fmt.Errorf("deposit asset2: %w", err), fmt.Errorf("refund asset1: %w", refundErr))
		}
		return nil, fmt.Errorf("deposit asset2: %w", err)
	}

	p.reserve1 = newReserve1
	p.reserve2 = newReserve2
	p.totalShares = newTotal
	p.creditShares(caller, minted)

	p.sink.Emit(LiquidityAdded{
		Provider:     caller,
		Amount1:      new(big.Int).Set(amount1),
		Amount2:      new(big.Int).Set(deposit2),
		SharesMinted: new(big.Int).Set(minted),
	})

	return new(big.Int).Set(minted), nil
}

// RemoveLiquidity burns shareAmount of the caller's shares and pays out the
// proportional slice of both reserves, truncating in the pool's favor.
// Returns the amounts of asset1 and asset2 transferred out.
func (p *Pool) RemoveLiquidity(caller common.Address, shareAmount *big.Int) (*big.Int, *big.Int, error) {
	if err := validateAmount(shareAmount); err != nil {
		return nil, nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	held, ok := p.shares[caller]
	if !ok || held.Cmp(shareAmount) < 0 {
		return nil, nil, ErrInsufficientShares
	}

	amount1, err := WithdrawalAmount(p.reserve1, shareAmount, p.totalShares)
	if err != nil {
		return nil, nil, err
	}
	amount2, err := WithdrawalAmount(p.reserve2, shareAmount, p.totalShares)
	if err != nil {
		return nil, nil, err
	}

	if err := p.asset1.Withdraw(caller, amount1); err != nil {
		return nil, nil, fmt.Errorf("withdraw asset1: %w", err)
	}
	if err := p.asset2.Withdraw(caller, amount2); err != nil {
		if refundErr := p.asset1.Deposit(caller, amount1); refundErr != nil {
			return nil, nil, errors.Join(fmt.Errorf("withdraw asset2: %w", err), fmt.Errorf("restore asset1: %w", refundErr))
		}
		return nil, nil, fmt.Errorf("withdraw asset2: %w", err)
	}

	p.reserve1.Sub(p.reserve1, amount1)
	p.reserve2.Sub(p.reserve2, amount2)
	p.totalShares.Sub(p.totalShares, shareAmount)
	p.debitShares(caller, shareAmount)

	p.sink.Emit(LiquidityRemoved{
		Provider:     caller,
		Amount1:      new(big.Int).Set(amount1),
		Amount2:      new(big.Int).Set(amount2),
		SharesBurned: new(big.Int).Set(shareAmount),
	})

	return amount1, amount2, nil
}

// Swap trades amountIn of the direction's input asset for the output asset at
// the constant-product price. A non-nil minAmountOut rejects the trade when
// the computed output falls below it. Returns the amount paid out.
func (p *Pool) Swap(caller common.Address, direction SwapDirection, amountIn, minAmountOut *big.Int) (*big.Int, error) {
	if err := validateAmount(amountIn); err != nil {
		return nil, err
	}
	if direction != OneToTwo && direction != TwoToOne {
		return nil, fmt.Errorf("%w: unknown swap direction", ErrInvalidInput)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.reserve1.Sign() == 0 || p.reserve2.Sign() == 0 {
		return nil, ErrInsufficientLiquidity
	}

	assetIn, assetOut := p.asset1, p.asset2
	reserveIn, reserveOut := p.reserve1, p.reserve2
	if direction == TwoToOne {
		assetIn, assetOut = p.asset2, p.asset1
		reserveIn, reserveOut = p.reserve2, p.reserve1
	}

	amountOut, err := SwapOutput(amountIn, reserveIn, reserveOut)
	if err != nil {
		return nil, err
	}
	if minAmountOut != nil && amountOut.Cmp(minAmountOut) < 0 {
		return nil, fmt.Errorf("%w: output %s below minimum %s", ErrSlippageExceeded, amountOut, minAmountOut)
	}

	newReserveIn, err := checkedAdd(reserveIn, amountIn)
	if err != nil {
		return nil, err
	}

	if err := assetIn.Deposit(caller, amountIn); err != nil {
		return nil, fmt.Errorf("deposit input asset: %w", err)
	}
	if err := assetOut.Withdraw(caller, amountOut); err != nil {
		if refundErr := assetIn.Withdraw(caller, amountIn); refundErr != nil {
			return nil, errors.Join(fmt.Errorf("withdraw output asset: %w", err), fmt.Errorf("refund input asset: %w", refundErr))
		}
		return nil, fmt.Errorf("withdraw output asset: %w", err)
	}

	reserveIn.Set(newReserveIn)
	reserveOut.Sub(reserveOut, amountOut)

	p.sink.Emit(Swap{
		Trader:        caller,
		Direction:     direction,
		AmountIn:      new(big.Int).Set(amountIn),
		AmountOut:     new(big.Int).Set(amountOut),
		Reserve1After: new(big.Int).Set(p.reserve1),
		Reserve2After: new(big.Int).Set(p.reserve2),
		Timestamp:     p.now(),
	})

	return amountOut, nil
}

// SwapToken1 sells amountIn of asset1 for asset2 with no minimum output.
func (p *Pool) SwapToken1(caller common.Address, amountIn *big.Int) (*big.Int, error) {
	return p.Swap(caller, OneToTwo, amountIn, nil)
}

// SwapToken2 sells amountIn of asset2 for asset1 with no minimum output.
func (p *Pool) SwapToken2(caller common.Address, amountIn *big.Int) (*big.Int, error) {
	return p.Swap(caller, TwoToOne, amountIn, nil)
}

// Reserve1 returns the pool's recorded asset1 balance.
func (p *Pool) Reserve1() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.reserve1)
}

// Reserve2 returns the pool's recorded asset2 balance.
func (p *Pool) Reserve2() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.reserve2)
}

// TotalShares returns the sum of all holder share balances.
func (p *Pool) TotalShares() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.totalShares)
}

// SharesOf returns the holder's share balance, zero if none.
func (p *Pool) SharesOf(holder common.Address) *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if held, ok := p.shares[holder]; ok {
		return new(big.Int).Set(held)
	}
	return big.NewInt(0)
}

// QuoteAddLiquidity returns the asset2 amount a deposit of amount1 requires
// and the shares it would mint, without mutating state. On an empty pool the
// required amount is the caller's to choose, reported as nil.
func (p *Pool) QuoteAddLiquidity(amount1 *big.Int) (*big.Int, *big.Int, error) {
	if err := validateAmount(amount1); err != nil {
		return nil, nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.totalShares.Sign() == 0 {
		minted := InitialShares(amount1)
		if minted.Sign() == 0 {
			return nil, nil, fmt.Errorf("%w: initial deposit below minimum issuance unit", ErrInvalidInput)
		}
		return nil, minted, nil
	}

	required, err := MatchingDeposit(amount1, p.reserve1, p.reserve2)
	if err != nil {
		return nil, nil, err
	}
	minted, err := SharesForDeposit(amount1, p.reserve1, p.totalShares)
	if err != nil {
		return nil, nil, err
	}
	return required, minted, nil
}

// QuoteSwap returns the output a swap of amountIn in the given direction
// would pay, without mutating state.
func (p *Pool) QuoteSwap(direction SwapDirection, amountIn *big.Int) (*big.Int, error) {
	if direction != OneToTwo && direction != TwoToOne {
		return nil, fmt.Errorf("%w: unknown swap direction", ErrInvalidInput)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	reserveIn, reserveOut := p.reserve1, p.reserve2
	if direction == TwoToOne {
		reserveIn, reserveOut = p.reserve2, p.reserve1
	}
	return SwapOutput(amountIn, reserveIn, reserveOut)
}

// State is a consistent deep copy of the pool's observable state.
type State struct {
	Reserve1    *big.Int
	Reserve2    *big.Int
	TotalShares *big.Int
	Shares      map[common.Address]*big.Int
}

// State snapshots the pool under the read lock.
func (p *Pool) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()

	holders := make(map[common.Address]*big.Int, len(p.shares))
	for holder, held := range p.shares {
		holders[holder] = new(big.Int).Set(held)
	}
	return State{
		Reserve1:    new(big.Int).Set(p.reserve1),
		Reserve2:    new(big.Int).Set(p.reserve2),
		TotalShares: new(big.Int).Set(p.totalShares),
		Shares:      holders,
	}
}

func (p *Pool) creditShares(holder common.Address, amount *big.Int) {
	if held, ok := p.shares[holder]; ok {
		held.Add(held, amount)
		return
	}
	p.shares[holder] = new(big.Int).Set(amount)
}

func (p *Pool) debitShares(holder common.Address, amount *big.Int) {
	held := p.shares[holder]
	held.Sub(held, amount)
	if held.Sign() == 0 {
		delete(p.shares, holder)
	}
}

func validateAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidInput
	}
	return nil
}
