// Package token provides an in-process asset account: per-holder balances and
// allowances with ERC20-style transfer semantics. It supplies the deposit and
// withdraw capability the pool ledger consumes.
package token

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInvalidAmount         = errors.New("amount must not be negative")
)

// Ledger tracks balances and allowances for one asset.
type Ledger struct {
	mu         sync.RWMutex
	symbol     string
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
	supply     *big.Int
}

func NewLedger(symbol string) *Ledger {
	return &Ledger{
		symbol:     symbol,
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
		supply:     big.NewInt(0),
	}
}

// Symbol returns the asset's display symbol.
func (l *Ledger) Symbol() string { return l.symbol }

// Mint credits amount to the holder and grows total supply.
func (l *Ledger) Mint(to common.Address, amount *big.Int) error {
	if err := validate(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(to, amount)
	l.supply.Add(l.supply, amount)
	return nil
}

// Approve sets the spender's allowance over the owner's balance.
func (l *Ledger) Approve(owner, spender common.Address, amount *big.Int) error {
	if err := validate(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	granted, ok := l.allowances[owner]
	if !ok {
		granted = make(map[common.Address]*big.Int)
		l.allowances[owner] = granted
	}
	granted[spender] = new(big.Int).Set(amount)
	return nil
}

// Transfer moves amount from one holder to another, failing cleanly when the
// sender's balance is short.
func (l *Ledger) Transfer(from, to common.Address, amount *big.Int) error {
	if err := validate(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

// TransferFrom moves amount from the owner to the recipient on behalf of the
// spender, consuming allowance. Balance and allowance checks both precede any
// mutation.
func (l *Ledger) TransferFrom(spender, owner, to common.Address, amount *big.Int) error {
	if err := validate(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	allowed := l.allowance(owner, spender)
	if allowed.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s allowed %s, need %s", ErrInsufficientAllowance, l.symbol, allowed, amount)
	}
	if err := l.move(owner, to, amount); err != nil {
		return err
	}
	allowed.Sub(allowed, amount)
	return nil
}

// BalanceOf returns the holder's balance, zero if none.
func (l *Ledger) BalanceOf(holder common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if balance, ok := l.balances[holder]; ok {
		return new(big.Int).Set(balance)
	}
	return big.NewInt(0)
}

// Allowance returns the spender's remaining allowance over the owner.
func (l *Ledger) Allowance(owner, spender common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.allowance(owner, spender))
}

// TotalSupply returns the sum of all balances.
func (l *Ledger) TotalSupply() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.supply)
}

func (l *Ledger) move(from, to common.Address, amount *big.Int) error {
	balance, ok := l.balances[from]
	if !ok || balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s", ErrInsufficientBalance, l.symbol)
	}
	balance.Sub(balance, amount)
	l.credit(to, amount)
	return nil
}

func (l *Ledger) credit(to common.Address, amount *big.Int) {
	if balance, ok := l.balances[to]; ok {
		balance.Add(balance, amount)
		return
	}
	l.balances[to] = new(big.Int).Set(amount)
}

func (l *Ledger) allowance(owner, spender common.Address) *big.Int {
	if granted, ok := l.allowances[owner]; ok {
		if allowed, ok := granted[spender]; ok {
			return allowed
		}
	}
	return big.NewInt(0)
}

func validate(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return nil
}
