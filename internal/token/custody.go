package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Custody binds a ledger to a pool's own address and exposes the
// deposit/withdraw capability the pool consumes. Deposits pull approved funds
// from the holder into the pool address; withdrawals push custody funds out.
type Custody struct {
	ledger *Ledger
	pool   common.Address
}

func NewCustody(ledger *Ledger, pool common.Address) *Custody {
	return &Custody{ledger: ledger, pool: pool}
}

// Deposit moves amount from the holder into pool custody, consuming the
// holder's allowance for the pool address.
func (c *Custody) Deposit(from common.Address, amount *big.Int) error {
	return c.ledger.TransferFrom(c.pool, from, c.pool, amount)
}

// Withdraw moves amount from pool custody to the holder.
func (c *Custody) Withdraw(to common.Address, amount *big.Int) error {
	return c.ledger.Transfer(c.pool, to, amount)
}

// Balance returns the custody balance held at the pool address.
func (c *Custody) Balance() *big.Int {
	return c.ledger.BalanceOf(c.pool)
}
