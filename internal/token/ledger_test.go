package token

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	alice = common.HexToAddress("0x2000000000000000000000000000000000000001")
	bob   = common.HexToAddress("0x2000000000000000000000000000000000000002")
	pool  = common.HexToAddress("0x2000000000000000000000000000000000001001")
)

func TestMintAndTransfer(t *testing.T) {
	ledger := NewLedger("TKN1")

	if err := ledger.Mint(alice, big.NewInt(1000)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if got := ledger.TotalSupply(); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("supply = %s, want 1000", got)
	}

	if err := ledger.Transfer(alice, bob, big.NewInt(400)); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if got := ledger.BalanceOf(alice); got.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("alice balance = %s, want 600", got)
	}
	if got := ledger.BalanceOf(bob); got.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("bob balance = %s, want 400", got)
	}

	// Transfers move balances, never create them.
	sum := new(big.Int).Add(ledger.BalanceOf(alice), ledger.BalanceOf(bob))
	if sum.Cmp(ledger.TotalSupply()) != 0 {
		t.Fatalf("balances %s do not sum to supply %s", sum, ledger.TotalSupply())
	}
}

func TestTransferInsufficientBalance(t *testing.T) {
	ledger := NewLedger("TKN1")
	if err := ledger.Mint(alice, big.NewInt(100)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	err := ledger.Transfer(alice, bob, big.NewInt(101))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := ledger.BalanceOf(alice); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("failed transfer mutated balance: %s", got)
	}
	if got := ledger.BalanceOf(bob); got.Sign() != 0 {
		t.Fatalf("failed transfer credited recipient: %s", got)
	}
}

func TestTransferFromConsumesAllowance(t *testing.T) {
	ledger := NewLedger("TKN1")
	if err := ledger.Mint(alice, big.NewInt(1000)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := ledger.Approve(alice, pool, big.NewInt(300)); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if err := ledger.TransferFrom(pool, alice, pool, big.NewInt(200)); err != nil {
		t.Fatalf("transferFrom failed: %v", err)
	}
	if got := ledger.Allowance(alice, pool); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("allowance = %s, want 100", got)
	}
	if got := ledger.BalanceOf(pool); got.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("pool balance = %s, want 200", got)
	}

	err := ledger.TransferFrom(pool, alice, pool, big.NewInt(101))
	if !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}
	if got := ledger.Allowance(alice, pool); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("failed transferFrom consumed allowance: %s", got)
	}
}

func TestTransferFromInsufficientBalanceKeepsAllowance(t *testing.T) {
	ledger := NewLedger("TKN1")
	if err := ledger.Mint(alice, big.NewInt(50)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := ledger.Approve(alice, pool, big.NewInt(500)); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	err := ledger.TransferFrom(pool, alice, pool, big.NewInt(100))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := ledger.Allowance(alice, pool); got.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("failed transferFrom consumed allowance: %s", got)
	}
}

func TestInvalidAmounts(t *testing.T) {
	ledger := NewLedger("TKN1")
	if err := ledger.Mint(alice, big.NewInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative mint: expected ErrInvalidAmount, got %v", err)
	}
	if err := ledger.Transfer(alice, bob, nil); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("nil transfer: expected ErrInvalidAmount, got %v", err)
	}
}

func TestCustodyAdapter(t *testing.T) {
	ledger := NewLedger("TKN1")
	custody := NewCustody(ledger, pool)

	if err := ledger.Mint(alice, big.NewInt(1000)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := ledger.Approve(alice, pool, big.NewInt(1000)); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if err := custody.Deposit(alice, big.NewInt(600)); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if got := custody.Balance(); got.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("custody balance = %s, want 600", got)
	}

	if err := custody.Withdraw(bob, big.NewInt(250)); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if got := custody.Balance(); got.Cmp(big.NewInt(350)) != 0 {
		t.Fatalf("custody balance = %s, want 350", got)
	}
	if got := ledger.BalanceOf(bob); got.Cmp(big.NewInt(250)) != 0 {
		t.Fatalf("bob balance = %s, want 250", got)
	}

	// Deposits without allowance must fail cleanly.
	if err := custody.Deposit(bob, big.NewInt(10)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}
}
