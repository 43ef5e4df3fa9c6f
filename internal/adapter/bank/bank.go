// Package bank is an in-process stand-in for the external settlement
// capabilities the escrow consumes: a stablecoin ledger, a yield-bearing
// lending pool and a receipt-token registry. It exists so the service runs
// end to end in demo and test setups; a production deployment replaces it
// with a real chain client behind the same ports.
package bank

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

var (
	ErrInsufficientFunds = errors.New("bank: insufficient funds")
	ErrUnknownAsset      = errors.New("bank: unknown asset")
	ErrReceiptExists     = errors.New("bank: receipt id already minted")
)

// Receipt records one minted contribution receipt.
type Receipt struct {
	ID     uuid.UUID
	Owner  common.Address
	Amount int64
}

// Bank holds token balances, pool positions and minted receipts behind a
// single mutex. It implements port.TokenTransfer, port.LendingPool and
// port.ReceiptMinter.
type Bank struct {
	mu        sync.Mutex
	asset     common.Address
	escrow    common.Address
	balances  map[common.Address]int64
	positions map[common.Address]int64
	receipts  map[uuid.UUID]Receipt
}

// New creates a bank for the given stablecoin asset with the escrow account
// as the payer for outbound transfers.
func New(asset, escrow common.Address) *Bank {
	return &Bank{
		asset:     asset,
		escrow:    escrow,
		balances:  make(map[common.Address]int64),
		positions: make(map[common.Address]int64),
		receipts:  make(map[uuid.UUID]Receipt),
	}
}

// Fund credits an account, for seeding and tests.
func (b *Bank) Fund(addr common.Address, amount int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[addr] += amount
}

// BalanceOf returns the account's token balance.
func (b *Bank) BalanceOf(addr common.Address) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[addr]
}

func (b *Bank) TransferFrom(_ context.Context, from, to common.Address, amount int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.move(from, to, amount)
}

func (b *Bank) Transfer(_ context.Context, to common.Address, amount int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.move(b.escrow, to, amount)
}

func (b *Bank) move(from, to common.Address, amount int64) error {
	if b.balances[from] < amount {
		return ErrInsufficientFunds
	}
	b.balances[from] -= amount
	b.balances[to] += amount
	return nil
}

func (b *Bank) Supply(_ context.Context, asset common.Address, amount int64, onBehalfOf common.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if asset != b.asset {
		return ErrUnknownAsset
	}
	if b.balances[b.escrow] < amount {
		return ErrInsufficientFunds
	}
	b.balances[b.escrow] -= amount
	b.positions[onBehalfOf] += amount
	return nil
}

func (b *Bank) Withdraw(_ context.Context, asset common.Address, from common.Address, amount int64, to common.Address) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if asset != b.asset {
		return 0, ErrUnknownAsset
	}
	if b.positions[from] < amount {
		return 0, ErrInsufficientFunds
	}
	b.positions[from] -= amount
	b.balances[to] += amount
	return amount, nil
}

func (b *Bank) WithdrawableBalance(_ context.Context, asset common.Address, of common.Address) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if asset != b.asset {
		return 0, ErrUnknownAsset
	}
	return b.positions[of], nil
}

// AccrueYield credits interest to a pool position, simulating what a real
// lending pool does over time.
func (b *Bank) AccrueYield(of common.Address, amount int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positions[of] += amount
}

func (b *Bank) Mint(_ context.Context, to common.Address, id uuid.UUID, amount int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.receipts[id]; ok {
		return ErrReceiptExists
	}
	b.receipts[id] = Receipt{ID: id, Owner: to, Amount: amount}
	return nil
}

// ReceiptOf returns a minted receipt by id.
func (b *Bank) ReceiptOf(id uuid.UUID) (Receipt, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.receipts[id]
	return r, ok
}
