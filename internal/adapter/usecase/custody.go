package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"

	"stablefund/internal/core/domain"
	"stablefund/internal/core/port"
)

// CustodyStrategy decides where escrowed funds physically reside. Its methods
// run inside the repository's settle hook, after the ledger mutation and
// before commit; any error aborts and rolls back the whole operation.
type CustodyStrategy interface {
	// Deposit pulls amount from the contributor into custody.
	Deposit(ctx context.Context, campaignID int64, contributor common.Address, amount int64, receiptID uuid.UUID) error
	// Refund pays amount from custody back to the contributor. Used by both
	// pre-deadline withdrawal and post-failure refund.
	Refund(ctx context.Context, campaignID int64, contributor common.Address, amount int64) error
	// Payout settles the campaign's custodied balance to the admin and
	// returns the amount paid. collected is the ledger's CollectedFunds.
	Payout(ctx context.Context, campaignID int64, admin common.Address, collected int64) (int64, error)
	// IssuesReceipts reports whether Deposit mints a receipt token.
	IssuesReceipts() bool
}

// RawCustody holds contributed funds on the escrow account itself until they
// are withdrawn, refunded or claimed.
type RawCustody struct {
	token  port.TokenTransfer
	escrow common.Address
}

// NewRawCustody returns the raw-holding strategy. escrow is the account that
// custodies pooled funds between contribution and settlement.
func NewRawCustody(token port.TokenTransfer, escrow common.Address) *RawCustody {
	return &RawCustody{token: token, escrow: escrow}
}

func (r *RawCustody) Deposit(ctx context.Context, _ int64, contributor common.Address, amount int64, _ uuid.UUID) error {
	if err := r.token.TransferFrom(ctx, contributor, r.escrow, amount); err != nil {
		return fmt.Errorf("%w: inbound: %w", domain.ErrTransferFailed, err)
	}
	return nil
}

func (r *RawCustody) Refund(ctx context.Context, _ int64, contributor common.Address, amount int64) error {
	if err := r.token.Transfer(ctx, contributor, amount); err != nil {
		return fmt.Errorf("%w: outbound: %w", domain.ErrTransferFailed, err)
	}
	return nil
}

func (r *RawCustody) Payout(ctx context.Context, _ int64, admin common.Address, collected int64) (int64, error) {
	if err := r.token.Transfer(ctx, admin, collected); err != nil {
		return 0, fmt.Errorf("%w: payout: %w", domain.ErrTransferFailed, err)
	}
	return collected, nil
}

func (r *RawCustody) IssuesReceipts() bool { return false }

// YieldCustody forwards every contribution into an external lending pool and
// mints a receipt token to the contributor, so the escrow's raw balance stays
// ~0. Refunds un-supply from the pool directly to the contributor, and the
// admin payout withdraws the position's full balance, principal plus accrued
// yield. Each campaign supplies under its own derived position address so
// positions never commingle across campaigns.
type YieldCustody struct {
	token  port.TokenTransfer
	pool   port.LendingPool
	minter port.ReceiptMinter
	asset  common.Address
	escrow common.Address
}

// NewYieldCustody returns the yield-bearing strategy. asset is the stablecoin
// address supplied to the pool.
func NewYieldCustody(token port.TokenTransfer, pool port.LendingPool, minter port.ReceiptMinter, asset, escrow common.Address) *YieldCustody {
	return &YieldCustody{token: token, pool: pool, minter: minter, asset: asset, escrow: escrow}
}

// position derives the campaign's pool position address from the escrow
// account and the campaign id, the same way a contract address is derived
// from deployer and nonce.
func (y *YieldCustody) position(campaignID int64) common.Address {
	return crypto.CreateAddress(y.escrow, uint64(campaignID))
}

// Deposit pulls the contribution in, supplies it to the pool and mints the
// receipt. A failure after the inbound transfer compensates by returning the
// funds to the contributor, so the ledger rollback never strands value on the
// escrow account or in the pool.
func (y *YieldCustody) Deposit(ctx context.Context, campaignID int64, contributor common.Address, amount int64, receiptID uuid.UUID) error {
	if err := y.token.TransferFrom(ctx, contributor, y.escrow, amount); err != nil {
		return fmt.Errorf("%w: inbound: %w", domain.ErrTransferFailed, err)
	}
	pos := y.position(campaignID)
	if err := y.pool.Supply(ctx, y.asset, amount, pos); err != nil {
		if rerr := y.token.Transfer(ctx, contributor, amount); rerr != nil {
			return fmt.Errorf("%w: pool supply: %w (compensating transfer also failed: %w)", domain.ErrTransferFailed, err, rerr)
		}
		return fmt.Errorf("%w: pool supply: %w", domain.ErrTransferFailed, err)
	}
	if err := y.minter.Mint(ctx, contributor, receiptID, amount); err != nil {
		if _, rerr := y.pool.Withdraw(ctx, y.asset, pos, amount, contributor); rerr != nil {
			return fmt.Errorf("%w: receipt mint: %w (compensating withdraw also failed: %w)", domain.ErrTransferFailed, err, rerr)
		}
		return fmt.Errorf("%w: receipt mint: %w", domain.ErrTransferFailed, err)
	}
	return nil
}

func (y *YieldCustody) Refund(ctx context.Context, campaignID int64, contributor common.Address, amount int64) error {
	if _, err := y.pool.Withdraw(ctx, y.asset, y.position(campaignID), amount, contributor); err != nil {
		return fmt.Errorf("%w: pool withdraw: %w", domain.ErrTransferFailed, err)
	}
	return nil
}

func (y *YieldCustody) Payout(ctx context.Context, campaignID int64, admin common.Address, _ int64) (int64, error) {
	pos := y.position(campaignID)
	balance, err := y.pool.WithdrawableBalance(ctx, y.asset, pos)
	if err != nil {
		return 0, fmt.Errorf("%w: pool balance: %w", domain.ErrTransferFailed, err)
	}
	paid, err := y.pool.Withdraw(ctx, y.asset, pos, balance, admin)
	if err != nil {
		return 0, fmt.Errorf("%w: payout: %w", domain.ErrTransferFailed, err)
	}
	return paid, nil
}

func (y *YieldCustody) IssuesReceipts() bool { return true }
