package port

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Value Transfer Port. These interfaces abstract the external settlement
// capabilities the escrow consumes but does not implement: a fungible
// stablecoin, a yield-bearing lending pool and a receipt-token minter. All
// calls are synchronous and must either complete or report an error; value is
// never silently lost.

// TokenTransfer moves stablecoin units between the escrow account and other
// accounts. Amounts are integers in the token's smallest unit.
type TokenTransfer interface {
	// TransferFrom pulls amount from the contributor's account into to.
	TransferFrom(ctx context.Context, from, to common.Address, amount int64) error
	// Transfer pays amount out of the escrow account.
	Transfer(ctx context.Context, to common.Address, amount int64) error
}

// LendingPool is the yield-bearing custody backend. Positions are keyed by
// the onBehalfOf address used at supply time; the escrow derives one position
// address per campaign so positions never commingle.
type LendingPool interface {
	// Supply deposits amount of asset, crediting the onBehalfOf position.
	Supply(ctx context.Context, asset common.Address, amount int64, onBehalfOf common.Address) error
	// Withdraw debits the from position and pays the proceeds to to. It
	// returns the amount actually withdrawn.
	Withdraw(ctx context.Context, asset common.Address, from common.Address, amount int64, to common.Address) (int64, error)
	// WithdrawableBalance reports the position's current balance including
	// accrued yield, which may exceed the supplied principal.
	WithdrawableBalance(ctx context.Context, asset common.Address, of common.Address) (int64, error)
}

// ReceiptMinter mints one auditable receipt token per contribution in the
// yield variant. Receipts carry no entitlement; the contribution record is
// the sole source of truth for what is owed.
type ReceiptMinter interface {
	Mint(ctx context.Context, to common.Address, id uuid.UUID, amount int64) error
}
