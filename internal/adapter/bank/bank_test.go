package bank

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	asset  = common.HexToAddress("0x0000000000000000000000000000000000000aaa")
	escrow = common.HexToAddress("0x000000000000000000000000000000000000e5c0")
	dana   = common.HexToAddress("0x5555555555555555555555555555555555555555")
)

func TestTransfers(t *testing.T) {
	b := New(asset, escrow)
	ctx := context.Background()
	b.Fund(dana, 100)

	require.NoError(t, b.TransferFrom(ctx, dana, escrow, 60))
	require.Equal(t, int64(40), b.BalanceOf(dana))
	require.Equal(t, int64(60), b.BalanceOf(escrow))

	require.ErrorIs(t, b.TransferFrom(ctx, dana, escrow, 41), ErrInsufficientFunds)

	require.NoError(t, b.Transfer(ctx, dana, 60))
	require.Equal(t, int64(100), b.BalanceOf(dana))
	require.ErrorIs(t, b.Transfer(ctx, dana, 1), ErrInsufficientFunds)
}

func TestPool(t *testing.T) {
	b := New(asset, escrow)
	ctx := context.Background()
	position := common.HexToAddress("0x6666666666666666666666666666666666666666")
	b.Fund(escrow, 500)

	// wrong asset
	require.ErrorIs(t, b.Supply(ctx, dana, 100, position), ErrUnknownAsset)

	require.NoError(t, b.Supply(ctx, asset, 500, position))
	require.Equal(t, int64(0), b.BalanceOf(escrow))

	bal, err := b.WithdrawableBalance(ctx, asset, position)
	require.NoError(t, err)
	require.Equal(t, int64(500), bal)

	b.AccrueYield(position, 25)
	bal, err = b.WithdrawableBalance(ctx, asset, position)
	require.NoError(t, err)
	require.Equal(t, int64(525), bal)

	got, err := b.Withdraw(ctx, asset, position, 525, dana)
	require.NoError(t, err)
	require.Equal(t, int64(525), got)
	require.Equal(t, int64(525), b.BalanceOf(dana))

	_, err = b.Withdraw(ctx, asset, position, 1, dana)
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestReceipts(t *testing.T) {
	b := New(asset, escrow)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, b.Mint(ctx, dana, id, 300))
	r, ok := b.ReceiptOf(id)
	require.True(t, ok)
	require.Equal(t, dana, r.Owner)
	require.Equal(t, int64(300), r.Amount)

	require.ErrorIs(t, b.Mint(ctx, dana, id, 300), ErrReceiptExists)
}
