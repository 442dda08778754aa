package amm

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"ammcore/internal/transfer"
)

func TestBulkSwapForwardChainsPriceImpact(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, nil)
	f.initialize(t)

	results, err := f.engine.BulkSwapForward(context.Background(), bob, []SwapRequest{
		swapReq(10_000_000),
		swapReq(10_000_000),
	})
	require.NoError(err)
	require.Len(results, 2)
	require.Equal(uint64(18_132_217), results[0].AmountOut.Uint64())
	require.Equal(uint64(15_117_740), results[1].AmountOut.Uint64())
	require.Equal(uint64(30_000), results[1].Fee.Uint64())
	f.requireReserves(t, 119_940_000, 166_750_043)

	receipts := f.engine.TakeReceipts()
	require.Len(receipts, 1)
	require.Equal("bulk-swap-forward", receipts[0].Op)
	require.Len(receipts[0].Events, 2)
}

func TestBulkSwapIsAtomic(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, nil)
	f.initialize(t)

	second := swapReq(10_000_000)
	// Would pass against the initial reserves, fails after the first item.
	second.MinOut = uint256.NewInt(18_000_000)
	_, err := f.engine.BulkSwapForward(context.Background(), bob, []SwapRequest{
		swapReq(10_000_000),
		second,
	})
	require.ErrorIs(err, ErrSlippageExceeded)
	require.Equal(CodeSlippageExceeded, CodeOf(err))
	require.Contains(err.Error(), "item 1")

	f.requireReserves(t, initX, initY)
	feesX, _ := f.engine.CumulativeFees()
	require.True(feesX.IsZero())
	require.Equal(uint64(funding), f.bank.BalanceOf(tokenX, bob).Uint64())
	require.Equal(uint64(funding), f.bank.BalanceOf(tokenY, bob).Uint64())
	require.Empty(f.engine.TakeReceipts())
	require.Equal(uint64(1), f.engine.Sequence())
}

func TestBulkSwapBackwardItemDeadlines(t *testing.T) {
	f := newFixture(t, nil)
	f.initialize(t)

	expired := swapReq(1_000)
	expired.Deadline = 50
	_, err := f.engine.BulkSwapBackward(context.Background(), bob, []SwapRequest{swapReq(1_000), swapReq(1_000), expired})
	require.ErrorIs(t, err, ErrDeadlineExpired)
	require.Contains(t, err.Error(), "item 2")
	f.requireReserves(t, initX, initY)
}

func TestBulkBounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.initialize(t)

	_, err := f.engine.BulkSwapForward(ctx, bob, nil)
	require.ErrorIs(t, err, ErrZeroInput)
	_, err = f.engine.BulkAddLiquidity(ctx, bob, []AddRequest{})
	require.Equal(t, CodeZeroInput, CodeOf(err))
	_, err = f.engine.BulkRemoveLiquidity(ctx, bob, nil)
	require.Equal(t, CodeZeroInput, CodeOf(err))

	swaps := make([]SwapRequest, DefaultMaxSwapBatch+1)
	for i := range swaps {
		swaps[i] = swapReq(1_000)
	}
	_, err = f.engine.BulkSwapBackward(ctx, bob, swaps)
	require.ErrorIs(t, err, ErrBatchTooLarge)

	_, err = f.engine.BulkSwapBackward(ctx, bob, swaps[:DefaultMaxSwapBatch])
	require.NoError(t, err)

	adds := make([]AddRequest, DefaultMaxLiquidityBatch+1)
	_, err = f.engine.BulkAddLiquidity(ctx, bob, adds)
	require.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestBulkLiquidity(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t, nil)
	f.initialize(t)

	added, err := f.engine.BulkAddLiquidity(ctx, bob, []AddRequest{
		{AmountX: uint256.NewInt(50_000_000), AmountY: uint256.NewInt(100_000_000)},
		{AmountX: uint256.NewInt(10_000_000), AmountY: uint256.NewInt(100_000_000)},
	})
	require.NoError(err)
	require.Len(added, 2)
	require.Equal(uint64(39_062_500_000_041), added[0].Shares.Uint64())

	total := new(uint256.Int).Add(added[0].Shares, added[1].Shares)
	require.Equal(total, f.engine.ShareBalance(bob))

	// The second redemption exceeds what is left after the first.
	_, err = f.engine.BulkRemoveLiquidity(ctx, bob, []RemoveRequest{
		{Shares: added[0].Shares},
		{Shares: total},
	})
	require.ErrorIs(err, ErrInsufficientBalance)
	require.Equal(total, f.engine.ShareBalance(bob))

	removed, err := f.engine.BulkRemoveLiquidity(ctx, bob, []RemoveRequest{
		{Shares: added[1].Shares},
		{Shares: added[0].Shares},
	})
	require.NoError(err)
	require.Len(removed, 2)
	require.True(f.engine.ShareBalance(bob).IsZero())
	require.Equal(uint64(initShares), f.engine.TotalShares().Uint64())
}

func TestBulkAddRollsBackTransfersOnLateFailure(t *testing.T) {
	f := newFixture(t, func(b *transfer.Bank) transfer.Vault {
		return &flakyVault{Bank: b}
	})
	f.initialize(t)

	_, err := f.engine.BulkAddLiquidity(context.Background(), bob, []AddRequest{
		{AmountX: uint256.NewInt(50_000_000), AmountY: uint256.NewInt(100_000_000)},
		{AmountX: uint256.NewInt(50_000_000), AmountY: uint256.NewInt(funding)},
		{AmountX: uint256.NewInt(funding), AmountY: uint256.NewInt(funding)},
	})
	require.ErrorIs(t, err, ErrTransferInFailed)
	require.ErrorIs(t, err, transfer.ErrInsufficientFunds)
	require.Contains(t, err.Error(), "item 2")

	require.Equal(t, uint64(funding), f.bank.BalanceOf(tokenX, bob).Uint64())
	require.Equal(t, uint64(funding), f.bank.BalanceOf(tokenY, bob).Uint64())
	require.True(t, f.engine.ShareBalance(bob).IsZero())
	f.requireReserves(t, initX, initY)
}

func TestOperationsPreserveInvariants(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t, nil)
	f.initialize(t)

	k := func() *uint256.Int {
		x, y := f.engine.Reserves()
		return new(uint256.Int).Mul(x, y)
	}

	amounts := []uint64{1, 7, 999, 12_345, 1_000_000, 33_333_333, 5}
	for i, amount := range amounts {
		before := k()
		var err error
		if i%2 == 0 {
			_, err = f.engine.SwapForward(ctx, bob, swapReq(amount))
		} else {
			_, err = f.engine.SwapBackward(ctx, bob, swapReq(amount))
		}
		require.NoError(err)
		require.False(k().Lt(before), "k decreased on swap %d", i)
		require.NoError(f.engine.ledger.Check())

		if amount > 1_000 {
			_, err = f.engine.AddLiquidity(ctx, bob, AddRequest{
				AmountX: uint256.NewInt(amount),
				AmountY: uint256.NewInt(amount),
			})
			require.NoError(err)
			require.NoError(f.engine.ledger.Check())
		}
	}

	_, err := f.engine.RemoveLiquidity(ctx, bob, RemoveRequest{Shares: f.engine.ShareBalance(bob)})
	require.NoError(err)
	require.NoError(f.engine.ledger.Check())

	x, y := f.engine.Reserves()
	require.False(x.IsZero())
	require.False(y.IsZero())
	require.Equal(x, f.bank.BalanceOf(tokenX, custody))
	require.Equal(y, f.bank.BalanceOf(tokenY, custody))
}
