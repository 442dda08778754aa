package quote

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func u(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

func TestFee(t *testing.T) {
	testCases := []struct {
		amount uint64
		want   uint64
	}{
		{amount: 0, want: 0},
		{amount: 333, want: 0},
		{amount: 334, want: 1},
		{amount: 10_000_000, want: 30_000},
		{amount: 20_000_000, want: 60_000},
	}

	for _, tc := range testCases {
		fee, err := Fee(u(tc.amount))
		require.NoError(t, err)
		require.Equal(t, tc.want, fee.Uint64(), "fee(%d)", tc.amount)
		require.False(t, fee.Gt(u(tc.amount)))
	}
}

func TestForward(t *testing.T) {
	testCases := []struct {
		name       string
		amountIn   uint64
		reserveIn  uint64
		reserveOut uint64
		wantOut    uint64
		wantFee    uint64
		wantErr    error
	}{
		{
			name:       "x to y against 1:2 pool",
			amountIn:   10_000_000,
			reserveIn:  100_000_000,
			reserveOut: 200_000_000,
			wantOut:    18_132_217,
			wantFee:    30_000,
		},
		{
			name:       "y to x against 1:2 pool",
			amountIn:   20_000_000,
			reserveIn:  200_000_000,
			reserveOut: 100_000_000,
			wantOut:    9_066_108,
			wantFee:    60_000,
		},
		{
			name:       "balanced pool",
			amountIn:   1_000_000,
			reserveIn:  1_000_000,
			reserveOut: 1_000_000,
			wantOut:    499_248,
			wantFee:    3_000,
		},
		{
			name:       "dust rounds to zero output",
			amountIn:   1,
			reserveIn:  10,
			reserveOut: 10,
			wantOut:    0,
			wantFee:    0,
		},
		{
			name:       "zero input",
			amountIn:   0,
			reserveIn:  10,
			reserveOut: 10,
			wantErr:    ErrZeroAmount,
		},
		{
			name:       "empty reserve",
			amountIn:   10,
			reserveIn:  0,
			reserveOut: 10,
			wantErr:    ErrZeroReserves,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			swap, err := Forward(u(tc.amountIn), u(tc.reserveIn), u(tc.reserveOut))
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantOut, swap.AmountOut.Uint64())
			require.Equal(t, tc.wantFee, swap.Fee.Uint64())
			require.Equal(t, tc.amountIn-tc.wantFee, swap.NetIn.Uint64())
			require.True(t, swap.AmountOut.Lt(u(tc.reserveOut)))
		})
	}
}

func TestForwardKeepsProductNonDecreasing(t *testing.T) {
	reserveIn, reserveOut := u(1_000_003), u(7_777_777)
	for _, amountIn := range []uint64{1, 17, 999, 123_456, 5_000_000, 90_000_000} {
		swap, err := Forward(u(amountIn), reserveIn, reserveOut)
		require.NoError(t, err)

		before := new(uint256.Int).Mul(reserveIn, reserveOut)
		newIn := new(uint256.Int).Add(reserveIn, swap.NetIn)
		newOut := new(uint256.Int).Sub(reserveOut, swap.AmountOut)
		after := new(uint256.Int).Mul(newIn, newOut)
		require.False(t, after.Lt(before), "k decreased for amountIn=%d", amountIn)
	}
}

func TestForwardNeverDrainsOutput(t *testing.T) {
	huge := new(uint256.Int).Set(MaxAmount)
	swap, err := Forward(huge, u(1_000), u(1_000))
	require.NoError(t, err)
	require.True(t, swap.AmountOut.Lt(u(1_000)))
}

func TestAddLiquidityFirstDeposit(t *testing.T) {
	dep, err := AddLiquidity(u(100_000_000), u(200_000_000), u(0), u(0), u(0))
	require.NoError(t, err)
	require.Equal(t, uint64(78_125_000_000_083), dep.Shares.Uint64())
	require.Equal(t, uint64(100_000_000), dep.X.Uint64())
	require.Equal(t, uint64(200_000_000), dep.Y.Uint64())
}

func TestAddLiquidityProportional(t *testing.T) {
	reserveX, reserveY, total := u(100_000_000), u(200_000_000), u(78_125_000_000_083)

	dep, err := AddLiquidity(u(50_000_000), u(100_000_000), reserveX, reserveY, total)
	require.NoError(t, err)
	require.Equal(t, uint64(39_062_500_000_041), dep.Shares.Uint64())
	require.Equal(t, uint64(49_999_999), dep.X.Uint64())
	require.Equal(t, uint64(99_999_999), dep.Y.Uint64())
}

func TestAddLiquidityTighterSideWins(t *testing.T) {
	reserveX, reserveY, total := u(100_000_000), u(200_000_000), u(78_125_000_000_083)

	// X side is the constraint: only a tenth of the requested Y is consumed.
	dep, err := AddLiquidity(u(10_000_000), u(100_000_000), reserveX, reserveY, total)
	require.NoError(t, err)
	require.Equal(t, uint64(7_812_500_000_008), dep.Shares.Uint64())
	require.Equal(t, uint64(9_999_999), dep.X.Uint64())
	require.Equal(t, uint64(19_999_999), dep.Y.Uint64())
}

func TestRemoveLiquidity(t *testing.T) {
	x, y, err := RemoveLiquidity(u(39_062_500_000_041), u(100_000_000), u(200_000_000), u(78_125_000_000_083))
	require.NoError(t, err)
	require.Equal(t, uint64(49_999_999), x.Uint64())
	require.Equal(t, uint64(99_999_999), y.Uint64())

	x, y, err = RemoveLiquidity(u(70_710), u(50_000_000), u(100_000_000), u(70_710))
	require.NoError(t, err)
	require.Equal(t, uint64(50_000_000), x.Uint64())
	require.Equal(t, uint64(100_000_000), y.Uint64())

	_, _, err = RemoveLiquidity(u(1), u(1), u(1), u(0))
	require.ErrorIs(t, err, ErrNoShares)

	_, _, err = RemoveLiquidity(u(0), u(1), u(1), u(1))
	require.ErrorIs(t, err, ErrZeroAmount)
}

func TestAddRemoveRoundTripNeverGains(t *testing.T) {
	reserveX, reserveY, total := u(100_000_000), u(200_000_000), u(78_125_000_000_083)
	dx, dy := u(50_000_000), u(100_000_000)

	dep, err := AddLiquidity(dx, dy, reserveX, reserveY, total)
	require.NoError(t, err)

	newX := new(uint256.Int).Add(reserveX, dep.X)
	newY := new(uint256.Int).Add(reserveY, dep.Y)
	newTotal := new(uint256.Int).Add(total, dep.Shares)

	x, y, err := RemoveLiquidity(dep.Shares, newX, newY, newTotal)
	require.NoError(t, err)
	require.False(t, x.Gt(dx))
	require.False(t, y.Gt(dy))
	require.Equal(t, uint64(49_999_999), x.Uint64())
	require.Equal(t, uint64(99_999_999), y.Uint64())
}

func TestISqrt(t *testing.T) {
	testCases := []struct {
		n    uint64
		want uint64
	}{
		{n: 0, want: 0},
		{n: 1, want: 1},
		{n: 2, want: 1},
		{n: 3, want: 1},
		{n: 4, want: 2},
		{n: 15, want: 3},
		{n: 16, want: 4},
		{n: 17, want: 4},
		{n: 100, want: 10},
		{n: 40_000, want: 232},
		{n: 1_000_000, want: 3_989},
		{n: 20_000_000_000_000_000, want: 78_125_000_000_083},
		{n: 5_000_000_000_000_000, want: 19_531_250_000_083},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.want, ISqrt(u(tc.n)).Uint64(), "isqrt(%d)", tc.n)
	}
}

func TestISqrtDoesNotMutateInput(t *testing.T) {
	n := u(1_000_000)
	_ = ISqrt(n)
	require.Equal(t, uint64(1_000_000), n.Uint64())
}
