package transfer

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	tokenX = common.HexToAddress("0x000000000000000000000000000000000000000a")
	alice  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob    = common.HexToAddress("0x00000000000000000000000000000000000000b0")
)

func TestBankTransfer(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	bank := NewBank()
	require.NoError(bank.Mint(tokenX, alice, uint256.NewInt(100)))

	require.NoError(bank.Transfer(ctx, Transfer{Token: tokenX, Amount: uint256.NewInt(40), From: alice, To: bob}))
	require.Equal(uint64(60), bank.BalanceOf(tokenX, alice).Uint64())
	require.Equal(uint64(40), bank.BalanceOf(tokenX, bob).Uint64())

	err := bank.Transfer(ctx, Transfer{Token: tokenX, Amount: uint256.NewInt(61), From: alice, To: bob})
	require.ErrorIs(err, ErrInsufficientFunds)
	require.Equal(uint64(60), bank.BalanceOf(tokenX, alice).Uint64())

	err = bank.Transfer(ctx, Transfer{Token: tokenX, From: alice, To: bob})
	require.ErrorIs(err, ErrInvalidTransfer)
}

func TestBankSelfTransferChecksFunds(t *testing.T) {
	ctx := context.Background()
	bank := NewBank()
	require.NoError(t, bank.Mint(tokenX, alice, uint256.NewInt(5)))

	require.NoError(t, bank.Transfer(ctx, Transfer{Token: tokenX, Amount: uint256.NewInt(5), From: alice, To: alice}))
	require.Equal(t, uint64(5), bank.BalanceOf(tokenX, alice).Uint64())
	require.ErrorIs(t, bank.Transfer(ctx, Transfer{Token: tokenX, Amount: uint256.NewInt(6), From: alice, To: alice}), ErrInsufficientFunds)
}

func TestBankRevertToSnapshot(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	bank := NewBank()
	require.NoError(bank.Mint(tokenX, alice, uint256.NewInt(100)))

	outer := bank.Snapshot()
	require.NoError(bank.Transfer(ctx, Transfer{Token: tokenX, Amount: uint256.NewInt(10), From: alice, To: bob}))
	inner := bank.Snapshot()
	require.NoError(bank.Transfer(ctx, Transfer{Token: tokenX, Amount: uint256.NewInt(20), From: alice, To: bob}))

	bank.RevertToSnapshot(inner)
	require.Equal(uint64(90), bank.BalanceOf(tokenX, alice).Uint64())
	require.Equal(uint64(10), bank.BalanceOf(tokenX, bob).Uint64())

	bank.RevertToSnapshot(outer)
	require.Equal(uint64(100), bank.BalanceOf(tokenX, alice).Uint64())
	require.True(bank.BalanceOf(tokenX, bob).IsZero())
	require.Empty(bank.Export()[tokenX.Hex()][bob.Hex()])
}

func TestBankTransferHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bank := NewBank()
	require.NoError(t, bank.Mint(tokenX, alice, uint256.NewInt(1)))
	require.ErrorIs(t, bank.Transfer(ctx, Transfer{Token: tokenX, Amount: uint256.NewInt(1), From: alice, To: bob}), context.Canceled)
}

func TestBankExportImport(t *testing.T) {
	require := require.New(t)

	bank := NewBank()
	require.NoError(bank.Mint(tokenX, alice, uint256.NewInt(7)))
	require.NoError(bank.Mint(tokenX, bob, uint256.NewInt(0)))

	exported := bank.Export()
	require.Equal(map[string]map[string]string{tokenX.Hex(): {alice.Hex(): "7"}}, exported)

	restored, err := ImportBank(exported)
	require.NoError(err)
	require.Equal(uint64(7), restored.BalanceOf(tokenX, alice).Uint64())

	_, err = ImportBank(map[string]map[string]string{"nope": {alice.Hex(): "1"}})
	require.Error(err)
}
