package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/stretchr/testify/require"
)

func TestFetchBalances(t *testing.T) {
	t.Parallel()

	chain := newFakeChain()
	b := NewBalanceAggregator(chain, testAssets())

	got, err := b.FetchBalances(context.Background(), testAddress)
	require.NoError(t, err)
	require.Equal(t, testAddress, got.Address)

	require.Equal(t, "BNB", got.Native.Asset)
	require.Equal(t, "10.0", got.Native.Formatted)
	require.True(t, got.Native.Known)
	require.EqualValues(t, 18, got.Native.Decimals)

	require.Len(t, got.Tokens, 2)
	require.Equal(t, "100.0", got.Tokens["USDT"].Formatted)
	require.Equal(t, "50.0", got.Tokens["USDC"].Formatted)
	require.EqualValues(t, 6, got.Tokens["USDC"].Decimals)
}

func TestFetchBalancesPartialFailure(t *testing.T) {
	t.Parallel()

	chain := newFakeChain()
	chain.failAsset(usdtAddress, errors.New("execution reverted"))
	b := NewBalanceAggregator(chain, testAssets())

	got, err := b.FetchBalances(context.Background(), testAddress)
	require.NoError(t, err)

	usdt := got.Tokens["USDT"]
	require.False(t, usdt.Known)
	require.Equal(t, model.UnknownBalance, usdt.Formatted)
	require.Contains(t, usdt.Error, "execution reverted")

	// The failure does not hide the other assets
	require.True(t, got.Native.Known)
	require.Equal(t, "50.0", got.Tokens["USDC"].Formatted)
}

func TestFetchBalancesAllFailed(t *testing.T) {
	t.Parallel()

	chain := newFakeChain()
	down := errors.New("dial tcp: connection refused")
	chain.failAsset("native", down)
	chain.failAsset(usdtAddress, down)
	chain.failAsset(usdcAddress, down)
	b := NewBalanceAggregator(chain, testAssets())

	got, err := b.FetchBalances(context.Background(), testAddress)
	require.True(t, model.IsKind(err, model.KindNetwork))
	require.ErrorIs(t, err, down)

	require.Equal(t, model.UnknownBalance, got.Native.Formatted)
	require.Equal(t, model.UnknownBalance, got.Tokens["USDT"].Formatted)
	require.Equal(t, model.UnknownBalance, got.Tokens["USDC"].Formatted)
}

func TestFetchBalancesInvalidAddress(t *testing.T) {
	t.Parallel()

	chain := newFakeChain()
	b := NewBalanceAggregator(chain, testAssets())

	_, err := b.FetchBalances(context.Background(), "0x123")
	require.True(t, model.IsKind(err, model.KindValidation))
	require.Zero(t, chain.calls.Load())
}
