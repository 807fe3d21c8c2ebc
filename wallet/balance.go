package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/AlexZinkM/evm-wallet/internal/common"
	"github.com/AlexZinkM/evm-wallet/internal/model"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// BalanceAggregator reads the balance of every tracked asset
type BalanceAggregator struct {
	chain  ChainBackend
	assets *Assets
}

// NewBalanceAggregator creates a new aggregator
func NewBalanceAggregator(chain ChainBackend, assets *Assets) *BalanceAggregator {
	return &BalanceAggregator{chain: chain, assets: assets}
}

// FetchBalances gets the native and token balances of address.
// Assets are queried concurrently and independently: a failed asset is
// reported as unknown and does not hide the others. If every asset failed a
// NetworkError is returned along with the (all unknown) result.
func (b *BalanceAggregator) FetchBalances(ctx context.Context, address string) (model.Balances, error) {
	if !ethcommon.IsHexAddress(address) {
		return model.Balances{}, model.NewValidationError("invalid address")
	}
	owner := ethcommon.HexToAddress(address)

	symbols := append([]string{b.assets.Native()}, b.assets.Tokens()...)
	results := make([]model.AssetBalance, len(symbols))
	errs := make([]error, len(symbols))

	// One goroutine per asset. Goroutines never return an error so one
	// failure does not cancel the rest.
	var g errgroup.Group
	for i, sym := range symbols {
		g.Go(func() error {
			results[i], errs[i] = b.fetchOne(ctx, owner, sym)
			return nil
		})
	}
	_ = g.Wait()

	balances := model.Balances{
		Address: owner.Hex(),
		Tokens:  make(map[string]model.AssetBalance, len(symbols)-1),
	}
	var failed []error
	for i, sym := range symbols {
		res := results[i]
		if errs[i] != nil {
			log.Warnf("Balance of %s for %s unavailable: %v", sym, owner.Hex(), errs[i])
			failed = append(failed, fmt.Errorf("%s: %w", sym, errs[i]))
			res = model.AssetBalance{
				Asset:     sym,
				Formatted: model.UnknownBalance,
				Error:     errs[i].Error(),
			}
		}
		if i == 0 {
			balances.Native = res
		} else {
			balances.Tokens[sym] = res
		}
	}

	if len(failed) == len(symbols) {
		return balances, model.NewNetworkError("failed to fetch balances", errors.Join(failed...))
	}
	return balances, nil
}

// fetchOne reads and formats one asset balance
func (b *BalanceAggregator) fetchOne(ctx context.Context, owner ethcommon.Address, symbol string) (model.AssetBalance, error) {
	decimals, err := b.assets.Decimals(ctx, b.chain, symbol)
	if err != nil {
		return model.AssetBalance{}, fmt.Errorf("failed to get decimals: %w", err)
	}

	var raw *big.Int
	if b.assets.IsNative(symbol) {
		raw, err = b.chain.BalanceAt(ctx, owner)
	} else {
		contract, _ := b.assets.Contract(symbol)
		raw, err = b.chain.TokenBalance(ctx, contract, owner)
	}
	if err != nil {
		return model.AssetBalance{}, err
	}

	return model.AssetBalance{
		Asset:     symbol,
		Raw:       raw,
		Decimals:  decimals,
		Formatted: common.FormatUnits(raw, decimals),
		Known:     true,
	}, nil
}
