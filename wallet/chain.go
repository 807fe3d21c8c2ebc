package wallet

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/AlexZinkM/evm-wallet/internal/common"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainBackend is the part of the chain RPC the wallet uses.
// *client.ChainClient implements it.
type ChainBackend interface {
	BalanceAt(ctx context.Context, address ethcommon.Address) (*big.Int, error)
	TokenBalance(ctx context.Context, token, owner ethcommon.Address) (*big.Int, error)
	TokenDecimals(ctx context.Context, token ethcommon.Address) (uint8, error)

	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account ethcommon.Address) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)

	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error)
}

// Assets is the fixed set of assets the wallet tracks: one native asset and
// a few ERC-20 tokens keyed by symbol.
type Assets struct {
	native  string
	tokens  map[string]ethcommon.Address
	symbols []string

	mu       sync.Mutex
	decimals map[ethcommon.Address]uint8 // token decimals never change
}

// NewAssets builds the registry from a symbol -> contract address map
func NewAssets(native string, tokens map[string]string) *Assets {
	a := &Assets{
		native:   native,
		tokens:   make(map[string]ethcommon.Address, len(tokens)),
		decimals: make(map[ethcommon.Address]uint8),
	}
	for sym, addr := range tokens {
		a.tokens[sym] = ethcommon.HexToAddress(addr)
		a.symbols = append(a.symbols, sym)
	}
	sort.Strings(a.symbols)
	return a
}

// Native returns the native asset symbol
func (a *Assets) Native() string {
	return a.native
}

// Tokens returns the token symbols in a stable order
func (a *Assets) Tokens() []string {
	return a.symbols
}

// IsNative reports whether symbol is the native asset
func (a *Assets) IsNative(symbol string) bool {
	return symbol == a.native
}

// Known reports whether symbol is tracked
func (a *Assets) Known(symbol string) bool {
	if a.IsNative(symbol) {
		return true
	}
	_, ok := a.tokens[symbol]
	return ok
}

// Contract returns the token contract of symbol
func (a *Assets) Contract(symbol string) (ethcommon.Address, bool) {
	addr, ok := a.tokens[symbol]
	return addr, ok
}

// SymbolOf returns the symbol of a tracked token contract
func (a *Assets) SymbolOf(contract string) (string, bool) {
	for sym, addr := range a.tokens {
		if strings.EqualFold(addr.Hex(), contract) {
			return sym, true
		}
	}
	return "", false
}

// Decimals returns the decimals of symbol, querying token contracts once
func (a *Assets) Decimals(ctx context.Context, chain ChainBackend, symbol string) (uint8, error) {
	if a.IsNative(symbol) {
		return common.NativeDecimals, nil
	}
	contract, ok := a.tokens[symbol]
	if !ok {
		return 0, fmt.Errorf("unknown asset %s", symbol)
	}

	a.mu.Lock()
	d, cached := a.decimals[contract]
	a.mu.Unlock()
	if cached {
		return d, nil
	}

	d, err := chain.TokenDecimals(ctx, contract)
	if err != nil {
		return 0, err
	}

	a.mu.Lock()
	a.decimals[contract] = d
	a.mu.Unlock()
	return d, nil
}
