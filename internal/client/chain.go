package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/metrics"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// erc20ABI covers the calls the wallet makes on token contracts
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

var erc20 = mustParseABI(erc20ABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("invalid ABI: %v", err))
	}
	return parsed
}

// PackTransfer encodes an ERC-20 transfer(to, value) call
func PackTransfer(to ethcommon.Address, value *big.Int) ([]byte, error) {
	data, err := erc20.Pack("transfer", to, value)
	if err != nil {
		return nil, fmt.Errorf("failed to pack transfer: %w", err)
	}
	return data, nil
}

// ChainClient is a client for the EVM JSON-RPC endpoint.
// Transaction, gas and receipt calls come straight from ethclient.
type ChainClient struct {
	*ethclient.Client
	rpcURL string
}

// NewChainClient dials the RPC endpoint
func NewChainClient(ctx context.Context, rpcURL string) (*ChainClient, error) {
	rpc, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC %s: %w", rpcURL, err)
	}
	return &ChainClient{Client: rpc, rpcURL: rpcURL}, nil
}

// BalanceAt gets the native balance in wei at the latest block
func (c *ChainClient) BalanceAt(ctx context.Context, address ethcommon.Address) (*big.Int, error) {
	start := time.Now()
	bal, err := c.Client.BalanceAt(ctx, address, nil)
	metrics.ObserveRequest("rpc", "balance", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get native balance: %w", err)
	}
	return bal, nil
}

// TokenDecimals reads decimals() of a token contract
func (c *ChainClient) TokenDecimals(ctx context.Context, token ethcommon.Address) (uint8, error) {
	out, err := c.call(ctx, token, "decimals")
	if err != nil {
		return 0, err
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals type %T", out[0])
	}
	return decimals, nil
}

// TokenBalance reads balanceOf(owner) of a token contract in raw units
func (c *ChainClient) TokenBalance(ctx context.Context, token, owner ethcommon.Address) (*big.Int, error) {
	out, err := c.call(ctx, token, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	bal, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balance type %T", out[0])
	}
	return bal, nil
}

// call runs a read-only ERC-20 method and unpacks its outputs
func (c *ChainClient) call(ctx context.Context, token ethcommon.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := erc20.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	start := time.Now()
	raw, err := c.Client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	metrics.ObserveRequest("rpc", method, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s on %s: %w", method, token.Hex(), err)
	}

	out, err := erc20.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s from %s: %w", method, token.Hex(), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty %s result from %s", method, token.Hex())
	}
	return out, nil
}
