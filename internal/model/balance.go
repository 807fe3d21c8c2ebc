package model

import "math/big"

// AssetBalance is the balance of one asset for an address
type AssetBalance struct {
	Asset     string   `json:"asset"`
	Raw       *big.Int `json:"raw,omitempty"` // smallest unit
	Decimals  uint8    `json:"decimals"`
	Formatted string   `json:"formatted"` // "unknown" when the query failed
	Known     bool     `json:"known"`
	Error     string   `json:"error,omitempty"`
}

// UnknownBalance is the formatted value of a balance that could not be fetched
const UnknownBalance = "unknown"

// Balances is the aggregated view of all tracked assets
type Balances struct {
	Address string                  `json:"address"`
	Native  AssetBalance            `json:"native"`
	Tokens  map[string]AssetBalance `json:"tokens"`
}

// BalanceResponse represents response for GET /wallet/balance
type BalanceResponse struct {
	Balances
	NativeUSD string `json:"nativeUsd,omitempty"` // best effort price quote
}
