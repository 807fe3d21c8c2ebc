package model

import (
	"math/big"
	"time"
)

// TransferDraft is a transfer as entered by the user, before validation
type TransferDraft struct {
	Asset     string `json:"asset"` // native symbol or token symbol
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"` // decimal in the asset's unit
}

// TxHandle identifies a broadcast transaction
type TxHandle struct {
	Hash        string    `json:"hash"`
	Nonce       uint64    `json:"nonce"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// FeeEstimate is the expected network fee of a draft, paid in the native asset
type FeeEstimate struct {
	Asset     string   `json:"asset"`
	GasLimit  uint64   `json:"gasLimit"`
	GasPrice  *big.Int `json:"gasPrice"`
	Fee       *big.Int `json:"fee"`
	Formatted string   `json:"formatted"`
}

// FeeResponse represents response for POST /wallet/fee and GET /wallet/fee
type FeeResponse struct {
	Available bool         `json:"available"` // false when inputs are incomplete
	Estimate  *FeeEstimate `json:"estimate,omitempty"`
}

// CancelRequest represents request for POST /wallet/cancel
type CancelRequest struct {
	Hash string `json:"hash"`
}
