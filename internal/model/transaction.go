package model

import (
	"fmt"
	"math/big"
	"time"
)

// Direction is the direction of a confirmed transaction relative to the wallet
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// TxStatus is the display status of a history entry
type TxStatus string

const (
	TxStatusPending   TxStatus = "Pending"
	TxStatusConfirmed TxStatus = "Confirmed"
	TxStatusFailed    TxStatus = "Failed"
)

// PendingTransaction is a broadcast transaction not yet seen in confirmed history
type PendingTransaction struct {
	Hash          string    `json:"hash"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Asset         string    `json:"asset"`
	Amount        string    `json:"amount"`
	SubmittedAt   time.Time `json:"submittedAt"`
	Nonce         uint64    `json:"nonce"`
	GasPrice      *big.Int  `json:"gasPrice,omitempty"`
	Replaces      string    `json:"replaces,omitempty"` // hash superseded by this cancel
	FailureReason string    `json:"failureReason,omitempty"`
}

// ConfirmedTransaction is a transaction from chain history. Read-only.
type ConfirmedTransaction struct {
	Hash           string    `json:"hash"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	Asset          string    `json:"asset"`
	Amount         string    `json:"amount"`
	BlockTimestamp time.Time `json:"blockTimestamp"`
	BlockNumber    uint64    `json:"blockNumber"`
	Direction      Direction `json:"direction"`
}

// DisplayHistoryEntry is one row of the reconciled history view
type DisplayHistoryEntry struct {
	Hash          string    `json:"hash"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Asset         string    `json:"asset"`
	Amount        string    `json:"amount"`
	Timestamp     time.Time `json:"timestamp"` // submission time or block time
	Status        TxStatus  `json:"status"`
	Direction     Direction `json:"direction,omitempty"`
	FailureReason string    `json:"failureReason,omitempty"`
}

// HistoryResponse represents response for GET /wallet/history
type HistoryResponse struct {
	Address      string                `json:"address"`
	Transactions []DisplayHistoryEntry `json:"transactions"`
}

// HistoryFilter represents query parameters for GET /wallet/history
type HistoryFilter struct {
	Direction *Direction `form:"direction"`
	Asset     *string    `form:"asset"`
	Status    *TxStatus  `form:"status"`
	From      *time.Time `form:"from"`
	To        *time.Time `form:"to"`
}

// Validate validates HistoryFilter parameters.
func (f *HistoryFilter) Validate() error {
	if f.Direction != nil && *f.Direction != DirectionIn && *f.Direction != DirectionOut {
		return NewValidationError("direction must be IN or OUT")
	}
	if f.Status != nil {
		switch *f.Status {
		case TxStatusPending, TxStatusConfirmed, TxStatusFailed:
		default:
			return NewValidationError(fmt.Sprintf("unknown status %q", *f.Status))
		}
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return NewValidationError("to date must be after or equal to from date")
	}
	return nil
}

// Match reports whether the entry passes the filter
func (f *HistoryFilter) Match(e DisplayHistoryEntry) bool {
	if f.Direction != nil && e.Direction != *f.Direction {
		return false
	}
	if f.Asset != nil && *f.Asset != e.Asset {
		return false
	}
	if f.Status != nil && *f.Status != e.Status {
		return false
	}
	if f.From != nil && e.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Timestamp.After(*f.To) {
		return false
	}
	return true
}
