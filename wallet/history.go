package wallet

import (
	"context"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/AlexZinkM/evm-wallet/internal/client"
	"github.com/AlexZinkM/evm-wallet/internal/common"
	"github.com/AlexZinkM/evm-wallet/internal/model"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// View merges pending and confirmed transactions into one history, newest
// first. A confirmed row whose hash is still pending is dropped so each
// transaction shows once, as Pending, until the pool lets go of it. Equal
// timestamps keep pending-then-confirmed input order. View is pure.
func View(pending []model.PendingTransaction, confirmed []model.ConfirmedTransaction) []model.DisplayHistoryEntry {
	pendingHashes := make(map[string]struct{}, len(pending))
	entries := make([]model.DisplayHistoryEntry, 0, len(pending)+len(confirmed))

	for _, p := range pending {
		pendingHashes[strings.ToLower(p.Hash)] = struct{}{}

		status := model.TxStatusPending
		if p.FailureReason != "" {
			status = model.TxStatusFailed
		}
		entries = append(entries, model.DisplayHistoryEntry{
			Hash:          p.Hash,
			From:          p.From,
			To:            p.To,
			Asset:         p.Asset,
			Amount:        p.Amount,
			Timestamp:     p.SubmittedAt,
			Status:        status,
			Direction:     model.DirectionOut,
			FailureReason: p.FailureReason,
		})
	}

	for _, c := range confirmed {
		if _, ok := pendingHashes[strings.ToLower(c.Hash)]; ok {
			continue
		}
		entries = append(entries, model.DisplayHistoryEntry{
			Hash:      c.Hash,
			From:      c.From,
			To:        c.To,
			Asset:     c.Asset,
			Amount:    c.Amount,
			Timestamp: c.BlockTimestamp,
			Status:    model.TxStatusConfirmed,
			Direction: c.Direction,
		})
	}

	// Sort by time DESC (newest first)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries
}

// Explorer lists confirmed transfers of an address.
// *client.ExplorerClient implements it.
type Explorer interface {
	NativeTransfers(ctx context.Context, address string, limit int) ([]client.ExplorerTx, error)
	TokenTransfers(ctx context.Context, address string, limit int) ([]client.ExplorerTx, error)
}

// HistoryFetcher reads confirmed history from the block explorer
type HistoryFetcher struct {
	explorer Explorer
	assets   *Assets
	limit    int
}

// NewHistoryFetcher creates a fetcher keeping the latest limit rows
func NewHistoryFetcher(explorer Explorer, assets *Assets, limit int) *HistoryFetcher {
	return &HistoryFetcher{explorer: explorer, assets: assets, limit: limit}
}

// Fetch gets native and token transfers of address concurrently and returns
// the latest ones, newest first
func (h *HistoryFetcher) Fetch(ctx context.Context, address string) ([]model.ConfirmedTransaction, error) {
	if !ethcommon.IsHexAddress(address) {
		return nil, model.NewValidationError("invalid address")
	}

	var native, tokens []client.ExplorerTx
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		native, err = h.explorer.NativeTransfers(gctx, address, h.limit)
		return err
	})
	g.Go(func() error {
		var err error
		tokens, err = h.explorer.TokenTransfers(gctx, address, h.limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	txs := make([]model.ConfirmedTransaction, 0, len(native)+len(tokens))
	for _, row := range native {
		// Contract calls with no value (token transfers, approvals) show up
		// again in tokentx or are noise
		if row.Value == "0" || row.Value == "" {
			continue
		}
		// Reverted transfers moved nothing
		if row.IsError == "1" {
			continue
		}
		txs = append(txs, h.toConfirmed(row, h.assets.Native(), common.NativeDecimals, address))
	}
	for _, row := range tokens {
		symbol, ok := h.assets.SymbolOf(row.ContractAddress)
		if !ok {
			symbol = row.TokenSymbol
		}
		decimals, err := strconv.ParseUint(row.TokenDecimal, 10, 8)
		if err != nil {
			log.Debugf("Skipping token row %s with bad decimals %q", row.Hash, row.TokenDecimal)
			continue
		}
		txs = append(txs, h.toConfirmed(row, symbol, uint8(decimals), address))
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].BlockTimestamp.After(txs[j].BlockTimestamp)
	})
	if h.limit > 0 && len(txs) > h.limit {
		txs = txs[:h.limit]
	}
	return txs, nil
}

// toConfirmed converts an explorer row, deciding direction by sender
func (h *HistoryFetcher) toConfirmed(row client.ExplorerTx, asset string, decimals uint8, owner string) model.ConfirmedTransaction {
	value, ok := new(big.Int).SetString(row.Value, 10)
	if !ok {
		value = new(big.Int)
	}

	direction := model.DirectionIn
	if strings.EqualFold(row.From, owner) {
		direction = model.DirectionOut
	}

	return model.ConfirmedTransaction{
		Hash:           row.Hash,
		From:           checksum(row.From),
		To:             checksum(row.To),
		Asset:          asset,
		Amount:         common.FormatUnits(value, decimals),
		BlockTimestamp: row.Time(),
		BlockNumber:    row.Block(),
		Direction:      direction,
	}
}

// checksum returns the checksummed form of a hex address, or s unchanged
func checksum(s string) string {
	if !ethcommon.IsHexAddress(s) {
		return s
	}
	return ethcommon.HexToAddress(s).Hex()
}
