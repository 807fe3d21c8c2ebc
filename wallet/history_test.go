package wallet

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/client"
	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func pendingAt(hash string, at time.Time) model.PendingTransaction {
	return model.PendingTransaction{
		Hash: hash, From: testAddress, To: otherAddress,
		Asset: "BNB", Amount: "1.0", SubmittedAt: at,
	}
}

func confirmedAt(hash string, at time.Time) model.ConfirmedTransaction {
	return model.ConfirmedTransaction{
		Hash: hash, From: otherAddress, To: testAddress,
		Asset: "USDT", Amount: "2.0", BlockTimestamp: at, Direction: model.DirectionIn,
	}
}

func hashes(entries []model.DisplayHistoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Hash
	}
	return out
}

func TestViewOrdering(t *testing.T) {
	t.Parallel()

	t3 := testStart
	t1 := t3.Add(time.Minute)
	t2 := t1.Add(time.Minute)

	got := View(
		[]model.PendingTransaction{pendingAt("0x01", t1), pendingAt("0x02", t2)},
		[]model.ConfirmedTransaction{confirmedAt("0x03", t3)},
	)

	require.Equal(t, []string{"0x02", "0x01", "0x03"}, hashes(got))
	require.Equal(t, model.TxStatusPending, got[0].Status)
	require.Equal(t, model.TxStatusConfirmed, got[2].Status)
	require.Equal(t, t3, got[2].Timestamp)
}

func TestViewPendingWinsOverlap(t *testing.T) {
	t.Parallel()

	pending := []model.PendingTransaction{pendingAt("0xDEAD", testStart)}
	confirmed := []model.ConfirmedTransaction{
		confirmedAt("0xdead", testStart.Add(time.Second)),
		confirmedAt("0xbeef", testStart.Add(-time.Hour)),
	}

	got := View(pending, confirmed)
	require.Equal(t, []string{"0xDEAD", "0xbeef"}, hashes(got))
	require.Equal(t, model.TxStatusPending, got[0].Status)
}

func TestViewFailedAndTies(t *testing.T) {
	t.Parallel()

	failed := pendingAt("0x01", testStart)
	failed.FailureReason = "reverted in block 7"

	got := View(
		[]model.PendingTransaction{failed, pendingAt("0x02", testStart)},
		[]model.ConfirmedTransaction{confirmedAt("0x03", testStart)},
	)

	// Equal timestamps keep input order
	require.Equal(t, []string{"0x01", "0x02", "0x03"}, hashes(got))
	require.Equal(t, model.TxStatusFailed, got[0].Status)
	require.Equal(t, "reverted in block 7", got[0].FailureReason)
}

func TestViewEmpty(t *testing.T) {
	t.Parallel()

	require.Empty(t, View(nil, nil))
}

// TestViewProperties checks idempotence, dedupe and ordering on random input.
func TestViewProperties(t *testing.T) {
	t.Parallel()

	hashGen := rapid.SampledFrom([]string{"0xa", "0xb", "0xc", "0xd", "0xe", "0xf"})
	offsetGen := rapid.IntRange(0, 100)

	rapid.Check(t, func(t *rapid.T) {
		var pending []model.PendingTransaction
		seen := make(map[string]bool)
		for _, h := range rapid.SliceOfN(hashGen, 0, 4).Draw(t, "pending") {
			if seen[h] {
				continue
			}
			seen[h] = true
			at := testStart.Add(time.Duration(offsetGen.Draw(t, "p_at")) * time.Second)
			pending = append(pending, pendingAt(h, at))
		}

		var confirmed []model.ConfirmedTransaction
		for _, h := range rapid.SliceOfN(hashGen, 0, 6).Draw(t, "confirmed") {
			// Explorers may report mixed case
			if rapid.Bool().Draw(t, "upper") {
				h = strings.ToUpper(h)
			}
			at := testStart.Add(time.Duration(offsetGen.Draw(t, "c_at")) * time.Second)
			confirmed = append(confirmed, confirmedAt(h, at))
		}

		first := View(pending, confirmed)
		require.Equal(t, first, View(pending, confirmed))

		// Every pending hash shows exactly once, as pending
		for _, p := range pending {
			n := 0
			for _, e := range first {
				if strings.EqualFold(e.Hash, p.Hash) {
					n++
					require.Equal(t, model.TxStatusPending, e.Status)
				}
			}
			require.Equal(t, 1, n)
		}

		require.True(t, sort.SliceIsSorted(first, func(i, j int) bool {
			return first[i].Timestamp.After(first[j].Timestamp)
		}))
	})
}

func TestHistoryFetcher(t *testing.T) {
	t.Parallel()

	explorer := &fakeExplorer{
		native: []client.ExplorerTx{
			{Hash: "0x01", From: strings.ToLower(testAddress), To: otherAddress, Value: "1500000000000000000", TimeStamp: "1700000300", BlockNumber: "3"},
			{Hash: "0x02", From: testAddress, To: usdtAddress, Value: "0", TimeStamp: "1700000200", BlockNumber: "2"},
			{Hash: "0x05", From: testAddress, To: otherAddress, Value: "700000000000000000", TimeStamp: "1700000400", BlockNumber: "4", IsError: "1"},
		},
		tokens: []client.ExplorerTx{
			{Hash: "0x03", From: otherAddress, To: testAddress, Value: "2500000", TimeStamp: "1700000250", BlockNumber: "2",
				ContractAddress: strings.ToLower(usdcAddress), TokenSymbol: "USDC", TokenDecimal: "6"},
			{Hash: "0x04", From: otherAddress, To: testAddress, Value: "1", TimeStamp: "1700000100", BlockNumber: "1",
				ContractAddress: otherAddress, TokenSymbol: "FOO", TokenDecimal: "0"},
		},
	}

	txs, err := NewHistoryFetcher(explorer, testAssets(), 20).Fetch(context.Background(), testAddress)
	require.NoError(t, err)

	// The zero-value contract call and the reverted transfer are dropped,
	// the rest sorted newest first
	require.Len(t, txs, 3)
	require.Equal(t, "0x01", txs[0].Hash)
	require.Equal(t, model.DirectionOut, txs[0].Direction)
	require.Equal(t, "1.5", txs[0].Amount)
	require.Equal(t, "BNB", txs[0].Asset)
	require.Equal(t, testAddress, txs[0].From)

	require.Equal(t, "0x03", txs[1].Hash)
	require.Equal(t, model.DirectionIn, txs[1].Direction)
	require.Equal(t, "USDC", txs[1].Asset)
	require.Equal(t, "2.5", txs[1].Amount)

	require.Equal(t, "FOO", txs[2].Asset)
	require.Equal(t, time.Unix(1700000100, 0).UTC(), txs[2].BlockTimestamp)
}

func TestHistoryFetcherLimitAndErrors(t *testing.T) {
	t.Parallel()

	explorer := &fakeExplorer{}
	for i := 0; i < 5; i++ {
		explorer.native = append(explorer.native, client.ExplorerTx{
			Hash: "0x0" + string(rune('a'+i)), From: otherAddress, To: testAddress,
			Value: "1", TimeStamp: "17000000" + string(rune('0'+i)) + "0",
		})
	}

	txs, err := NewHistoryFetcher(explorer, testAssets(), 3).Fetch(context.Background(), testAddress)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	require.Equal(t, "0x0e", txs[0].Hash)

	_, err = NewHistoryFetcher(explorer, testAssets(), 3).Fetch(context.Background(), "0x123")
	require.True(t, model.IsKind(err, model.KindValidation))

	explorer.err = model.NewNetworkError("explorer unreachable", nil)
	_, err = NewHistoryFetcher(explorer, testAssets(), 3).Fetch(context.Background(), testAddress)
	require.True(t, model.IsKind(err, model.KindNetwork))
}
