package wallet

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/client"
	"github.com/AlexZinkM/evm-wallet/internal/common"
	"github.com/AlexZinkM/evm-wallet/internal/model"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// feeInputs is the snapshot an estimate was computed for
type feeInputs struct {
	from  string
	draft model.TransferDraft
}

// FeeEstimator estimates the network fee of a transfer draft.
//
// Estimate is a one-shot query. SetInputs and Latest form the reactive
// variant: every input change restarts a debounce timer, and a result is
// applied only if the inputs it was computed for are still current, so a
// slow old answer can never overwrite a newer one.
type FeeEstimator struct {
	chain    ChainBackend
	assets   *Assets
	clock    clock.Clock
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	inputs  feeInputs
	seq     uint64
	applied fn.Option[feeInputs]
	result  fn.Option[model.FeeEstimate]
	err     error
}

// NewFeeEstimator creates a new estimator
func NewFeeEstimator(chain ChainBackend, assets *Assets, clk clock.Clock, debounce time.Duration) *FeeEstimator {
	ctx, cancel := context.WithCancel(context.Background())
	return &FeeEstimator{
		chain:    chain,
		assets:   assets,
		clock:    clk,
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Stop abandons pending estimates and waits for them to exit
func (e *FeeEstimator) Stop() {
	e.cancel()
	e.wg.Wait()
}

// Estimate returns the fee of sending draft from address.
// Incomplete or invalid drafts give None and no error.
func (e *FeeEstimator) Estimate(ctx context.Context, from string, draft model.TransferDraft) (fn.Option[model.FeeEstimate], error) {
	none := fn.None[model.FeeEstimate]()

	msg, ok, err := e.callMsg(ctx, from, draft)
	if err != nil || !ok {
		return none, err
	}

	gasLimit, err := e.chain.EstimateGas(ctx, msg)
	if err != nil {
		return none, model.NewChainError("failed to estimate gas", err)
	}
	gasPrice, err := e.chain.SuggestGasPrice(ctx)
	if err != nil {
		return none, model.NewNetworkError("failed to get gas price", err)
	}

	fee := new(big.Int).Mul(new(big.Int).SetUint64(gasLimit), gasPrice)
	return fn.Some(model.FeeEstimate{
		Asset:     e.assets.Native(),
		GasLimit:  gasLimit,
		GasPrice:  gasPrice,
		Fee:       fee,
		Formatted: common.WeiToNative(fee),
	}), nil
}

// callMsg builds the call to estimate. ok is false for incomplete drafts.
func (e *FeeEstimator) callMsg(ctx context.Context, from string, draft model.TransferDraft) (ethereum.CallMsg, bool, error) {
	draft.Recipient = strings.TrimSpace(draft.Recipient)
	draft.Amount = strings.TrimSpace(draft.Amount)

	if draft.Recipient == "" || !ethcommon.IsHexAddress(draft.Recipient) {
		return ethereum.CallMsg{}, false, nil
	}
	if !common.IsPositiveDecimal(draft.Amount) || !e.assets.Known(draft.Asset) {
		return ethereum.CallMsg{}, false, nil
	}
	if !ethcommon.IsHexAddress(from) {
		return ethereum.CallMsg{}, false, nil
	}

	sender := ethcommon.HexToAddress(from)
	to := ethcommon.HexToAddress(draft.Recipient)

	decimals, err := e.assets.Decimals(ctx, e.chain, draft.Asset)
	if err != nil {
		return ethereum.CallMsg{}, false, model.NewNetworkError("failed to get token decimals", err)
	}
	amount, err := common.ParseUnits(draft.Amount, decimals)
	if err != nil {
		return ethereum.CallMsg{}, false, nil
	}

	if e.assets.IsNative(draft.Asset) {
		return ethereum.CallMsg{From: sender, To: &to, Value: amount}, true, nil
	}

	contract, _ := e.assets.Contract(draft.Asset)
	data, err := client.PackTransfer(to, amount)
	if err != nil {
		return ethereum.CallMsg{}, false, err
	}
	return ethereum.CallMsg{From: sender, To: &contract, Data: data}, true, nil
}

// SetInputs records new draft inputs and schedules a debounced estimate
func (e *FeeEstimator) SetInputs(from string, draft model.TransferDraft) {
	snapshot := feeInputs{from: from, draft: draft}

	e.mu.Lock()
	e.inputs = snapshot
	e.seq++
	seq := e.seq
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		select {
		case <-e.clock.TickAfter(e.debounce):
		case <-e.ctx.Done():
			return
		}

		// A newer input arrived during the debounce window
		e.mu.Lock()
		superseded := e.seq != seq
		e.mu.Unlock()
		if superseded {
			return
		}

		result, err := e.Estimate(e.ctx, snapshot.from, snapshot.draft)

		e.mu.Lock()
		defer e.mu.Unlock()

		// Latest request wins: drop results for inputs that are gone
		if e.inputs != snapshot {
			log.Debugf("Dropping stale fee estimate for %s", snapshot.draft.Recipient)
			return
		}
		e.applied = fn.Some(snapshot)
		e.result = result
		e.err = err
	}()
}

// Latest returns the estimate applied for the current inputs of from. It
// is None while an estimate is outstanding, when the inputs are incomplete
// or when they were set for another sender.
func (e *FeeEstimator) Latest(from string) (fn.Option[model.FeeEstimate], error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !strings.EqualFold(e.inputs.from, from) {
		return fn.None[model.FeeEstimate](), nil
	}

	current := fn.MapOptionZ(e.applied, func(in feeInputs) bool {
		return in == e.inputs
	})
	if !current {
		return fn.None[model.FeeEstimate](), nil
	}
	return e.result, e.err
}

// Reset forgets the current inputs and any applied estimate. Outstanding
// estimates are dropped when they complete.
func (e *FeeEstimator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.inputs = feeInputs{}
	e.seq++
	e.applied = fn.None[feeInputs]()
	e.result = fn.None[model.FeeEstimate]()
	e.err = nil
}
