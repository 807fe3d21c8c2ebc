package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/client"
	"github.com/AlexZinkM/evm-wallet/internal/common"
	"github.com/AlexZinkM/evm-wallet/internal/crypto"
	"github.com/AlexZinkM/evm-wallet/internal/metrics"
	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/AlexZinkM/evm-wallet/internal/session"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lightningnetwork/lnd/clock"
)

const (
	// transferGas is the gas of a plain value transfer
	transferGas = 21000

	// logTimeout bounds the fire-and-forget audit log call
	logTimeout = 15 * time.Second
)

// KeySource gives access to the unlocked session.
// *session.Machine implements it.
type KeySource interface {
	Unlocked() (session.UnlockedSession, error)
}

// TxLogger records broadcast hashes for durable history.
// *client.AccountClient implements it.
type TxLogger interface {
	LogTransaction(ctx context.Context, hash string) error
}

// SettleFunc is called once a watched transaction reaches a final state
type SettleFunc func(tx model.PendingTransaction, confirmed bool)

// SubmitterConfig holds the submitter settings
type SubmitterConfig struct {
	// ChainID is used for EIP-155 signing. Nil asks the node.
	ChainID *big.Int

	ConfirmTimeout    time.Duration
	ConfirmPoll       time.Duration
	CancelBumpPercent int64

	// Cooldown is the minimum time between two sends. Zero disables it.
	Cooldown time.Duration

	Clock     clock.Clock
	OnSettled SettleFunc
}

// Submitter signs, broadcasts and watches transactions
type Submitter struct {
	cfg    SubmitterConfig
	chain  ChainBackend
	assets *Assets
	keys   KeySource
	pool   *PendingPool
	txLog  TxLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// sendMu serializes sends so nonces and the cooldown stay consistent
	sendMu   sync.Mutex
	lastSend time.Time
	chainID  *big.Int
}

// NewSubmitter creates a new submitter
func NewSubmitter(cfg SubmitterConfig, chain ChainBackend, assets *Assets,
	keys KeySource, pool *PendingPool, txLog TxLogger) *Submitter {

	if cfg.Clock == nil {
		cfg.Clock = clock.NewDefaultClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Submitter{
		cfg:     cfg,
		chain:   chain,
		assets:  assets,
		keys:    keys,
		pool:    pool,
		txLog:   txLog,
		ctx:     ctx,
		cancel:  cancel,
		chainID: cfg.ChainID,
	}
}

// Stop stops all confirmation watchers and waits for background work
func (s *Submitter) Stop() {
	s.cancel()
	s.wg.Wait()
}

// ValidateDraft checks a draft without touching the network
func (s *Submitter) ValidateDraft(draft model.TransferDraft) error {
	if !s.assets.Known(draft.Asset) {
		return model.NewValidationError(fmt.Sprintf("Unknown asset %q.", draft.Asset))
	}
	if !ethcommon.IsHexAddress(strings.TrimSpace(draft.Recipient)) {
		return model.NewValidationError("Invalid recipient address.")
	}
	if !common.IsPositiveDecimal(strings.TrimSpace(draft.Amount)) {
		return model.NewValidationError("Amount must be a positive number.")
	}
	return nil
}

// Send signs and broadcasts draft from the unlocked account. It returns as
// soon as the transaction is accepted by the node; confirmation is watched
// in the background.
func (s *Submitter) Send(ctx context.Context, draft model.TransferDraft) (*model.TxHandle, error) {
	// Validate inputs before anything else
	if err := s.ValidateDraft(draft); err != nil {
		return nil, err
	}
	draft.Recipient = strings.TrimSpace(draft.Recipient)
	draft.Amount = strings.TrimSpace(draft.Amount)

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	// Check cooldown
	if s.cfg.Cooldown > 0 && !s.lastSend.IsZero() {
		elapsed := s.cfg.Clock.Now().Sub(s.lastSend)
		if elapsed < s.cfg.Cooldown {
			remaining := s.cfg.Cooldown - elapsed
			return nil, model.NewValidationError(fmt.Sprintf("cooldown active, please wait %v", remaining.Round(time.Second)))
		}
	}

	// Get private key from the unlocked session
	key, from, err := s.signingKey()
	if err != nil {
		return nil, err
	}

	// Convert amount to base units (string-based, no float precision loss)
	decimals, err := s.assets.Decimals(ctx, s.chain, draft.Asset)
	if err != nil {
		return nil, model.NewNetworkError("failed to get token decimals", err)
	}
	amount, err := common.ParseUnits(draft.Amount, decimals)
	if err != nil {
		return nil, model.NewValidationError(fmt.Sprintf("Invalid amount: %v", err))
	}

	to := ethcommon.HexToAddress(draft.Recipient)
	msg := ethereum.CallMsg{From: from}
	if s.assets.IsNative(draft.Asset) {
		msg.To = &to
		msg.Value = amount
	} else {
		contract, _ := s.assets.Contract(draft.Asset)
		data, err := client.PackTransfer(to, amount)
		if err != nil {
			return nil, err
		}
		msg.To = &contract
		msg.Data = data
	}

	// Resolve chain parameters
	chainID, err := s.resolveChainID(ctx)
	if err != nil {
		return nil, err
	}
	nonce, err := s.chain.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, model.NewNetworkError("failed to get nonce", err)
	}
	gasPrice, err := s.chain.SuggestGasPrice(ctx)
	if err != nil {
		return nil, model.NewNetworkError("failed to get gas price", err)
	}
	gasLimit, err := s.chain.EstimateGas(ctx, msg)
	if err != nil {
		return nil, model.NewChainError("failed to estimate gas", err)
	}

	// Check balance sufficiency
	fee := new(big.Int).Mul(new(big.Int).SetUint64(gasLimit), gasPrice)
	if err := s.checkFunds(ctx, from, draft.Asset, amount, fee); err != nil {
		return nil, err
	}

	// Sign
	tx, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       msg.To,
		Value:    msg.Value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     msg.Data,
	}), types.NewEIP155Signer(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	// Broadcast
	if err := s.chain.SendTransaction(ctx, tx); err != nil {
		return nil, model.NewChainError("failed to send transaction", err)
	}

	now := s.cfg.Clock.Now()
	s.lastSend = now

	pending := model.PendingTransaction{
		Hash:        tx.Hash().Hex(),
		From:        from.Hex(),
		To:          to.Hex(),
		Asset:       draft.Asset,
		Amount:      common.FormatUnits(amount, decimals),
		SubmittedAt: now,
		Nonce:       nonce,
		GasPrice:    gasPrice,
	}

	// Register before anything can trigger a refresh
	s.pool.Add(pending)
	metrics.TxSubmitted.WithLabelValues(draft.Asset, "send").Inc()
	log.Infof("Sent %s %s to %s: %s (nonce %d)", pending.Amount, draft.Asset, pending.To, pending.Hash, nonce)

	s.logTx(pending.Hash)
	s.watch(pending.Hash)

	return &model.TxHandle{Hash: pending.Hash, Nonce: nonce, SubmittedAt: now}, nil
}

// Cancel replaces a pending transaction with a zero-value transfer to self
// at the same nonce and a higher gas price. If the original already
// confirmed the node rejects the replacement and the pool is unchanged.
func (s *Submitter) Cancel(ctx context.Context, hash string) (*model.TxHandle, error) {
	orig, err := s.pool.Get(hash).UnwrapOrErr(
		model.NewValidationError("No pending transaction with that hash."),
	)
	if err != nil {
		return nil, err
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	key, from, err := s.signingKey()
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(from.Hex(), orig.From) {
		return nil, model.NewSessionError("transaction was sent by another account")
	}

	chainID, err := s.resolveChainID(ctx)
	if err != nil {
		return nil, err
	}
	suggested, err := s.chain.SuggestGasPrice(ctx)
	if err != nil {
		return nil, model.NewNetworkError("failed to get gas price", err)
	}
	gasPrice := s.bumpedGasPrice(orig.GasPrice, suggested)

	tx, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    orig.Nonce,
		To:       &from,
		Value:    new(big.Int),
		Gas:      transferGas,
		GasPrice: gasPrice,
	}), types.NewEIP155Signer(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign cancel transaction: %w", err)
	}

	if err := s.chain.SendTransaction(ctx, tx); err != nil {
		return nil, model.NewChainError("failed to cancel transaction", err)
	}

	now := s.cfg.Clock.Now()
	replacement := model.PendingTransaction{
		Hash:        tx.Hash().Hex(),
		From:        from.Hex(),
		To:          from.Hex(),
		Asset:       s.assets.Native(),
		Amount:      common.FormatUnits(new(big.Int), common.NativeDecimals),
		SubmittedAt: now,
		Nonce:       orig.Nonce,
		GasPrice:    gasPrice,
		Replaces:    orig.Hash,
	}
	if !s.pool.Replace(orig.Hash, replacement) {
		// The original settled while we were signing
		s.pool.Add(replacement)
	}
	metrics.TxSubmitted.WithLabelValues(s.assets.Native(), "cancel").Inc()
	log.Infof("Cancel of %s sent as %s (nonce %d, gas price %s)", orig.Hash, replacement.Hash, orig.Nonce, gasPrice)

	s.logTx(replacement.Hash)
	s.watch(replacement.Hash)

	return &model.TxHandle{Hash: replacement.Hash, Nonce: orig.Nonce, SubmittedAt: now}, nil
}

// bumpedGasPrice raises old by the configured percentage and never goes
// below the current suggestion
func (s *Submitter) bumpedGasPrice(old, suggested *big.Int) *big.Int {
	if old == nil {
		old = suggested
	}
	bumped := new(big.Int).Mul(old, big.NewInt(100+s.cfg.CancelBumpPercent))
	bumped.Div(bumped, big.NewInt(100))
	if bumped.Cmp(old) <= 0 {
		bumped.Add(old, big.NewInt(1))
	}
	if bumped.Cmp(suggested) < 0 {
		return new(big.Int).Set(suggested)
	}
	return bumped
}

// signingKey returns the unlocked private key and its address
func (s *Submitter) signingKey() (*ecdsa.PrivateKey, ethcommon.Address, error) {
	unlocked, err := s.keys.Unlocked()
	if err != nil {
		return nil, ethcommon.Address{}, err
	}
	key, err := unlocked.PrivateKey()
	if err != nil {
		return nil, ethcommon.Address{}, fmt.Errorf("failed to parse private key: %w", err)
	}

	// Verify key matches the session address
	from := ethcommon.HexToAddress(crypto.AddressOf(key))
	if !strings.EqualFold(from.Hex(), unlocked.Account().Address) {
		return nil, ethcommon.Address{}, fmt.Errorf("private key does not match address")
	}
	return key, from, nil
}

// resolveChainID returns the configured chain ID or asks the node once
func (s *Submitter) resolveChainID(ctx context.Context) (*big.Int, error) {
	if s.chainID != nil && s.chainID.Sign() > 0 {
		return s.chainID, nil
	}
	id, err := s.chain.ChainID(ctx)
	if err != nil {
		return nil, model.NewNetworkError("failed to get chain id", err)
	}
	s.chainID = id
	return id, nil
}

// checkFunds verifies the account can pay amount of asset plus the fee
func (s *Submitter) checkFunds(ctx context.Context, from ethcommon.Address, asset string, amount, fee *big.Int) error {
	native, err := s.chain.BalanceAt(ctx, from)
	if err != nil {
		return model.NewNetworkError("failed to check balance", err)
	}

	if s.assets.IsNative(asset) {
		required := new(big.Int).Add(amount, fee)
		if native.Cmp(required) < 0 {
			maxSend := new(big.Int).Sub(native, fee)
			if maxSend.Sign() < 0 {
				maxSend.SetInt64(0)
			}
			return model.NewValidationError(fmt.Sprintf(
				"insufficient %s balance. Transaction fee: %s %s. Max you can send: %s %s",
				asset, common.WeiToNative(fee), asset, common.WeiToNative(maxSend), asset))
		}
		return nil
	}

	contract, _ := s.assets.Contract(asset)
	tokenBal, err := s.chain.TokenBalance(ctx, contract, from)
	if err != nil {
		return model.NewNetworkError("failed to check balance", err)
	}
	if tokenBal.Cmp(amount) < 0 {
		return model.NewValidationError(fmt.Sprintf("insufficient %s balance", asset))
	}
	if native.Cmp(fee) < 0 {
		return model.NewValidationError(fmt.Sprintf(
			"insufficient %s for transaction fee (fee: %s %s). Have: %s %s",
			s.assets.Native(), common.WeiToNative(fee), s.assets.Native(),
			common.WeiToNative(native), s.assets.Native()))
	}
	return nil
}

// logTx records hash with the account API without blocking the caller
func (s *Submitter) logTx(hash string) {
	if s.txLog == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(s.ctx, logTimeout)
		defer cancel()

		if err := s.txLog.LogTransaction(ctx, hash); err != nil {
			log.Debugf("Failed to log transaction %s: %v", hash, err)
		}
	}()
}

// watch polls for the receipt of hash until it is mined, the timeout passes
// or nothing in the pool depends on it any more
func (s *Submitter) watch(hash string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		txHash := ethcommon.HexToHash(hash)
		deadline := s.cfg.Clock.Now().Add(s.cfg.ConfirmTimeout)

		for {
			if !s.pool.Tracks(hash) {
				log.Debugf("Stopped watching %s", hash)
				return
			}

			receipt, err := s.chain.TransactionReceipt(s.ctx, txHash)
			switch {
			case err == nil && receipt != nil:
				s.settle(hash, receipt)
				return

			case err != nil && !errors.Is(err, ethereum.NotFound):
				if s.ctx.Err() != nil {
					return
				}
				log.Warnf("Failed to get receipt of %s: %v", hash, err)
			}

			if !s.cfg.Clock.Now().Before(deadline) {
				reason := fmt.Sprintf("not confirmed within %v", s.cfg.ConfirmTimeout)
				s.fail(hash, reason, "timeout")
				return
			}

			select {
			case <-s.cfg.Clock.TickAfter(s.cfg.ConfirmPoll):
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

// settle applies a mined receipt
func (s *Submitter) settle(hash string, receipt *types.Receipt) {
	if receipt.Status != types.ReceiptStatusSuccessful {
		s.fail(hash, fmt.Sprintf("reverted in block %s", receipt.BlockNumber), "reverted")
		return
	}

	entry := s.pool.Get(hash).UnwrapOr(model.PendingTransaction{Hash: hash})

	// The nonce is used: the transaction and anything replacing it are done
	s.pool.Settle(hash)
	if entry.Replaces != "" {
		s.pool.Settle(entry.Replaces)
	}

	metrics.TxSettled.WithLabelValues("confirmed").Inc()
	log.Infof("Transaction %s confirmed in block %s", hash, receipt.BlockNumber)

	if s.cfg.OnSettled != nil {
		s.cfg.OnSettled(entry, true)
	}
}

// fail marks hash as failed, leaving it visible until dismissed
func (s *Submitter) fail(hash, reason, outcome string) {
	if !s.pool.MarkFailed(hash, reason) {
		return
	}
	metrics.TxSettled.WithLabelValues(outcome).Inc()
	log.Warnf("Transaction %s failed: %s", hash, reason)

	if s.cfg.OnSettled != nil {
		entry := s.pool.Get(hash).UnwrapOr(model.PendingTransaction{Hash: hash})
		s.cfg.OnSettled(entry, false)
	}
}
