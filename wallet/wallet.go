package wallet

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/AlexZinkM/evm-wallet/internal/session"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// refreshTimeout bounds the background refresh after a confirmation
const refreshTimeout = 30 * time.Second

// ContactBook is the remote address book.
// *client.AccountClient implements it.
type ContactBook interface {
	Contacts(ctx context.Context, address string) ([]model.Contact, error)
	AddContact(ctx context.Context, contact model.Contact) (*model.Contact, error)
	DeleteContact(ctx context.Context, id string) error
}

// PriceSource quotes the native asset in USD.
// *client.CoinGeckoClient implements it.
type PriceSource interface {
	GetNativeUSDPrice(ctx context.Context) (string, error)
}

// Config holds the wallet collaborators and settings
type Config struct {
	Session  *session.Machine
	Chain    ChainBackend
	Explorer Explorer
	Contacts ContactBook
	TxLog    TxLogger
	Prices   PriceSource // optional

	Assets       *Assets
	Clock        clock.Clock
	HistoryLimit int
	FeeDebounce  time.Duration
	Submitter    SubmitterConfig
}

// snapshot is the last refreshed confirmed history of an address
type snapshot struct {
	address   string
	confirmed fn.Option[[]model.ConfirmedTransaction]
}

// Wallet ties the session to the chain: balances, fees, sends and history
// for the loaded account
type Wallet struct {
	cfg Config

	session   *session.Machine
	balances  *BalanceAggregator
	fees      *FeeEstimator
	submitter *Submitter
	pool      *PendingPool
	history   *HistoryFetcher

	wg sync.WaitGroup

	mu    sync.Mutex
	cache snapshot
}

// New creates a wallet from cfg
func New(cfg Config) *Wallet {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewDefaultClock()
	}

	w := &Wallet{
		cfg:      cfg,
		session:  cfg.Session,
		balances: NewBalanceAggregator(cfg.Chain, cfg.Assets),
		fees:     NewFeeEstimator(cfg.Chain, cfg.Assets, cfg.Clock, cfg.FeeDebounce),
		pool:     NewPendingPool(),
		history:  NewHistoryFetcher(cfg.Explorer, cfg.Assets, cfg.HistoryLimit),
	}

	subCfg := cfg.Submitter
	subCfg.Clock = cfg.Clock
	subCfg.OnSettled = w.onSettled
	w.submitter = NewSubmitter(subCfg, cfg.Chain, cfg.Assets, cfg.Session, w.pool, cfg.TxLog)

	return w
}

// Stop stops background work
func (w *Wallet) Stop() {
	w.fees.Stop()
	w.submitter.Stop()
	w.wg.Wait()
}

// Session returns the session machine
func (w *Wallet) Session() *session.Machine {
	return w.session
}

// Pending returns the pending pool
func (w *Wallet) Pending() *PendingPool {
	return w.pool
}

// Create generates a new key and stores it with the account API
func (w *Wallet) Create(ctx context.Context, req *model.GenerateRequest) (*model.GenerateResponse, error) {
	if err := req.Validate(false); err != nil {
		return nil, err
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := w.session.CreateOrImport(ctx, req.Name, req.Password, key.Address, key.Secrets); err != nil {
		return nil, err
	}

	return &model.GenerateResponse{
		Success: true,
		Message: "Wallet created successfully. Please log in.",
		Address: key.Address,
	}, nil
}

// Import derives the key of a mnemonic and stores it with the account API
func (w *Wallet) Import(ctx context.Context, req *model.GenerateRequest) (*model.GenerateResponse, error) {
	if err := req.Validate(true); err != nil {
		return nil, err
	}

	key, err := ImportKey(req.Mnemonic)
	if err != nil {
		return nil, err
	}
	if err := w.session.CreateOrImport(ctx, req.Name, req.Password, key.Address, key.Secrets); err != nil {
		return nil, err
	}

	return &model.GenerateResponse{
		Success: true,
		Message: "Wallet imported successfully. Please log in.",
		Address: key.Address,
	}, nil
}

// Lock locks the session. Pending transactions keep being watched unless
// the user logs out.
func (w *Wallet) Lock(logout bool) error {
	if err := w.session.Lock(logout); err != nil {
		return err
	}
	w.fees.Reset()
	if logout {
		w.forget()
	}
	return nil
}

// ResetPassword rotates the remote password and forgets account-bound state
func (w *Wallet) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	msg, err := w.session.ResetPassword(ctx, req.Name, req.Mnemonic, req.NewPassword)
	if err != nil {
		return "", err
	}
	w.forget()
	return msg, nil
}

// forget drops pending transactions, fee inputs and cached reads of the
// last account
func (w *Wallet) forget() {
	w.pool.Clear()
	w.fees.Reset()

	w.mu.Lock()
	w.cache = snapshot{}
	w.mu.Unlock()
}

// Balance reads the balances of the loaded account. Balances are never
// served from a cache.
func (w *Wallet) Balance(ctx context.Context) (*model.BalanceResponse, error) {
	address, err := w.session.Address()
	if err != nil {
		return nil, err
	}

	balances, err := w.balances.FetchBalances(ctx, address)
	if err != nil {
		return nil, err
	}

	resp := &model.BalanceResponse{Balances: balances}

	// Price is best effort
	if w.cfg.Prices != nil {
		price, err := w.cfg.Prices.GetNativeUSDPrice(ctx)
		if err != nil {
			log.Debugf("Price unavailable: %v", err)
		} else {
			resp.NativeUSD = price
		}
	}

	return resp, nil
}

// Receive returns the address of the loaded account with its QR code
func (w *Wallet) Receive() (*model.ReceiveResponse, error) {
	address, err := w.session.Address()
	if err != nil {
		return nil, err
	}
	qr, err := GenerateQRCode(address)
	if err != nil {
		return nil, err
	}
	return &model.ReceiveResponse{Address: address, QR: qr}, nil
}

// EstimateFee estimates the fee of draft from the loaded account
func (w *Wallet) EstimateFee(ctx context.Context, draft model.TransferDraft) (*model.FeeResponse, error) {
	address, err := w.session.Address()
	if err != nil {
		return nil, err
	}
	est, err := w.fees.Estimate(ctx, address, draft)
	if err != nil {
		return nil, err
	}
	return feeResponse(est), nil
}

// SetDraft feeds the reactive fee estimator
func (w *Wallet) SetDraft(draft model.TransferDraft) error {
	address, err := w.session.Address()
	if err != nil {
		return err
	}
	w.fees.SetInputs(address, draft)
	return nil
}

// LatestFee returns the estimate for the current draft of the loaded
// account, if settled. Without a session nothing is available.
func (w *Wallet) LatestFee() (*model.FeeResponse, error) {
	address, err := w.session.Address()
	if err != nil {
		return feeResponse(fn.None[model.FeeEstimate]()), nil
	}
	est, err := w.fees.Latest(address)
	if err != nil {
		return nil, err
	}
	return feeResponse(est), nil
}

func feeResponse(est fn.Option[model.FeeEstimate]) *model.FeeResponse {
	resp := &model.FeeResponse{}
	est.WhenSome(func(e model.FeeEstimate) {
		resp.Available = true
		resp.Estimate = &e
	})
	return resp
}

// Send broadcasts draft from the unlocked account
func (w *Wallet) Send(ctx context.Context, draft model.TransferDraft) (*model.TxHandle, error) {
	return w.submitter.Send(ctx, draft)
}

// Cancel replaces the pending transaction hash
func (w *Wallet) Cancel(ctx context.Context, hash string) (*model.TxHandle, error) {
	return w.submitter.Cancel(ctx, hash)
}

// DismissPending removes a failed entry from the history
func (w *Wallet) DismissPending(hash string) error {
	entry, err := w.pool.Get(hash).UnwrapOrErr(
		model.NewValidationError("No pending transaction with that hash."),
	)
	if err != nil {
		return err
	}
	if entry.FailureReason == "" {
		return model.NewValidationError("Transaction is still pending, cancel it instead.")
	}
	w.pool.Remove(hash)
	return nil
}

// History returns pending and confirmed transactions of the loaded account,
// newest first. With fresh unset the last refreshed confirmed history is
// used when available.
func (w *Wallet) History(ctx context.Context, filter *model.HistoryFilter, fresh bool) (*model.HistoryResponse, error) {
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
	}

	address, err := w.session.Address()
	if err != nil {
		return nil, err
	}

	var confirmed []model.ConfirmedTransaction
	cached := w.cached(address, func(s snapshot) bool {
		return s.confirmed.IsSome()
	})
	if !fresh && cached.IsSome() {
		confirmed = cached.UnwrapOr(snapshot{}).confirmed.UnwrapOr(nil)
	} else {
		confirmed, err = w.history.Fetch(ctx, address)
		if err != nil {
			return nil, err
		}
		w.store(address, func(s *snapshot) { s.confirmed = fn.Some(confirmed) })
	}

	w.settleMined(confirmed)

	// Only this account's pending transactions belong in its history
	var pending []model.PendingTransaction
	for _, p := range w.pool.Snapshot() {
		if strings.EqualFold(p.From, address) {
			pending = append(pending, p)
		}
	}

	entries := View(pending, confirmed)
	if filter != nil {
		filtered := entries[:0]
		for _, e := range entries {
			if filter.Match(e) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	return &model.HistoryResponse{Address: address, Transactions: entries}, nil
}

// Contacts lists the address book of the loaded account
func (w *Wallet) Contacts(ctx context.Context) ([]model.Contact, error) {
	address, err := w.session.Address()
	if err != nil {
		return nil, err
	}
	return w.cfg.Contacts.Contacts(ctx, address)
}

// AddContact adds an entry to the address book of the loaded account
func (w *Wallet) AddContact(ctx context.Context, req *model.ContactRequest) (*model.Contact, error) {
	address, err := w.session.Address()
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.ContactName)
	contactAddr := strings.TrimSpace(req.ContactAddress)
	if name == "" || contactAddr == "" {
		return nil, model.NewValidationError("Please fill all fields.")
	}
	if !ethcommon.IsHexAddress(contactAddr) {
		return nil, model.NewValidationError("Invalid contact address.")
	}

	return w.cfg.Contacts.AddContact(ctx, model.Contact{
		WalletAddress:  address,
		ContactName:    name,
		ContactAddress: ethcommon.HexToAddress(contactAddr).Hex(),
	})
}

// DeleteContact removes an address book entry
func (w *Wallet) DeleteContact(ctx context.Context, id string) error {
	if _, err := w.session.Address(); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return model.NewValidationError("contact id is required")
	}
	return w.cfg.Contacts.DeleteContact(ctx, id)
}

// onSettled refreshes balances and history once a transaction confirmed
func (w *Wallet) onSettled(tx model.PendingTransaction, confirmed bool) {
	if !confirmed {
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		w.Refresh(ctx, tx.From)
	}()
}

// Refresh re-reads balances and history of address. The history goes to
// the cache; balances are only logged since reads always refetch them.
// Failures keep the previous values.
func (w *Wallet) Refresh(ctx context.Context, address string) {
	balances, err := w.balances.FetchBalances(ctx, address)
	if err != nil {
		log.Warnf("Balance refresh for %s failed: %v", address, err)
	} else {
		log.Debugf("Balance of %s after confirmation: %s %s",
			address, balances.Native.Formatted, balances.Native.Asset)
	}

	confirmed, err := w.history.Fetch(ctx, address)
	if err != nil {
		log.Warnf("History refresh for %s failed: %v", address, err)
	} else {
		w.store(address, func(s *snapshot) { s.confirmed = fn.Some(confirmed) })
		w.settleMined(confirmed)
	}
}

// settleMined drops pending entries that confirmed history shows as mined.
// This also covers entries whose watcher gave up before the receipt.
func (w *Wallet) settleMined(confirmed []model.ConfirmedTransaction) {
	for _, tx := range w.pool.SettleConfirmed(confirmed) {
		log.Infof("Transaction %s found in confirmed history", tx.Hash)
	}
}

// cached returns the snapshot of address if ok accepts it
func (w *Wallet) cached(address string, ok func(snapshot) bool) fn.Option[snapshot] {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !strings.EqualFold(w.cache.address, address) || !ok(w.cache) {
		return fn.None[snapshot]()
	}
	return fn.Some(w.cache)
}

// store updates the snapshot of address, replacing one of another address
func (w *Wallet) store(address string, update func(*snapshot)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !strings.EqualFold(w.cache.address, address) {
		w.cache = snapshot{address: address}
	}
	update(&w.cache)
}
