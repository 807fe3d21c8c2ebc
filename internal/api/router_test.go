package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/client"
	"github.com/AlexZinkM/evm-wallet/internal/crypto"
	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/AlexZinkM/evm-wallet/internal/session"
	"github.com/AlexZinkM/evm-wallet/wallet"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

const (
	testKey      = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testMnemonic = "test test test test test test test test test test test junk"
	otherAddress = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	usdtAddress  = "0x787A697324dbA4AB965C58CD33c13ff5eeA6295F"
)

// stubChain holds 2 BNB and no tokens and never mines anything
type stubChain struct {
	mu    sync.Mutex
	nonce uint64
}

func (c *stubChain) BalanceAt(context.Context, ethcommon.Address) (*big.Int, error) {
	return big.NewInt(2e18), nil
}

func (c *stubChain) TokenBalance(context.Context, ethcommon.Address, ethcommon.Address) (*big.Int, error) {
	return new(big.Int), nil
}

func (c *stubChain) TokenDecimals(context.Context, ethcommon.Address) (uint8, error) {
	return 18, nil
}

func (c *stubChain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 21000, nil
}

func (c *stubChain) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1e9), nil
}

func (c *stubChain) PendingNonceAt(context.Context, ethcommon.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonce, nil
}

func (c *stubChain) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(97), nil
}

func (c *stubChain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nonce = tx.Nonce() + 1
	return nil
}

func (c *stubChain) TransactionReceipt(context.Context, ethcommon.Hash) (*types.Receipt, error) {
	return nil, ethereum.NotFound
}

type stubExplorer struct{}

func (stubExplorer) NativeTransfers(context.Context, string, int) ([]client.ExplorerTx, error) {
	return nil, nil
}

func (stubExplorer) TokenTransfers(context.Context, string, int) ([]client.ExplorerTx, error) {
	return nil, nil
}

// accountAPI fakes the remote account storage for alice/pw123456
func accountAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/wallet/{name}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if r.PathValue("name") != "alice" || body.Password != "pw123456" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid name or password"})
			return
		}
		json.NewEncoder(w).Encode(model.RemoteWallet{
			Name: "alice", Address: testAddress, PrivateKey: testKey, Mnemonic: testMnemonic,
		})
	})
	mux.HandleFunc("POST /api/tx/{hash}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /api/contacts/{address}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.Contact{{
			ID: "c1", WalletAddress: r.PathValue("address"), ContactName: "bob", ContactAddress: otherAddress,
		}})
	})
	mux.HandleFunc("POST /api/contacts", func(w http.ResponseWriter, r *http.Request) {
		var c model.Contact
		json.NewDecoder(r.Body).Decode(&c)
		c.ID = "c2"
		json.NewEncoder(w).Encode(c)
	})
	mux.HandleFunc("DELETE /api/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	wallet  *wallet.Wallet
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	accounts := client.NewAccountClient(accountAPI(t).URL)
	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	cipher := crypto.NewCipher(crypto.ScryptParams{N: 1 << 4, R: 8, P: 1})

	w := wallet.New(wallet.Config{
		Session:      session.NewMachine(store, cipher, accounts),
		Chain:        &stubChain{},
		Explorer:     stubExplorer{},
		Contacts:     accounts,
		TxLog:        accounts,
		Assets:       wallet.NewAssets("BNB", map[string]string{"USDT": usdtAddress}),
		HistoryLimit: 20,
		FeeDebounce:  time.Millisecond,
		Submitter: wallet.SubmitterConfig{
			ConfirmTimeout:    time.Minute,
			ConfirmPoll:       time.Minute,
			CancelBumpPercent: 10,
		},
	})
	t.Cleanup(w.Stop)

	return &testServer{t: t, handler: SetupRouter(w), wallet: w}
}

// call sends a request and decodes the JSON answer into out when set
func (s *testServer) call(method, path string, body any, out any) int {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if out != nil {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func (s *testServer) fetch() {
	s.t.Helper()

	var status model.StatusResponse
	code := s.call(http.MethodPost, "/wallet/fetch",
		model.FetchRequest{Name: "Alice", Password: "pw123456"}, &status)
	require.Equal(s.t, http.StatusOK, code)
	require.Equal(s.t, model.SessionUnlocked, status.Status)
	require.Equal(s.t, testAddress, status.Address)
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	var status model.StatusResponse
	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/wallet/status", nil, &status))
	require.Equal(t, model.SessionNone, status.Status)

	var errResp model.ErrorResponse
	code := s.call(http.MethodPost, "/wallet/unlock", model.UnlockRequest{Password: "pw123456"}, &errResp)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, string(model.KindSession), errResp.Code)

	code = s.call(http.MethodPost, "/wallet/fetch",
		model.FetchRequest{Name: "alice", Password: "nope"}, &errResp)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Invalid name or password", errResp.Error)

	s.fetch()

	var secrets model.RevealResponse
	code = s.call(http.MethodPost, "/wallet/reveal", model.UnlockRequest{Password: "wrong"}, &errResp)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Incorrect password!", errResp.Error)

	code = s.call(http.MethodPost, "/wallet/reveal", model.UnlockRequest{Password: "pw123456"}, &secrets)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, testMnemonic, secrets.Mnemonic)

	// Lock, then restart with the stored envelope
	require.Equal(t, http.StatusOK, s.call(http.MethodPost, "/wallet/lock", nil, &status))
	require.Equal(t, model.SessionNone, status.Status)
	require.Equal(t, model.SessionLocked, s.wallet.Session().Restore())

	code = s.call(http.MethodPost, "/wallet/unlock", model.UnlockRequest{Password: "pw000000"}, &errResp)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Incorrect password.", errResp.Error)

	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/wallet/status", nil, &status))
	require.Equal(t, model.SessionLocked, status.Status)
	require.Equal(t, "alice", status.Name)

	code = s.call(http.MethodPost, "/wallet/unlock", model.UnlockRequest{Password: "pw123456"}, &status)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, model.SessionUnlocked, status.Status)

	// Logout forgets the envelope
	require.Equal(t, http.StatusOK, s.call(http.MethodPost, "/wallet/lock", model.LockRequest{Logout: true}, &status))
	require.Equal(t, model.SessionNone, s.wallet.Session().Restore())
}

func TestSendAndHistory(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.fetch()

	var balance model.BalanceResponse
	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/wallet/balance", nil, &balance))
	require.Equal(t, "2.0", balance.Native.Formatted)
	require.Equal(t, "0.0", balance.Tokens["USDT"].Formatted)

	var errResp model.ErrorResponse
	code := s.call(http.MethodPost, "/wallet/send",
		model.TransferDraft{Asset: "USDT", Recipient: "0x123", Amount: "1.5"}, &errResp)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Invalid recipient address.", errResp.Error)

	var fee model.FeeResponse
	code = s.call(http.MethodPost, "/wallet/fee",
		model.TransferDraft{Asset: "BNB", Recipient: otherAddress, Amount: "0.5"}, &fee)
	require.Equal(t, http.StatusOK, code)
	require.True(t, fee.Available)
	require.Equal(t, "0.000021", fee.Estimate.Formatted)

	var handle model.TxHandle
	code = s.call(http.MethodPost, "/wallet/send",
		model.TransferDraft{Asset: "BNB", Recipient: otherAddress, Amount: "0.5"}, &handle)
	require.Equal(t, http.StatusOK, code)
	require.True(t, strings.HasPrefix(handle.Hash, "0x"))

	var history model.HistoryResponse
	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/wallet/history?fresh=true", nil, &history))
	require.Len(t, history.Transactions, 1)
	require.Equal(t, handle.Hash, history.Transactions[0].Hash)
	require.Equal(t, model.TxStatusPending, history.Transactions[0].Status)

	code = s.call(http.MethodGet, "/wallet/history?from=yesterday", nil, &errResp)
	require.Equal(t, http.StatusBadRequest, code)

	// Still pending, so it cannot be dismissed
	code = s.call(http.MethodDelete, "/wallet/pending/"+handle.Hash, nil, &errResp)
	require.Equal(t, http.StatusBadRequest, code)

	var cancel model.TxHandle
	code = s.call(http.MethodPost, "/wallet/cancel", model.CancelRequest{Hash: handle.Hash}, &cancel)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, handle.Nonce, cancel.Nonce)
	require.NotEqual(t, handle.Hash, cancel.Hash)
}

func TestReactiveFee(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.fetch()

	var fee model.FeeResponse
	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/wallet/fee", nil, &fee))
	require.False(t, fee.Available)

	draft := model.TransferDraft{Asset: "BNB", Recipient: otherAddress, Amount: "1"}
	require.Equal(t, http.StatusNoContent, s.call(http.MethodPut, "/wallet/draft", draft, nil))

	require.Eventually(t, func() bool {
		var fee model.FeeResponse
		s.call(http.MethodGet, "/wallet/fee", nil, &fee)
		return fee.Available
	}, 5*time.Second, 10*time.Millisecond)
}

func TestContactsRoutes(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	// No wallet loaded
	var errResp model.ErrorResponse
	require.Equal(t, http.StatusConflict, s.call(http.MethodGet, "/contacts", nil, &errResp))

	s.fetch()

	var contacts []model.Contact
	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/contacts", nil, &contacts))
	require.Len(t, contacts, 1)
	require.Equal(t, testAddress, contacts[0].WalletAddress)

	var created model.Contact
	code := s.call(http.MethodPost, "/contacts",
		model.ContactRequest{ContactName: "carol", ContactAddress: strings.ToLower(otherAddress)}, &created)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "c2", created.ID)
	require.Equal(t, otherAddress, created.ContactAddress)

	require.Equal(t, http.StatusNoContent, s.call(http.MethodDelete, "/contacts/c2", nil, nil))
}

func TestMethodsAndExtras(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	require.Equal(t, http.StatusMethodNotAllowed, s.call(http.MethodGet, "/wallet/send", nil, nil))
	require.Equal(t, http.StatusMethodNotAllowed, s.call(http.MethodPost, "/wallet/status", nil, nil))
	require.Equal(t, http.StatusMethodNotAllowed, s.call(http.MethodPatch, "/contacts", nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/wallet/create", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp model.ErrorResponse
	code := s.call(http.MethodPost, "/wallet/create",
		model.GenerateRequest{Name: "dave", Password: "a", ConfirmPassword: "b"}, &errResp)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Passwords do not match.", errResp.Error)

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "wallet_pending_txs")
}
