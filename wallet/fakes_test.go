package wallet

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/client"
	"github.com/AlexZinkM/evm-wallet/internal/crypto"
	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/AlexZinkM/evm-wallet/internal/session"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

const (
	testKey      = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testMnemonic = "test test test test test test test test test test test junk"
	testPassword = "pw123456"

	otherAddress = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	usdtAddress  = "0x787A697324dbA4AB965C58CD33c13ff5eeA6295F"
	usdcAddress  = "0x342e3aA1248AB77E319e3331C6fD3f1F2d4B36B1"
)

var (
	testStart   = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	testChainID = big.NewInt(97)
)

func testAssets() *Assets {
	return NewAssets("BNB", map[string]string{
		"USDT": usdtAddress,
		"USDC": usdcAddress,
	})
}

// units returns n whole units of an asset with decimals
func units(n int64, decimals uint8) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return scale.Mul(scale, big.NewInt(n))
}

// fakeChain is an in-memory ChainBackend for a single owner
type fakeChain struct {
	mu sync.Mutex

	calls atomic.Int32

	native    *big.Int
	tokens    map[ethcommon.Address]*big.Int
	decimals  map[ethcommon.Address]uint8
	assetErrs map[string]error // "native" or token hex

	gasPrice    *big.Int
	estimateFn  func(msg ethereum.CallMsg) (uint64, error)
	nonce       uint64
	sendErr     error
	sent        []*types.Transaction
	receipts    map[ethcommon.Hash]*types.Receipt
	receiptErrs int
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		native: units(10, 18),
		tokens: map[ethcommon.Address]*big.Int{
			ethcommon.HexToAddress(usdtAddress): units(100, 18),
			ethcommon.HexToAddress(usdcAddress): units(50, 6),
		},
		decimals: map[ethcommon.Address]uint8{
			ethcommon.HexToAddress(usdtAddress): 18,
			ethcommon.HexToAddress(usdcAddress): 6,
		},
		assetErrs: make(map[string]error),
		gasPrice:  big.NewInt(3e9),
		receipts:  make(map[ethcommon.Hash]*types.Receipt),
	}
}

var _ ChainBackend = (*fakeChain)(nil)

func (f *fakeChain) BalanceAt(_ context.Context, _ ethcommon.Address) (*big.Int, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.assetErrs["native"]; err != nil {
		return nil, err
	}
	return new(big.Int).Set(f.native), nil
}

func (f *fakeChain) TokenBalance(_ context.Context, token, _ ethcommon.Address) (*big.Int, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.assetErrs[token.Hex()]; err != nil {
		return nil, err
	}
	return new(big.Int).Set(f.tokens[token]), nil
}

func (f *fakeChain) TokenDecimals(_ context.Context, token ethcommon.Address) (uint8, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.assetErrs[token.Hex()]; err != nil {
		return 0, err
	}
	return f.decimals[token], nil
}

func (f *fakeChain) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.calls.Add(1)
	f.mu.Lock()
	estimate := f.estimateFn
	f.mu.Unlock()

	if estimate != nil {
		return estimate(msg)
	}
	if msg.Data != nil {
		return 52000, nil
	}
	return transferGas, nil
}

func (f *fakeChain) SuggestGasPrice(context.Context) (*big.Int, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()

	return new(big.Int).Set(f.gasPrice), nil
}

func (f *fakeChain) PendingNonceAt(context.Context, ethcommon.Address) (uint64, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.nonce, nil
}

func (f *fakeChain) ChainID(context.Context) (*big.Int, error) {
	f.calls.Add(1)
	return testChainID, nil
}

func (f *fakeChain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	f.nonce = tx.Nonce() + 1
	return nil
}

func (f *fakeChain) TransactionReceipt(_ context.Context, hash ethcommon.Hash) (*types.Receipt, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.receiptErrs > 0 {
		f.receiptErrs--
		return nil, errors.New("connection reset")
	}
	r, ok := f.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (f *fakeChain) mine(hash string, status uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.receipts[ethcommon.HexToHash(hash)] = &types.Receipt{
		Status:      status,
		BlockNumber: big.NewInt(1234),
	}
}

// failAsset makes queries of asset ("native" or a token address) fail
func (f *fakeChain) failAsset(asset string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if asset != "native" {
		asset = ethcommon.HexToAddress(asset).Hex()
	}
	f.assetErrs[asset] = err
}

func (f *fakeChain) lastSent(t *testing.T) *types.Transaction {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

// fakeExplorer serves a fixed confirmed history
type fakeExplorer struct {
	mu     sync.Mutex
	native []client.ExplorerTx
	tokens []client.ExplorerTx
	err    error
}

func (f *fakeExplorer) NativeTransfers(context.Context, string, int) ([]client.ExplorerTx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.ExplorerTx(nil), f.native...), f.err
}

func (f *fakeExplorer) TokenTransfers(context.Context, string, int) ([]client.ExplorerTx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.ExplorerTx(nil), f.tokens...), f.err
}

func (f *fakeExplorer) addToken(row client.ExplorerTx) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, row)
}

// fakeAccounts knows a single wallet and records logged hashes
type fakeAccounts struct {
	mu       sync.Mutex
	logged   []string
	contacts []model.Contact
}

func (f *fakeAccounts) CreateWallet(context.Context, model.NewWalletRequest) error {
	return nil
}

func (f *fakeAccounts) FetchWallet(_ context.Context, name, password string) (*model.RemoteWallet, error) {
	if name != "alice" || password != testPassword {
		return nil, model.NewAuthError("Invalid name or password")
	}
	return &model.RemoteWallet{
		Name: "alice", Address: testAddress, PrivateKey: testKey, Mnemonic: testMnemonic,
	}, nil
}

func (f *fakeAccounts) ResetPassword(context.Context, string, string, string) (string, error) {
	return "ok", nil
}

func (f *fakeAccounts) LogTransaction(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logged = append(f.logged, hash)
	return errors.New("audit service down")
}

func (f *fakeAccounts) Contacts(_ context.Context, address string) ([]model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.Contact
	for _, c := range f.contacts {
		if c.WalletAddress == address {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeAccounts) AddContact(_ context.Context, c model.Contact) (*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c.ID = "id-" + c.ContactName
	f.contacts = append(f.contacts, c)
	return &c, nil
}

func (f *fakeAccounts) DeleteContact(context.Context, string) error {
	return nil
}

func (f *fakeAccounts) loggedHashes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.logged...)
}

// newUnlockedMachine returns a session machine unlocked as alice
func newUnlockedMachine(t *testing.T, accounts *fakeAccounts) *session.Machine {
	t.Helper()

	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	cipher := crypto.NewCipher(crypto.ScryptParams{N: 1 << 4, R: 8, P: 1})
	m := session.NewMachine(store, cipher, accounts)

	_, err := m.Fetch(context.Background(), "alice", testPassword)
	require.NoError(t, err)
	return m
}
