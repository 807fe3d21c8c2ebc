package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/AlexZinkM/evm-wallet/internal/crypto"
	"github.com/AlexZinkM/evm-wallet/internal/model"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// incorrectPassword is the message shown for a failed unlock
const incorrectPassword = "Incorrect password."

var (
	// ErrNoSession is returned when an operation needs a loaded wallet
	ErrNoSession = model.NewSessionError("no wallet loaded")

	// ErrLocked is returned when an operation needs an unlocked wallet
	ErrLocked = model.NewSessionError("wallet is locked")
)

// AccountAPI is the remote account storage the machine delegates to
type AccountAPI interface {
	// CreateWallet stores a new or imported wallet remotely.
	CreateWallet(ctx context.Context, req model.NewWalletRequest) error

	// FetchWallet returns the plaintext wallet for name and password.
	FetchWallet(ctx context.Context, name, password string) (*model.RemoteWallet, error)

	// ResetPassword rotates the remote password, proving ownership with
	// the mnemonic. It returns the server message.
	ResetPassword(ctx context.Context, name, mnemonic, newPassword string) (string, error)
}

// Machine owns the wallet session. All transitions are serialized by mu and
// the machine is the only writer of the Store.
type Machine struct {
	mu    sync.Mutex
	state State

	store    Store
	cipher   *crypto.Cipher
	accounts AccountAPI
}

// NewMachine creates a machine in NoSession
func NewMachine(store Store, cipher *crypto.Cipher, accounts AccountAPI) *Machine {
	return &Machine{
		state:    NoSession{},
		store:    store,
		cipher:   cipher,
		accounts: accounts,
	}
}

// Restore moves NoSession to LockedSession when an envelope is stored.
// Other states are left alone.
func (m *Machine) Restore() model.SessionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.state.(NoSession); !ok {
		return m.state.Status()
	}

	m.store.Load().WhenSome(func(env model.SessionEnvelope) {
		log.Infof("Restored locked session for %s (%s)", env.Name, env.Address)
		m.state = LockedSession{Envelope: env}
	})
	return m.state.Status()
}

// Status returns the current session status
func (m *Machine) Status() model.SessionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state.Status()
}

// Account returns the loaded account in Locked or Unlocked state
func (m *Machine) Account() (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := accountOf(m.state)
	if !ok {
		return model.Account{}, ErrNoSession
	}
	return acc, nil
}

// Address returns the loaded account address in Locked or Unlocked state
func (m *Machine) Address() (string, error) {
	acc, err := m.Account()
	if err != nil {
		return "", err
	}
	return acc.Address, nil
}

// Unlocked returns the unlocked session. This is the only read path for
// secrets.
func (m *Machine) Unlocked() (UnlockedSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch st := m.state.(type) {
	case UnlockedSession:
		return st, nil
	case LockedSession:
		return UnlockedSession{}, ErrLocked
	default:
		return UnlockedSession{}, ErrNoSession
	}
}

// CreateOrImport stores a new wallet with the account API. The session is
// not changed: the user fetches the wallet afterwards.
func (m *Machine) CreateOrImport(ctx context.Context, name, password string,
	address string, secrets model.SecretMaterial) error {

	name = model.NormalizeName(name)
	if name == "" || strings.TrimSpace(password) == "" {
		return model.NewValidationError("Wallet name and password are required.")
	}
	if secrets.Empty() {
		return model.NewValidationError("Wallet secrets are required.")
	}
	if !crypto.KeyMatchesAddress(secrets.PrivateKey, address) {
		return model.NewValidationError("private key does not match address")
	}

	err := m.accounts.CreateWallet(ctx, model.NewWalletRequest{
		Name:       name,
		Address:    address,
		PrivateKey: secrets.PrivateKey,
		Mnemonic:   secrets.Mnemonic,
		Password:   password,
	})
	if err != nil {
		return err
	}

	log.Infof("Wallet %s saved remotely (%s)", name, address)
	return nil
}

// Fetch loads a wallet from the account API, encrypts the received secrets
// with password, persists the envelope and unlocks the session.
func (m *Machine) Fetch(ctx context.Context, name, password string) (model.Account, error) {
	name = model.NormalizeName(name)
	if name == "" || strings.TrimSpace(password) == "" {
		return model.Account{}, model.NewValidationError("Wallet name and password are required.")
	}

	remote, err := m.accounts.FetchWallet(ctx, name, password)
	if err != nil {
		return model.Account{}, err
	}
	secrets := remote.Secrets()
	if secrets.Empty() {
		return model.Account{}, model.NewNetworkError("account API returned no secrets", nil)
	}
	if !crypto.KeyMatchesAddress(secrets.PrivateKey, remote.Address) {
		return model.Account{}, model.NewValidationError("private key does not match address")
	}

	// Encrypt on receipt: never trust any server-side encryption
	encPK, err := m.cipher.Encrypt(secrets.PrivateKey, password)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to encrypt private key: %w", err)
	}
	encMnemonic, err := m.cipher.Encrypt(secrets.Mnemonic, password)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to encrypt mnemonic: %w", err)
	}

	account := model.Account{
		Name:    model.NormalizeName(remote.Name),
		Address: ethcommon.HexToAddress(remote.Address).Hex(),
	}
	if account.Name == "" {
		account.Name = name
	}
	env := model.SessionEnvelope{
		Name:    account.Name,
		Address: account.Address,
		EncryptedData: model.EncryptedSecrets{
			PrivateKey: encPK,
			Mnemonic:   encMnemonic,
		},
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(env); err != nil {
		return model.Account{}, fmt.Errorf("failed to save session: %w", err)
	}
	m.state = UnlockedSession{
		account:      account,
		secrets:      secrets,
		passwordEcho: password,
	}

	log.Infof("Wallet %s loaded (%s)", account.Name, account.Address)
	return account, nil
}

// Unlock decrypts the stored envelope. A wrong password leaves the session
// locked.
func (m *Machine) Unlock(password string) (model.Account, error) {
	if strings.TrimSpace(password) == "" {
		return model.Account{}, model.NewValidationError("Password is required.")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	locked, ok := m.state.(LockedSession)
	if !ok {
		if _, unlocked := m.state.(UnlockedSession); unlocked {
			return model.Account{}, model.NewSessionError("wallet is already unlocked")
		}
		return model.Account{}, ErrNoSession
	}

	env := locked.Envelope
	pk, err := m.cipher.Decrypt(env.EncryptedData.PrivateKey, password)
	if err != nil && !errors.Is(err, crypto.ErrDecryptionFailed) {
		return model.Account{}, err
	}
	if pk == "" {
		log.Debugf("Unlock rejected for %s", env.Name)
		return model.Account{}, model.NewAuthError(incorrectPassword)
	}
	mnemonic, err := m.cipher.Decrypt(env.EncryptedData.Mnemonic, password)
	if err != nil && !errors.Is(err, crypto.ErrDecryptionFailed) {
		return model.Account{}, err
	}
	if mnemonic == "" {
		log.Debugf("Unlock rejected for %s", env.Name)
		return model.Account{}, model.NewAuthError(incorrectPassword)
	}

	account := env.Account()
	m.state = UnlockedSession{
		account:      account,
		secrets:      model.SecretMaterial{PrivateKey: pk, Mnemonic: mnemonic},
		passwordEcho: password,
	}

	log.Infof("Wallet %s unlocked", account.Name)
	return account, nil
}

// Lock drops the in-memory secrets. The envelope stays on disk for the next
// start unless logout is set.
func (m *Machine) Lock(logout bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = NoSession{}

	if logout {
		if err := m.store.Clear(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		log.Infof("Logged out, stored session cleared")
		return nil
	}

	log.Infof("Wallet locked")
	return nil
}

// ResetPassword rotates the remote password using the mnemonic as proof of
// ownership. On success the local session is invalidated and the user must
// fetch again with the new password.
func (m *Machine) ResetPassword(ctx context.Context, name, mnemonic, newPassword string) (string, error) {
	name = model.NormalizeName(name)
	mnemonic = strings.TrimSpace(mnemonic)
	if name == "" || mnemonic == "" || strings.TrimSpace(newPassword) == "" {
		return "", model.NewValidationError("Please fill all fields.")
	}

	msg, err := m.accounts.ResetPassword(ctx, name, mnemonic, newPassword)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// The envelope is sealed with the old password, so it can never unlock
	// again: drop it whatever wallet it belongs to
	m.state = NoSession{}
	if err := m.store.Clear(); err != nil {
		return "", fmt.Errorf("failed to clear session: %w", err)
	}
	log.Infof("Password of %s reset, local session invalidated", name)

	return msg, nil
}

// RevealSecrets returns the secrets when password equals the one used to
// unlock
func (m *Machine) RevealSecrets(password string) (model.SecretMaterial, error) {
	u, err := m.Unlocked()
	if err != nil {
		return model.SecretMaterial{}, err
	}
	if !u.passwordMatches(password) {
		return model.SecretMaterial{}, model.NewAuthError("Incorrect password!")
	}
	return u.Secrets(), nil
}

// Reseal re-encrypts the stored envelope with next under the same password,
// for example to change the key derivation cost. The session must be
// locked. Later unlocks use next.
func (m *Machine) Reseal(password string, next *crypto.Cipher) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	locked, ok := m.state.(LockedSession)
	if !ok {
		if _, unlocked := m.state.(UnlockedSession); unlocked {
			return model.NewSessionError("lock the wallet before resealing it")
		}
		return ErrNoSession
	}

	env := locked.Envelope
	pk, err := m.cipher.Decrypt(env.EncryptedData.PrivateKey, password)
	if err != nil && !errors.Is(err, crypto.ErrDecryptionFailed) {
		return err
	}
	mnemonic, err := m.cipher.Decrypt(env.EncryptedData.Mnemonic, password)
	if err != nil && !errors.Is(err, crypto.ErrDecryptionFailed) {
		return err
	}
	if pk == "" || mnemonic == "" {
		return model.NewAuthError(incorrectPassword)
	}

	encPK, err := next.Encrypt(pk, password)
	if err != nil {
		return fmt.Errorf("failed to encrypt private key: %w", err)
	}
	encMnemonic, err := next.Encrypt(mnemonic, password)
	if err != nil {
		return fmt.Errorf("failed to encrypt mnemonic: %w", err)
	}

	env.EncryptedData = model.EncryptedSecrets{PrivateKey: encPK, Mnemonic: encMnemonic}
	if err := m.store.Save(env); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	m.cipher = next
	m.state = LockedSession{Envelope: env}

	log.Infof("Session of %s resealed", env.Name)
	return nil
}
