package session

import (
	"crypto/ecdsa"
	"crypto/subtle"

	"github.com/AlexZinkM/evm-wallet/internal/crypto"
	"github.com/AlexZinkM/evm-wallet/internal/model"
)

// State is the wallet session: exactly one of NoSession, LockedSession or
// UnlockedSession. Only UnlockedSession carries secrets.
type State interface {
	// Status returns the externally visible session status.
	Status() model.SessionStatus

	sealed()
}

// NoSession means no wallet is loaded
type NoSession struct{}

// LockedSession holds the persisted envelope and no plaintext
type LockedSession struct {
	Envelope model.SessionEnvelope
}

// UnlockedSession holds the decrypted secrets. Its fields are unexported so
// the accessors below are the only way to read them.
type UnlockedSession struct {
	account      model.Account
	secrets      model.SecretMaterial
	passwordEcho string
}

func (NoSession) Status() model.SessionStatus       { return model.SessionNone }
func (LockedSession) Status() model.SessionStatus   { return model.SessionLocked }
func (UnlockedSession) Status() model.SessionStatus { return model.SessionUnlocked }

func (NoSession) sealed()       {}
func (LockedSession) sealed()   {}
func (UnlockedSession) sealed() {}

// Account returns the unlocked account
func (u UnlockedSession) Account() model.Account {
	return u.account
}

// Secrets returns the plaintext key material
func (u UnlockedSession) Secrets() model.SecretMaterial {
	return u.secrets
}

// PrivateKey parses the unlocked private key for signing
func (u UnlockedSession) PrivateKey() (*ecdsa.PrivateKey, error) {
	return crypto.PrivateKeyFromHex(u.secrets.PrivateKey)
}

// passwordMatches compares password with the one used to unlock
func (u UnlockedSession) passwordMatches(password string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(u.passwordEcho)) == 1
}

// accountOf returns the account visible in a state, if any
func accountOf(s State) (model.Account, bool) {
	switch st := s.(type) {
	case LockedSession:
		return st.Envelope.Account(), true
	case UnlockedSession:
		return st.account, true
	case NoSession:
		return model.Account{}, false
	default:
		panic("session: unknown state")
	}
}
