package model

import (
	"fmt"
	"log/slog"
	"strings"
)

// SessionStatus is the externally visible state of the wallet session
type SessionStatus string

const (
	SessionNone     SessionStatus = "none"
	SessionLocked   SessionStatus = "locked"
	SessionUnlocked SessionStatus = "unlocked"
)

// Account identifies a wallet. Name is unique case-insensitively.
type Account struct {
	Name    string `json:"name"`
	Address string `json:"address"` // checksummed hex
}

// NormalizeName trims and lower-cases a wallet name
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SecretMaterial is the plaintext key material of an account.
// It only lives in memory while the session is unlocked.
type SecretMaterial struct {
	PrivateKey string `json:"privateKey"` // 0x-prefixed 32-byte hex
	Mnemonic   string `json:"mnemonic"`
}

// String keeps secrets out of fmt output
func (s SecretMaterial) String() string {
	return "SecretMaterial{redacted}"
}

// GoString keeps secrets out of %#v output
func (s SecretMaterial) GoString() string {
	return s.String()
}

// LogValue keeps secrets out of structured logs
func (s SecretMaterial) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

// Empty reports whether either secret is missing
func (s SecretMaterial) Empty() bool {
	return s.PrivateKey == "" || s.Mnemonic == ""
}

// CipherText is the storage-safe encrypted form of a secret string
type CipherText string

// EncryptedSecrets holds both secrets of an account in encrypted form
type EncryptedSecrets struct {
	PrivateKey CipherText `json:"privateKey"`
	Mnemonic   CipherText `json:"mnemonic"`
}

// SessionEnvelope is the persisted session. It never holds plaintext secrets.
type SessionEnvelope struct {
	Name          string           `json:"name"`
	Address       string           `json:"address"`
	EncryptedData EncryptedSecrets `json:"encryptedData"`
}

// Account returns the public part of the envelope
func (e SessionEnvelope) Account() Account {
	return Account{Name: e.Name, Address: e.Address}
}

// RemoteWallet is the account API answer to a fetch by name and password
type RemoteWallet struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
	Mnemonic   string `json:"mnemonic"`
}

// Secrets returns the secret part of the fetched wallet
func (w RemoteWallet) Secrets() SecretMaterial {
	return SecretMaterial{PrivateKey: w.PrivateKey, Mnemonic: w.Mnemonic}
}

// NewWalletRequest is the account API payload for create and import
type NewWalletRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
	Mnemonic   string `json:"mnemonic"`
	Password   string `json:"password"`
}

// String keeps secrets out of fmt output
func (r NewWalletRequest) String() string {
	return fmt.Sprintf("NewWalletRequest{name=%s address=%s}", r.Name, r.Address)
}

// StatusResponse represents response for GET /wallet/status
type StatusResponse struct {
	Status  SessionStatus `json:"status"`
	Name    string        `json:"name,omitempty"`
	Address string        `json:"address,omitempty"`
}

// UnlockRequest represents request for POST /wallet/unlock and /wallet/reveal
type UnlockRequest struct {
	Password string `json:"password"`
}

// LockRequest represents request for POST /wallet/lock
type LockRequest struct {
	Logout bool `json:"logout"`
}

// FetchRequest represents request for POST /wallet/fetch
type FetchRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ResetPasswordRequest represents request for POST /wallet/reset-password
type ResetPasswordRequest struct {
	Name            string `json:"name"`
	Mnemonic        string `json:"mnemonic"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate checks that all fields are present and passwords match
func (r *ResetPasswordRequest) Validate() error {
	if NormalizeName(r.Name) == "" || strings.TrimSpace(r.Mnemonic) == "" || strings.TrimSpace(r.NewPassword) == "" {
		return NewValidationError("Please fill all fields.")
	}
	if r.NewPassword != r.ConfirmPassword {
		return NewValidationError("New passwords do not match.")
	}
	return nil
}

// MessageResponse is a generic success answer
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RevealResponse represents response for POST /wallet/reveal
type RevealResponse struct {
	PrivateKey string `json:"privateKey"`
	Mnemonic   string `json:"mnemonic"`
}

// ReceiveResponse represents response for GET /wallet/receive
type ReceiveResponse struct {
	Address string `json:"address"`
	QR      string `json:"QR"` // base64 PNG
}
