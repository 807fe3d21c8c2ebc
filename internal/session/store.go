package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AlexZinkM/evm-wallet/internal/crypto"
	"github.com/AlexZinkM/evm-wallet/internal/model"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Store persists the encrypted session envelope. It is the only place where
// key material reaches durable storage, and only in encrypted form.
type Store interface {
	// Save replaces the stored envelope.
	Save(env model.SessionEnvelope) error

	// Load returns the stored envelope, or None when there is none.
	// Corrupt data is cleared and reported as None.
	Load() fn.Option[model.SessionEnvelope]

	// Clear removes the stored envelope.
	Clear() error
}

// ErrPlaintextEnvelope is returned when an envelope field is not ciphertext
var ErrPlaintextEnvelope = errors.New("envelope field is not ciphertext")

// validateEnvelope checks that an envelope is complete and holds only
// ciphertext in its secret fields
func validateEnvelope(env model.SessionEnvelope) error {
	if env.Name == "" {
		return errors.New("envelope has no name")
	}
	if !ethcommon.IsHexAddress(env.Address) {
		return fmt.Errorf("envelope has invalid address %q", env.Address)
	}
	if !crypto.WellFormed(env.EncryptedData.PrivateKey) {
		return fmt.Errorf("privateKey: %w", ErrPlaintextEnvelope)
	}
	if !crypto.WellFormed(env.EncryptedData.Mnemonic) {
		return fmt.Errorf("mnemonic: %w", ErrPlaintextEnvelope)
	}
	return nil
}

// encodeEnvelope validates and serializes an envelope
func encodeEnvelope(env model.SessionEnvelope) ([]byte, error) {
	if err := validateEnvelope(env); err != nil {
		return nil, fmt.Errorf("refusing to store envelope: %w", err)
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return data, nil
}

// decodeEnvelope parses and validates stored bytes
func decodeEnvelope(data []byte) (model.SessionEnvelope, error) {
	var env model.SessionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, &model.WalletError{
			Kind: model.KindCorruptLocalState, Message: "failed to unmarshal envelope", Err: err,
		}
	}
	if err := validateEnvelope(env); err != nil {
		return env, &model.WalletError{
			Kind: model.KindCorruptLocalState, Message: "invalid envelope", Err: err,
		}
	}
	return env, nil
}

// loadOrClear decodes stored bytes and clears the store if they are corrupt
func loadOrClear(s Store, data []byte) fn.Option[model.SessionEnvelope] {
	env, err := decodeEnvelope(data)
	if err != nil {
		log.Warnf("Discarding stored session: %v", err)
		if err := s.Clear(); err != nil {
			log.Errorf("Failed to clear corrupt session: %v", err)
		}
		return fn.None[model.SessionEnvelope]()
	}
	return fn.Some(env)
}
