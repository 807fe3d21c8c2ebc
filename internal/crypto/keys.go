package crypto

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// PrivateKeyFromHex parses a 32-byte hex private key with or without 0x prefix
func PrivateKeyFromHex(s string) (*ecdsa.PrivateKey, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	key, err := gethcrypto.HexToECDSA(s)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// PrivateKeyToHex encodes a private key as 0x-prefixed hex
func PrivateKeyToHex(key *ecdsa.PrivateKey) string {
	b := gethcrypto.FromECDSA(key)
	defer clear(b)
	return fmt.Sprintf("0x%x", b)
}

// AddressOf returns the checksummed address of a private key
func AddressOf(key *ecdsa.PrivateKey) string {
	return gethcrypto.PubkeyToAddress(key.PublicKey).Hex()
}

// KeyMatchesAddress reports whether the hex private key controls address
func KeyMatchesAddress(privateKey, address string) bool {
	key, err := PrivateKeyFromHex(privateKey)
	if err != nil {
		return false
	}
	return strings.EqualFold(AddressOf(key), address)
}
