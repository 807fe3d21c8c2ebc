package wallet

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/AlexZinkM/evm-wallet/internal/crypto"
	"github.com/AlexZinkM/evm-wallet/internal/model"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/cosmos/go-bip39"
	"github.com/skip2/go-qrcode"
)

const (
	// entropyBits gives a 12-word mnemonic
	entropyBits = 128

	// coinTypeETH is the BIP-44 coin type shared by EVM chains
	coinTypeETH = 60
)

// GeneratedKey is a freshly created or imported key with its address
type GeneratedKey struct {
	Address string
	Secrets model.SecretMaterial
}

// GenerateKey creates a new 12-word mnemonic and derives its first account
func GenerateKey() (*GeneratedKey, error) {
	// Generate entropy and mnemonic
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate entropy: %w", err)
	}
	defer clear(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to create mnemonic: %w", err)
	}

	return ImportKey(mnemonic)
}

// ImportKey derives the first account (m/44'/60'/0'/0/0) of a mnemonic
func ImportKey(mnemonic string) (*GeneratedKey, error) {
	mnemonic = strings.Join(strings.Fields(strings.ToLower(mnemonic)), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, model.NewValidationError("Invalid mnemonic phrase.")
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, model.NewValidationError("Invalid mnemonic phrase.")
	}
	defer clear(seed)

	// The network params only affect serialization, never the derived key
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	path := []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + coinTypeETH,
		hdkeychain.HardenedKeyStart + 0,
		0,
		0,
	}
	for _, i := range path {
		key, err = key.Derive(i)
		if err != nil {
			return nil, fmt.Errorf("failed to derive key: %w", err)
		}
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get private key: %w", err)
	}
	ecdsaKey := priv.ToECDSA()

	return &GeneratedKey{
		Address: crypto.AddressOf(ecdsaKey),
		Secrets: model.SecretMaterial{
			PrivateKey: crypto.PrivateKeyToHex(ecdsaKey),
			Mnemonic:   mnemonic,
		},
	}, nil
}

// GenerateQRCode generates QR code of address in base64
func GenerateQRCode(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	// Get PNG image
	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	// Encode to base64
	return base64.StdEncoding.EncodeToString(png), nil
}
