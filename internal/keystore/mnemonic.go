package keystore

import (
	"errors"
	"strings"

	"github.com/tyler-smith/go-bip39"

	"emberchain/go-node/internal/keys"
)

var (
	ErrInvalidMnemonic  = errors.New("invalid mnemonic")
	ErrMnemonicRequired = errors.New("mnemonic is required")
)

// CreateMnemonic returns a fresh 24-word mnemonic and the key pair derived
// from it. The mnemonic is the only backup of the key; callers must show it
// to the user.
func CreateMnemonic(kt keys.KeyType) (string, keys.SecretKey, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", keys.SecretKey{}, err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", keys.SecretKey{}, err
	}
	sk, err := ImportMnemonic(kt, mnemonic)
	if err != nil {
		return "", keys.SecretKey{}, err
	}
	return mnemonic, sk, nil
}

// ImportMnemonic re-derives the key pair from a previously issued mnemonic.
// The same mnemonic and key type always yield the same key.
func ImportMnemonic(kt keys.KeyType, mnemonic string) (keys.SecretKey, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	if mnemonic == "" {
		return keys.SecretKey{}, ErrMnemonicRequired
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return keys.SecretKey{}, ErrInvalidMnemonic
	}
	seed := bip39.NewSeed(mnemonic, "")
	return keys.SecretKeyFromSeedBytes(kt, seed)
}

// ValidateMnemonic reports whether the phrase passes bip39 checksum rules.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(strings.TrimSpace(mnemonic))
}
