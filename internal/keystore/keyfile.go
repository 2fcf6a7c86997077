package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"emberchain/go-node/internal/keys"
)

// KeyFile is the on-disk representation of a signing identity. Plain files
// hold the JSON directly; encrypted files wrap the same JSON in a sealed
// envelope with the EMBKEY1 prefix.
type KeyFile struct {
	AccountID string `json:"account_id"`
	PublicKey string `json:"public_key"`
	SecretKey string `json:"secret_key"`
}

func NewKeyFile(sk keys.SecretKey) (KeyFile, error) {
	pk := sk.PublicKey()
	sec, err := sk.MarshalText()
	if err != nil {
		return KeyFile{}, err
	}
	return KeyFile{
		AccountID: pk.AccountID(),
		PublicKey: pk.String(),
		SecretKey: string(sec),
	}, nil
}

// Decode validates the file's internal consistency and returns the key pair.
func (kf KeyFile) Decode() (keys.SecretKey, keys.PublicKey, error) {
	sk, err := keys.ParseSecretKey(kf.SecretKey)
	if err != nil {
		return keys.SecretKey{}, keys.PublicKey{}, fmt.Errorf("secret key: %w", err)
	}
	pk, err := keys.ParsePublicKey(kf.PublicKey)
	if err != nil {
		return keys.SecretKey{}, keys.PublicKey{}, fmt.Errorf("public key: %w", err)
	}
	if !sk.PublicKey().Equals(pk) {
		return keys.SecretKey{}, keys.PublicKey{}, fmt.Errorf("%w: public key does not match secret key", ErrInvalid)
	}
	if kf.AccountID != "" && kf.AccountID != pk.AccountID() {
		return keys.SecretKey{}, keys.PublicKey{}, fmt.Errorf("%w: account id does not match public key", ErrInvalid)
	}
	return sk, pk, nil
}

func writeKeyFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// SavePlain writes the key file without encryption. Intended for throwaway
// development identities only.
func SavePlain(path string, kf KeyFile) error {
	raw, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return err
	}
	return writeKeyFile(path, append(raw, '\n'))
}

func SaveEncrypted(path string, kf KeyFile, passphrase string, params KDFParams) error {
	raw, err := json.Marshal(kf)
	if err != nil {
		return err
	}
	sealed, err := sealEnvelope(passphrase, raw, params)
	if err != nil {
		return err
	}
	zeroBytes(raw)
	return writeKeyFile(path, sealed)
}

// Load reads a key file, transparently opening the envelope when the file is
// encrypted. An empty passphrase on an encrypted file fails with ErrAuthFailed
// unless the file was sealed with one.
func Load(path string, passphrase string) (KeyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return KeyFile{}, err
	}
	plaintext, err := openEnvelope(passphrase, data)
	if errors.Is(err, ErrPlaintext) {
		plaintext = data
	} else if err != nil {
		return KeyFile{}, err
	}
	var kf KeyFile
	if err := json.Unmarshal(plaintext, &kf); err != nil {
		return KeyFile{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return kf, nil
}

// IsEncrypted reports whether the file at path carries the envelope prefix.
func IsEncrypted(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return len(data) >= len(filePrefix) && string(data[:len(filePrefix)]) == filePrefix, nil
}
