package keystore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"emberchain/go-node/internal/keys"
	"emberchain/go-node/internal/testutil/fsperm"
)

func mustGenerate(t *testing.T, kt keys.KeyType) keys.SecretKey {
	t.Helper()
	sk, err := keys.GenerateSecretKey(kt)
	if err != nil {
		t.Fatalf("generate %s key: %v", kt, err)
	}
	return sk
}

func TestKeyFileRoundtripPlain(t *testing.T) {
	sk := mustGenerate(t, keys.Ed25519)
	kf, err := NewKeyFile(sk)
	if err != nil {
		t.Fatalf("new key file: %v", err)
	}

	path := filepath.Join(t.TempDir(), "node.json")
	if err := SavePlain(path, kf); err != nil {
		t.Fatalf("save plain: %v", err)
	}
	enc, err := IsEncrypted(path)
	if err != nil {
		t.Fatalf("is encrypted: %v", err)
	}
	if enc {
		t.Fatal("plain file reported as encrypted")
	}
	fsperm.AssertPrivateFilePerm(t, path)

	loaded, err := Load(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got, pk, err := loaded.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Equals(sk) {
		t.Fatal("loaded secret key differs")
	}
	if !pk.Equals(sk.PublicKey()) {
		t.Fatal("loaded public key differs")
	}
}

func TestKeyFileRoundtripEncrypted(t *testing.T) {
	sk := mustGenerate(t, keys.Secp256k1)
	kf, err := NewKeyFile(sk)
	if err != nil {
		t.Fatalf("new key file: %v", err)
	}

	path := filepath.Join(t.TempDir(), "node.json")
	if err := SaveEncrypted(path, kf, "hunter2", testKDF); err != nil {
		t.Fatalf("save encrypted: %v", err)
	}
	enc, err := IsEncrypted(path)
	if err != nil {
		t.Fatalf("is encrypted: %v", err)
	}
	if !enc {
		t.Fatal("encrypted file reported as plain")
	}

	if _, err := Load(path, "wrong"); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
	loaded, err := Load(path, "hunter2")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got, _, err := loaded.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Equals(sk) {
		t.Fatal("loaded secret key differs")
	}
}

func TestKeyFileDecodeMismatch(t *testing.T) {
	a := mustGenerate(t, keys.Ed25519)
	b := mustGenerate(t, keys.Ed25519)
	kf, err := NewKeyFile(a)
	if err != nil {
		t.Fatalf("new key file: %v", err)
	}
	kf.PublicKey = b.PublicKey().String()
	if _, _, err := kf.Decode(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid on mismatched public key, got %v", err)
	}

	kf, err = NewKeyFile(a)
	if err != nil {
		t.Fatalf("new key file: %v", err)
	}
	kf.AccountID = b.PublicKey().AccountID()
	if _, _, err := kf.Decode(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid on mismatched account id, got %v", err)
	}
}

func TestLoadRejectsCorruptEnvelope(t *testing.T) {
	data := craftEnvelope(t, func(e *envelope) { e.KDFTime = 0 })
	path := filepath.Join(t.TempDir(), "node.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := Load(path, "pass"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for corrupt envelope, got %v", err)
	}
}

func TestKeyFileDecodeBadSecret(t *testing.T) {
	kf := KeyFile{SecretKey: "ed25519:not-base58-0OIl", PublicKey: "ed25519:11111111111111111111111111111111"}
	if _, _, err := kf.Decode(); err == nil {
		t.Fatal("expected error for malformed secret key")
	}
}
