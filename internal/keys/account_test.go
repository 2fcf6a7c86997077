package keys

import (
	"strings"
	"testing"
)

func TestAccountIDStable(t *testing.T) {
	sk, err := SecretKeyFromSeed(Ed25519, "account")
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	pk := sk.PublicKey()
	id := pk.AccountID()
	if !strings.HasPrefix(id, "emb1") {
		t.Errorf("account id %q missing prefix", id)
	}
	if id != pk.AccountID() {
		t.Error("account id should be deterministic")
	}
	if !VerifyAccountID(id, pk) {
		t.Error("account id should verify against its key")
	}
}

func TestAccountIDDistinguishesKeys(t *testing.T) {
	a, err := SecretKeyFromSeed(Ed25519, "alice")
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	b, err := SecretKeyFromSeed(Ed25519, "bob")
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	if a.PublicKey().AccountID() == b.PublicKey().AccountID() {
		t.Error("different keys should map to different accounts")
	}
	if VerifyAccountID(a.PublicKey().AccountID(), b.PublicKey()) {
		t.Error("account id should not verify against another key")
	}
}
