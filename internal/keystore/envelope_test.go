package keystore

import (
	"encoding/json"
	"errors"
	"testing"
)

// Small KDF parameters so tests do not spend seconds in argon2.
var testKDF = KDFParams{Time: 1, MemoryKB: 8 * 1024, Threads: 1}

func TestSealOpenRoundtrip(t *testing.T) {
	sealed, err := sealEnvelope("pass", []byte("secret"), testKDF)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	plain, err := openEnvelope("pass", sealed)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if string(plain) != "secret" {
		t.Fatalf("unexpected plaintext: %q", string(plain))
	}
}

func TestOpenWrongPassphrase(t *testing.T) {
	sealed, err := sealEnvelope("pass", []byte("secret"), testKDF)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	_, err = openEnvelope("wrong", sealed)
	if !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestOpenTamperedFails(t *testing.T) {
	sealed, err := sealEnvelope("pass", []byte("secret"), testKDF)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	sealed[len(sealed)-2] ^= 0xFF
	_, err = openEnvelope("pass", sealed)
	if !errors.Is(err, ErrAuthFailed) && !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrAuthFailed or ErrInvalid, got %v", err)
	}
}

// craftEnvelope seals a valid envelope, applies mutate to its decoded fields
// and re-encodes it, producing a structurally well-formed but hostile file.
func craftEnvelope(t *testing.T, mutate func(*envelope)) []byte {
	t.Helper()
	sealed, err := sealEnvelope("pass", []byte("secret"), testKDF)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(sealed[len(filePrefix):], &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	mutate(&env)
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("encode envelope: %v", err)
	}
	return append([]byte(filePrefix), raw...)
}

func TestOpenRejectsHostileEnvelopeFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*envelope)
	}{
		{"zero kdf time", func(e *envelope) { e.KDFTime = 0 }},
		{"zero kdf threads", func(e *envelope) { e.KDFThreads = 0 }},
		{"zero kdf memory", func(e *envelope) { e.KDFMemoryKB = 0 }},
		{"huge kdf memory", func(e *envelope) { e.KDFMemoryKB = maxKDFMemoryKB + 1 }},
		{"short nonce", func(e *envelope) { e.Nonce = e.Nonce[:3] }},
		{"long nonce", func(e *envelope) { e.Nonce = append(e.Nonce, 0) }},
		{"short salt", func(e *envelope) { e.Salt = e.Salt[:saltSize-1] }},
		{"missing salt", func(e *envelope) { e.Salt = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := craftEnvelope(t, tc.mutate)
			_, err := openEnvelope("pass", data)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestOpenPlainFile(t *testing.T) {
	_, err := openEnvelope("pass", []byte(`{"account_id":""}`))
	if !errors.Is(err, ErrPlaintext) {
		t.Fatalf("expected ErrPlaintext, got %v", err)
	}
}

func TestOldKDFParamsStillDecrypt(t *testing.T) {
	sealed, err := sealEnvelope("pass", []byte("secret"), KDFParams{Time: 1, MemoryKB: 16 * 1024, Threads: 2})
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	// The opener uses the parameters stored in the envelope, not the
	// caller's current config.
	plain, err := openEnvelope("pass", sealed)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if string(plain) != "secret" {
		t.Fatalf("unexpected plaintext: %q", string(plain))
	}
}
