package keys

import (
	"errors"
	"testing"
)

func TestParseKeyType(t *testing.T) {
	cases := []struct {
		in   string
		want KeyType
	}{
		{"ed25519", Ed25519},
		{"ED25519", Ed25519},
		{"secp256k1", Secp256k1},
		{"Secp256K1", Secp256k1},
		{"rsa2048", Rsa2048},
		{"RSA2048", Rsa2048},
	}
	for _, c := range cases {
		got, err := ParseKeyType(c.in)
		if err != nil {
			t.Fatalf("ParseKeyType(%q) failed: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseKeyType(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseKeyTypeUnknown(t *testing.T) {
	_, err := ParseKeyType("ed25520")
	var unknown *UnknownKeyTypeError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownKeyTypeError, got %v", err)
	}
	if unknown.Provided != "ed25520" {
		t.Errorf("Provided = %q, want %q", unknown.Provided, "ed25520")
	}
}

func TestKeyTypeString(t *testing.T) {
	if Ed25519.String() != "ed25519" || Secp256k1.String() != "secp256k1" || Rsa2048.String() != "rsa2048" {
		t.Errorf("unexpected canonical names: %s %s %s", Ed25519, Secp256k1, Rsa2048)
	}
}

func TestKeyTypeFromByte(t *testing.T) {
	for b, want := range map[byte]KeyType{0: Ed25519, 1: Secp256k1, 2: Rsa2048} {
		got, err := KeyTypeFromByte(b)
		if err != nil {
			t.Fatalf("KeyTypeFromByte(%d) failed: %v", b, err)
		}
		if got != want {
			t.Errorf("KeyTypeFromByte(%d) = %v, want %v", b, got, want)
		}
	}
	if _, err := KeyTypeFromByte(3); err == nil {
		t.Fatal("KeyTypeFromByte(3) should fail")
	}
}

func TestSplitKeyTypeData(t *testing.T) {
	kt, data, err := splitKeyTypeData("secp256k1:abc")
	if err != nil || kt != Secp256k1 || data != "abc" {
		t.Fatalf("got %v %q %v", kt, data, err)
	}

	// Values from before the multi-algorithm format default to ed25519.
	kt, data, err = splitKeyTypeData("noprefix")
	if err != nil || kt != Ed25519 || data != "noprefix" {
		t.Fatalf("got %v %q %v", kt, data, err)
	}

	if _, _, err := splitKeyTypeData("dsa:abc"); err == nil {
		t.Fatal("unknown prefix should fail")
	}
}
