package keys

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

const (
	Ed25519SignatureSize = 64
	// Secp256k1SignatureSize is 64 compact bytes (r || s) plus one raw
	// recovery id byte in the range 0-3.
	Secp256k1SignatureSize = 65
	Rsa2048SignatureSize   = 256
)

var (
	secp256k1N = ethcrypto.S256().Params().N
	// Half the curve order plus one: the low-S cutoff for rejecting
	// malleable ECDSA signatures.
	secp256k1NHalfOne = new(big.Int).Add(new(big.Int).Rsh(ethcrypto.S256().Params().N, 1), big.NewInt(1))
)

// Signature is an algorithm-tagged signature value. The payload length
// always matches the fixed size for the key type.
type Signature struct {
	keyType KeyType
	data    []byte
}

func signatureSize(kt KeyType) int {
	switch kt {
	case Ed25519:
		return Ed25519SignatureSize
	case Secp256k1:
		return Secp256k1SignatureSize
	case Rsa2048:
		return Rsa2048SignatureSize
	}
	panic(fmt.Sprintf("no signature size for key type %d", kt))
}

// EmptySignature returns an all-zero signature of the correct length for kt.
func EmptySignature(kt KeyType) Signature {
	return Signature{keyType: kt, data: make([]byte, signatureSize(kt))}
}

// SignatureFromParts wraps a raw signature blob, validating its length.
func SignatureFromParts(kt KeyType, data []byte) (Signature, error) {
	if len(data) != signatureSize(kt) {
		return Signature{}, &InvalidDataError{
			Message: fmt.Sprintf("invalid %s signature length: %d", kt, len(data)),
		}
	}
	return Signature{keyType: kt, data: bytes.Clone(data)}, nil
}

func (s Signature) KeyType() KeyType {
	return s.keyType
}

// SignatureData returns the raw payload. Callers must treat it as read-only.
func (s Signature) SignatureData() []byte {
	return s.data
}

// Verify reports whether s signs data under publicKey. It runs on untrusted
// network input: every internal failure, including mismatched key types,
// malformed keys and bad recovery ids, collapses to false. It never panics
// and never returns an error.
func (s Signature) Verify(data []byte, publicKey PublicKey) bool {
	if s.keyType != publicKey.keyType {
		return false
	}
	switch s.keyType {
	case Ed25519:
		if len(publicKey.data) != ed25519.PublicKeySize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(publicKey.data), data, s.data)
	case Secp256k1:
		// The original signing path emits recoverable signatures, so
		// verification strips the recovery id back off and checks the
		// compact form against the uncompressed point rebuilt from the
		// raw 64 key bytes.
		if s.data[64] >= 4 {
			return false
		}
		if len(data) != 32 {
			return false
		}
		uncompressed := make([]byte, 65)
		uncompressed[0] = 4
		copy(uncompressed[1:], publicKey.data)
		return ethcrypto.VerifySignature(uncompressed, data, s.data[:64])
	case Rsa2048:
		parsed, err := x509.ParsePKIXPublicKey(publicKey.data)
		if err != nil {
			return false
		}
		pub, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return false
		}
		return rsa.VerifyPKCS1v15(pub, 0, data, s.data) == nil
	}
	return false
}

// CheckSignatureValues validates that r and s are below the secp256k1 curve
// order, and with rejectUpper also that s sits in the lower half (the
// canonical non-malleable form). Verify does not invoke this; callers
// needing canonical-form enforcement do so explicitly. Only meaningful for
// Secp256k1 signatures; other key types report false.
func (s Signature) CheckSignatureValues(rejectUpper bool) bool {
	if s.keyType != Secp256k1 {
		return false
	}
	r := new(big.Int).SetBytes(s.data[0:32])
	sv := new(big.Int).SetBytes(s.data[32:64])
	sCheck := secp256k1N
	if rejectUpper {
		sCheck = secp256k1NHalfOne
	}
	return r.Cmp(secp256k1N) < 0 && sv.Cmp(sCheck) < 0
}

// Recover reconstructs the public key that produced this signature over the
// 32-byte message digest. Only Secp256k1 signatures are recoverable.
func (s Signature) Recover(digest []byte) (PublicKey, error) {
	if s.keyType != Secp256k1 {
		return PublicKey{}, &InvalidDataError{
			Message: fmt.Sprintf("cannot recover a public key from a %s signature", s.keyType),
		}
	}
	if len(digest) != 32 {
		return PublicKey{}, &InvalidLengthError{Expected: 32, Received: len(digest)}
	}
	if s.data[64] >= 4 {
		return PublicKey{}, &InvalidDataError{
			Message: fmt.Sprintf("invalid recovery id %d", s.data[64]),
		}
	}
	uncompressed, err := ethcrypto.Ecrecover(digest, s.data)
	if err != nil {
		return PublicKey{}, &InvalidDataError{Message: "public key recovery failed", Err: err}
	}
	return PublicKey{keyType: Secp256k1, data: bytes.Clone(uncompressed[1:])}, nil
}

func (s Signature) Equals(other Signature) bool {
	return s.keyType == other.keyType && bytes.Equal(s.data, other.data)
}

// MapKey returns a string usable as a map key, tag byte first.
func (s Signature) MapKey() string {
	b := make([]byte, 0, len(s.data)+1)
	b = append(b, byte(s.keyType))
	b = append(b, s.data...)
	return string(b)
}

// MarshalBinary encodes the signature as tag byte followed by the raw bytes.
func (s Signature) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, len(s.data)+1)
	out = append(out, byte(s.keyType))
	return append(out, s.data...), nil
}

func (s *Signature) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return &InvalidLengthError{Expected: 1, Received: 0}
	}
	kt, err := KeyTypeFromByte(data[0])
	if err != nil {
		return err
	}
	want := signatureSize(kt)
	payload := data[1:]
	if len(payload) != want {
		return &InvalidLengthError{Expected: want, Received: len(payload)}
	}
	if kt == Ed25519 && payload[Ed25519SignatureSize-1]&0b1110_0000 != 0 {
		// Structural check carried over from an earlier signing library.
		// It adds no cryptographic strength, but previously persisted
		// data relies on these bytes being rejected.
		return &InvalidDataError{Message: "malformed ed25519 signature"}
	}
	s.keyType = kt
	s.data = bytes.Clone(payload)
	return nil
}

// String renders the canonical textual form "<key type>:<base58(bytes)>".
func (s Signature) String() string {
	return s.keyType.String() + ":" + encodeBase58(s.data)
}

func ParseSignature(value string) (Signature, error) {
	kt, data, err := splitKeyTypeData(value)
	if err != nil {
		return Signature{}, err
	}
	raw := make([]byte, signatureSize(kt))
	if err := decodeBase58Fixed(raw, data); err != nil {
		return Signature{}, err
	}
	return Signature{keyType: kt, data: raw}, nil
}

func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Signature) UnmarshalText(text []byte) error {
	parsed, err := ParseSignature(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
