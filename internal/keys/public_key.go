package keys

import (
	"bytes"
	"fmt"
)

// Payload sizes in bytes for each key type. The RSA size is the DER-encoded
// SubjectPublicKeyInfo of a 2048-bit modulus with the default public
// exponent. DER does not guarantee that length for arbitrary exponents; the
// wire format bakes it in regardless, so keys with unusual exponents are not
// representable.
const (
	Ed25519PublicKeySize   = 32
	Secp256k1PublicKeySize = 64
	Rsa2048PublicKeySize   = 294
)

// PublicKey is an algorithm-tagged public key. The payload length always
// matches the fixed size for the key type; no public operation can produce a
// partial key. The zero value is not a valid key, use EmptyPublicKey for an
// all-zero placeholder.
type PublicKey struct {
	keyType KeyType
	data    []byte
}

func publicKeySize(kt KeyType) int {
	switch kt {
	case Ed25519:
		return Ed25519PublicKeySize
	case Secp256k1:
		return Secp256k1PublicKeySize
	case Rsa2048:
		return Rsa2048PublicKeySize
	}
	panic(fmt.Sprintf("no public key size for key type %d", kt))
}

// EmptyPublicKey returns an all-zero key of the correct length for kt. It is
// a placeholder, never a cryptographically meaningful key.
func EmptyPublicKey(kt KeyType) PublicKey {
	return PublicKey{keyType: kt, data: make([]byte, publicKeySize(kt))}
}

// PublicKeyFromBytes wraps raw payload bytes, validating their length.
func PublicKeyFromBytes(kt KeyType, data []byte) (PublicKey, error) {
	if len(data) != publicKeySize(kt) {
		return PublicKey{}, &InvalidLengthError{Expected: publicKeySize(kt), Received: len(data)}
	}
	return PublicKey{keyType: kt, data: bytes.Clone(data)}, nil
}

func (pk PublicKey) KeyType() KeyType {
	return pk.keyType
}

// KeyData returns the raw payload. Callers must treat it as read-only.
func (pk PublicKey) KeyData() []byte {
	return pk.data
}

// Length reports the serialized size (payload plus tag byte) for storage
// budgeting. It is advisory and carries no validity guarantee.
func (pk PublicKey) Length() int {
	return len(pk.data) + 1
}

func (pk PublicKey) Equals(other PublicKey) bool {
	return pk.keyType == other.keyType && bytes.Equal(pk.data, other.data)
}

// Compare orders keys by tag byte, then payload, lexicographically.
func (pk PublicKey) Compare(other PublicKey) int {
	if pk.keyType != other.keyType {
		if pk.keyType < other.keyType {
			return -1
		}
		return 1
	}
	return bytes.Compare(pk.data, other.data)
}

// MapKey returns a string usable as a map key. The tag byte precedes the
// payload so equal keys of different types can never collide.
func (pk PublicKey) MapKey() string {
	b := make([]byte, 0, len(pk.data)+1)
	b = append(b, byte(pk.keyType))
	b = append(b, pk.data...)
	return string(b)
}

// MarshalBinary encodes the key as tag byte followed by the raw payload.
// The length is implied by the tag, no length prefix is written.
func (pk PublicKey) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, len(pk.data)+1)
	out = append(out, byte(pk.keyType))
	return append(out, pk.data...), nil
}

func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return &InvalidLengthError{Expected: 1, Received: 0}
	}
	kt, err := KeyTypeFromByte(data[0])
	if err != nil {
		return err
	}
	want := publicKeySize(kt)
	if len(data)-1 != want {
		return &InvalidLengthError{Expected: want, Received: len(data) - 1}
	}
	pk.keyType = kt
	pk.data = bytes.Clone(data[1:])
	return nil
}

// String renders the canonical textual form "<key type>:<base58(payload)>".
func (pk PublicKey) String() string {
	return pk.keyType.String() + ":" + encodeBase58(pk.data)
}

func ParsePublicKey(value string) (PublicKey, error) {
	kt, data, err := splitKeyTypeData(value)
	if err != nil {
		return PublicKey{}, err
	}
	raw := make([]byte, publicKeySize(kt))
	if err := decodeBase58Fixed(raw, data); err != nil {
		return PublicKey{}, err
	}
	return PublicKey{keyType: kt, data: raw}, nil
}

func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

func (pk *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}
