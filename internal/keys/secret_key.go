package keys

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

const (
	// Ed25519SecretKeySize is the combined keypair material: the 32-byte
	// seed followed by its derived 32-byte public key. The signing
	// primitive needs both halves together.
	Ed25519SecretKeySize   = 64
	Secp256k1SecretKeySize = 32

	rsa2048KeyBits = 2048
)

// SecretKey is an algorithm-tagged private key. It is created once and only
// read afterwards, never mutated.
type SecretKey struct {
	keyType KeyType
	ed      ed25519.PrivateKey
	secp    *ecdsa.PrivateKey
	rsa     *rsa.PrivateKey
}

// GenerateSecretKey creates a fresh key from the OS secure randomness source.
func GenerateSecretKey(kt KeyType) (SecretKey, error) {
	switch kt {
	case Ed25519:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return SecretKey{}, err
		}
		return SecretKey{keyType: Ed25519, ed: priv}, nil
	case Secp256k1:
		priv, err := ethcrypto.GenerateKey()
		if err != nil {
			return SecretKey{}, err
		}
		return SecretKey{keyType: Secp256k1, secp: priv}, nil
	case Rsa2048:
		priv, err := rsa.GenerateKey(rand.Reader, rsa2048KeyBits)
		if err != nil {
			return SecretKey{}, err
		}
		return SecretKey{keyType: Rsa2048, rsa: priv}, nil
	}
	return SecretKey{}, &UnknownKeyTypeError{Provided: kt.String()}
}

func (sk SecretKey) KeyType() KeyType {
	return sk.keyType
}

// Sign produces a signature over data. For Secp256k1, data must be a
// 32-byte message digest. For Rsa2048, data is signed with unprefixed
// PKCS#1 v1.5 and the caller supplies pre-hashed input of a size the
// modulus accepts.
func (sk SecretKey) Sign(data []byte) (Signature, error) {
	switch sk.keyType {
	case Ed25519:
		return Signature{keyType: Ed25519, data: ed25519.Sign(sk.ed, data)}, nil
	case Secp256k1:
		if len(data) != 32 {
			return Signature{}, &InvalidLengthError{Expected: 32, Received: len(data)}
		}
		// 64 compact bytes (r || s) followed by the raw recovery id.
		raw, err := ethcrypto.Sign(data, sk.secp)
		if err != nil {
			return Signature{}, &InvalidDataError{Message: "secp256k1 signing failed", Err: err}
		}
		return Signature{keyType: Secp256k1, data: raw}, nil
	case Rsa2048:
		raw, err := rsa.SignPKCS1v15(rand.Reader, sk.rsa, 0, data)
		if err != nil {
			return Signature{}, &InvalidDataError{Message: "rsa signing failed", Err: err}
		}
		return Signature{keyType: Rsa2048, data: raw}, nil
	}
	return Signature{}, &UnknownKeyTypeError{Provided: sk.keyType.String()}
}

// PublicKey derives the public key. The derivation is pure: the same secret
// key always yields the same public key.
func (sk SecretKey) PublicKey() PublicKey {
	switch sk.keyType {
	case Ed25519:
		return PublicKey{keyType: Ed25519, data: bytes.Clone(sk.ed[ed25519.SeedSize:])}
	case Secp256k1:
		uncompressed := ethcrypto.FromECDSAPub(&sk.secp.PublicKey)
		return PublicKey{keyType: Secp256k1, data: bytes.Clone(uncompressed[1:])}
	case Rsa2048:
		der, err := x509.MarshalPKIXPublicKey(&sk.rsa.PublicKey)
		if err != nil || len(der) != Rsa2048PublicKeySize {
			// Every key this package constructs uses the default public
			// exponent, which always encodes to 294 bytes.
			panic(fmt.Sprintf("rsa public key DER encoding: len=%d err=%v", len(der), err))
		}
		return PublicKey{keyType: Rsa2048, data: der}
	}
	panic(fmt.Sprintf("no public key for key type %d", sk.keyType))
}

// Equals compares secret key material. For Ed25519 only the 32-byte seed
// half participates; the trailing public half is redundant cached state.
func (sk SecretKey) Equals(other SecretKey) bool {
	if sk.keyType != other.keyType {
		return false
	}
	switch sk.keyType {
	case Ed25519:
		return bytes.Equal(sk.ed[:ed25519.SeedSize], other.ed[:ed25519.SeedSize])
	case Secp256k1:
		return sk.secp.D.Cmp(other.secp.D) == 0
	case Rsa2048:
		return sk.rsa.Equal(other.rsa)
	}
	return false
}

func (sk SecretKey) secretBytes() []byte {
	switch sk.keyType {
	case Ed25519:
		return sk.ed
	case Secp256k1:
		return ethcrypto.FromECDSA(sk.secp)
	case Rsa2048:
		der, err := x509.MarshalPKCS8PrivateKey(sk.rsa)
		if err != nil {
			panic(fmt.Sprintf("rsa private key PKCS#8 encoding: %v", err))
		}
		return der
	}
	panic(fmt.Sprintf("no secret bytes for key type %d", sk.keyType))
}

// String renders "<key type>:<base58(material)>". Ed25519 encodes the full
// 64-byte keypair material, Secp256k1 the 32-byte scalar, Rsa2048 the
// PKCS#8 DER bytes. The output contains the secret; handle accordingly.
func (sk SecretKey) String() string {
	return sk.keyType.String() + ":" + encodeBase58(sk.secretBytes())
}

func ParseSecretKey(value string) (SecretKey, error) {
	kt, data, err := splitKeyTypeData(value)
	if err != nil {
		return SecretKey{}, err
	}
	switch kt {
	case Ed25519:
		raw := make([]byte, Ed25519SecretKeySize)
		if err := decodeBase58Fixed(raw, data); err != nil {
			return SecretKey{}, err
		}
		return SecretKey{keyType: Ed25519, ed: raw}, nil
	case Secp256k1:
		raw := make([]byte, Secp256k1SecretKeySize)
		if err := decodeBase58Fixed(raw, data); err != nil {
			return SecretKey{}, err
		}
		priv, err := ethcrypto.ToECDSA(raw)
		if err != nil {
			return SecretKey{}, &InvalidDataError{Message: "invalid secp256k1 scalar", Err: err}
		}
		return SecretKey{keyType: Secp256k1, secp: priv}, nil
	case Rsa2048:
		raw, err := decodeBase58Capped(maxBase58Input, data)
		if err != nil {
			return SecretKey{}, err
		}
		parsed, err := x509.ParsePKCS8PrivateKey(raw)
		if err != nil {
			return SecretKey{}, &InvalidDataError{Message: "invalid PKCS#8 key", Err: err}
		}
		priv, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return SecretKey{}, &InvalidDataError{Message: fmt.Sprintf("PKCS#8 key is %T, not RSA", parsed)}
		}
		return SecretKey{keyType: Rsa2048, rsa: priv}, nil
	}
	return SecretKey{}, &UnknownKeyTypeError{Provided: kt.String()}
}

// MarshalBinary encodes tag byte plus key material. The Ed25519 and
// Secp256k1 payloads are fixed-size; the Rsa2048 payload is the variable
// length PKCS#8 DER occupying the remainder.
func (sk SecretKey) MarshalBinary() ([]byte, error) {
	material := sk.secretBytes()
	out := make([]byte, 0, len(material)+1)
	out = append(out, byte(sk.keyType))
	return append(out, material...), nil
}

func (sk *SecretKey) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return &InvalidLengthError{Expected: 1, Received: 0}
	}
	kt, err := KeyTypeFromByte(data[0])
	if err != nil {
		return err
	}
	payload := data[1:]
	switch kt {
	case Ed25519:
		if len(payload) != Ed25519SecretKeySize {
			return &InvalidLengthError{Expected: Ed25519SecretKeySize, Received: len(payload)}
		}
		*sk = SecretKey{keyType: Ed25519, ed: bytes.Clone(payload)}
		return nil
	case Secp256k1:
		if len(payload) != Secp256k1SecretKeySize {
			return &InvalidLengthError{Expected: Secp256k1SecretKeySize, Received: len(payload)}
		}
		priv, err := ethcrypto.ToECDSA(payload)
		if err != nil {
			return &InvalidDataError{Message: "invalid secp256k1 scalar", Err: err}
		}
		*sk = SecretKey{keyType: Secp256k1, secp: priv}
		return nil
	case Rsa2048:
		parsed, err := x509.ParsePKCS8PrivateKey(payload)
		if err != nil {
			return &InvalidDataError{Message: "invalid PKCS#8 key", Err: err}
		}
		priv, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return &InvalidDataError{Message: fmt.Sprintf("PKCS#8 key is %T, not RSA", parsed)}
		}
		*sk = SecretKey{keyType: Rsa2048, rsa: priv}
		return nil
	}
	return &UnknownKeyTypeError{Provided: kt.String()}
}

func (sk SecretKey) MarshalText() ([]byte, error) {
	return []byte(sk.String()), nil
}

func (sk *SecretKey) UnmarshalText(text []byte) error {
	parsed, err := ParseSecretKey(string(text))
	if err != nil {
		return err
	}
	*sk = parsed
	return nil
}
