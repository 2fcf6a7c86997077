package keys

import (
	"strconv"
	"strings"
)

// KeyType identifies which signature scheme a key or signature value uses.
// The numeric values are part of the binary wire format and must not change.
type KeyType uint8

const (
	Ed25519 KeyType = iota
	Secp256k1
	Rsa2048
)

const (
	ed25519Name   = "ed25519"
	secp256k1Name = "secp256k1"
	rsa2048Name   = "rsa2048"
)

func (kt KeyType) String() string {
	switch kt {
	case Ed25519:
		return ed25519Name
	case Secp256k1:
		return secp256k1Name
	case Rsa2048:
		return rsa2048Name
	}
	return "unknown"
}

func ParseKeyType(value string) (KeyType, error) {
	switch strings.ToLower(value) {
	case ed25519Name:
		return Ed25519, nil
	case secp256k1Name:
		return Secp256k1, nil
	case rsa2048Name:
		return Rsa2048, nil
	}
	return 0, &UnknownKeyTypeError{Provided: strings.ToLower(value)}
}

func KeyTypeFromByte(b byte) (KeyType, error) {
	switch b {
	case 0:
		return Ed25519, nil
	case 1:
		return Secp256k1, nil
	case 2:
		return Rsa2048, nil
	}
	return 0, &UnknownKeyTypeError{Provided: strconv.Itoa(int(b))}
}

// splitKeyTypeData splits "<key type>:<data>" at the first colon. Values
// stored before the multi-algorithm format carry no prefix and are
// interpreted as Ed25519 with the whole string as data.
func splitKeyTypeData(value string) (KeyType, string, error) {
	prefix, data, found := strings.Cut(value, ":")
	if !found {
		return Ed25519, value, nil
	}
	kt, err := ParseKeyType(prefix)
	if err != nil {
		return 0, "", err
	}
	return kt, data, nil
}
