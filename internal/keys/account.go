package keys

import (
	"golang.org/x/crypto/blake2b"
)

const accountIDPrefix = "emb1"

// AccountID derives the stable textual account identity for a public key.
// The digest covers the tag byte as well as the payload, so keys of
// different types can never share an identity.
func (pk PublicKey) AccountID() string {
	h := blake2b.Sum256([]byte(pk.MapKey()))
	return accountIDPrefix + encodeBase58(h[:])
}

// VerifyAccountID reports whether accountID is the identity of publicKey.
func VerifyAccountID(accountID string, publicKey PublicKey) bool {
	return accountID == publicKey.AccountID()
}
