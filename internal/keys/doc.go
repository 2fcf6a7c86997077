// Package keys is the node's cryptographic identity layer: a unified
// abstraction over Ed25519, secp256k1 (ECDSA with public key recovery) and
// RSA-2048 used to sign and verify transactions, derive account identities,
// and persist key material.
//
// Responsibilities:
//   - Binary wire format: tag byte followed by fixed-size raw bytes, the
//     length implied by the tag.
//   - Canonical textual format: "<key type>:<base58(payload)>", with
//     prefix-less legacy values read as ed25519.
//   - Algorithm-specific signing, verification and recovery semantics,
//     bit-for-bit compatible with previously persisted data.
//
// Non-responsibilities:
//   - Elliptic-curve and RSA arithmetic (delegated to crypto/ed25519,
//     go-ethereum's secp256k1 bindings, and crypto/rsa).
//   - Key custody and on-disk storage (internal/keystore).
//
// All types are immutable after construction; concurrent reads need no
// locking. Verification never panics on attacker-controlled input.
package keys
