package keys

import (
	"fmt"

	"github.com/mr-tron/base58/base58"
)

// encodeBase58 never fails for the payloads this package produces; the bound
// exists to catch programming errors, not attacker input.
const maxBase58Input = 2048

func encodeBase58(data []byte) string {
	if len(data) > maxBase58Input {
		panic(fmt.Sprintf("base58 payload of %d bytes exceeds the %d byte bound", len(data), maxBase58Input))
	}
	return base58.Encode(data)
}

// decodeBase58Fixed decodes into exactly len(dst) bytes. A decoded value
// longer than dst is reported as received = expected+1 so too-long and
// too-short stay distinguishable without probing the full length.
func decodeBase58Fixed(dst []byte, encoded string) error {
	raw, err := decodeBase58(encoded)
	if err != nil {
		return err
	}
	switch {
	case len(raw) == len(dst):
		copy(dst, raw)
		return nil
	case len(raw) > len(dst):
		return &InvalidLengthError{Expected: len(dst), Received: len(dst) + 1}
	default:
		return &InvalidLengthError{Expected: len(dst), Received: len(raw)}
	}
}

// decodeBase58Capped decodes variable-length data of at most maxLen bytes.
// A base58 string never decodes to more bytes than its own length, so the
// effective cap is min(maxLen, len(encoded)).
func decodeBase58Capped(maxLen int, encoded string) ([]byte, error) {
	limit := maxLen
	if len(encoded) < limit {
		limit = len(encoded)
	}
	raw, err := decodeBase58(encoded)
	if err != nil {
		return nil, err
	}
	if len(raw) > limit {
		return nil, &InvalidLengthError{Expected: limit, Received: limit + 1}
	}
	return raw, nil
}

// decodeBase58 treats the empty string as zero bytes; the underlying library
// rejects it outright, which would misreport a length problem as bad data.
func decodeBase58(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, &InvalidDataError{Message: "base58 decode failed", Err: err}
	}
	return raw, nil
}
