package did

import (
	"fmt"
)

// multicodecEd25519Pub is the varint-encoded multicodec prefix for an
// Ed25519 public key (0xed, encoded as two unsigned-varint bytes).
// https://github.com/multiformats/multicodec/blob/master/table.csv
var multicodecEd25519Pub = []byte{0xed, 0x01}

// NewKeyDID builds a "did:key" identifier from a raw Ed25519 public key.
// The identifier is self-describing: the public key is recoverable directly
// from the string, without any registry or network lookup.
// https://w3c-ccg.github.io/did-method-key/
func NewKeyDID(pub []byte) (string, error) {
	if len(pub) != 32 {
		return "", fmt.Errorf("invalid ed25519 public key length: %d", len(pub))
	}
	buf := make([]byte, 0, len(multicodecEd25519Pub)+len(pub))
	buf = append(buf, multicodecEd25519Pub...)
	buf = append(buf, pub...)
	return prefix + "key:" + MultibaseEncode(buf), nil
}

// ResolveKeyDID extracts the raw Ed25519 public key embedded in a "did:key"
// identifier. It returns an error if the identifier is not a "did:key"
// method instance, or if it does not encode an Ed25519 key.
func ResolveKeyDID(did string) ([]byte, error) {
	id, err := Parse(did)
	if err != nil {
		return nil, fmt.Errorf("malformed did: %w", err)
	}
	if id.Method() != "key" {
		return nil, fmt.Errorf("not a did:key identifier: method %q", id.Method())
	}
	raw, err := MultibaseDecode(id.ID())
	if err != nil {
		return nil, fmt.Errorf("invalid multibase value: %w", err)
	}
	if len(raw) != len(multicodecEd25519Pub)+32 {
		return nil, fmt.Errorf("unexpected key length: %d", len(raw))
	}
	if raw[0] != multicodecEd25519Pub[0] || raw[1] != multicodecEd25519Pub[1] {
		return nil, fmt.Errorf("unsupported multicodec prefix: %#x%#x", raw[0], raw[1])
	}
	return raw[len(multicodecEd25519Pub):], nil
}
