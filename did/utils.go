package did

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

// MultibaseEncode encodes data using the base58btc multibase alphabet
// (prefix "z"), the encoding used by the "did:key" method.
// https://datatracker.ietf.org/doc/html/draft-multiformats-multibase-03
func MultibaseEncode(data []byte) string {
	return "z" + base58.Encode(data)
}

// MultibaseDecode decodes a multibase-prefixed string.
// https://datatracker.ietf.org/doc/html/draft-multiformats-multibase-03
func MultibaseDecode(src string) ([]byte, error) {
	if len(src) < 2 {
		return nil, fmt.Errorf("multibase value too short: %q", src)
	}
	base := src[:1]
	data := src[1:]
	// https://datatracker.ietf.org/doc/html/draft-multiformats-multibase-03#appendix-D.1
	switch base {
	case "z": // base58btc
		return base58.Decode(data)
	case "f": // base16
		return hex.DecodeString(data)
	case "m": // base64, no padding
		return base64.RawStdEncoding.DecodeString(data)
	case "M": // base64, padded (MIME)
		return base64.StdEncoding.DecodeString(data)
	case "u": // base64url, no padding
		return base64.RawURLEncoding.DecodeString(data)
	case "U": // base64url, padded
		return base64.URLEncoding.DecodeString(data)
	default:
		return nil, fmt.Errorf("unsupported multibase identifier: %q", base)
	}
}
