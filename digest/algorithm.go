package digest

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// Algorithm names a digest variant.
type Algorithm string

const (
	SHA256    Algorithm = "sha256"
	Keccak256 Algorithm = "keccak256"
)

// Size is the digest length in bytes of every supported algorithm.
const Size = 32

// Algorithms returns the supported algorithms in a stable order.
func Algorithms() []Algorithm {
	return []Algorithm{Keccak256, SHA256}
}

// ParseAlgorithm validates an algorithm identifier. Matching is exact.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case SHA256, Keccak256:
		return a, nil
	default:
		return "", newError(KindUnsupportedAlgorithm, "DIGEST-ALG-001", "digest: unsupported algorithm "+strconv.Quote(s))
	}
}

func (a Algorithm) String() string { return string(a) }

// Render returns "0x" followed by the lowercase hex encoding of d.
func Render(d []byte) string {
	return "0x" + hex.EncodeToString(d)
}

// ParseHex decodes a rendered digest. The 0x prefix is required, hex digits
// may be of either case, and the result must be Size bytes.
func ParseHex(s string) ([]byte, error) {
	body, ok := strings.CutPrefix(s, "0x")
	if !ok {
		return nil, newError(KindMalformed, "DIGEST-HEX-001", "digest: missing 0x prefix")
	}
	if len(body) != 2*Size {
		return nil, newError(KindMalformed, "DIGEST-HEX-002", "digest: expected "+strconv.Itoa(2*Size)+" hex characters")
	}
	b, err := hex.DecodeString(body)
	if err != nil {
		return nil, &Error{Kind: KindMalformed, RuleID: "DIGEST-HEX-003", Message: "digest: invalid hex", Cause: err}
	}
	return b, nil
}
