// Package cidutil derives IPFS-compatible content identifiers for canonical bytes.
//
// CIDs are version 1 with the "raw" multicodec. The multihash function follows
// the commitment algorithm: sha2-256 (0x12) for sha256 and keccak-256 (0x1b)
// for keccak256, so the CID embeds exactly the digest that was rendered.
package cidutil

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/wiimdy/openfunderse/digest"
)

// Code returns the multihash function code for alg.
func Code(alg digest.Algorithm) (uint64, error) {
	switch alg {
	case digest.SHA256:
		return multihash.SHA2_256, nil
	case digest.Keccak256:
		return multihash.KECCAK_256, nil
	default:
		_, err := digest.ParseAlgorithm(string(alg))
		return 0, err
	}
}

// FromDigest wraps an already computed digest in a CIDv1 (raw).
func FromDigest(alg digest.Algorithm, sum []byte) (cid.Cid, error) {
	code, err := Code(alg)
	if err != nil {
		return cid.Undef, err
	}
	if len(sum) != digest.Size {
		return cid.Undef, fmt.Errorf("cidutil: digest must be %d bytes, got %d", digest.Size, len(sum))
	}
	mh, err := multihash.Encode(sum, code)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// Sum hashes data with the default digest engine and returns its CIDv1 (raw).
func Sum(alg digest.Algorithm, data []byte) (cid.Cid, error) {
	d, err := digest.Sum(alg, data)
	if err != nil {
		return cid.Undef, err
	}
	return FromDigest(alg, d)
}

// AlgorithmOf reports which commitment algorithm produced id.
func AlgorithmOf(id cid.Cid) (digest.Algorithm, error) {
	if !id.Defined() {
		return "", fmt.Errorf("cidutil: undefined cid")
	}
	switch code := id.Prefix().MhType; code {
	case multihash.SHA2_256:
		return digest.SHA256, nil
	case multihash.KECCAK_256:
		return digest.Keccak256, nil
	default:
		return "", fmt.Errorf("cidutil: unsupported multihash code 0x%x", code)
	}
}

// Verify reports whether data hashes to id.
func Verify(id cid.Cid, data []byte) (bool, error) {
	alg, err := AlgorithmOf(id)
	if err != nil {
		return false, err
	}
	got, err := Sum(alg, data)
	if err != nil {
		return false, err
	}
	return got.Equals(id), nil
}
