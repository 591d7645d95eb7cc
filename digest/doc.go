// Package digest computes the 256-bit commitments over canonical bytes.
//
// Two algorithms are supported and no others:
//
//   - sha256: FIPS 180-4 SHA-256.
//   - keccak256: Keccak-256 with the original 0x01 padding, the variant used by
//     Ethereum. It is NOT FIPS 202 SHA3-256, which pads with 0x06 and yields
//     different digests for every input.
//
// keccak256 is served by a Keccak256Provider chosen from a ranked Registry when
// an Engine is constructed. Each candidate must reproduce the Keccak-256
// digest of the empty input before it is accepted, so a SHA3-256
// implementation can never be selected by mistake.
package digest
