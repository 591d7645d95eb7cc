// Package canon produces the canonical byte encoding of a record.
//
// A record is an acyclic tree of string-keyed maps, sequences, strings,
// booleans, numbers and nil. Canonicalize renders it as compact JSON:
//
//   - object keys sorted byte-wise over their UTF-8 encoding
//   - no whitespace between tokens and no trailing newline
//   - non-ASCII text emitted verbatim; only '"', '\' and control characters
//     below U+0020 are escaped
//   - NaN and ±Inf rejected
//
// Numbers are rendered deterministically but their text is not guaranteed to
// match other implementations. Records meant for cross-system agreement should
// carry numeric fields as strings.
//
// All commitment hashing MUST pass through Canonicalize.
package canon
