// Package storage defines the content-addressed record store.
//
// A store keeps canonical record bytes keyed by the CID of their commitment,
// so a digest handed out by the commitment service can later be resolved back
// to the exact preimage that produced it.
package storage

import "github.com/ipfs/go-cid"

// CAS is a minimal content-addressable storage interface.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written under the store's algorithm.
// - Get MUST return ErrNotFound when the CID is absent.
// - Get MUST verify returned bytes against the requested CID.
type CAS interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
