package storage

import "errors"

// Errors returned by preimage stores. Backends return these values unwrapped
// so callers and the gRPC mapping can compare them directly.
var (
	ErrNotFound    = errors.New("storage: not found")
	ErrInvalidCID  = errors.New("storage: invalid cid")
	ErrCIDMismatch = errors.New("storage: cid mismatch")
	ErrImmutable   = errors.New("storage: immutable object mismatch")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsIntegrity reports whether err means stored bytes no longer match their
// CID, either on read (ErrCIDMismatch) or when a Put meets a different object
// already on disk (ErrImmutable).
func IsIntegrity(err error) bool {
	return errors.Is(err, ErrCIDMismatch) || errors.Is(err, ErrImmutable)
}
