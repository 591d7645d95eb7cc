package digest

import (
	"crypto/sha256"
	"fmt"
)

// Engine computes digests. The Keccak-256 provider is resolved once, when the
// engine is built; Sum never searches for a backend.
//
// An Engine is immutable and safe for concurrent use.
type Engine struct {
	keccak    Keccak256Provider
	keccakErr error
}

// NewEngine resolves a Keccak-256 provider from r. A nil registry or one with
// no working provider still yields a usable engine: sha256 works and
// keccak256 fails with KindBackendUnavailable.
func NewEngine(r *Registry) *Engine {
	if r == nil {
		r = NewRegistry()
	}
	p, err := r.Resolve()
	return &Engine{keccak: p, keccakErr: err}
}

var defaultEngine = NewEngine(DefaultRegistry())

// Default returns the engine built from DefaultRegistry at program start.
func Default() *Engine { return defaultEngine }

// Sum is Default().Sum.
func Sum(alg Algorithm, data []byte) ([]byte, error) {
	return defaultEngine.Sum(alg, data)
}

// Sum returns the digest of data under alg. The algorithm is validated before
// any input is read.
func (e *Engine) Sum(alg Algorithm, data []byte) ([]byte, error) {
	switch alg {
	case SHA256:
		s := sha256.Sum256(data)
		return s[:], nil
	case Keccak256:
		if e.keccak == nil {
			return nil, e.keccakErr
		}
		d, err := e.keccak.Sum(data)
		if err != nil {
			return nil, &Error{Kind: KindInternal, RuleID: "DIGEST-BACKEND-002", Message: fmt.Sprintf("digest: provider %s failed", e.keccak.Name()), Cause: err}
		}
		if len(d) != Size {
			return nil, newError(KindInternal, "DIGEST-BACKEND-003", fmt.Sprintf("digest: provider %s returned %d bytes", e.keccak.Name(), len(d)))
		}
		return d, nil
	default:
		_, err := ParseAlgorithm(string(alg))
		return nil, err
	}
}

// Keccak256Backend names the resolved Keccak-256 provider, or "" if none.
func (e *Engine) Keccak256Backend() string {
	if e.keccak == nil {
		return ""
	}
	return e.keccak.Name()
}

// Available reports whether alg can be computed by this engine.
func (e *Engine) Available(alg Algorithm) error {
	switch alg {
	case SHA256:
		return nil
	case Keccak256:
		if e.keccak == nil {
			return e.keccakErr
		}
		return nil
	default:
		_, err := ParseAlgorithm(string(alg))
		return err
	}
}
