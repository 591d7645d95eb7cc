package digest

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Keccak256Provider computes the pre-standard Keccak-256 digest of data.
//
// Implementations must be safe for concurrent use and must return Size bytes.
type Keccak256Provider interface {
	Name() string
	Sum(data []byte) ([]byte, error)
}

// keccakEmpty is Keccak-256 of the empty input. SHA3-256 of the empty input is
// a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a.
var keccakEmpty = mustDecodeHex("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")

const keccakRemediation = "link a Keccak-256 provider, e.g. register one backed by golang.org/x/crypto/sha3.NewLegacyKeccak256 or github.com/multiformats/go-multihash/register/sha3"

type rankedProvider struct {
	rank     int
	provider Keccak256Provider
}

// Registry is a ranked list of interchangeable Keccak-256 providers.
//
// Lower ranks are tried first; equal ranks are ordered by name.
type Registry struct {
	mu        sync.RWMutex
	providers []rankedProvider
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a new registry holding the providers linked into
// this package. Callers may add their own before building an Engine.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(10, xcryptoKeccak{})
	r.MustRegister(20, multihashKeccak{})
	return r
}

// Register adds p at the given rank.
func (r *Registry) Register(rank int, p Keccak256Provider) error {
	if p == nil {
		return fmt.Errorf("digest: nil provider")
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("digest: provider name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.providers {
		if existing.provider.Name() == name {
			return fmt.Errorf("digest: provider %q already registered", name)
		}
	}
	r.providers = append(r.providers, rankedProvider{rank: rank, provider: p})
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(rank int, p Keccak256Provider) {
	if err := r.Register(rank, p); err != nil {
		panic(err)
	}
}

// Providers returns the registered providers in resolution order.
func (r *Registry) Providers() []Keccak256Provider {
	r.mu.RLock()
	ordered := append([]rankedProvider(nil), r.providers...)
	r.mu.RUnlock()

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].rank != ordered[j].rank {
			return ordered[i].rank < ordered[j].rank
		}
		return ordered[i].provider.Name() < ordered[j].provider.Name()
	})
	out := make([]Keccak256Provider, 0, len(ordered))
	for _, rp := range ordered {
		out = append(out, rp.provider)
	}
	return out
}

// Resolve returns the first provider, in rank order, that reproduces the
// Keccak-256 known answer. It fails with KindBackendUnavailable when none does.
func (r *Registry) Resolve() (Keccak256Provider, error) {
	var rejected []string
	for _, p := range r.Providers() {
		if err := selfTest(p); err != nil {
			rejected = append(rejected, fmt.Sprintf("%s: %v", p.Name(), err))
			continue
		}
		return p, nil
	}

	msg := "digest: no Keccak-256 backend available"
	if len(rejected) > 0 {
		msg += "; rejected " + strings.Join(rejected, "; ")
	}
	return nil, &Error{
		Kind:        KindBackendUnavailable,
		RuleID:      "DIGEST-BACKEND-001",
		Message:     msg,
		Remediation: keccakRemediation,
	}
}

func selfTest(p Keccak256Provider) error {
	got, err := p.Sum(nil)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, keccakEmpty) {
		return fmt.Errorf("known-answer mismatch (got %x)", got)
	}
	return nil
}

func mustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
