package commit

import (
	"bytes"
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/wiimdy/openfunderse/canon"
	"github.com/wiimdy/openfunderse/cidutil"
	"github.com/wiimdy/openfunderse/digest"
)

// Options control a single commitment.
type Options struct {
	Algorithm digest.Algorithm
	Kind      Kind

	// EmitCanonical keeps the canonical bytes on the Result.
	EmitCanonical bool
	// EmitCID derives a CIDv1 (raw) for the canonical bytes.
	EmitCID bool
	// WriteBack renders the record with its hash field set. Ignored for raw.
	WriteBack bool
}

// Result is the outcome of Commit.
type Result struct {
	Algorithm digest.Algorithm
	Kind      Kind

	// Canonical is set only when Options.EmitCanonical is true.
	Canonical []byte
	Digest    []byte
	Hex       string
	CID       cid.Cid

	// Persisted is the pretty, sorted record with the hash field filled in,
	// terminated by a newline. Set only for WriteBack on a kind with a hash field.
	Persisted []byte
}

// Committer hashes records with a fixed digest engine.
type Committer struct {
	engine *digest.Engine
}

// New returns a Committer over e. A nil engine selects digest.Default().
func New(e *digest.Engine) *Committer {
	if e == nil {
		e = digest.Default()
	}
	return &Committer{engine: e}
}

// Engine returns the digest engine in use.
func (c *Committer) Engine() *digest.Engine { return c.engine }

// Commit strips the kind's hash field from record, canonicalizes the rest and
// hashes it. The algorithm and kind are validated before the record is
// inspected, so an unsupported algorithm is reported even for a record that
// could not be encoded. record is never modified.
func (c *Committer) Commit(record any, opts Options) (*Result, error) {
	alg, err := digest.ParseAlgorithm(string(opts.Algorithm))
	if err != nil {
		return nil, err
	}
	if err := c.engine.Available(alg); err != nil {
		return nil, err
	}
	if _, err := fieldFor(opts.Kind); err != nil {
		return nil, err
	}

	body, err := Strip(record, opts.Kind)
	if err != nil {
		return nil, err
	}
	canonical, err := canon.Canonicalize(body)
	if err != nil {
		return nil, err
	}
	sum, err := c.engine.Sum(alg, canonical)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Algorithm: alg,
		Kind:      opts.Kind,
		Digest:    sum,
		Hex:       digest.Render(sum),
	}
	if opts.EmitCanonical {
		res.Canonical = canonical
	}
	if opts.EmitCID {
		id, err := cidutil.FromDigest(alg, sum)
		if err != nil {
			return nil, err
		}
		res.CID = id
	}
	if opts.WriteBack && opts.Kind.HashField() != "" {
		persisted, err := RenderPersisted(record, opts.Kind, res.Hex)
		if err != nil {
			return nil, err
		}
		res.Persisted = persisted
	}
	return res, nil
}

// Verify recomputes the commitment of record and compares it with the value
// stored in its hash field. Comparison is on decoded digest bytes, so the
// stored hex may be of either case.
func (c *Committer) Verify(record any, kind Kind, alg digest.Algorithm) (*Result, error) {
	field, err := fieldFor(kind)
	if err != nil {
		return nil, err
	}
	if field == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoHashField, kind)
	}
	m, ok := mapping(record)
	if !ok {
		return nil, fmt.Errorf("%w for kind %s (got %T)", ErrNotMapping, kind, record)
	}
	stored, ok := m[field].(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingHash, field)
	}
	want, err := digest.ParseHex(stored)
	if err != nil {
		return nil, fmt.Errorf("commit: %s: %w", field, err)
	}

	res, err := c.Commit(record, Options{Algorithm: alg, Kind: kind})
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(want, res.Digest) {
		return res, fmt.Errorf("%w: %s is %s, computed %s", ErrHashMismatch, field, stored, res.Hex)
	}
	return res, nil
}

// RenderPersisted returns record with kind's hash field set to rendered, as
// sorted JSON indented by two spaces and terminated by a newline.
func RenderPersisted(record any, kind Kind, rendered string) ([]byte, error) {
	withHash, err := WithHash(record, kind, rendered)
	if err != nil {
		return nil, err
	}
	out, err := canon.MarshalIndent(withHash, "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

var defaultCommitter = New(nil)

// Commit is New(nil).Commit.
func Commit(record any, opts Options) (*Result, error) {
	return defaultCommitter.Commit(record, opts)
}

// Verify is New(nil).Verify.
func Verify(record any, kind Kind, alg digest.Algorithm) (*Result, error) {
	return defaultCommitter.Verify(record, kind, alg)
}
