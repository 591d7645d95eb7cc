package localfs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"

	"github.com/wiimdy/openfunderse/cidutil"
	"github.com/wiimdy/openfunderse/digest"
	"github.com/wiimdy/openfunderse/storage"
)

// CAS is a local filesystem-backed content-addressable store.
//
// Objects are written once with mode 0444 under root/<cid[:2]>/<cid>. New
// objects are keyed by the store's algorithm; Get accepts a CID of either
// algorithm and verifies the bytes against it.
type CAS struct {
	root string
	alg  digest.Algorithm
}

// New constructs a filesystem CAS rooted at root. The directory will be created if needed.
func New(root string, alg digest.Algorithm) (*CAS, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if _, err := cidutil.Code(alg); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &CAS{root: root, alg: alg}, nil
}

// Algorithm returns the algorithm Put derives CIDs with.
func (c *CAS) Algorithm() digest.Algorithm { return c.alg }

// Root returns the store directory.
func (c *CAS) Root() string { return c.root }

func (c *CAS) Put(data []byte) (cid.Cid, error) {
	id, err := cidutil.Sum(c.alg, data)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, storage.ErrInvalidCID
	}

	path := c.pathFor(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cid.Undef, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if !os.IsExist(err) {
			return cid.Undef, err
		}
		// An unreadable or corrupted existing object is never repaired.
		existing, rerr := c.Get(id)
		if rerr != nil || !bytes.Equal(existing, data) {
			return cid.Undef, storage.ErrImmutable
		}
		return id, nil
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return cid.Undef, err
	}
	return id, nil
}

func (c *CAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	if _, err := cidutil.AlgorithmOf(id); err != nil {
		return nil, storage.ErrInvalidCID
	}
	b, err := os.ReadFile(c.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	ok, err := cidutil.Verify(id, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, storage.ErrCIDMismatch
	}
	return b, nil
}

func (c *CAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(c.pathFor(id))
	return err == nil
}

func (c *CAS) pathFor(id cid.Cid) string {
	s := id.String()
	if len(s) < 2 {
		return filepath.Join(c.root, s)
	}
	return filepath.Join(c.root, s[:2], s)
}

// Open returns a store over dirs for alg. The first directory is the primary;
// with more than one, every write is replicated to all of them and reads fall
// back in order.
func Open(alg digest.Algorithm, dirs ...string) (storage.CAS, error) {
	if len(dirs) == 0 {
		return nil, errors.New("localfs: at least one directory is required")
	}
	if len(dirs) == 1 {
		return New(dirs[0], alg)
	}
	r := storage.ReplicatingCAS{Algorithm: alg}
	for _, dir := range dirs {
		cas, err := New(dir, alg)
		if err != nil {
			return nil, err
		}
		r.Backends = append(r.Backends, storage.NamedCAS{Name: dir, CAS: cas})
	}
	return r, nil
}
